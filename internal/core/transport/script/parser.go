package script

import (
	"strings"

	"github.com/quegate/quegate/internal/core/qerrors"
)

const (
	sentinelSuccess   = "SUCCESS"
	sentinelFailed    = "FAILED"
	sentinelNotFound  = "NOT_FOUND"
	sentinelNoMessage = "NO_MESSAGE"
)

const (
	fieldMessageID     = "MESSAGEID"
	fieldLabel         = "LABEL"
	fieldPriority      = "PRIORITY"
	fieldCorrelationID = "CORRELATIONID"
	fieldBody          = "BODY"
	fieldCount         = "COUNT"
	fieldQueue         = "QUEUE"
	fieldError         = "ERROR"
)

// result is the parsed view of one host invocation's stdout.
type result struct {
	sentinel string
	fields   map[string]string
	queues   []string
	errText  string
}

func (r *result) field(key string) string { return r.fields[key] }

// parseOutput applies the line protocol: the first non-blank line must be a
// sentinel token, everything after it is KEY:value pairs. The exit code
// alone never decides an outcome, so stdout that carries no sentinel is a
// host protocol failure.
func parseOutput(out string) (*result, error) {
	lines := strings.Split(strings.ReplaceAll(out, "\r\n", "\n"), "\n")

	res := &result{fields: make(map[string]string)}
	for _, line := range lines {
		if res.sentinel == "" {
			switch strings.TrimSpace(line) {
			case "":
				continue
			case sentinelSuccess, sentinelFailed, sentinelNotFound, sentinelNoMessage:
				res.sentinel = strings.TrimSpace(line)
				continue
			default:
				return nil, qerrors.System(qerrors.CodeHostOutput,
					"host output carries no sentinel: "+firstLine(out), nil)
			}
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		switch key {
		case fieldQueue:
			res.queues = append(res.queues, value)
		case fieldError:
			if res.errText == "" {
				res.errText = value
			}
		case fieldMessageID, fieldLabel, fieldPriority, fieldCorrelationID, fieldBody, fieldCount:
			res.fields[key] = value
		}
	}
	if res.sentinel == "" {
		return nil, qerrors.System(qerrors.CodeHostOutput, "host produced no output", nil)
	}
	return res, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i]
	}
	const max = 120
	if len(s) > max {
		s = s[:max]
	}
	return s
}
