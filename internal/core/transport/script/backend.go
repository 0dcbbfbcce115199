// Package script reaches the platform queue service through an external
// command host, one process per operation. The generated command prints
// sentinel tokens and labeled fields on stdout; the exit code alone never
// decides an outcome.
package script

import (
	"context"
	"encoding/base64"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/quegate/quegate/internal/core/qerrors"
	"github.com/quegate/quegate/internal/core/transport"
)

// Backend implements the queue contract over the scripted host boundary.
type Backend struct {
	host       string
	probeQueue string
	runner     hostRunner
}

var _ transport.Backend = (*Backend)(nil)

// New returns the scripted backend. host is the queue manager machine used
// for enumeration, exe the host executable name, timeout the per-invocation
// cap.
func New(host, exe string, timeout time.Duration, probeQueue string) *Backend {
	if probeQueue == "" {
		probeQueue = "quegate-probe"
	}
	return &Backend{host: host, probeQueue: probeQueue, runner: newRunner(exe, timeout)}
}

func (b *Backend) Open(ctx context.Context) error { return b.runner.available() }

func (b *Backend) Close() error { return nil }

func (b *Backend) Kind() transport.Kind { return transport.KindScript }

// Probe checks host executable, service liveness through a peek, and a full
// create/delete round trip. A denied or missing probe queue still proves a
// live service.
func (b *Backend) Probe(ctx context.Context) error {
	if err := b.runner.available(); err != nil {
		return err
	}

	p, err := transport.ParsePathname(b.probeQueue)
	if err != nil {
		return err
	}
	res, err := b.exec(ctx, buildReceive(p, 0, true), 0)
	if err != nil {
		return err
	}
	if res.sentinel == sentinelFailed && !accessDenied(res.errText) {
		return qerrors.Connection(qerrors.CodeUnreachable, "probe peek failed: "+res.errText, nil)
	}

	temp, err := transport.ParsePathname(b.probeQueue + "-" + uuid.NewString()[:8])
	if err != nil {
		return err
	}
	create, err := buildCreate(temp, transport.CreateOptions{Label: "reachability probe"})
	if err != nil {
		return err
	}
	res, err = b.exec(ctx, create, 0)
	if err != nil {
		return err
	}
	if res.sentinel != sentinelSuccess {
		return qerrors.Connection(qerrors.CodeUnreachable, "probe create failed: "+res.errText, nil)
	}
	res, err = b.exec(ctx, buildDelete(temp), 0)
	if err != nil {
		return err
	}
	if res.sentinel != sentinelSuccess {
		return qerrors.Connection(qerrors.CodeUnreachable, "probe delete failed: "+res.errText, nil)
	}
	return nil
}

func (b *Backend) CreateQueue(ctx context.Context, name string, opts transport.CreateOptions) error {
	p, err := transport.ParsePathname(name)
	if err != nil {
		return err
	}
	if !addressable(p) {
		return qerrors.Validation(qerrors.CodeInvalidName,
			"queues are created by pathname, not format name").WithQueue(p.Canonical)
	}
	exists, err := b.QueueExists(ctx, p.Canonical)
	if err != nil {
		return err
	}
	if exists {
		return qerrors.Business(qerrors.CodeQueueExists, "queue already exists").
			WithOp("create_queue").WithQueue(p.Canonical)
	}

	script, err := buildCreate(p, opts)
	if err != nil {
		return err
	}
	res, err := b.exec(ctx, script, 0)
	if err != nil {
		return err
	}
	if res.sentinel != sentinelSuccess {
		return b.failure("create_queue", p.Canonical, res.errText)
	}
	log.Debug().Str("queue", p.Canonical).Msg("Created queue")
	return nil
}

func (b *Backend) DeleteQueue(ctx context.Context, name string) error {
	p, err := transport.ParsePathname(name)
	if err != nil {
		return err
	}
	res, err := b.exec(ctx, buildDelete(p), 0)
	if err != nil {
		return err
	}
	switch res.sentinel {
	case sentinelSuccess:
		log.Debug().Str("queue", p.Canonical).Msg("Deleted queue")
		return nil
	case sentinelNotFound:
		return qerrors.Business(qerrors.CodeQueueNotFound, "queue does not exist").
			WithOp("delete_queue").WithQueue(p.Canonical)
	default:
		return b.failure("delete_queue", p.Canonical, res.errText)
	}
}

func (b *Backend) QueueExists(ctx context.Context, name string) (bool, error) {
	p, err := transport.ParsePathname(name)
	if err != nil {
		return false, err
	}

	if addressable(p) {
		res, err := b.exec(ctx, buildExists(p), 0)
		if err != nil {
			return false, err
		}
		switch res.sentinel {
		case sentinelSuccess:
			return true, nil
		case sentinelNotFound:
			return false, nil
		default:
			return false, b.failure("queue_exists", p.Canonical, res.errText)
		}
	}

	// Direct grammars bypass the directory, so probe with a zero-wait peek
	// and judge by the answer.
	res, err := b.exec(ctx, buildReceive(p, 0, true), 0)
	if err != nil {
		return false, err
	}
	switch res.sentinel {
	case sentinelSuccess, sentinelNoMessage:
		return true, nil
	case sentinelNotFound:
		return false, nil
	default:
		if accessDenied(res.errText) {
			return true, nil
		}
		return false, b.failure("queue_exists", p.Canonical, res.errText)
	}
}

// Send enqueues one message. Pathname-addressed destinations are created by
// the generated command when missing.
func (b *Backend) Send(ctx context.Context, opts transport.SendOptions) (*transport.Message, error) {
	p, err := transport.ParsePathname(opts.Queue)
	if err != nil {
		return nil, err
	}
	priority := transport.EffectivePriority(opts.Priority)
	script, err := buildSend(p, opts.Body, opts.Label, priority, opts.CorrelationID)
	if err != nil {
		return nil, err
	}
	res, err := b.exec(ctx, script, 0)
	if err != nil {
		return nil, err
	}
	switch res.sentinel {
	case sentinelSuccess:
	case sentinelNotFound:
		return nil, qerrors.Business(qerrors.CodeQueueNotFound, "destination queue does not exist").
			WithOp("send").WithQueue(p.Canonical)
	default:
		return nil, b.failure("send", p.Canonical, res.errText)
	}

	msg := &transport.Message{
		ID:            strings.TrimSpace(res.field(fieldMessageID)),
		Queue:         p.Canonical,
		Body:          append([]byte(nil), opts.Body...),
		Label:         opts.Label,
		Priority:      priority,
		CorrelationID: opts.CorrelationID,
		Status:        transport.StatusSent,
		SentAt:        time.Now(),
	}
	log.Debug().Str("queue", p.Canonical).Str("id", msg.ID).Int("priority", priority).Msg("Sent message")
	return msg, nil
}

// Receive dequeues (or peeks) the front message, waiting up to the timeout.
// An empty queue after the timeout returns (nil, nil).
func (b *Backend) Receive(ctx context.Context, opts transport.ReceiveOptions) (*transport.Message, error) {
	p, err := transport.ParsePathname(opts.Queue)
	if err != nil {
		return nil, err
	}
	var timeoutMS int64
	var extra time.Duration
	if opts.Timeout > 0 {
		timeoutMS = opts.Timeout.Milliseconds()
		extra = opts.Timeout
	}
	res, err := b.exec(ctx, buildReceive(p, timeoutMS, opts.Peek), extra)
	if err != nil {
		return nil, err
	}
	switch res.sentinel {
	case sentinelSuccess:
	case sentinelNoMessage:
		return nil, nil
	case sentinelNotFound:
		return nil, qerrors.Business(qerrors.CodeQueueNotFound, "queue does not exist").
			WithOp("receive").WithQueue(p.Canonical)
	default:
		return nil, b.failure("receive", p.Canonical, res.errText)
	}

	body, err := base64.StdEncoding.DecodeString(strings.TrimSpace(res.field(fieldBody)))
	if err != nil {
		return nil, qerrors.System(qerrors.CodeHostOutput, "message body is not valid base64", err).
			WithOp("receive").WithQueue(p.Canonical)
	}
	priority := transport.DefaultPriority
	if s := strings.TrimSpace(res.field(fieldPriority)); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			priority = n
		}
	}

	msg := &transport.Message{
		ID:            strings.TrimSpace(res.field(fieldMessageID)),
		Queue:         p.Canonical,
		Body:          body,
		Label:         res.field(fieldLabel),
		Priority:      priority,
		CorrelationID: strings.TrimSpace(res.field(fieldCorrelationID)),
		Status:        transport.StatusQueued,
	}
	if !opts.Peek {
		msg.Status = transport.StatusReceived
		msg.ReceivedAt = time.Now()
	}
	log.Debug().Str("queue", p.Canonical).Str("id", msg.ID).Bool("peek", opts.Peek).Msg("Received message")
	return msg, nil
}

func (b *Backend) Purge(ctx context.Context, name string) error {
	p, err := transport.ParsePathname(name)
	if err != nil {
		return err
	}
	res, err := b.exec(ctx, buildPurge(p), 0)
	if err != nil {
		return err
	}
	switch res.sentinel {
	case sentinelSuccess:
		log.Debug().Str("queue", p.Canonical).Msg("Purged queue")
		return nil
	case sentinelNotFound:
		return qerrors.Business(qerrors.CodeQueueNotFound, "queue does not exist").
			WithOp("purge").WithQueue(p.Canonical)
	default:
		return b.failure("purge", p.Canonical, res.errText)
	}
}

func (b *Backend) MessageCount(ctx context.Context, name string) (int64, error) {
	p, err := transport.ParsePathname(name)
	if err != nil {
		return 0, err
	}
	res, err := b.exec(ctx, buildCount(p), 0)
	if err != nil {
		return 0, err
	}
	switch res.sentinel {
	case sentinelSuccess:
	case sentinelNotFound:
		return 0, qerrors.Business(qerrors.CodeQueueNotFound, "queue does not exist").
			WithOp("message_count").WithQueue(p.Canonical)
	default:
		return 0, b.failure("message_count", p.Canonical, res.errText)
	}
	n, err := strconv.ParseInt(strings.TrimSpace(res.field(fieldCount)), 10, 64)
	if err != nil {
		return 0, qerrors.System(qerrors.CodeHostOutput, "count field missing or malformed", err).
			WithOp("message_count").WithQueue(p.Canonical)
	}
	return n, nil
}

func (b *Backend) UpdateQueue(ctx context.Context, name string, opts transport.UpdateOptions) error {
	p, err := transport.ParsePathname(name)
	if err != nil {
		return err
	}
	script, err := buildUpdate(p, opts)
	if err != nil {
		return err
	}
	res, err := b.exec(ctx, script, 0)
	if err != nil {
		return err
	}
	switch res.sentinel {
	case sentinelSuccess:
		log.Debug().Str("queue", p.Canonical).Msg("Updated queue properties")
		return nil
	case sentinelNotFound:
		return qerrors.Business(qerrors.CodeQueueNotFound, "queue does not exist").
			WithOp("update_queue").WithQueue(p.Canonical)
	default:
		return b.failure("update_queue", p.Canonical, res.errText)
	}
}

// ListQueues enumerates the machine's private queues. The host reports
// pathnames only, so entries carry no depth or descriptor detail.
func (b *Backend) ListQueues(ctx context.Context) ([]transport.QueueInfo, error) {
	res, err := b.exec(ctx, buildList(b.host), 0)
	if err != nil {
		return nil, err
	}
	if res.sentinel != sentinelSuccess {
		return nil, b.failure("list_queues", "", res.errText)
	}

	infos := make([]transport.QueueInfo, 0, len(res.queues))
	for _, path := range res.queues {
		p, err := transport.ParsePathname(path)
		if err != nil {
			log.Debug().Str("path", path).Err(err).Msg("Skipping unparseable queue pathname")
			continue
		}
		infos = append(infos, transport.QueueInfo{
			Name:   p.Queue,
			Path:   p.Canonical,
			Status: transport.QueueActive,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Path < infos[j].Path })
	return infos, nil
}

func (b *Backend) Stats(ctx context.Context, name string) (transport.QueueStats, error) {
	p, err := transport.ParsePathname(name)
	if err != nil {
		return transport.QueueStats{}, err
	}
	count, err := b.MessageCount(ctx, p.Canonical)
	if err != nil {
		return transport.QueueStats{}, err
	}
	return transport.QueueStats{Queue: p.Canonical, MessageCount: count}, nil
}

func (b *Backend) exec(ctx context.Context, script string, extra time.Duration) (*result, error) {
	out, err := b.runner.run(ctx, script, extra)
	if err != nil {
		return nil, err
	}
	return parseOutput(out)
}

// failure maps a FAILED sentinel to the error taxonomy using the host's
// error text, which is the only classification signal this boundary has.
func (b *Backend) failure(op, queue, errText string) *qerrors.Error {
	msg := strings.TrimSpace(errText)
	if msg == "" {
		msg = "host reported failure"
	}
	low := strings.ToLower(msg)
	var qerr *qerrors.Error
	switch {
	case accessDenied(msg):
		qerr = qerrors.Business(qerrors.CodeAccessDenied, msg)
	case strings.Contains(low, "sharing violation"):
		qerr = qerrors.Business(qerrors.CodeSharingViolation, msg)
	case strings.Contains(low, "already exists"):
		qerr = qerrors.Business(qerrors.CodeQueueExists, msg)
	default:
		qerr = qerrors.System(qerrors.CodeInternal, msg, nil)
	}
	return qerr.WithOp(op).WithQueue(queue)
}

func accessDenied(errText string) bool {
	return strings.Contains(strings.ToLower(errText), "denied")
}
