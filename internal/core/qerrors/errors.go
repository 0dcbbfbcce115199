// Package qerrors defines the gateway error taxonomy. Every failure that
// crosses a package boundary is classified into one of five kinds so that
// callers can decide mechanically whether to reject, report, or reconnect.
package qerrors

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation: the input never reached a backend (bad name, bad
	// priority, empty body).
	KindValidation
	// KindBusiness: the backend answered, the answer is a domain outcome
	// (queue missing, queue already there, nothing to receive).
	KindBusiness
	// KindConnection: the backend is unreachable or stopped answering.
	// Only this kind makes the lifecycle manager reconnect.
	KindConnection
	// KindSystem: unexpected runtime fault (spawn failure, garbled host
	// output, API error outside the mapped set).
	KindSystem
	// KindFormat: message content transformation failed.
	KindFormat
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindBusiness:
		return "business"
	case KindConnection:
		return "connection"
	case KindSystem:
		return "system"
	case KindFormat:
		return "format"
	default:
		return "unknown"
	}
}

// Stable error codes. These are part of the API surface: they appear in HTTP
// error envelopes, metrics labels, and alert records. Never renumber or reuse.
const (
	CodeInvalidName       = "INVALID_QUEUE_NAME"
	CodeInvalidLabel      = "INVALID_LABEL"
	CodeInvalidPriority   = "INVALID_PRIORITY"
	CodeInvalidTimeout    = "INVALID_TIMEOUT"
	CodeEmptyBody         = "EMPTY_BODY"
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeStoreDisabled     = "STORE_DISABLED"
	CodeQueueNotFound     = "QUEUE_NOT_FOUND"
	CodeQueueExists       = "QUEUE_EXISTS"
	CodeNoMessage         = "NO_MESSAGE"
	CodeAlertNotFound     = "ALERT_NOT_FOUND"
	CodeListExists        = "MAILING_LIST_EXISTS"
	CodeSharingViolation  = "SHARING_VIOLATION"
	CodeAccessDenied      = "ACCESS_DENIED"
	CodeUnreachable       = "BROKER_UNREACHABLE"
	CodeReconnectFailed   = "RECONNECT_FAILED"
	CodeNotConnected      = "NOT_CONNECTED"
	CodeHostSpawn         = "SCRIPT_HOST_SPAWN"
	CodeHostOutput        = "SCRIPT_HOST_OUTPUT"
	CodeTimeout           = "OPERATION_TIMEOUT"
	CodeFormatUnparseable = "FORMAT_UNPARSEABLE"
	CodeCapacity          = "QUEUE_FULL"
	CodeInternal          = "INTERNAL"
)

// Error carries the classification plus enough context to log and surface the
// failure without re-parsing message strings.
type Error struct {
	Kind  Kind
	Code  string
	Op    string // gateway operation, e.g. "send", "create_queue"
	Queue string // canonical queue pathname, when known
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	s := fmt.Sprintf("%s error [%s]", e.Kind, e.Code)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Queue != "" {
		s += " queue=" + e.Queue
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WithOp returns a copy annotated with the gateway operation name.
func (e *Error) WithOp(op string) *Error {
	c := *e
	c.Op = op
	return &c
}

// WithQueue returns a copy annotated with the queue pathname.
func (e *Error) WithQueue(queue string) *Error {
	c := *e
	c.Queue = queue
	return &c
}

func Validation(code, msg string) *Error {
	return &Error{Kind: KindValidation, Code: code, Msg: msg}
}

func Business(code, msg string) *Error {
	return &Error{Kind: KindBusiness, Code: code, Msg: msg}
}

func Connection(code, msg string, err error) *Error {
	return &Error{Kind: KindConnection, Code: code, Msg: msg, Err: err}
}

func System(code, msg string, err error) *Error {
	return &Error{Kind: KindSystem, Code: code, Msg: msg, Err: err}
}

func Format(code, msg string, err error) *Error {
	return &Error{Kind: KindFormat, Code: code, Msg: msg, Err: err}
}

// KindOf reports the kind of err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// CodeOf reports the stable code of err, or empty for foreign errors.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}

// IsConnection reports whether err should trip the lifecycle manager into a
// reconnect. Foreign errors never do.
func IsConnection(err error) bool {
	return IsKind(err, KindConnection)
}

func IsNotFound(err error) bool {
	return CodeOf(err) == CodeQueueNotFound
}

func IsNoMessage(err error) bool {
	return CodeOf(err) == CodeNoMessage
}
