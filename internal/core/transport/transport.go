// Package transport defines the backend contract the gateway operates
// against, plus the message and queue types shared by every backend. A
// backend is one concrete way of reaching the platform queueing facility:
// the in-process native runtime, an external scripting host, or the
// in-memory simulation.
package transport

import (
	"context"
	"time"
)

// Kind identifies a backend implementation.
type Kind int

const (
	KindUnknown Kind = iota
	KindNative
	KindScript
	KindMemory
)

func (k Kind) String() string {
	switch k {
	case KindNative:
		return "native"
	case KindScript:
		return "script"
	case KindMemory:
		return "memory"
	default:
		return "unknown"
	}
}

// State is the connection lifecycle state owned by the manager.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	default:
		return "DISCONNECTED"
	}
}

type MessageStatus string

const (
	StatusPending  MessageStatus = "PENDING"
	StatusQueued   MessageStatus = "QUEUED"
	StatusSent     MessageStatus = "SENT"
	StatusReceived MessageStatus = "RECEIVED"
	StatusFailed   MessageStatus = "FAILED"
)

type QueueStatus string

const (
	QueueActive   QueueStatus = "ACTIVE"
	QueueInactive QueueStatus = "INACTIVE"
	QueueError    QueueStatus = "ERROR"
)

// Priority bounds of the platform facility. Nil priority on send means
// DefaultPriority; out-of-range is rejected, never clamped.
const (
	MinPriority     = 0
	MaxPriority     = 7
	DefaultPriority = 3
)

// MaxLabelChars is the platform limit on queue and message labels, in
// UTF-16 units.
const MaxLabelChars = 124

// Message is one queued message as the gateway sees it.
type Message struct {
	ID            string        `json:"id"`
	Queue         string        `json:"queue"`
	Body          []byte        `json:"body"`
	Label         string        `json:"label"`
	Priority      int           `json:"priority"`
	CorrelationID string        `json:"correlation_id,omitempty"`
	Status        MessageStatus `json:"status"`
	SentAt        time.Time     `json:"sent_at,omitempty"`
	ReceivedAt    time.Time     `json:"received_at,omitempty"`
}

// QueueInfo describes one queue known to the active backend.
type QueueInfo struct {
	Name          string      `json:"name"`
	Path          string      `json:"path"`
	Status        QueueStatus `json:"status"`
	MessageCount  int64       `json:"message_count"`
	MaxSizeKB     int64       `json:"max_size_kb,omitempty"`
	Label         string      `json:"label,omitempty"`
	Transactional bool        `json:"transactional"`
	Journal       bool        `json:"journal"`
	CreatedAt     time.Time   `json:"created_at,omitempty"`
	UpdatedAt     time.Time   `json:"updated_at,omitempty"`
}

// QueueStats is the per-queue activity snapshot.
type QueueStats struct {
	Queue         string    `json:"queue"`
	MessageCount  int64     `json:"message_count"`
	BytesInQueue  int64     `json:"bytes_in_queue"`
	LastSendAt    time.Time `json:"last_send_at,omitempty"`
	LastReceiveAt time.Time `json:"last_receive_at,omitempty"`
}

// Health is the lifecycle snapshot reported by the manager.
type Health struct {
	State          State         `json:"-"`
	StateText      string        `json:"state"`
	Backend        string        `json:"backend"`
	Host           string        `json:"host"`
	Port           int           `json:"port"`
	ConnectTimeout time.Duration `json:"-"`
	TimeoutMS      int64         `json:"connect_timeout_ms"`
	RetryAttempts  int           `json:"retry_attempts"`
	Reconnects     int64         `json:"reconnects"`
	LastActivity   time.Time     `json:"last_activity,omitempty"`
	LastProbe      time.Time     `json:"last_probe,omitempty"`
	LastError      string        `json:"last_error,omitempty"`
}

// SendOptions carries everything a backend needs to enqueue one message.
// Priority nil means DefaultPriority.
type SendOptions struct {
	Queue         string
	Body          []byte
	Label         string
	Priority      *int
	CorrelationID string
}

// ReceiveOptions carries the dequeue parameters. Peek true browses without
// removing. Timeout zero means "return immediately when empty".
type ReceiveOptions struct {
	Queue   string
	Timeout time.Duration
	Peek    bool
}

// CreateOptions are the queue attributes settable at creation.
type CreateOptions struct {
	Label         string
	MaxSizeKB     int64
	Transactional bool
	Journal       bool
}

// UpdateOptions are the mutable queue attributes. Nil fields stay untouched.
type UpdateOptions struct {
	Label     *string
	MaxSizeKB *int64
	Journal   *bool
}

// Backend is the contract every access path implements. All methods classify
// failures through qerrors so the façade and the lifecycle manager can react
// by kind. Receive returns (nil, nil) when the timeout lapses with nothing to
// deliver; "no message" is not an error at this level. Send creates the
// destination queue when it does not exist yet, on every backend.
type Backend interface {
	// Open prepares the backend (loads the runtime, locates the host
	// executable). Idempotent.
	Open(ctx context.Context) error
	Close() error
	Kind() Kind

	// Probe runs the three-step reachability check: dependency present,
	// probe queue reachable (access-denied counts as reachable), and a
	// create/delete round-trip on a throwaway queue.
	Probe(ctx context.Context) error

	CreateQueue(ctx context.Context, name string, opts CreateOptions) error
	DeleteQueue(ctx context.Context, name string) error
	QueueExists(ctx context.Context, name string) (bool, error)
	Send(ctx context.Context, opts SendOptions) (*Message, error)
	Receive(ctx context.Context, opts ReceiveOptions) (*Message, error)
	Purge(ctx context.Context, name string) error
	MessageCount(ctx context.Context, name string) (int64, error)
	UpdateQueue(ctx context.Context, name string, opts UpdateOptions) error
	ListQueues(ctx context.Context) ([]QueueInfo, error)
	Stats(ctx context.Context, name string) (QueueStats, error)
}

// EffectivePriority resolves the optional send priority against the default.
func EffectivePriority(p *int) int {
	if p == nil {
		return DefaultPriority
	}
	return *p
}
