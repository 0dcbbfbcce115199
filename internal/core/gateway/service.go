// Package gateway is the operations façade in front of the queue backends.
// Every operation follows the same path: make sure a connection is live, run
// the backend call, classify and record the outcome, and keep the queue
// cache, the message journal, and the alert trail in step. Handlers and CLI
// commands talk to this package only; they never hold a transport.Backend.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf16"

	"github.com/rs/zerolog/log"

	"github.com/quegate/quegate/config"
	"github.com/quegate/quegate/internal/alert"
	"github.com/quegate/quegate/internal/core/models"
	"github.com/quegate/quegate/internal/core/qerrors"
	"github.com/quegate/quegate/internal/core/transport"
	"github.com/quegate/quegate/internal/store"
	"github.com/quegate/quegate/pkg/format"
	"github.com/quegate/quegate/pkg/metrics"
)

// GatewayService defines the operations exposed over HTTP and the CLI.
type GatewayService interface {
	/* Queues */

	// ListQueues lists all queues on the backend. The bool reports whether
	// the listing was served stale from the cache because the backend was
	// unreachable.
	ListQueues(ctx context.Context) ([]models.QueueDTO, bool, error)
	// GetQueue retrieves one queue by pathname, falling back to the cache
	// when the backend is unreachable.
	GetQueue(ctx context.Context, name string) (*models.QueueDTO, bool, error)
	// CreateQueue creates a queue with the given attributes.
	CreateQueue(ctx context.Context, name string, opts transport.CreateOptions) (*models.QueueDTO, error)
	// UpdateQueue changes the mutable attributes of an existing queue.
	UpdateQueue(ctx context.Context, name string, opts transport.UpdateOptions) error
	// DeleteQueue removes a queue and everything in it.
	DeleteQueue(ctx context.Context, name string) error
	// QueueExists reports whether the queue exists on the backend.
	QueueExists(ctx context.Context, name string) (bool, error)
	// PurgeQueue discards all messages while keeping the queue.
	PurgeQueue(ctx context.Context, name string) error
	// MessageCount returns the number of messages waiting in the queue.
	MessageCount(ctx context.Context, name string) (int64, error)
	// QueueStats returns the per-queue statistics snapshot.
	QueueStats(ctx context.Context, name string) (*models.QueueStatsDTO, error)

	/* Messages */

	// Send enqueues one message, negotiating XML bodies first.
	Send(ctx context.Context, opts transport.SendOptions) (*models.MessageDTO, error)
	// Receive removes and returns the front message, waiting up to timeout.
	Receive(ctx context.Context, queue string, timeout time.Duration) (*models.MessageDTO, error)
	// Peek returns the front message without removing it.
	Peek(ctx context.Context, queue string, timeout time.Duration) (*models.MessageDTO, error)
	DefaultReceiveTimeout() time.Duration

	/* Connection */

	Connect(ctx context.Context) error
	Disconnect() error
	// Status reports the connection health snapshot.
	Status() transport.Health
	IsConnected() bool

	/* Overview */

	// Statistics assembles the gateway-wide overview.
	Statistics(ctx context.Context) (*models.Overview, error)

	/* Alerts */

	// Alerts lists raised alerts, newest first.
	Alerts(ctx context.Context, includeAcked bool, limit int) ([]models.AlertDTO, error)
	// AckAlert acknowledges one alert by id.
	AckAlert(ctx context.Context, id string) error
	MailingLists(ctx context.Context) ([]models.MailingListDTO, error)
	CreateMailingList(ctx context.Context, req models.MailingListDTO) (*models.MailingListDTO, error)

	/* Journal */

	// Journal lists journaled message envelopes, newest first.
	Journal(ctx context.Context, queue, direction string, limit int) ([]models.JournalEntryDTO, error)
}

// Service implements GatewayService on top of a connection provider.
type Service struct {
	cfg        *config.Config
	manager    ConnectionProvider
	negotiator *format.Negotiator
	collector  metrics.MetricsCollector
	store      *store.Store   // nil disables the cache, the journal, and alert persistence
	alerts     *alert.Service // nil disables alert raising
	startedAt  time.Time
}

var _ GatewayService = (*Service)(nil)

// NewService builds the gateway façade. st and alerts may be nil; negotiator
// nil falls back to the default strategy order.
func NewService(cfg *config.Config, manager ConnectionProvider, negotiator *format.Negotiator, collector metrics.MetricsCollector, st *store.Store, alerts *alert.Service) *Service {
	if negotiator == nil {
		negotiator = format.NewNegotiator()
	}
	return &Service{
		cfg:        cfg,
		manager:    manager,
		negotiator: negotiator,
		collector:  collector,
		store:      st,
		alerts:     alerts,
		startedAt:  time.Now(),
	}
}

// DefaultReceiveTimeout is the wait applied when a receive request carries no
// timeout of its own.
func (s *Service) DefaultReceiveTimeout() time.Duration {
	return s.cfg.ReceiveTimeout()
}

// run executes one backend operation under the uniform policy: ensure a
// connection first, time the call, and classify the outcome. A
// connection-kind failure mid-operation trips the lifecycle manager, then
// gets exactly one reconnect-and-retry; when the reconnect fails too, the
// operation surfaces as backend-unavailable carrying the original cause.
func run[T any](ctx context.Context, s *Service, op, queue string, fn func(transport.Backend) (T, error)) (T, error) {
	var zero T
	start := time.Now()

	if err := s.manager.Ensure(ctx); err != nil {
		s.alertConnection(ctx, queue, err)
		return zero, s.done(op, queue, start, err)
	}

	out, err := call(s, fn)
	if qerrors.IsConnection(err) {
		s.manager.OnConnectionError(err)
		s.alertConnection(ctx, queue, err)

		if ensureErr := s.manager.Ensure(ctx); ensureErr != nil {
			s.alertConnection(ctx, queue, ensureErr)
			err = qerrors.Connection(qerrors.CodeUnreachable, "backend unavailable", err)
		} else if out, err = call(s, fn); qerrors.IsConnection(err) {
			s.manager.OnConnectionError(err)
		}
	}

	if err != nil {
		return zero, s.done(op, queue, start, err)
	}
	return out, s.done(op, queue, start, nil)
}

// runErr is run for operations that only return an error.
func runErr(ctx context.Context, s *Service, op, queue string, fn func(transport.Backend) error) error {
	_, err := run(ctx, s, op, queue, func(b transport.Backend) (struct{}, error) {
		return struct{}{}, fn(b)
	})
	return err
}

func call[T any](s *Service, fn func(transport.Backend) (T, error)) (T, error) {
	if b := s.manager.Backend(); b != nil {
		return fn(b)
	}
	var zero T
	return zero, qerrors.Connection(qerrors.CodeNotConnected, "no active backend", nil)
}

// done records the operation outcome and returns the error in its surfaced
// form: annotated with operation and queue, and with system failures reduced
// to a stable envelope after the full cause is logged here.
func (s *Service) done(op, queue string, start time.Time, err error) error {
	duration := time.Since(start)
	if err == nil {
		s.collector.RecordOperation(op, duration, "")
		s.manager.Touch()
		return nil
	}

	kind := qerrors.KindOf(err)
	if kind == qerrors.KindUnknown {
		err = qerrors.System(qerrors.CodeInternal, "unexpected failure", err)
		kind = qerrors.KindSystem
	}
	s.collector.RecordOperation(op, duration, kind.String())

	qe := annotate(err, op, queue)
	switch kind {
	case qerrors.KindSystem:
		log.Error().Err(err).Str("op", op).Str("queue", queue).Msg("Operation failed")
		return &qerrors.Error{Kind: qerrors.KindSystem, Code: qe.Code, Op: qe.Op, Queue: qe.Queue, Msg: "internal gateway error"}
	case qerrors.KindConnection:
		log.Warn().Err(err).Str("op", op).Msg("Operation failed, backend unavailable")
	default:
		log.Debug().Err(err).Str("op", op).Msg("Operation rejected")
	}
	return qe
}

// reject records and surfaces a failure caught before the backend was
// involved, typically input validation.
func (s *Service) reject(op, queue string, err error) error {
	s.collector.RecordOperation(op, 0, qerrors.KindOf(err).String())
	log.Debug().Err(err).Str("op", op).Msg("Operation rejected")
	return annotate(err, op, queue)
}

// annotate stamps operation and queue onto the error without disturbing
// annotations set deeper in the stack.
func annotate(err error, op, queue string) *qerrors.Error {
	var qe *qerrors.Error
	if !errors.As(err, &qe) {
		return qerrors.System(qerrors.CodeInternal, "unexpected failure", err).WithOp(op).WithQueue(queue)
	}
	if qe.Op == "" {
		qe = qe.WithOp(op)
	}
	if qe.Queue == "" && queue != "" {
		qe = qe.WithQueue(queue)
	}
	return qe
}

// alertConnection raises the alert for a connection failure. A failed
// reconnect is critical: the gateway is down until something changes.
func (s *Service) alertConnection(ctx context.Context, queue string, err error) {
	if s.alerts == nil {
		return
	}
	sev := alert.SeverityError
	if qerrors.CodeOf(err) == qerrors.CodeReconnectFailed {
		sev = alert.SeverityCritical
	}
	s.alerts.Raise(ctx, sev, alert.PurposeConnection, qerrors.CodeOf(err), queue, err.Error())
}

func checkLabel(label string) error {
	if len(utf16.Encode([]rune(label))) > transport.MaxLabelChars {
		return qerrors.Validation(qerrors.CodeInvalidLabel,
			fmt.Sprintf("label exceeds %d characters", transport.MaxLabelChars))
	}
	for _, r := range label {
		if r < 0x20 || r == 0x7f {
			return qerrors.Validation(qerrors.CodeInvalidLabel, "label contains control characters")
		}
	}
	return nil
}

func checkPriority(p *int) error {
	if p == nil {
		return nil
	}
	if *p < transport.MinPriority || *p > transport.MaxPriority {
		return qerrors.Validation(qerrors.CodeInvalidPriority,
			fmt.Sprintf("priority %d is outside %d..%d", *p, transport.MinPriority, transport.MaxPriority))
	}
	return nil
}

// cacheQueue refreshes the stored row for one queue after a successful
// backend operation. Cache writes never fail the operation.
func (s *Service) cacheQueue(ctx context.Context, info transport.QueueInfo) {
	if s.store == nil {
		return
	}
	now := time.Now().UTC()
	created := info.CreatedAt
	if created.IsZero() {
		created = now
	}
	rec := store.QueueRecord{
		Path:          info.Path,
		Name:          info.Name,
		Label:         info.Label,
		MaxSizeKB:     info.MaxSizeKB,
		Transactional: info.Transactional,
		Journal:       info.Journal,
		Status:        string(info.Status),
		MessageCount:  info.MessageCount,
		CreatedAt:     created,
		UpdatedAt:     now,
		LastSeenAt:    now,
	}
	if err := s.store.UpsertQueue(ctx, rec); err != nil {
		log.Warn().Err(err).Str("queue", info.Path).Msg("Failed to update queue cache")
	}
}

// syncCount writes a fresh backend count through to the cache. A row the
// cache has not seen yet is left for the reconciler.
func (s *Service) syncCount(ctx context.Context, path string, count int64) {
	if s.store == nil {
		return
	}
	if err := s.store.SetQueueCount(ctx, path, count); err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Warn().Err(err).Str("queue", path).Msg("Failed to update queue cache")
	}
}

func (s *Service) dropCached(ctx context.Context, path string) {
	if s.store == nil {
		return
	}
	if err := s.store.DeleteQueue(ctx, path); err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Warn().Err(err).Str("queue", path).Msg("Failed to evict queue from cache")
	}
}

// journal appends one envelope to the message journal. Bodies are not
// recorded.
func (s *Service) journal(ctx context.Context, e store.JournalEntry) {
	if s.store == nil {
		return
	}
	if _, err := s.store.AppendJournal(ctx, e); err != nil {
		log.Warn().Err(err).Str("queue", e.Queue).Msg("Failed to journal message")
	}
}

func queueRecordDTO(r store.QueueRecord) models.QueueDTO {
	return models.QueueDTO{
		Name:          r.Name,
		Path:          r.Path,
		Status:        r.Status,
		MessageCount:  r.MessageCount,
		Stale:         true,
		Label:         r.Label,
		MaxSizeKB:     r.MaxSizeKB,
		Transactional: r.Transactional,
		Journal:       r.Journal,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}
