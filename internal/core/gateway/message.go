package gateway

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/quegate/quegate/internal/alert"
	"github.com/quegate/quegate/internal/core/models"
	"github.com/quegate/quegate/internal/core/qerrors"
	"github.com/quegate/quegate/internal/core/transport"
	"github.com/quegate/quegate/internal/store"
	"github.com/quegate/quegate/pkg/format"
)

// Send validates, negotiates, and enqueues one message. The destination is
// created by the backend when it does not exist yet.
func (s *Service) Send(ctx context.Context, opts transport.SendOptions) (*models.MessageDTO, error) {
	const op = "send"
	p, err := transport.ParsePathname(opts.Queue)
	if err != nil {
		return nil, s.reject(op, opts.Queue, err)
	}
	if len(opts.Body) == 0 {
		return nil, s.reject(op, p.Canonical,
			qerrors.Validation(qerrors.CodeEmptyBody, "message body is empty"))
	}
	if err := checkLabel(opts.Label); err != nil {
		return nil, s.reject(op, p.Canonical, err)
	}
	if err := checkPriority(opts.Priority); err != nil {
		return nil, s.reject(op, p.Canonical, err)
	}

	opts.Queue = p.Canonical
	opts.Body = s.negotiate(ctx, p.Canonical, opts.Body)

	msg, err := run(ctx, s, op, p.Canonical, func(b transport.Backend) (*transport.Message, error) {
		return b.Send(ctx, opts)
	})
	if err != nil {
		if qerrors.CodeOf(err) == qerrors.CodeCapacity && s.alerts != nil {
			s.alerts.Raise(ctx, alert.SeverityWarning, alert.PurposeCapacity,
				qerrors.CodeCapacity, p.Canonical, "queue rejected message, capacity reached")
		}
		return nil, err
	}

	s.collector.RecordQueueSend(p.Canonical)
	s.journal(ctx, store.JournalEntry{
		Queue:         p.Canonical,
		Direction:     store.DirectionSent,
		MessageID:     msg.ID,
		Label:         msg.Label,
		Priority:      msg.Priority,
		CorrelationID: msg.CorrelationID,
		BodySize:      int64(len(msg.Body)),
		Status:        string(msg.Status),
		CreatedAt:     time.Now().UTC(),
	})
	return models.MapMessageDTO(msg), nil
}

// Receive removes and returns the front message, waiting up to timeout when
// the queue is empty. An empty queue after the wait is a NO_MESSAGE business
// error, not a failure of the operation.
func (s *Service) Receive(ctx context.Context, queue string, timeout time.Duration) (*models.MessageDTO, error) {
	return s.receive(ctx, "receive", queue, timeout, false)
}

// Peek returns the front message without removing it.
func (s *Service) Peek(ctx context.Context, queue string, timeout time.Duration) (*models.MessageDTO, error) {
	return s.receive(ctx, "peek", queue, timeout, true)
}

func (s *Service) receive(ctx context.Context, op, queue string, timeout time.Duration, peek bool) (*models.MessageDTO, error) {
	p, err := transport.ParsePathname(queue)
	if err != nil {
		return nil, s.reject(op, queue, err)
	}
	if timeout < 0 {
		return nil, s.reject(op, p.Canonical,
			qerrors.Validation(qerrors.CodeInvalidTimeout, "timeout must not be negative"))
	}

	msg, err := run(ctx, s, op, p.Canonical, func(b transport.Backend) (*transport.Message, error) {
		return b.Receive(ctx, transport.ReceiveOptions{Queue: p.Canonical, Timeout: timeout, Peek: peek})
	})
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, qerrors.Business(qerrors.CodeNoMessage, "no message available").WithOp(op).WithQueue(p.Canonical)
	}

	if !peek {
		s.collector.RecordQueueReceive(p.Canonical)
		s.journal(ctx, store.JournalEntry{
			Queue:         p.Canonical,
			Direction:     store.DirectionReceived,
			MessageID:     msg.ID,
			Label:         msg.Label,
			Priority:      msg.Priority,
			CorrelationID: msg.CorrelationID,
			BodySize:      int64(len(msg.Body)),
			Status:        string(msg.Status),
			CreatedAt:     time.Now().UTC(),
		})
	}
	return models.MapMessageDTO(msg), nil
}

// negotiate runs XML bodies through the format strategies. A body that
// defeats every strategy ships unchanged; the failure is counted and
// alerted but never blocks the send.
func (s *Service) negotiate(ctx context.Context, queue string, body []byte) []byte {
	if !format.IsLikelyXML(body) {
		return body
	}

	start := time.Now()
	out, strategy, err := s.negotiator.Negotiate(body)
	if err != nil {
		s.collector.RecordOperation("negotiate", time.Since(start), qerrors.KindFormat.String())
		log.Warn().Err(err).Str("queue", queue).Msg("Format negotiation failed, sending body unchanged")
		if s.alerts != nil {
			s.alerts.Raise(ctx, alert.SeverityWarning, alert.PurposeFormat,
				qerrors.CodeFormatUnparseable, queue, "message body failed every format strategy")
		}
		return out
	}

	s.collector.RecordOperation("negotiate", time.Since(start), "")
	log.Debug().Str("queue", queue).Str("strategy", strategy).Msg("Negotiated message format")
	return out
}
