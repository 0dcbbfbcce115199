// Package alert raises operational alerts: persisted through the store
// when one is configured, then fanned out to notifiers with the
// recipients subscribed to the alert's purpose. Repeated raises of the
// same code and queue inside the dedup window fold into one alert so a
// flapping broker does not turn into an alert storm.
package alert

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quegate/quegate/internal/store"
)

// Severity grades an alert.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityError    Severity = "ERROR"
	SeverityCritical Severity = "CRITICAL"
)

// Purpose groups alerts for notification routing. Mailing lists subscribe
// to a purpose, not to individual codes.
type Purpose string

const (
	PurposeConnection Purpose = "CONNECTION"
	PurposeOperation  Purpose = "OPERATION"
	PurposeCapacity   Purpose = "CAPACITY"
	PurposeFormat     Purpose = "FORMAT"
)

// Alert is one raised alert as handed to notifiers.
type Alert struct {
	ID        int64     `json:"id,omitempty"`
	Severity  Severity  `json:"severity"`
	Purpose   Purpose   `json:"purpose"`
	Code      string    `json:"code"`
	Queue     string    `json:"queue,omitempty"`
	Message   string    `json:"message"`
	Count     int64     `json:"count"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier delivers a raised alert to an external channel.
type Notifier interface {
	Notify(ctx context.Context, a Alert, recipients []string) error
}

// Service persists and fans out alerts. Both the store and the notifier
// list may be empty; Raise then only logs.
type Service struct {
	store     *store.Store
	notifiers []Notifier
	window    time.Duration
}

// NewService builds an alert service. store may be nil when persistence
// is disabled.
func NewService(st *store.Store, window time.Duration, notifiers ...Notifier) *Service {
	return &Service{
		store:     st,
		notifiers: notifiers,
		window:    window,
	}
}

// Raise records an alert and notifies subscribers. A raise folded into an
// open alert bumps its counter without re-notifying. Persistence or
// notification failures are logged, never propagated: raising an alert
// must not fail the operation that triggered it.
func (s *Service) Raise(ctx context.Context, sev Severity, purpose Purpose, code, queue, message string) {
	a := Alert{
		Severity:  sev,
		Purpose:   purpose,
		Code:      code,
		Queue:     queue,
		Message:   message,
		Count:     1,
		CreatedAt: time.Now().UTC(),
	}

	event := log.WithLevel(sev.logLevel()).
		Str("code", code).
		Str("purpose", string(purpose))
	if queue != "" {
		event = event.Str("queue", queue)
	}
	event.Msg(message)

	folded := false
	if s.store != nil {
		rec, wasFolded, err := s.store.SaveAlert(ctx, store.AlertRecord{
			Severity:  string(sev),
			Purpose:   string(purpose),
			Code:      code,
			Queue:     queue,
			Message:   message,
			CreatedAt: a.CreatedAt,
		}, s.window)
		if err != nil {
			log.Error().Err(err).Str("code", code).Msg("Failed to persist alert")
		} else {
			a.ID = rec.ID
			a.Count = rec.Count
			a.CreatedAt = rec.CreatedAt
			folded = wasFolded
		}
	}

	if folded || len(s.notifiers) == 0 {
		return
	}

	recipients := s.recipients(ctx, purpose)
	for _, n := range s.notifiers {
		if err := n.Notify(ctx, a, recipients); err != nil {
			log.Warn().Err(err).Str("code", code).Msg("Alert notification failed")
		}
	}
}

func (s *Service) recipients(ctx context.Context, purpose Purpose) []string {
	if s.store == nil {
		return nil
	}
	addrs, err := s.store.RecipientsFor(ctx, string(purpose))
	if err != nil {
		log.Warn().Err(err).Msg("Failed to resolve alert recipients")
		return nil
	}
	return addrs
}

func (sev Severity) logLevel() zerolog.Level {
	switch sev {
	case SeverityCritical, SeverityError:
		return zerolog.ErrorLevel
	case SeverityWarning:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

