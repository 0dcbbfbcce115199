// Package recon runs the background maintenance jobs: a scheduled probe of
// the active backend and a reconciliation pass that keeps the queue cache in
// step with what the broker actually holds.
package recon

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/quegate/quegate/config"
	"github.com/quegate/quegate/internal/core/conn"
	"github.com/quegate/quegate/internal/core/transport"
	"github.com/quegate/quegate/internal/store"
)

// reconcileTimeout bounds one full reconciliation pass.
const reconcileTimeout = time.Minute

// Broker is the slice of the connection manager the scheduled jobs use.
type Broker interface {
	Probe(ctx context.Context) error
	Backend() transport.Backend
	IsConnected() bool
}

var _ Broker = (*conn.Manager)(nil)

// Scheduler owns the cron loop behind the probe and reconciliation jobs.
// A nil store disables reconciliation; the probe runs regardless.
type Scheduler struct {
	c       *cron.Cron
	cfg     *config.Config
	manager Broker
	store   *store.Store
}

func NewScheduler(cfg *config.Config, manager Broker, st *store.Store) *Scheduler {
	return &Scheduler{
		c:       cron.New(),
		cfg:     cfg,
		manager: manager,
		store:   st,
	}
}

// Start registers the jobs and starts the cron loop. The schedules come
// from configuration, so a bad spec is reported instead of swallowed.
func (s *Scheduler) Start() error {
	if s.manager == nil {
		return nil
	}
	if _, err := s.c.AddFunc(s.cfg.ProbeSchedule, s.probe); err != nil {
		return fmt.Errorf("invalid probe schedule %q: %w", s.cfg.ProbeSchedule, err)
	}
	if s.store != nil {
		if _, err := s.c.AddFunc(s.cfg.ReconcileSchedule, s.reconcile); err != nil {
			return fmt.Errorf("invalid reconcile schedule %q: %w", s.cfg.ReconcileSchedule, err)
		}
	} else {
		log.Debug().Msg("Cache store disabled, reconciliation job not scheduled")
	}
	s.c.Start()
	log.Info().
		Str("probe", s.cfg.ProbeSchedule).
		Str("reconcile", s.cfg.ReconcileSchedule).
		Msg("Background scheduler started")
	return nil
}

// Stop halts the cron loop. A job already in flight finishes on its own.
func (s *Scheduler) Stop() {
	if s.c != nil {
		s.c.Stop()
	}
}

// probe re-checks the live connection. A failed probe flags the manager
// disconnected so the next operation reconnects; the probe itself never
// reconnects, and a manager already flagged down has nothing left to detect.
func (s *Scheduler) probe() {
	if !s.manager.IsConnected() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ConnectTimeout())
	defer cancel()
	if err := s.manager.Probe(ctx); err != nil {
		log.Warn().Err(err).Msg("Scheduled probe failed")
		return
	}
	log.Debug().Msg("Scheduled probe ok")
}

// reconcile refreshes the queue cache from a full broker listing, flags
// rows the listing no longer contains, and prunes expired journal rows.
func (s *Scheduler) reconcile() {
	if !s.manager.IsConnected() {
		log.Debug().Msg("Reconciliation skipped, not connected")
		return
	}
	b := s.manager.Backend()
	if b == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()

	s.refreshQueues(ctx, b)
	s.pruneJournal(ctx)
}

func (s *Scheduler) refreshQueues(ctx context.Context, b transport.Backend) {
	pass := time.Now().UTC()
	infos, err := b.ListQueues(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Reconciliation listing failed")
		return
	}
	for _, info := range infos {
		if err := s.store.UpsertQueue(ctx, queueRecord(info, pass)); err != nil {
			log.Warn().Err(err).Str("queue", info.Path).Msg("Reconciliation upsert failed")
		}
	}
	missing, err := s.store.MarkQueuesMissing(ctx, pass)
	if err != nil {
		log.Warn().Err(err).Msg("Reconciliation sweep failed")
		return
	}
	if missing > 0 {
		log.Info().Int("queues", len(infos)).Int64("missing", missing).Msg("Queue cache reconciled")
		return
	}
	log.Debug().Int("queues", len(infos)).Msg("Queue cache reconciled")
}

func (s *Scheduler) pruneJournal(ctx context.Context) {
	retention := s.cfg.JournalRetention()
	if retention <= 0 {
		return
	}
	pruned, err := s.store.PruneJournal(ctx, time.Now().UTC().Add(-retention))
	if err != nil {
		log.Warn().Err(err).Msg("Journal prune failed")
		return
	}
	if pruned > 0 {
		log.Info().Int64("entries", pruned).Msg("Journal pruned")
	}
}

// queueRecord maps one listing entry onto a cache row. Every row touched in
// a pass shares the pass timestamp, which the missing sweep then uses as its
// cutoff: anything older was absent from the listing.
func queueRecord(info transport.QueueInfo, pass time.Time) store.QueueRecord {
	created := info.CreatedAt
	if created.IsZero() {
		created = pass
	}
	return store.QueueRecord{
		Path:          info.Path,
		Name:          info.Name,
		Label:         info.Label,
		MaxSizeKB:     info.MaxSizeKB,
		Transactional: info.Transactional,
		Journal:       info.Journal,
		Status:        string(info.Status),
		MessageCount:  info.MessageCount,
		CreatedAt:     created,
		UpdatedAt:     pass,
		LastSeenAt:    pass,
	}
}
