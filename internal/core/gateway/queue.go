package gateway

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/quegate/quegate/internal/core/models"
	"github.com/quegate/quegate/internal/core/qerrors"
	"github.com/quegate/quegate/internal/core/transport"
)

// ListQueues lists the queues known to the backend and refreshes the cache
// from the result. When the backend is unreachable and the cache holds rows,
// the listing is served from there with the stale flag set.
func (s *Service) ListQueues(ctx context.Context) ([]models.QueueDTO, bool, error) {
	const op = "list_queues"

	infos, err := run(ctx, s, op, "", func(b transport.Backend) ([]transport.QueueInfo, error) {
		return b.ListQueues(ctx)
	})
	if err != nil {
		if qerrors.IsConnection(err) {
			if cached, ok := s.cachedQueues(ctx); ok {
				return cached, true, nil
			}
		}
		return nil, false, err
	}

	for _, info := range infos {
		s.collector.SetQueueDepth(info.Path, info.MessageCount)
		s.cacheQueue(ctx, info)
	}
	return models.MapListQueuesDTO(infos), false, nil
}

// GetQueue retrieves one queue by any accepted pathname form. An unreachable
// backend falls back to the cached row when one exists.
func (s *Service) GetQueue(ctx context.Context, name string) (*models.QueueDTO, bool, error) {
	const op = "get_queue"
	p, err := transport.ParsePathname(name)
	if err != nil {
		return nil, false, s.reject(op, name, err)
	}

	info, err := run(ctx, s, op, p.Canonical, func(b transport.Backend) (*transport.QueueInfo, error) {
		infos, err := b.ListQueues(ctx)
		if err != nil {
			return nil, err
		}
		for i := range infos {
			if infos[i].Path == p.Canonical {
				return &infos[i], nil
			}
		}
		return nil, qerrors.Business(qerrors.CodeQueueNotFound, "queue does not exist")
	})
	if err != nil {
		if qerrors.IsConnection(err) && s.store != nil {
			if rec, serr := s.store.GetQueue(ctx, p.Canonical); serr == nil {
				dto := queueRecordDTO(*rec)
				return &dto, true, nil
			}
		}
		return nil, false, err
	}

	s.collector.SetQueueDepth(info.Path, info.MessageCount)
	s.cacheQueue(ctx, *info)
	dto := models.MapQueueDTO(*info)
	return &dto, false, nil
}

// CreateQueue creates a queue with the given attributes.
func (s *Service) CreateQueue(ctx context.Context, name string, opts transport.CreateOptions) (*models.QueueDTO, error) {
	const op = "create_queue"
	p, err := transport.ParsePathname(name)
	if err != nil {
		return nil, s.reject(op, name, err)
	}
	if err := checkLabel(opts.Label); err != nil {
		return nil, s.reject(op, p.Canonical, err)
	}
	if opts.MaxSizeKB < 0 {
		return nil, s.reject(op, p.Canonical,
			qerrors.Validation(qerrors.CodeInvalidRequest, "max size must not be negative"))
	}

	if err := runErr(ctx, s, op, p.Canonical, func(b transport.Backend) error {
		return b.CreateQueue(ctx, p.Canonical, opts)
	}); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	info := transport.QueueInfo{
		Name:          p.Queue,
		Path:          p.Canonical,
		Status:        transport.QueueActive,
		Label:         opts.Label,
		MaxSizeKB:     opts.MaxSizeKB,
		Transactional: opts.Transactional,
		Journal:       opts.Journal,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.cacheQueue(ctx, info)
	dto := models.MapQueueDTO(info)
	return &dto, nil
}

// UpdateQueue changes the mutable attributes of an existing queue. Nil
// option fields stay untouched; at least one must be set.
func (s *Service) UpdateQueue(ctx context.Context, name string, opts transport.UpdateOptions) error {
	const op = "update_queue"
	p, err := transport.ParsePathname(name)
	if err != nil {
		return s.reject(op, name, err)
	}
	if opts.Label == nil && opts.MaxSizeKB == nil && opts.Journal == nil {
		return s.reject(op, p.Canonical,
			qerrors.Validation(qerrors.CodeInvalidRequest, "no queue properties to update"))
	}
	if opts.Label != nil {
		if err := checkLabel(*opts.Label); err != nil {
			return s.reject(op, p.Canonical, err)
		}
	}
	if opts.MaxSizeKB != nil && *opts.MaxSizeKB < 0 {
		return s.reject(op, p.Canonical,
			qerrors.Validation(qerrors.CodeInvalidRequest, "max size must not be negative"))
	}

	if err := runErr(ctx, s, op, p.Canonical, func(b transport.Backend) error {
		return b.UpdateQueue(ctx, p.Canonical, opts)
	}); err != nil {
		return err
	}

	s.mergeCached(ctx, p.Canonical, opts)
	return nil
}

// DeleteQueue removes a queue, its messages, its metric series, and its
// cached row.
func (s *Service) DeleteQueue(ctx context.Context, name string) error {
	const op = "delete_queue"
	p, err := transport.ParsePathname(name)
	if err != nil {
		return s.reject(op, name, err)
	}

	if err := runErr(ctx, s, op, p.Canonical, func(b transport.Backend) error {
		return b.DeleteQueue(ctx, p.Canonical)
	}); err != nil {
		return err
	}

	s.collector.RemoveQueue(p.Canonical)
	s.dropCached(ctx, p.Canonical)
	return nil
}

// QueueExists reports whether the queue exists on the backend.
func (s *Service) QueueExists(ctx context.Context, name string) (bool, error) {
	const op = "queue_exists"
	p, err := transport.ParsePathname(name)
	if err != nil {
		return false, s.reject(op, name, err)
	}

	return run(ctx, s, op, p.Canonical, func(b transport.Backend) (bool, error) {
		return b.QueueExists(ctx, p.Canonical)
	})
}

// PurgeQueue discards every message while keeping the queue itself.
func (s *Service) PurgeQueue(ctx context.Context, name string) error {
	const op = "purge"
	p, err := transport.ParsePathname(name)
	if err != nil {
		return s.reject(op, name, err)
	}

	if err := runErr(ctx, s, op, p.Canonical, func(b transport.Backend) error {
		return b.Purge(ctx, p.Canonical)
	}); err != nil {
		return err
	}

	s.collector.SetQueueDepth(p.Canonical, 0)
	s.syncCount(ctx, p.Canonical, 0)
	return nil
}

// MessageCount returns the number of messages waiting in the queue.
func (s *Service) MessageCount(ctx context.Context, name string) (int64, error) {
	const op = "message_count"
	p, err := transport.ParsePathname(name)
	if err != nil {
		return 0, s.reject(op, name, err)
	}

	count, err := run(ctx, s, op, p.Canonical, func(b transport.Backend) (int64, error) {
		return b.MessageCount(ctx, p.Canonical)
	})
	if err != nil {
		return 0, err
	}

	s.collector.SetQueueDepth(p.Canonical, count)
	s.syncCount(ctx, p.Canonical, count)
	return count, nil
}

// QueueStats returns the per-queue statistics snapshot.
func (s *Service) QueueStats(ctx context.Context, name string) (*models.QueueStatsDTO, error) {
	const op = "queue_stats"
	p, err := transport.ParsePathname(name)
	if err != nil {
		return nil, s.reject(op, name, err)
	}

	stats, err := run(ctx, s, op, p.Canonical, func(b transport.Backend) (transport.QueueStats, error) {
		return b.Stats(ctx, p.Canonical)
	})
	if err != nil {
		return nil, err
	}

	s.collector.SetQueueDepth(p.Canonical, stats.MessageCount)
	s.syncCount(ctx, p.Canonical, stats.MessageCount)
	dto := models.MapQueueStatsDTO(stats)
	return &dto, nil
}

// cachedQueues serves the listing from the store. An empty cache is treated
// as cold: there is no way to tell a fresh database from a broker with no
// queues, so the connection error surfaces instead.
func (s *Service) cachedQueues(ctx context.Context) ([]models.QueueDTO, bool) {
	if s.store == nil {
		return nil, false
	}
	recs, err := s.store.ListQueues(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read queue cache")
		return nil, false
	}
	if len(recs) == 0 {
		return nil, false
	}
	dtos := make([]models.QueueDTO, len(recs))
	for i, r := range recs {
		dtos[i] = queueRecordDTO(r)
	}
	log.Info().Int("queues", len(dtos)).Msg("Serving queue list from cache, backend unreachable")
	return dtos, true
}

func (s *Service) mergeCached(ctx context.Context, path string, opts transport.UpdateOptions) {
	if s.store == nil {
		return
	}
	rec, err := s.store.GetQueue(ctx, path)
	if err != nil {
		return
	}
	if opts.Label != nil {
		rec.Label = *opts.Label
	}
	if opts.MaxSizeKB != nil {
		rec.MaxSizeKB = *opts.MaxSizeKB
	}
	if opts.Journal != nil {
		rec.Journal = *opts.Journal
	}
	rec.UpdatedAt = time.Now().UTC()
	rec.LastSeenAt = rec.UpdatedAt
	if err := s.store.UpsertQueue(ctx, *rec); err != nil {
		log.Warn().Err(err).Str("queue", path).Msg("Failed to update queue cache")
	}
}
