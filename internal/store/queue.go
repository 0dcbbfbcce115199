package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// QueueRecord is the cached view of one broker queue. The canonical
// pathname is the key; the leaf name is kept for display.
type QueueRecord struct {
	Path          string    `db:"path"`
	Name          string    `db:"name"`
	Label         string    `db:"label"`
	MaxSizeKB     int64     `db:"max_size_kb"`
	Transactional bool      `db:"transactional"`
	Journal       bool      `db:"journal"`
	Status        string    `db:"status"`
	MessageCount  int64     `db:"message_count"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
	LastSeenAt    time.Time `db:"last_seen_at"`
}

// UpsertQueue inserts the record or refreshes an existing one. The
// original created_at survives an update.
func (s *Store) UpsertQueue(ctx context.Context, rec QueueRecord) error {
	query := `
		INSERT INTO queues (
			path, name, label, max_size_kb, transactional, journal,
			status, message_count, created_at, updated_at, last_seen_at
		) VALUES (
			:path, :name, :label, :max_size_kb, :transactional, :journal,
			:status, :message_count, :created_at, :updated_at, :last_seen_at
		)
		ON CONFLICT(path) DO UPDATE SET
			name = excluded.name,
			label = excluded.label,
			max_size_kb = excluded.max_size_kb,
			transactional = excluded.transactional,
			journal = excluded.journal,
			status = excluded.status,
			message_count = excluded.message_count,
			updated_at = excluded.updated_at,
			last_seen_at = excluded.last_seen_at`

	if _, err := s.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("failed to upsert queue: %w", err)
	}
	return nil
}

// GetQueue looks up one cached queue by canonical pathname.
func (s *Store) GetQueue(ctx context.Context, path string) (*QueueRecord, error) {
	var rec QueueRecord
	err := s.db.GetContext(ctx, &rec, `SELECT * FROM queues WHERE path = ?`, path)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("queue %q: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query queue: %w", err)
	}
	return &rec, nil
}

// ListQueues returns every cached queue ordered by pathname.
func (s *Store) ListQueues(ctx context.Context) ([]QueueRecord, error) {
	var recs []QueueRecord
	if err := s.db.SelectContext(ctx, &recs, `SELECT * FROM queues ORDER BY path`); err != nil {
		return nil, fmt.Errorf("failed to query queues: %w", err)
	}
	return recs, nil
}

// DeleteQueue removes a queue from the cache.
func (s *Store) DeleteQueue(ctx context.Context, path string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM queues WHERE path = ?`, path)
	if err != nil {
		return fmt.Errorf("failed to delete queue: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("queue %q: %w", path, ErrNotFound)
	}
	return nil
}

// SetQueueCount refreshes the cached message count for a queue and marks
// it seen now.
func (s *Store) SetQueueCount(ctx context.Context, path string, count int64) error {
	now := time.Now().UTC()
	res, err := s.db.NamedExecContext(ctx, `
		UPDATE queues
		SET message_count = :count, status = :status, updated_at = :now, last_seen_at = :now
		WHERE path = :path`,
		map[string]interface{}{
			"path":   path,
			"count":  count,
			"status": "ACTIVE",
			"now":    now,
		})
	if err != nil {
		return fmt.Errorf("failed to update queue count: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("queue %q: %w", path, ErrNotFound)
	}
	return nil
}

// MarkQueuesMissing flags every queue not seen since cutoff as INACTIVE
// and reports how many rows changed. Reconciliation calls this after a
// full broker listing so vanished queues stop looking live.
func (s *Store) MarkQueuesMissing(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.NamedExecContext(ctx, `
		UPDATE queues
		SET status = :status, updated_at = :now
		WHERE last_seen_at < :cutoff AND status != :status`,
		map[string]interface{}{
			"status": "INACTIVE",
			"now":    time.Now().UTC(),
			"cutoff": cutoff,
		})
	if err != nil {
		return 0, fmt.Errorf("failed to mark missing queues: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected, nil
}
