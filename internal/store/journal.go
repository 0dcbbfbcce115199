package store

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Journal directions.
const (
	DirectionSent     = "SENT"
	DirectionReceived = "RECEIVED"
)

// JournalEntry records one message that passed through the gateway. Only
// the envelope is kept; bodies never touch the database.
type JournalEntry struct {
	ID            int64     `db:"id"`
	Queue         string    `db:"queue"`
	Direction     string    `db:"direction"`
	MessageID     string    `db:"message_id"`
	Label         string    `db:"label"`
	Priority      int       `db:"priority"`
	CorrelationID string    `db:"correlation_id"`
	BodySize      int64     `db:"body_size"`
	Status        string    `db:"status"`
	CreatedAt     time.Time `db:"created_at"`
}

// JournalFilter narrows a journal listing. Zero values mean "any".
type JournalFilter struct {
	Queue     string
	Direction string
	Since     time.Time
	Limit     int
}

// AppendJournal inserts one journal entry and returns its id.
func (s *Store) AppendJournal(ctx context.Context, e JournalEntry) (int64, error) {
	query := `
		INSERT INTO message_journal (
			queue, direction, message_id, label, priority,
			correlation_id, body_size, status, created_at
		) VALUES (
			:queue, :direction, :message_id, :label, :priority,
			:correlation_id, :body_size, :status, :created_at
		)`

	res, err := s.db.NamedExecContext(ctx, query, e)
	if err != nil {
		return 0, fmt.Errorf("failed to insert journal entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read insert id: %w", err)
	}
	return id, nil
}

// ListJournal returns journal entries matching the filter, newest first.
func (s *Store) ListJournal(ctx context.Context, filter JournalFilter) ([]JournalEntry, error) {
	query := `
		SELECT id, queue, direction, message_id, label, priority,
		       correlation_id, body_size, status, created_at
		FROM message_journal`

	var conditions []string
	var args []interface{}

	if filter.Queue != "" {
		conditions = append(conditions, "queue = ?")
		args = append(args, filter.Queue)
	}
	if filter.Direction != "" {
		conditions = append(conditions, "direction = ?")
		args = append(args, filter.Direction)
	}
	if !filter.Since.IsZero() {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, filter.Since)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY id DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	var entries []JournalEntry
	for rows.Next() {
		var e JournalEntry
		err := rows.Scan(
			&e.ID, &e.Queue, &e.Direction, &e.MessageID, &e.Label,
			&e.Priority, &e.CorrelationID, &e.BodySize, &e.Status, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return entries, nil
}

// PruneJournal deletes entries older than cutoff and reports how many
// rows were removed.
func (s *Store) PruneJournal(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM message_journal WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune journal: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected, nil
}
