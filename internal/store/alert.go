package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// AlertRecord is one raised alert. Repeated raises of the same code and
// queue inside the dedup window fold into the existing row by bumping
// count instead of inserting a duplicate.
type AlertRecord struct {
	ID        int64      `db:"id"`
	Severity  string     `db:"severity"`
	Purpose   string     `db:"purpose"`
	Code      string     `db:"code"`
	Queue     string     `db:"queue"`
	Message   string     `db:"message"`
	Count     int64      `db:"count"`
	CreatedAt time.Time  `db:"created_at"`
	AckedAt   *time.Time `db:"acked_at"`
}

// SaveAlert persists an alert, folding it into an open alert with the
// same code and queue raised within the dedup window. It returns the
// stored record and whether the raise was folded.
func (s *Store) SaveAlert(ctx context.Context, a AlertRecord, window time.Duration) (AlertRecord, bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return AlertRecord{}, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	cutoff := a.CreatedAt.Add(-window)

	var existing AlertRecord
	err = tx.GetContext(ctx, &existing, `
		SELECT id, severity, purpose, code, queue, message, count, created_at, acked_at
		FROM alerts
		WHERE code = ? AND queue = ? AND acked_at IS NULL AND created_at >= ?
		ORDER BY id DESC LIMIT 1`,
		a.Code, a.Queue, cutoff)

	switch {
	case err == nil:
		_, err = tx.NamedExecContext(ctx, `
			UPDATE alerts SET count = count + 1, message = :message, severity = :severity
			WHERE id = :id`,
			map[string]interface{}{
				"id":       existing.ID,
				"message":  a.Message,
				"severity": a.Severity,
			})
		if err != nil {
			return AlertRecord{}, false, fmt.Errorf("failed to fold alert: %w", err)
		}
		if err = tx.Commit(); err != nil {
			return AlertRecord{}, false, fmt.Errorf("failed to commit transaction: %w", err)
		}
		existing.Count++
		existing.Message = a.Message
		existing.Severity = a.Severity
		return existing, true, nil

	case errors.Is(err, sql.ErrNoRows):
		res, err := tx.NamedExecContext(ctx, `
			INSERT INTO alerts (severity, purpose, code, queue, message, count, created_at)
			VALUES (:severity, :purpose, :code, :queue, :message, 1, :created_at)`, a)
		if err != nil {
			return AlertRecord{}, false, fmt.Errorf("failed to insert alert: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return AlertRecord{}, false, fmt.Errorf("failed to read insert id: %w", err)
		}
		if err = tx.Commit(); err != nil {
			return AlertRecord{}, false, fmt.Errorf("failed to commit transaction: %w", err)
		}
		a.ID = id
		a.Count = 1
		return a, false, nil

	default:
		return AlertRecord{}, false, fmt.Errorf("failed to query open alerts: %w", err)
	}
}

// ListAlerts returns alerts newest first. Acked alerts are excluded
// unless includeAcked is set. A limit of zero means no limit.
func (s *Store) ListAlerts(ctx context.Context, includeAcked bool, limit int) ([]AlertRecord, error) {
	query := `
		SELECT id, severity, purpose, code, queue, message, count, created_at, acked_at
		FROM alerts`

	if !includeAcked {
		query += " WHERE acked_at IS NULL"
	}
	query += " ORDER BY id DESC"

	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var alerts []AlertRecord
	if err := s.db.SelectContext(ctx, &alerts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	return alerts, nil
}

// AckAlert marks an alert acknowledged. Acking twice is harmless.
func (s *Store) AckAlert(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE alerts SET acked_at = COALESCE(acked_at, ?) WHERE id = ?`,
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to ack alert: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("alert %d: %w", id, ErrNotFound)
	}
	return nil
}

// OpenAlertCount reports how many alerts are still unacknowledged.
func (s *Store) OpenAlertCount(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM alerts WHERE acked_at IS NULL`); err != nil {
		return 0, fmt.Errorf("failed to count open alerts: %w", err)
	}
	return count, nil
}
