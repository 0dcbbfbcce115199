// Package store persists the gateway's local view of the broker: a
// read-through queue cache, a message journal, raised alerts, and the
// mailing lists alerts fan out to. Everything lives in a single sqlite
// database so the gateway can answer list and history queries while the
// broker is unreachable.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrExists is returned when an insert collides with a unique row.
	ErrExists = errors.New("record already exists")
)

const schema = `
CREATE TABLE IF NOT EXISTS queues (
	path           TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	label          TEXT NOT NULL DEFAULT '',
	max_size_kb    INTEGER NOT NULL DEFAULT 0,
	transactional  INTEGER NOT NULL DEFAULT 0,
	journal        INTEGER NOT NULL DEFAULT 0,
	status         TEXT NOT NULL DEFAULT 'ACTIVE',
	message_count  INTEGER NOT NULL DEFAULT 0,
	created_at     DATETIME NOT NULL,
	updated_at     DATETIME NOT NULL,
	last_seen_at   DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS message_journal (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	queue          TEXT NOT NULL,
	direction      TEXT NOT NULL,
	message_id     TEXT NOT NULL DEFAULT '',
	label          TEXT NOT NULL DEFAULT '',
	priority       INTEGER NOT NULL DEFAULT 0,
	correlation_id TEXT NOT NULL DEFAULT '',
	body_size      INTEGER NOT NULL DEFAULT 0,
	status         TEXT NOT NULL DEFAULT '',
	created_at     DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_journal_queue_created ON message_journal (queue, created_at);

CREATE TABLE IF NOT EXISTS alerts (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	severity   TEXT NOT NULL,
	purpose    TEXT NOT NULL,
	code       TEXT NOT NULL,
	queue      TEXT NOT NULL DEFAULT '',
	message    TEXT NOT NULL,
	count      INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL,
	acked_at   DATETIME
);
CREATE INDEX IF NOT EXISTS idx_alerts_code_queue ON alerts (code, queue, acked_at);

CREATE TABLE IF NOT EXISTS mailing_lists (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	name    TEXT NOT NULL UNIQUE,
	purpose TEXT NOT NULL,
	enabled INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS mailing_list_recipients (
	list_id INTEGER NOT NULL REFERENCES mailing_lists(id) ON DELETE CASCADE,
	address TEXT NOT NULL,
	PRIMARY KEY (list_id, address)
);
`

// Store wraps the sqlite database holding the gateway's local state.
type Store struct {
	db *sqlx.DB
}

// Open opens (creating if needed) the sqlite database at path and applies
// the schema. Pass ":memory:" for an ephemeral database.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on", path)

	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// sqlite allows a single writer, and an in-memory database exists per
	// connection, so the pool is capped at one.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
