// Package postgres implements the job and guestbook stores on
// PostgreSQL. Completion writes and reaction increments are single
// statements, so both are atomic without explicit transactions.
package postgres

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"
)

// Store is the Postgres-backed store.
type Store struct {
	db *sql.DB
}

// Open connects to the database and verifies the connection.
func Open(databaseURL string) (*Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the tables if they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS analysis_jobs (
			session_id TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			job_title  TEXT NOT NULL,
			strengths  TEXT NOT NULL,
			hobbies    TEXT NOT NULL,
			status     TEXT NOT NULL,
			verdict    JSONB,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS guestbook_entries (
			entry_id   TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL,
			session_id TEXT NOT NULL,
			job_title  TEXT NOT NULL,
			dday       INTEGER NOT NULL,
			message    TEXT NOT NULL,
			reactions  JSONB NOT NULL DEFAULT '{}'
		);
		CREATE INDEX IF NOT EXISTS guestbook_entries_created_at_idx
			ON guestbook_entries (created_at DESC, entry_id DESC);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}
