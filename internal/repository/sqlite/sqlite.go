// Package sqlite stores employees and WFH requests in a single SQLite file.
// The schema is created on Open. Writes are serialised by a mutex, so a
// conditional stage update cannot race with another writer.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = time.RFC3339Nano
)

// DB is shared by the repositories of this package.
type DB struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (or creates) the database at path. Use ":memory:" for a throwaway database.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	store := &DB{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// withTx runs fn in a transaction while holding the write lock.
func (s *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *DB) Close() error {
	return s.db.Close()
}

func (s *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		full_name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL CHECK (role IN ('employee', 'team_manager', 'sdm', 'hr')),
		team_owner_id TEXT,
		sdm_id TEXT,
		location TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS wfh_requests (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		requested_start_date TEXT NOT NULL,
		requested_end_date TEXT NOT NULL,
		reason TEXT NOT NULL,
		category TEXT NOT NULL,
		priority TEXT NOT NULL,
		term_duration_days INTEGER NOT NULL,
		attachment_path TEXT,
		team_owner_id TEXT NOT NULL,
		sdm_id TEXT NOT NULL,
		location TEXT NOT NULL DEFAULT '',
		submitted_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_wfh_requests_team_owner ON wfh_requests(team_owner_id);
	CREATE INDEX IF NOT EXISTS idx_wfh_requests_sdm ON wfh_requests(sdm_id);
	CREATE INDEX IF NOT EXISTS idx_wfh_requests_submitted ON wfh_requests(submitted_at);

	CREATE TABLE IF NOT EXISTS wfh_approvals (
		request_id TEXT NOT NULL REFERENCES wfh_requests(id) ON DELETE CASCADE,
		stage TEXT NOT NULL,
		stage_order INTEGER NOT NULL,
		status TEXT NOT NULL,
		acted_by TEXT,
		action_date TEXT,
		PRIMARY KEY (request_id, stage)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(timestampLayout)
	return &s
}

func parseTime(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t, err := time.Parse(timestampLayout, s.String)
	if err != nil {
		return nil
	}
	return &t
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
