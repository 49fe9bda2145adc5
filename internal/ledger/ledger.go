// Package ledger is the persistent source of truth for which listings have
// been handled. It keeps three partitions — applied, not-applied, excluded —
// keyed by job URL, plus the reference set the reconciliation sweep walks
// against. One process owns the store at a time; a file lock enforces the
// single-writer discipline the engine is built around.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

// Store wraps the sqlite ledger database and its directory lock.
type Store struct {
	db   *sql.DB
	lock *flock.Flock
	dir  string
}

// Open opens (or creates) the ledger under dataDir and takes the directory
// lock. A second concurrent opener gets an error instead of a shared store.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	lock := flock.New(filepath.Join(dataDir, "ledger.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking ledger: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("ledger at %s is held by another process", dataDir)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.Join(dataDir, "ledger.db"))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("opening ledger db: %w", err)
	}
	db.SetMaxOpenConns(1) // sqlite wants a single writer
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, fmt.Errorf("pinging ledger db: %w", err)
	}

	s := &Store{db: db, lock: lock, dir: dataDir}
	if err := s.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS applied_jobs (
	url             TEXT PRIMARY KEY,
	title           TEXT NOT NULL,
	company         TEXT NOT NULL,
	location        TEXT NOT NULL,
	employment_type TEXT NOT NULL,
	posted_date     TEXT NOT NULL,
	applied         INTEGER NOT NULL,
	recorded_at     TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS not_applied_jobs (
	url             TEXT PRIMARY KEY,
	title           TEXT NOT NULL,
	company         TEXT NOT NULL,
	location        TEXT NOT NULL,
	employment_type TEXT NOT NULL,
	posted_date     TEXT NOT NULL,
	applied         INTEGER NOT NULL,
	recorded_at     TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS excluded_jobs (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	url              TEXT NOT NULL,
	title            TEXT NOT NULL,
	company          TEXT NOT NULL,
	location         TEXT NOT NULL,
	employment_type  TEXT NOT NULL,
	posted_date      TEXT NOT NULL,
	exclusion_reason TEXT NOT NULL,
	recorded_at      TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS applied_reference (
	url         TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	company     TEXT NOT NULL,
	posted_date TEXT NOT NULL,
	recorded_at TEXT NOT NULL
);`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrating ledger schema: %w", err)
	}
	return nil
}

// Close releases the database and the directory lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var first error
	if s.db != nil {
		first = s.db.Close()
	}
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
