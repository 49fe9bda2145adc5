package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jonathan/dice-autopilot/internal/types"
)

// AppliedURLs returns the set of URLs in the applied partition. A fresh
// store returns an empty set, not an error.
func (s *Store) AppliedURLs(ctx context.Context) (map[string]struct{}, error) {
	return s.urlSet(ctx, "applied_jobs")
}

// NotAppliedURLs returns the set of URLs in the not-applied partition.
func (s *Store) NotAppliedURLs(ctx context.Context) (map[string]struct{}, error) {
	return s.urlSet(ctx, "not_applied_jobs")
}

func (s *Store) urlSet(ctx context.Context, table string) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT url FROM %s;`, table))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	urls := make(map[string]struct{})
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", table, err)
		}
		urls[u] = struct{}{}
	}
	return urls, rows.Err()
}

// IsApplied reports whether the URL is in the applied partition.
func (s *Store) IsApplied(ctx context.Context, url string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM applied_jobs WHERE url = ? LIMIT 1;`, url).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("checking applied: %w", err)
	}
	return true, nil
}

// RecordOutcome durably records one job's apply result. The listing lands in
// exactly one of applied/not-applied: the write removes the URL from the
// opposite partition in the same transaction. This is the one-job-one-write
// persistence point the run controller calls after every application.
func (s *Store) RecordOutcome(ctx context.Context, l types.JobListing, applied bool) error {
	target, other := "not_applied_jobs", "applied_jobs"
	if applied {
		target, other = "applied_jobs", "not_applied_jobs"
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("recording outcome: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE url = ?;`, other), l.URL); err != nil {
		return fmt.Errorf("relocating %s: %w", l.URL, err)
	}
	_, err = tx.ExecContext(ctx, fmt.Sprintf(`
INSERT OR REPLACE INTO %s (url, title, company, location, employment_type, posted_date, applied, recorded_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?);`, target),
		l.URL, l.Title, l.Company, l.Location, l.EmploymentType, l.PostedDate, boolInt(applied), now())
	if err != nil {
		return fmt.Errorf("recording %s: %w", l.URL, err)
	}
	return tx.Commit()
}

// RecordExcluded appends a batch of excluded listings to the audit log.
// Duplicates are kept on purpose.
func (s *Store) RecordExcluded(ctx context.Context, listings []types.JobListing) error {
	if len(listings) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("recording excluded: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, l := range listings {
		_, err := tx.ExecContext(ctx, `
INSERT INTO excluded_jobs (url, title, company, location, employment_type, posted_date, exclusion_reason, recorded_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?);`,
			l.URL, l.Title, l.Company, l.Location, l.EmploymentType, l.PostedDate, l.ExclusionReason, now())
		if err != nil {
			return fmt.Errorf("recording excluded %s: %w", l.URL, err)
		}
	}
	return tx.Commit()
}

// ExcludedCount returns how many excluded rows the audit log holds.
func (s *Store) ExcludedCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM excluded_jobs;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting excluded: %w", err)
	}
	return n, nil
}

// MoveToApplied relocates a not-applied row into the applied partition.
// Used by the reconciliation sweep for applications made outside the
// pipeline. Reports whether a row was actually moved.
func (s *Store) MoveToApplied(ctx context.Context, url string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("moving to applied: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
INSERT OR REPLACE INTO applied_jobs (url, title, company, location, employment_type, posted_date, applied, recorded_at)
SELECT url, title, company, location, employment_type, posted_date, 1, ? FROM not_applied_jobs WHERE url = ?;`,
		now(), url)
	if err != nil {
		return false, fmt.Errorf("moving %s: %w", url, err)
	}
	moved, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if moved > 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM not_applied_jobs WHERE url = ?;`, url); err != nil {
			return false, fmt.Errorf("clearing %s from not-applied: %w", url, err)
		}
	}
	return moved > 0, tx.Commit()
}

// ReferenceEntry is one row of the sweep's known-applied reference set.
type ReferenceEntry struct {
	URL        string
	Title      string
	Company    string
	PostedDate string
}

// ReferenceURLs returns the known-applied reference set.
func (s *Store) ReferenceURLs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT url FROM applied_reference;`)
	if err != nil {
		return nil, fmt.Errorf("reading reference set: %w", err)
	}
	defer func() { _ = rows.Close() }()

	urls := make(map[string]struct{})
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scanning reference set: %w", err)
		}
		urls[u] = struct{}{}
	}
	return urls, rows.Err()
}

// AddReference inserts one entry into the reference set.
func (s *Store) AddReference(ctx context.Context, e ReferenceEntry) error {
	_, err := s.db.ExecContext(ctx, `
INSERT OR IGNORE INTO applied_reference (url, title, company, posted_date, recorded_at)
VALUES (?, ?, ?, ?, ?);`,
		e.URL, e.Title, e.Company, e.PostedDate, now())
	if err != nil {
		return fmt.Errorf("adding reference %s: %w", e.URL, err)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
