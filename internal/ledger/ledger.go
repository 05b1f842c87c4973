// Package ledger keeps a sqlite history of clips handed out by acquisition runs.
// It is informational only: cache validity is decided by the files on disk, never by the ledger.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS clips (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id     TEXT    NOT NULL,
	provider   TEXT    NOT NULL,
	source_url TEXT    NOT NULL,
	local_path TEXT    NOT NULL,
	duration   REAL    NOT NULL,
	fetched_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS clips_run ON clips(run_id);
CREATE INDEX IF NOT EXISTS clips_path ON clips(local_path);
`

// Entry is one accepted clip.
type Entry struct {
	RunID     string
	Provider  string
	SourceURL string
	LocalPath string
	Duration  float64
	FetchedAt time.Time
}

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the ledger database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(filepath.Clean(path)), 0755); err != nil {
		return nil, fmt.Errorf("ledger: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	// One writer at a time; sqlite serialises anyway and this avoids SQLITE_BUSY within the process.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("ledger pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ledger schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Record appends e. A zero FetchedAt is set to now.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.FetchedAt.IsZero() {
		e.FetchedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO clips (run_id, provider, source_url, local_path, duration, fetched_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.RunID, e.Provider, e.SourceURL, e.LocalPath, e.Duration, e.FetchedAt.Unix())
	if err != nil {
		return fmt.Errorf("ledger record: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. limit <= 0 means 50.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.query(ctx,
		`SELECT run_id, provider, source_url, local_path, duration, fetched_at FROM clips ORDER BY id DESC LIMIT ?`, limit)
}

// Run returns the entries of one run in acceptance order.
func (s *Store) Run(ctx context.Context, runID string) ([]Entry, error) {
	return s.query(ctx,
		`SELECT run_id, provider, source_url, local_path, duration, fetched_at FROM clips WHERE run_id = ? ORDER BY id`, runID)
}

func (s *Store) query(ctx context.Context, q string, args ...interface{}) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("ledger query: %w", err)
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		var at int64
		if err := rows.Scan(&e.RunID, &e.Provider, &e.SourceURL, &e.LocalPath, &e.Duration, &at); err != nil {
			return nil, err
		}
		e.FetchedAt = time.Unix(at, 0)
		out = append(out, e)
	}
	return out, rows.Err()
}
