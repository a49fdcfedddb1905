package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const (
	defaultPath = "data/odds.db"
)

// Store wraps a SQLite DB connection.
type Store struct {
	path string
	db   *sql.DB
}

// Open creates (if needed) and opens the SQLite database.
func Open(path string) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := ensureWAL(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	return &Store{path: path, db: db}, nil
}

func ensureWAL(db *sql.DB) error {
	const (
		maxAttempts = 5
		delay       = 200 * time.Millisecond
	)
	for i := 0; i < maxAttempts; i++ {
		if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			if strings.Contains(err.Error(), "database is locked") {
				time.Sleep(delay)
				continue
			}
			return err
		}
		return nil
	}
	return fmt.Errorf("database is locked after retries")
}

// Path returns the path backing the store.
func (s *Store) Path() string {
	return s.path
}

// Close closes the DB.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// CreateTables ensures the scan_runs, opportunities and contracts tables exist.
func (s *Store) CreateTables(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schemaSQL)
	return err
}

// DropTables removes every table owned by the store.
func (s *Store) DropTables(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
DROP TABLE IF EXISTS opportunities;
DROP TABLE IF EXISTS scan_runs;
DROP TABLE IF EXISTS contracts;`)
	return err
}

// ClearTables deletes all rows but keeps the schema.
func (s *Store) ClearTables(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
DELETE FROM opportunities;
DELETE FROM scan_runs;
DELETE FROM contracts;`)
	return err
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS scan_runs (
	run_id TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	finished_at TEXT NOT NULL,
	threshold REAL NOT NULL,
	match_count INTEGER NOT NULL,
	contract_count INTEGER NOT NULL,
	opportunity_count INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS opportunities (
	run_id TEXT NOT NULL,
	opp_key TEXT NOT NULL,
	match_name TEXT NOT NULL,
	sportsbook TEXT NOT NULL,
	sportsbook_market TEXT NOT NULL,
	sportsbook_odds INTEGER NOT NULL,
	sportsbook_implied_prob REAL NOT NULL,
	kalshi_contract TEXT NOT NULL,
	kalshi_price INTEGER NOT NULL,
	kalshi_implied_prob REAL NOT NULL,
	edge_percentage REAL NOT NULL,
	detected_at TEXT NOT NULL,
	PRIMARY KEY (run_id, opp_key)
);
CREATE INDEX IF NOT EXISTS opportunities_edge_idx ON opportunities(edge_percentage DESC);
CREATE TABLE IF NOT EXISTS contracts (
	ticker TEXT PRIMARY KEY,
	contract_id TEXT,
	title TEXT,
	subtitle TEXT,
	close_time TEXT,
	yes_bid INTEGER,
	yes_ask INTEGER,
	no_bid INTEGER,
	no_ask INTEGER,
	last_price INTEGER,
	volume INTEGER,
	text_hash TEXT,
	last_seen_at TEXT
);
`

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return ts
}
