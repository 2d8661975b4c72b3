// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps a local record of resolved verdicts in SQLite with
// a full-text index over product names.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/safebites/pkg/types"
)

const dbFile = "history.db"

// now is replaced in tests.
var now = time.Now

// timeLayout keeps checked_at fixed-width so text order is time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store manages the history database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
}

// NewStore opens or creates dir/history.db and its schema.
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("history directory not configured")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = types.DefaultHistoryResults
	}

	s := &Store{db: db, dir: cfg.Dir, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dir returns the directory holding the database and exports.
func (s *Store) Dir() string { return s.dir }

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS checks (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			checked_at TEXT NOT NULL,
			candidate TEXT NOT NULL,
			source TEXT NOT NULL,
			status TEXT NOT NULL,
			product_name TEXT NOT NULL,
			allergens TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_checks_checked_at ON checks(checked_at)`,
		`CREATE INDEX IF NOT EXISTS idx_checks_status ON checks(status)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='checks_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		return nil
	}

	ftsStatements := []string{
		`CREATE VIRTUAL TABLE checks_fts USING fts5(product_name, candidate, content=checks, content_rowid=rowid)`,
		`CREATE TRIGGER checks_ai AFTER INSERT ON checks BEGIN
			INSERT INTO checks_fts(rowid, product_name, candidate) VALUES (new.rowid, new.product_name, new.candidate);
		END`,
		`CREATE TRIGGER checks_ad AFTER DELETE ON checks BEGIN
			INSERT INTO checks_fts(checks_fts, rowid, product_name, candidate) VALUES('delete', old.rowid, old.product_name, old.candidate);
		END`,
	}
	for _, stmt := range ftsStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS infrastructure: %w", err)
		}
	}
	return nil
}

// Record stores one resolved verdict.
func (s *Store) Record(ctx context.Context, candidate types.Candidate, v types.Verdict) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO checks (id, checked_at, candidate, source, status, product_name, allergens)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), now().UTC().Format(timeLayout),
		candidate.ProductName, string(candidate.Source),
		string(v.Status), v.ProductName, v.Allergens,
	)
	if err != nil {
		return fmt.Errorf("recording verdict: %w", err)
	}
	return nil
}

// Clear deletes every entry and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM checks`)
	if err != nil {
		return 0, fmt.Errorf("clearing history: %w", err)
	}
	return res.RowsAffected()
}
