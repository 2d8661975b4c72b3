// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// ErrProductNotFound is returned when neither exact nor fuzzy lookup finds
// a product.
var ErrProductNotFound = errors.New("product not found")

// Store holds the product dataset and user accounts in SQLite.
type Store struct {
	db *sql.DB
}

// OpenStore opens or creates the database at path. The special path
// ":memory:" keeps everything in memory.
func OpenStore(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == ":memory:" {
		// Each connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db}
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

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS products (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			name_lower TEXT NOT NULL,
			hash TEXT NOT NULL,
			allergens TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_products_hash ON products(hash)`,
		`CREATE TABLE IF NOT EXISTS users (
			user_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			age TEXT,
			password_hash TEXT NOT NULL,
			allergy TEXT,
			diet_preference TEXT
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Import replaces the product table with records, preserving their order.
func (s *Store) Import(ctx context.Context, records []Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return fmt.Errorf("clearing products: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO products (name, name_lower, hash, allergens) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.Name, strings.ToLower(r.Name), Hash(r.Name), r.AllergenString()); err != nil {
			return fmt.Errorf("inserting %q: %w", r.Name, err)
		}
	}
	return tx.Commit()
}

// Count returns the number of products.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting products: %w", err)
	}
	return n, nil
}

// Match is a product resolved from a queried name.
type Match struct {
	Name      string
	Allergens string
	Exact     bool
	Score     float64
}

// Lookup resolves name to a product. An exact hash match wins, and among
// rows sharing a hash the last imported one is used. Otherwise the name
// with the highest similarity ratio is accepted if its score exceeds
// threshold.
func (s *Store) Lookup(ctx context.Context, name string, threshold float64) (Match, error) {
	query := strings.ToLower(strings.TrimSpace(name))

	var m Match
	err := s.db.QueryRowContext(ctx,
		`SELECT name, allergens FROM products WHERE hash = ? ORDER BY rowid DESC LIMIT 1`, Hash(query),
	).Scan(&m.Name, &m.Allergens)
	switch {
	case err == nil:
		m.Exact, m.Score = true, 100
		return m, nil
	case !errors.Is(err, sql.ErrNoRows):
		return Match{}, fmt.Errorf("looking up product: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT name, name_lower, allergens FROM products ORDER BY rowid`)
	if err != nil {
		return Match{}, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	var names, lowers, allergens []string
	for rows.Next() {
		var n, l, a string
		if err := rows.Scan(&n, &l, &a); err != nil {
			return Match{}, fmt.Errorf("scanning product: %w", err)
		}
		names, lowers, allergens = append(names, n), append(lowers, l), append(allergens, a)
	}
	if err := rows.Err(); err != nil {
		return Match{}, fmt.Errorf("listing products: %w", err)
	}

	i, score := bestMatch(query, lowers)
	if i < 0 || score <= threshold {
		return Match{}, fmt.Errorf("%w: %q", ErrProductNotFound, name)
	}
	return Match{Name: names[i], Allergens: allergens[i], Score: score}, nil
}
