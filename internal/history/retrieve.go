// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/safebites/pkg/types"
)

// ErrNotFound is returned by Get for an unknown entry ID.
var ErrNotFound = errors.New("history entry not found")

// QueryOptions holds parameters for history queries.
type QueryOptions struct {
	// Query is matched against product and candidate names. Each word is
	// treated as a prefix.
	Query string

	// Status filters by verdict status.
	Status types.VerdictStatus

	// Source filters by how the candidate was obtained.
	Source types.CandidateSource

	// Since drops entries checked before it.
	Since time.Time

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// Entry is one recorded verdict.
type Entry struct {
	ID          string                `json:"id" yaml:"id"`
	CheckedAt   time.Time             `json:"checked_at" yaml:"checked_at"`
	Candidate   string                `json:"candidate" yaml:"candidate"`
	Source      types.CandidateSource `json:"source" yaml:"source"`
	Status      types.VerdictStatus   `json:"status" yaml:"status"`
	ProductName string                `json:"product_name" yaml:"product_name"`
	Allergens   string                `json:"allergens" yaml:"allergens"`
}

// Verdict returns the stored verdict.
func (e Entry) Verdict() types.Verdict {
	return types.Verdict{Status: e.Status, ProductName: e.ProductName, Allergens: e.Allergens}
}

const entryColumns = `c.id, c.checked_at, c.candidate, c.source, c.status, c.product_name, c.allergens`

// Retrieve returns matching entries. Full-text queries are ranked by
// relevance; otherwise the newest entries come first.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]Entry, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		match  = ftsQuery(opts.Query)
		useFTS = match != ""
	)

	if useFTS {
		qb.WriteString(`SELECT ` + entryColumns + `
			FROM checks_fts
			JOIN checks c ON c.rowid = checks_fts.rowid
			WHERE checks_fts MATCH ?`)
		args = append(args, match)
	} else {
		qb.WriteString(`SELECT ` + entryColumns + ` FROM checks c WHERE 1=1`)
	}

	if opts.Status != "" {
		qb.WriteString(` AND c.status = ?`)
		args = append(args, string(opts.Status))
	}
	if opts.Source != "" {
		qb.WriteString(` AND c.source = ?`)
		args = append(args, string(opts.Source))
	}
	if !opts.Since.IsZero() {
		qb.WriteString(` AND c.checked_at >= ?`)
		args = append(args, opts.Since.UTC().Format(timeLayout))
	}

	if useFTS {
		qb.WriteString(` ORDER BY checks_fts.rank, c.rowid DESC`)
	} else {
		qb.WriteString(` ORDER BY c.rowid DESC`)
	}
	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Get returns the entry with the given ID.
func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM checks c WHERE c.id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (Entry, error) {
	var (
		e         Entry
		checkedAt string
		source    string
		status    string
		allergens sql.NullString
	)
	if err := sc.Scan(&e.ID, &checkedAt, &e.Candidate, &source, &status, &e.ProductName, &allergens); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("scanning row: %w", err)
	}
	e.Source = types.CandidateSource(source)
	e.Status = types.VerdictStatus(status)
	e.Allergens = allergens.String
	if t, err := time.Parse(timeLayout, checkedAt); err == nil {
		e.CheckedAt = t
	}
	return e, nil
}

// ftsQuery turns free text into an FTS5 expression: every word becomes a
// quoted prefix term, so punctuation in product names cannot break the
// query syntax.
func ftsQuery(q string) string {
	var terms []string
	for _, w := range strings.Fields(q) {
		w = strings.ReplaceAll(w, `"`, "")
		if w == "" {
			continue
		}
		terms = append(terms, `"`+w+`"*`)
	}
	return strings.Join(terms, " ")
}
