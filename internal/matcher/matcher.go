// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package matcher implements debounced incremental search over the static
// product catalog. Rapid query changes are coalesced: only the filter
// scheduled by the last change inside the quiet period ever commits.
package matcher

import (
	"strings"
	"sync"
	"time"

	"github.com/pdiddy/safebites/internal/catalog"
	"github.com/pdiddy/safebites/internal/textnorm"
	"github.com/pdiddy/safebites/pkg/types"
)

// CommitFunc observes committed results. It is called without the matcher
// lock held, on the goroutine that ran the filter.
type CommitFunc func(query string, results []types.Product)

// Matcher owns one debounce timer and the latest committed results.
type Matcher struct {
	catalog  *catalog.Catalog
	clock    Clock
	quiet    time.Duration
	limit    int
	onCommit CommitFunc

	mu      sync.Mutex
	gen     uint64 // bumped on every query change; a firing filter must match it
	timer   Timer
	results []types.Product
	closed  bool
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithClock substitutes the timer source.
func WithClock(c Clock) Option { return func(m *Matcher) { m.clock = c } }

// WithQuietPeriod sets the debounce interval.
func WithQuietPeriod(d time.Duration) Option { return func(m *Matcher) { m.quiet = d } }

// WithLimit caps the number of committed results.
func WithLimit(n int) Option { return func(m *Matcher) { m.limit = n } }

// WithCommitHook registers fn to observe every commit.
func WithCommitHook(fn CommitFunc) Option { return func(m *Matcher) { m.onCommit = fn } }

// New returns a matcher over c with a 300ms quiet period and a 5-result cap
// unless overridden.
func New(c *catalog.Catalog, opts ...Option) *Matcher {
	m := &Matcher{
		catalog: c,
		clock:   SystemClock{},
		quiet:   types.DefaultQuietPeriod,
		limit:   types.DefaultMaxResults,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.limit <= 0 {
		m.limit = types.DefaultMaxResults
	}
	if m.quiet < 0 {
		m.quiet = 0
	}
	return m
}

// OnQueryChange voids any pending filter and schedules a new one after the
// quiet period. A blank query clears the results immediately without
// touching the catalog.
func (m *Matcher) OnQueryChange(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.gen++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}

	if strings.TrimSpace(text) == "" {
		m.results = nil
		return
	}

	gen := m.gen
	m.timer = m.clock.AfterFunc(m.quiet, func() { m.fire(gen, text) })
}

// fire runs the filter for generation gen and commits it only if no newer
// query change or Close happened meanwhile.
func (m *Matcher) fire(gen uint64, text string) {
	results := Filter(m.catalog, text, m.limit)

	m.mu.Lock()
	if m.closed || gen != m.gen {
		m.mu.Unlock()
		return
	}
	m.results = results
	m.timer = nil
	hook := m.onCommit
	m.mu.Unlock()

	if hook != nil {
		hook(text, cloneProducts(results))
	}
}

// Results returns the latest committed results.
func (m *Matcher) Results() []types.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneProducts(m.results)
}

// Pending reports whether a filter is scheduled but not yet committed.
func (m *Matcher) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timer != nil
}

// Close cancels the pending timer. Later query changes are ignored and a
// filter that was already running never commits.
func (m *Matcher) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.gen++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// Filter returns up to limit catalog products whose names contain query,
// ignoring case, in catalog order. A blank query matches nothing.
func Filter(c *catalog.Catalog, query string, limit int) []types.Product {
	if c == nil || strings.TrimSpace(query) == "" {
		return nil
	}
	needle := textnorm.Fold(query)
	var out []types.Product
	c.Each(func(p types.Product) bool {
		if strings.Contains(textnorm.Fold(p.Name), needle) {
			out = append(out, p)
		}
		return limit <= 0 || len(out) < limit
	})
	return out
}

func cloneProducts(ps []types.Product) []types.Product {
	if ps == nil {
		return nil
	}
	out := make([]types.Product, len(ps))
	copy(out, ps)
	return out
}
