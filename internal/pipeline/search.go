// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/safebites/internal/catalog"
	"github.com/pdiddy/safebites/internal/matcher"
	"github.com/pdiddy/safebites/internal/textnorm"
	"github.com/pdiddy/safebites/pkg/types"
)

// SearchScreen runs the search path:
// Idle -> Searching -> CandidateSelected -> Checking -> Resolved.
type SearchScreen struct {
	*screen
	catalog *catalog.Catalog
	matcher *matcher.Matcher
}

// NewSearchScreen returns a search screen over c. Matcher options set the
// clock, quiet period, and result cap; the commit hook is owned by the screen.
func NewSearchScreen(c *catalog.Catalog, deps Deps, opts ...matcher.Option) *SearchScreen {
	s := &SearchScreen{screen: newScreen(deps), catalog: c}
	opts = append(opts, matcher.WithCommitHook(s.committed))
	s.matcher = matcher.New(c, opts...)
	return s
}

// Type feeds a query edit to the matcher. A blank query returns to Idle at
// once; anything else enters Searching with the filter pending.
func (s *SearchScreen) Type(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if candidateOpen(s.state) {
		return ErrCandidateOpen
	}

	s.matcher.OnQueryChange(text)
	if strings.TrimSpace(text) == "" {
		s.setLocked(Idle{})
		return nil
	}
	s.setLocked(Searching{Query: text, Results: s.matcher.Results(), Pending: true})
	return nil
}

// committed applies a matcher commit if the screen is still searching for
// the same query.
func (s *SearchScreen) committed(query string, results []types.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	st, ok := s.state.(Searching)
	if !ok || st.Query != query {
		return
	}
	s.setLocked(Searching{Query: query, Results: results})
}

// Results returns the latest committed matches.
func (s *SearchScreen) Results() []types.Product {
	return s.matcher.Results()
}

// Pick opens the candidate view for a catalog product.
func (s *SearchScreen) Pick(productID int) (types.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return types.Candidate{}, ErrClosed
	}
	if candidateOpen(s.state) {
		return types.Candidate{}, ErrCandidateOpen
	}
	p, ok := s.catalog.Lookup(productID)
	if !ok {
		return types.Candidate{}, fmt.Errorf("%w: id %d", ErrUnknownProduct, productID)
	}
	cand := types.Candidate{ProductName: textnorm.Clean(p.Name), Source: types.SourceCatalog}
	s.beginLocked()
	s.setLocked(CandidateSelected{Candidate: cand})
	return cand, nil
}

// Check resolves the selected candidate against the current profile.
func (s *SearchScreen) Check(ctx context.Context) (types.Verdict, error) {
	return s.check(ctx)
}

// CloseCandidate dismisses the candidate view, dropping the candidate, any
// verdict, and any check still in flight.
func (s *SearchScreen) CloseCandidate() { s.invalidate() }

// Close unmounts the screen and cancels the pending debounce timer.
func (s *SearchScreen) Close() {
	s.matcher.Close()
	s.close()
}
