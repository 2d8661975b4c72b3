// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package matcher_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/safebites/internal/catalog"
	"github.com/pdiddy/safebites/internal/matcher"
	"github.com/pdiddy/safebites/internal/matcher/matchertest"
	"github.com/pdiddy/safebites/pkg/types"
)

const quiet = 300 * time.Millisecond

func sampleCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]types.Product{
		{ID: 1, Name: "Milk Bread"},
		{ID: 2, Name: "Milk Chocolate"},
		{ID: 3, Name: "Dark Chocolate"},
	})
	require.NoError(t, err)
	return c
}

func names(ps []types.Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name)
	}
	return out
}

func TestMatcherCommitsAfterQuietPeriod(t *testing.T) {
	clk := &matchertest.Clock{}
	m := matcher.New(sampleCatalog(t), matcher.WithClock(clk))

	m.OnQueryChange("milk")
	assert.Empty(t, m.Results())
	assert.True(t, m.Pending())

	clk.Advance(quiet - time.Millisecond)
	assert.Empty(t, m.Results(), "must not commit before the quiet period")

	clk.Advance(time.Millisecond)
	assert.Equal(t, []string{"Milk Bread", "Milk Chocolate"}, names(m.Results()))
	assert.False(t, m.Pending())
}

func TestMatcherOnlyLastQueryCommits(t *testing.T) {
	clk := &matchertest.Clock{}
	var commits []string
	m := matcher.New(sampleCatalog(t), matcher.WithClock(clk),
		matcher.WithCommitHook(func(q string, _ []types.Product) { commits = append(commits, q) }))

	m.OnQueryChange("a")
	clk.Advance(100 * time.Millisecond)
	m.OnQueryChange("ab")
	clk.Advance(quiet)

	assert.Equal(t, []string{"ab"}, commits)
	assert.Empty(t, m.Results(), "no catalog name contains \"ab\"")
	assert.Equal(t, 0, clk.Scheduled())
}

func TestMatcherBlankQueryClearsSynchronously(t *testing.T) {
	clk := &matchertest.Clock{}
	var commits int
	m := matcher.New(sampleCatalog(t), matcher.WithClock(clk),
		matcher.WithCommitHook(func(string, []types.Product) { commits++ }))

	m.OnQueryChange("choc")
	clk.Advance(quiet)
	require.Len(t, m.Results(), 2)

	m.OnQueryChange("milk")
	m.OnQueryChange("   ")
	assert.Empty(t, m.Results(), "blank query clears without waiting")
	assert.False(t, m.Pending())

	clk.Advance(time.Second)
	assert.Empty(t, m.Results(), "the voided milk filter must never commit")
	assert.Equal(t, 1, commits)
}

func TestMatcherCaseInsensitiveAndCapped(t *testing.T) {
	var products []types.Product
	for i := 1; i <= 8; i++ {
		products = append(products, types.Product{ID: i, Name: fmt.Sprintf("Choco Bar %d", i)})
	}
	c, err := catalog.New(products)
	require.NoError(t, err)

	clk := &matchertest.Clock{}
	m := matcher.New(c, matcher.WithClock(clk))
	m.OnQueryChange("CHOCO")
	clk.Advance(quiet)

	got := m.Results()
	require.Len(t, got, types.DefaultMaxResults)
	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, 5, got[4].ID)
}

func TestMatcherCloseVoidsPendingFilter(t *testing.T) {
	clk := &matchertest.Clock{}
	var commits int
	m := matcher.New(sampleCatalog(t), matcher.WithClock(clk),
		matcher.WithCommitHook(func(string, []types.Product) { commits++ }))

	m.OnQueryChange("milk")
	m.Close()
	clk.Advance(time.Second)
	m.OnQueryChange("dark")
	clk.Advance(time.Second)

	assert.Equal(t, 0, commits)
	assert.Empty(t, m.Results())
}

func TestMatcherSystemClock(t *testing.T) {
	done := make(chan []types.Product, 1)
	m := matcher.New(sampleCatalog(t), matcher.WithQuietPeriod(10*time.Millisecond),
		matcher.WithCommitHook(func(_ string, r []types.Product) { done <- r }))
	defer m.Close()

	m.OnQueryChange("dark")
	select {
	case r := <-done:
		assert.Equal(t, []string{"Dark Chocolate"}, names(r))
	case <-time.After(2 * time.Second):
		t.Fatal("filter never committed")
	}
}

func TestFilter(t *testing.T) {
	c := sampleCatalog(t)
	tests := []struct {
		query string
		limit int
		want  []string
	}{
		{"milk", 5, []string{"Milk Bread", "Milk Chocolate"}},
		{"CHOCOLATE", 1, []string{"Milk Chocolate"}},
		{"olat", 0, []string{"Milk Chocolate", "Dark Chocolate"}},
		{"", 5, []string{}},
		{"cheese", 5, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, names(matcher.Filter(c, tt.query, tt.limit)))
		})
	}
}
