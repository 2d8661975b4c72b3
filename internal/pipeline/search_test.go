// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/safebites/internal/catalog"
	"github.com/pdiddy/safebites/internal/matcher"
	"github.com/pdiddy/safebites/internal/matcher/matchertest"
	"github.com/pdiddy/safebites/internal/pipeline"
	"github.com/pdiddy/safebites/internal/verdict"
	"github.com/pdiddy/safebites/pkg/types"
)

const quiet = 300 * time.Millisecond

func newSearch(t *testing.T, svc verdict.Service) (*pipeline.SearchScreen, *matchertest.Clock, *recorder) {
	t.Helper()
	c, err := catalog.New([]types.Product{
		{ID: 1, Name: "Milk Bread"},
		{ID: 2, Name: "Milk Chocolate"},
		{ID: 3, Name: "Dark Chocolate"},
	})
	require.NoError(t, err)

	clock := &matchertest.Clock{}
	obs := &recorder{}
	s := pipeline.NewSearchScreen(c, pipeline.Deps{
		Resolver: verdict.NewResolver(svc, nil),
		Profile:  pipeline.StaticProfile(milkPeanut),
		Observer: obs,
	}, matcher.WithClock(clock), matcher.WithQuietPeriod(quiet))
	return s, clock, obs
}

func productNames(ps []types.Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name)
	}
	return out
}

func TestSearchDebouncedCommit(t *testing.T) {
	s, clock, _ := newSearch(t, &countingService{})

	require.NoError(t, s.Type("milk"))
	st, ok := s.State().(pipeline.Searching)
	require.True(t, ok)
	assert.True(t, st.Pending)
	assert.Empty(t, st.Results)

	clock.Advance(quiet)
	st = s.State().(pipeline.Searching)
	assert.False(t, st.Pending)
	assert.Equal(t, []string{"Milk Bread", "Milk Chocolate"}, productNames(st.Results))
	assert.Equal(t, st.Results, s.Results())
}

func TestSearchOnlyLastQueryCommits(t *testing.T) {
	s, clock, obs := newSearch(t, &countingService{})

	require.NoError(t, s.Type("m"))
	clock.Advance(quiet / 2)
	require.NoError(t, s.Type("dark"))
	clock.Advance(quiet / 2)
	assert.True(t, s.State().(pipeline.Searching).Pending)

	clock.Advance(quiet)
	st := s.State().(pipeline.Searching)
	assert.Equal(t, "dark", st.Query)
	assert.Equal(t, []string{"Dark Chocolate"}, productNames(st.Results))

	committed := 0
	for _, st := range obs.states {
		if sr, ok := st.(pipeline.Searching); ok && !sr.Pending {
			committed++
		}
	}
	assert.Equal(t, 1, committed)
}

func TestSearchBlankQueryReturnsToIdle(t *testing.T) {
	s, clock, _ := newSearch(t, &countingService{})

	require.NoError(t, s.Type("milk"))
	clock.Advance(quiet)
	require.NoError(t, s.Type("  "))
	assert.Equal(t, pipeline.Idle{}, s.State())
	assert.Empty(t, s.Results())
	assert.Equal(t, 0, clock.Scheduled())
}

func TestSearchPickAndCheck(t *testing.T) {
	svc := &countingService{resp: verdict.Response{Status: "not safe", ProductName: "Milk Chocolate", Allergens: "Milk"}}
	s, clock, _ := newSearch(t, svc)
	ctx := context.Background()

	require.NoError(t, s.Type("choc"))
	clock.Advance(quiet)

	cand, err := s.Pick(2)
	require.NoError(t, err)
	assert.Equal(t, types.Candidate{ProductName: "Milk Chocolate", Source: types.SourceCatalog}, cand)
	assert.Equal(t, pipeline.CandidateSelected{Candidate: cand}, s.State())

	assert.ErrorIs(t, s.Type("bread"), pipeline.ErrCandidateOpen)
	_, err = s.Pick(1)
	assert.ErrorIs(t, err, pipeline.ErrCandidateOpen)

	v, err := s.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.Verdict{Status: types.StatusNotSafe, ProductName: "Milk Chocolate", Allergens: "Milk"}, v)
	assert.Equal(t, "Not safe to consume", v.Label())

	s.CloseCandidate()
	assert.Equal(t, pipeline.Idle{}, s.State())
	_, err = s.Check(ctx)
	assert.ErrorIs(t, err, pipeline.ErrNoCandidate)
}

func TestSearchPickUnknownProduct(t *testing.T) {
	s, _, _ := newSearch(t, &countingService{})
	_, err := s.Pick(42)
	assert.ErrorIs(t, err, pipeline.ErrUnknownProduct)
	assert.Equal(t, pipeline.Idle{}, s.State())
}

func TestSearchCloseCandidateDropsInFlightCheck(t *testing.T) {
	svc := newBlockingService()
	s, _, _ := newSearch(t, svc)
	ctx := context.Background()
	_, err := s.Pick(3)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := s.Check(ctx)
		done <- err
	}()
	call := svc.next(t)
	assert.Equal(t, "Dark Chocolate", call.req.ProductName)

	s.CloseCandidate()
	call.reply <- verdict.Response{Status: "safe"}
	assert.ErrorIs(t, <-done, pipeline.ErrSuperseded)
	assert.Equal(t, pipeline.Idle{}, s.State())
}

func TestSearchCloseCancelsDebounce(t *testing.T) {
	s, clock, obs := newSearch(t, &countingService{})

	require.NoError(t, s.Type("milk"))
	n := len(obs.kinds())
	s.Close()
	clock.Advance(quiet)

	assert.Len(t, obs.kinds(), n)
	assert.Empty(t, s.Results())
	assert.ErrorIs(t, s.Type("dark"), pipeline.ErrClosed)
	_, err := s.Pick(1)
	assert.ErrorIs(t, err, pipeline.ErrClosed)
}

func TestSearchWithSystemClock(t *testing.T) {
	c, err := catalog.New([]types.Product{{ID: 7, Name: "Haldiram Bhujia"}})
	require.NoError(t, err)
	s := pipeline.NewSearchScreen(c, pipeline.Deps{
		Resolver: verdict.NewResolver(&countingService{}, nil),
		Profile:  pipeline.StaticProfile(milkPeanut),
	}, matcher.WithQuietPeriod(time.Millisecond))
	defer s.Close()

	require.NoError(t, s.Type("bhujia"))
	waitFor(t, func() bool {
		st, ok := s.State().(pipeline.Searching)
		return ok && !st.Pending
	})
	assert.Equal(t, []string{"Haldiram Bhujia"}, productNames(s.Results()))
}
