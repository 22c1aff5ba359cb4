package planner_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkozlov/planmate/internal/catalog"
	"github.com/nkozlov/planmate/internal/enrich"
	"github.com/nkozlov/planmate/internal/planner"
	"github.com/nkozlov/planmate/internal/scoring"
	"github.com/nkozlov/planmate/internal/search"
)

// ---- stubs ----

type stubResolver struct {
	match       catalog.Match
	resolveErr  error
	suggestions []string
	suggestErr  error
}

func (s *stubResolver) Resolve(_ context.Context, _ string) (catalog.Match, error) {
	return s.match, s.resolveErr
}
func (s *stubResolver) Suggestions(_ context.Context, _ int) ([]string, error) {
	return s.suggestions, s.suggestErr
}

type stubRunner struct {
	outcome search.Outcome
	err     error
	calls   int
}

func (s *stubRunner) Run(_ context.Context, _ search.Intent, _ int) (search.Outcome, error) {
	s.calls++
	return s.outcome, s.err
}

type stubAnnotator struct {
	annotated [][]scoring.ScoredActivity
}

func (s *stubAnnotator) Annotate(_ context.Context, _ search.Intent, top []scoring.ScoredActivity) map[string]enrich.Annotation {
	s.annotated = append(s.annotated, top)
	out := make(map[string]enrich.Annotation, len(top))
	for _, a := range top {
		out[a.ID] = enrich.Annotation{BestFor: "best for " + a.ID}
	}
	return out
}

type memoryCache struct {
	store  map[string]*planner.Result
	getErr error
	setErr error
	gets   int
	sets   int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{store: make(map[string]*planner.Result)}
}

func (m *memoryCache) Get(_ context.Context, key string) (*planner.Result, error) {
	m.gets++
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.store[key], nil
}

func (m *memoryCache) Set(_ context.Context, key string, result *planner.Result) error {
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	m.store[key] = result
	return nil
}

func testLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testIntent() search.Intent {
	return search.Intent{
		Destination:     catalog.Record{ID: 77, Name: "Rome", Kind: catalog.KindCity},
		BudgetPerPerson: 50,
		Currency:        "EUR",
		GroupSizeLabel:  "group of 6",
	}
}

func candidates(n int) []search.Candidate {
	out := make([]search.Candidate, n)
	for i := range out {
		out[i] = search.Candidate{
			ID:          string(rune('a' + i)),
			Name:        "Activity",
			PriceAmount: 50,
			Currency:    "EUR",
		}
	}
	return out
}

func newService(runner *stubRunner, cache planner.ResultCache) (*planner.Service, *stubAnnotator) {
	annotator := &stubAnnotator{}
	svc := planner.NewService(&stubResolver{}, runner, annotator, scoring.DefaultWeights(), cache, testLog())
	return svc, annotator
}

// ---- ResolveDestination / SuggestDestinations ----

func TestResolveDestination_DelegatesToIndex(t *testing.T) {
	resolver := &stubResolver{
		match: catalog.Match{
			Record:     catalog.Record{ID: 77, Name: "Rome", Kind: catalog.KindCity},
			Confidence: catalog.ConfidenceExact,
		},
	}
	svc := planner.NewService(resolver, &stubRunner{}, &stubAnnotator{}, scoring.DefaultWeights(), nil, testLog())

	match, err := svc.ResolveDestination(context.Background(), "rome")
	require.NoError(t, err)
	assert.Equal(t, 77, match.Record.ID)
	assert.Equal(t, catalog.ConfidenceExact, match.Confidence)
}

func TestSuggestDestinations_DelegatesToIndex(t *testing.T) {
	resolver := &stubResolver{suggestions: []string{"Rome", "Lisbon"}}
	svc := planner.NewService(resolver, &stubRunner{}, &stubAnnotator{}, scoring.DefaultWeights(), nil, testLog())

	got, err := svc.SuggestDestinations(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"Rome", "Lisbon"}, got)
}

// ---- SearchRankedActivities ----

func TestSearchRankedActivities_ScoresSortsAndAnnotates(t *testing.T) {
	runner := &stubRunner{outcome: search.Outcome{
		Candidates: []search.Candidate{
			{ID: "far", Name: "A", PriceAmount: 200, Currency: "EUR"},
			{ID: "exact", Name: "B", PriceAmount: 50, Currency: "EUR"},
		},
		Tier: search.Strict,
	}}
	svc, _ := newService(runner, nil)

	result, err := svc.SearchRankedActivities(context.Background(), testIntent())
	require.NoError(t, err)
	require.Len(t, result.Activities, 2)

	assert.Equal(t, "exact", result.Activities[0].ID, "best budget fit ranks first")
	assert.False(t, result.Empty)
	assert.Equal(t, "strict", result.Tier)
	assert.Equal(t, "best for exact", result.Activities[0].BestFor)
	assert.Equal(t, "best for far", result.Activities[1].BestFor)
}

func TestSearchRankedActivities_AnnotatesOnlyTopFive(t *testing.T) {
	runner := &stubRunner{outcome: search.Outcome{
		Candidates: candidates(8),
		Tier:       search.Strict,
	}}
	svc, annotator := newService(runner, nil)

	result, err := svc.SearchRankedActivities(context.Background(), testIntent())
	require.NoError(t, err)
	require.Len(t, result.Activities, 8)

	require.Len(t, annotator.annotated, 1)
	assert.Len(t, annotator.annotated[0], 5)

	// Candidates beyond the enriched window still appear, just without copy.
	assert.Empty(t, result.Activities[7].BestFor)
}

func TestSearchRankedActivities_EmptyOutcomePassesThrough(t *testing.T) {
	runner := &stubRunner{outcome: search.Outcome{
		Tier:        search.Exhausted,
		Empty:       true,
		Suggestions: []string{"Rome", "Lisbon"},
	}}
	svc, annotator := newService(runner, nil)

	result, err := svc.SearchRankedActivities(context.Background(), testIntent())
	require.NoError(t, err, "an exhausted ladder is not an error")
	assert.True(t, result.Empty)
	assert.Empty(t, result.Activities)
	assert.Equal(t, "exhausted", result.Tier)
	assert.Equal(t, []string{"Rome", "Lisbon"}, result.Suggestions)
	assert.Empty(t, annotator.annotated, "nothing to enrich")
}

func TestSearchRankedActivities_ExecutorErrorPropagates(t *testing.T) {
	runner := &stubRunner{err: errors.New("provider down")}
	svc, _ := newService(runner, nil)

	_, err := svc.SearchRankedActivities(context.Background(), testIntent())
	require.Error(t, err)
}

func TestSearchRankedActivities_CacheHitSkipsExecutor(t *testing.T) {
	cache := newMemoryCache()
	runner := &stubRunner{outcome: search.Outcome{Candidates: candidates(2), Tier: search.Strict}}
	svc, _ := newService(runner, cache)

	first, err := svc.SearchRankedActivities(context.Background(), testIntent())
	require.NoError(t, err)
	require.Equal(t, 1, runner.calls)
	require.Equal(t, 1, cache.sets)

	second, err := svc.SearchRankedActivities(context.Background(), testIntent())
	require.NoError(t, err)
	assert.Equal(t, 1, runner.calls, "second identical intent must be served from cache")
	assert.Equal(t, first.Activities[0].ID, second.Activities[0].ID)
}

func TestSearchRankedActivities_DifferentIntentsUseDifferentKeys(t *testing.T) {
	cache := newMemoryCache()
	runner := &stubRunner{outcome: search.Outcome{Candidates: candidates(1), Tier: search.Strict}}
	svc, _ := newService(runner, cache)

	_, err := svc.SearchRankedActivities(context.Background(), testIntent())
	require.NoError(t, err)

	other := testIntent()
	other.BudgetPerPerson = 80
	_, err = svc.SearchRankedActivities(context.Background(), other)
	require.NoError(t, err)

	assert.Equal(t, 2, runner.calls)
	assert.Len(t, cache.store, 2)
}

func TestSearchRankedActivities_EmptyOutcomeIsNotCached(t *testing.T) {
	cache := newMemoryCache()
	runner := &stubRunner{outcome: search.Outcome{Tier: search.Exhausted, Empty: true}}
	svc, _ := newService(runner, cache)

	_, err := svc.SearchRankedActivities(context.Background(), testIntent())
	require.NoError(t, err)
	assert.Zero(t, cache.sets)

	_, err = svc.SearchRankedActivities(context.Background(), testIntent())
	require.NoError(t, err)
	assert.Equal(t, 2, runner.calls, "empty outcomes must not shadow provider recovery")
}

func TestSearchRankedActivities_CacheFailuresAreNonFatal(t *testing.T) {
	cache := newMemoryCache()
	cache.getErr = errors.New("redis down")
	cache.setErr = errors.New("redis down")
	runner := &stubRunner{outcome: search.Outcome{Candidates: candidates(1), Tier: search.Strict}}
	svc, _ := newService(runner, cache)

	result, err := svc.SearchRankedActivities(context.Background(), testIntent())
	require.NoError(t, err)
	require.Len(t, result.Activities, 1)
}

func TestSearchRankedActivities_NilCacheWorks(t *testing.T) {
	runner := &stubRunner{outcome: search.Outcome{Candidates: candidates(1), Tier: search.Relaxed}}
	svc, _ := newService(runner, nil)

	result, err := svc.SearchRankedActivities(context.Background(), testIntent())
	require.NoError(t, err)
	assert.Equal(t, "relaxed", result.Tier)
}
