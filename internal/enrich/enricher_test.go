package enrich_test

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
	"github.com/nkozlov/planmate/internal/scoring"
	"github.com/nkozlov/planmate/internal/search"
)

type stubCompleter struct {
	out   map[string]string
	err   error
	calls int
}

func (s *stubCompleter) SpecialElements(_ context.Context, _ string, _ []enrich.HighlightItem) (map[string]string, error) {
	s.calls++
	return s.out, s.err
}

func discardLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testIntent() search.Intent {
	return search.Intent{
		Destination:     catalog.Record{ID: 77, Name: "Rome", Kind: catalog.KindCity},
		BudgetPerPerson: 50,
		Currency:        "EUR",
		GroupSizeLabel:  "group of 6",
		Vibe:            "foodie",
		TimeOfDay:       "evening",
	}
}

func ratedActivity(id string) scoring.ScoredActivity {
	rating := 4.7
	reviews := 350
	return scoring.ScoredActivity{
		Candidate: search.Candidate{
			ID:          id,
			Name:        "Trastevere food tour",
			PriceAmount: 52,
			Currency:    "EUR",
			Rating:      &rating,
			ReviewCount: &reviews,
			Highlights:  []string{"Local guide", "Six tastings", "Small group", "Wine included"},
		},
		RelevanceScore: 90,
		Breakdown: scoring.Breakdown{
			Budget:      30,
			Tags:        40,
			Vibe:        20,
			Preferences: 10,
			Quality:     5,
		},
		BestMatchHint: &search.ActivityHint{Name: "Street food crawl"},
	}
}

func TestAnnotate_BestForContainsAllQualifiedFragments(t *testing.T) {
	e := enrich.NewEnricher(nil, discardLog())

	got := e.Annotate(context.Background(), testIntent(), []scoring.ScoredActivity{ratedActivity("a1")})
	require.Contains(t, got, "a1")

	bestFor := got["a1"].BestFor
	assert.Contains(t, bestFor, "group of 6")
	assert.Contains(t, bestFor, "foodie vibe")
	assert.Contains(t, bestFor, "Great value")
	assert.Contains(t, bestFor, "Similar to Street food crawl")
	assert.Contains(t, bestFor, "Perfect for evening")
	assert.Contains(t, bestFor, "Rated 4.7 by 350 travelers")
}

func TestAnnotate_FragmentsBelowThresholdsAreOmitted(t *testing.T) {
	e := enrich.NewEnricher(nil, discardLog())

	a := ratedActivity("a1")
	a.Rating = nil
	a.ReviewCount = nil
	a.Breakdown = scoring.Breakdown{Budget: 15, Tags: 20, Preferences: 5}

	intent := testIntent()
	intent.Vibe = ""
	intent.TimeOfDay = ""

	got := e.Annotate(context.Background(), intent, []scoring.ScoredActivity{a})
	assert.Equal(t, "group of 6", got["a1"].BestFor)
}

func TestAnnotate_SimilarToRequiresBothScoreAndHint(t *testing.T) {
	e := enrich.NewEnricher(nil, discardLog())

	a := ratedActivity("a1")
	a.BestMatchHint = nil

	got := e.Annotate(context.Background(), testIntent(), []scoring.ScoredActivity{a})
	assert.NotContains(t, got["a1"].BestFor, "Similar to")
}

func TestAnnotate_RatingWithoutReviewsUsesShortClause(t *testing.T) {
	e := enrich.NewEnricher(nil, discardLog())

	a := ratedActivity("a1")
	a.ReviewCount = nil

	got := e.Annotate(context.Background(), testIntent(), []scoring.ScoredActivity{a})
	assert.Contains(t, got["a1"].BestFor, "Rated 4.7")
	assert.NotContains(t, got["a1"].BestFor, "travelers")
}

func TestAnnotate_CompleterOutputIsUsed(t *testing.T) {
	completer := &stubCompleter{out: map[string]string{"a1": "Wine pairings at every stop."}}
	e := enrich.NewEnricher(completer, discardLog())

	got := e.Annotate(context.Background(), testIntent(), []scoring.ScoredActivity{ratedActivity("a1")})
	assert.Equal(t, "Wine pairings at every stop.", got["a1"].SpecialFeature)
	assert.Equal(t, 1, completer.calls)
}

func TestAnnotate_CompleterErrorFallsBackToHighlights(t *testing.T) {
	completer := &stubCompleter{err: errors.New("rate limited")}
	e := enrich.NewEnricher(completer, discardLog())

	got := e.Annotate(context.Background(), testIntent(), []scoring.ScoredActivity{ratedActivity("a1")})
	assert.Equal(t, "Local guide. Six tastings. Small group", got["a1"].SpecialFeature,
		"fallback joins at most three highlights")
}

func TestAnnotate_IncompleteCompleterOutputFallsBack(t *testing.T) {
	completer := &stubCompleter{out: map[string]string{"a1": "Covered."}}
	e := enrich.NewEnricher(completer, discardLog())

	got := e.Annotate(context.Background(), testIntent(), []scoring.ScoredActivity{
		ratedActivity("a1"),
		ratedActivity("a2"),
	})
	assert.Equal(t, "Local guide. Six tastings. Small group", got["a1"].SpecialFeature)
	assert.Equal(t, "Local guide. Six tastings. Small group", got["a2"].SpecialFeature)
}

func TestAnnotate_MissingOutputForHighlightlessItemIsTolerated(t *testing.T) {
	a := ratedActivity("a1")
	b := ratedActivity("b2")
	b.Highlights = nil

	completer := &stubCompleter{out: map[string]string{"a1": "Covered."}}
	e := enrich.NewEnricher(completer, discardLog())

	got := e.Annotate(context.Background(), testIntent(), []scoring.ScoredActivity{a, b})
	assert.Equal(t, "Covered.", got["a1"].SpecialFeature)
	assert.Empty(t, got["b2"].SpecialFeature)
}

func TestAnnotate_NilCompleterStaysDeterministic(t *testing.T) {
	e := enrich.NewEnricher(nil, discardLog())

	a := ratedActivity("a1")
	a.Highlights = []string{"Skip the line"}

	got := e.Annotate(context.Background(), testIntent(), []scoring.ScoredActivity{a})
	assert.Equal(t, "Skip the line", got["a1"].SpecialFeature)
}

func TestAnnotate_NoHighlightsMeansEmptySpecialFeature(t *testing.T) {
	e := enrich.NewEnricher(nil, discardLog())

	a := ratedActivity("a1")
	a.Highlights = nil

	got := e.Annotate(context.Background(), testIntent(), []scoring.ScoredActivity{a})
	assert.Empty(t, got["a1"].SpecialFeature)
}
