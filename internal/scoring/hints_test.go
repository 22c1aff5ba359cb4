package scoring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkozlov/planmate/internal/search"
)

func TestBestMatchHint_AbsentWithoutPriorActivities(t *testing.T) {
	c := search.Candidate{ID: "a", Name: "Wine tasting", PriceAmount: 50, Tags: []string{"wine"}}
	got := scoreOne(t, c, baseIntent())
	assert.Nil(t, got.BestMatchHint)
	assert.Zero(t, got.MatchScore)
}

func TestBestMatchHint_PicksClosestHint(t *testing.T) {
	intent := baseIntent()
	intent.PriorActivities = []search.ActivityHint{
		{Name: "Bungee jump", Tags: []string{"extreme"}},
		{Name: "Tuscan wine tasting", Tags: []string{"wine", "food"}},
	}
	c := search.Candidate{
		ID:          "a",
		Name:        "Chianti wine tasting",
		PriceAmount: 50,
		Tags:        []string{"wine", "tasting"},
	}
	got := scoreOne(t, c, intent)
	require.NotNil(t, got.BestMatchHint)
	assert.Equal(t, "Tuscan wine tasting", got.BestMatchHint.Name)
	assert.Positive(t, got.MatchScore)
}

func TestBestMatchHint_NilWhenNothingRelated(t *testing.T) {
	intent := baseIntent()
	intent.PriorActivities = []search.ActivityHint{
		{Name: "Qqq", Tags: []string{"zzz"}},
	}
	c := search.Candidate{ID: "a", Name: "Xyzzy", PriceAmount: 50, Tags: []string{"abc"}}
	got := scoreOne(t, c, intent)
	assert.Nil(t, got.BestMatchHint)
	assert.Zero(t, got.MatchScore)
}

func TestBestMatchHint_SharedCategoryScoresWithoutSharedTags(t *testing.T) {
	intent := baseIntent()
	intent.PriorActivities = []search.ActivityHint{
		{Name: "Street market crawl", Tags: []string{"market"}},
	}
	// No tag in common, but both fall into the food category.
	c := search.Candidate{
		ID:          "a",
		Name:        "Evening culinary walk",
		PriceAmount: 50,
		Tags:        []string{"dinner"},
	}
	got := scoreOne(t, c, intent)
	require.NotNil(t, got.BestMatchHint)
	assert.Equal(t, "Street market crawl", got.BestMatchHint.Name)
}

func TestBestMatchHint_NameOverlapAlone(t *testing.T) {
	intent := baseIntent()
	intent.PriorActivities = []search.ActivityHint{
		{Name: "Colosseum underground visit"},
	}
	c := search.Candidate{ID: "a", Name: "Colosseum rooftop visit", PriceAmount: 50}
	got := scoreOne(t, c, intent)
	require.NotNil(t, got.BestMatchHint)
	// 2 of 3 words shared.
	assert.InDelta(t, 10.0, got.MatchScore, 0.01)
}
