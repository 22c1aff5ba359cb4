package search_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkozlov/planmate/internal/catalog"
	"github.com/nkozlov/planmate/internal/search"
)

func sampleIntent() search.Intent {
	return search.Intent{
		Destination:     catalog.Record{ID: 77, Name: "Rome", Kind: catalog.KindCity},
		BudgetPerPerson: 50,
		Currency:        "EUR",
		GroupSizeLabel:  "group of 6",
		Vibe:            "adventurous",
	}
}

func TestBuildRequest_Strict(t *testing.T) {
	req := search.BuildRequest(sampleIntent(), 77, search.Strict)

	assert.Equal(t, "77", req.Filtering.Destination)
	require.NotNil(t, req.Filtering.LowestPrice)
	require.NotNil(t, req.Filtering.HighestPrice)
	assert.Equal(t, 0.0, *req.Filtering.LowestPrice)
	assert.Equal(t, 125.0, *req.Filtering.HighestPrice, "ceil(50 * 2.5)")
	require.NotNil(t, req.Sorting)
	assert.Equal(t, "TRAVELER_RATING", req.Sorting.Sort)
	assert.Equal(t, "DESCENDING", req.Sorting.Order)
	assert.Equal(t, 50, req.Pagination.Count)
	assert.Equal(t, "EUR", req.Currency)
}

func TestBuildRequest_StrictRoundsBudgetCeilingUp(t *testing.T) {
	intent := sampleIntent()
	intent.BudgetPerPerson = 33

	req := search.BuildRequest(intent, 77, search.Strict)
	require.NotNil(t, req.Filtering.HighestPrice)
	assert.Equal(t, 83.0, *req.Filtering.HighestPrice, "ceil(33 * 2.5) = ceil(82.5)")
}

func TestBuildRequest_RelaxedOmitsPriceBand(t *testing.T) {
	req := search.BuildRequest(sampleIntent(), 77, search.Relaxed)

	assert.Nil(t, req.Filtering.LowestPrice)
	assert.Nil(t, req.Filtering.HighestPrice)
	require.NotNil(t, req.Sorting)
	assert.Equal(t, "TRAVELER_RATING", req.Sorting.Sort)
}

func TestBuildRequest_MinimalIsDestinationAndCurrencyOnly(t *testing.T) {
	req := search.BuildRequest(sampleIntent(), 77, search.Minimal)

	assert.Equal(t, "77", req.Filtering.Destination)
	assert.Nil(t, req.Filtering.LowestPrice)
	assert.Nil(t, req.Filtering.HighestPrice)
	assert.Nil(t, req.Sorting, "minimal tier keeps provider default ordering")
	assert.Equal(t, "EUR", req.Currency)
}

func TestBuildRequest_NoTagFiltersAtAnyTier(t *testing.T) {
	intent := sampleIntent()
	intent.PriorActivities = []search.ActivityHint{
		{Name: "Wine tasting", Tags: []string{"food", "wine"}},
	}

	for _, level := range []search.Strictness{search.Strict, search.Relaxed, search.Minimal} {
		req := search.BuildRequest(intent, 77, level)
		assert.Empty(t, req.Filtering.Tags, "tier %s", level)
	}
}

func TestStrictnessString(t *testing.T) {
	assert.Equal(t, "strict", search.Strict.String())
	assert.Equal(t, "relaxed", search.Relaxed.String())
	assert.Equal(t, "minimal", search.Minimal.String())
	assert.Equal(t, "exhausted", search.Exhausted.String())
}
