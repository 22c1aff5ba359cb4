package search

import (
	"math"
	"strconv"
)

// Strictness is a filter tier of the fallback ladder.
type Strictness int

const (
	Strict Strictness = iota
	Relaxed
	Minimal
	Exhausted
)

func (s Strictness) String() string {
	switch s {
	case Strict:
		return "strict"
	case Relaxed:
		return "relaxed"
	case Minimal:
		return "minimal"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// budgetCeilingFactor sets the upper price band at 2.5x the stated
// per-person budget; the lower bound is always 0 so promotional and free
// items stay in the pool.
const budgetCeilingFactor = 2.5

const maxResults = 50

// Filtering is the provider request filter block.
type Filtering struct {
	Destination  string   `json:"destination"`
	LowestPrice  *float64 `json:"lowestPrice,omitempty"`
	HighestPrice *float64 `json:"highestPrice,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}

// Sorting is the provider request sort block.
type Sorting struct {
	Sort  string `json:"sort"`
	Order string `json:"order"`
}

// Pagination is the provider request paging block.
type Pagination struct {
	Start int `json:"start"`
	Count int `json:"count"`
}

// Request is a provider product-search request.
type Request struct {
	Filtering  Filtering  `json:"filtering"`
	Sorting    *Sorting   `json:"sorting,omitempty"`
	Pagination Pagination `json:"pagination"`
	Currency   string     `json:"currency"`
}

// BuildRequest converts an intent into a provider request at the given
// strictness tier. Pure: no network state is consulted.
//
// Tag filters derived from vibe or prior activities are deliberately not
// applied at any tier — they over-constrain the pool, and narrowing belongs
// to the scorer, not the fetch. Callers that opt in can set
// Request.Filtering.Tags afterwards.
func BuildRequest(intent Intent, destinationID int, level Strictness) Request {
	req := Request{
		Filtering:  Filtering{Destination: strconv.Itoa(destinationID)},
		Pagination: Pagination{Start: 1, Count: maxResults},
		Currency:   intent.Currency,
	}

	switch level {
	case Strict:
		lowest := 0.0
		highest := math.Ceil(intent.BudgetPerPerson * budgetCeilingFactor)
		req.Filtering.LowestPrice = &lowest
		req.Filtering.HighestPrice = &highest
		req.Sorting = &Sorting{Sort: "TRAVELER_RATING", Order: "DESCENDING"}
	case Relaxed:
		req.Sorting = &Sorting{Sort: "TRAVELER_RATING", Order: "DESCENDING"}
	case Minimal:
		// Destination and currency only; provider default ordering.
	}

	return req
}
