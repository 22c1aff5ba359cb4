package search

import "github.com/nkozlov/planmate/internal/catalog"

// LocationType classifies where an activity happens.
type LocationType string

const (
	LocationIndoor  LocationType = "indoor"
	LocationOutdoor LocationType = "outdoor"
	LocationHybrid  LocationType = "hybrid"
)

// ActivityLevel classifies physical intensity.
type ActivityLevel string

const (
	LevelLow      ActivityLevel = "low"
	LevelModerate ActivityLevel = "moderate"
	LevelHigh     ActivityLevel = "high"
)

// ActivityHint describes an activity the group has done and liked before.
type ActivityHint struct {
	Name          string        `json:"name"`
	Tags          []string      `json:"tags,omitempty"`
	ActivityLevel ActivityLevel `json:"activity_level,omitempty"`
	LocationType  LocationType  `json:"location_type,omitempty"`
}

// Intent is the immutable search intent a caller submits: a resolved
// destination plus the group's constraints and taste signals.
type Intent struct {
	Destination     catalog.Record `json:"destination"`
	BudgetPerPerson float64        `json:"budget_per_person"`
	Currency        string         `json:"currency"`
	GroupSizeLabel  string         `json:"group_size_label"`
	Vibe            string         `json:"vibe,omitempty"`
	TimeOfDay       string         `json:"time_of_day,omitempty"`
	IndoorOutdoor   LocationType   `json:"indoor_outdoor,omitempty"`
	PriorActivities []ActivityHint `json:"prior_activities,omitempty"`
}

// Candidate is a normalized provider result. Read-only after the response
// normalizer creates it.
type Candidate struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	PriceAmount   float64       `json:"price_amount"`
	Currency      string        `json:"currency"`
	Tags          []string      `json:"tags,omitempty"`
	Rating        *float64      `json:"rating,omitempty"`
	ReviewCount   *int          `json:"review_count,omitempty"`
	DurationLabel string        `json:"duration_label,omitempty"`
	LocationType  LocationType  `json:"location_type"`
	ActivityLevel ActivityLevel `json:"activity_level"`
	Highlights    []string      `json:"highlights,omitempty"`
}
