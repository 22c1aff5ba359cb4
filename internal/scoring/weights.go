package scoring

// Band maps a threshold to a point award. Budget bands are checked
// low-to-high against the percent difference ("award if d <= Limit");
// ratio, rating, and review bands are checked high-to-low ("award if
// value >= Limit").
type Band struct {
	Limit  float64
	Points int
}

// Weights holds every tunable constant of the relevance scorer. The
// defaults are the empirically tuned production values; ranking behavior
// is only comparable across runs when the same weights are used.
type Weights struct {
	BudgetMax   int
	BudgetBands []Band

	TagMax     int
	TagNeutral int
	TagMinimal int
	TagBands   []Band

	VibeMax     int
	VibeNeutral int
	VibeFloor   int
	VibeBands   []Band

	PreferencesMax  int
	PreferencesBase int
	TimeOfDayBonus  int
	LocationBonus   int

	QualityMax  int
	RatingBands []Band
	ReviewBands []Band
}

// DefaultWeights returns the production scoring constants
// (30/40/20/10/10 point budgets).
func DefaultWeights() Weights {
	return Weights{
		BudgetMax: 30,
		BudgetBands: []Band{
			{Limit: 0.10, Points: 30},
			{Limit: 0.25, Points: 25},
			{Limit: 0.50, Points: 20},
			{Limit: 0.75, Points: 15},
			{Limit: 1.00, Points: 10},
			{Limit: 1.50, Points: 5},
		},

		TagMax:     40,
		TagNeutral: 20,
		TagMinimal: 10,
		TagBands: []Band{
			{Limit: 0.50, Points: 40},
			{Limit: 0.30, Points: 30},
			{Limit: 0.15, Points: 20},
		},

		VibeMax:     20,
		VibeNeutral: 10,
		VibeFloor:   5,
		VibeBands: []Band{
			{Limit: 3, Points: 20},
			{Limit: 2, Points: 15},
			{Limit: 1, Points: 10},
		},

		PreferencesMax:  10,
		PreferencesBase: 5,
		TimeOfDayBonus:  3,
		LocationBonus:   2,

		QualityMax: 10,
		RatingBands: []Band{
			{Limit: 4.8, Points: 5},
			{Limit: 4.5, Points: 3},
			{Limit: 4.0, Points: 1},
		},
		ReviewBands: []Band{
			{Limit: 1000, Points: 3},
			{Limit: 500, Points: 2},
			{Limit: 100, Points: 1},
		},
	}
}
