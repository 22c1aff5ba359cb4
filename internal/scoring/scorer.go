package scoring

import (
	"math"
	"sort"
	"strings"

	"github.com/nkozlov/planmate/internal/search"
)

// Breakdown records the five independent sub-scores behind a composite
// relevance score.
type Breakdown struct {
	Budget      int `json:"budget_score"`
	Tags        int `json:"tag_score"`
	Vibe        int `json:"vibe_score"`
	Preferences int `json:"preferences_score"`
	Quality     int `json:"quality_score"`
}

func (b Breakdown) sum() int {
	return b.Budget + b.Tags + b.Vibe + b.Preferences + b.Quality
}

// ScoredActivity is a candidate plus its relevance score, sub-score
// breakdown, and (for presentation only) its closest prior-activity hint.
type ScoredActivity struct {
	search.Candidate
	RelevanceScore int                  `json:"relevance_score"`
	Breakdown      Breakdown            `json:"scoring_breakdown"`
	BestMatchHint  *search.ActivityHint `json:"best_match_hint,omitempty"`
	MatchScore     float64              `json:"match_score"`
}

// ScoreAndSort computes a composite relevance score for every candidate and
// returns them sorted by score descending. The sort is stable: candidates
// carry no secondary ranking key, so ties must keep the provider's order.
// Pure function of its inputs.
func ScoreAndSort(candidates []search.Candidate, intent search.Intent, w Weights) []ScoredActivity {
	scored := make([]ScoredActivity, len(candidates))
	for i, c := range candidates {
		b := Breakdown{
			Budget:      budgetScore(c, intent, w),
			Tags:        tagScore(c, intent, w),
			Vibe:        vibeScore(c, intent, w),
			Preferences: preferencesScore(c, intent, w),
			Quality:     qualityScore(c, w),
		}
		hint, matchScore := bestHint(c, intent.PriorActivities)
		scored[i] = ScoredActivity{
			Candidate:      c,
			RelevanceScore: clamp(b.sum(), 0, 100),
			Breakdown:      b,
			BestMatchHint:  hint,
			MatchScore:     matchScore,
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].RelevanceScore > scored[j].RelevanceScore
	})

	return scored
}

// budgetScore awards points by how close the price sits to the per-person
// budget. Free items contribute nothing: a zero price usually means the
// provider has no price, not a bargain.
func budgetScore(c search.Candidate, intent search.Intent, w Weights) int {
	if c.PriceAmount == 0 || intent.BudgetPerPerson <= 0 {
		return 0
	}
	d := math.Abs(c.PriceAmount-intent.BudgetPerPerson) / intent.BudgetPerPerson
	for _, band := range w.BudgetBands {
		if d <= band.Limit {
			return min(band.Points, w.BudgetMax)
		}
	}
	return 0
}

// tagScore measures overlap between the candidate's tags and the tags
// collected across all prior-activity hints. No hints means no signal, so
// a neutral mid-band score is returned.
func tagScore(c search.Candidate, intent search.Intent, w Weights) int {
	if len(intent.PriorActivities) == 0 {
		return min(w.TagNeutral, w.TagMax)
	}

	hintTags := make(map[string]struct{})
	for _, h := range intent.PriorActivities {
		for _, t := range h.Tags {
			hintTags[strings.ToLower(t)] = struct{}{}
		}
	}

	smaller := min(len(c.Tags), len(hintTags))
	if smaller == 0 {
		return 0
	}

	matches := 0.0
	for _, tag := range c.Tags {
		lower := strings.ToLower(tag)
		if _, ok := hintTags[lower]; ok {
			matches++
			continue
		}
		// Half credit when a candidate tag cross-matches a hint's name tokens.
		for _, h := range intent.PriorActivities {
			if nameTokensCross(lower, h.Name) {
				matches += 0.5
				break
			}
		}
	}

	ratio := matches / float64(smaller)
	for _, band := range w.TagBands {
		if ratio >= band.Limit {
			return min(band.Points, w.TagMax)
		}
	}
	if ratio > 0 {
		return min(w.TagMinimal, w.TagMax)
	}
	return 0
}

func nameTokensCross(tag, hintName string) bool {
	for _, token := range strings.Fields(strings.ToLower(hintName)) {
		if strings.Contains(tag, token) || strings.Contains(token, tag) {
			return true
		}
	}
	return false
}

// vibeKeywords maps a vibe category to the keywords that signal it in a
// candidate's name and tags.
var vibeKeywords = map[string][]string{
	"adventurous": {"adventure", "extreme", "adrenaline", "thrill", "zip", "climb", "dive"},
	"relaxed":     {"relax", "spa", "leisure", "cruise", "garden", "scenic", "wellness"},
	"cultural":    {"museum", "history", "art", "heritage", "culture", "gallery", "temple"},
	"party":       {"party", "nightlife", "bar", "club", "pub", "dance", "crawl"},
	"foodie":      {"food", "tasting", "culinary", "wine", "cooking", "dinner", "gourmet"},
	"romantic":    {"romantic", "sunset", "couples", "private", "gondola", "candlelit"},
}

func vibeScore(c search.Candidate, intent search.Intent, w Weights) int {
	if intent.Vibe == "" {
		return min(w.VibeNeutral, w.VibeMax)
	}

	text := strings.ToLower(c.Name + " " + strings.Join(c.Tags, " "))
	hits := 0
	for _, kw := range vibeKeywords[strings.ToLower(strings.TrimSpace(intent.Vibe))] {
		if strings.Contains(text, kw) {
			hits++
		}
	}

	for _, band := range w.VibeBands {
		if float64(hits) >= band.Limit {
			return min(band.Points, w.VibeMax)
		}
	}
	return min(w.VibeFloor, w.VibeMax)
}

// timeOfDayKeywords maps a requested time window to name keywords that
// suggest the activity suits it.
var timeOfDayKeywords = map[string][]string{
	"morning":   {"morning", "sunrise", "breakfast"},
	"afternoon": {"afternoon", "midday", "lunch"},
	"evening":   {"evening", "sunset", "dinner", "night"},
	"night":     {"night", "evening", "moonlight", "after dark"},
}

func preferencesScore(c search.Candidate, intent search.Intent, w Weights) int {
	score := w.PreferencesBase

	if intent.TimeOfDay != "" {
		name := strings.ToLower(c.Name)
		for _, kw := range timeOfDayKeywords[strings.ToLower(intent.TimeOfDay)] {
			if strings.Contains(name, kw) {
				score += w.TimeOfDayBonus
				break
			}
		}
	}

	if intent.IndoorOutdoor != "" && intent.IndoorOutdoor == c.LocationType {
		score += w.LocationBonus
	}

	return clamp(score, 0, w.PreferencesMax)
}

func qualityScore(c search.Candidate, w Weights) int {
	score := 0

	if c.Rating != nil {
		for _, band := range w.RatingBands {
			if *c.Rating >= band.Limit {
				score += band.Points
				break
			}
		}
	}
	if c.ReviewCount != nil {
		for _, band := range w.ReviewBands {
			if float64(*c.ReviewCount) >= band.Limit {
				score += band.Points
				break
			}
		}
	}

	return clamp(score, 0, w.QualityMax)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
