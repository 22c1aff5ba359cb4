package scoring

import (
	"strings"

	"github.com/nkozlov/planmate/internal/search"
)

// Hint-similarity point weights. These feed presentation text only, never
// the ranking itself.
const (
	hintExactTagPoints   = 10.0
	hintPartialTagPoints = 5.0
	hintKeywordPoints    = 15.0
	hintCategoryPoints   = 15.0
	hintNameMaxPoints    = 15.0
)

// categoryKeywords is the coarse activity taxonomy used for hint
// co-occurrence.
var categoryKeywords = map[string][]string{
	"food":      {"food", "tasting", "dinner", "culinary", "wine", "cooking", "restaurant", "market"},
	"adventure": {"adventure", "zipline", "rafting", "climb", "kayak", "extreme", "dive", "surf"},
	"cultural":  {"museum", "history", "heritage", "art", "gallery", "temple", "cathedral", "walking tour"},
	"nature":    {"nature", "hike", "park", "wildlife", "garden", "safari", "waterfall", "beach"},
	"creative":  {"workshop", "class", "craft", "pottery", "painting", "studio", "photography"},
	"tour":      {"tour", "sightseeing", "cruise", "excursion", "day trip", "guide"},
}

// coarseCategory buckets free text into the taxonomy; the category with the
// most keyword hits wins, iterated in a fixed order so equal-hit results
// are deterministic.
func coarseCategory(text string) string {
	lower := strings.ToLower(text)
	best := ""
	bestHits := 0
	for _, cat := range []string{"food", "adventure", "cultural", "nature", "creative", "tour"} {
		hits := 0
		for _, kw := range categoryKeywords[cat] {
			if strings.Contains(lower, kw) {
				hits++
			}
		}
		if hits > bestHits {
			best = cat
			bestHits = hits
		}
	}
	return best
}

// bestHint scores the candidate against every prior-activity hint and
// returns the closest one with its similarity score, or nil when no hint
// scores above zero.
func bestHint(c search.Candidate, hints []search.ActivityHint) (*search.ActivityHint, float64) {
	var best *search.ActivityHint
	bestScore := 0.0

	candText := strings.ToLower(c.Name + " " + strings.Join(c.Tags, " "))
	candCategory := coarseCategory(candText)

	for i := range hints {
		score := hintSimilarity(c, candText, candCategory, hints[i])
		if score > bestScore {
			best = &hints[i]
			bestScore = score
		}
	}

	return best, bestScore
}

func hintSimilarity(c search.Candidate, candText, candCategory string, h search.ActivityHint) float64 {
	score := 0.0

	candTags := make(map[string]struct{}, len(c.Tags))
	for _, t := range c.Tags {
		candTags[strings.ToLower(t)] = struct{}{}
	}

	for _, t := range h.Tags {
		lower := strings.ToLower(t)
		if _, ok := candTags[lower]; ok {
			score += hintExactTagPoints
			continue
		}
		if partialTagMatch(lower, candTags) {
			score += hintPartialTagPoints
		}
	}

	// Hint keywords found verbatim in the candidate's text.
	for _, t := range h.Tags {
		if strings.Contains(candText, strings.ToLower(t)) {
			score += hintKeywordPoints
			break
		}
	}

	if candCategory != "" && candCategory == coarseCategory(h.Name+" "+strings.Join(h.Tags, " ")) {
		score += hintCategoryPoints
	}

	score += nameOverlap(c.Name, h.Name) * hintNameMaxPoints

	return score
}

func partialTagMatch(tag string, candTags map[string]struct{}) bool {
	for ct := range candTags {
		if strings.Contains(ct, tag) || strings.Contains(tag, ct) {
			return true
		}
	}
	return false
}

// nameOverlap is the share of words the two names have in common, relative
// to the longer name.
func nameOverlap(a, b string) float64 {
	aWords := strings.Fields(strings.ToLower(a))
	bWords := strings.Fields(strings.ToLower(b))
	if len(aWords) == 0 || len(bWords) == 0 {
		return 0
	}

	set := make(map[string]struct{}, len(aWords))
	for _, w := range aWords {
		set[w] = struct{}{}
	}
	shared := 0
	for _, w := range bWords {
		if _, ok := set[w]; ok {
			shared++
		}
	}

	return float64(shared) / float64(max(len(aWords), len(bWords)))
}
