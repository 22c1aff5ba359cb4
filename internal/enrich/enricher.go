package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nkozlov/planmate/internal/scoring"
	"github.com/nkozlov/planmate/internal/search"
)

// Fragment thresholds over the scoring breakdown.
const (
	greatValueBudgetScore = 20
	similarToTagScore     = 25
	perfectForPrefsScore  = 8
	qualityClauseScore    = 8
)

const fragmentSeparator = " · "

// maxFallbackHighlights caps how many provider highlights the deterministic
// special-feature fallback joins.
const maxFallbackHighlights = 3

// HighlightItem is what the text-completion collaborator receives per
// candidate: only real provider highlights, never invented text.
type HighlightItem struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Highlights []string `json:"highlights"`
}

// Completer is the external text-completion collaborator. It returns one
// special-feature sentence per candidate id, or an error; errors are always
// absorbed by the enricher.
type Completer interface {
	SpecialElements(ctx context.Context, vibe string, items []HighlightItem) (map[string]string, error)
}

// Annotation is the presentation copy attached to a top-ranked candidate.
type Annotation struct {
	BestFor        string `json:"best_for,omitempty"`
	SpecialFeature string `json:"special_feature,omitempty"`
}

// Enricher builds "why this fits" copy from the scoring breakdown, with an
// optional collaborator rewriting the special-feature line.
type Enricher struct {
	completer Completer
	log       *slog.Logger
}

// NewEnricher constructs an Enricher. A nil completer keeps enrichment
// fully deterministic.
func NewEnricher(completer Completer, log *slog.Logger) *Enricher {
	return &Enricher{completer: completer, log: log}
}

// Annotate produces annotations for the given top-ranked candidates, keyed
// by candidate id. The deterministic path always succeeds; collaborator
// failures degrade silently to formatting real highlights.
func (e *Enricher) Annotate(ctx context.Context, intent search.Intent, top []scoring.ScoredActivity) map[string]Annotation {
	annotations := make(map[string]Annotation, len(top))

	special := e.specialFeatures(ctx, intent, top)

	for _, a := range top {
		annotations[a.ID] = Annotation{
			BestFor:        bestFor(intent, a),
			SpecialFeature: special[a.ID],
		}
	}

	return annotations
}

// bestFor joins phrase fragments derived from intent and breakdown. Only
// facts present in provider data or the caller's own intent appear here.
func bestFor(intent search.Intent, a scoring.ScoredActivity) string {
	var parts []string

	if intent.GroupSizeLabel != "" {
		parts = append(parts, intent.GroupSizeLabel)
	}
	if intent.Vibe != "" {
		parts = append(parts, intent.Vibe+" vibe")
	}
	if a.Breakdown.Budget >= greatValueBudgetScore {
		parts = append(parts, "Great value")
	}
	if a.Breakdown.Tags >= similarToTagScore && a.BestMatchHint != nil {
		parts = append(parts, "Similar to "+a.BestMatchHint.Name)
	}
	if a.Breakdown.Preferences >= perfectForPrefsScore && intent.TimeOfDay != "" {
		parts = append(parts, "Perfect for "+intent.TimeOfDay)
	}
	if clause := qualityClause(a); clause != "" {
		parts = append(parts, clause)
	}

	return strings.Join(parts, fragmentSeparator)
}

func qualityClause(a scoring.ScoredActivity) string {
	// The clause needs a real rating to quote; a high quality sub-score
	// without one cannot happen, review bonuses alone stay below the bar.
	if a.Rating == nil {
		return ""
	}
	if a.ReviewCount != nil && *a.ReviewCount > 0 {
		return fmt.Sprintf("Rated %.1f by %d travelers", *a.Rating, *a.ReviewCount)
	}
	return fmt.Sprintf("Rated %.1f", *a.Rating)
}

// specialFeatures asks the collaborator for one sentence per candidate and
// falls back to joining real highlights on any failure.
func (e *Enricher) specialFeatures(ctx context.Context, intent search.Intent, top []scoring.ScoredActivity) map[string]string {
	items := make([]HighlightItem, 0, len(top))
	for _, a := range top {
		items = append(items, HighlightItem{ID: a.ID, Name: a.Name, Highlights: a.Highlights})
	}

	if e.completer != nil {
		out, err := e.completer.SpecialElements(ctx, intent.Vibe, items)
		if err == nil && complete(out, items) {
			return out
		}
		if err != nil {
			e.log.Warn("text-completion collaborator failed, using highlight fallback", "err", err)
		} else {
			e.log.Warn("text-completion collaborator returned incomplete output, using highlight fallback")
		}
	}

	out := make(map[string]string, len(items))
	for _, item := range items {
		out[item.ID] = joinHighlights(item.Highlights)
	}
	return out
}

// complete checks the collaborator covered every candidate; partial output
// is treated as failure so no candidate ends up with fabricated-or-missing
// copy while its neighbors have real sentences.
func complete(out map[string]string, items []HighlightItem) bool {
	for _, item := range items {
		if out[item.ID] == "" && len(item.Highlights) > 0 {
			return false
		}
	}
	return true
}

func joinHighlights(highlights []string) string {
	if len(highlights) == 0 {
		return ""
	}
	n := min(len(highlights), maxFallbackHighlights)
	return strings.Join(highlights[:n], ". ")
}
