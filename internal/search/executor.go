package search

import (
	"context"
	"fmt"
	"log/slog"
)

// suggestionCount is how many alternative destinations accompany an
// exhausted ladder.
const suggestionCount = 5

// Searcher is the provider call the executor drives.
type Searcher interface {
	Search(ctx context.Context, req Request) ([]Candidate, int, error)
}

// Suggester supplies alternative destination names for empty outcomes.
type Suggester interface {
	Suggestions(ctx context.Context, limit int) ([]string, error)
}

// Outcome is the terminal state of one ladder run: either candidates from
// some tier, or an exhausted empty result with suggestions. An empty
// outcome is not an error.
type Outcome struct {
	Candidates  []Candidate
	Tier        Strictness
	Empty       bool
	Suggestions []string
}

// Executor runs the strict -> relaxed -> minimal fallback ladder.
type Executor struct {
	searcher  Searcher
	suggester Suggester
	log       *slog.Logger
}

// NewExecutor constructs an Executor.
func NewExecutor(searcher Searcher, suggester Suggester, log *slog.Logger) *Executor {
	return &Executor{searcher: searcher, suggester: suggester, log: log}
}

// Run executes the ladder for the given intent. Transport and auth failures
// propagate immediately — only a legitimate empty result set advances the
// ladder, and no tier runs more than once. When the minimal tier is also
// empty the outcome is Empty with alternative suggestions attached.
func (e *Executor) Run(ctx context.Context, intent Intent, destinationID int) (Outcome, error) {
	for _, level := range []Strictness{Strict, Relaxed, Minimal} {
		req := BuildRequest(intent, destinationID, level)

		candidates, total, err := e.searcher.Search(ctx, req)
		if err != nil {
			return Outcome{}, fmt.Errorf("search at %s tier: %w", level, err)
		}
		if len(candidates) > 0 {
			e.log.Debug("search tier succeeded",
				"tier", level.String(), "candidates", len(candidates), "total", total)
			return Outcome{Candidates: candidates, Tier: level}, nil
		}

		e.log.Info("empty result set, relaxing filters", "tier", level.String(), "destination_id", destinationID)
	}

	suggestions, err := e.suggester.Suggestions(ctx, suggestionCount)
	if err != nil {
		// Suggestions are best-effort garnish on an already-empty outcome.
		e.log.Warn("fetching alternative suggestions failed", "err", err)
		suggestions = nil
	}

	return Outcome{Tier: Exhausted, Empty: true, Suggestions: suggestions}, nil
}
