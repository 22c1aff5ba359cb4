package planner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nkozlov/planmate/internal/catalog"
	"github.com/nkozlov/planmate/internal/enrich"
	"github.com/nkozlov/planmate/internal/scoring"
	"github.com/nkozlov/planmate/internal/search"
)

// enrichCount is how many top-ranked candidates get presentation copy.
const enrichCount = 5

// RankedActivity is a scored candidate plus its presentation annotation.
type RankedActivity struct {
	scoring.ScoredActivity
	enrich.Annotation
}

// Result is the outcome of a ranked search: either a non-empty ordered list
// of activities, or an empty set with alternative destination suggestions.
// Empty is a normal outcome, never an error.
type Result struct {
	Activities  []RankedActivity `json:"activities"`
	Empty       bool             `json:"empty"`
	Tier        string           `json:"tier"`
	Suggestions []string         `json:"suggestions,omitempty"`
}

// DestinationResolver is the fuzzy destination index surface the service uses.
type DestinationResolver interface {
	Resolve(ctx context.Context, query string) (catalog.Match, error)
	Suggestions(ctx context.Context, limit int) ([]string, error)
}

// LadderRunner executes the fallback search ladder.
type LadderRunner interface {
	Run(ctx context.Context, intent search.Intent, destinationID int) (search.Outcome, error)
}

// Annotator produces presentation copy for top-ranked candidates.
type Annotator interface {
	Annotate(ctx context.Context, intent search.Intent, top []scoring.ScoredActivity) map[string]enrich.Annotation
}

// ResultCache is a read-through cache for ranked results. A nil cache
// disables caching.
type ResultCache interface {
	Get(ctx context.Context, key string) (*Result, error)
	Set(ctx context.Context, key string, result *Result) error
}

// Service wires destination resolution, the fallback ladder, scoring, and
// enrichment into the two operations callers see.
type Service struct {
	index    DestinationResolver
	executor LadderRunner
	enricher Annotator
	weights  scoring.Weights
	cache    ResultCache
	log      *slog.Logger
}

// NewService constructs a Service. cache may be nil.
func NewService(index DestinationResolver, executor LadderRunner, enricher Annotator, weights scoring.Weights, cache ResultCache, log *slog.Logger) *Service {
	return &Service{
		index:    index,
		executor: executor,
		enricher: enricher,
		weights:  weights,
		cache:    cache,
		log:      log,
	}
}

// ResolveDestination maps a free-text location to a destination record.
// Returns catalog.ErrNotFound when nothing matches above the fuzzy threshold.
func (s *Service) ResolveDestination(ctx context.Context, query string) (catalog.Match, error) {
	return s.index.Resolve(ctx, query)
}

// SuggestDestinations returns up to limit known destination names.
func (s *Service) SuggestDestinations(ctx context.Context, limit int) ([]string, error) {
	return s.index.Suggestions(ctx, limit)
}

// SearchRankedActivities runs the full pipeline: fallback ladder, relevance
// scoring, enrichment of the top results. Identical intents against
// identical provider responses produce identical scores; results are served
// from the cache when present.
func (s *Service) SearchRankedActivities(ctx context.Context, intent search.Intent) (*Result, error) {
	key, err := fingerprint(intent)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		if err != nil {
			s.log.Warn("result cache get failed", "err", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	outcome, err := s.executor.Run(ctx, intent, intent.Destination.ID)
	if err != nil {
		return nil, err
	}

	if outcome.Empty {
		// Deliberately not cached: an exhausted ladder often means a
		// provider hiccup, and a cached empty set would mask recovery.
		return &Result{
			Activities:  []RankedActivity{},
			Empty:       true,
			Tier:        outcome.Tier.String(),
			Suggestions: outcome.Suggestions,
		}, nil
	}

	scored := scoring.ScoreAndSort(outcome.Candidates, intent, s.weights)

	top := scored[:min(len(scored), enrichCount)]
	annotations := s.enricher.Annotate(ctx, intent, top)

	ranked := make([]RankedActivity, len(scored))
	for i, a := range scored {
		ranked[i] = RankedActivity{ScoredActivity: a, Annotation: annotations[a.ID]}
	}

	result := &Result{Activities: ranked, Tier: outcome.Tier.String()}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result); err != nil {
			s.log.Warn("result cache set failed", "err", err)
		}
	}

	return result, nil
}

// fingerprint derives a stable cache key from the intent.
func fingerprint(intent search.Intent) (string, error) {
	b, err := json.Marshal(intent)
	if err != nil {
		return "", fmt.Errorf("fingerprinting intent: %w", err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
