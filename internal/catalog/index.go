package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/sync/singleflight"
)

// Fetcher is the upstream catalog call the index depends on.
type Fetcher interface {
	FetchAll(ctx context.Context) ([]Record, error)
}

// indexEntry caches the normalized form of a record's name so every Resolve
// call does not re-normalize the whole catalog.
type indexEntry struct {
	rec    Record
	norm   string
	tokens []string
}

// Index resolves free-text locations against a cached snapshot of the
// destination catalog. Construct one per process and inject it; there is no
// package-level state.
type Index struct {
	fetcher   Fetcher
	ttl       time.Duration
	threshold float64
	log       *slog.Logger
	now       func() time.Time

	sf singleflight.Group

	mu        sync.RWMutex
	entries   []indexEntry
	fetchedAt time.Time
}

// NewIndex constructs an Index with the given snapshot TTL and fuzzy-match
// similarity threshold.
func NewIndex(fetcher Fetcher, ttl time.Duration, threshold float64, log *slog.Logger) *Index {
	return NewIndexWithClock(fetcher, ttl, threshold, log, time.Now)
}

// NewIndexWithClock constructs an Index with an injectable clock (used in tests).
func NewIndexWithClock(fetcher Fetcher, ttl time.Duration, threshold float64, log *slog.Logger, now func() time.Time) *Index {
	return &Index{
		fetcher:   fetcher,
		ttl:       ttl,
		threshold: threshold,
		log:       log,
		now:       now,
	}
}

// fresh reports whether a snapshot exists and is within its TTL.
func (ix *Index) fresh() bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries) > 0 && ix.now().Sub(ix.fetchedAt) <= ix.ttl
}

// EnsureLoaded guarantees a usable snapshot. Concurrent callers share a
// single upstream fetch. A failed refresh keeps serving the stale snapshot
// when one exists; only a failure with no snapshot at all returns
// ErrProviderUnavailable.
func (ix *Index) EnsureLoaded(ctx context.Context) error {
	if ix.fresh() {
		return nil
	}

	_, err, _ := ix.sf.Do("catalog", func() (any, error) {
		// A queued waiter may arrive after the winner already refreshed.
		if ix.fresh() {
			return nil, nil
		}

		// Other callers depend on this fetch completing, so it must survive
		// the triggering request being abandoned.
		records, err := ix.fetcher.FetchAll(context.WithoutCancel(ctx))
		if err != nil {
			ix.mu.RLock()
			haveStale := len(ix.entries) > 0
			ix.mu.RUnlock()
			if haveStale {
				ix.log.Warn("catalog refresh failed, serving stale snapshot", "err", err)
				return nil, nil
			}
			return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		}

		entries := make([]indexEntry, 0, len(records))
		seen := make(map[int]struct{}, len(records))
		for _, rec := range records {
			if _, dup := seen[rec.ID]; dup {
				continue
			}
			seen[rec.ID] = struct{}{}
			n := Normalize(rec.Name)
			entries = append(entries, indexEntry{rec: rec, norm: n, tokens: strings.Fields(n)})
		}

		ix.mu.Lock()
		ix.entries = entries
		ix.fetchedAt = ix.now()
		ix.mu.Unlock()

		ix.log.Info("catalog snapshot loaded", "records", len(entries))
		return nil, nil
	})

	return err
}

// Clear drops the snapshot so the next caller refetches.
func (ix *Index) Clear() {
	ix.mu.Lock()
	ix.entries = nil
	ix.fetchedAt = time.Time{}
	ix.mu.Unlock()
}

// Resolve maps a free-text location to a destination record, trying exact,
// substring, token, and edit-distance tiers in order. A blank query or a
// query below the fuzzy threshold returns ErrNotFound.
func (ix *Index) Resolve(ctx context.Context, query string) (Match, error) {
	q := Normalize(query)
	if q == "" {
		return Match{}, ErrNotFound
	}

	if err := ix.EnsureLoaded(ctx); err != nil {
		return Match{}, err
	}

	ix.mu.RLock()
	entries := ix.entries
	ix.mu.RUnlock()

	// Tier 1: exact normalized equality.
	for _, e := range entries {
		if e.norm == q {
			return Match{Record: e.rec, Confidence: ConfidenceExact}, nil
		}
	}

	// Tier 2: substring either way.
	for _, e := range entries {
		if strings.Contains(e.norm, q) || strings.Contains(q, e.norm) {
			return Match{Record: e.rec, Confidence: ConfidencePartial}, nil
		}
	}

	// Tier 3: any query token against any name token, substring either way.
	qTokens := strings.Fields(q)
	for _, e := range entries {
		if tokensCross(qTokens, e.tokens) {
			return Match{Record: e.rec, Confidence: ConfidencePartial}, nil
		}
	}

	// Tier 4: normalized Levenshtein similarity, first occurrence wins ties.
	best := -1
	bestSim := 0.0
	for i, e := range entries {
		sim := similarity(q, e.norm)
		if sim >= ix.threshold && sim > bestSim {
			best = i
			bestSim = sim
		}
	}
	if best >= 0 {
		return Match{Record: entries[best].rec, Confidence: ConfidenceFuzzy}, nil
	}

	return Match{}, ErrNotFound
}

func tokensCross(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if strings.Contains(y, x) || strings.Contains(x, y) {
				return true
			}
		}
	}
	return false
}

// similarity is 1 - distance/max(len1,len2) over runes.
func similarity(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := max(la, lb)
	if longest == 0 {
		return 0
	}
	dist := fuzzy.LevenshteinDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

// Suggestions returns up to limit destination names for "try these" hints:
// cities first, then countries, then everything else, each group in
// snapshot order.
func (ix *Index) Suggestions(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}
	if err := ix.EnsureLoaded(ctx); err != nil {
		return nil, err
	}

	ix.mu.RLock()
	entries := ix.entries
	ix.mu.RUnlock()

	names := make([]string, 0, limit)
	for _, want := range []Kind{KindCity, KindCountry} {
		for _, e := range entries {
			if len(names) == limit {
				return names, nil
			}
			if e.rec.Kind == want {
				names = append(names, e.rec.Name)
			}
		}
	}
	for _, e := range entries {
		if len(names) == limit {
			break
		}
		if e.rec.Kind != KindCity && e.rec.Kind != KindCountry {
			names = append(names, e.rec.Name)
		}
	}

	return names, nil
}
