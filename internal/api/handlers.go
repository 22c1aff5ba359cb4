package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nkozlov/planmate/internal/catalog"
	"github.com/nkozlov/planmate/internal/search"
	"github.com/nkozlov/planmate/internal/storage"
)

const (
	defaultSuggestionLimit = 8
	maxSuggestionLimit     = 25
)

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	planner Planner
	store   ShortlistStore
	log     *slog.Logger
}

// NewHandlers constructs Handlers with all required dependencies.
func NewHandlers(planner Planner, store ShortlistStore, log *slog.Logger) *Handlers {
	return &Handlers{planner: planner, store: store, log: log}
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ResolveDestination handles GET /api/v1/destinations/resolve?q={query}.
// A no-match resolution is a 404 carrying alternative suggestions, not a
// server failure.
func (h *Handlers) ResolveDestination(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	match, err := h.planner.ResolveDestination(r.Context(), query)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		suggestions, sErr := h.planner.SuggestDestinations(r.Context(), defaultSuggestionLimit)
		if sErr != nil {
			h.log.Warn("fetching suggestions for not-found response failed", "err", sErr)
		}
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error":       "no matching destination",
			"suggestions": suggestions,
		})
		return
	case errors.Is(err, catalog.ErrProviderUnavailable):
		h.log.Error("destination provider unavailable", "query", query, "err", err)
		writeError(w, http.StatusBadGateway, "destination provider unavailable")
		return
	case err != nil:
		h.log.Error("resolve failed", "query", query, "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, match)
}

// SuggestDestinations handles GET /api/v1/destinations/suggestions?limit={n}.
func (h *Handlers) SuggestDestinations(w http.ResponseWriter, r *http.Request) {
	limit := defaultSuggestionLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxSuggestionLimit)
	}

	suggestions, err := h.planner.SuggestDestinations(r.Context(), limit)
	if err != nil {
		h.log.Error("suggestions failed", "err", err)
		writeError(w, http.StatusBadGateway, "destination provider unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

// SearchActivities handles POST /api/v1/activities/search.
// An exhausted fallback ladder returns 200 with empty=true, never an error.
func (h *Handlers) SearchActivities(w http.ResponseWriter, r *http.Request) {
	var intent search.Intent
	if err := json.NewDecoder(r.Body).Decode(&intent); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if intent.Destination.ID == 0 {
		writeError(w, http.StatusBadRequest, "destination.id is required — resolve the location first")
		return
	}
	if intent.BudgetPerPerson <= 0 {
		writeError(w, http.StatusBadRequest, "budget_per_person must be positive")
		return
	}
	if intent.Currency == "" {
		writeError(w, http.StatusBadRequest, "currency is required")
		return
	}

	result, err := h.planner.SearchRankedActivities(r.Context(), intent)
	if err != nil {
		h.log.Error("ranked search failed", "destination_id", intent.Destination.ID, "err", err)
		writeError(w, http.StatusBadGateway, "activity provider unavailable")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type createShortlistRequest struct {
	Title string                  `json:"title"`
	Items []storage.ShortlistItem `json:"items"`
}

// CreateShortlist handles POST /api/v1/shortlists.
func (h *Handlers) CreateShortlist(w http.ResponseWriter, r *http.Request) {
	var req createShortlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" || len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "title and at least one item are required")
		return
	}

	shortlist, err := h.store.CreateShortlist(r.Context(), req.Title, req.Items)
	if err != nil {
		h.log.Error("creating shortlist failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to create shortlist")
		return
	}

	writeJSON(w, http.StatusCreated, shortlist)
}

// GetShortlist handles GET /api/v1/shortlists/{token}.
func (h *Handlers) GetShortlist(w http.ResponseWriter, r *http.Request) {
	shortlist, ok := h.shortlistFromToken(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, shortlist)
}

type castVoteRequest struct {
	ActivityID string `json:"activity_id"`
	VoterName  string `json:"voter_name"`
}

// CastVote handles POST /api/v1/shortlists/{token}/votes.
func (h *Handlers) CastVote(w http.ResponseWriter, r *http.Request) {
	shortlist, ok := h.shortlistFromToken(w, r)
	if !ok {
		return
	}

	var req castVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ActivityID == "" || req.VoterName == "" {
		writeError(w, http.StatusBadRequest, "activity_id and voter_name are required")
		return
	}

	// Only listed activities are votable.
	listed := false
	for _, item := range shortlist.Items {
		if item.ActivityID == req.ActivityID {
			listed = true
			break
		}
	}
	if !listed {
		writeError(w, http.StatusBadRequest, "activity is not on this shortlist")
		return
	}

	if err := h.store.AddVote(r.Context(), shortlist.ID, req.ActivityID, req.VoterName); err != nil {
		h.log.Error("adding vote failed", "shortlist_id", shortlist.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to record vote")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetVoteResults handles GET /api/v1/shortlists/{token}/results.
func (h *Handlers) GetVoteResults(w http.ResponseWriter, r *http.Request) {
	shortlist, ok := h.shortlistFromToken(w, r)
	if !ok {
		return
	}

	tally, err := h.store.TallyVotes(r.Context(), shortlist.ID)
	if err != nil {
		h.log.Error("tallying votes failed", "shortlist_id", shortlist.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to tally votes")
		return
	}

	var winner *storage.VoteCount
	if len(tally) > 0 {
		winner = &tally[0]
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tally":  tally,
		"winner": winner,
	})
}

func (h *Handlers) shortlistFromToken(w http.ResponseWriter, r *http.Request) (*storage.Shortlist, bool) {
	token := chi.URLParam(r, "token")

	shortlist, err := h.store.GetShortlistByToken(r.Context(), token)
	if err != nil {
		h.log.Error("fetching shortlist failed", "token", token, "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return nil, false
	}
	if shortlist == nil {
		writeError(w, http.StatusNotFound, "shortlist not found")
		return nil, false
	}

	return shortlist, true
}

// HealthCheck dependencies.
type dbPinger interface {
	Ping(ctx context.Context) error
}

type redisPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlerFunc returns an http.HandlerFunc that checks db and redis connectivity.
func HealthHandlerFunc(db dbPinger, redis redisPinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		dbStatus := "ok"
		redisStatus := "ok"

		if err := db.Ping(ctx); err != nil {
			log.Error("health check: db ping failed", "err", err)
			dbStatus = "error"
			status = http.StatusServiceUnavailable
		}

		if err := redis.Ping(ctx); err != nil {
			log.Error("health check: redis ping failed", "err", err)
			redisStatus = "error"
			status = http.StatusServiceUnavailable
		}

		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}

		writeJSON(w, status, map[string]string{
			"status": overall,
			"db":     dbStatus,
			"redis":  redisStatus,
		})
	}
}
