package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

// NewRouter builds and returns the Chi router with all routes configured.
// Health is unauthenticated; resolution/search/shortlist-creation require
// bearer auth; shortlist read and voting routes are reachable with the
// share token alone, since the link itself is the credential handed to the
// group. Rate limiting is applied globally: 60 requests per minute per IP.
func NewRouter(handlers *Handlers, token string, db dbPinger, redisClient redisPinger, log *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(httprate.LimitByIP(60, time.Minute))

	r.Get("/api/v1/health", HealthHandlerFunc(db, redisClient, log))

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(token))
		r.Get("/api/v1/destinations/resolve", handlers.ResolveDestination)
		r.Get("/api/v1/destinations/suggestions", handlers.SuggestDestinations)
		r.Post("/api/v1/activities/search", handlers.SearchActivities)
		r.Post("/api/v1/shortlists", handlers.CreateShortlist)
	})

	r.Group(func(r chi.Router) {
		r.Get("/api/v1/shortlists/{token}", handlers.GetShortlist)
		r.Post("/api/v1/shortlists/{token}/votes", handlers.CastVote)
		r.Get("/api/v1/shortlists/{token}/results", handlers.GetVoteResults)
	})

	return r
}

// Ensure chi.Mux implements http.Handler.
var _ http.Handler = (*chi.Mux)(nil)
