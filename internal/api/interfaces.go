package api

import (
	"context"

	"github.com/nkozlov/planmate/internal/catalog"
	"github.com/nkozlov/planmate/internal/planner"
	"github.com/nkozlov/planmate/internal/search"
	"github.com/nkozlov/planmate/internal/storage"
)

// Planner defines the resolution and ranked-search operations needed by handlers.
type Planner interface {
	ResolveDestination(ctx context.Context, query string) (catalog.Match, error)
	SuggestDestinations(ctx context.Context, limit int) ([]string, error)
	SearchRankedActivities(ctx context.Context, intent search.Intent) (*planner.Result, error)
}

// ShortlistStore defines the storage operations needed by handlers.
type ShortlistStore interface {
	CreateShortlist(ctx context.Context, title string, items []storage.ShortlistItem) (*storage.Shortlist, error)
	GetShortlistByToken(ctx context.Context, token string) (*storage.Shortlist, error)
	AddVote(ctx context.Context, shortlistID int, activityID, voterName string) error
	TallyVotes(ctx context.Context, shortlistID int) ([]storage.VoteCount, error)
}
