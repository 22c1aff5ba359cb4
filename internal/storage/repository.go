package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ShortlistItem is one activity an organizer picked for the group to vote on.
type ShortlistItem struct {
	ActivityID  string  `json:"activity_id"`
	Name        string  `json:"name"`
	PriceAmount float64 `json:"price_amount"`
	Currency    string  `json:"currency"`
}

// Shortlist is a stored shortlist, addressed by its share token.
type Shortlist struct {
	ID         int             `json:"-"`
	ShareToken string          `json:"share_token"`
	Title      string          `json:"title"`
	Items      []ShortlistItem `json:"items"`
	CreatedAt  time.Time       `json:"created_at"`
}

// VoteCount is the tally for one activity on a shortlist.
type VoteCount struct {
	ActivityID string `json:"activity_id"`
	Votes      int    `json:"votes"`
}

// Querier abstracts the subset of pgxpool.Pool used by Repository.
// This allows injection of a mock in tests.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository provides database access for shortlists and votes.
type Repository struct {
	q Querier
}

// NewRepository constructs a Repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{q: pool}
}

// NewRepositoryWithQuerier constructs a Repository with a custom Querier (for tests).
func NewRepositoryWithQuerier(q Querier) *Repository {
	return &Repository{q: q}
}

// CreateShortlist stores a new shortlist and returns it with a freshly
// minted share token.
func (r *Repository) CreateShortlist(ctx context.Context, title string, items []ShortlistItem) (*Shortlist, error) {
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshaling shortlist items: %w", err)
	}

	token := uuid.NewString()

	const q = `
		INSERT INTO shortlists (share_token, title, items, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`

	s := Shortlist{ShareToken: token, Title: title, Items: items}
	if err := r.q.QueryRow(ctx, q, token, title, itemsJSON).Scan(&s.ID, &s.CreatedAt); err != nil {
		return nil, fmt.Errorf("inserting shortlist %q: %w", title, err)
	}

	return &s, nil
}

// GetShortlistByToken retrieves a shortlist by its share token.
// Returns nil, nil when the token is unknown.
func (r *Repository) GetShortlistByToken(ctx context.Context, token string) (*Shortlist, error) {
	const q = `
		SELECT id, share_token, title, items, created_at
		FROM shortlists
		WHERE share_token = $1
	`

	var s Shortlist
	var itemsJSON []byte

	err := r.q.QueryRow(ctx, q, token).Scan(&s.ID, &s.ShareToken, &s.Title, &itemsJSON, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying shortlist for token %s: %w", token, err)
	}

	if err := json.Unmarshal(itemsJSON, &s.Items); err != nil {
		return nil, fmt.Errorf("unmarshaling shortlist items for token %s: %w", token, err)
	}

	return &s, nil
}

// AddVote records one voter's vote for an activity on a shortlist.
// Voting twice for the same activity is a no-op, not an error.
func (r *Repository) AddVote(ctx context.Context, shortlistID int, activityID, voterName string) error {
	const q = `
		INSERT INTO votes (shortlist_id, activity_id, voter_name, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (shortlist_id, activity_id, voter_name) DO NOTHING
	`

	if _, err := r.q.Exec(ctx, q, shortlistID, activityID, voterName); err != nil {
		return fmt.Errorf("inserting vote for shortlist %d: %w", shortlistID, err)
	}

	return nil
}

// TallyVotes returns vote counts per activity, most votes first; equal
// counts are ordered by whichever activity received its first vote earliest.
func (r *Repository) TallyVotes(ctx context.Context, shortlistID int) ([]VoteCount, error) {
	const q = `
		SELECT activity_id, COUNT(*) AS votes
		FROM votes
		WHERE shortlist_id = $1
		GROUP BY activity_id
		ORDER BY votes DESC, MIN(created_at) ASC
	`

	rows, err := r.q.Query(ctx, q, shortlistID)
	if err != nil {
		return nil, fmt.Errorf("querying vote tally for shortlist %d: %w", shortlistID, err)
	}
	defer rows.Close()

	var counts []VoteCount
	for rows.Next() {
		var vc VoteCount
		if err := rows.Scan(&vc.ActivityID, &vc.Votes); err != nil {
			return nil, fmt.Errorf("scanning vote tally row: %w", err)
		}
		counts = append(counts, vc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vote tally rows: %w", err)
	}

	return counts, nil
}
