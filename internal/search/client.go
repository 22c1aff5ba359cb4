package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const httpTimeout = 10 * time.Second

// Client issues product-search requests against the travel-products provider.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient constructs a Client for the given search endpoint.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: httpTimeout},
	}
}

type rawProduct struct {
	ProductCode string `json:"productCode"`
	Title       string `json:"title"`
	Pricing     struct {
		Summary struct {
			FromPrice float64 `json:"fromPrice"`
		} `json:"summary"`
		Currency string `json:"currency"`
	} `json:"pricing"`
	Reviews struct {
		CombinedAverageRating float64 `json:"combinedAverageRating"`
		TotalReviews          int     `json:"totalReviews"`
	} `json:"reviews"`
	Duration   string   `json:"duration"`
	Tags       []string `json:"tags"`
	Highlights []string `json:"highlights"`
}

type searchResponse struct {
	Products   []rawProduct `json:"products"`
	TotalCount int          `json:"totalCount"`
}

// Search executes the provider call and returns normalized candidates plus
// the provider's total count. Transport and non-2xx failures are errors;
// an empty product list is not.
func (c *Client) Search(ctx context.Context, req Request) ([]Candidate, int, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, 0, fmt.Errorf("marshaling search request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("creating search request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("exp-api-key", c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("POST %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("POST %s returned status %d", c.baseURL, resp.StatusCode)
	}

	var raw searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, 0, fmt.Errorf("decoding search response: %w", err)
	}

	candidates := make([]Candidate, 0, len(raw.Products))
	for _, p := range raw.Products {
		if p.ProductCode == "" || p.Title == "" {
			continue
		}
		candidates = append(candidates, normalizeProduct(p))
	}

	return candidates, raw.TotalCount, nil
}

// normalizeProduct maps a raw provider product to a Candidate. Rating and
// review count stay nil when the provider sent no review data; location
// type and activity level are inferred from tag and title keywords since
// the provider does not send them directly.
func normalizeProduct(p rawProduct) Candidate {
	c := Candidate{
		ID:            p.ProductCode,
		Name:          p.Title,
		PriceAmount:   p.Pricing.Summary.FromPrice,
		Currency:      p.Pricing.Currency,
		Tags:          p.Tags,
		DurationLabel: p.Duration,
		Highlights:    p.Highlights,
	}

	if p.Reviews.TotalReviews > 0 || p.Reviews.CombinedAverageRating > 0 {
		rating := p.Reviews.CombinedAverageRating
		reviews := p.Reviews.TotalReviews
		c.Rating = &rating
		c.ReviewCount = &reviews
	}

	text := keywordText(p.Title, p.Tags)
	c.LocationType = inferLocationType(text)
	c.ActivityLevel = inferActivityLevel(text)

	return c
}

func keywordText(title string, tags []string) string {
	return strings.ToLower(title + " " + strings.Join(tags, " "))
}

var (
	indoorKeywords  = []string{"indoor", "museum", "gallery", "theater", "escape room", "studio"}
	outdoorKeywords = []string{"outdoor", "hike", "hiking", "beach", "kayak", "bike", "garden", "park", "safari", "boat"}

	highKeywords = []string{"extreme", "climb", "rafting", "surf", "zipline", "trek", "adrenaline"}
	lowKeywords  = []string{"tasting", "spa", "cruise", "class", "workshop", "show", "lounge"}
)

func inferLocationType(text string) LocationType {
	for _, k := range indoorKeywords {
		if strings.Contains(text, k) {
			return LocationIndoor
		}
	}
	for _, k := range outdoorKeywords {
		if strings.Contains(text, k) {
			return LocationOutdoor
		}
	}
	return LocationHybrid
}

func inferActivityLevel(text string) ActivityLevel {
	for _, k := range highKeywords {
		if strings.Contains(text, k) {
			return LevelHigh
		}
	}
	for _, k := range lowKeywords {
		if strings.Contains(text, k) {
			return LevelLow
		}
	}
	return LevelModerate
}
