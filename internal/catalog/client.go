package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const httpTimeout = 10 * time.Second

// Client fetches the full destination catalog from the travel-data provider.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient constructs a Client for the given catalog endpoint.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: httpTimeout},
	}
}

type rawDestination struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	ParentID *int   `json:"parentId"`
}

// decodeEnvelope parses the catalog response body. The provider has shipped
// three envelope shapes over time: a bare array, {"destinations": [...]},
// and {"data": [...]}. Each gets its own branch; anything else fails closed
// with ErrUnrecognizedShape.
func decodeEnvelope(body []byte) ([]rawDestination, error) {
	var probe any
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedShape, err)
	}

	switch probe.(type) {
	case []any:
		var recs []rawDestination
		if err := json.Unmarshal(body, &recs); err != nil {
			return nil, fmt.Errorf("%w: bare array: %v", ErrUnrecognizedShape, err)
		}
		return recs, nil
	case map[string]any:
		var wrapped struct {
			Destinations *[]rawDestination `json:"destinations"`
			Data         *[]rawDestination `json:"data"`
		}
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return nil, fmt.Errorf("%w: object envelope: %v", ErrUnrecognizedShape, err)
		}
		if wrapped.Destinations != nil {
			return *wrapped.Destinations, nil
		}
		if wrapped.Data != nil {
			return *wrapped.Data, nil
		}
		return nil, fmt.Errorf("%w: object without destinations or data key", ErrUnrecognizedShape)
	default:
		return nil, fmt.Errorf("%w: top level is neither array nor object", ErrUnrecognizedShape)
	}
}

// kindFromType maps the provider's free-form type string to a Kind.
func kindFromType(t string) Kind {
	switch Kind(t) {
	case KindCity, KindCountry, KindRegion:
		return Kind(t)
	default:
		return KindUnknown
	}
}

// FetchAll retrieves and validates the full catalog. Records without an id
// or a name are dropped, not fatal.
func (c *Client) FetchAll(ctx context.Context) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating catalog request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("exp-api-key", c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s returned status %d", c.baseURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading catalog response: %w", err)
	}

	raw, err := decodeEnvelope(body)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(raw))
	for _, r := range raw {
		if r.ID == 0 || r.Name == "" {
			continue
		}
		records = append(records, Record{
			ID:       r.ID,
			Name:     r.Name,
			Kind:     kindFromType(r.Type),
			ParentID: r.ParentID,
		})
	}

	return records, nil
}
