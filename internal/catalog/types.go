package catalog

import "errors"

// Kind classifies a destination record.
type Kind string

const (
	KindCity    Kind = "CITY"
	KindCountry Kind = "COUNTRY"
	KindRegion  Kind = "REGION"
	KindUnknown Kind = "UNKNOWN"
)

// Record is a canonical destination as known by the travel-data provider.
// Immutable once fetched.
type Record struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Kind     Kind   `json:"kind"`
	ParentID *int   `json:"parent_id,omitempty"`
}

// Confidence tags how a query matched a record.
type Confidence string

const (
	ConfidenceExact   Confidence = "exact"
	ConfidencePartial Confidence = "partial"
	ConfidenceFuzzy   Confidence = "fuzzy"
)

// Match is a resolved destination together with its match confidence.
type Match struct {
	Record     Record     `json:"record"`
	Confidence Confidence `json:"confidence"`
}

var (
	// ErrNotFound means no record matched the query above the fuzzy
	// threshold. A normal outcome, not a provider failure.
	ErrNotFound = errors.New("catalog: destination not found")

	// ErrProviderUnavailable means the catalog could not be fetched and no
	// previous snapshot exists to serve instead.
	ErrProviderUnavailable = errors.New("catalog: provider unavailable")

	// ErrUnrecognizedShape means the provider response matched none of the
	// known envelope shapes.
	ErrUnrecognizedShape = errors.New("catalog: unrecognized response shape")
)
