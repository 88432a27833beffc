package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/scout/internal/models"
)

// SearchQuery is the logical request sent to a single source connector
type SearchQuery struct {
	// Text is the user's question or search phrase
	Text string

	// MaxResults caps the number of results requested from the source
	MaxResults int

	// Lang is the detected ISO 639-1 language of Text ("en", "de", ...)
	Lang string
}

// SourceConnector queries one external search or content source.
//
// Implementations consult the cache before any remote call and never panic or return
// a Go error to the caller: transport, parsing and rate-limit failures are reported
// through SourceResult.Err with an empty document list.
type SourceConnector interface {
	// Name returns the short identifier used in cache keys and logs ("ddg", "mdn", ...)
	Name() string

	// Search runs the query against the source
	Search(ctx context.Context, query SearchQuery) models.SourceResult
}

// LanguageDetector guesses the language of a query
type LanguageDetector interface {
	// Detect returns an ISO 639-1 code, or the neutral default when detection is unreliable
	Detect(text string) string
}

// SearchOptions controls one search_and_fetch run
type SearchOptions struct {
	// MaxResults caps both the aggregated result list and the final document set
	MaxResults int

	// MaxConcurrent bounds the number of page fetches in flight
	MaxConcurrent int

	// Budget is the wall-clock budget for searching plus fetching
	Budget time.Duration
}

// SearchService produces the deduplicated document set used to answer a question
type SearchService interface {
	// Aggregate queries every connector and returns merged, URL-unique results
	Aggregate(ctx context.Context, query string, maxResults int) []models.Document

	// SearchAndFetch aggregates, fetches missing text within the budget and deduplicates.
	// Every returned document has non-empty text.
	SearchAndFetch(ctx context.Context, query string, opts SearchOptions) []models.Document
}
