package interfaces

import (
	"context"
	"net/url"
	"time"

	"github.com/ternarybob/scout/internal/models"
)

// ContentFetcher retrieves pages and extracts their main readable text
type ContentFetcher interface {
	// Fetch retrieves a single URL through the cache. It never returns an error:
	// failures yield a FetchResult with Err set and empty Text.
	Fetch(ctx context.Context, rawURL string) models.FetchResult

	// FetchAll fetches every item with at most concurrency requests in flight and returns
	// the documents that completed with text before budget elapsed, in input order.
	FetchAll(ctx context.Context, items []models.Document, concurrency int, budget time.Duration) []models.Document
}

// ContentExtractor turns an HTML page into plain or markdown text
type ContentExtractor interface {
	// Extract returns the main content of the page, or an error when nothing usable was found
	Extract(html []byte, pageURL *url.URL) (string, error)
}
