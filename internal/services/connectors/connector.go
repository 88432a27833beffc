// Package connectors implements the search sources queried for every question:
// DuckDuckGo as the primary web search, plus Wikipedia, StackOverflow, MDN and GitHub.
package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scout/internal/common"
	"github.com/ternarybob/scout/internal/interfaces"
	"github.com/ternarybob/scout/internal/models"
	"github.com/ternarybob/scout/internal/services/cache"
	"golang.org/x/time/rate"
)

// maxResponseSize caps API and result page bodies read by connectors
const maxResponseSize = 4 * 1024 * 1024

// TTLs holds the cache lifetimes applied by connectors
type TTLs struct {
	Search  time.Duration // successful results, including empty ones
	Failure time.Duration // empty outcome recorded after a failed remote call
}

// base carries what every connector shares: HTTP client, cache, rate limit and logging.
type base struct {
	name      string
	client    *http.Client
	userAgent string
	limiter   *rate.Limiter
	cache     interfaces.CacheService
	ttls      TTLs
	logger    arbor.ILogger
}

func newBase(name string, client *http.Client, userAgent string, interval time.Duration, cacheService interfaces.CacheService, ttls TTLs, logger arbor.ILogger) base {
	var limiter *rate.Limiter
	if interval > 0 {
		limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
	return base{
		name:      name,
		client:    client,
		userAgent: userAgent,
		limiter:   limiter,
		cache:     cacheService,
		ttls:      ttls,
		logger:    logger,
	}
}

// Name returns the connector identifier
func (b *base) Name() string {
	return b.name
}

// run wraps a remote call with the cache lookup, rate limit, normalisation and cache store.
// It never panics and never returns a raw error: failures come back as an unavailable result.
func (b *base) run(ctx context.Context, key string, call func(ctx context.Context) ([]models.Document, error)) (result models.SourceResult) {
	var cached []models.Document
	if b.cache.Get(ctx, key, &cached) {
		b.logger.Debug().Str("source", b.name).Int("results", len(cached)).Msg("Source cache hit")
		return models.SourceResult{Source: b.name, Documents: cached, Cached: true}
	}

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().Str("source", b.name).Str("panic", fmt.Sprintf("%v", r)).Msg("Source connector panicked")
			result = models.Unavailable(b.name, fmt.Errorf("%s connector panic: %v", b.name, r))
		}
	}()

	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			return models.Unavailable(b.name, fmt.Errorf("rate limit wait: %w", err))
		}
	}

	start := time.Now()
	docs, err := call(ctx)
	docs = normalizeResults(docs)
	if err == nil && ctx.Err() != nil {
		// Sub-requests may have swallowed the cancellation; the outcome is incomplete
		err = ctx.Err()
	}

	if err != nil {
		// Cancelled work is discarded; remote failures are remembered briefly as empty
		if ctx.Err() == nil {
			b.cache.Set(ctx, key, []models.Document{}, b.ttls.Failure)
		}
		b.logger.Warn().Str("source", b.name).Err(err).Dur("elapsed", time.Since(start)).Msg("Source unavailable")
		return models.Unavailable(b.name, err)
	}

	b.cache.Set(ctx, key, docs, b.ttls.Search)
	b.logger.Debug().Str("source", b.name).Int("results", len(docs)).Dur("elapsed", time.Since(start)).Msg("Source searched")
	return models.SourceResult{Source: b.name, Documents: docs}
}

// newRequest builds a request carrying the connector's User-Agent
func (b *base) newRequest(ctx context.Context, method, endpoint string, params url.Values, body io.Reader) (*http.Request, error) {
	if len(params) > 0 && method == http.MethodGet {
		endpoint = endpoint + "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", b.userAgent)
	return req, nil
}

// do executes req and returns the body of a 2xx response
func (b *base) do(req *http.Request) ([]byte, error) {
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", req.URL.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{URL: req.URL.String(), StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", req.URL.Host, err)
	}
	return data, nil
}

// getJSON issues a GET and decodes the JSON body into dest
func (b *base) getJSON(ctx context.Context, endpoint string, params url.Values, dest interface{}) error {
	req, err := b.newRequest(ctx, http.MethodGet, endpoint, params, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	data, err := b.do(req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("malformed response from %s: %w", req.URL.Host, err)
	}
	return nil
}

// StatusError reports a non-2xx response from a remote source
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// normalizeResults drops entries without a resolvable absolute URL and defaults missing titles
func normalizeResults(docs []models.Document) []models.Document {
	out := make([]models.Document, 0, len(docs))
	for _, doc := range docs {
		resolved, ok := common.ResolveResultURL(doc.URL, "")
		if !ok {
			continue
		}
		doc.URL = resolved
		doc.Title = strings.TrimSpace(doc.Title)
		if doc.Title == "" {
			doc.Title = models.DefaultTitle
		}
		doc.Text = strings.TrimSpace(doc.Text)
		out = append(out, doc)
	}
	return out
}

// cacheKey builds the (source, query, max_results[, locale]) key for a connector call
func cacheKey(name, query string, maxResults int, extra ...interface{}) string {
	parts := append([]interface{}{query, maxResults}, extra...)
	return cache.Key(name, parts...)
}

// limitResults truncates docs to n entries when n is positive
func limitResults(docs []models.Document, n int) []models.Document {
	if n > 0 && len(docs) > n {
		return docs[:n]
	}
	return docs
}
