// Package fetcher retrieves result pages and extracts their readable text under a
// bounded-concurrency, wall-clock-budgeted fan-out.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scout/internal/common"
	"github.com/ternarybob/scout/internal/httpclient"
	"github.com/ternarybob/scout/internal/interfaces"
	"github.com/ternarybob/scout/internal/models"
	"github.com/ternarybob/scout/internal/services/cache"
	"golang.org/x/sync/semaphore"
)

// cacheNamespace tags fetched page text in the cache
const cacheNamespace = "fetch"

// Service implements interfaces.ContentFetcher
type Service struct {
	client    *http.Client
	extractor interfaces.ContentExtractor
	cache     interfaces.CacheService
	config    common.FetcherConfig
	ttl       time.Duration
	logger    arbor.ILogger
}

// NewService creates a fetcher. ttl is how long extracted text (or a failed outcome) is cached.
func NewService(config common.FetcherConfig, ttl time.Duration, cacheService interfaces.CacheService, logger arbor.ILogger) *Service {
	return &Service{
		client:    httpclient.NewFetchClient(config.RequestTimeout.Duration(), config.MaxRedirects),
		extractor: NewExtractor(config.OutputFormat, logger),
		cache:     cacheService,
		config:    config,
		ttl:       ttl,
		logger:    logger,
	}
}

// Fetch retrieves rawURL through the cache. Failures (bad status, timeout, nothing extractable)
// are cached as empty text so the URL is not requested again within the TTL. A cancelled
// fetch is never cached.
func (s *Service) Fetch(ctx context.Context, rawURL string) models.FetchResult {
	key := cache.Key(cacheNamespace, rawURL)

	var text string
	if s.cache.Get(ctx, key, &text) {
		return models.FetchResult{URL: rawURL, Text: text, Cached: true}
	}

	start := time.Now()
	text, err := s.retrieve(ctx, rawURL)
	if ctx.Err() != nil {
		return models.FetchResult{URL: rawURL, Err: ctx.Err()}
	}
	if err != nil {
		text = ""
		s.logger.Debug().Str("url", rawURL).Err(err).Dur("elapsed", time.Since(start)).Msg("Page fetch failed")
	} else {
		s.logger.Debug().Str("url", rawURL).Int("chars", len(text)).Dur("elapsed", time.Since(start)).Msg("Page fetched")
	}

	s.cache.Set(ctx, key, text, s.ttl)
	return models.FetchResult{URL: rawURL, Text: text, Err: err}
}

// retrieve performs the GET and extracts the page content
func (s *Service) retrieve(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("unsupported url %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", s.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,text/plain;q=0.8,*/*;q=0.5")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.config.MaxBodySize))
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	switch mediaType {
	case "", "text/html", "application/xhtml+xml":
	case "text/plain":
		if text := NormalizeText(string(body)); text != "" {
			return text, nil
		}
		return "", ErrNoContent
	default:
		return "", fmt.Errorf("unsupported content type %q", mediaType)
	}

	return s.extractor.Extract(body, resp.Request.URL)
}

// FetchAll fetches every item with at most concurrency requests in flight. Tasks still queued
// or running when budget elapses are cancelled and omitted; failed fetches are omitted too.
// The result keeps input order and is never longer than items.
func (s *Service) FetchAll(ctx context.Context, items []models.Document, concurrency int, budget time.Duration) []models.Document {
	if len(items) == 0 {
		return []models.Document{}
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	var cancel context.CancelFunc
	if budget > 0 {
		ctx, cancel = context.WithTimeout(ctx, budget)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	start := time.Now()
	sem := semaphore.NewWeighted(int64(concurrency))
	results := make([]*models.Document, len(items))

	var (
		mu     sync.Mutex
		closed bool
		wg     sync.WaitGroup
	)

	for i, item := range items {
		wg.Add(1)
		common.SafeGo(s.logger, "fetch", func() {
			defer wg.Done()

			if err := sem.Acquire(ctx, 1); err != nil {
				return
			}
			defer sem.Release(1)

			res := s.Fetch(ctx, item.URL)
			if !res.Available() {
				return
			}

			mu.Lock()
			defer mu.Unlock()
			if closed {
				return
			}
			doc := item
			doc.Text = res.Text
			results[i] = &doc
		})
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	timedOut := false
	select {
	case <-done:
	case <-ctx.Done():
		timedOut = errors.Is(ctx.Err(), context.DeadlineExceeded)
	}

	mu.Lock()
	closed = true
	docs := make([]models.Document, 0, len(items))
	for _, doc := range results {
		if doc != nil {
			docs = append(docs, *doc)
		}
	}
	mu.Unlock()

	s.logger.Debug().
		Int("requested", len(items)).
		Int("fetched", len(docs)).
		Int("concurrency", concurrency).
		Bool("budget_expired", timedOut).
		Dur("elapsed", time.Since(start)).
		Msg("Fetch batch complete")

	return docs
}
