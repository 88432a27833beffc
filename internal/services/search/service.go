package search

import (
	"context"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scout/internal/common"
	"github.com/ternarybob/scout/internal/interfaces"
	"github.com/ternarybob/scout/internal/models"
	"github.com/ternarybob/scout/internal/services/dedupe"
)

// defaultMinRemaining keeps the fetch budget positive when searching used up the whole budget
const defaultMinRemaining = 100 * time.Millisecond

// Service implements interfaces.SearchService
type Service struct {
	aggregator *Aggregator
	fetcher    interfaces.ContentFetcher
	config     common.SearchConfig
	logger     arbor.ILogger
}

// NewService creates the search-and-fetch service
func NewService(aggregator *Aggregator, fetcher interfaces.ContentFetcher, config common.SearchConfig, logger arbor.ILogger) *Service {
	return &Service{
		aggregator: aggregator,
		fetcher:    fetcher,
		config:     config,
		logger:     logger,
	}
}

// Aggregate implements interfaces.SearchService
func (s *Service) Aggregate(ctx context.Context, query string, maxResults int) []models.Document {
	return s.aggregator.Aggregate(ctx, query, maxResults)
}

// SearchAndFetch aggregates, keeps results that already carry text, fetches the rest with
// whatever is left of the budget, then deduplicates and truncates. Zero options fall back
// to the configured defaults.
func (s *Service) SearchAndFetch(ctx context.Context, query string, opts interfaces.SearchOptions) []models.Document {
	opts = s.withDefaults(opts)
	start := time.Now()

	items := s.aggregator.Aggregate(ctx, query, opts.MaxResults)

	docs := make([]models.Document, 0, len(items))
	var missing []models.Document
	for _, item := range items {
		if item.HasText() {
			docs = append(docs, item)
		} else {
			missing = append(missing, item)
		}
	}

	if len(missing) > 0 {
		remaining := opts.Budget - time.Since(start)
		floor := s.config.MinRemaining.Duration()
		if floor <= 0 {
			floor = defaultMinRemaining
		}
		if remaining < floor {
			remaining = floor
		}
		fetched := s.fetcher.FetchAll(ctx, missing, opts.MaxConcurrent, remaining)
		for _, doc := range fetched {
			if doc.HasText() {
				docs = append(docs, doc)
			}
		}
	}

	docs = dedupe.Dedupe(docs, s.config.DedupeThreshold)
	if len(docs) > opts.MaxResults {
		docs = docs[:opts.MaxResults]
	}

	s.logger.Debug().
		Int("results", len(items)).
		Int("fetched", len(missing)).
		Int("documents", len(docs)).
		Dur("elapsed", time.Since(start)).
		Msg("Search and fetch complete")

	return docs
}

func (s *Service) withDefaults(opts interfaces.SearchOptions) interfaces.SearchOptions {
	if opts.MaxResults <= 0 {
		opts.MaxResults = s.config.MaxResults
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = s.config.MaxConcurrent
	}
	if opts.Budget <= 0 {
		opts.Budget = s.config.Budget.Duration()
	}
	return opts
}
