// Package search fans a question out to every source connector and turns the merged
// results into a fetched, deduplicated document set.
package search

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scout/internal/common"
	"github.com/ternarybob/scout/internal/interfaces"
	"github.com/ternarybob/scout/internal/models"
	"github.com/ternarybob/scout/internal/services/connectors"
)

// Aggregator queries the primary connector, then every secondary connector concurrently,
// and merges the results with primary precedence.
type Aggregator struct {
	connectors *connectors.Set
	detector   interfaces.LanguageDetector
	logger     arbor.ILogger
}

// NewAggregator creates an aggregator over a connector set
func NewAggregator(set *connectors.Set, detector interfaces.LanguageDetector, logger arbor.ILogger) *Aggregator {
	return &Aggregator{
		connectors: set,
		detector:   detector,
		logger:     logger,
	}
}

// Aggregate returns URL-unique results: primary results in their returned order, then the
// secondaries in declaration order, truncated to maxResults after the merge.
func (a *Aggregator) Aggregate(ctx context.Context, query string, maxResults int) []models.Document {
	start := time.Now()
	lang := a.detector.Detect(query)

	primary := a.search(ctx, a.connectors.Primary, interfaces.SearchQuery{Text: query, MaxResults: maxResults, Lang: lang})

	secondaries := make([]models.SourceResult, len(a.connectors.Secondaries))
	var wg sync.WaitGroup
	for i, secondary := range a.connectors.Secondaries {
		wg.Add(1)
		common.SafeGo(a.logger, "connector:"+secondary.Connector.Name(), func() {
			defer wg.Done()
			secondaries[i] = a.search(ctx, secondary.Connector, interfaces.SearchQuery{
				Text:       query,
				MaxResults: secondary.MaxResults,
				Lang:       lang,
			})
		})
	}
	wg.Wait()

	all := append([]models.SourceResult{primary}, secondaries...)
	merged := mergeResults(all)
	if maxResults > 0 && len(merged) > maxResults {
		merged = merged[:maxResults]
	}

	unavailable := make([]string, 0)
	for _, r := range all {
		if !r.Available() {
			unavailable = append(unavailable, r.Source)
		}
	}
	a.logger.Debug().
		Str("lang", lang).
		Int("primary_results", len(primary.Documents)).
		Int("merged", len(merged)).
		Strs("unavailable", unavailable).
		Dur("elapsed", time.Since(start)).
		Msg("Search aggregated")

	return merged
}

// mergeResults concatenates documents in result order, dropping repeated or empty URLs
func mergeResults(results []models.SourceResult) []models.Document {
	seen := make(map[string]bool)
	merged := make([]models.Document, 0)
	for _, r := range results {
		for _, doc := range r.Documents {
			if doc.URL == "" || seen[doc.URL] {
				continue
			}
			seen[doc.URL] = true
			if strings.TrimSpace(doc.Title) == "" {
				doc.Title = models.DefaultTitle
			}
			merged = append(merged, doc)
		}
	}
	return merged
}

// search calls connector and turns a panic into an unavailable result
func (a *Aggregator) search(ctx context.Context, connector interfaces.SourceConnector, query interfaces.SearchQuery) (result models.SourceResult) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error().
				Str("source", connector.Name()).
				Str("panic", fmt.Sprintf("%v", r)).
				Msg("Recovered from panic in source connector")
			result = models.Unavailable(connector.Name(), fmt.Errorf("connector panic: %v", r))
		}
	}()

	return connector.Search(ctx, query)
}
