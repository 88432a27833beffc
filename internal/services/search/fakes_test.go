package search

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ternarybob/scout/internal/interfaces"
	"github.com/ternarybob/scout/internal/models"
)

type fakeConnector struct {
	name  string
	docs  []models.Document
	err   error
	delay time.Duration
	panic bool

	mu      sync.Mutex
	queries []interfaces.SearchQuery
}

func (f *fakeConnector) Name() string { return f.name }

func (f *fakeConnector) Search(ctx context.Context, query interfaces.SearchQuery) models.SourceResult {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.panic {
		panic("connector exploded")
	}
	if f.err != nil {
		return models.Unavailable(f.name, f.err)
	}
	return models.SourceResult{Source: f.name, Documents: f.docs}
}

func (f *fakeConnector) lastQuery() interfaces.SearchQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queries) == 0 {
		return interfaces.SearchQuery{}
	}
	return f.queries[len(f.queries)-1]
}

type fixedDetector string

func (d fixedDetector) Detect(string) string { return string(d) }

var errRemote = errors.New("remote unavailable")

// fakeFetcher fills text from a URL map and records how it was called
type fakeFetcher struct {
	texts map[string]string

	calls       int
	items       []models.Document
	concurrency int
	budget      time.Duration
}

func (f *fakeFetcher) Fetch(ctx context.Context, rawURL string) models.FetchResult {
	return models.FetchResult{URL: rawURL, Text: f.texts[rawURL]}
}

func (f *fakeFetcher) FetchAll(ctx context.Context, items []models.Document, concurrency int, budget time.Duration) []models.Document {
	f.calls++
	f.items = items
	f.concurrency = concurrency
	f.budget = budget

	out := []models.Document{}
	for _, item := range items {
		if text, ok := f.texts[item.URL]; ok {
			item.Text = text
			out = append(out, item)
		}
	}
	return out
}
