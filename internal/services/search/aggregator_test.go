package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scout/internal/interfaces"
	"github.com/ternarybob/scout/internal/models"
	"github.com/ternarybob/scout/internal/services/connectors"
)

func urls(docs []models.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.URL)
	}
	return out
}

func newTestAggregator(primary *fakeConnector, secondaries ...connectors.Secondary) *Aggregator {
	set := &connectors.Set{Primary: primary, Secondaries: secondaries}
	return NewAggregator(set, fixedDetector("de"), arbor.NewLogger())
}

func TestAggregate_MergeOrderAndDedupe(t *testing.T) {
	primary := &fakeConnector{name: "ddg", docs: []models.Document{
		{Title: "P1", URL: "https://p/1"},
		{Title: "P2", URL: "https://p/2"},
	}}
	wiki := &fakeConnector{name: "wikipedia", docs: []models.Document{
		{Title: "W1", URL: "https://w/1", Text: "inline synopsis"},
		{Title: "dup", URL: "https://p/1"},
	}}
	so := &fakeConnector{name: "so", docs: []models.Document{{Title: "", URL: "https://s/1"}}}
	broken := &fakeConnector{name: "mdn", err: errRemote}
	exploding := &fakeConnector{name: "gh", panic: true}

	agg := newTestAggregator(primary,
		connectors.Secondary{Connector: wiki, MaxResults: 3},
		connectors.Secondary{Connector: so, MaxResults: 2},
		connectors.Secondary{Connector: broken, MaxResults: 2},
		connectors.Secondary{Connector: exploding, MaxResults: 1},
	)

	docs := agg.Aggregate(context.Background(), "frage", 10)

	assert.Equal(t, []string{"https://p/1", "https://p/2", "https://w/1", "https://s/1"}, urls(docs))
	assert.Equal(t, "P1", docs[0].Title, "primary wins duplicate URLs")
	assert.Equal(t, "inline synopsis", docs[2].Text)
	assert.Equal(t, models.DefaultTitle, docs[3].Title)
}

func TestAggregate_PrimaryPanicIsContained(t *testing.T) {
	primary := &fakeConnector{name: "ddg", panic: true}
	wiki := &fakeConnector{name: "wikipedia", docs: []models.Document{{Title: "W1", URL: "https://w/1", Text: "x"}}}

	agg := newTestAggregator(primary, connectors.Secondary{Connector: wiki, MaxResults: 3})

	var docs []models.Document
	require.NotPanics(t, func() {
		docs = agg.Aggregate(context.Background(), "q", 6)
	})
	assert.Equal(t, []string{"https://w/1"}, urls(docs))
}

func TestSearch_PanicBecomesUnavailable(t *testing.T) {
	agg := newTestAggregator(&fakeConnector{name: "ddg"})

	result := agg.search(context.Background(), &fakeConnector{name: "mdn", panic: true}, interfaces.SearchQuery{Text: "q"})

	assert.False(t, result.Available())
	assert.Equal(t, "mdn", result.Source)
	assert.Empty(t, result.Documents)
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "connector exploded")
}

func TestAggregate_TruncatesAfterMerge(t *testing.T) {
	primary := &fakeConnector{name: "ddg", docs: []models.Document{
		{Title: "P1", URL: "https://p/1"},
		{Title: "P1 again", URL: "https://p/1"},
		{Title: "P2", URL: "https://p/2"},
	}}
	wiki := &fakeConnector{name: "wikipedia", docs: []models.Document{{Title: "W1", URL: "https://w/1", Text: "x"}}}

	docs := newTestAggregator(primary, connectors.Secondary{Connector: wiki, MaxResults: 3}).
		Aggregate(context.Background(), "q", 3)

	assert.Equal(t, []string{"https://p/1", "https://p/2", "https://w/1"}, urls(docs))
}

func TestAggregate_PassesLanguageAndLimits(t *testing.T) {
	primary := &fakeConnector{name: "ddg"}
	wiki := &fakeConnector{name: "wikipedia"}
	gh := &fakeConnector{name: "gh"}

	newTestAggregator(primary,
		connectors.Secondary{Connector: wiki, MaxResults: 3},
		connectors.Secondary{Connector: gh, MaxResults: 1},
	).Aggregate(context.Background(), "wie funktioniert das", 6)

	assert.Equal(t, "de", primary.lastQuery().Lang)
	assert.Equal(t, 6, primary.lastQuery().MaxResults)
	assert.Equal(t, "wie funktioniert das", primary.lastQuery().Text)
	assert.Equal(t, 3, wiki.lastQuery().MaxResults)
	assert.Equal(t, 1, gh.lastQuery().MaxResults)
}

func TestAggregate_SecondariesRunConcurrently(t *testing.T) {
	primary := &fakeConnector{name: "ddg"}
	var secondaries []connectors.Secondary
	for _, name := range []string{"a", "b", "c", "d"} {
		secondaries = append(secondaries, connectors.Secondary{
			Connector:  &fakeConnector{name: name, delay: 150 * time.Millisecond, docs: []models.Document{{URL: "https://" + name}}},
			MaxResults: 1,
		})
	}

	start := time.Now()
	docs := newTestAggregator(primary, secondaries...).Aggregate(context.Background(), "q", 10)

	assert.Less(t, time.Since(start), 450*time.Millisecond)
	assert.Equal(t, []string{"https://a", "https://b", "https://c", "https://d"}, urls(docs))
}

func TestAggregate_AllConnectorsFail(t *testing.T) {
	primary := &fakeConnector{name: "ddg", err: errRemote}
	wiki := &fakeConnector{name: "wikipedia", err: errRemote}

	docs := newTestAggregator(primary, connectors.Secondary{Connector: wiki, MaxResults: 3}).
		Aggregate(context.Background(), "q", 6)

	require.NotNil(t, docs)
	assert.Empty(t, docs)
}
