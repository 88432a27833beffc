package connectors

import (
	"context"
	"html"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scout/internal/common"
	"github.com/ternarybob/scout/internal/interfaces"
	"github.com/ternarybob/scout/internal/models"
)

const stackOverflowDefaultTitle = "StackOverflow Question"

// StackOverflowConnector searches questions through the StackExchange API
type StackOverflowConnector struct {
	base
	baseURL string
}

// NewStackOverflowConnector creates the Q&A site connector
func NewStackOverflowConnector(config common.SourceConfig, client *http.Client, userAgent string, cache interfaces.CacheService, ttls TTLs, logger arbor.ILogger) *StackOverflowConnector {
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.stackexchange.com/2.3"
	}
	return &StackOverflowConnector{
		base:    newBase("so", client, userAgent, config.RateLimit.Duration(), cache, ttls, logger),
		baseURL: baseURL,
	}
}

type stackExchangeResponse struct {
	Items []struct {
		Title string `json:"title"`
		Link  string `json:"link"`
	} `json:"items"`
}

// Search returns the most relevant StackOverflow questions
func (c *StackOverflowConnector) Search(ctx context.Context, query interfaces.SearchQuery) models.SourceResult {
	key := cacheKey(c.name, query.Text, query.MaxResults)

	return c.run(ctx, key, func(ctx context.Context) ([]models.Document, error) {
		params := url.Values{
			"order":    {"desc"},
			"sort":     {"relevance"},
			"q":        {query.Text},
			"site":     {"stackoverflow"},
			"pagesize": {strconv.Itoa(query.MaxResults)},
		}
		var data stackExchangeResponse
		if err := c.getJSON(ctx, c.baseURL+"/search/advanced", params, &data); err != nil {
			return nil, err
		}

		docs := []models.Document{}
		for _, item := range data.Items {
			if item.Link == "" {
				continue
			}
			title := html.UnescapeString(item.Title)
			if strings.TrimSpace(title) == "" {
				title = stackOverflowDefaultTitle
			}
			docs = append(docs, models.Document{Title: title, URL: item.Link})
		}
		return limitResults(docs, query.MaxResults), nil
	})
}
