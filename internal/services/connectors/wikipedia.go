package connectors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scout/internal/common"
	"github.com/ternarybob/scout/internal/interfaces"
	"github.com/ternarybob/scout/internal/models"
)

// WikipediaConnector returns encyclopedia entries with their synopsis inline,
// so its results skip page fetching entirely.
type WikipediaConnector struct {
	base
	baseURL string
}

// NewWikipediaConnector creates the encyclopedia connector
func NewWikipediaConnector(config common.SourceConfig, client *http.Client, userAgent string, cache interfaces.CacheService, ttls TTLs, logger arbor.ILogger) *WikipediaConnector {
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://en.wikipedia.org"
	}
	return &WikipediaConnector{
		base:    newBase("wikipedia", client, userAgent, config.RateLimit.Duration(), cache, ttls, logger),
		baseURL: baseURL,
	}
}

// Search runs opensearch and falls back to the REST page search when that yields nothing.
// Only pages with a non-empty summary extract are returned.
func (c *WikipediaConnector) Search(ctx context.Context, query interfaces.SearchQuery) models.SourceResult {
	key := cacheKey(c.name, query.Text, query.MaxResults)

	return c.run(ctx, key, func(ctx context.Context) ([]models.Document, error) {
		docs, openErr := c.openSearch(ctx, query.Text, query.MaxResults)
		if len(docs) > 0 {
			return docs, nil
		}

		docs, restErr := c.restSearch(ctx, query.Text, query.MaxResults)
		if len(docs) > 0 {
			return docs, nil
		}
		if openErr != nil && restErr != nil {
			return nil, errors.Join(openErr, restErr)
		}
		return []models.Document{}, nil
	})
}

// openSearch uses action=opensearch, whose response is [query, titles, descriptions, urls]
func (c *WikipediaConnector) openSearch(ctx context.Context, query string, limit int) ([]models.Document, error) {
	params := url.Values{
		"action":    {"opensearch"},
		"search":    {query},
		"limit":     {strconv.Itoa(limit)},
		"namespace": {"0"},
		"format":    {"json"},
	}
	var data []json.RawMessage
	if err := c.getJSON(ctx, c.baseURL+"/w/api.php", params, &data); err != nil {
		return nil, err
	}

	var titles, urls []string
	if len(data) > 1 {
		_ = json.Unmarshal(data[1], &titles)
	}
	if len(data) > 3 {
		_ = json.Unmarshal(data[3], &urls)
	}

	docs := []models.Document{}
	for i, title := range titles {
		pageURL := c.articleURL(title)
		if i < len(urls) && urls[i] != "" {
			pageURL = urls[i]
		}
		extract := c.summary(ctx, title)
		if extract == "" {
			continue
		}
		docs = append(docs, models.Document{Title: title, URL: pageURL, Text: extract})
	}
	return docs, nil
}

type restSearchResponse struct {
	Pages []struct {
		Key   string `json:"key"`
		Title string `json:"title"`
	} `json:"pages"`
}

// restSearch uses the REST v1 page search
func (c *WikipediaConnector) restSearch(ctx context.Context, query string, limit int) ([]models.Document, error) {
	params := url.Values{
		"q":     {query},
		"limit": {strconv.Itoa(limit)},
	}
	var data restSearchResponse
	if err := c.getJSON(ctx, c.baseURL+"/w/rest.php/v1/search/page", params, &data); err != nil {
		return nil, err
	}

	docs := []models.Document{}
	for _, page := range data.Pages {
		key := page.Key
		if key == "" {
			key = page.Title
		}
		if key == "" {
			continue
		}
		title := page.Title
		if title == "" {
			title = key
		}
		extract := c.summary(ctx, key)
		if extract == "" {
			continue
		}
		docs = append(docs, models.Document{Title: title, URL: c.baseURL + "/wiki/" + key, Text: extract})
	}
	return docs, nil
}

// summary returns the page summary extract, or "" when it is unavailable
func (c *WikipediaConnector) summary(ctx context.Context, title string) string {
	var data struct {
		Extract string `json:"extract"`
	}
	endpoint := c.baseURL + "/api/rest_v1/page/summary/" + url.PathEscape(strings.ReplaceAll(title, " ", "_"))
	if err := c.getJSON(ctx, endpoint, nil, &data); err != nil {
		c.logger.Debug().Str("title", title).Err(err).Msg("Wikipedia summary unavailable")
		return ""
	}
	return strings.TrimSpace(data.Extract)
}

func (c *WikipediaConnector) articleURL(title string) string {
	return c.baseURL + "/wiki/" + strings.ReplaceAll(title, " ", "_")
}
