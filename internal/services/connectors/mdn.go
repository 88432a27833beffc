package connectors

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scout/internal/common"
	"github.com/ternarybob/scout/internal/interfaces"
	"github.com/ternarybob/scout/internal/models"
)

const mdnDefaultTitle = "MDN"

// MDNConnector searches the MDN Web Docs documentation site
type MDNConnector struct {
	base
	baseURL string
}

// NewMDNConnector creates the documentation site connector
func NewMDNConnector(config common.SourceConfig, client *http.Client, userAgent string, cache interfaces.CacheService, ttls TTLs, logger arbor.ILogger) *MDNConnector {
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://developer.mozilla.org"
	}
	return &MDNConnector{
		base:    newBase("mdn", client, userAgent, config.RateLimit.Duration(), cache, ttls, logger),
		baseURL: baseURL,
	}
}

type mdnDocument struct {
	Title  string `json:"title"`
	MDNURL string `json:"mdn_url"`
}

type mdnSearchResponse struct {
	Documents []mdnDocument `json:"documents"`
}

// Search returns matching MDN pages; relative mdn_url values are made absolute
func (c *MDNConnector) Search(ctx context.Context, query interfaces.SearchQuery) models.SourceResult {
	key := cacheKey(c.name, query.Text, query.MaxResults)

	return c.run(ctx, key, func(ctx context.Context) ([]models.Document, error) {
		params := url.Values{
			"q":         {query.Text},
			"locale":    {"en-US"},
			"highlight": {"false"},
			"size":      {strconv.Itoa(query.MaxResults)},
		}
		var data mdnSearchResponse
		if err := c.getJSON(ctx, c.baseURL+"/api/v1/search", params, &data); err != nil {
			return nil, err
		}

		docs := []models.Document{}
		documents := data.Documents
		if query.MaxResults > 0 && len(documents) > query.MaxResults {
			documents = documents[:query.MaxResults]
		}
		for _, d := range documents {
			pageURL, ok := common.ResolveResultURL(d.MDNURL, c.baseURL+"/")
			if !ok {
				continue
			}
			title := d.Title
			if strings.TrimSpace(title) == "" {
				title = mdnDefaultTitle
			}
			docs = append(docs, models.Document{Title: title, URL: pageURL})
		}
		return docs, nil
	})
}
