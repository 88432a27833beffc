package connectors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scout/internal/common"
	"github.com/ternarybob/scout/internal/interfaces"
	"github.com/ternarybob/scout/internal/models"
)

// DuckDuckGo backends, tried in the configured order
const (
	BackendAPI  = "api"
	BackendHTML = "html"
	BackendLite = "lite"
)

// safeSearchModerate is DuckDuckGo's "moderate" safe search value
const safeSearchModerate = "-1"

var (
	vqdPattern      = regexp.MustCompile(`vqd=["']?([0-9-]+)`)
	errNoVQD        = errors.New("duckduckgo: vqd token not found")
	errNoResultList = errors.New("duckduckgo: result list not found in d.js response")
)

// DuckDuckGoConnector is the primary web search source
type DuckDuckGoConnector struct {
	base
	config common.DuckDuckGoConfig
}

// NewDuckDuckGoConnector creates the primary web search connector
func NewDuckDuckGoConnector(config common.DuckDuckGoConfig, client *http.Client, userAgent string, cache interfaces.CacheService, ttls TTLs, logger arbor.ILogger) *DuckDuckGoConnector {
	if len(config.Backends) == 0 {
		config.Backends = []string{BackendAPI, BackendHTML, BackendLite}
	}
	return &DuckDuckGoConnector{
		base:   newBase("ddg", client, userAgent, config.RateLimit.Duration(), cache, ttls, logger),
		config: config,
	}
}

// Search queries DuckDuckGo, falling back through the configured backends until one
// returns results. An outcome where every backend came back empty is still cached.
func (c *DuckDuckGoConnector) Search(ctx context.Context, query interfaces.SearchQuery) models.SourceResult {
	key := cacheKey(c.name, query.Text, query.MaxResults, query.Lang)
	region := RegionForLang(query.Lang)

	return c.run(ctx, key, func(ctx context.Context) ([]models.Document, error) {
		var errs []error
		for _, backend := range c.config.Backends {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}

			docs, err := c.searchBackend(ctx, backend, query.Text, region, query.MaxResults)
			if err != nil {
				c.logger.Debug().Str("backend", backend).Err(err).Msg("DuckDuckGo backend failed")
				errs = append(errs, fmt.Errorf("%s: %w", backend, err))
				continue
			}
			if len(docs) > 0 {
				c.logger.Debug().Str("backend", backend).Int("results", len(docs)).Msg("DuckDuckGo backend returned results")
				return docs, nil
			}
		}

		// Every backend failed outright: report unavailable. A clean empty answer from
		// any backend is a legitimate zero-result outcome.
		if len(errs) == len(c.config.Backends) {
			return nil, errors.Join(errs...)
		}
		return []models.Document{}, nil
	})
}

func (c *DuckDuckGoConnector) searchBackend(ctx context.Context, backend, query, region string, maxResults int) ([]models.Document, error) {
	switch backend {
	case BackendAPI:
		return c.searchAPI(ctx, query, region, maxResults)
	case BackendHTML:
		return c.searchForm(ctx, c.config.HTMLURL, "a.result__a", query, region, maxResults)
	case BackendLite:
		return c.searchForm(ctx, c.config.LiteURL, "a.result-link", query, region, maxResults)
	default:
		return nil, fmt.Errorf("unknown duckduckgo backend %q", backend)
	}
}

// searchAPI obtains a vqd token from the front page and reads the d.js result list
func (c *DuckDuckGoConnector) searchAPI(ctx context.Context, query, region string, maxResults int) ([]models.Document, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.config.BaseURL, url.Values{"q": {query}}, nil)
	if err != nil {
		return nil, err
	}
	page, err := c.do(req)
	if err != nil {
		return nil, err
	}
	match := vqdPattern.FindSubmatch(page)
	if match == nil {
		return nil, errNoVQD
	}

	params := url.Values{
		"q":   {query},
		"vqd": {string(match[1])},
		"kl":  {region},
		"l":   {region},
		"p":   {safeSearchModerate},
		"s":   {"0"},
		"df":  {""},
		"ex":  {safeSearchModerate},
	}
	req, err = c.newRequest(ctx, http.MethodGet, c.config.APIURL, params, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Referer", c.config.BaseURL)
	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	return parseDJS(body, maxResults)
}

// djsResult is one entry of the d.js result list; the final entry is a paging marker without "u"
type djsResult struct {
	Title string `json:"t"`
	URL   string `json:"u"`
	Body  string `json:"a"`
}

// parseDJS extracts the JSON array passed to DDG.pageLayout.load('d', [...]) in a d.js payload
func parseDJS(body []byte, maxResults int) ([]models.Document, error) {
	marker := []byte("DDG.pageLayout.load('d',")
	idx := bytes.Index(body, marker)
	if idx < 0 {
		return nil, errNoResultList
	}
	rest := body[idx+len(marker):]
	start := bytes.IndexByte(rest, '[')
	if start < 0 {
		return nil, errNoResultList
	}

	var entries []djsResult
	if err := json.NewDecoder(bytes.NewReader(rest[start:])).Decode(&entries); err != nil {
		return nil, fmt.Errorf("duckduckgo: malformed d.js result list: %w", err)
	}

	docs := make([]models.Document, 0, len(entries))
	for _, e := range entries {
		if e.URL == "" {
			continue
		}
		docs = append(docs, models.Document{Title: stripTags(e.Title), URL: e.URL})
		if maxResults > 0 && len(docs) >= maxResults {
			break
		}
	}
	return docs, nil
}

// searchForm posts the query to one of the HTML front ends and walks the result anchors
func (c *DuckDuckGoConnector) searchForm(ctx context.Context, endpoint, selector, query, region string, maxResults int) ([]models.Document, error) {
	form := url.Values{
		"q":  {query},
		"kl": {region},
		"kp": {safeSearchModerate},
		"b":  {""},
	}
	req, err := c.newRequest(ctx, http.MethodPost, endpoint, nil, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", endpoint)

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("duckduckgo: failed to parse result page: %w", err)
	}

	docs := []models.Document{}
	seen := make(map[string]bool)
	doc.Find(selector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		href, ok := s.Attr("href")
		if !ok {
			return true
		}
		target := common.UnwrapRedirectURL(href, "uddg")
		resolved, ok := common.ResolveResultURL(target, endpoint)
		if !ok || seen[resolved] || isDuckDuckGoAd(resolved) {
			return true
		}
		seen[resolved] = true
		docs = append(docs, models.Document{Title: strings.TrimSpace(s.Text()), URL: resolved})
		return maxResults <= 0 || len(docs) < maxResults
	})

	return docs, nil
}

// isDuckDuckGoAd filters sponsored click-through links
func isDuckDuckGoAd(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	return strings.HasSuffix(host, "duckduckgo.com") && (strings.HasPrefix(u.Path, "/y.js") || u.Query().Get("ad_provider") != "")
}

// stripTags removes inline markup such as <b> highlighting from result titles
func stripTags(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
