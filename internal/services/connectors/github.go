package connectors

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v57/github"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scout/internal/common"
	"github.com/ternarybob/scout/internal/interfaces"
	"github.com/ternarybob/scout/internal/models"
	"golang.org/x/oauth2"
)

const gitHubDefaultTitle = "GitHub Repo"

// GitHubConnector searches repositories, most starred first
type GitHubConnector struct {
	base
	gh *github.Client
}

// NewGitHubConnector creates the code-repository connector. With a token the requests are
// authenticated, which raises GitHub's search rate limit.
func NewGitHubConnector(config common.GitHubSourceConfig, client *http.Client, userAgent string, cache interfaces.CacheService, ttls TTLs, logger arbor.ILogger) (*GitHubConnector, error) {
	httpClient := client
	if config.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: config.Token})
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, client)
		httpClient = oauth2.NewClient(ctx, ts)
		httpClient.Timeout = client.Timeout
	}

	gh := github.NewClient(httpClient)
	gh.UserAgent = userAgent

	if config.BaseURL != "" {
		baseURL, err := url.Parse(strings.TrimRight(config.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid github base url %q: %w", config.BaseURL, err)
		}
		gh.BaseURL = baseURL
	}

	return &GitHubConnector{
		base: newBase("gh", client, userAgent, config.RateLimit.Duration(), cache, ttls, logger),
		gh:   gh,
	}, nil
}

// Search returns repositories matching the query
func (c *GitHubConnector) Search(ctx context.Context, query interfaces.SearchQuery) models.SourceResult {
	key := cacheKey(c.name, query.Text, query.MaxResults)

	return c.run(ctx, key, func(ctx context.Context) ([]models.Document, error) {
		opts := &github.SearchOptions{
			Sort:        "stars",
			Order:       "desc",
			ListOptions: github.ListOptions{PerPage: query.MaxResults},
		}
		result, _, err := c.gh.Search.Repositories(ctx, query.Text, opts)
		if err != nil {
			return nil, fmt.Errorf("github repository search failed: %w", err)
		}

		docs := []models.Document{}
		for _, repo := range result.Repositories {
			if repo.GetHTMLURL() == "" {
				continue
			}
			title := repo.GetFullName()
			if title == "" {
				title = repo.GetName()
			}
			if title == "" {
				title = gitHubDefaultTitle
			}
			docs = append(docs, models.Document{Title: title, URL: repo.GetHTMLURL()})
		}
		return limitResults(docs, query.MaxResults), nil
	})
}
