package connectors

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scout/internal/common"
	"github.com/ternarybob/scout/internal/httpclient"
	"github.com/ternarybob/scout/internal/interfaces"
)

// Secondary is a connector queried alongside the primary search, with its own result limit
type Secondary struct {
	Connector  interfaces.SourceConnector
	MaxResults int
}

// Set is the primary connector plus the enabled secondaries in declaration order
type Set struct {
	Primary     interfaces.SourceConnector
	Secondaries []Secondary
}

// NewSet builds every configured connector around one shared HTTP client
func NewSet(config *common.Config, cache interfaces.CacheService, logger arbor.ILogger) (*Set, error) {
	sources := config.Sources
	client, err := httpclient.NewSessionClient(sources.Timeout.Duration())
	if err != nil {
		return nil, err
	}
	ttls := TTLs{Search: config.Cache.SearchTTL.Duration(), Failure: config.Cache.FailureTTL.Duration()}
	if ttls.Failure > ttls.Search {
		ttls.Failure = ttls.Search
	}

	set := &Set{
		Primary: NewDuckDuckGoConnector(sources.DuckDuckGo, client, sources.UserAgent, cache, ttls, logger),
	}

	if sources.Wikipedia.Enabled {
		set.Secondaries = append(set.Secondaries, Secondary{
			Connector:  NewWikipediaConnector(sources.Wikipedia, client, sources.UserAgent, cache, ttls, logger),
			MaxResults: sources.Wikipedia.MaxResults,
		})
	}
	if sources.StackOverflow.Enabled {
		set.Secondaries = append(set.Secondaries, Secondary{
			Connector:  NewStackOverflowConnector(sources.StackOverflow, client, sources.UserAgent, cache, ttls, logger),
			MaxResults: sources.StackOverflow.MaxResults,
		})
	}
	if sources.MDN.Enabled {
		set.Secondaries = append(set.Secondaries, Secondary{
			Connector:  NewMDNConnector(sources.MDN, client, sources.UserAgent, cache, ttls, logger),
			MaxResults: sources.MDN.MaxResults,
		})
	}
	if sources.GitHub.Enabled {
		gh, err := NewGitHubConnector(sources.GitHub, client, sources.UserAgent, cache, ttls, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create github connector: %w", err)
		}
		set.Secondaries = append(set.Secondaries, Secondary{Connector: gh, MaxResults: sources.GitHub.MaxResults})
	}

	names := make([]string, 0, len(set.Secondaries))
	for _, s := range set.Secondaries {
		names = append(names, s.Connector.Name())
	}
	logger.Debug().
		Str("primary", set.Primary.Name()).
		Strs("secondaries", names).
		Strs("ddg_backends", sources.DuckDuckGo.Backends).
		Msg("Search connectors initialized")

	return set, nil
}
