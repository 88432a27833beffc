package app

import (
	"errors"
	"fmt"
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scout/internal/common"
	"github.com/ternarybob/scout/internal/handlers"
	"github.com/ternarybob/scout/internal/interfaces"
	"github.com/ternarybob/scout/internal/services/answer"
	"github.com/ternarybob/scout/internal/services/cache"
	"github.com/ternarybob/scout/internal/services/connectors"
	"github.com/ternarybob/scout/internal/services/fetcher"
	"github.com/ternarybob/scout/internal/services/llm"
	"github.com/ternarybob/scout/internal/services/mcp"
	"github.com/ternarybob/scout/internal/services/scheduler"
	"github.com/ternarybob/scout/internal/services/search"
	"github.com/ternarybob/scout/internal/services/summary"
	"github.com/ternarybob/scout/internal/storage/badger"
)

// MCPEndpoint is the HTTP path of the streamable MCP transport
const MCPEndpoint = "/mcp"

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Storage
	db           *badger.BadgerDB
	CacheStorage interfaces.CacheStorage
	CacheService interfaces.CacheService

	// Pipeline services
	Connectors       *connectors.Set
	FetcherService   interfaces.ContentFetcher
	SearchService    interfaces.SearchService
	Summarizer       interfaces.Summarizer
	Generator        interfaces.AnswerGenerator // nil when no LLM provider is configured
	AnswerService    interfaces.AnswerService
	SchedulerService interfaces.SchedulerService
	MCPServer        *mcpserver.MCPServer

	// HTTP handlers
	APIHandler    *handlers.APIHandler
	ChatHandler   *handlers.ChatHandler
	ChatWSHandler *handlers.ChatWebSocketHandler
	MCPHandler    http.Handler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	if logger == nil {
		logger = common.GetLogger()
	}

	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initServices(); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.initHandlers()

	generator := answer.GeneratorExtractive
	if app.Generator != nil {
		generator = app.Generator.Name()
	}
	logger.Info().
		Str("generator", generator).
		Int("secondary_sources", len(app.Connectors.Secondaries)).
		Str("cache", cfg.Storage.Badger.Path).
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase opens the Badger cache store
func (a *App) initDatabase() error {
	db, err := badger.NewBadgerDB(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return err
	}

	a.db = db
	a.CacheStorage = badger.NewCacheStorage(db, a.Logger)
	a.CacheService = cache.NewService(a.CacheStorage, a.Logger)

	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Bool("in_memory", a.Config.Storage.Badger.InMemory).
		Msg("Storage layer initialized")
	return nil
}

// initServices builds the answer pipeline bottom-up
func (a *App) initServices() error {
	set, err := connectors.NewSet(a.Config, a.CacheService, a.Logger)
	if err != nil {
		return err
	}
	a.Connectors = set

	a.FetcherService = fetcher.NewService(a.Config.Fetcher, a.Config.Cache.FetchTTL.Duration(), a.CacheService, a.Logger)

	aggregator := search.NewAggregator(set, connectors.NewLanguageDetector(), a.Logger)
	a.SearchService = search.NewService(aggregator, a.FetcherService, a.Config.Search, a.Logger)

	a.Summarizer = summary.NewService(a.Config.Summary, a.Logger)

	provider, err := llm.NewProvider(a.Config, a.Logger)
	switch {
	case errors.Is(err, llm.ErrNoProvider):
		a.Logger.Info().Str("provider", string(a.Config.LLM.Provider)).Msg("LLM generation disabled, answers are extractive")
	case err != nil:
		return fmt.Errorf("failed to create LLM provider: %w", err)
	default:
		a.Generator = llm.NewGenerator(provider, a.Config.LLM.Timeout.Duration(), a.Logger)
		a.Logger.Info().Str("provider", provider.Name()).Msg("LLM generation enabled")
	}

	a.AnswerService = answer.NewService(
		a.SearchService,
		a.Summarizer,
		a.Generator,
		a.SearchOptions(),
		a.Config.Summary.MaxSentences,
		a.Logger,
	)

	schedulerService := scheduler.NewService(a.Logger)
	if err := scheduler.RegisterCacheGC(schedulerService, a.CacheStorage, a.Config.Cache.GCSchedule, a.Config.Cache.GCDiscardRatio); err != nil {
		return fmt.Errorf("failed to register cache gc: %w", err)
	}
	a.SchedulerService = schedulerService

	a.MCPServer = mcp.NewServer(a.AnswerService, a.SearchService, a.SearchOptions(), a.Logger)
	return nil
}

// initHandlers creates the HTTP handlers
func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler(a.Logger)
	a.ChatHandler = handlers.NewChatHandler(a.AnswerService, a.Logger)
	a.ChatWSHandler = handlers.NewChatWebSocketHandler(a.AnswerService, a.Logger)
	a.MCPHandler = mcp.NewHTTPHandler(a.MCPServer, MCPEndpoint)
}

// SearchOptions returns the configured search_and_fetch limits
func (a *App) SearchOptions() interfaces.SearchOptions {
	return interfaces.SearchOptions{
		MaxResults:    a.Config.Search.MaxResults,
		MaxConcurrent: a.Config.Search.MaxConcurrent,
		Budget:        a.Config.Search.Budget.Duration(),
	}
}

// StartBackground starts scheduled maintenance jobs
func (a *App) StartBackground() error {
	return a.SchedulerService.Start()
}

// Close stops background jobs and closes storage
func (a *App) Close() error {
	if a.SchedulerService != nil {
		if err := a.SchedulerService.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to stop scheduler service")
		}
	}

	if a.CacheStorage != nil {
		if err := a.CacheStorage.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
