package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Environment string        `toml:"environment"` // "development" or "production"
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Cache       CacheConfig   `toml:"cache"`
	Logging     LoggingConfig `toml:"logging"`
	Sources     SourcesConfig `toml:"sources"`
	Fetcher     FetcherConfig `toml:"fetcher"`
	Search      SearchConfig  `toml:"search"`
	Summary     SummaryConfig `toml:"summary"`
	LLM         LLMConfig     `toml:"llm"`
	OpenAI      OpenAIConfig  `toml:"openai"`
	Claude      ClaudeConfig  `toml:"claude"`
	Gemini      GeminiConfig  `toml:"gemini"`
}

type ServerConfig struct {
	Port            int      `toml:"port" validate:"min=1,max=65535"`
	Host            string   `toml:"host"`
	WriteTimeout    Duration `toml:"write_timeout" validate:"gt=0"`    // Must cover the search budget plus LLM generation
	ShutdownTimeout Duration `toml:"shutdown_timeout" validate:"gt=0"` // Graceful shutdown limit (default: 10s)
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Cache directory path (CHATBOT_CACHE_DIR)
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete cache directory on startup
	InMemory       bool   `toml:"in_memory"`        // Keep the cache in memory only (tests, ephemeral runs)
}

// CacheConfig controls entry lifetimes and value-log maintenance
type CacheConfig struct {
	SearchTTL      Duration `toml:"search_ttl" validate:"gt=0"`  // Connector results (default: 12h)
	FetchTTL       Duration `toml:"fetch_ttl" validate:"gt=0"`   // Extracted page text (default: 24h)
	FailureTTL     Duration `toml:"failure_ttl" validate:"gt=0"` // Empty outcome after a failed remote call (default: 30m)
	GCSchedule     string   `toml:"gc_schedule"`                 // Cron schedule for value-log GC, empty disables
	GCDiscardRatio float64  `toml:"gc_discard_ratio" validate:"gt=0,lt=1"`
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Format     string   `toml:"format"`      // "json" or "text"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
}

// SourcesConfig contains settings shared by every search connector plus per-connector blocks
type SourcesConfig struct {
	UserAgent     string             `toml:"user_agent" validate:"required"`
	Timeout       Duration           `toml:"timeout" validate:"gt=0"` // Per-call HTTP timeout (default: 10s)
	DuckDuckGo    DuckDuckGoConfig   `toml:"duckduckgo"`
	Wikipedia     SourceConfig       `toml:"wikipedia"`
	StackOverflow SourceConfig       `toml:"stackoverflow"`
	MDN           SourceConfig       `toml:"mdn"`
	GitHub        GitHubSourceConfig `toml:"github"`
}

// SourceConfig is the common block for a secondary connector
type SourceConfig struct {
	Enabled    bool     `toml:"enabled"`
	MaxResults int      `toml:"max_results" validate:"min=0"` // Results requested per query
	BaseURL    string   `toml:"base_url"`                     // API root, overridable for testing
	RateLimit  Duration `toml:"rate_limit"`                   // Minimum interval between calls, 0 disables
}

// DuckDuckGoConfig configures the primary web search connector
type DuckDuckGoConfig struct {
	Backends  []string `toml:"backends"` // Tried in order: "api", "html", "lite"
	BaseURL   string   `toml:"base_url"` // Front page used for the vqd token
	APIURL    string   `toml:"api_url"`  // d.js results endpoint
	HTMLURL   string   `toml:"html_url"`
	LiteURL   string   `toml:"lite_url"`
	RateLimit Duration `toml:"rate_limit"`
}

// GitHubSourceConfig adds an optional token to the repository search connector
type GitHubSourceConfig struct {
	SourceConfig
	Token string `toml:"token"` // Optional, raises the API rate limit (GITHUB_TOKEN)
}

// FetcherConfig controls page retrieval and text extraction
type FetcherConfig struct {
	UserAgent      string   `toml:"user_agent" validate:"required"`
	RequestTimeout Duration `toml:"request_timeout" validate:"gt=0"` // Per-request timeout (default: 15s)
	MaxBodySize    int64    `toml:"max_body_size" validate:"gt=0"`   // Maximum response body size in bytes
	MaxRedirects   int      `toml:"max_redirects" validate:"min=0"`
	OutputFormat   string   `toml:"output_format" validate:"oneof=text markdown"` // "text" or "markdown"
}

// SearchConfig contains the search_and_fetch defaults
type SearchConfig struct {
	MaxResults      int      `toml:"max_results" validate:"min=1"`
	MaxConcurrent   int      `toml:"max_concurrent" validate:"min=1"`
	Budget          Duration `toml:"budget" validate:"gt=0"`        // Wall-clock budget for search plus fetch
	MinRemaining    Duration `toml:"min_remaining" validate:"gt=0"` // Floor for the fetch budget after searching
	DedupeThreshold float64  `toml:"dedupe_threshold" validate:"gt=0,lte=1"`
}

// SummaryConfig contains extractive summarizer settings
type SummaryConfig struct {
	MaxSentences int     `toml:"max_sentences" validate:"min=1"`
	Lambda       float64 `toml:"lambda" validate:"gt=0,lte=1"` // MMR relevance weight
	Stem         bool    `toml:"stem"`                         // Apply snowball stemming to tokens
	Language     string  `toml:"language"`                     // Stemmer language (default: "english")
}

// LLMProvider represents the answer generator provider type
type LLMProvider string

const (
	// LLMProviderAuto picks the first provider with a credential
	LLMProviderAuto LLMProvider = "auto"
	// LLMProviderOpenAI uses the OpenAI chat completions API
	LLMProviderOpenAI LLMProvider = "openai"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderNone disables the generator
	LLMProviderNone LLMProvider = "none"
)

// LLMConfig contains settings shared by all answer generator providers
type LLMConfig struct {
	Provider    LLMProvider `toml:"provider" validate:"oneof=auto openai claude gemini none"`
	Timeout     Duration    `toml:"timeout" validate:"gt=0"`
	Temperature float32     `toml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int         `toml:"max_tokens" validate:"min=1"`
}

type OpenAIConfig struct {
	APIKey  string `toml:"api_key"`  // OPENAI_API_KEY
	Model   string `toml:"model"`    // OPENAI_MODEL (default: "gpt-4o-mini")
	BaseURL string `toml:"base_url"` // Optional compatible endpoint
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey string `toml:"api_key"` // ANTHROPIC_API_KEY
	Model  string `toml:"model"`
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey string `toml:"api_key"` // GEMINI_API_KEY
	Model  string `toml:"model"`
}

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0 Safari/537.36"

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port:            8000,
			Host:            "localhost",
			WriteTimeout:    Duration(60 * time.Second),
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: ".cache",
			},
		},
		Cache: CacheConfig{
			SearchTTL:      Duration(12 * time.Hour),
			FetchTTL:       Duration(24 * time.Hour),
			FailureTTL:     Duration(30 * time.Minute),
			GCSchedule:     "@every 30m",
			GCDiscardRatio: 0.5,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05",
		},
		Sources: SourcesConfig{
			UserAgent: defaultUserAgent,
			Timeout:   Duration(10 * time.Second),
			DuckDuckGo: DuckDuckGoConfig{
				Backends: []string{"api", "html", "lite"},
				BaseURL:  "https://duckduckgo.com/",
				APIURL:   "https://links.duckduckgo.com/d.js",
				HTMLURL:  "https://html.duckduckgo.com/html/",
				LiteURL:  "https://lite.duckduckgo.com/lite/",
			},
			Wikipedia: SourceConfig{
				Enabled:    true,
				MaxResults: 3,
				BaseURL:    "https://en.wikipedia.org",
			},
			StackOverflow: SourceConfig{
				Enabled:    true,
				MaxResults: 2,
				BaseURL:    "https://api.stackexchange.com/2.3",
			},
			MDN: SourceConfig{
				Enabled:    true,
				MaxResults: 2,
				BaseURL:    "https://developer.mozilla.org",
			},
			GitHub: GitHubSourceConfig{
				SourceConfig: SourceConfig{
					Enabled:    true,
					MaxResults: 1,
					RateLimit:  Duration(2 * time.Second), // 30 searches/min unauthenticated
				},
			},
		},
		Fetcher: FetcherConfig{
			UserAgent:      defaultUserAgent,
			RequestTimeout: Duration(15 * time.Second),
			MaxBodySize:    5 * 1024 * 1024, // 5MB
			MaxRedirects:   10,
			OutputFormat:   "text",
		},
		Search: SearchConfig{
			MaxResults:      6,
			MaxConcurrent:   6,
			Budget:          Duration(8 * time.Second),
			MinRemaining:    Duration(100 * time.Millisecond),
			DedupeThreshold: 0.9,
		},
		Summary: SummaryConfig{
			MaxSentences: 8,
			Lambda:       0.75,
			Language:     "english",
		},
		LLM: LLMConfig{
			Provider:    LLMProviderAuto,
			Timeout:     Duration(30 * time.Second),
			Temperature: 0.2,
			MaxTokens:   500,
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Claude: ClaudeConfig{
			Model: "claude-3-5-haiku-latest",
		},
		Gemini: GeminiConfig{
			Model: "gemini-2.0-flash",
		},
	}
}

// LoadFromFiles loads configuration with priority: default -> file1 -> file2 -> ... -> env
// Later files override earlier files. CLI flags are applied afterwards by the caller.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if isYAMLPath(path) {
			if data, err = yamlToTOML(data); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
			}
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func isYAMLPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// yamlToTOML re-encodes a YAML document as TOML so both formats share the toml struct tags
func yamlToTOML(data []byte) ([]byte, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	return toml.Marshal(doc)
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("SCOUT_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("SCOUT_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("SCOUT_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Cache directory: SCOUT_CACHE_DIR takes priority over the legacy CHATBOT_CACHE_DIR
	if dir := os.Getenv("SCOUT_CACHE_DIR"); dir != "" {
		config.Storage.Badger.Path = dir
	} else if dir := os.Getenv("CHATBOT_CACHE_DIR"); dir != "" {
		config.Storage.Badger.Path = dir
	}
	if ttl := os.Getenv("SCOUT_CACHE_SEARCH_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			config.Cache.SearchTTL = Duration(d)
		}
	}
	if ttl := os.Getenv("SCOUT_CACHE_FETCH_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			config.Cache.FetchTTL = Duration(d)
		}
	}

	// Logging configuration
	if level := os.Getenv("SCOUT_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("SCOUT_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Search configuration
	if maxResults := os.Getenv("SCOUT_SEARCH_MAX_RESULTS"); maxResults != "" {
		if n, err := strconv.Atoi(maxResults); err == nil {
			config.Search.MaxResults = n
		}
	}
	if maxConcurrent := os.Getenv("SCOUT_SEARCH_MAX_CONCURRENT"); maxConcurrent != "" {
		if n, err := strconv.Atoi(maxConcurrent); err == nil {
			config.Search.MaxConcurrent = n
		}
	}
	if budget := os.Getenv("SCOUT_SEARCH_BUDGET"); budget != "" {
		if d, err := time.ParseDuration(budget); err == nil {
			config.Search.Budget = Duration(d)
		}
	}

	// Fetcher configuration
	if timeout := os.Getenv("SCOUT_FETCH_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			config.Fetcher.RequestTimeout = Duration(d)
		}
	}
	if format := os.Getenv("SCOUT_FETCH_OUTPUT_FORMAT"); format != "" {
		config.Fetcher.OutputFormat = format
	}

	// Summary configuration
	if stem := os.Getenv("SCOUT_SUMMARY_STEM"); stem != "" {
		if b, err := strconv.ParseBool(stem); err == nil {
			config.Summary.Stem = b
		}
	}

	// Source credentials
	if token := os.Getenv("SCOUT_GITHUB_TOKEN"); token != "" {
		config.Sources.GitHub.Token = token
	} else if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		config.Sources.GitHub.Token = token
	}

	// LLM configuration
	if provider := os.Getenv("SCOUT_LLM_PROVIDER"); provider != "" {
		config.LLM.Provider = LLMProvider(strings.ToLower(provider))
	}
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.OpenAI.APIKey = apiKey
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		config.OpenAI.Model = model
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		config.OpenAI.BaseURL = baseURL
	}
	if apiKey := os.Getenv("SCOUT_CLAUDE_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	} else if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if model := os.Getenv("SCOUT_CLAUDE_MODEL"); model != "" {
		config.Claude.Model = model
	}
	if apiKey := os.Getenv("SCOUT_GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	} else if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if model := os.Getenv("SCOUT_GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
// Flags have the highest priority
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks field constraints and the cache GC schedule
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := ValidateSchedule(c.Cache.GCSchedule); err != nil {
		return fmt.Errorf("invalid cache.gc_schedule: %w", err)
	}
	return nil
}

// ValidateSchedule validates a cron expression, accepting descriptors like "@every 30m".
// An empty schedule is valid and means disabled.
func ValidateSchedule(schedule string) error {
	if schedule == "" {
		return nil
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}
	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Environment)
	return env == "production" || env == "prod"
}
