// Package llm provides the optional answer generator backed by a chat completion API.
package llm

import (
	"errors"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scout/internal/common"
	"github.com/ternarybob/scout/internal/interfaces"
)

// ErrNoProvider is returned when generation is disabled or no provider has a credential
var ErrNoProvider = errors.New("no LLM provider configured")

// ErrEmptyReply is returned when a provider answers with blank text
var ErrEmptyReply = errors.New("empty reply from LLM provider")

// settings are the completion parameters shared by every provider
type settings struct {
	model       string
	temperature float32
	maxTokens   int
}

// NewProvider builds the provider selected by config.LLM.Provider.
// "auto" picks the first provider with a credential in the order openai, claude, gemini.
//
// Returns:
//   - interfaces.LLMProvider: ready provider
//   - error: ErrNoProvider when none is usable, or a client construction failure
func NewProvider(config *common.Config, logger arbor.ILogger) (interfaces.LLMProvider, error) {
	provider := config.LLM.Provider
	if provider == "" {
		provider = common.LLMProviderAuto
	}

	if provider == common.LLMProviderAuto {
		switch {
		case config.OpenAI.APIKey != "":
			provider = common.LLMProviderOpenAI
		case config.Claude.APIKey != "":
			provider = common.LLMProviderClaude
		case config.Gemini.APIKey != "":
			provider = common.LLMProviderGemini
		default:
			return nil, ErrNoProvider
		}
	}

	base := settings{
		temperature: config.LLM.Temperature,
		maxTokens:   config.LLM.MaxTokens,
	}

	switch provider {
	case common.LLMProviderOpenAI:
		if config.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("%w: openai selected without OPENAI_API_KEY", ErrNoProvider)
		}
		base.model = config.OpenAI.Model
		return NewOpenAIProvider(config.OpenAI, base, logger), nil
	case common.LLMProviderClaude:
		if config.Claude.APIKey == "" {
			return nil, fmt.Errorf("%w: claude selected without ANTHROPIC_API_KEY", ErrNoProvider)
		}
		base.model = config.Claude.Model
		return NewClaudeProvider(config.Claude, base, logger), nil
	case common.LLMProviderGemini:
		if config.Gemini.APIKey == "" {
			return nil, fmt.Errorf("%w: gemini selected without GEMINI_API_KEY", ErrNoProvider)
		}
		base.model = config.Gemini.Model
		return NewGeminiProvider(config.Gemini, base, logger)
	default:
		return nil, ErrNoProvider
	}
}
