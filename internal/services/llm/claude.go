package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scout/internal/common"
)

const defaultClaudeModel = "claude-3-5-haiku-latest"

// ClaudeProvider completes prompts with the Anthropic Messages API
type ClaudeProvider struct {
	client   anthropic.Client
	settings settings
	logger   arbor.ILogger
}

// NewClaudeProvider creates a Claude provider.
// The SDK's own retries are disabled so any failure reaches the caller at once.
func NewClaudeProvider(config common.ClaudeConfig, s settings, logger arbor.ILogger) *ClaudeProvider {
	if s.model == "" {
		s.model = defaultClaudeModel
	}

	return &ClaudeProvider{
		client: anthropic.NewClient(
			option.WithAPIKey(config.APIKey),
			option.WithMaxRetries(0),
		),
		settings: s,
		logger:   logger,
	}
}

func (p *ClaudeProvider) Name() string { return string(common.LLMProviderClaude) }

// Complete sends one user message with the system prompt
func (p *ClaudeProvider) Complete(ctx context.Context, system string, user string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.settings.model),
		MaxTokens: int64(p.settings.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
		Temperature: anthropic.Float(float64(p.settings.temperature)),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		p.logger.Debug().Str("model", p.settings.model).Err(err).Msg("Claude API call failed")
		return "", fmt.Errorf("Claude API call failed: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(text.String()), nil
}
