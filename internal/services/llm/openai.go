package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scout/internal/common"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIProvider completes prompts with the OpenAI chat completions API or any
// compatible endpoint set through base_url.
type OpenAIProvider struct {
	client   *openai.Client
	settings settings
	logger   arbor.ILogger
}

// NewOpenAIProvider creates an OpenAI provider
func NewOpenAIProvider(config common.OpenAIConfig, s settings, logger arbor.ILogger) *OpenAIProvider {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	if s.model == "" {
		s.model = defaultOpenAIModel
	}

	return &OpenAIProvider{
		client:   openai.NewClientWithConfig(clientConfig),
		settings: s,
		logger:   logger,
	}
}

func (p *OpenAIProvider) Name() string { return string(common.LLMProviderOpenAI) }

// Complete sends the system and user messages as one chat completion
func (p *OpenAIProvider) Complete(ctx context.Context, system string, user string) (string, error) {
	request := openai.ChatCompletionRequest{
		Model: p.settings.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: p.settings.temperature,
		MaxTokens:   p.settings.maxTokens,
	}

	resp, err := p.client.CreateChatCompletion(ctx, request)
	if err != nil {
		p.logger.Debug().Str("model", p.settings.model).Err(err).Msg("OpenAI API call failed")
		return "", fmt.Errorf("OpenAI API call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyReply
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
