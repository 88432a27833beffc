package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scout/internal/common"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiProvider completes prompts with the Google Gemini API
type GeminiProvider struct {
	client   *genai.Client
	settings settings
	logger   arbor.ILogger
}

// NewGeminiProvider creates a Gemini provider
func NewGeminiProvider(config common.GeminiConfig, s settings, logger arbor.ILogger) (*GeminiProvider, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if s.model == "" {
		s.model = defaultGeminiModel
	}

	return &GeminiProvider{
		client:   client,
		settings: s,
		logger:   logger,
	}, nil
}

func (p *GeminiProvider) Name() string { return string(common.LLMProviderGemini) }

// Complete sends the user prompt with the system instruction
func (p *GeminiProvider) Complete(ctx context.Context, system string, user string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(p.settings.temperature),
		MaxOutputTokens: int32(p.settings.maxTokens),
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.settings.model, genai.Text(user), config)
	if err != nil {
		p.logger.Debug().Str("model", p.settings.model).Err(err).Msg("Gemini API call failed")
		return "", fmt.Errorf("Gemini API call failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrEmptyReply
	}
	return strings.TrimSpace(resp.Text()), nil
}
