package interfaces

import (
	"context"

	"github.com/ternarybob/scout/internal/models"
)

// LLMProvider is a chat completion backend (OpenAI, Claude, Gemini).
type LLMProvider interface {
	// Name returns the provider identifier used in logs
	Name() string

	// Complete sends a system prompt and a single user message and returns the reply text.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control
	//   - system: System instruction
	//   - user: User message
	//
	// Returns:
	//   - string: Generated assistant response
	//   - error: Network, authentication or quota failure
	Complete(ctx context.Context, system string, user string) (string, error)
}

// AnswerGenerator writes a free-form cited answer from documents using an LLM.
// Callers fall back to the extractive Summarizer whenever Generate returns an error.
type AnswerGenerator interface {
	// Name returns the underlying provider name
	Name() string

	// Generate returns the reply and the sources offered to the model as context
	Generate(ctx context.Context, question string, docs []models.Document) (string, []models.Source, error)
}
