package interfaces

import (
	"context"

	"github.com/ternarybob/scout/internal/models"
)

// ChatMessage is one entry of the client-side conversation history
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /api/chat
type ChatRequest struct {
	// Message is the user's question (required)
	Message string `json:"message" validate:"required"`

	// History is accepted for client compatibility; answers are produced per question
	History []ChatMessage `json:"history,omitempty"`

	// Format selects extra renderings of the reply; "html" adds reply_html
	Format string `json:"format,omitempty" validate:"omitempty,oneof=text html"`
}

// ProgressFunc receives phase events while an answer is being produced
type ProgressFunc func(phase models.Phase)

// AnswerService answers a natural-language question from live web sources
type AnswerService interface {
	// Answer runs search, fetch, dedupe and generation for question.
	// A blank question returns an error before any downstream call is made.
	// progress may be nil.
	Answer(ctx context.Context, question string, progress ProgressFunc) (*models.Answer, error)
}
