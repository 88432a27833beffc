package handlers

import (
	"context"
	"errors"
	"sync"

	"github.com/ternarybob/scout/internal/interfaces"
	"github.com/ternarybob/scout/internal/models"
	"github.com/ternarybob/scout/internal/services/answer"
)

// stubAnswers emits the usual phases and answers with a fixed reply
type stubAnswers struct {
	mu        sync.Mutex
	questions []string
	err       error
}

func (s *stubAnswers) Answer(ctx context.Context, question string, progress interfaces.ProgressFunc) (*models.Answer, error) {
	s.mu.Lock()
	s.questions = append(s.questions, question)
	s.mu.Unlock()

	if question == "" {
		return nil, answer.ErrEmptyQuestion
	}
	if s.err != nil {
		return nil, s.err
	}
	if progress != nil {
		progress(models.SearchingPhase())
		progress(models.ReadingPhase(2))
	}
	return &models.Answer{
		Reply: "Here is a quick summary based on current web sources:\n- HTTP is a protocol. [1]",
		Sources: []models.Source{
			{Title: "HTTP", URL: "https://developer.mozilla.org/en-US/docs/Web/HTTP"},
		},
		Generator: "extractive",
		RequestID: "req-1",
	}, nil
}

func (s *stubAnswers) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.questions)
}

var errBackend = errors.New("backend exploded")
