// Package answer runs the full question answering pipeline: search, fetch, deduplicate
// and generate, falling back to the extractive summary whenever the LLM cannot answer.
package answer

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scout/internal/interfaces"
	"github.com/ternarybob/scout/internal/models"
)

// ErrEmptyQuestion is returned for a blank question
var ErrEmptyQuestion = errors.New("empty message")

// GeneratorExtractive names answers produced by the summarizer
const GeneratorExtractive = "extractive"

// Service implements interfaces.AnswerService
type Service struct {
	search       interfaces.SearchService
	summarizer   interfaces.Summarizer
	generator    interfaces.AnswerGenerator
	options      interfaces.SearchOptions
	maxSentences int
	logger       arbor.ILogger
}

// NewService creates the answer service. generator may be nil, in which case every answer
// is extractive.
func NewService(
	search interfaces.SearchService,
	summarizer interfaces.Summarizer,
	generator interfaces.AnswerGenerator,
	options interfaces.SearchOptions,
	maxSentences int,
	logger arbor.ILogger,
) *Service {
	return &Service{
		search:       search,
		summarizer:   summarizer,
		generator:    generator,
		options:      options,
		maxSentences: maxSentences,
		logger:       logger,
	}
}

// Answer searches the web for question and writes a cited reply.
// Remote failures never surface here: with no documents the summarizer returns its apology.
func (s *Service) Answer(ctx context.Context, question string, progress interfaces.ProgressFunc) (*models.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	if progress == nil {
		progress = func(models.Phase) {}
	}

	requestID := uuid.New().String()
	logger := s.logger.WithCorrelationId(requestID)
	start := time.Now()

	progress(models.SearchingPhase())
	docs := s.search.SearchAndFetch(ctx, question, s.options)
	progress(models.ReadingPhase(len(docs)))

	logger.Debug().
		Str("question", question).
		Int("documents", len(docs)).
		Dur("elapsed", time.Since(start)).
		Msg("Documents ready")

	answer := &models.Answer{RequestID: requestID}

	if s.generator != nil && ctx.Err() == nil {
		reply, sources, err := s.generator.Generate(ctx, question, docs)
		if err == nil {
			answer.Reply = reply
			answer.Sources = sources
			answer.Generator = s.generator.Name()
		} else {
			logger.Warn().
				Str("provider", s.generator.Name()).
				Err(err).
				Msg("LLM generation failed, using extractive summary")
		}
	}

	if answer.Generator == "" {
		answer.Reply, answer.Sources = s.summarizer.Summarize(question, docs, s.maxSentences)
		answer.Generator = GeneratorExtractive
	}
	if answer.Sources == nil {
		answer.Sources = []models.Source{}
	}

	logger.Info().
		Str("generator", answer.Generator).
		Int("documents", len(docs)).
		Int("sources", len(answer.Sources)).
		Dur("duration", time.Since(start)).
		Msg("Answered question")

	return answer, nil
}
