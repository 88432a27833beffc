package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scout/internal/interfaces"
	"github.com/ternarybob/scout/internal/models"
)

// Context limits for the prompt
const (
	MaxContextDocuments = 5
	MaxSnippetChars     = 1500
	MaxContextChars     = 8000
)

// SystemPrompt is sent with every generation request
const SystemPrompt = "You are a concise research assistant. Answer the user's question using the provided web context. " +
	"Cite sources inline using [n] notation matching the provided source list. If unsure, say you don't know."

const noContext = "No external context available."

// Generator writes cited answers with an LLM provider
type Generator struct {
	provider interfaces.LLMProvider
	timeout  time.Duration
	logger   arbor.ILogger
}

// NewGenerator wraps provider. A positive timeout bounds every Generate call.
func NewGenerator(provider interfaces.LLMProvider, timeout time.Duration, logger arbor.ILogger) *Generator {
	return &Generator{
		provider: provider,
		timeout:  timeout,
		logger:   logger,
	}
}

// Name returns the provider name
func (g *Generator) Name() string {
	return g.provider.Name()
}

// Generate asks the provider to answer question from docs.
// The sources returned are exactly the documents placed in the prompt, numbered as cited.
func (g *Generator) Generate(ctx context.Context, question string, docs []models.Document) (string, []models.Source, error) {
	contextBlock, sources := BuildContext(docs)
	user := BuildUserPrompt(question, contextBlock)

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := g.provider.Complete(ctx, SystemPrompt, user)
	if err != nil {
		return "", nil, fmt.Errorf("%s generation failed: %w", g.provider.Name(), err)
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", nil, ErrEmptyReply
	}

	g.logger.Debug().
		Str("provider", g.provider.Name()).
		Int("sources", len(sources)).
		Int("prompt_chars", len(user)).
		Dur("duration", time.Since(start)).
		Msg("Generated answer")

	return reply, sources, nil
}

// BuildContext formats up to MaxContextDocuments documents into numbered chunks.
// Numbers follow the document's position in docs, so skipped documents leave gaps.
// The chunk that pushes the total past MaxContextChars is the last one included.
func BuildContext(docs []models.Document) (string, []models.Source) {
	if len(docs) > MaxContextDocuments {
		docs = docs[:MaxContextDocuments]
	}

	chunks := make([]string, 0, len(docs))
	sources := make([]models.Source, 0, len(docs))
	total := 0

	for _, doc := range docs {
		if !doc.HasText() {
			continue
		}

		// [n] always names sources[n-1]
		source := doc.Source()
		chunk := fmt.Sprintf("[%d] %s\nURL: %s\nContent:\n%s\n", len(sources)+1, source.Title, source.URL, truncateRunes(strings.TrimSpace(doc.Text), MaxSnippetChars))
		chunks = append(chunks, chunk)
		sources = append(sources, source)

		total += utf8.RuneCountInString(chunk)
		if total > MaxContextChars {
			break
		}
	}

	return strings.Join(chunks, "\n\n"), sources
}

// BuildUserPrompt combines the question with the formatted context
func BuildUserPrompt(question string, contextBlock string) string {
	if contextBlock == "" {
		contextBlock = noContext
	}
	return "Question: " + question + "\n\n" +
		"Sources:\n" + contextBlock + "\n\n" +
		"Write a helpful, truthful answer in 4-8 sentences. Include citations like [1], [2] where relevant."
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "…"
}
