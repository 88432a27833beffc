package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scout/internal/models"
)

type fakeProvider struct {
	reply  string
	err    error
	system string
	user   string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(ctx context.Context, system string, user string) (string, error) {
	f.system = system
	f.user = user
	return f.reply, f.err
}

func TestBuildContext(t *testing.T) {
	docs := []models.Document{
		{Title: "First", URL: "https://a", Text: "alpha"},
		{Title: "Empty", URL: "https://b"},
		{Title: "Blank", URL: "https://blank", Text: "  \n "},
		{Title: "", URL: "https://c", Text: " gamma "},
	}

	block, sources := BuildContext(docs)

	assert.Equal(t, "[1] First\nURL: https://a\nContent:\nalpha\n\n\n[2] Untitled\nURL: https://c\nContent:\ngamma\n", block)
	assert.Equal(t, []models.Source{
		{Title: "First", URL: "https://a"},
		{Title: models.DefaultTitle, URL: "https://c"},
	}, sources)
}

func TestBuildContext_CitationNumbersMatchSources(t *testing.T) {
	docs := []models.Document{
		{Title: "Empty", URL: "https://empty"},
		{Title: "A", URL: "https://a", Text: "alpha"},
		{Title: "Empty again", URL: "https://empty2"},
		{Title: "B", URL: "https://b", Text: "beta"},
	}

	block, sources := BuildContext(docs)

	require.Len(t, sources, 2)
	for i, source := range sources {
		assert.Contains(t, block, fmt.Sprintf("[%d] %s\nURL: %s\n", i+1, source.Title, source.URL))
	}
	assert.NotContains(t, block, "[3]")
	assert.NotContains(t, block, "[4]")
}

func TestBuildContext_Limits(t *testing.T) {
	long := strings.Repeat("é", 2000)
	var docs []models.Document
	for i := 0; i < 8; i++ {
		docs = append(docs, models.Document{Title: "T", URL: "https://x", Text: long})
	}

	block, sources := BuildContext(docs)

	// only the first five documents are considered, each cut to 1500 runes plus the ellipsis
	assert.Len(t, sources, 5)
	assert.Equal(t, 5, strings.Count(block, "…"))
	assert.NotContains(t, block, strings.Repeat("é", 1501))
}

func TestBuildContext_StopsWhenContextFull(t *testing.T) {
	text := strings.Repeat("a", 1500)
	var docs []models.Document
	for i := 0; i < 5; i++ {
		docs = append(docs, models.Document{Title: strings.Repeat("t", 1500), URL: "https://x", Text: text})
	}

	_, sources := BuildContext(docs)

	// ~3030 chars per chunk: the third chunk crosses 8000
	assert.Len(t, sources, 3)
}

func TestBuildUserPrompt(t *testing.T) {
	assert.Equal(t,
		"Question: why?\n\nSources:\nNo external context available.\n\nWrite a helpful, truthful answer in 4-8 sentences. Include citations like [1], [2] where relevant.",
		BuildUserPrompt("why?", ""))
	assert.Contains(t, BuildUserPrompt("why?", "[1] x"), "Sources:\n[1] x\n\n")
}

func TestGenerator_Generate(t *testing.T) {
	provider := &fakeProvider{reply: "  HTTP is a protocol [1].  "}
	generator := NewGenerator(provider, time.Second, arbor.NewLogger())

	reply, sources, err := generator.Generate(context.Background(), "What is HTTP?", []models.Document{
		{Title: "HTTP", URL: "https://mdn/http", Text: "HTTP is a protocol."},
	})

	require.NoError(t, err)
	assert.Equal(t, "HTTP is a protocol [1].", reply)
	assert.Equal(t, []models.Source{{Title: "HTTP", URL: "https://mdn/http"}}, sources)
	assert.Equal(t, SystemPrompt, provider.system)
	assert.True(t, strings.HasPrefix(provider.user, "Question: What is HTTP?\n\nSources:\n[1] HTTP\n"))
	assert.Equal(t, "fake", generator.Name())
}

func TestGenerator_Failures(t *testing.T) {
	docs := []models.Document{{Title: "T", URL: "https://x", Text: "text"}}

	_, _, err := NewGenerator(&fakeProvider{reply: "   "}, 0, arbor.NewLogger()).Generate(context.Background(), "q", docs)
	assert.ErrorIs(t, err, ErrEmptyReply)

	boom := errors.New("quota exceeded")
	_, _, err = NewGenerator(&fakeProvider{err: boom}, 0, arbor.NewLogger()).Generate(context.Background(), "q", docs)
	assert.ErrorIs(t, err, boom)
}
