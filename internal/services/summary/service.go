// Package summary builds extractive answers: candidate sentences are scored against the
// question with BM25 and a diverse subset is chosen with Maximal Marginal Relevance.
package summary

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scout/internal/common"
	"github.com/ternarybob/scout/internal/models"
)

const (
	// Header opens every extractive answer
	Header = "Here is a quick summary based on current web sources:\n"

	// Apology is returned when no document yields a usable sentence
	Apology = "I couldn't gather enough reliable information from the web results to answer that confidently."

	DefaultMaxSentences = 8
	DefaultLambda       = 0.75

	maxDocuments       = 6
	maxSentencesPerDoc = 25
	minSentenceLength  = 50
	// relaxedSentenceLength admits short sentences when no document has a long one
	relaxedSentenceLength = 20
)

type candidate struct {
	text        string
	sourceIndex int
	terms       []string
	termSet     map[string]struct{}
}

// Service implements interfaces.Summarizer
type Service struct {
	tokenizer    *Tokenizer
	lambda       float64
	maxSentences int
	logger       arbor.ILogger
}

// NewService creates a summarizer from configuration
func NewService(config common.SummaryConfig, logger arbor.ILogger) *Service {
	lambda := config.Lambda
	if lambda <= 0 || lambda > 1 {
		lambda = DefaultLambda
	}
	maxSentences := config.MaxSentences
	if maxSentences <= 0 {
		maxSentences = DefaultMaxSentences
	}

	return &Service{
		tokenizer:    NewTokenizer(config.Stem, config.Language),
		lambda:       lambda,
		maxSentences: maxSentences,
		logger:       logger,
	}
}

// Summarize returns a bulleted answer citing docs by 1-based position, and the cited sources
// in ascending index order. maxSentences <= 0 uses the configured default.
func (s *Service) Summarize(question string, docs []models.Document, maxSentences int) (string, []models.Source) {
	if maxSentences <= 0 {
		maxSentences = s.maxSentences
	}

	query := s.tokenizer.Terms(question)
	candidates := s.candidates(docs, minSentenceLength)
	if len(candidates) == 0 {
		candidates = s.candidates(docs, relaxedSentenceLength)
	}
	if len(candidates) == 0 {
		s.logger.Debug().Int("documents", len(docs)).Msg("No candidate sentences, returning apology")
		return Apology, []models.Source{}
	}

	corpus := make([][]string, len(candidates))
	for i, c := range candidates {
		corpus[i] = c.terms
	}
	relevance := bm25Scores(corpus, query)
	picked := selectMMR(candidates, relevance, s.lambda, maxSentences)

	var b strings.Builder
	b.WriteString(Header)
	cited := make(map[int]bool)
	for i, idx := range picked {
		c := candidates[idx]
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- %s [%d]", c.text, c.sourceIndex+1)
		cited[c.sourceIndex] = true
	}

	s.logger.Debug().
		Int("query_terms", len(query)).
		Int("candidates", len(candidates)).
		Int("selected", len(picked)).
		Int("cited", len(cited)).
		Msg("Extractive summary built")

	return b.String(), citedSources(docs, cited)
}

// candidates collects sentences of at least minLength characters from the leading documents
func (s *Service) candidates(docs []models.Document, minLength int) []candidate {
	limit := len(docs)
	if limit > maxDocuments {
		limit = maxDocuments
	}

	var out []candidate
	for idx := 0; idx < limit; idx++ {
		text := strings.TrimSpace(docs[idx].Text)
		if text == "" {
			continue
		}

		sentences := SplitSentences(text)
		if len(sentences) > maxSentencesPerDoc {
			sentences = sentences[:maxSentencesPerDoc]
		}
		for _, sentence := range sentences {
			if utf8.RuneCountInString(sentence) < minLength {
				continue
			}
			terms := s.tokenizer.Terms(sentence)
			out = append(out, candidate{
				text:        sentence,
				sourceIndex: idx,
				terms:       terms,
				termSet:     termSet(terms),
			})
		}
	}
	return out
}

func citedSources(docs []models.Document, cited map[int]bool) []models.Source {
	indices := make([]int, 0, len(cited))
	for idx := range cited {
		if idx >= 0 && idx < len(docs) {
			indices = append(indices, idx)
		}
	}
	sort.Ints(indices)

	sources := make([]models.Source, 0, len(indices))
	for _, idx := range indices {
		sources = append(sources, docs[idx].Source())
	}
	return sources
}
