package summary

import (
	"regexp"
	"strings"

	"github.com/kljensen/snowball"
)

// MinTermLength is the shortest term kept by the tokenizer
const MinTermLength = 3

var termPattern = regexp.MustCompile(`[a-z0-9]+`)

var stopwords = map[string]struct{}{
	"the": {}, "is": {}, "at": {}, "which": {}, "on": {}, "and": {}, "a": {}, "an": {}, "to": {},
	"of": {}, "in": {}, "for": {}, "by": {}, "with": {}, "as": {}, "from": {}, "or": {}, "that": {},
	"this": {}, "it": {}, "be": {}, "are": {}, "was": {}, "were": {}, "has": {}, "had": {}, "have": {},
}

// Tokenizer turns text into lowercase alphanumeric terms without stopwords,
// optionally reduced to their snowball stems.
type Tokenizer struct {
	stem     bool
	language string
}

// NewTokenizer creates a tokenizer; language is a snowball language name such as "english"
func NewTokenizer(stem bool, language string) *Tokenizer {
	if language == "" {
		language = "english"
	}
	return &Tokenizer{stem: stem, language: language}
}

// Terms returns the terms of text in order, duplicates included
func (t *Tokenizer) Terms(text string) []string {
	raw := termPattern.FindAllString(strings.ToLower(text), -1)
	terms := make([]string, 0, len(raw))
	for _, term := range raw {
		if len(term) < MinTermLength {
			continue
		}
		if _, stop := stopwords[term]; stop {
			continue
		}
		if t.stem {
			if stemmed, err := snowball.Stem(term, t.language, false); err == nil && stemmed != "" {
				term = stemmed
			}
		}
		terms = append(terms, term)
	}
	return terms
}

// termSet returns the distinct members of terms
func termSet(terms []string) map[string]struct{} {
	set := make(map[string]struct{}, len(terms))
	for _, term := range terms {
		set[term] = struct{}{}
	}
	return set
}
