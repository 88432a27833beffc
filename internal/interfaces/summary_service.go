package interfaces

import "github.com/ternarybob/scout/internal/models"

// Summarizer builds an extractive, cited answer from fetched documents
type Summarizer interface {
	// Summarize returns the answer text and the sources it cites.
	// Every citation number in the text refers to a document in docs.
	Summarize(question string, docs []models.Document, maxSentences int) (string, []models.Source)
}
