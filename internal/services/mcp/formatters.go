package mcp

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ternarybob/scout/internal/models"
)

const previewChars = 1000

// formatAnswer renders the reply followed by a numbered source list
func formatAnswer(answer *models.Answer) string {
	var sb strings.Builder
	sb.WriteString(answer.Reply)
	sb.WriteString("\n")

	if len(answer.Sources) > 0 {
		sb.WriteString("\n## Sources\n\n")
		for i, source := range answer.Sources {
			sb.WriteString(fmt.Sprintf("%d. [%s](%s)\n", i+1, source.Title, source.URL))
		}
	}

	return sb.String()
}

// formatDocuments renders fetched documents as markdown with a content preview each
func formatDocuments(query string, docs []models.Document) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Web results for \"%s\" (%d results)\n\n", query, len(docs)))

	if len(docs) == 0 {
		sb.WriteString("No results found.\n")
		return sb.String()
	}

	for i, doc := range docs {
		source := doc.Source()
		sb.WriteString(fmt.Sprintf("### %d. %s\n", i+1, source.Title))
		sb.WriteString(fmt.Sprintf("**URL:** %s\n\n", source.URL))

		content := strings.TrimSpace(doc.Text)
		if utf8.RuneCountInString(content) > previewChars {
			content = string([]rune(content)[:previewChars]) + "..."
		}
		sb.WriteString(content)
		sb.WriteString("\n\n---\n\n")
	}

	return sb.String()
}
