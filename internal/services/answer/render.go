package answer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// RenderHTML converts a markdown reply to HTML. Raw HTML in the reply is not passed through.
func RenderHTML(reply string) (string, error) {
	reply = stripOuterCodeFences(reply)
	if reply == "" {
		return "", nil
	}

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(reply), &buf); err != nil {
		return "", fmt.Errorf("failed to render reply: %w", err)
	}
	return buf.String(), nil
}

// stripOuterCodeFences removes a code fence wrapping the whole reply, as LLMs
// sometimes answer inside ```markdown ... ```. An unclosed opening fence is dropped too.
func stripOuterCodeFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	firstNewline := strings.Index(content, "\n")
	if firstNewline == -1 {
		return content
	}

	inner := content[firstNewline+1:]
	if end := strings.LastIndex(inner, "```"); end != -1 && strings.TrimSpace(inner[end+3:]) == "" {
		inner = inner[:end]
	}
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(inner), "`"))
}
