package fetcher

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/ternarybob/arbor"
)

// Output formats
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
)

// ErrNoContent is returned when a page has no extractable text
var ErrNoContent = errors.New("no readable content")

// boilerplateSelector is removed before the fallback main-content walk
const boilerplateSelector = "script, style, nav, footer, aside, header, noscript, iframe, form, svg"

// blockSelector elements end a line of text
const blockSelector = "p, div, section, article, main, li, dt, dd, tr, h1, h2, h3, h4, h5, h6, pre, blockquote, table, ul, ol"

// mainContentSelectors are tried in order by the fallback walk
var mainContentSelectors = []string{"main", "article", "[role=main]", ".content", "#content", "body"}

var excessBlankLines = regexp.MustCompile(`\n{3,}`)

// Extractor pulls the main readable content out of an HTML page. It tries the readability
// algorithm first and falls back to a boilerplate-stripping walk over common content containers.
type Extractor struct {
	format string
	logger arbor.ILogger
}

// NewExtractor creates an extractor producing FormatText or FormatMarkdown output
func NewExtractor(format string, logger arbor.ILogger) *Extractor {
	if format != FormatMarkdown {
		format = FormatText
	}
	return &Extractor{format: format, logger: logger}
}

// Extract implements interfaces.ContentExtractor
func (e *Extractor) Extract(body []byte, pageURL *url.URL) (string, error) {
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err == nil && strings.TrimSpace(article.Content) != "" {
		if text, err := e.render(article.Content, pageURL); err == nil && text != "" {
			return text, nil
		}
	} else if err != nil {
		e.logger.Debug().Err(err).Msg("Readability failed, using fallback extraction")
	}

	return e.fallback(body, pageURL)
}

// fallback strips boilerplate and renders the first non-empty content container
func (e *Extractor) fallback(body []byte, pageURL *url.URL) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}
	doc.Find(boilerplateSelector).Remove()

	for _, selector := range mainContentSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 || strings.TrimSpace(sel.Text()) == "" {
			continue
		}

		html, err := goquery.OuterHtml(sel)
		if err != nil {
			continue
		}
		text, err := e.render(html, pageURL)
		if err == nil && text != "" {
			return text, nil
		}
	}

	return "", ErrNoContent
}

// render turns an HTML fragment into normalised text or markdown
func (e *Extractor) render(html string, pageURL *url.URL) (string, error) {
	if e.format == FormatMarkdown {
		domain := ""
		if pageURL != nil {
			domain = pageURL.Host
		}
		converter := md.NewConverter(domain, true, nil)
		markdown, err := converter.ConvertString(html)
		if err != nil {
			return "", fmt.Errorf("failed to convert html to markdown: %w", err)
		}
		return strings.TrimSpace(excessBlankLines.ReplaceAllString(markdown, "\n\n")), nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}
	return blockText(doc.Selection), nil
}

// blockText returns the text of sel with one line per block element
func blockText(sel *goquery.Selection) string {
	sel.Find("br").ReplaceWithHtml("\n")
	sel.Find(blockSelector).AppendHtml("\n")
	return NormalizeText(sel.Text())
}

// NormalizeText collapses runs of whitespace inside lines and drops blank lines
func NormalizeText(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if fields := strings.Fields(line); len(fields) > 0 {
			out = append(out, strings.Join(fields, " "))
		}
	}
	return strings.Join(out, "\n")
}
