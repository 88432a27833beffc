package models

import "strings"

// DefaultTitle is used when a source returns a result without a title
const DefaultTitle = "Untitled"

// Document is a single piece of web content flowing through the answer pipeline.
// Identity is URL. Text is empty until the page has been fetched, except for sources
// that return a synopsis inline.
type Document struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Text  string `json:"text,omitempty"`
}

// HasText reports whether the document carries non-blank text
func (d Document) HasText() bool {
	return strings.TrimSpace(d.Text) != ""
}

// Source returns the citation form of the document
func (d Document) Source() Source {
	title := d.Title
	if title == "" {
		title = DefaultTitle
	}
	return Source{Title: title, URL: d.URL}
}

// Source is a citation attached to an answer
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Answer is the result of answering one question
type Answer struct {
	Reply     string   `json:"reply"`
	ReplyHTML string   `json:"reply_html,omitempty"`
	Sources   []Source `json:"sources"`
	Generator string   `json:"-"` // "extractive" or the LLM provider name
	RequestID string   `json:"-"`
}
