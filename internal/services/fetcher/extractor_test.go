package fetcher

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func TestExtractor_Article(t *testing.T) {
	pageURL, _ := url.Parse("https://example.com/post")
	e := NewExtractor(FormatText, arbor.NewLogger())

	text, err := e.Extract([]byte(articlePage), pageURL)

	require.NoError(t, err)
	assert.Contains(t, text, "HTTP persistent connections reuse a single TCP connection to send and receive multiple requests and responses.")
	assert.Contains(t, text, "\n")
	assert.NotContains(t, text, "tracking")
}

func TestExtractor_FallbackPrefersContentContainers(t *testing.T) {
	page := `<html><body>
<header>Site header</header>
<nav>Menu entries</nav>
<div id="content"><p>First paragraph.</p><p>Second<br>line.</p></div>
<aside>Related links</aside>
<footer>Footer</footer>
</body></html>`
	e := NewExtractor(FormatText, arbor.NewLogger())

	text, err := e.fallback([]byte(page), nil)

	require.NoError(t, err)
	assert.Equal(t, "First paragraph.\nSecond\nline.", text)
}

func TestExtractor_FallbackNoContent(t *testing.T) {
	e := NewExtractor(FormatText, arbor.NewLogger())

	_, err := e.fallback([]byte(`<html><body><nav>only nav</nav><script>x</script></body></html>`), nil)

	assert.ErrorIs(t, err, ErrNoContent)
}

func TestExtractor_Markdown(t *testing.T) {
	pageURL, _ := url.Parse("https://example.com/docs/page")
	e := NewExtractor(FormatMarkdown, arbor.NewLogger())

	text, err := e.fallback([]byte(`<html><body><main><h2>Usage</h2><p>Run it <strong>twice</strong>. See <a href="/guide">the guide</a>.</p></main></body></html>`), pageURL)

	require.NoError(t, err)
	assert.Contains(t, text, "## Usage")
	assert.Contains(t, text, "**twice**")
	assert.Contains(t, text, "example.com/guide")
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  a  b  ", "a b"},
		{"a\n\n\nb", "a\nb"},
		{"\t x \n y\t\tz \n", "x\ny z"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeText(tt.in))
	}
}
