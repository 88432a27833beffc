package connectors

import (
	"strings"

	"github.com/abadojack/whatlanggo"
)

// DefaultLang is used when a query's language cannot be detected reliably
const DefaultLang = "en"

// worldwideRegion is the DuckDuckGo region for languages without a mapping
const worldwideRegion = "wt-wt"

var regionByLang = map[string]string{
	"en": "us-en",
	"es": "es-es",
	"fr": "fr-fr",
	"de": "de-de",
	"it": "it-it",
	"pt": "pt-pt",
	"zh": "cn-zh",
	"ja": "jp-ja",
	"ko": "kr-ko",
}

// RegionForLang maps an ISO 639-1 language code to a DuckDuckGo region
func RegionForLang(lang string) string {
	if region, ok := regionByLang[strings.ToLower(strings.TrimSpace(lang))]; ok {
		return region
	}
	return worldwideRegion
}

// LanguageDetector is a best-effort query language detector backed by whatlanggo
type LanguageDetector struct{}

// NewLanguageDetector creates a new detector
func NewLanguageDetector() *LanguageDetector {
	return &LanguageDetector{}
}

// Detect returns the ISO 639-1 code of text, or DefaultLang when unsure.
// Short queries are frequently misdetected, so only reliable guesses are used.
func (d *LanguageDetector) Detect(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return DefaultLang
	}

	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return DefaultLang
	}

	code := info.Lang.Iso6391()
	if code == "" {
		return DefaultLang
	}
	return code
}
