package common

import (
	"net/url"
	"strings"
)

// ResolveResultURL turns a raw link from a search result into an absolute http(s) URL.
// Relative links are resolved against base. The second return is false when the link
// cannot be resolved, has no host, or uses another scheme.
func ResolveResultURL(raw string, base string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}

	if !u.IsAbs() || u.Host == "" {
		if base == "" {
			return "", false
		}
		b, err := url.Parse(base)
		if err != nil {
			return "", false
		}
		u = b.ResolveReference(u)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if u.Host == "" {
		return "", false
	}
	return u.String(), true
}

// UnwrapRedirectURL returns the target of a search engine click-through link
// (for example "//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com") or the input unchanged.
func UnwrapRedirectURL(raw string, param string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	if target := u.Query().Get(param); target != "" {
		return target
	}
	return raw
}
