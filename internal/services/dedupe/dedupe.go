// Package dedupe removes near-duplicate documents using word shingles and Jaccard similarity.
package dedupe

import (
	"strings"

	"github.com/ternarybob/scout/internal/models"
)

const (
	// DefaultThreshold is the Jaccard similarity at or above which two documents are duplicates
	DefaultThreshold = 0.9

	// ShingleSize is the number of consecutive words in a shingle
	ShingleSize = 3
)

// Shingles returns the set of k-word windows over the lowercased, whitespace-split text.
// Text with fewer than k words yields an empty set.
func Shingles(text string, k int) map[string]struct{} {
	words := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{})
	if k <= 0 {
		return set
	}
	for i := 0; i+k <= len(words); i++ {
		set[strings.Join(words[i:i+k], " ")] = struct{}{}
	}
	return set
}

// Jaccard returns |a ∩ b| / |a ∪ b|; two empty sets have similarity 0
func Jaccard(a, b map[string]struct{}) float64 {
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}

	inter := 0
	for s := range small {
		if _, ok := large[s]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		union = 1
	}
	return float64(inter) / float64(union)
}

// Dedupe keeps the first occurrence of every URL and drops any document whose text
// is at least threshold-similar to a document already kept. Documents without text are
// kept unless their URL repeats. Order is preserved.
func Dedupe(docs []models.Document, threshold float64) []models.Document {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	out := make([]models.Document, 0, len(docs))
	seenURLs := make(map[string]bool, len(docs))
	var kept []map[string]struct{}

	for _, doc := range docs {
		if seenURLs[doc.URL] {
			continue
		}

		if doc.Text != "" {
			sh := Shingles(doc.Text, ShingleSize)
			duplicate := false
			for _, other := range kept {
				if Jaccard(sh, other) >= threshold {
					duplicate = true
					break
				}
			}
			if duplicate {
				continue
			}
			kept = append(kept, sh)
		}

		seenURLs[doc.URL] = true
		out = append(out, doc)
	}

	return out
}
