package summary

import "math"

const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// bm25Scores scores every document (a sentence's terms) against the query terms and
// normalises the result to [0,1] by the maximum. An all-zero corpus stays all zero.
func bm25Scores(corpus [][]string, query []string) []float64 {
	scores := make([]float64, len(corpus))
	if len(corpus) == 0 {
		return scores
	}

	n := float64(len(corpus))
	totalLen := 0
	df := make(map[string]int)
	tfs := make([]map[string]int, len(corpus))
	for i, doc := range corpus {
		totalLen += len(doc)
		tf := make(map[string]int, len(doc))
		for _, term := range doc {
			tf[term]++
		}
		for term := range tf {
			df[term]++
		}
		tfs[i] = tf
	}
	avgLen := float64(totalLen) / n
	if avgLen == 0 {
		avgLen = 1
	}

	queryTerms := termSet(query)
	idf := make(map[string]float64, len(queryTerms))
	for term := range queryTerms {
		d := float64(df[term])
		idf[term] = math.Log(1 + (n-d+0.5)/(d+0.5))
	}

	maxScore := 0.0
	for i, doc := range corpus {
		norm := bm25K1 * (1 - bm25B + bm25B*float64(len(doc))/avgLen)
		score := 0.0
		for term := range queryTerms {
			tf := float64(tfs[i][term])
			if tf == 0 {
				continue
			}
			score += idf[term] * tf * (bm25K1 + 1) / (tf + norm)
		}
		scores[i] = score
		if score > maxScore {
			maxScore = score
		}
	}

	if maxScore > 0 {
		for i := range scores {
			scores[i] /= maxScore
		}
	}
	return scores
}
