package summary

import "github.com/ternarybob/scout/internal/services/dedupe"

// selectMMR greedily picks up to k candidates. The first pick is the most relevant; later picks
// maximise lambda*relevance + (1-lambda)*(1 - max Jaccard to the picks so far).
// Ties go to the candidate that appears first. Returned indices are in pick order.
func selectMMR(candidates []candidate, relevance []float64, lambda float64, k int) []int {
	picked := make([]int, 0, k)
	used := make([]bool, len(candidates))

	for len(picked) < k && len(picked) < len(candidates) {
		best := -1
		bestScore := 0.0

		for i, c := range candidates {
			if used[i] {
				continue
			}

			score := relevance[i]
			if len(picked) > 0 {
				maxSim := 0.0
				for _, p := range picked {
					if sim := dedupe.Jaccard(c.termSet, candidates[p].termSet); sim > maxSim {
						maxSim = sim
					}
				}
				score = lambda*relevance[i] + (1-lambda)*(1-maxSim)
			}

			if best < 0 || score > bestScore {
				best = i
				bestScore = score
			}
		}

		if best < 0 {
			break
		}
		used[best] = true
		picked = append(picked, best)
	}

	return picked
}
