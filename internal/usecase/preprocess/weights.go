package preprocess

import (
	"math"

	"github.com/kailas-cloud/docalign/internal/domain"
)

// sentenceLengthWeights computes one weight per sentence:
// occurrences*length / sum(occurrences*length over distinct sentences).
// An empty or near-empty document yields uniform 1.0 weights.
func sentenceLengthWeights(lines []string) []float64 {
	counts := make(map[string]int, len(lines))
	lengths := make(map[string]int, len(lines))

	for _, l := range lines {
		key := domain.SentenceKey(l)
		if _, ok := counts[key]; !ok {
			lengths[key] = len(key)
		}
		counts[key]++
	}

	var sum float64
	for key, c := range counts {
		sum += float64(c * lengths[key])
	}

	weights := make([]float64, len(lines))
	for i, l := range lines {
		if sum == 0 {
			weights[i] = 1.0
			continue
		}
		key := domain.SentenceKey(l)
		weights[i] = float64(counts[key]*lengths[key]) / sum
	}
	return weights
}

// idfWeights computes, for every document in the combined source+target set,
// one weight per sentence: 1 + ln(N_docs/df), where df is the number of
// documents containing that sentence at least once.
func idfWeights(docs [][]string) [][]float64 {
	df := make(map[string]int)

	for _, lines := range docs {
		seen := make(map[string]struct{}, len(lines))
		for _, l := range lines {
			key := domain.SentenceKey(l)
			if _, ok := df[key]; !ok {
				df[key] = 0
			}
			if _, ok := seen[key]; !ok {
				df[key]++
				seen[key] = struct{}{}
			}
		}
	}

	n := float64(len(docs))
	results := make([][]float64, len(docs))
	for i, lines := range docs {
		weights := make([]float64, len(lines))
		for j, l := range lines {
			weights[j] = 1.0 + math.Log(n/float64(df[domain.SentenceKey(l)]))
		}
		results[i] = weights
	}
	return results
}

// combinedWeights multiplies sentence-length and idf weights elementwise.
// A length mismatch between the two weight vectors of one document is
// reported by the caller; the shorter length wins.
func combinedWeights(sl, idf []float64) ([]float64, bool) {
	matched := len(sl) == len(idf)
	n := len(sl)
	if len(idf) < n {
		n = len(idf)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = sl[i] * idf[i]
	}
	return out, matched
}
