// Package levenshtein scores two sentence-embedding sequences by weighted
// edit distance. Insertions and deletions cost 1; the substitution cost of
// two sentences is supplied by the caller (the cosine distance metric).
// The similarity is normalized by an external factor so that scores from
// different pairs of one run stay on the same scale.
package levenshtein

import (
	"math"

	"github.com/kailas-cloud/docalign/internal/domain"
)

// SubstitutionCost returns the cost of substituting one sentence vector for
// another, in [0, 1].
type SubstitutionCost func(a, b domain.Vector) float64

// Result carries the raw edit distance and the normalized similarity.
type Result struct {
	// Distance is the accumulated edit cost.
	Distance float64
	// Similarity is 1 - Distance/nfactor, clamped to [0, 1]. Zero when the
	// normalization factor was not positive.
	Similarity float64
}

// Full computes the edit distance with the classic quadratic-space dynamic
// program over the complete (n+1)x(m+1) matrix.
func Full(a, b []domain.Vector, nfactor int, cost SubstitutionCost) Result {
	n, m := len(a), len(b)

	dp := make([][]float64, n+1)
	for i := range dp {
		dp[i] = make([]float64, m+1)
		dp[i][0] = float64(i)
	}
	for j := 0; j <= m; j++ {
		dp[0][j] = float64(j)
	}

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			sub := dp[i-1][j-1] + cost(a[i-1], b[j-1])
			del := dp[i-1][j] + 1
			ins := dp[i][j-1] + 1
			dp[i][j] = min3(sub, del, ins)
		}
	}

	return normalize(dp[n][m], nfactor)
}

// Banded computes the edit distance over a diagonal band of half-width
// |len(a)-len(b)|+1, in two-row space. Cells outside the band are treated
// as unreachable; the result matches Full whenever the optimal path stays
// inside the band.
func Banded(a, b []domain.Vector, nfactor int, cost SubstitutionCost) Result {
	n, m := len(a), len(b)
	w := n - m
	if w < 0 {
		w = -w
	}
	w++

	inf := math.Inf(1)
	prev := make([]float64, m+1)
	cur := make([]float64, m+1)
	for j := 0; j <= m; j++ {
		if j <= w {
			prev[j] = float64(j)
		} else {
			prev[j] = inf
		}
	}

	for i := 1; i <= n; i++ {
		lo := i - w
		if lo < 1 {
			lo = 1
		}
		hi := i + w
		if hi > m {
			hi = m
		}

		for j := 0; j <= m; j++ {
			cur[j] = inf
		}
		if lo == 1 && i <= w {
			cur[0] = float64(i)
		}

		for j := lo; j <= hi; j++ {
			sub := prev[j-1] + cost(a[i-1], b[j-1])
			del := prev[j] + 1
			ins := cur[j-1] + 1
			cur[j] = min3(sub, del, ins)
		}
		prev, cur = cur, prev
	}

	return normalize(prev[m], nfactor)
}

func normalize(distance float64, nfactor int) Result {
	r := Result{Distance: distance}
	if nfactor > 0 {
		r.Similarity = domain.Clip01(1 - distance/float64(nfactor))
	}
	return r
}

func min3(a, b, c float64) float64 {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
