package domain

import "math"

// Vector is a fixed-dimension sentence or document embedding.
type Vector = []float32

// Dot returns the inner product of two vectors of equal dimension.
func Dot(a, b Vector) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// Distance returns the cosine distance between two vectors, clipped to [0, 1].
// 0 means same direction, 1 means orthogonal or opposite: pairs with negative
// cosine similarity are indistinguishable from orthogonal pairs.
func Distance(a, b Vector) float64 {
	na := math.Sqrt(Dot(a, a))
	nb := math.Sqrt(Dot(b, b))
	if na == 0 || nb == 0 {
		return 1
	}
	d := 1 - Dot(a, b)/(na*nb)
	if d > 1 {
		return 1
	}
	if d < 0 {
		// Floating-point overshoot for near-identical vectors.
		return 0
	}
	return d
}

// Similarity returns 1 - Distance(a, b); higher is better, range [0, 1].
func Similarity(a, b Vector) float64 {
	return 1 - Distance(a, b)
}

// Normalize scales v to unit L2 norm in place. Zero vectors are left as-is.
func Normalize(v Vector) {
	n := math.Sqrt(Dot(v, v))
	if n == 0 {
		return
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / n)
	}
}

// Clip01 clamps a score into [0, 1].
func Clip01(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
