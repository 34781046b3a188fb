package preprocess

import (
	"fmt"
	"sort"

	"github.com/kailas-cloud/docalign/internal/domain"
)

// mergeSequence collapses a sentence-embedding sequence into one
// document-level vector. MergeMaxSplit3 yields a vector of 3*dim; every
// other strategy preserves the dimension.
func mergeSequence(seq []domain.Vector, strategy domain.MergeStrategy) (domain.Vector, error) {
	if len(seq) == 0 {
		return nil, fmt.Errorf("merge %s: empty sequence", strategy)
	}

	switch strategy {
	case domain.MergeMean:
		return meanVector(seq), nil
	case domain.MergeMedian:
		return medianVector(seq), nil
	case domain.MergeMax:
		return maxVector(seq), nil
	case domain.MergeMaxSplit3:
		return maxSplit3Vector(seq), nil
	case domain.MergeIterativeMean:
		return iterativeMeanVector(seq), nil
	}
	return nil, fmt.Errorf("%w: merge strategy %s", domain.ErrUnknownStrategy, strategy)
}

func meanVector(seq []domain.Vector) domain.Vector {
	dim := len(seq[0])
	out := make(domain.Vector, dim)
	for _, v := range seq {
		for i := range v {
			out[i] += v[i]
		}
	}
	n := float32(len(seq))
	for i := range out {
		out[i] /= n
	}
	return out
}

func medianVector(seq []domain.Vector) domain.Vector {
	dim := len(seq[0])
	out := make(domain.Vector, dim)
	column := make([]float32, len(seq))
	for i := 0; i < dim; i++ {
		for j, v := range seq {
			column[j] = v[i]
		}
		sort.Slice(column, func(a, b int) bool { return column[a] < column[b] })
		mid := len(column) / 2
		if len(column)%2 == 1 {
			out[i] = column[mid]
		} else {
			out[i] = (column[mid-1] + column[mid]) / 2
		}
	}
	return out
}

func maxVector(seq []domain.Vector) domain.Vector {
	out := make(domain.Vector, len(seq[0]))
	copy(out, seq[0])
	for _, v := range seq[1:] {
		for i := range v {
			if v[i] > out[i] {
				out[i] = v[i]
			}
		}
	}
	return out
}

// maxSplit3Vector partitions the sequence into three contiguous segments of
// nearly equal length (first third floor-rounded, remainder split across the
// other two), takes the elementwise max of each segment and concatenates the
// results. A 1-element sequence replicates the vector three times; a
// 2-element sequence yields vector-0, vector-1 and their elementwise max.
func maxSplit3Vector(seq []domain.Vector) domain.Vector {
	dim := len(seq[0])
	out := make(domain.Vector, 0, 3*dim)

	switch len(seq) {
	case 1:
		out = append(out, seq[0]...)
		out = append(out, seq[0]...)
		out = append(out, seq[0]...)
	case 2:
		out = append(out, seq[0]...)
		out = append(out, seq[1]...)
		out = append(out, maxVector(seq)...)
	default:
		first := len(seq) / 3
		second := first + len(seq) - 2*first
		out = append(out, maxVector(seq[:first])...)
		out = append(out, maxVector(seq[first:second])...)
		out = append(out, maxVector(seq[second:])...)
	}
	return out
}

// iterativeMeanVector folds left: each step replaces the running result with
// the mean of (result, next vector), halving every earlier contribution.
func iterativeMeanVector(seq []domain.Vector) domain.Vector {
	out := make(domain.Vector, len(seq[0]))
	copy(out, seq[0])
	for _, v := range seq[1:] {
		for i := range out {
			out[i] = (out[i] + v[i]) / 2
		}
	}
	return out
}
