package domain

import "fmt"

// AlignStrategy selects the scoring engine for a run.
type AlignStrategy int

const (
	// AlignIndex matches document-level vectors through the flat
	// inner-product index with greedy 1:1 assignment.
	AlignIndex AlignStrategy = iota
	// AlignEdit scores sentence sequences with the banded edit-distance
	// collaborator.
	AlignEdit
	// AlignEditFull scores sentence sequences with the full quadratic-space
	// edit-distance collaborator.
	AlignEditFull
	// AlignMerge scores merged document-level vectors pairwise by cosine
	// similarity.
	AlignMerge
	// AlignWindow scores sentence sequences with the windowed
	// local-alignment scorer.
	AlignWindow
)

// ParseAlignStrategy rejects unknown strategy names at configuration time.
func ParseAlignStrategy(s string) (AlignStrategy, error) {
	switch s {
	case "index":
		return AlignIndex, nil
	case "edit":
		return AlignEdit, nil
	case "edit-full":
		return AlignEditFull, nil
	case "merge":
		return AlignMerge, nil
	case "window":
		return AlignWindow, nil
	}
	return 0, fmt.Errorf("%w: align strategy %q", ErrUnknownStrategy, s)
}

func (s AlignStrategy) String() string {
	switch s {
	case AlignIndex:
		return "index"
	case AlignEdit:
		return "edit"
	case AlignEditFull:
		return "edit-full"
	case AlignMerge:
		return "merge"
	case AlignWindow:
		return "window"
	}
	return fmt.Sprintf("align(%d)", int(s))
}

// KeepsSequences reports whether the strategy consumes unmerged
// sentence-level sequences. Such strategies skip the merge stage during
// preprocessing.
func (s AlignStrategy) KeepsSequences() bool {
	switch s {
	case AlignEdit, AlignEditFull, AlignWindow:
		return true
	}
	return false
}

// WeightStrategy selects how per-sentence scalar weights are computed.
type WeightStrategy int

const (
	WeightNone WeightStrategy = iota
	// WeightSentenceLength weights each sentence by
	// occurrences*length / sum over distinct sentences.
	WeightSentenceLength
	// WeightIDF weights each sentence by 1 + ln(N_docs/df) across the
	// combined source+target set.
	WeightIDF
	// WeightCombined is the elementwise product of the two above.
	WeightCombined
)

// ParseWeightStrategy rejects unknown weighting names at configuration time.
func ParseWeightStrategy(s string) (WeightStrategy, error) {
	switch s {
	case "", "none":
		return WeightNone, nil
	case "sentence-length":
		return WeightSentenceLength, nil
	case "idf":
		return WeightIDF, nil
	case "combined":
		return WeightCombined, nil
	}
	return 0, fmt.Errorf("%w: weight strategy %q", ErrUnknownStrategy, s)
}

func (s WeightStrategy) String() string {
	switch s {
	case WeightNone:
		return "none"
	case WeightSentenceLength:
		return "sentence-length"
	case WeightIDF:
		return "idf"
	case WeightCombined:
		return "combined"
	}
	return fmt.Sprintf("weight(%d)", int(s))
}

// MergeStrategy selects how a sentence sequence collapses into a
// document-level vector.
type MergeStrategy int

const (
	MergeNone MergeStrategy = iota
	MergeMean
	MergeMedian
	MergeMax
	// MergeMaxSplit3 takes the elementwise max of three contiguous segments
	// and concatenates them into one 3*dim vector.
	MergeMaxSplit3
	// MergeIterativeMean folds the sequence left with pairwise means,
	// weighting later sentences more heavily.
	MergeIterativeMean
)

// ParseMergeStrategy rejects unknown merge names at configuration time.
func ParseMergeStrategy(s string) (MergeStrategy, error) {
	switch s {
	case "", "none":
		return MergeNone, nil
	case "mean":
		return MergeMean, nil
	case "median":
		return MergeMedian, nil
	case "max":
		return MergeMax, nil
	case "max-split-3":
		return MergeMaxSplit3, nil
	case "iterative-mean":
		return MergeIterativeMean, nil
	}
	return 0, fmt.Errorf("%w: merge strategy %q", ErrUnknownStrategy, s)
}

func (s MergeStrategy) String() string {
	switch s {
	case MergeNone:
		return "none"
	case MergeMean:
		return "mean"
	case MergeMedian:
		return "median"
	case MergeMax:
		return "max"
	case MergeMaxSplit3:
		return "max-split-3"
	case MergeIterativeMean:
		return "iterative-mean"
	}
	return fmt.Sprintf("merge(%d)", int(s))
}

// ResultMode selects how many-to-many candidates are reconciled.
type ResultMode int

const (
	// ResultUnion emits every per-source best target and every per-target
	// best source.
	ResultUnion ResultMode = iota
	// ResultIntersection emits only mutual-best matches.
	ResultIntersection
)

// ParseResultMode rejects unknown result modes at configuration time.
func ParseResultMode(s string) (ResultMode, error) {
	switch s {
	case "", "union":
		return ResultUnion, nil
	case "intersection":
		return ResultIntersection, nil
	}
	return 0, fmt.Errorf("%w: result mode %q", ErrUnknownStrategy, s)
}

func (m ResultMode) String() string {
	if m == ResultIntersection {
		return "intersection"
	}
	return "union"
}
