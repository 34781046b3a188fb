package domain

// Candidate is a scored (source, target) pair produced by a scoring
// strategy. Depending on the strategy the score is either a clipped cosine
// similarity or a normalized alignment similarity, both in [0, 1].
type Candidate struct {
	Source *Document
	Target *Document
	Score  float64
}

// AlignedPair is a resolved document pair, the final output record.
type AlignedPair struct {
	Source *Document
	Target *Document
	Score  float64
}

// SentenceMatch is one sentence-level alignment recorded for audit output:
// row/column positions in the original source/target orientation and the
// similarity found.
type SentenceMatch struct {
	SourceRow int
	TargetRow int
	Score     float64
}

// PairAudit groups the sentence matches of one aligned document pair.
type PairAudit struct {
	Source    *Document
	Target    *Document
	PairScore float64
	Matches   []SentenceMatch
}
