package score

import "github.com/kailas-cloud/docalign/internal/domain"

// PairScorer scores one (source, target) document pair. Sentence-level
// matches are returned only by scorers that produce them (the windowed
// aligner); others return nil.
type PairScorer interface {
	ScorePair(src, trg *domain.Document) (float64, []domain.SentenceMatch, error)
}

// PairScorerFunc adapts a function to the PairScorer interface.
type PairScorerFunc func(src, trg *domain.Document) (float64, []domain.SentenceMatch, error)

// ScorePair implements PairScorer.
func (f PairScorerFunc) ScorePair(src, trg *domain.Document) (float64, []domain.SentenceMatch, error) {
	return f(src, trg)
}
