package score

import (
	"fmt"

	"github.com/kailas-cloud/docalign/internal/domain"
	"github.com/kailas-cloud/docalign/internal/levenshtein"
)

// NewEditScorer scores pairs through the edit-distance collaborator, banded
// unless full is set. nfactor is the single global normalization factor of
// the run: the maximum sentence count across every document on both sides,
// so that all pair scores share one numeric scale.
func NewEditScorer(full bool, nfactor int) PairScorerFunc {
	return func(src, trg *domain.Document) (float64, []domain.SentenceMatch, error) {
		var r levenshtein.Result
		if full {
			r = levenshtein.Full(src.Embeddings, trg.Embeddings, nfactor, domain.Distance)
		} else {
			r = levenshtein.Banded(src.Embeddings, trg.Embeddings, nfactor, domain.Distance)
		}
		return r.Similarity, nil, nil
	}
}

// NormFactor returns the maximum sentence count found across both sides.
func NormFactor(src, trg []*domain.Document) int {
	max := 0
	for _, docs := range [][]*domain.Document{src, trg} {
		for _, d := range docs {
			if n := d.SentenceCount(); n > max {
				max = n
			}
		}
	}
	return max
}

// NewDistanceScorer scores pairs of merged document-level vectors by
// clipped cosine similarity.
func NewDistanceScorer() PairScorerFunc {
	return func(src, trg *domain.Document) (float64, []domain.SentenceMatch, error) {
		if len(src.Embeddings) != 1 || len(trg.Embeddings) != 1 {
			return 0, nil, fmt.Errorf("%w: distance scoring needs merged document vectors (%q has %d, %q has %d)",
				domain.ErrMissingInput, src.ID(), len(src.Embeddings), trg.ID(), len(trg.Embeddings))
		}
		return domain.Similarity(src.Embeddings[0], trg.Embeddings[0]), nil, nil
	}
}
