// Package match aligns document-level vectors through an exact
// inner-product index with greedy 1:1 assignment: a cheap approximation of
// maximum-weight bipartite matching.
package match

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docalign/internal/domain"
	"github.com/kailas-cloud/docalign/internal/metrics"
)

// Service matches merged source documents against merged target documents.
type Service struct {
	k         int
	threshold float64
	logger    *zap.Logger
}

// New creates a matcher querying the k nearest neighbors per document.
// threshold < 0 disables the minimum-score cut.
func New(k int, threshold float64, logger *zap.Logger) *Service {
	return &Service{k: k, threshold: threshold, logger: logger}
}

// triple is one pooled (source, target, score) hit before greedy selection.
type triple struct {
	src, trg int
	score    float64
}

// Match indexes the source side and queries every target document for its k
// nearest sources, then walks the pooled hits best-first, accepting a pair
// only when neither index was used before. The returned pairs are mutually
// exclusive and sorted by descending score.
func (s *Service) Match(src, trg []*domain.Document) ([]domain.AlignedPair, error) {
	if len(src) == 0 || len(trg) == 0 {
		return nil, nil
	}

	dim, err := mergedDim(src[0])
	if err != nil {
		return nil, err
	}
	s.logger.Info("building flat inner-product index",
		zap.Int("dim", dim), zap.Int("indexed", len(src)), zap.Int("queries", len(trg)), zap.Int("k", s.k))

	index := newFlatIndex(dim)
	for _, doc := range src {
		v, err := mergedVector(doc)
		if err != nil {
			return nil, err
		}
		if err := index.Add(v); err != nil {
			return nil, fmt.Errorf("index %q: %w", doc.ID(), err)
		}
	}

	var pool []triple
	for ti, doc := range trg {
		v, err := mergedVector(doc)
		if err != nil {
			return nil, err
		}
		hits, err := index.Search(v, s.k)
		if err != nil {
			return nil, fmt.Errorf("query %q: %w", doc.ID(), err)
		}
		for _, h := range hits {
			pool = append(pool, triple{src: h.index, trg: ti, score: domain.Clip01(h.score)})
		}
	}

	sort.SliceStable(pool, func(a, b int) bool { return pool[a].score > pool[b].score })

	usedSrc := make(map[int]struct{}, len(src))
	usedTrg := make(map[int]struct{}, len(trg))
	var pairs []domain.AlignedPair

	for _, tr := range pool {
		if _, ok := usedSrc[tr.src]; ok {
			continue
		}
		if _, ok := usedTrg[tr.trg]; ok {
			continue
		}
		if s.threshold >= 0 && tr.score < s.threshold {
			continue
		}
		pairs = append(pairs, domain.AlignedPair{
			Source: src[tr.src],
			Target: trg[tr.trg],
			Score:  tr.score,
		})
		usedSrc[tr.src] = struct{}{}
		usedTrg[tr.trg] = struct{}{}
	}

	metrics.PairsMatched.Add(float64(len(pairs)))
	return pairs, nil
}

// mergedDim returns the document-level vector dimension, failing when the
// document was not merged to a single vector.
func mergedDim(doc *domain.Document) (int, error) {
	v, err := mergedVector(doc)
	if err != nil {
		return 0, err
	}
	return len(v), nil
}

func mergedVector(doc *domain.Document) (domain.Vector, error) {
	if len(doc.Embeddings) != 1 {
		return nil, fmt.Errorf("%w: document %q has %d vectors, index matching needs one merged vector",
			domain.ErrMissingInput, doc.ID(), len(doc.Embeddings))
	}
	return doc.Embeddings[0], nil
}
