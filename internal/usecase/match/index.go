package match

import (
	"fmt"
	"sort"

	"github.com/kailas-cloud/docalign/internal/domain"
)

// flatIndex is an exact inner-product nearest-neighbor index. Vectors are
// L2-normalized on insertion, so inner product equals cosine similarity.
type flatIndex struct {
	dim     int
	vectors []domain.Vector
}

func newFlatIndex(dim int) *flatIndex {
	return &flatIndex{dim: dim}
}

// Add copies and normalizes v into the index.
func (x *flatIndex) Add(v domain.Vector) error {
	if len(v) != x.dim {
		return fmt.Errorf("%w: index dim %d, vector dim %d", domain.ErrDimensionMismatch, x.dim, len(v))
	}
	cp := make(domain.Vector, len(v))
	copy(cp, v)
	domain.Normalize(cp)
	x.vectors = append(x.vectors, cp)
	return nil
}

func (x *flatIndex) Len() int { return len(x.vectors) }

// neighbor is one search hit: the position of an indexed vector and its
// inner-product score against the query.
type neighbor struct {
	index int
	score float64
}

// Search returns the k nearest indexed vectors to q by inner product,
// best first. q is normalized on a copy before scoring.
func (x *flatIndex) Search(q domain.Vector, k int) ([]neighbor, error) {
	if len(q) != x.dim {
		return nil, fmt.Errorf("%w: index dim %d, query dim %d", domain.ErrDimensionMismatch, x.dim, len(q))
	}

	cq := make(domain.Vector, len(q))
	copy(cq, q)
	domain.Normalize(cq)

	hits := make([]neighbor, len(x.vectors))
	for i, v := range x.vectors {
		hits[i] = neighbor{index: i, score: domain.Dot(cq, v)}
	}
	sort.Slice(hits, func(a, b int) bool { return hits[a].score > hits[b].score })

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}
