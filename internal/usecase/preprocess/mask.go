package preprocess

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/docalign/internal/domain"
)

// applyMask multiplies every embedding of every document elementwise by the
// mask. With pruneZeros, dimensions where the mask value is at or below
// machine epsilon are dropped, reducing dimensionality for all later stages.
// A mask/embedding dimension mismatch is a fatal configuration error.
func applyMask(docs []*domain.Document, mask []float32, pruneZeros bool) error {
	var kept []int
	if pruneZeros {
		for i, m := range mask {
			if float64(m) > epsilon {
				kept = append(kept, i)
			}
		}
	}

	for _, doc := range docs {
		for vi, v := range doc.Embeddings {
			if len(v) != len(mask) {
				return fmt.Errorf("%w: document %q embedding has dim %d, mask has %d",
					domain.ErrDimensionMismatch, doc.ID(), len(v), len(mask))
			}
			if pruneZeros {
				pruned := make(domain.Vector, len(kept))
				for j, i := range kept {
					pruned[j] = v[i] * mask[i]
				}
				doc.Embeddings[vi] = pruned
				continue
			}
			for i := range v {
				v[i] *= mask[i]
			}
		}
	}
	return nil
}

var epsilon = math.Nextafter(1, 2) - 1
