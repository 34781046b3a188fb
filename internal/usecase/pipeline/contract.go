package pipeline

import "github.com/kailas-cloud/docalign/internal/domain"

// Preprocessor is the consumer interface for the embedding preprocessing
// stage (ISP).
type Preprocessor interface {
	Run(src, trg []*domain.Document) error
	// RunSequences applies the same weighting and masking as Run but keeps
	// the per-sentence sequences intact (no merging).
	RunSequences(src, trg []*domain.Document) error
}
