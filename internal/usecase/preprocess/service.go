package preprocess

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docalign/internal/domain"
)

// Service applies the fixed preprocessing pipeline to loaded documents:
// weighting, then merging, then masking, each stage optional.
type Service struct {
	weights domain.WeightStrategy
	merge   domain.MergeStrategy
	// mask is the externally supplied per-dimension mask, nil when masking
	// is disabled.
	mask       []float32
	pruneZeros bool
	logger     *zap.Logger
}

// New creates a preprocessor. Pass domain.WeightNone / domain.MergeNone /
// a nil mask to disable individual stages.
func New(weights domain.WeightStrategy, merge domain.MergeStrategy, mask []float32, pruneZeros bool, logger *zap.Logger) *Service {
	return &Service{
		weights:    weights,
		merge:      merge,
		mask:       mask,
		pruneZeros: pruneZeros,
		logger:     logger,
	}
}

// Run preprocesses both sides in place. The idf weighting stage needs the
// full combined set, so both slices are passed together. Weighting problems
// degrade fail-open with a warning; mask dimension mismatches are fatal.
func (s *Service) Run(src, trg []*domain.Document) error {
	if s.weights != domain.WeightNone {
		s.applyWeights(src, trg)
	}

	if s.merge != domain.MergeNone {
		for _, docs := range [][]*domain.Document{src, trg} {
			for _, doc := range docs {
				if len(doc.Embeddings) == 0 {
					s.logger.Warn("skipping merge of empty document", zap.String("doc", doc.ID()))
					continue
				}
				merged, err := mergeSequence(doc.Embeddings, s.merge)
				if err != nil {
					return fmt.Errorf("merge %q: %w", doc.ID(), err)
				}
				doc.Embeddings = []domain.Vector{merged}
			}
		}
	}

	return s.maskSides(src, trg)
}

// RunSequences applies the weighting and masking stages while keeping every
// document's sentence sequence intact. Sequence scoring over snapshots of
// merged documents uses this so both views get the same per-dimension
// treatment.
func (s *Service) RunSequences(src, trg []*domain.Document) error {
	if s.weights != domain.WeightNone {
		s.applyWeights(src, trg)
	}
	return s.maskSides(src, trg)
}

func (s *Service) maskSides(src, trg []*domain.Document) error {
	if len(s.mask) == 0 {
		return nil
	}
	for _, docs := range [][]*domain.Document{src, trg} {
		if err := applyMask(docs, s.mask, s.pruneZeros); err != nil {
			return err
		}
	}
	return nil
}

// applyWeights scales every sentence embedding by its scalar weight. All
// weight tables are built per call and discarded; there is no shared state
// between runs.
func (s *Service) applyWeights(src, trg []*domain.Document) {
	all := make([]*domain.Document, 0, len(src)+len(trg))
	all = append(all, src...)
	all = append(all, trg...)

	lines := make([][]string, len(all))
	for i, doc := range all {
		lines[i] = doc.Lines
	}

	weights := s.computeWeights(lines)
	if len(weights) != len(all) {
		s.logger.Warn("weight vector count does not match document count, skipping weighting",
			zap.Int("weights", len(weights)), zap.Int("documents", len(all)))
		return
	}

	for i, doc := range all {
		w := weights[i]
		if len(w) != len(doc.Embeddings) {
			s.logger.Warn("weight/embedding shape mismatch, skipping document",
				zap.String("doc", doc.ID()),
				zap.Int("weights", len(w)), zap.Int("sentences", len(doc.Embeddings)))
			continue
		}
		for j, v := range doc.Embeddings {
			scale := float32(w[j])
			for k := range v {
				v[k] *= scale
			}
		}
	}
}

func (s *Service) computeWeights(lines [][]string) [][]float64 {
	switch s.weights {
	case domain.WeightSentenceLength:
		out := make([][]float64, len(lines))
		for i, doc := range lines {
			out[i] = sentenceLengthWeights(doc)
		}
		return out
	case domain.WeightIDF:
		return idfWeights(lines)
	case domain.WeightCombined:
		idf := idfWeights(lines)
		out := make([][]float64, len(lines))
		for i, doc := range lines {
			sl := sentenceLengthWeights(doc)
			combined, matched := combinedWeights(sl, idf[i])
			if !matched {
				s.logger.Warn("sentence-length and idf weight lengths differ",
					zap.Int("doc_index", i),
					zap.Int("sentence_length", len(sl)), zap.Int("idf", len(idf[i])))
			}
			out[i] = combined
		}
		return out
	}
	return nil
}
