// Package resolve reduces a scored candidate pool to final document
// alignments by per-side best-match reconciliation.
package resolve

import (
	"sort"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docalign/internal/domain"
)

// Service picks the final alignment set from scored candidates.
type Service struct {
	mode   domain.ResultMode
	logger *zap.Logger
}

func New(mode domain.ResultMode, logger *zap.Logger) *Service {
	return &Service{mode: mode, logger: logger}
}

// Passthrough converts candidates to aligned pairs unchanged, preserving
// order. Used when the matcher already enforced a one-to-one assignment.
func Passthrough(candidates []domain.Candidate) []domain.AlignedPair {
	pairs := make([]domain.AlignedPair, 0, len(candidates))
	for _, c := range candidates {
		pairs = append(pairs, domain.AlignedPair{Source: c.Source, Target: c.Target, Score: c.Score})
	}
	return pairs
}

// Resolve computes, for every document on each side, its best-scoring
// counterpart, then reconciles the two directions. Union keeps a pair when
// either side names it best; intersection only when both do. Ties keep the
// earlier candidate, so resolution is deterministic for a deterministic
// candidate order. The result is sorted by score descending, earlier
// candidates first on equal scores.
func (s *Service) Resolve(candidates []domain.Candidate) []domain.AlignedPair {
	if len(candidates) == 0 {
		return nil
	}

	bestBySrc := make(map[string]int)
	bestByTrg := make(map[string]int)
	for i, c := range candidates {
		if j, ok := bestBySrc[c.Source.ID()]; !ok || c.Score > candidates[j].Score {
			bestBySrc[c.Source.ID()] = i
		}
		if j, ok := bestByTrg[c.Target.ID()]; !ok || c.Score > candidates[j].Score {
			bestByTrg[c.Target.ID()] = i
		}
	}

	chosen := make(map[int]bool)
	switch s.mode {
	case domain.ResultIntersection:
		for _, i := range bestBySrc {
			c := candidates[i]
			if bestByTrg[c.Target.ID()] == i {
				chosen[i] = true
			}
		}
	default:
		for _, i := range bestBySrc {
			chosen[i] = true
		}
		for _, i := range bestByTrg {
			chosen[i] = true
		}
	}

	idx := make([]int, 0, len(chosen))
	for i := range chosen {
		idx = append(idx, i)
	}
	sort.Slice(idx, func(a, b int) bool {
		if candidates[idx[a]].Score != candidates[idx[b]].Score {
			return candidates[idx[a]].Score > candidates[idx[b]].Score
		}
		return idx[a] < idx[b]
	})

	pairs := make([]domain.AlignedPair, 0, len(idx))
	for _, i := range idx {
		c := candidates[i]
		pairs = append(pairs, domain.AlignedPair{Source: c.Source, Target: c.Target, Score: c.Score})
	}

	s.logger.Debug("resolved candidate pool",
		zap.Int("candidates", len(candidates)),
		zap.Int("pairs", len(pairs)),
		zap.Stringer("mode", s.mode))
	return pairs
}
