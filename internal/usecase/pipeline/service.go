// Package pipeline composes preprocessing, matching, pairwise scoring and
// resolution into one alignment run producing ranked document pairs.
package pipeline

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docalign/internal/domain"
	"github.com/kailas-cloud/docalign/internal/usecase/match"
	"github.com/kailas-cloud/docalign/internal/usecase/resolve"
	"github.com/kailas-cloud/docalign/internal/usecase/score"
)

// Config selects and tunes the alignment strategy.
type Config struct {
	Strategy domain.AlignStrategy
	Result   domain.ResultMode

	// Index strategy.
	K       int
	Reverse bool
	Rescore bool

	// Window scorer.
	MaxWindow      int
	AuditThreshold float64

	// Pairwise scorer pool.
	Workers        int
	BatchSize      int
	Heuristics     bool
	FilterFraction float64

	Threshold float64
}

// Result is the outcome of one alignment run.
type Result struct {
	// Pairs is the final alignment, sorted by descending score.
	Pairs []domain.AlignedPair
	// Audits holds sentence-level matches for strategies that produce them
	// (window scoring and index rescoring).
	Audits []domain.PairAudit
}

// Service runs the alignment pipeline for one pair of document collections.
type Service struct {
	cfg    Config
	pre    Preprocessor
	logger *zap.Logger
}

func New(cfg Config, pre Preprocessor, logger *zap.Logger) *Service {
	if cfg.K <= 0 {
		cfg.K = 5
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Service{cfg: cfg, pre: pre, logger: logger}
}

// Align preprocesses both sides in place and runs the configured strategy.
func (s *Service) Align(src, trg []*domain.Document) (*Result, error) {
	// Index rescoring needs the sentence sequences that merging destroys.
	// The snapshots get their own weighting and masking pass so the windowed
	// aligner sees the same per-dimension treatment as the merged vectors.
	var seqs map[*domain.Document]*domain.Document
	if s.cfg.Strategy == domain.AlignIndex && s.cfg.Rescore {
		var srcSeq, trgSeq []*domain.Document
		seqs, srcSeq, trgSeq = snapshotSequences(src, trg)
		if err := s.pre.RunSequences(srcSeq, trgSeq); err != nil {
			return nil, fmt.Errorf("preprocess sequences: %w", err)
		}
	}

	if err := s.pre.Run(src, trg); err != nil {
		return nil, fmt.Errorf("preprocess: %w", err)
	}

	s.logger.Info("aligning",
		zap.Stringer("strategy", s.cfg.Strategy),
		zap.Int("src_docs", len(src)), zap.Int("trg_docs", len(trg)))

	var res *Result
	var err error
	switch s.cfg.Strategy {
	case domain.AlignIndex:
		res, err = s.alignIndex(src, trg, seqs)
	default:
		res, err = s.alignPairwise(src, trg)
	}
	if err != nil {
		return nil, err
	}

	sort.SliceStable(res.Pairs, func(a, b int) bool { return res.Pairs[a].Score > res.Pairs[b].Score })
	return res, nil
}

// alignIndex runs the greedy 1:1 index matcher. The resulting pairs are
// already resolved; the result mode does not apply.
func (s *Service) alignIndex(src, trg []*domain.Document, seqs map[*domain.Document]*domain.Document) (*Result, error) {
	matcher := match.New(s.cfg.K, s.cfg.Threshold, s.logger)

	a, b := src, trg
	if s.cfg.Reverse {
		a, b = trg, src
	}
	pairs, err := matcher.Match(a, b)
	if err != nil {
		return nil, fmt.Errorf("index match: %w", err)
	}
	if s.cfg.Reverse {
		for i := range pairs {
			pairs[i].Source, pairs[i].Target = pairs[i].Target, pairs[i].Source
		}
	}

	if seqs == nil {
		return &Result{Pairs: pairs}, nil
	}
	return s.rescore(pairs, seqs)
}

// rescore replaces index match scores with windowed alignment scores
// computed over the preserved sentence sequences.
func (s *Service) rescore(pairs []domain.AlignedPair, seqs map[*domain.Document]*domain.Document) (*Result, error) {
	maxWindow := s.cfg.MaxWindow
	if maxWindow <= 0 || maxWindow > score.MaxWindowRescore {
		maxWindow = score.MaxWindowRescore
	}
	w := score.NewWindowScorer(maxWindow, s.cfg.AuditThreshold)

	res := &Result{Pairs: pairs[:0]}
	for _, p := range pairs {
		sd, td := seqs[p.Source], seqs[p.Target]
		if sd == nil || td == nil {
			return nil, fmt.Errorf("%w: no sentence sequence preserved for (%q, %q)",
				domain.ErrMissingInput, p.Source.ID(), p.Target.ID())
		}
		pairScore, matches, err := w.ScorePair(sd, td)
		if err != nil {
			return nil, fmt.Errorf("rescore (%q, %q): %w", p.Source.ID(), p.Target.ID(), err)
		}
		if s.cfg.Threshold >= 0 && pairScore < s.cfg.Threshold {
			continue
		}
		p.Score = pairScore
		res.Pairs = append(res.Pairs, p)
		if len(matches) > 0 {
			res.Audits = append(res.Audits, domain.PairAudit{
				Source: p.Source, Target: p.Target, PairScore: pairScore, Matches: matches,
			})
		}
	}
	return res, nil
}

// alignPairwise drives a pair scorer across the cross product and resolves
// the candidate pool by best match.
func (s *Service) alignPairwise(src, trg []*domain.Document) (*Result, error) {
	var scorer score.PairScorer
	switch s.cfg.Strategy {
	case domain.AlignEdit:
		scorer = score.NewEditScorer(false, score.NormFactor(src, trg))
	case domain.AlignEditFull:
		scorer = score.NewEditScorer(true, score.NormFactor(src, trg))
	case domain.AlignMerge:
		scorer = score.NewDistanceScorer()
	case domain.AlignWindow:
		maxWindow := s.cfg.MaxWindow
		if maxWindow <= 0 {
			maxWindow = score.MaxWindowStandard
		}
		scorer = score.NewWindowScorer(maxWindow, s.cfg.AuditThreshold)
	default:
		return nil, fmt.Errorf("%w: align strategy %d has no scorer", domain.ErrUnknownStrategy, s.cfg.Strategy)
	}

	opts := []score.Option{score.WithThreshold(s.cfg.Threshold)}
	if s.cfg.Heuristics {
		opts = append(opts, score.WithHeuristics(s.cfg.FilterFraction))
	}
	if s.cfg.BatchSize > 0 {
		opts = append(opts, score.WithBatchSize(s.cfg.BatchSize))
	}
	svc := score.New(s.cfg.Workers, s.logger, opts...)

	candidates, audits, err := svc.Score(src, trg, scorer)
	if err != nil {
		return nil, fmt.Errorf("pairwise score: %w", err)
	}

	pairs := resolve.New(s.cfg.Result, s.logger).Resolve(candidates)
	return &Result{Pairs: pairs, Audits: filterAudits(audits, pairs)}, nil
}

// filterAudits keeps only audit records whose pair survived resolution.
func filterAudits(audits []domain.PairAudit, pairs []domain.AlignedPair) []domain.PairAudit {
	if len(audits) == 0 {
		return nil
	}
	kept := make(map[[2]*domain.Document]bool, len(pairs))
	for _, p := range pairs {
		kept[[2]*domain.Document{p.Source, p.Target}] = true
	}
	var out []domain.PairAudit
	for _, a := range audits {
		if kept[[2]*domain.Document{a.Source, a.Target}] {
			out = append(out, a)
		}
	}
	return out
}

// snapshotSequences deep-copies the per-sentence state of every document
// before preprocessing replaces it, keyed by the original document. The
// vectors are copied too, so later in-place stages never alias into the
// snapshot.
func snapshotSequences(src, trg []*domain.Document) (map[*domain.Document]*domain.Document, []*domain.Document, []*domain.Document) {
	seqs := make(map[*domain.Document]*domain.Document, len(src)+len(trg))
	cloneAll := func(docs []*domain.Document) []*domain.Document {
		out := make([]*domain.Document, len(docs))
		for i, doc := range docs {
			clone := *doc
			clone.Embeddings = make([]domain.Vector, len(doc.Embeddings))
			for j, v := range doc.Embeddings {
				clone.Embeddings[j] = append(domain.Vector(nil), v...)
			}
			seqs[doc] = &clone
			out[i] = &clone
		}
		return out
	}
	return seqs, cloneAll(src), cloneAll(trg)
}
