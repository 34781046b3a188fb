// Package score drives a pair scorer across the source x target cross
// product with a bounded worker pool, optional heuristic pruning and a
// minimum-score cut.
package score

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docalign/internal/domain"
	"github.com/kailas-cloud/docalign/internal/metrics"
)

// Service distributes pairwise scoring work over a goroutine pool.
type Service struct {
	workers   int
	batchSize int
	threshold float64
	// heuristics enables the length pre-filter.
	heuristics     bool
	filterFraction float64
	logger         *zap.Logger
}

// Option tweaks the scorer service.
type Option func(*Service)

// WithHeuristics enables the length pre-filter with the given
// share-imbalance fraction (<= 0 selects the default 0.3).
func WithHeuristics(fraction float64) Option {
	return func(s *Service) {
		s.heuristics = true
		if fraction > 0 {
			s.filterFraction = fraction
		}
	}
}

// WithThreshold drops scored pairs below the given score.
func WithThreshold(threshold float64) Option {
	return func(s *Service) { s.threshold = threshold }
}

// WithBatchSize caps how many pending pairs are dispatched together
// (default: the worker count).
func WithBatchSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// New creates a pairwise scorer with the given pool size.
func New(workers int, logger *zap.Logger, opts ...Option) *Service {
	if workers <= 0 {
		workers = 1
	}
	s := &Service{
		workers:        workers,
		batchSize:      workers,
		threshold:      -1,
		filterFraction: defaultFilterFraction,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// task is one pair handed to a worker: read-only sequences plus the
// flattened row-major position used to restore ordering.
type task struct {
	flat     int
	src, trg *domain.Document
}

type taskResult struct {
	flat     int
	src, trg *domain.Document
	score    float64
	matches  []domain.SentenceMatch
	err      error
}

// Score walks the cross product row-major, dispatching batches of up to the
// configured batch size to the pool and blocking until each batch finishes
// before assembling the next. Results are restored to generation order
// within a batch, so the output is deterministic regardless of worker
// completion order. A scorer failure aborts the run; there is no
// partial-result recovery.
func (s *Service) Score(src, trg []*domain.Document, scorer PairScorer) ([]domain.Candidate, []domain.PairAudit, error) {
	tasks := make(chan task)
	results := make(chan taskResult, s.batchSize)
	defer close(tasks)

	for w := 0; w < s.workers; w++ {
		go func() {
			for t := range tasks {
				score, matches, err := scorer.ScorePair(t.src, t.trg)
				results <- taskResult{flat: t.flat, src: t.src, trg: t.trg, score: score, matches: matches, err: err}
			}
		}()
	}

	s.logger.Info("pairwise scoring",
		zap.Int("src_docs", len(src)), zap.Int("trg_docs", len(trg)),
		zap.Int("workers", s.workers), zap.Int("batch_size", s.batchSize),
		zap.Bool("heuristics", s.heuristics))

	var (
		candidates []domain.Candidate
		audits     []domain.PairAudit
		batch      []task
		pruned     int
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		start := time.Now()
		go func(batch []task) {
			for _, t := range batch {
				tasks <- t
			}
		}(batch)

		collected := make([]taskResult, 0, len(batch))
		for range batch {
			collected = append(collected, <-results)
		}
		// Workers finish out of order; fold in generation order.
		ordered := make([]taskResult, len(collected))
		base := batch[0].flat
		for _, r := range collected {
			if r.err != nil {
				return fmt.Errorf("score pair (%q, %q): %w", r.src.ID(), r.trg.ID(), r.err)
			}
			ordered[indexInBatch(batch, base, r.flat)] = r
		}

		for _, r := range ordered {
			if s.threshold >= 0 && r.score < s.threshold {
				continue
			}
			candidates = append(candidates, domain.Candidate{Source: r.src, Target: r.trg, Score: r.score})
			if len(r.matches) > 0 {
				audits = append(audits, domain.PairAudit{
					Source: r.src, Target: r.trg, PairScore: r.score, Matches: r.matches,
				})
			}
		}

		metrics.BatchesDispatched.Inc()
		metrics.BatchDuration.Observe(time.Since(start).Seconds())
		metrics.PairsScored.Add(float64(len(batch)))
		batch = batch[:0]
		return nil
	}

	for si, sd := range src {
		for ti, td := range trg {
			if s.heuristics && skipByLength(sd.SentenceCount(), td.SentenceCount(), s.filterFraction) {
				pruned++
				continue
			}
			batch = append(batch, task{flat: si*len(trg) + ti, src: sd, trg: td})
			if len(batch) >= s.batchSize {
				if err := flush(); err != nil {
					return nil, nil, err
				}
			}
		}
	}
	if err := flush(); err != nil {
		return nil, nil, err
	}

	if pruned > 0 {
		metrics.PairsPruned.Add(float64(pruned))
		s.logger.Info("length heuristic pruned pairs", zap.Int("pruned", pruned))
	}

	return candidates, audits, nil
}

// indexInBatch maps a flat pair index back to its position in the batch.
// Pruned pairs make flat indexes non-contiguous, so this scans.
func indexInBatch(batch []task, base, flat int) int {
	if i := flat - base; i >= 0 && i < len(batch) && batch[i].flat == flat {
		return i
	}
	for i, t := range batch {
		if t.flat == flat {
			return i
		}
	}
	return 0
}
