package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docalign/internal/domain"
	"github.com/kailas-cloud/docalign/internal/metrics"
	"github.com/kailas-cloud/docalign/internal/repository/manifest"
	"github.com/kailas-cloud/docalign/internal/usecase/pipeline"
	"github.com/kailas-cloud/docalign/internal/usecase/preprocess"
)

func newAlignCommand(cctx *commandContext) *cobra.Command {
	var (
		srcPath      string
		trgPath      string
		manifestPath string
		outputPath   string
		auditPath    string
		withScores   bool
		outputURLs   bool
		outputIdx    bool
		metricsAddr  string

		strategy  string
		weights   string
		merge     string
		result    string
		k         int
		reverse   bool
		rescore   bool
		threshold float64
		workers   int
		heuristic bool
	)

	cmd := &cobra.Command{
		Use:   "align",
		Short: "Align two embedded document collections",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *cctx.cfg
			logger := cctx.logger

			// Flags override the environment config.
			flagOverride := map[string]func(){
				"strategy":   func() { cfg.Align.Strategy = strategy },
				"weights":    func() { cfg.Align.Weights = weights },
				"merge":      func() { cfg.Align.Merge = merge },
				"result":     func() { cfg.Align.Result = result },
				"k":          func() { cfg.Align.K = k },
				"reverse":    func() { cfg.Align.Reverse = reverse },
				"rescore":    func() { cfg.Align.Rescore = rescore },
				"threshold":  func() { cfg.Align.Threshold = threshold },
				"workers":    func() { cfg.Run.Workers = workers },
				"heuristics": func() { cfg.Align.Heuristics = heuristic },
			}
			for name, apply := range flagOverride {
				if cmd.Flags().Changed(name) {
					apply()
				}
			}
			if cmd.Flags().Changed("strategy") && !cmd.Flags().Changed("merge") {
				// Re-derive the merge default for the overridden strategy.
				cfg.Align.Merge = ""
				cfg.ApplyDefaults()
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if metricsAddr == "" {
				metricsAddr = cfg.Metrics.Addr
			}

			metrics.Register()
			if metricsAddr != "" {
				shutdown := metrics.Serve(metricsAddr, logger)
				defer func() {
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					shutdown(ctx)
				}()
			}

			start := time.Now()
			src, err := loadSide(srcPath, domain.SideSource, cfg.Run, logger)
			if err != nil {
				return err
			}
			trg, err := loadSide(trgPath, domain.SideTarget, cfg.Run, logger)
			if err != nil {
				return err
			}

			if manifestPath != "" {
				m, err := manifest.Load(manifestPath, logger)
				if err != nil {
					return err
				}
				if len(m.Source) != len(src) || len(m.Target) != len(trg) {
					logger.Warn("manifest and embedding store disagree on document counts",
						zap.Int("manifest_src", len(m.Source)), zap.Int("loaded_src", len(src)),
						zap.Int("manifest_trg", len(m.Target)), zap.Int("loaded_trg", len(trg)))
				}
			}

			if cfg.Align.ParsedWeights != domain.WeightNone && !anyHasLines(src) && !anyHasLines(trg) {
				return fmt.Errorf("%w: weighting %q needs sentence text, none stored with the embeddings",
					domain.ErrMissingInput, cfg.Align.Weights)
			}

			pre := preprocess.New(cfg.Align.ParsedWeights, cfg.Align.ParsedMerge,
				cfg.Align.Mask, cfg.Align.PruneZero, logger)
			svc := pipeline.New(pipeline.Config{
				Strategy:       cfg.Align.ParsedStrategy,
				Result:         cfg.Align.ParsedResult,
				K:              cfg.Align.K,
				Reverse:        cfg.Align.Reverse,
				Rescore:        cfg.Align.Rescore,
				MaxWindow:      cfg.Align.MaxWindow,
				AuditThreshold: auditThreshold(auditPath, cfg.Align.AuditThreshold),
				Workers:        cfg.Run.Workers,
				Heuristics:     cfg.Align.Heuristics,
				FilterFraction: cfg.Align.FilterFraction,
				Threshold:      cfg.Align.Threshold,
			}, pre, logger)

			res, err := svc.Align(src, trg)
			if err != nil {
				return err
			}

			mode := idPath
			if outputURLs {
				mode = idURL
			}
			if outputIdx {
				mode = idIndex
			}

			out, err := openOutput(outputPath)
			if err != nil {
				return err
			}
			if err := writeAlignments(out, res.Pairs, mode, withScores); err != nil {
				_ = out.Close()
				return fmt.Errorf("write alignments: %w", err)
			}
			if err := out.Close(); err != nil {
				return err
			}

			if auditPath != "" && len(res.Audits) > 0 {
				aw, err := openOutput(auditPath)
				if err != nil {
					return err
				}
				if err := writeAudits(aw, res.Audits, mode); err != nil {
					_ = aw.Close()
					return fmt.Errorf("write audit output: %w", err)
				}
				if err := aw.Close(); err != nil {
					return err
				}
			}

			logger.Info("alignment finished",
				zap.Int("pairs", len(res.Pairs)),
				zap.Int("audited_pairs", len(res.Audits)),
				zap.Duration("elapsed", time.Since(start)))
			return nil
		},
	}

	cmd.Flags().StringVar(&srcPath, "src", "", "Source-side embedding file (parquet)")
	cmd.Flags().StringVar(&trgPath, "trg", "", "Target-side embedding file (parquet)")
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "Optional document manifest for cross-checking")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "-", "Alignment output file, '-' for stdout")
	cmd.Flags().StringVar(&auditPath, "audit", "", "Sentence-level audit output file (window/rescore paths)")
	cmd.Flags().BoolVar(&withScores, "scores", false, "Include scores in the output")
	cmd.Flags().BoolVar(&outputURLs, "output-urls", false, "Identify documents by URL")
	cmd.Flags().BoolVar(&outputIdx, "output-indexes", false, "Identify documents by 1-based index")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve /metrics and /healthz on this address during the run")

	cmd.Flags().StringVar(&strategy, "strategy", "", "Alignment strategy: index, edit, edit-full, merge, window")
	cmd.Flags().StringVar(&weights, "weights", "", "Weighting: none, sentence-length, idf, combined")
	cmd.Flags().StringVar(&merge, "merge", "", "Merging: none, mean, median, max, max-split-3, iterative-mean")
	cmd.Flags().StringVar(&result, "result", "", "Result mode: union, intersection")
	cmd.Flags().IntVar(&k, "k", 0, "Neighbourhood size for the index strategy")
	cmd.Flags().BoolVar(&reverse, "reverse", false, "Index the target side and query with sources")
	cmd.Flags().BoolVar(&rescore, "rescore", false, "Re-score index matches with the windowed aligner")
	cmd.Flags().Float64Var(&threshold, "threshold", -1, "Minimum pair score, negative to disable")
	cmd.Flags().IntVar(&workers, "workers", 0, "Worker pool size")
	cmd.Flags().BoolVar(&heuristic, "heuristics", false, "Enable the sentence-count pre-filter")

	_ = cmd.MarkFlagRequired("src")
	_ = cmd.MarkFlagRequired("trg")

	return cmd
}

func anyHasLines(docs []*domain.Document) bool {
	for _, d := range docs {
		if len(d.Lines) > 0 {
			return true
		}
	}
	return false
}

// auditThreshold disables sentence-match collection when no audit output
// was requested.
func auditThreshold(auditPath string, threshold float64) float64 {
	if auditPath == "" {
		return -1
	}
	return threshold
}
