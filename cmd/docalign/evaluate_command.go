package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docalign/internal/domain"
	"github.com/kailas-cloud/docalign/internal/usecase/evaluate"
)

func newEvaluateCommand(cctx *commandContext) *cobra.Command {
	var (
		goldPath      string
		alignmentPath string
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score an alignment against a gold-standard pair list",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := cctx.logger

			gold, err := evaluate.LoadGold(goldPath, logger)
			if err != nil {
				return err
			}
			produced, err := readAlignment(alignmentPath, logger)
			if err != nil {
				return err
			}

			rep := evaluate.Evaluate(produced, gold)
			logger.Info("evaluation finished",
				zap.Int("gold_pairs", rep.GoldPairs),
				zap.Int("produced_pairs", rep.ProducedPairs),
				zap.Int("correct", rep.Correct),
				zap.Float64("recall", rep.Recall),
				zap.Float64("precision", rep.Precision))

			fmt.Fprintf(cmd.OutOrStdout(),
				"gold: %d\nproduced: %d\ncorrect: %d\nrecall: %.4f\nprecision: %.4f\n",
				rep.GoldPairs, rep.ProducedPairs, rep.Correct, rep.Recall, rep.Precision)
			return nil
		},
	}

	cmd.Flags().StringVar(&goldPath, "gold", "", "Gold-standard pair file (src<TAB>trg)")
	cmd.Flags().StringVar(&alignmentPath, "alignment", "", "Alignment output file produced by the align command")

	_ = cmd.MarkFlagRequired("gold")
	_ = cmd.MarkFlagRequired("alignment")

	return cmd
}

// readAlignment parses an alignment output file back into pairs. The header
// line and a trailing score column are tolerated.
func readAlignment(path string, logger *zap.Logger) ([]domain.AlignedPair, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open alignment file: %w", err)
	}
	defer f.Close()

	var pairs []domain.AlignedPair
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if lineNo == 1 && fields[0] == "src" {
			continue
		}
		if len(fields) < 2 {
			logger.Warn("skipping malformed alignment line", zap.Int("line", lineNo))
			continue
		}
		pairs = append(pairs, domain.AlignedPair{
			Source: &domain.Document{Path: fields[0]},
			Target: &domain.Document{Path: fields[1]},
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read alignment file: %w", err)
	}
	return pairs, nil
}
