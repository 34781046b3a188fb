// Package evaluate scores a produced alignment against a gold-standard pair
// list by recall and precision.
package evaluate

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docalign/internal/domain"
)

// Pair is one gold-standard alignment keyed by document identifiers.
type Pair struct {
	Source string
	Target string
}

// Report holds the evaluation outcome.
type Report struct {
	GoldPairs     int
	ProducedPairs int
	Correct       int
	Recall        float64
	Precision     float64
}

// LoadGold reads a gold-standard file: one "src<TAB>trg" identifier pair per
// line. Malformed lines are logged and skipped.
func LoadGold(path string, logger *zap.Logger) ([]Pair, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open gold file: %w", err)
	}
	defer f.Close()
	return ParseGold(f, logger)
}

// ParseGold parses gold pairs from r.
func ParseGold(r io.Reader, logger *zap.Logger) ([]Pair, error) {
	var pairs []Pair
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		src, trg, ok := strings.Cut(line, "\t")
		if !ok || strings.TrimSpace(src) == "" || strings.TrimSpace(trg) == "" {
			logger.Warn("skipping malformed gold line", zap.Int("line", lineNo))
			continue
		}
		pairs = append(pairs, Pair{Source: strings.TrimSpace(src), Target: strings.TrimSpace(trg)})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read gold file: %w", err)
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("gold file holds no usable pairs: %w", domain.ErrMissingInput)
	}
	return pairs, nil
}

// Evaluate compares produced pairs with the gold standard by document
// identifier. Duplicate gold pairs count once.
func Evaluate(produced []domain.AlignedPair, gold []Pair) Report {
	goldSet := make(map[Pair]bool, len(gold))
	for _, g := range gold {
		goldSet[g] = true
	}

	correct := 0
	for _, p := range produced {
		if goldSet[Pair{Source: p.Source.ID(), Target: p.Target.ID()}] {
			correct++
		}
	}

	rep := Report{
		GoldPairs:     len(goldSet),
		ProducedPairs: len(produced),
		Correct:       correct,
	}
	if rep.GoldPairs > 0 {
		rep.Recall = float64(correct) / float64(rep.GoldPairs)
	}
	if rep.ProducedPairs > 0 {
		rep.Precision = float64(correct) / float64(rep.ProducedPairs)
	}
	return rep
}
