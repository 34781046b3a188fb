package score

import (
	"strings"

	"github.com/kailas-cloud/docalign/internal/domain"
)

// Window half-width bounds. The half-width tracks the length difference of
// the two sequences, clamped below by minWindow and above by the
// configured maximum (300 when rescoring index matches, 150 standalone).
const (
	minWindow         = 50
	MaxWindowRescore  = 300
	MaxWindowStandard = 150
)

// WindowScorer scores a document pair by windowed local alignment: for
// every non-blank sentence of the longer sequence, the best similarity
// inside a bounded window around the diagonal is accumulated, and the pair
// score is the mean over counted rows.
type WindowScorer struct {
	maxWindow int
	// auditThreshold gates sentence-level matches recorded for audit
	// output; negative disables collection.
	auditThreshold float64
}

// NewWindowScorer creates a windowed aligner. Pass a negative
// auditThreshold to skip collecting sentence matches.
func NewWindowScorer(maxWindow int, auditThreshold float64) *WindowScorer {
	if maxWindow <= 0 {
		maxWindow = MaxWindowStandard
	}
	return &WindowScorer{maxWindow: maxWindow, auditThreshold: auditThreshold}
}

// ScorePair implements PairScorer. The longer sequence indexes rows
// internally; recorded matches are swapped back to source/target
// orientation before being returned.
func (w *WindowScorer) ScorePair(src, trg *domain.Document) (float64, []domain.SentenceMatch, error) {
	a, b := src, trg
	swapped := false
	if len(a.Embeddings) < len(b.Embeddings) {
		a, b = b, a
		swapped = true
	}

	n, m := len(a.Embeddings), len(b.Embeddings)
	if n == 0 || m == 0 {
		return 0, nil, nil
	}

	half := n - m
	if half < minWindow {
		half = minWindow
	}
	if half > w.maxWindow {
		half = w.maxWindow
	}

	var (
		sum     float64
		counted int
		matches []domain.SentenceMatch
	)

	row := make([]float64, m)
	for i := 0; i < n; i++ {
		if blankLine(a, i) {
			continue
		}

		bestCol, best := 0, -1.0
		for j := 0; j < m; j++ {
			row[j] = domain.Similarity(a.Embeddings[i], b.Embeddings[j])
			if row[j] > best {
				best, bestCol = row[j], j
			}
		}
		if blankLine(b, bestCol) {
			continue
		}

		lo, hi := i-half, i+half
		if lo < 0 {
			lo = 0
		}
		if hi >= m {
			hi = m - 1
		}
		if lo > hi {
			continue
		}

		windowMax := row[lo]
		for j := lo + 1; j <= hi; j++ {
			if row[j] > windowMax {
				windowMax = row[j]
			}
		}

		sum += windowMax
		counted++

		if w.auditThreshold >= 0 && windowMax >= w.auditThreshold {
			sm := domain.SentenceMatch{SourceRow: i, TargetRow: bestCol, Score: windowMax}
			if swapped {
				sm.SourceRow, sm.TargetRow = sm.TargetRow, sm.SourceRow
			}
			matches = append(matches, sm)
		}
	}

	if counted == 0 {
		return 0, nil, nil
	}
	return sum / float64(counted), matches, nil
}

// blankLine reports whether the document's i-th sentence is blank after
// trimming. Documents without raw text lines are never blank.
func blankLine(doc *domain.Document, i int) bool {
	if i >= len(doc.Lines) {
		return false
	}
	return strings.TrimSpace(doc.Lines[i]) == ""
}
