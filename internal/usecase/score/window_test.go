package score

import (
	"math"
	"testing"

	"github.com/kailas-cloud/docalign/internal/domain"
)

// diagDocs builds two 5-sentence documents where row i of one best matches
// row i of the other with similarity close to s, and everything off the
// diagonal scores lower.
func diagDocs(t *testing.T, s float64) (*domain.Document, *domain.Document) {
	t.Helper()
	src := &domain.Document{Path: "src"}
	trg := &domain.Document{Path: "trg"}
	// Unit vectors in 10 dims: src_i = e_{2i}, trg_i = cos(theta)*e_{2i} + sin(theta)*e_{2i+1}
	// giving Similarity(src_i, trg_i) = cos(theta) = s and 0 for i != j.
	sin := float32(math.Sqrt(1 - s*s))
	for i := 0; i < 5; i++ {
		a := make(domain.Vector, 10)
		b := make(domain.Vector, 10)
		a[2*i] = 1
		b[2*i] = float32(s)
		b[2*i+1] = sin
		src.Embeddings = append(src.Embeddings, a)
		trg.Embeddings = append(trg.Embeddings, b)
	}
	return src, trg
}

func TestWindowScorer_DiagonalMean(t *testing.T) {
	src, trg := diagDocs(t, 0.9)
	w := NewWindowScorer(MaxWindowStandard, -1)
	score, _, err := w.ScorePair(src, trg)
	if err != nil {
		t.Fatal(err)
	}
	// Window half-width (min 50) covers the whole 5-sentence sequence, so
	// every row contributes its diagonal best of 0.9.
	if math.Abs(score-0.9) > 1e-6 {
		t.Fatalf("document score = %f, want 0.9", score)
	}
}

func TestWindowScorer_AuditMatches(t *testing.T) {
	src, trg := diagDocs(t, 0.9)
	w := NewWindowScorer(MaxWindowStandard, 0.85)
	_, matches, err := w.ScorePair(src, trg)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 5 {
		t.Fatalf("expected 5 audit matches, got %d", len(matches))
	}
	for _, m := range matches {
		if m.SourceRow != m.TargetRow {
			t.Errorf("diagonal pair misaligned: %d vs %d", m.SourceRow, m.TargetRow)
		}
		if math.Abs(m.Score-0.9) > 1e-6 {
			t.Errorf("match score = %f, want 0.9", m.Score)
		}
	}
}

func TestWindowScorer_AuditThresholdCuts(t *testing.T) {
	src, trg := diagDocs(t, 0.8)
	w := NewWindowScorer(MaxWindowStandard, 0.85)
	_, matches, err := w.ScorePair(src, trg)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Fatalf("matches below threshold should be dropped, got %d", len(matches))
	}
}

func TestWindowScorer_SwappedOrientationRestored(t *testing.T) {
	// Target longer than source: rows internally index the target, but the
	// reported matches must stay in source/target orientation.
	src := &domain.Document{Path: "src", Embeddings: []domain.Vector{{1, 0}}}
	trg := &domain.Document{Path: "trg", Embeddings: []domain.Vector{{0, 1}, {1, 0}, {0.7, 0.7}}}

	w := NewWindowScorer(MaxWindowStandard, 0.5)
	_, matches, err := w.ScorePair(src, trg)
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range matches {
		if m.SourceRow != 0 {
			t.Errorf("source has one sentence, SourceRow = %d", m.SourceRow)
		}
		if m.TargetRow < 0 || m.TargetRow >= 3 {
			t.Errorf("TargetRow out of range: %d", m.TargetRow)
		}
	}
}

func TestWindowScorer_SkipsBlankSourceRows(t *testing.T) {
	src := &domain.Document{
		Path:  "src",
		Lines: []string{"real sentence", "   ", "another sentence"},
		Embeddings: []domain.Vector{
			{1, 0}, {0.5, 0.5}, {0, 1},
		},
	}
	trg := &domain.Document{
		Path:       "trg",
		Lines:      []string{"first", "second", "third"},
		Embeddings: []domain.Vector{{1, 0}, {0.5, 0.5}, {0, 1}},
	}

	w := NewWindowScorer(MaxWindowStandard, -1)
	score, _, err := w.ScorePair(src, trg)
	if err != nil {
		t.Fatal(err)
	}
	// Blank middle row is skipped; rows 0 and 2 both find a perfect match.
	if math.Abs(score-1) > 1e-6 {
		t.Fatalf("score = %f, want 1.0 over the two non-blank rows", score)
	}
}

func TestWindowScorer_EmptySequence(t *testing.T) {
	src := &domain.Document{Path: "src"}
	trg := &domain.Document{Path: "trg", Embeddings: []domain.Vector{{1, 0}}}
	w := NewWindowScorer(MaxWindowStandard, -1)
	score, matches, err := w.ScorePair(src, trg)
	if err != nil || score != 0 || matches != nil {
		t.Fatalf("empty sequence should score 0, got %f, %v, %v", score, matches, err)
	}
}
