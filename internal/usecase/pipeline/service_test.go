package pipeline

import (
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docalign/internal/domain"
	"github.com/kailas-cloud/docalign/internal/usecase/preprocess"
)

func singleSentenceDoc(path string, v domain.Vector) *domain.Document {
	return &domain.Document{Path: path, Embeddings: []domain.Vector{v}}
}

func TestAlign_IndexIdentity(t *testing.T) {
	src := []*domain.Document{
		singleSentenceDoc("s0", domain.Vector{1, 0, 0}),
		singleSentenceDoc("s1", domain.Vector{0, 1, 0}),
	}
	trg := []*domain.Document{
		singleSentenceDoc("t0", domain.Vector{1, 0, 0}),
		singleSentenceDoc("t1", domain.Vector{0, 1, 0}),
	}

	pre := preprocess.New(domain.WeightNone, domain.MergeMean, nil, false, zap.NewNop())
	svc := New(Config{Strategy: domain.AlignIndex, K: 1, Threshold: -1}, pre, zap.NewNop())

	res, err := svc.Align(src, trg)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(res.Pairs))
	}
	for _, p := range res.Pairs {
		if math.Abs(p.Score-1) > 1e-6 {
			t.Errorf("identical vectors should score 1, got %f", p.Score)
		}
		if p.Source.Path[1:] != p.Target.Path[1:] {
			t.Errorf("mismatched pair (%s, %s)", p.Source.Path, p.Target.Path)
		}
	}
}

func TestAlign_IndexReverse(t *testing.T) {
	src := []*domain.Document{singleSentenceDoc("s0", domain.Vector{1, 0})}
	trg := []*domain.Document{singleSentenceDoc("t0", domain.Vector{1, 0})}

	pre := preprocess.New(domain.WeightNone, domain.MergeMean, nil, false, zap.NewNop())
	svc := New(Config{Strategy: domain.AlignIndex, K: 1, Reverse: true, Threshold: -1}, pre, zap.NewNop())

	res, err := svc.Align(src, trg)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(res.Pairs))
	}
	// Orientation restored after reversed matching.
	if res.Pairs[0].Source.Path != "s0" || res.Pairs[0].Target.Path != "t0" {
		t.Errorf("pair orientation wrong: (%s, %s)", res.Pairs[0].Source.Path, res.Pairs[0].Target.Path)
	}
}

func TestAlign_MergeStrategyIntersection(t *testing.T) {
	src := []*domain.Document{
		singleSentenceDoc("s0", domain.Vector{1, 0}),
		singleSentenceDoc("s1", domain.Vector{0.9, 0.1}),
	}
	trg := []*domain.Document{singleSentenceDoc("t0", domain.Vector{1, 0})}

	pre := preprocess.New(domain.WeightNone, domain.MergeMean, nil, false, zap.NewNop())
	svc := New(Config{
		Strategy:  domain.AlignMerge,
		Result:    domain.ResultIntersection,
		Workers:   2,
		Threshold: -1,
	}, pre, zap.NewNop())

	res, err := svc.Align(src, trg)
	if err != nil {
		t.Fatal(err)
	}
	// t0's best is s0 and s0's best is t0; s1 loses its only target.
	if len(res.Pairs) != 1 {
		t.Fatalf("expected 1 mutual pair, got %d", len(res.Pairs))
	}
	if res.Pairs[0].Source.Path != "s0" {
		t.Errorf("mutual best should be s0, got %s", res.Pairs[0].Source.Path)
	}
}

func TestAlign_WindowProducesAudits(t *testing.T) {
	src := []*domain.Document{{
		Path:       "s0",
		Lines:      []string{"one", "two"},
		Embeddings: []domain.Vector{{1, 0}, {0, 1}},
	}}
	trg := []*domain.Document{{
		Path:       "t0",
		Lines:      []string{"eins", "zwei"},
		Embeddings: []domain.Vector{{1, 0}, {0, 1}},
	}}

	pre := preprocess.New(domain.WeightNone, domain.MergeNone, nil, false, zap.NewNop())
	svc := New(Config{
		Strategy:       domain.AlignWindow,
		Workers:        1,
		Threshold:      -1,
		AuditThreshold: 0.9,
	}, pre, zap.NewNop())

	res, err := svc.Align(src, trg)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Pairs) != 1 || math.Abs(res.Pairs[0].Score-1) > 1e-6 {
		t.Fatalf("expected one perfect pair, got %v", res.Pairs)
	}
	if len(res.Audits) != 1 || len(res.Audits[0].Matches) != 2 {
		t.Fatalf("expected sentence-level audit matches, got %v", res.Audits)
	}
}

func TestAlign_RescoreReplacesScores(t *testing.T) {
	// Two-sentence documents: merged means match at 1.0, but the sequences
	// only agree on one of two rows, so the window rescore is 0.5.
	src := []*domain.Document{{
		Path:       "s0",
		Embeddings: []domain.Vector{{1, 0}, {0, 1}},
	}}
	trg := []*domain.Document{{
		Path:       "t0",
		Embeddings: []domain.Vector{{1, 0}, {0, -1}},
	}}

	pre := preprocess.New(domain.WeightNone, domain.MergeMax, nil, false, zap.NewNop())
	svc := New(Config{
		Strategy:       domain.AlignIndex,
		K:              1,
		Rescore:        true,
		Threshold:      -1,
		AuditThreshold: -1,
	}, pre, zap.NewNop())

	res, err := svc.Align(src, trg)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(res.Pairs))
	}
	// Row 0 matches at 1.0, row 1's best is 0 (antiparallel clips to 0).
	if math.Abs(res.Pairs[0].Score-0.5) > 1e-6 {
		t.Errorf("rescored pair = %f, want 0.5", res.Pairs[0].Score)
	}
}

func TestAlign_RescoreMasksSequences(t *testing.T) {
	// The mask zeroes the only live dimension. The preserved sequences must
	// get the same mask as the merged vectors, collapsing the rescore to 0;
	// unmasked sequences would still agree perfectly.
	src := []*domain.Document{singleSentenceDoc("s0", domain.Vector{0, 1})}
	trg := []*domain.Document{singleSentenceDoc("t0", domain.Vector{0, 1})}

	pre := preprocess.New(domain.WeightNone, domain.MergeMean, []float32{1, 0}, false, zap.NewNop())
	svc := New(Config{
		Strategy:       domain.AlignIndex,
		K:              1,
		Rescore:        true,
		Threshold:      -1,
		AuditThreshold: -1,
	}, pre, zap.NewNop())

	res, err := svc.Align(src, trg)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(res.Pairs))
	}
	if res.Pairs[0].Score != 0 {
		t.Errorf("rescored pair = %f, want 0 for fully masked sequences", res.Pairs[0].Score)
	}
}

func TestAlign_RescorePrunesMaskedDimensions(t *testing.T) {
	// Zero-pruning drops the masked dimension. The raw sequences are
	// orthogonal, but the surviving dimension agrees exactly, so a rescore
	// over correctly pruned sequences is 1.
	src := []*domain.Document{singleSentenceDoc("s0", domain.Vector{1, 1})}
	trg := []*domain.Document{singleSentenceDoc("t0", domain.Vector{1, -1})}

	pre := preprocess.New(domain.WeightNone, domain.MergeMean, []float32{1, 0}, true, zap.NewNop())
	svc := New(Config{
		Strategy:       domain.AlignIndex,
		K:              1,
		Rescore:        true,
		Threshold:      -1,
		AuditThreshold: -1,
	}, pre, zap.NewNop())

	res, err := svc.Align(src, trg)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(res.Pairs))
	}
	if math.Abs(res.Pairs[0].Score-1) > 1e-6 {
		t.Errorf("rescored pair = %f, want 1 over pruned sequences", res.Pairs[0].Score)
	}
}

func TestAlign_RankedDescending(t *testing.T) {
	src := []*domain.Document{
		singleSentenceDoc("s0", domain.Vector{1, 0}),
		singleSentenceDoc("s1", domain.Vector{0.5, 0.5}),
	}
	trg := []*domain.Document{
		singleSentenceDoc("t0", domain.Vector{1, 0}),
		singleSentenceDoc("t1", domain.Vector{0, 1}),
	}

	pre := preprocess.New(domain.WeightNone, domain.MergeMean, nil, false, zap.NewNop())
	svc := New(Config{Strategy: domain.AlignMerge, Workers: 2, Threshold: -1}, pre, zap.NewNop())

	res, err := svc.Align(src, trg)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(res.Pairs); i++ {
		if res.Pairs[i].Score > res.Pairs[i-1].Score {
			t.Fatal("pairs not ranked by descending score")
		}
	}
}
