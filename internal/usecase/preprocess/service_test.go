package preprocess

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docalign/internal/domain"
)

func doc(lines []string, embeddings []domain.Vector) *domain.Document {
	return &domain.Document{Path: "/doc", Lines: lines, Embeddings: embeddings}
}

func TestRun_WeightingScalesEmbeddings(t *testing.T) {
	src := []*domain.Document{doc(
		[]string{"aaaa", "bbbb"},
		[]domain.Vector{{2, 2}, {4, 4}},
	)}
	svc := New(domain.WeightSentenceLength, domain.MergeNone, nil, false, zap.NewNop())
	if err := svc.Run(src, nil); err != nil {
		t.Fatal(err)
	}

	// Both sentences unique and equal length: weight 0.5 each.
	vecAlmostEqual(t, src[0].Embeddings[0], domain.Vector{1, 1})
	vecAlmostEqual(t, src[0].Embeddings[1], domain.Vector{2, 2})
}

func TestRun_WeightShapeMismatchSkipsDocument(t *testing.T) {
	// Two lines but three embeddings: weighting must skip this document
	// and leave its embeddings untouched.
	src := []*domain.Document{doc(
		[]string{"aaaa", "bbbb"},
		[]domain.Vector{{1, 1}, {1, 1}, {1, 1}},
	)}
	svc := New(domain.WeightSentenceLength, domain.MergeNone, nil, false, zap.NewNop())
	if err := svc.Run(src, nil); err != nil {
		t.Fatal(err)
	}
	vecAlmostEqual(t, src[0].Embeddings[0], domain.Vector{1, 1})
}

func TestRun_MergeCollapsesToSingleVector(t *testing.T) {
	src := []*domain.Document{doc(nil, []domain.Vector{{1, 0}, {3, 2}})}
	trg := []*domain.Document{doc(nil, []domain.Vector{{0, 4}, {2, 0}})}
	svc := New(domain.WeightNone, domain.MergeMean, nil, false, zap.NewNop())
	if err := svc.Run(src, trg); err != nil {
		t.Fatal(err)
	}

	if len(src[0].Embeddings) != 1 || len(trg[0].Embeddings) != 1 {
		t.Fatalf("merge should leave one vector per document")
	}
	vecAlmostEqual(t, src[0].Embeddings[0], domain.Vector{2, 1})
	vecAlmostEqual(t, trg[0].Embeddings[0], domain.Vector{1, 2})
}

func TestRun_MaskMultipliesElementwise(t *testing.T) {
	src := []*domain.Document{doc(nil, []domain.Vector{{1, 2, 3}})}
	svc := New(domain.WeightNone, domain.MergeNone, []float32{1, 0.5, 0}, false, zap.NewNop())
	if err := svc.Run(src, nil); err != nil {
		t.Fatal(err)
	}
	vecAlmostEqual(t, src[0].Embeddings[0], domain.Vector{1, 1, 0})
}

func TestRun_MaskZeroPruningDropsDimensions(t *testing.T) {
	src := []*domain.Document{doc(nil, []domain.Vector{{1, 2, 3}, {4, 5, 6}})}
	svc := New(domain.WeightNone, domain.MergeNone, []float32{1, 0, 1}, true, zap.NewNop())
	if err := svc.Run(src, nil); err != nil {
		t.Fatal(err)
	}
	vecAlmostEqual(t, src[0].Embeddings[0], domain.Vector{1, 3})
	vecAlmostEqual(t, src[0].Embeddings[1], domain.Vector{4, 6})
}

func TestRun_MaskDimensionMismatchIsFatal(t *testing.T) {
	src := []*domain.Document{doc(nil, []domain.Vector{{1, 2}})}
	svc := New(domain.WeightNone, domain.MergeNone, []float32{1, 1, 1}, false, zap.NewNop())
	err := svc.Run(src, nil)
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestRun_StageOrderWeightThenMergeThenMask(t *testing.T) {
	// weight 1.0 (single unique sentence), mean merge, then mask {1, 0}.
	src := []*domain.Document{doc([]string{"solo"}, []domain.Vector{{2, 6}})}
	svc := New(domain.WeightSentenceLength, domain.MergeMean, []float32{1, 0}, false, zap.NewNop())
	if err := svc.Run(src, nil); err != nil {
		t.Fatal(err)
	}
	if len(src[0].Embeddings) != 1 {
		t.Fatalf("expected merged single vector")
	}
	vecAlmostEqual(t, src[0].Embeddings[0], domain.Vector{2, 0})
}

func TestRunSequences_WeightsAndMasksWithoutMerging(t *testing.T) {
	// Merge is configured but must not apply: the sequences stay intact
	// while weighting (0.5 each, both sentences unique and equal length)
	// and the mask reach every sentence vector.
	src := []*domain.Document{doc(
		[]string{"aaaa", "bbbb"},
		[]domain.Vector{{2, 2}, {4, 4}},
	)}
	svc := New(domain.WeightSentenceLength, domain.MergeMean, []float32{1, 0}, false, zap.NewNop())
	if err := svc.RunSequences(src, nil); err != nil {
		t.Fatal(err)
	}

	if len(src[0].Embeddings) != 2 {
		t.Fatalf("sequences must keep all sentences, got %d vectors", len(src[0].Embeddings))
	}
	vecAlmostEqual(t, src[0].Embeddings[0], domain.Vector{1, 0})
	vecAlmostEqual(t, src[0].Embeddings[1], domain.Vector{2, 0})
}
