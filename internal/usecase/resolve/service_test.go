package resolve

import (
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docalign/internal/domain"
)

func doc(path string) *domain.Document {
	return &domain.Document{Path: path}
}

func pool() []domain.Candidate {
	a, b := doc("a"), doc("b")
	x, y := doc("x"), doc("y")
	// a's best is x; x's best is a. b's best is x too, but x prefers a.
	// y's best is b.
	return []domain.Candidate{
		{Source: a, Target: x, Score: 0.9},
		{Source: a, Target: y, Score: 0.3},
		{Source: b, Target: x, Score: 0.7},
		{Source: b, Target: y, Score: 0.6},
	}
}

func TestResolve_Union(t *testing.T) {
	s := New(domain.ResultUnion, zap.NewNop())
	pairs := s.Resolve(pool())

	// Best-by-source: (a,x), (b,x). Best-by-target: (a,x), (b,y).
	want := map[string]float64{"a/x": 0.9, "b/x": 0.7, "b/y": 0.6}
	if len(pairs) != len(want) {
		t.Fatalf("union size = %d, want %d", len(pairs), len(want))
	}
	for _, p := range pairs {
		key := p.Source.ID() + "/" + p.Target.ID()
		if want[key] != p.Score {
			t.Errorf("unexpected pair %s score %f", key, p.Score)
		}
	}
	// Sorted by score descending.
	for i := 1; i < len(pairs); i++ {
		if pairs[i].Score > pairs[i-1].Score {
			t.Fatal("pairs not sorted by score descending")
		}
	}
}

func TestResolve_Intersection(t *testing.T) {
	s := New(domain.ResultIntersection, zap.NewNop())
	pairs := s.Resolve(pool())

	// Only (a,x) is mutual: b's best is x but x prefers a, and y's best is
	// b while b prefers x.
	if len(pairs) != 1 {
		t.Fatalf("intersection size = %d, want 1", len(pairs))
	}
	if pairs[0].Source.ID() != "a" || pairs[0].Target.ID() != "x" {
		t.Errorf("intersection kept (%s, %s)", pairs[0].Source.ID(), pairs[0].Target.ID())
	}
}

func TestResolve_IntersectionSubsetOfUnion(t *testing.T) {
	union := New(domain.ResultUnion, zap.NewNop()).Resolve(pool())
	inter := New(domain.ResultIntersection, zap.NewNop()).Resolve(pool())

	inUnion := make(map[string]bool)
	for _, p := range union {
		inUnion[p.Source.ID()+"/"+p.Target.ID()] = true
	}
	for _, p := range inter {
		if !inUnion[p.Source.ID()+"/"+p.Target.ID()] {
			t.Errorf("intersection pair (%s, %s) missing from union", p.Source.ID(), p.Target.ID())
		}
	}
}

func TestResolve_TiesKeepFirst(t *testing.T) {
	a := doc("a")
	x, y := doc("x"), doc("y")
	candidates := []domain.Candidate{
		{Source: a, Target: x, Score: 0.5},
		{Source: a, Target: y, Score: 0.5},
	}

	pairs := New(domain.ResultIntersection, zap.NewNop()).Resolve(candidates)
	if len(pairs) != 1 || pairs[0].Target.ID() != "x" {
		t.Fatalf("equal scores should keep the earlier candidate, got %v", pairs)
	}
}

func TestResolve_EmptyPool(t *testing.T) {
	if got := New(domain.ResultUnion, zap.NewNop()).Resolve(nil); got != nil {
		t.Errorf("empty pool should resolve to nil, got %v", got)
	}
}

func TestPassthrough(t *testing.T) {
	candidates := pool()
	pairs := Passthrough(candidates)
	if len(pairs) != len(candidates) {
		t.Fatalf("passthrough changed the pair count: %d", len(pairs))
	}
	for i, p := range pairs {
		if p.Source != candidates[i].Source || p.Score != candidates[i].Score {
			t.Errorf("pair %d does not mirror its candidate", i)
		}
	}
}
