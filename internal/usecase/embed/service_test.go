package embed

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docalign/internal/domain"
	"github.com/kailas-cloud/docalign/internal/repository/embeddings"
	"github.com/kailas-cloud/docalign/internal/repository/manifest"
)

// fakeEmbedder embeds each sentence as a vector of its byte length.
type fakeEmbedder struct {
	calls  int
	maxLen int
}

func (f *fakeEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	f.calls++
	if len(texts) > f.maxLen {
		f.maxLen = len(texts)
	}
	out := make([]domain.Vector, len(texts))
	for i, t := range texts {
		out[i] = domain.Vector{float32(len(t)), 1}
	}
	return domain.BatchEmbeddingResult{Embeddings: out}, nil
}

func writeDocFile(t *testing.T, dir, name string, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	docA := writeDocFile(t, dir, "a.txt", "hello world\nsecond line\n")
	docB := writeDocFile(t, dir, "b.txt", "one\n")
	out := filepath.Join(dir, "src.parquet")

	fe := &fakeEmbedder{}
	svc := New(fe, 64, zap.NewNop())
	entries := []manifest.Entry{
		{Path: docA, URL: "https://example.com/a", Side: domain.SideSource},
		{Path: docB, Side: domain.SideSource},
	}

	if err := svc.Run(context.Background(), entries, out, domain.SideSource); err != nil {
		t.Fatal(err)
	}

	r, err := embeddings.NewReader(out, domain.SideSource, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	docs, err := r.Next(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if len(docs[0].Embeddings) != 2 || len(docs[1].Embeddings) != 1 {
		t.Fatalf("sentence counts = %d, %d", len(docs[0].Embeddings), len(docs[1].Embeddings))
	}
	if docs[0].Embeddings[0][0] != float32(len("hello world")) {
		t.Errorf("vector does not reflect embedded text: %v", docs[0].Embeddings[0])
	}
	if docs[0].Lines[1] != "second line" {
		t.Errorf("sentence text not persisted: %v", docs[0].Lines)
	}
	if docs[0].URL != "https://example.com/a" {
		t.Errorf("URL not persisted: %q", docs[0].URL)
	}
	if _, err := r.Next(10); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestRun_BatchSizeRespected(t *testing.T) {
	dir := t.TempDir()
	doc := writeDocFile(t, dir, "a.txt", "a\nb\nc\nd\ne\n")
	out := filepath.Join(dir, "src.parquet")

	fe := &fakeEmbedder{}
	svc := New(fe, 2, zap.NewNop())
	entries := []manifest.Entry{{Path: doc, Side: domain.SideSource}}

	if err := svc.Run(context.Background(), entries, out, domain.SideSource); err != nil {
		t.Fatal(err)
	}
	if fe.calls != 3 {
		t.Errorf("5 sentences at batch size 2 should take 3 calls, got %d", fe.calls)
	}
	if fe.maxLen > 2 {
		t.Errorf("batch of %d exceeds configured size 2", fe.maxLen)
	}
}

func TestRun_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	doc := writeDocFile(t, dir, "a.txt", "x\n")
	out := filepath.Join(dir, "src.parquet")

	svc := New(&fakeEmbedder{}, 64, zap.NewNop())
	entries := []manifest.Entry{{Path: doc, Side: domain.SideSource}}

	if err := svc.Run(context.Background(), entries, out, domain.SideSource); err != nil {
		t.Fatal(err)
	}
	err := svc.Run(context.Background(), entries, out, domain.SideSource)
	if !errors.Is(err, domain.ErrEmbeddingExists) {
		t.Fatalf("expected ErrEmbeddingExists, got %v", err)
	}
}

func TestRun_RequiresPaths(t *testing.T) {
	out := filepath.Join(t.TempDir(), "src.parquet")
	svc := New(&fakeEmbedder{}, 64, zap.NewNop())
	entries := []manifest.Entry{{URL: "https://example.com/a", Side: domain.SideSource}}

	err := svc.Run(context.Background(), entries, out, domain.SideSource)
	if !errors.Is(err, domain.ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput for URL-only entry, got %v", err)
	}
}
