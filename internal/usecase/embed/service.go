// Package embed generates sentence embeddings for manifest documents and
// persists them to the embedding store.
package embed

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docalign/internal/domain"
	"github.com/kailas-cloud/docalign/internal/repository/embeddings"
	"github.com/kailas-cloud/docalign/internal/repository/manifest"
)

// Service embeds documents one side at a time. One sentence per input line;
// blank lines keep their position and embed as empty strings so sentence
// indexes stay aligned with the source text.
type Service struct {
	embedder  domain.BatchEmbedder
	batchSize int
	logger    *zap.Logger
}

// New creates an embedding generator sending up to batchSize sentences per
// provider request.
func New(embedder domain.BatchEmbedder, batchSize int, logger *zap.Logger) *Service {
	if batchSize <= 0 {
		batchSize = 64
	}
	return &Service{embedder: embedder, batchSize: batchSize, logger: logger}
}

// Run embeds every entry into a new embedding file at outPath. An existing
// file fails with ErrEmbeddingExists before any work is done.
func (s *Service) Run(ctx context.Context, entries []manifest.Entry, outPath string, side domain.Side) error {
	w, err := embeddings.NewWriter(outPath, s.logger)
	if err != nil {
		return err
	}
	done := false
	defer func() {
		if !done {
			_ = w.Close()
		}
	}()

	for _, e := range entries {
		if e.Path == "" {
			return fmt.Errorf("%w: entry %q has no path, cannot read document text", domain.ErrMissingInput, e.ID())
		}
		lines, err := readLines(e.Path)
		if err != nil {
			return fmt.Errorf("read %q: %w", e.Path, err)
		}

		vectors, err := s.embedLines(ctx, lines)
		if err != nil {
			return fmt.Errorf("embed %q: %w", e.ID(), err)
		}

		doc := &domain.Document{Path: e.Path, URL: e.URL, Side: side, Embeddings: vectors}
		if err := w.WriteDocument(doc, lines); err != nil {
			return err
		}
		s.logger.Debug("document embedded",
			zap.String("doc", e.ID()), zap.Int("sentences", len(lines)))
	}

	done = true
	return w.Close()
}

func (s *Service) embedLines(ctx context.Context, lines []string) ([]domain.Vector, error) {
	vectors := make([]domain.Vector, 0, len(lines))
	for start := 0; start < len(lines); start += s.batchSize {
		end := start + s.batchSize
		if end > len(lines) {
			end = len(lines)
		}
		res, err := s.embedder.BatchEmbed(ctx, lines[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, res.Embeddings...)
	}
	if len(vectors) != len(lines) {
		return nil, fmt.Errorf("embedded %d of %d sentences: %w",
			len(vectors), len(lines), domain.ErrEmbeddingProviderError)
	}
	return vectors, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}
