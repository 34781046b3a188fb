// Package embeddings persists sentence embeddings as parquet files, one row
// per sentence, grouped by document in row order.
package embeddings

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docalign/internal/domain"
	"github.com/kailas-cloud/docalign/internal/metrics"
)

// Row is the parquet schema: one sentence of one document. Documents are
// written contiguously with ascending sentence numbers, so readers can group
// by consecutive equal doc values.
type Row struct {
	Doc      string    `parquet:"doc"`
	URL      string    `parquet:"url,optional"`
	Sentence int32     `parquet:"sentence"`
	Text     string    `parquet:"text,optional"`
	Vector   []float32 `parquet:"vector"`
}

// Exists reports whether an embedding file is already present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Writer streams documents into a parquet embedding file.
type Writer struct {
	file   *os.File
	pw     *parquet.GenericWriter[Row]
	logger *zap.Logger
	docs   int
}

// NewWriter creates the embedding file, failing with ErrEmbeddingExists when
// one is already there.
func NewWriter(path string, logger *zap.Logger) (*Writer, error) {
	if Exists(path) {
		return nil, fmt.Errorf("%s: %w", path, domain.ErrEmbeddingExists)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create embedding dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create embedding file: %w", err)
	}
	return &Writer{
		file:   f,
		pw:     parquet.NewGenericWriter[Row](f),
		logger: logger,
	}, nil
}

// WriteDocument appends one row per sentence of the document.
func (w *Writer) WriteDocument(doc *domain.Document, lines []string) error {
	rows := make([]Row, len(doc.Embeddings))
	for i, vec := range doc.Embeddings {
		rows[i] = Row{
			Doc:      doc.Path,
			URL:      doc.URL,
			Sentence: int32(i),
			Vector:   vec,
		}
		if i < len(lines) {
			rows[i].Text = lines[i]
		}
	}
	if _, err := w.pw.Write(rows); err != nil {
		return fmt.Errorf("write %q rows: %w", doc.ID(), err)
	}
	w.docs++
	return nil
}

// Close flushes the parquet footer and closes the file.
func (w *Writer) Close() error {
	if err := w.pw.Close(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("close parquet writer: %w", err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("close embedding file: %w", err)
	}
	w.logger.Info("embedding file written", zap.String("path", w.file.Name()), zap.Int("documents", w.docs))
	return nil
}

// Reader streams documents out of a parquet embedding file in batches.
type Reader struct {
	file   *os.File
	pr     *parquet.GenericReader[Row]
	side   domain.Side
	logger *zap.Logger

	// stash holds rows already read from parquet but not yet folded into
	// documents, carried across batch boundaries.
	stash   []Row
	dim     int
	nextIdx int
	eof     bool
	budget  int
}

// SetVectorBudget caps how many sentence vectors a single batch may hold.
// Exceeding it fails the read with ErrEmbeddingOverload so the caller can
// retry with a smaller document batch.
func (r *Reader) SetVectorBudget(n int) { r.budget = n }

// NewReader opens an embedding file for the given side.
func NewReader(path string, side domain.Side, logger *zap.Logger) (*Reader, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open embedding file: %w", err)
	}
	return &Reader{
		file:   f,
		pr:     parquet.NewGenericReader[Row](f),
		side:   side,
		logger: logger,
	}, nil
}

// nextRow returns the next row, refilling the stash from parquet as needed.
// ok is false once the file is exhausted.
func (r *Reader) nextRow() (Row, bool, error) {
	for len(r.stash) == 0 {
		if r.eof {
			return Row{}, false, nil
		}
		buf := make([]Row, 256)
		n, err := r.pr.Read(buf)
		r.stash = append(r.stash, buf[:n]...)
		if err != nil {
			if errors.Is(err, io.EOF) {
				r.eof = true
				continue
			}
			return Row{}, false, fmt.Errorf("read embedding rows: %w", err)
		}
	}
	row := r.stash[0]
	r.stash = r.stash[1:]
	return row, true, nil
}

// Next returns up to maxDocs documents, io.EOF after the last batch.
// Every vector must share the dimensionality of the first one seen, else
// the read fails with ErrDimensionMismatch.
func (r *Reader) Next(maxDocs int) ([]*domain.Document, error) {
	if maxDocs <= 0 {
		maxDocs = 1
	}

	var docs []*domain.Document
	var cur *domain.Document
	var vectors int

	for {
		row, ok, err := r.nextRow()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}

		if r.dim == 0 {
			r.dim = len(row.Vector)
		} else if len(row.Vector) != r.dim {
			return nil, fmt.Errorf("%q sentence %d has dim %d, store has dim %d: %w",
				row.Doc, row.Sentence, len(row.Vector), r.dim, domain.ErrDimensionMismatch)
		}

		if cur == nil || cur.Path != row.Doc || cur.URL != row.URL {
			if len(docs) >= maxDocs {
				// Batch full: put the row back for the next call.
				r.stash = append([]Row{row}, r.stash...)
				break
			}
			cur = &domain.Document{
				Path:  row.Doc,
				URL:   row.URL,
				Index: r.nextIdx,
				Side:  r.side,
			}
			r.nextIdx++
			docs = append(docs, cur)
		}
		vectors++
		if r.budget > 0 && vectors > r.budget {
			return nil, fmt.Errorf("batch of %d documents: %w", len(docs), domain.ErrEmbeddingOverload)
		}
		cur.Embeddings = append(cur.Embeddings, domain.Vector(row.Vector))
		if row.Text != "" || len(cur.Lines) > 0 {
			// Pad for earlier blank sentences so Lines stays index-aligned
			// with Embeddings.
			for len(cur.Lines) < len(cur.Embeddings)-1 {
				cur.Lines = append(cur.Lines, "")
			}
			cur.Lines = append(cur.Lines, row.Text)
		}
	}

	if len(docs) == 0 {
		return nil, io.EOF
	}
	metrics.DocumentsLoaded.WithLabelValues(string(r.side)).Add(float64(len(docs)))
	return docs, nil
}

// Dimension returns the vector dimensionality seen so far (0 before the
// first read).
func (r *Reader) Dimension() int { return r.dim }

// Close closes the underlying file.
func (r *Reader) Close() error {
	_ = r.pr.Close()
	return r.file.Close()
}
