package main

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docalign/internal/config"
	"github.com/kailas-cloud/docalign/internal/domain"
	"github.com/kailas-cloud/docalign/internal/repository/embeddings"
)

// loadSide streams one side's embedding file into memory in bounded batches.
func loadSide(path string, side domain.Side, run config.RunConfig, logger *zap.Logger) ([]*domain.Document, error) {
	r, err := embeddings.NewReader(path, side, logger)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	if run.MaxLoadedVectors > 0 {
		r.SetVectorBudget(run.MaxLoadedVectors)
	}

	var docs []*domain.Document
	for {
		batch, err := r.Next(run.LoadBatchDocs)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("load %s side: %w", side, err)
		}
		docs = append(docs, batch...)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: embedding file %q holds no documents", domain.ErrMissingInput, path)
	}

	sanityCheck(docs, run.SanityCheckDocs, r.Dimension(), logger)
	logger.Info("side loaded",
		zap.String("side", string(side)), zap.Int("documents", len(docs)), zap.Int("dim", r.Dimension()))
	return docs, nil
}

// sanityCheck warns about suspicious shapes in the first n documents. Data
// quality problems never abort a run.
func sanityCheck(docs []*domain.Document, n, dim int, logger *zap.Logger) {
	if n > len(docs) {
		n = len(docs)
	}
	for _, doc := range docs[:n] {
		if len(doc.Embeddings) == 0 {
			logger.Warn("document has no sentence embeddings", zap.String("doc", doc.ID()))
			continue
		}
		if len(doc.Lines) > 0 && len(doc.Lines) != len(doc.Embeddings) {
			logger.Warn("sentence text and embedding counts differ",
				zap.String("doc", doc.ID()),
				zap.Int("lines", len(doc.Lines)), zap.Int("embeddings", len(doc.Embeddings)))
		}
		for i, v := range doc.Embeddings {
			if len(v) != dim {
				logger.Warn("sentence embedding has unexpected dimension",
					zap.String("doc", doc.ID()), zap.Int("sentence", i),
					zap.Int("dim", len(v)), zap.Int("expected", dim))
			}
		}
	}
}
