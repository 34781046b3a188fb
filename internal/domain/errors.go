package domain

import "errors"

var (
	// ErrDimensionMismatch signals an embedding/mask dimension mismatch.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrUnknownStrategy signals an unrecognized strategy name.
	ErrUnknownStrategy = errors.New("unknown strategy")
	// ErrMissingInput signals that a required input for the chosen strategy
	// was not provided.
	ErrMissingInput = errors.New("missing required input")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmbeddingOverload signals that loading embeddings exhausted memory;
	// the load batch size should be reduced.
	ErrEmbeddingOverload = errors.New("embedding load exceeded memory budget (reduce load_batch_docs)")
	// ErrEmbeddingExists signals that an embedding file already exists where
	// one would be generated.
	ErrEmbeddingExists = errors.New("embedding file already exists")
)
