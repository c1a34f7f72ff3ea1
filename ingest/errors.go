package ingest

import "errors"

var (
	// ErrFaqRepositoryRequired is returned when a FAQ repository is not provided.
	ErrFaqRepositoryRequired = errors.New("FAQ repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrEmbeddingMismatch is returned when the embedder returns a different
	// number of vectors than texts submitted.
	ErrEmbeddingMismatch = errors.New("embedding result mismatch")
)
