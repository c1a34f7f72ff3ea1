package match

import "errors"

var (
	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrNoStrategies is returned when an engine is constructed with an
	// empty strategy list.
	ErrNoStrategies = errors.New("at least one matching strategy required")

	// ErrEmbeddingUnavailable indicates the embedding service failed to
	// compute a vector. It is deliberately distinct from an Unmatched
	// verdict: callers may degrade to lexical-only matching or surface a
	// service error, but must not treat it as a genuine non-match.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")
)
