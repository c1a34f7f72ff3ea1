package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity
// matching. Implementations must be thread-safe for concurrent use; the
// engine shares one Embedder across all in-flight match requests.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text and
	// must be identical for identical input (no randomness, no dependence
	// on call order).
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// AIProvider owns the embedding service and its lifecycle.
// A provider is created once at startup; the Embedder it returns is treated
// as an immutable shared resource until Close is called.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
