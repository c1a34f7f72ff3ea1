package match

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/poiesic/faqbot/ai"
	"github.com/poiesic/faqbot/core"
)

// DefaultSimilarityThreshold is the cosine-similarity gate for the semantic
// pass. The comparison is strict: a similarity of exactly 0.60 is rejected.
const DefaultSimilarityThreshold float32 = 0.60

// SemanticMatcher scores candidates by cosine similarity between the query
// embedding and each candidate question's embedding.
//
// Candidate vectors come from the record itself when the ingest pipeline has
// populated them; otherwise the matcher embeds the question on demand and
// caches the vector keyed by record id and normalized question text, so a
// record is re-embedded only when its question changes. The cache mutex is
// scoped to cache access; embedding calls run outside it.
type SemanticMatcher struct {
	embedder  ai.Embedder
	threshold float32
	logger    *slog.Logger

	mu    sync.Mutex
	cache map[core.ID]cachedVector
}

type cachedVector struct {
	normalized string
	vector     []float32
}

// SemanticOption configures a SemanticMatcher.
type SemanticOption func(*SemanticMatcher)

// WithSimilarityThreshold overrides the cosine-similarity gate.
func WithSimilarityThreshold(threshold float32) SemanticOption {
	return func(m *SemanticMatcher) {
		m.threshold = threshold
	}
}

// WithSemanticLogger sets a custom logger. Default is slog.Default().
func WithSemanticLogger(logger *slog.Logger) SemanticOption {
	return func(m *SemanticMatcher) {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
	}
}

// NewSemanticMatcher creates a semantic matcher backed by the given embedder.
func NewSemanticMatcher(embedder ai.Embedder, opts ...SemanticOption) (*SemanticMatcher, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	m := &SemanticMatcher{
		embedder:  embedder,
		threshold: DefaultSimilarityThreshold,
		logger:    slog.Default(),
		cache:     make(map[core.ID]cachedVector),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Name implements Strategy.
func (m *SemanticMatcher) Name() string { return "semantic" }

// Match embeds the query, resolves a vector for every candidate, and returns
// the highest-similarity candidate if it clears the threshold. Embedding
// failures are wrapped in ErrEmbeddingUnavailable and propagated; they are
// never reported as "no candidate".
func (m *SemanticMatcher) Match(ctx context.Context, query string, candidates []Candidate) (*core.MatchCandidate, error) {
	if query == "" || len(candidates) == 0 {
		return nil, nil
	}

	queryVector, err := m.embedder.EmbedText(ctx, query)
	if err != nil {
		m.logger.Error("error generating embedding for query", "err", err)
		return nil, fmt.Errorf("%w: query embedding: %w", ErrEmbeddingUnavailable, err)
	}

	vectors, err := m.candidateVectors(ctx, candidates)
	if err != nil {
		return nil, err
	}

	var best *core.MatchCandidate
	for i := range candidates {
		similarity := cosineSimilarity(queryVector, vectors[i])
		if best == nil || similarity > best.Score {
			best = &core.MatchCandidate{
				Record: candidates[i].Record,
				Score:  similarity,
				Method: core.MethodSemantic,
			}
		}
	}
	if best == nil || best.Score <= m.threshold {
		return nil, nil
	}

	m.logger.Debug("semantic pass accepted candidate",
		"record", best.Record.Id, "similarity", best.Score)
	return best, nil
}

// candidateVectors returns one vector per candidate, in candidate order.
// Records carrying a precomputed vector use it directly; the rest are served
// from the cache or batch-embedded on demand.
func (m *SemanticMatcher) candidateVectors(ctx context.Context, candidates []Candidate) ([][]float32, error) {
	vectors := make([][]float32, len(candidates))

	var missing []int
	m.mu.Lock()
	for i, candidate := range candidates {
		if len(candidate.Record.Vector) > 0 {
			vectors[i] = candidate.Record.Vector
			continue
		}
		if entry, ok := m.cache[candidate.Record.Id]; ok && entry.normalized == candidate.Normalized {
			vectors[i] = entry.vector
			continue
		}
		missing = append(missing, i)
	}
	m.mu.Unlock()

	if len(missing) == 0 {
		return vectors, nil
	}

	texts := make([]string, len(missing))
	for j, i := range missing {
		texts[j] = candidates[i].Record.Question
	}

	embedded, err := m.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		m.logger.Error("error generating embeddings for candidates", "count", len(texts), "err", err)
		return nil, fmt.Errorf("%w: candidate embeddings: %w", ErrEmbeddingUnavailable, err)
	}
	if len(embedded) != len(missing) {
		return nil, fmt.Errorf("%w: expected %d candidate embeddings, received %d",
			ErrEmbeddingUnavailable, len(missing), len(embedded))
	}

	m.mu.Lock()
	for j, i := range missing {
		vectors[i] = embedded[j]
		m.cache[candidates[i].Record.Id] = cachedVector{
			normalized: candidates[i].Normalized,
			vector:     embedded[j],
		}
	}
	m.mu.Unlock()

	return vectors, nil
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched or zero vectors score 0.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / float32(math.Sqrt(float64(normA))*math.Sqrt(float64(normB)))
}
