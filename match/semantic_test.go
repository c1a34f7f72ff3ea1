package match

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/faqbot/ai/mock"
	"github.com/poiesic/faqbot/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vectorCandidates(vectors ...[]float32) []Candidate {
	records := make([]*core.FaqRecord, len(vectors))
	for i, v := range vectors {
		records[i] = &core.FaqRecord{
			Id:       core.ID(i + 1),
			Question: "stored question " + string(rune('a'+i)),
			Answer:   "answer",
			Vector:   v,
		}
	}
	return BuildCandidates(records)
}

func fixedQueryEmbedder(vector []float32) *mock.MockEmbedder {
	e := mock.NewMockEmbedder()
	e.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return vector, nil
	}
	return e
}

func TestNewSemanticMatcher(t *testing.T) {
	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewSemanticMatcher(nil)
		assert.Equal(t, ErrEmbedderRequired, err)
	})

	t.Run("valid embedder", func(t *testing.T) {
		m, err := NewSemanticMatcher(mock.NewMockEmbedder())
		require.NoError(t, err)
		assert.NotNil(t, m)
	})
}

func TestSemanticMatcher_SelectsHighestSimilarity(t *testing.T) {
	m, err := NewSemanticMatcher(fixedQueryEmbedder([]float32{1, 0}))
	require.NoError(t, err)

	candidates := vectorCandidates(
		[]float32{0.5, 0.9}, // similarity ~0.49
		[]float32{9, 1},     // similarity ~0.99
		[]float32{0, 1},     // orthogonal
	)

	c, err := m.Match(context.Background(), "query", candidates)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, candidates[1].Record.Id, c.Record.Id)
	assert.Equal(t, core.MethodSemantic, c.Method)
	assert.Greater(t, c.Score, float32(0.60))
}

func TestSemanticMatcher_ThresholdBoundary(t *testing.T) {
	m, err := NewSemanticMatcher(fixedQueryEmbedder([]float32{1, 0}))
	require.NoError(t, err)

	t.Run("similarity of exactly 0.60 is rejected", func(t *testing.T) {
		// cos([1,0],[3,4]) = 3/5 = 0.60: the gate is strict.
		c, err := m.Match(context.Background(), "query", vectorCandidates([]float32{3, 4}))
		require.NoError(t, err)
		assert.Nil(t, c)
	})

	t.Run("similarity just above 0.60 is accepted", func(t *testing.T) {
		// cos([1,0],[13,16]) ~= 0.63
		c, err := m.Match(context.Background(), "query", vectorCandidates([]float32{13, 16}))
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Greater(t, c.Score, float32(0.60))
	})
}

func TestSemanticMatcher_TieBreakFirstSeen(t *testing.T) {
	m, err := NewSemanticMatcher(fixedQueryEmbedder([]float32{1, 0}))
	require.NoError(t, err)

	// Identical vectors score identically; snapshot order decides.
	candidates := vectorCandidates(
		[]float32{4, 3},
		[]float32{4, 3},
	)

	c, err := m.Match(context.Background(), "query", candidates)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, candidates[0].Record.Id, c.Record.Id)
}

func TestSemanticMatcher_DegenerateInputs(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	m, err := NewSemanticMatcher(embedder)
	require.NoError(t, err)

	t.Run("empty query", func(t *testing.T) {
		c, err := m.Match(context.Background(), "", vectorCandidates([]float32{1, 0}))
		require.NoError(t, err)
		assert.Nil(t, c)
	})

	t.Run("empty candidate list", func(t *testing.T) {
		c, err := m.Match(context.Background(), "query", nil)
		require.NoError(t, err)
		assert.Nil(t, c)
	})

	// Neither degenerate input should have reached the embedder.
	assert.Zero(t, embedder.CallCount())
}

func TestSemanticMatcher_EmbeddingFailurePropagates(t *testing.T) {
	embedFailure := errors.New("model server unreachable")

	t.Run("query embedding fails", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return nil, embedFailure
		}
		m, err := NewSemanticMatcher(embedder)
		require.NoError(t, err)

		_, err = m.Match(context.Background(), "query", vectorCandidates([]float32{1, 0}))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEmbeddingUnavailable)
		assert.ErrorIs(t, err, embedFailure)
	})

	t.Run("candidate embedding fails", func(t *testing.T) {
		embedder := fixedQueryEmbedder([]float32{1, 0})
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, embedFailure
		}
		m, err := NewSemanticMatcher(embedder)
		require.NoError(t, err)

		// A candidate without a precomputed vector forces a batch embed.
		records := []*core.FaqRecord{{Id: 1, Question: "unembedded question", Answer: "a"}}
		_, err = m.Match(context.Background(), "query", BuildCandidates(records))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEmbeddingUnavailable)
	})
}

func TestSemanticMatcher_CachesOnDemandEmbeddings(t *testing.T) {
	batchCalls := 0
	embedder := fixedQueryEmbedder([]float32{1, 0})
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		batchCalls++
		vectors := make([][]float32, len(texts))
		for i := range texts {
			vectors[i] = []float32{1, 0}
		}
		return vectors, nil
	}

	m, err := NewSemanticMatcher(embedder)
	require.NoError(t, err)

	records := []*core.FaqRecord{{Id: 7, Question: "Library Timings?", Answer: "a"}}
	candidates := BuildCandidates(records)

	for i := 0; i < 3; i++ {
		c, err := m.Match(context.Background(), "query", candidates)
		require.NoError(t, err)
		require.NotNil(t, c)
	}
	assert.Equal(t, 1, batchCalls, "candidate should be embedded once and cached")

	// Changing the question text invalidates the cached vector.
	records[0].Question = "New Library Timings?"
	candidates = BuildCandidates(records)
	_, err = m.Match(context.Background(), "query", candidates)
	require.NoError(t, err)
	assert.Equal(t, 2, batchCalls)
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float32
	}{
		{"identical unit vectors", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"scale invariant", []float32{1, 0}, []float32{5, 0}, 1},
		{"mismatched lengths", []float32{1, 0}, []float32{1}, 0},
		{"zero vector", []float32{1, 0}, []float32{0, 0}, 0},
		{"empty vectors", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, cosineSimilarity(tt.a, tt.b), 1e-6)
		})
	}
}
