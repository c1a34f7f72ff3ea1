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

func faq(question, answer string, vector []float32) *core.FaqRecord {
	return &core.FaqRecord{
		Id:       core.IDFromQuestion(question),
		Question: question,
		Answer:   answer,
		Vector:   vector,
	}
}

// orthogonalProvider embeds every query orthogonally to all stored vectors,
// so the semantic pass can never fire.
func orthogonalProvider() *mock.MockEmbedder {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{0, 0, 1}, nil
	}
	return embedder
}

func TestNewEngine(t *testing.T) {
	t.Run("nil provider", func(t *testing.T) {
		_, err := NewEngine(nil)
		assert.Equal(t, ErrAIProviderRequired, err)
	})

	t.Run("default strategies", func(t *testing.T) {
		engine, err := NewEngine(mock.NewMockProvider())
		require.NoError(t, err)
		assert.NotNil(t, engine)
	})

	t.Run("empty strategy list rejected", func(t *testing.T) {
		_, err := NewEngine(mock.NewMockProvider(), WithStrategies())
		assert.Equal(t, ErrNoStrategies, err)
	})

	t.Run("with custom logger", func(t *testing.T) {
		engine, err := NewEngine(mock.NewMockProvider(), WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, engine)
	})
}

func TestEngine_EmptySnapshot(t *testing.T) {
	engine, err := NewEngine(mock.NewMockProvider())
	require.NoError(t, err)

	verdict, err := engine.Match(context.Background(), "any question at all", nil)
	require.NoError(t, err)
	assert.False(t, verdict.Matched)
	assert.Nil(t, verdict.Record)
}

func TestEngine_EmptyQuery(t *testing.T) {
	engine, err := NewEngine(mock.NewMockProvider())
	require.NoError(t, err)

	snapshot := []*core.FaqRecord{
		faq("Are laptops allowed in class?", "Yes, if permitted by the faculty.", []float32{1, 0, 0}),
	}

	verdict, err := engine.Match(context.Background(), "   ", snapshot)
	require.NoError(t, err)
	assert.False(t, verdict.Matched)
}

func TestEngine_LexicalMatchScenario(t *testing.T) {
	engine, err := NewEngine(mock.NewMockProviderWithEmbedder(orthogonalProvider()))
	require.NoError(t, err)

	snapshot := []*core.FaqRecord{
		faq("Are laptops allowed in class?", "Yes, if permitted by the faculty.", []float32{1, 0, 0}),
	}

	verdict, err := engine.Match(context.Background(), "are laptops allowed?", snapshot)
	require.NoError(t, err)
	require.True(t, verdict.Matched)
	assert.Equal(t, "Yes, if permitted by the faculty.", verdict.Record.Answer)
	assert.Equal(t, core.MethodLexicalPartial, verdict.Method)
	assert.GreaterOrEqual(t, verdict.Score, float32(70))
}

func TestEngine_UnmatchedScenario(t *testing.T) {
	engine, err := NewEngine(mock.NewMockProviderWithEmbedder(orthogonalProvider()))
	require.NoError(t, err)

	snapshot := []*core.FaqRecord{
		faq("Are laptops allowed in class?", "Yes, if permitted by the faculty.", []float32{1, 0, 0}),
	}

	verdict, err := engine.Match(context.Background(), "what is the exam timing?", snapshot)
	require.NoError(t, err)
	assert.False(t, verdict.Matched)
	assert.Nil(t, verdict.Record)
}

func TestEngine_SemanticFallbackScenario(t *testing.T) {
	// "library hours" has no strong lexical overlap with either stored
	// question, so both lexical passes must fail before the semantic pass
	// resolves against the closer embedding.
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}

	engine, err := NewEngine(mock.NewMockProviderWithEmbedder(embedder))
	require.NoError(t, err)

	snapshot := []*core.FaqRecord{
		faq("library timings", "Open 9am to 8pm on weekdays.", []float32{0.9, 0.4, 0.2}),
		faq("when does the library open", "Doors open at 9am.", []float32{0.99, 0.14, 0}),
	}

	verdict, err := engine.Match(context.Background(), "library hours", snapshot)
	require.NoError(t, err)
	require.True(t, verdict.Matched)
	assert.Equal(t, core.MethodSemantic, verdict.Method)
	assert.Equal(t, "when does the library open", verdict.Record.Question)
	assert.Greater(t, verdict.Score, float32(0.60))
}

func TestEngine_Deterministic(t *testing.T) {
	engine, err := NewEngine(mock.NewMockProvider())
	require.NoError(t, err)

	snapshot := []*core.FaqRecord{
		faq("Are laptops allowed in class?", "Yes, if permitted by the faculty.", []float32{1, 0, 0}),
		faq("Where can I check the academic calendar?", "On the college website.", []float32{0, 1, 0}),
	}

	first, err := engine.Match(context.Background(), "are laptops allowed?", snapshot)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := engine.Match(context.Background(), "are laptops allowed?", snapshot)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestEngine_EmbeddingFailureSurfacesAsError(t *testing.T) {
	embedFailure := errors.New("model server down")
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, embedFailure
	}

	engine, err := NewEngine(mock.NewMockProviderWithEmbedder(embedder))
	require.NoError(t, err)

	snapshot := []*core.FaqRecord{
		faq("Are laptops allowed in class?", "Yes, if permitted by the faculty.", []float32{1, 0, 0}),
	}

	// No lexical overlap, so the engine reaches the semantic pass and must
	// report the failure instead of an Unmatched verdict.
	verdict, err := engine.Match(context.Background(), "completely unrelated words", snapshot)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmbeddingUnavailable)
	assert.False(t, verdict.Matched)
}

func TestEngine_LexicalOnlyStrategyList(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	engine, err := NewEngine(mock.NewMockProviderWithEmbedder(embedder),
		WithStrategies(NewLexicalMatcher()))
	require.NoError(t, err)

	snapshot := []*core.FaqRecord{
		faq("Are laptops allowed in class?", "Yes, if permitted by the faculty.", nil),
	}

	verdict, err := engine.Match(context.Background(), "what is the exam timing?", snapshot)
	require.NoError(t, err)
	assert.False(t, verdict.Matched)
	assert.Zero(t, embedder.CallCount(), "semantic strategy should never be consulted")
}

// recordingMonitor captures monitor callbacks for assertions.
type recordingMonitor struct {
	started    string
	query      string
	candidates int
	strategies []string
	finished   *core.MatchVerdict
}

func (r *recordingMonitor) Start(rawQuery string) { r.started = rawQuery }
func (r *recordingMonitor) AfterNormalize(query string, candidateCount int) {
	r.query = query
	r.candidates = candidateCount
}
func (r *recordingMonitor) AfterStrategy(name string, _ *core.MatchCandidate) {
	r.strategies = append(r.strategies, name)
}
func (r *recordingMonitor) Finish(verdict core.MatchVerdict) { r.finished = &verdict }

func TestEngine_MatchWithMonitor(t *testing.T) {
	engine, err := NewEngine(mock.NewMockProviderWithEmbedder(orthogonalProvider()))
	require.NoError(t, err)

	snapshot := []*core.FaqRecord{
		faq("Are laptops allowed in class?", "Yes, if permitted by the faculty.", []float32{1, 0, 0}),
	}

	t.Run("lexical match stops after first strategy", func(t *testing.T) {
		monitor := &recordingMonitor{}
		verdict, err := engine.MatchWithMonitor(context.Background(), "Are Laptops Allowed?", snapshot, monitor)
		require.NoError(t, err)
		require.True(t, verdict.Matched)

		assert.Equal(t, "Are Laptops Allowed?", monitor.started)
		assert.Equal(t, "are laptops allowed?", monitor.query)
		assert.Equal(t, 1, monitor.candidates)
		assert.Equal(t, []string{"lexical"}, monitor.strategies)
		require.NotNil(t, monitor.finished)
		assert.True(t, monitor.finished.Matched)
	})

	t.Run("unmatched query consults every strategy", func(t *testing.T) {
		monitor := &recordingMonitor{}
		verdict, err := engine.MatchWithMonitor(context.Background(), "what is the exam timing?", snapshot, monitor)
		require.NoError(t, err)
		assert.False(t, verdict.Matched)
		assert.Equal(t, []string{"lexical", "semantic"}, monitor.strategies)
	})
}
