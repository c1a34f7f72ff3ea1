package match

import (
	"context"
	"log/slog"

	"github.com/poiesic/faqbot/ai"
	"github.com/poiesic/faqbot/core"
)

// Engine arbitrates between matching strategies. For each request it
// normalizes the query and the snapshot's questions, then consults its
// strategies in priority order; the first strategy producing a candidate
// resolves the verdict and later strategies are not consulted. Each strategy
// runs at most once per request.
type Engine struct {
	strategies []Strategy
	logger     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithStrategies replaces the default strategy list. Strategies run in the
// order given. Deployments have shipped lexical-only, semantic-only, and
// lexical-then-semantic orderings; all are expressed through this option
// without touching the arbitration logic.
func WithStrategies(strategies ...Strategy) Option {
	return func(e *Engine) error {
		if len(strategies) == 0 {
			return ErrNoStrategies
		}
		e.strategies = strategies
		return nil
	}
}

// NewEngine creates an engine with the canonical strategy order: lexical
// first, semantic fallback. The provider supplies the shared embedder for
// the semantic strategy.
func NewEngine(provider ai.AIProvider, opts ...Option) (*Engine, error) {
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	semantic, err := NewSemanticMatcher(provider.Embedder())
	if err != nil {
		return nil, err
	}

	e := &Engine{
		strategies: []Strategy{NewLexicalMatcher(), semantic},
		logger:     slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Match resolves a verdict for the query against the snapshot.
func (e *Engine) Match(ctx context.Context, rawQuery string, snapshot []*core.FaqRecord) (core.MatchVerdict, error) {
	return e.MatchWithMonitor(ctx, rawQuery, snapshot, nil)
}

// MatchWithMonitor resolves a verdict while reporting progress to the
// monitor. The verdict depends only on the query and the snapshot; repeated
// invocations with the same inputs produce identical verdicts.
//
// An error is returned only for operational failures (ErrEmbeddingUnavailable);
// a query that simply matches nothing yields an Unmatched verdict and a nil
// error.
func (e *Engine) MatchWithMonitor(ctx context.Context, rawQuery string, snapshot []*core.FaqRecord, monitor MatchMonitor) (core.MatchVerdict, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(rawQuery)

	query := core.NormalizeText(rawQuery)
	candidates := BuildCandidates(snapshot)
	monitor.AfterNormalize(query, len(candidates))

	for _, strategy := range e.strategies {
		candidate, err := strategy.Match(ctx, query, candidates)
		if err != nil {
			e.logger.Error("matching strategy failed", "strategy", strategy.Name(), "err", err)
			return core.MatchVerdict{}, err
		}
		monitor.AfterStrategy(strategy.Name(), candidate)

		if candidate != nil {
			verdict := core.MatchVerdict{
				Matched: true,
				Record:  candidate.Record,
				Score:   candidate.Score,
				Method:  candidate.Method,
			}
			e.logger.Debug("query matched",
				"record", candidate.Record.Id,
				"method", candidate.Method.String(),
				"score", candidate.Score)
			monitor.Finish(verdict)
			return verdict, nil
		}
	}

	e.logger.Debug("query unmatched", "candidates", len(candidates))
	verdict := core.MatchVerdict{}
	monitor.Finish(verdict)
	return verdict, nil
}
