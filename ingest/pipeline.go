package ingest

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/faqbot/ai"
	"github.com/poiesic/faqbot/core"
	"github.com/poiesic/faqbot/storage"
)

const defaultBatchSize = 32

// Pipeline orchestrates the ingestion and embedding of FAQ records.
type Pipeline struct {
	faqRepository storage.FaqRepository
	embeddingPool *ants.Pool
	embeddingProc *embeddingProcessor
	batchSize     int
	logger        *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}

		embeddingPool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		p.embeddingPool = embeddingPool
		return nil
	}
}

// WithBatchSize sets how many records are embedded per request during
// backfill. Default is 32.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.batchSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(faqRepository storage.FaqRepository, provider ai.AIProvider, opts ...Option) (*Pipeline, error) {
	if faqRepository == nil {
		return nil, ErrFaqRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	embeddingPool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		faqRepository: faqRepository,
		embeddingPool: embeddingPool,
		batchSize:     defaultBatchSize,
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	embeddingProc, err := newEmbeddingProcessor(faqRepository, provider.Embedder(), p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.embeddingProc = embeddingProc

	return p, nil
}

// Ingest adds FAQ records to storage and embeds their questions
// asynchronously. Errors during async embedding are logged but do not fail
// the ingestion; backfill them later with EmbedAll.
func (p *Pipeline) Ingest(ctx context.Context, records ...*core.FaqRecord) error {
	added, err := p.faqRepository.AddFaqs(ctx, records...)
	if err != nil {
		return err
	}

	if len(added) == 0 {
		return nil
	}

	ids := make([]core.ID, len(added))
	for i, record := range added {
		ids[i] = record.Id
	}

	return p.embeddingPool.Submit(func() {
		if err := p.embeddingProc.process(context.Background(), ids...); err != nil {
			p.logger.Error("error processing embeddings", "err", err)
		}
	})
}

// EmbedAll synchronously generates embeddings for every record that is
// missing one, batching requests to the embedder.
// Returns the number of records embedded.
func (p *Pipeline) EmbedAll(ctx context.Context) (int, error) {
	pending, err := p.faqRepository.ListUnembedded(ctx)
	if err != nil {
		return 0, err
	}

	embedded := 0
	for start := 0; start < len(pending); start += p.batchSize {
		end := min(start+p.batchSize, len(pending))
		if err := p.embeddingProc.embedRecords(ctx, pending[start:end]); err != nil {
			return embedded, err
		}
		embedded += end - start
	}

	if embedded > 0 {
		p.logger.Info("embedded FAQ records", "records", embedded)
	}
	return embedded, nil
}

// Release releases resources including the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
}
