package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/faqbot/ai"
	"github.com/poiesic/faqbot/core"
	"github.com/poiesic/faqbot/storage"
)

// embeddingProcessor generates question embeddings for FAQ records.
type embeddingProcessor struct {
	faqRepository storage.FaqRepository
	embedder      ai.Embedder
	logger        *slog.Logger
}

// newEmbeddingProcessor creates a new embedding processor.
func newEmbeddingProcessor(faqRepository storage.FaqRepository, embedder ai.Embedder, logger *slog.Logger) (*embeddingProcessor, error) {
	if faqRepository == nil {
		return nil, ErrFaqRepositoryRequired
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		faqRepository: faqRepository,
		embedder:      embedder,
		logger:        logger.With("processor", "embeddings"),
	}, nil
}

// process generates embeddings for the specified FAQ records.
func (ep *embeddingProcessor) process(ctx context.Context, ids ...core.ID) error {
	ep.logger.Info("processing records for embeddings", "records", len(ids))

	records, err := ep.faqRepository.GetFaqs(ctx, ids...)
	if err != nil {
		ep.logger.Error("error retrieving FAQ records", "err", err)
		return err
	}

	return ep.embedRecords(ctx, records)
}

// embedRecords embeds the question text of each record and writes the
// vectors back to storage in one update.
func (ep *embeddingProcessor) embedRecords(ctx context.Context, records []*core.FaqRecord) error {
	if len(records) == 0 {
		return nil
	}

	texts := make([]string, len(records))
	for i, record := range records {
		texts[i] = record.Question
	}

	ep.logger.Debug("generating embeddings for FAQ records", "records", len(texts))
	embeddings, err := ep.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		ep.logger.Error("error generating embeddings", "err", err)
		return err
	}

	if len(embeddings) != len(records) {
		return fmt.Errorf("%w: expected %d, received %d", ErrEmbeddingMismatch, len(records), len(embeddings))
	}

	for i := range embeddings {
		records[i].Vector = embeddings[i]
	}

	_, err = ep.faqRepository.UpdateFaqs(ctx, records...)
	return err
}
