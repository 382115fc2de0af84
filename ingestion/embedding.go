package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/rankit/ai"
	"github.com/poiesic/rankit/core"
	"github.com/poiesic/rankit/storage"
)

// embeddingProcessor embeds the comparison text of records.
type embeddingProcessor struct {
	records  storage.RecordRepository
	embedder ai.Embedder
	logger   *slog.Logger
}

var _ processor = (*embeddingProcessor)(nil)

// newEmbeddingProcessor creates a new embedding processor.
func newEmbeddingProcessor(records storage.RecordRepository, embedder ai.Embedder, logger *slog.Logger) (processor, error) {
	if records == nil {
		return nil, ErrRecordRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		records:  records,
		embedder: embedder,
		logger:   logger.With("processor", "embeddings"),
	}, nil
}

// process generates one embedding per record with a single batched call.
func (ep *embeddingProcessor) process(ctx context.Context, records []*core.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	texts := make([]string, len(records))
	for i, record := range records {
		texts[i] = record.ComparisonText()
	}

	ep.logger.Debug("generating embeddings", "records", len(texts))
	embeddings, err := ep.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("%w: embedding records: %w", core.ErrCollaboratorUnavailable, err)
	}
	if len(embeddings) != len(records) {
		return 0, fmt.Errorf("%w: embedding result mismatch. expected %d, received %d",
			core.ErrCollaboratorUnavailable, len(records), len(embeddings))
	}

	for i := range embeddings {
		records[i].Vector = embeddings[i]
	}

	if _, err := ep.records.UpdateRecords(ctx, records...); err != nil {
		return 0, fmt.Errorf("storing embeddings: %w", err)
	}
	return len(records), nil
}
