package reembed

import (
	"context"

	"github.com/poiesic/rankit/core"
	"github.com/poiesic/rankit/storage"
)

const (
	// DefaultBatchSize is the default number of records to fetch in each batch
	DefaultBatchSize = 100
)

// RecordIterator iterates over all stored records in batches.
type RecordIterator struct {
	repo      storage.RecordRepository
	batchSize int
}

// NewRecordIterator creates a new record iterator.
// A batchSize <= 0 falls back to DefaultBatchSize.
func NewRecordIterator(repo storage.RecordRepository, batchSize int) *RecordIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &RecordIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// ForEach calls fn for each batch of records in ID order.
// Iteration stops on first error from fn or when all records are processed.
// Context cancellation is checked between batches.
func (it *RecordIterator) ForEach(ctx context.Context, fn func([]*core.Record) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return it.repo.ForEachRecord(ctx, it.batchSize, fn)
}

// Count returns the number of stored records.
func (it *RecordIterator) Count(ctx context.Context) (int, error) {
	total := 0
	err := it.ForEach(ctx, func(records []*core.Record) error {
		total += len(records)
		return nil
	})
	return total, err
}
