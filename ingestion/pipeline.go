package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/rankit/ai"
	"github.com/poiesic/rankit/core"
	"github.com/poiesic/rankit/storage"
)

const defaultBatchSize = 32

// Pipeline orchestrates the ingestion of content records.
type Pipeline struct {
	records       storage.RecordRepository
	themes        storage.ThemeRepository
	embeddingPool *ants.Pool
	embeddingProc processor
	batchSize     int
	logger        *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
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

// WithBatchSize sets how many records are stored and embedded together.
// Default is 32.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			return fmt.Errorf("%w: got %d", ErrInvalidBatchSize, size)
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
func NewPipeline(
	records storage.RecordRepository,
	themes storage.ThemeRepository,
	embedder ai.Embedder,
	opts ...Option,
) (*Pipeline, error) {
	if records == nil {
		return nil, ErrRecordRepositoryRequired
	}
	if themes == nil {
		return nil, ErrThemeRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
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
		records:       records,
		themes:        themes,
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
	p.logger = p.logger.With("component", "ingestion")

	embeddingProc, err := newEmbeddingProcessor(records, embedder, p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.embeddingProc = embeddingProc

	return p, nil
}

// Report summarizes one Ingest call.
type Report struct {
	// Stored is the number of records written.
	Stored int
	// Embedded is the number of stored records that received a vector.
	Embedded int
	// Tagged is the number of records that matched at least one theme.
	Tagged int
	// Skipped is the number of records rejected by validation.
	Skipped int
}

// Ingest validates, tags, stores and embeds records. Invalid records are
// skipped. It waits until every embedding batch has finished. The returned
// error joins all validation and embedding failures; the report is valid
// even when an error is returned.
func (p *Pipeline) Ingest(ctx context.Context, records []*core.Record) (*Report, error) {
	report := &Report{}
	var errs []error

	themes, err := p.themes.ListThemes(ctx)
	if err != nil {
		return report, fmt.Errorf("loading themes: %w", err)
	}

	valid := make([]*core.Record, 0, len(records))
	for i, record := range records {
		if err := core.ValidateRecord(record); err != nil {
			p.logger.Warn("skipping invalid record", "index", i, "err", err)
			errs = append(errs, fmt.Errorf("record %d: %w", i, err))
			report.Skipped++
			continue
		}
		if TagByTheme(record, themes) {
			report.Tagged++
		}
		valid = append(valid, record)
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for start := 0; start < len(valid); start += p.batchSize {
		batch := valid[start:min(start+p.batchSize, len(valid))]

		stored, err := p.records.AddRecords(ctx, batch...)
		if err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("storing records: %w", err))
			mu.Unlock()
			continue
		}
		report.Stored += len(stored)

		wg.Add(1)
		submitErr := p.embeddingPool.Submit(func() {
			defer wg.Done()
			n, err := p.embeddingProc.process(ctx, stored)
			mu.Lock()
			defer mu.Unlock()
			report.Embedded += n
			if err != nil {
				p.logger.Error("error processing embeddings", "records", len(stored), "err", err)
				errs = append(errs, err)
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			errs = append(errs, fmt.Errorf("submitting embedding batch: %w", submitErr))
			mu.Unlock()
		}
	}
	wg.Wait()

	p.logger.Info("ingestion complete",
		"stored", report.Stored,
		"embedded", report.Embedded,
		"tagged", report.Tagged,
		"skipped", report.Skipped)

	return report, errors.Join(errs...)
}

// Release releases resources including worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
}
