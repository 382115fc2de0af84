// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package rankit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/rankit/ai"
	"github.com/poiesic/rankit/ai/openai"
	"github.com/poiesic/rankit/ai/resilient"
	"github.com/poiesic/rankit/core"
	"github.com/poiesic/rankit/ingestion"
	"github.com/poiesic/rankit/metrics"
	"github.com/poiesic/rankit/reembed"
	"github.com/poiesic/rankit/search"
	"github.com/poiesic/rankit/storage"
	"github.com/poiesic/rankit/storage/badger"
)

// Library is an Engine plus persistent storage for records and themes.
type Library struct {
	backend  *badger.Backend
	records  storage.RecordRepository
	themes   storage.ThemeRepository
	provider ai.AIProvider
	engine   *Engine
	searcher *search.Searcher
	metrics  *metrics.SearchMetrics
	// base is the unscoped logger handed to the components a Library creates.
	base     *slog.Logger
	logger   *slog.Logger
}

// OpenLibrary opens or creates the library stored at filePath.
//
// Unless WithProvider is given, an OpenAI-compatible provider is built from
// the AI config and guarded with retries and circuit breakers.
func OpenLibrary(filePath string, opts ...Option) (*Library, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}

	var (
		records storage.RecordRepository
		themes  storage.ThemeRepository
		backend *badger.Backend
	)
	if o.inMemory {
		records, themes, backend, err = badger.NewMemoryRepositories()
	} else {
		records, themes, backend, err = badger.OpenRepositories(filePath)
	}
	if err != nil {
		return nil, err
	}

	provider := o.provider
	if provider == nil {
		base, err := openai.NewProvider(o.aiConfig)
		if err != nil {
			closeStorage(themes, records, backend)
			return nil, err
		}
		provider = resilient.NewProvider(base, o.resilience, o.logger)
	}

	engine, err := newEngine(provider, o)
	if err != nil {
		provider.Close()
		closeStorage(themes, records, backend)
		return nil, err
	}

	searcher, err := search.NewSearcher(records, engine.expander, engine.ranker,
		search.WithLogger(o.logger),
		search.WithVectorCandidates(provider.Embedder(), search.DefaultMinSimilarity))
	if err != nil {
		engine.Close()
		provider.Close()
		closeStorage(themes, records, backend)
		return nil, err
	}

	return &Library{
		backend:  backend,
		records:  records,
		themes:   themes,
		provider: provider,
		engine:   engine,
		searcher: searcher,
		metrics:  o.metrics,
		base:     o.logger,
		logger:   o.logger.With("component", "library"),
	}, nil
}

func closeStorage(themes storage.ThemeRepository, records storage.RecordRepository, backend *badger.Backend) {
	themes.Close()
	records.Close()
	backend.Close()
}

// Close releases the engine, the provider and the storage.
func (l *Library) Close() error {
	l.engine.Close()

	// Close AI provider first
	if err := l.provider.Close(); err != nil {
		l.logger.Error("error closing AI provider", "err", err)
	}

	var errs []error
	if err := l.themes.Close(); err != nil {
		l.logger.Error("error closing theme repository", "err", err)
		errs = append(errs, err)
	}
	if err := l.records.Close(); err != nil {
		l.logger.Error("error closing record repository", "err", err)
		errs = append(errs, err)
	}
	if err := l.backend.Close(); err != nil {
		l.logger.Error("error closing backend storage", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (l *Library) Engine() *Engine {
	return l.engine
}

func (l *Library) RecordRepository() storage.RecordRepository {
	return l.records
}

func (l *Library) ThemeRepository() storage.ThemeRepository {
	return l.themes
}

// ImportThemes stores themes, replacing any with the same name.
func (l *Library) ImportThemes(ctx context.Context, themes ...*core.Theme) ([]*core.Theme, error) {
	for _, theme := range themes {
		if err := core.ValidateTheme(theme); err != nil {
			return nil, err
		}
	}
	return l.themes.PutThemes(ctx, themes...)
}

func (l *Library) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	opts = append([]ingestion.Option{ingestion.WithLogger(l.base)}, opts...)
	return ingestion.NewPipeline(l.records, l.themes, l.provider.Embedder(), opts...)
}

// Ingest runs records through a one-off ingestion pipeline.
func (l *Library) Ingest(ctx context.Context, records []*core.Record, opts ...ingestion.Option) (*ingestion.Report, error) {
	pipeline, err := l.NewIngestionPipeline(opts...)
	if err != nil {
		return nil, err
	}
	defer pipeline.Release()
	return pipeline.Ingest(ctx, records)
}

func (l *Library) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(l.records, l.engine.expander, l.engine.ranker, opts...)
}

// Search finds and re-ranks stored records for query. Outcomes are recorded
// when the library was opened WithMetrics.
func (l *Library) Search(ctx context.Context, query string, maxHits int) (*search.Results, error) {
	if l.metrics == nil {
		return l.searcher.FindRelevant(ctx, query, maxHits)
	}

	start := time.Now()
	results, err := l.searcher.FindRelevantWithMonitor(ctx, query, maxHits, l.metrics.Monitor())
	if err != nil {
		l.metrics.RecordFailure(start)
		return nil, err
	}
	return results, nil
}

// NewReembedder returns a job that re-embeds every stored record.
func (l *Library) NewReembedder(config *reembed.Config, progress io.Writer) (*reembed.Reembedder, error) {
	return reembed.NewReembedder(l.records, l.provider.Embedder(), config, progress)
}
