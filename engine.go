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
	"log/slog"

	"github.com/poiesic/rankit/ai"
	"github.com/poiesic/rankit/core"
	"github.com/poiesic/rankit/expand"
	"github.com/poiesic/rankit/extract"
	"github.com/poiesic/rankit/intent"
	"github.com/poiesic/rankit/knowledge"
	"github.com/poiesic/rankit/rank"
)

// Engine understands queries and re-ranks candidate records. It holds no
// storage and does not own its provider.
type Engine struct {
	base       *knowledge.Base
	classifier *intent.Classifier
	extractor  *extract.Extractor
	expander   *expand.Expander
	ranker     *rank.Ranker
	logger     *slog.Logger
}

// NewEngine wires the knowledge base, classifier, extractor, expander and
// ranker around provider. The embedded knowledge base is used unless
// WithKnowledgeBase is given.
func NewEngine(provider ai.AIProvider, opts ...Option) (*Engine, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	return newEngine(provider, o)
}

func newEngine(provider ai.AIProvider, o *options) (*Engine, error) {
	if provider == nil {
		return nil, ErrProviderRequired
	}

	base := o.base
	if base == nil {
		var err error
		base, err = knowledge.Default()
		if err != nil {
			return nil, err
		}
	}

	classifier, err := intent.NewClassifier(base.Intents())
	if err != nil {
		return nil, err
	}

	extractOpts := []extract.Option{extract.WithLogger(o.logger)}
	if rec := provider.EntityRecognizer(); rec != nil {
		extractOpts = append(extractOpts, extract.WithRecognizer(rec))
	}
	extractor, err := extract.NewExtractor(base, extractOpts...)
	if err != nil {
		return nil, err
	}

	expander, err := expand.NewExpander(base, classifier, extractor, expand.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}

	rankOpts := []rank.Option{rank.WithLogger(o.logger)}
	if o.weights != nil {
		rankOpts = append(rankOpts, rank.WithWeights(*o.weights))
	}
	ranker, err := rank.NewRanker(base, provider.Embedder(), rankOpts...)
	if err != nil {
		return nil, err
	}

	return &Engine{
		base:       base,
		classifier: classifier,
		extractor:  extractor,
		expander:   expander,
		ranker:     ranker,
		logger:     o.logger.With("component", "engine"),
	}, nil
}

// KnowledgeBase returns the loaded knowledge base.
func (e *Engine) KnowledgeBase() *knowledge.Base {
	return e.base
}

// Classify returns the intent of query without calling any collaborator.
func (e *Engine) Classify(query string) core.Intent {
	return e.classifier.Classify(query)
}

// Analyze expands query into a semantic query.
func (e *Engine) Analyze(ctx context.Context, query string) (*core.SemanticQuery, error) {
	return e.expander.Expand(ctx, query)
}

// Rank analyzes query and re-ranks records against it. The returned slice
// is records, reordered and annotated.
func (e *Engine) Rank(ctx context.Context, query string, records []*core.Record) (*core.SemanticQuery, []*core.Record, error) {
	sq, err := e.Analyze(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	ranked, err := e.ranker.Rank(ctx, records, sq)
	if err != nil {
		e.logger.Error("error ranking records", "records", len(records), "err", err)
		return sq, nil, err
	}
	return sq, ranked, nil
}

// Close releases the ranker's worker pool.
func (e *Engine) Close() {
	e.ranker.Release()
}
