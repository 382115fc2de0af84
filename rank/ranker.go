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


package rank

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/rankit/ai"
	"github.com/poiesic/rankit/core"
	"github.com/poiesic/rankit/knowledge"
)

const (
	companyMentionBonus = 5
	companyDomainFactor = 2
)

// Ranker re-orders candidate records against an expanded query.
// It is safe for concurrent use.
type Ranker struct {
	base     *knowledge.Base
	embedder ai.Embedder
	weights  Weights
	pool     *ants.Pool
	logger   *slog.Logger
}

// Option configures a Ranker.
type Option func(*Ranker) error

// WithWeights overrides the combined score coefficients.
func WithWeights(w Weights) Option {
	return func(r *Ranker) error {
		if !w.valid() {
			return ErrInvalidWeights
		}
		r.weights = w
		return nil
	}
}

// WithConcurrency scores records on a pool of n workers. The default of 1
// scores on the calling goroutine.
func WithConcurrency(n int) Option {
	return func(r *Ranker) error {
		if n < 1 {
			return ErrInvalidConcurrency
		}
		if r.pool != nil {
			r.pool.Release()
			r.pool = nil
		}
		if n == 1 {
			return nil
		}
		pool, err := ants.NewPool(n)
		if err != nil {
			return err
		}
		r.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Ranker) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRanker creates a ranker. Call Release when done if WithConcurrency
// was used.
func NewRanker(base *knowledge.Base, embedder ai.Embedder, opts ...Option) (*Ranker, error) {
	if base == nil {
		return nil, ErrKnowledgeBaseRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	r := &Ranker{
		base:     base,
		embedder: embedder,
		weights:  DefaultWeights(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			r.Release()
			return nil, err
		}
	}
	r.logger = r.logger.With("component", "ranker")
	return r, nil
}

// Weights returns the coefficients in use.
func (r *Ranker) Weights() Weights {
	return r.weights
}

// Release frees the worker pool, if any.
func (r *Ranker) Release() {
	if r.pool != nil {
		r.pool.Release()
	}
}

// signals are the lexical scores of one record.
type signals struct {
	domain   float64
	company  float64
	expanded float64
}

// Rank scores every record against sq, writes Score and Ranking, and sorts
// records in place by Score, highest first. Ties keep their input order.
// The prior of a record is its input Score, or Ranking.Original if it was
// ranked before, so ranking is idempotent.
//
// An embedder failure is returned wrapped in core.ErrCollaboratorUnavailable
// and leaves records untouched.
func (r *Ranker) Rank(ctx context.Context, records []*core.Record, sq *core.SemanticQuery) ([]*core.Record, error) {
	if len(records) == 0 {
		return []*core.Record{}, nil
	}
	if sq == nil {
		sq = &core.SemanticQuery{}
	}

	texts := make([]string, len(records))
	for i, rec := range records {
		texts[i] = rec.ComparisonText()
	}

	semantic, err := r.similarities(ctx, sq.SemanticText, texts)
	if err != nil {
		return nil, err
	}

	scored := make([]signals, len(records))
	r.forEach(len(records), func(i int) {
		scored[i] = r.score(texts[i], sq)
	})

	for i, rec := range records {
		prior := rec.Prior()
		rec.Ranking = &core.Ranking{
			Semantic: semantic[i],
			Domain:   scored[i].domain,
			Company:  scored[i].company,
			Expanded: scored[i].expanded,
			Original: prior,
		}
		rec.Score = r.weights.combine(semantic[i], scored[i], prior)
	}

	sort.SliceStable(records, func(a, b int) bool {
		return records[a].Score > records[b].Score
	})

	r.logger.Debug("ranked records", "count", len(records), "top_score", records[0].Score)
	return records, nil
}

// similarities returns the cosine similarity of query to each text. Blank
// texts, and every text when query is blank, score 0 and are not embedded.
func (r *Ranker) similarities(ctx context.Context, query string, texts []string) ([]float64, error) {
	out := make([]float64, len(texts))
	if strings.TrimSpace(query) == "" {
		return out, nil
	}

	batch := []string{query}
	index := make([]int, 0, len(texts))
	for i, t := range texts {
		if strings.TrimSpace(t) != "" {
			batch = append(batch, t)
			index = append(index, i)
		}
	}
	if len(index) == 0 {
		return out, nil
	}

	vectors, err := r.embedder.EmbedTexts(ctx, batch)
	if err != nil {
		r.logger.Error("failed to embed ranking texts", "count", len(batch), "err", err)
		return nil, fmt.Errorf("%w: embedding: %w", core.ErrCollaboratorUnavailable, err)
	}
	if len(vectors) != len(batch) {
		return nil, fmt.Errorf("%w: embedder returned %d vectors for %d texts",
			core.ErrCollaboratorUnavailable, len(vectors), len(batch))
	}

	for j, i := range index {
		out[i] = core.CosineSimilarity(vectors[0], vectors[j+1])
	}
	return out, nil
}

// forEach calls fn for 0..n-1, on the pool when there is one.
func (r *Ranker) forEach(n int, fn func(i int)) {
	if r.pool == nil {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		if err := r.pool.Submit(func() {
			defer wg.Done()
			fn(i)
		}); err != nil {
			r.logger.Warn("worker pool rejected task, scoring inline", "err", err)
			fn(i)
			wg.Done()
		}
	}
	wg.Wait()
}

// score computes the lexical signals of one lower-cased comparison text.
func (r *Ranker) score(text string, sq *core.SemanticQuery) signals {
	var s signals

	for _, company := range sq.Entities.Companies {
		name := strings.ToLower(company)
		if name == "" || !strings.Contains(text, name) {
			continue
		}
		s.company += companyMentionBonus
		if d, ok := r.base.Company(name); ok {
			s.company += float64(core.CountContained(text, d.Keywords))
			s.company += float64(core.CountContained(text, d.Technologies))
		}
	}

	for id, weight := range sq.DomainWeights {
		kind, name := core.ParseDomainID(id)
		if kind == core.DomainKindCompany {
			if strings.Contains(text, name) {
				s.domain += float64(weight * companyDomainFactor)
			}
			continue
		}
		if d, ok := r.base.Lookup(id); ok {
			s.domain += float64(weight * core.CountContained(text, d.Terms()))
		}
	}

	for _, term := range sq.ExpandedTerms {
		if term != "" && strings.Contains(text, strings.ToLower(term)) {
			s.expanded++
		}
	}
	return s
}
