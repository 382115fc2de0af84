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


package expand

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/rankit/core"
	"github.com/poiesic/rankit/extract"
	"github.com/poiesic/rankit/intent"
	"github.com/poiesic/rankit/knowledge"
)

// MaxTerms is the largest number of expanded terms a query can carry.
const MaxTerms = 25

// techDomainWindow is how many of the best domain matches are checked for
// tech vocabulary. Company and non-tech matches in the window are skipped.
const techDomainWindow = 3

var (
	updateTerms = []string{"latest", "new", "recent", "trending"}

	secondaryTerms = map[core.IntentLabel][]string{
		core.IntentBuilding: {"implementation", "development", "architecture", "design"},
		core.IntentLearning: {"tutorial", "guide", "learning", "education", "best practices"},
		core.IntentUpdates:  {"latest", "new", "recent", "trending", "emerging", "modern"},
	}

	// secondaryOrder fixes the order secondary vocabularies are appended in.
	secondaryOrder = []core.IntentLabel{core.IntentBuilding, core.IntentLearning, core.IntentUpdates}
)

// Expander turns a raw query into a SemanticQuery.
// It is safe for concurrent use.
type Expander struct {
	base       *knowledge.Base
	classifier *intent.Classifier
	extractor  *extract.Extractor
	maxTerms   int
	logger     *slog.Logger
}

// Option configures an Expander.
type Option func(*Expander) error

// WithMaxTerms lowers the expanded term cap. Values outside 1..MaxTerms are rejected.
func WithMaxTerms(n int) Option {
	return func(e *Expander) error {
		if n < 1 || n > MaxTerms {
			return fmt.Errorf("%w: %d (must be 1-%d)", ErrInvalidMaxTerms, n, MaxTerms)
		}
		e.maxTerms = n
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Expander) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewExpander creates an expander from its three collaborators.
func NewExpander(base *knowledge.Base, classifier *intent.Classifier, extractor *extract.Extractor, opts ...Option) (*Expander, error) {
	switch {
	case base == nil:
		return nil, ErrKnowledgeBaseRequired
	case classifier == nil:
		return nil, ErrClassifierRequired
	case extractor == nil:
		return nil, ErrExtractorRequired
	}

	e := &Expander{
		base:       base,
		classifier: classifier,
		extractor:  extractor,
		maxTerms:   MaxTerms,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.logger = e.logger.With("component", "expander")
	return e, nil
}

// Expand classifies query, extracts its entities and domains, and builds
// the expanded vocabulary used for ranking. Errors from the entity
// recognizer are returned wrapped in core.ErrCollaboratorUnavailable.
func (e *Expander) Expand(ctx context.Context, query string) (*core.SemanticQuery, error) {
	in := e.classifier.Classify(query)

	entities, err := e.extractor.Entities(ctx, query)
	if err != nil {
		return nil, err
	}
	domains := e.extractor.Domains(query)

	terms := e.expandTerms(in, domains, entities)

	weights := make(map[string]int, len(domains))
	for _, d := range domains {
		weights[d.DomainID] = d.RelevanceScore
	}

	sq := &core.SemanticQuery{
		OriginalQuery: query,
		Intent:        in,
		Domains:       domains,
		Entities:      entities,
		ExpandedTerms: terms,
		SemanticText:  strings.Join(terms, " "),
		DomainWeights: weights,
	}

	e.logger.Debug("expanded query",
		"primary_intent", in.Primary,
		"domains", len(domains),
		"terms", len(terms))
	return sq, nil
}

func (e *Expander) expandTerms(in core.Intent, domains []core.DomainMatch, entities core.ExtractedEntities) []string {
	var terms []string

	for _, d := range domains {
		if d.Kind != core.DomainKindCompany || d.Context == nil {
			continue
		}
		terms = append(terms, d.Context.Terms()...)
		terms = append(terms, d.Name)
	}

	for _, d := range domains {
		if d.Kind == core.DomainKindNonTech && d.Context != nil {
			terms = append(terms, d.Context.Terms()...)
		}
	}

	for _, d := range domains[:min(techDomainWindow, len(domains))] {
		if d.Kind != core.DomainKindTech {
			continue
		}
		payload, ok := e.base.Lookup(d.DomainID)
		if !ok {
			continue
		}
		terms = append(terms, intentTerms(in.Primary, payload)...)
	}

	for _, label := range secondaryOrder {
		if in.Has(label) {
			terms = append(terms, secondaryTerms[label]...)
		}
	}

	terms = append(terms, entities.Companies...)
	terms = append(terms, entities.Technologies...)
	terms = append(terms, entities.Concepts...)

	return dedupe(terms, e.maxTerms)
}

// intentTerms selects vocabulary from a tech domain by primary intent.
func intentTerms(primary core.IntentLabel, d *core.KnowledgeDomain) []string {
	var out []string
	switch primary {
	case core.IntentBuilding:
		out = append(out, head(d.Technologies, 5)...)
		out = append(out, head(d.Concepts, 3)...)
	case core.IntentLearning:
		out = append(out, head(d.Concepts, 5)...)
		out = append(out, head(d.Technologies, 3)...)
	case core.IntentUpdates:
		out = append(out, head(d.Technologies, 3)...)
		out = append(out, updateTerms...)
	default:
		out = append(out, head(d.Keywords, 3)...)
		out = append(out, head(d.Concepts, 2)...)
	}
	return out
}

func head(s []string, n int) []string {
	return s[:min(n, len(s))]
}

// dedupe keeps the first occurrence of each term and at most limit terms.
func dedupe(terms []string, limit int) []string {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, min(len(terms), limit))
	for _, t := range terms {
		if len(out) == limit {
			break
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
