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


package extract

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/poiesic/rankit/ai"
	"github.com/poiesic/rankit/core"
	"github.com/poiesic/rankit/knowledge"
)

// companyMatchScore is the fixed relevance of a company named in a query.
const companyMatchScore = 3

// Extractor finds entities and knowledge base domains in queries.
// It is safe for concurrent use if its recognizer is.
type Extractor struct {
	base       *knowledge.Base
	recognizer ai.EntityRecognizer
	logger     *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor) error

// WithRecognizer sets the named-entity recognizer. Without one, entities
// come only from capitalization and the knowledge base.
func WithRecognizer(r ai.EntityRecognizer) Option {
	return func(e *Extractor) error {
		e.recognizer = r
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewExtractor creates an extractor over base.
func NewExtractor(base *knowledge.Base, opts ...Option) (*Extractor, error) {
	if base == nil {
		return nil, ErrKnowledgeBaseRequired
	}

	e := &Extractor{
		base:   base,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.logger = e.logger.With("component", "extractor")
	return e, nil
}

// Entities returns the companies, technologies, concepts and other proper
// nouns mentioned in query. A recognizer failure is returned wrapped in
// core.ErrCollaboratorUnavailable.
func (e *Extractor) Entities(ctx context.Context, query string) (core.ExtractedEntities, error) {
	entities := core.ExtractedEntities{
		Companies:     []string{},
		Technologies:  []string{},
		Concepts:      []string{},
		OtherEntities: []string{},
	}
	lower := strings.ToLower(query)

	if e.recognizer != nil && strings.TrimSpace(lower) != "" {
		found, err := e.recognizer.ExtractEntities(ctx, lower)
		if err != nil {
			e.logger.Error("entity recognition failed", "err", err)
			return core.ExtractedEntities{}, fmt.Errorf("%w: entity recognition: %w", core.ErrCollaboratorUnavailable, err)
		}
		for _, ent := range found {
			switch ent.Label {
			case ai.LabelOrg, ai.LabelProduct:
				if !core.ContainsFold(entities.Companies, ent.Span) {
					entities.Companies = append(entities.Companies, ent.Span)
				}
			case ai.LabelLocation:
				entities.OtherEntities = append(entities.OtherEntities, ent.Span)
			}
		}
	}

	for _, token := range properNouns(query) {
		if e.base.IsCompany(strings.ToLower(token)) {
			if !core.ContainsFold(entities.Companies, token) {
				entities.Companies = append(entities.Companies, token)
			}
			continue
		}
		if !core.ContainsFold(entities.Companies, token) && !core.ContainsFold(entities.OtherEntities, token) {
			entities.OtherEntities = append(entities.OtherEntities, token)
		}
	}

	for _, d := range e.base.TechDomains() {
		for _, tech := range d.Technologies {
			if strings.Contains(lower, tech) {
				entities.Technologies = append(entities.Technologies, tech)
			}
		}
		for _, concept := range d.Concepts {
			if strings.Contains(lower, concept) {
				entities.Concepts = append(entities.Concepts, concept)
			}
		}
	}

	e.logger.Debug("extracted entities",
		"companies", len(entities.Companies),
		"technologies", len(entities.Technologies),
		"concepts", len(entities.Concepts),
		"other", len(entities.OtherEntities))
	return entities, nil
}

// Domains scores every knowledge base domain against query. Companies
// come first, then non-tech and tech domains, each in catalog order; the
// result is then stable-sorted by relevance, highest first.
func (e *Extractor) Domains(query string) []core.DomainMatch {
	lower := strings.ToLower(query)
	matches := []core.DomainMatch{}

	for _, d := range e.base.Companies() {
		if strings.Contains(lower, d.Name) {
			matches = append(matches, core.DomainMatch{
				DomainID:       core.DomainID(core.DomainKindCompany, d.Name),
				Kind:           core.DomainKindCompany,
				Name:           d.Name,
				RelevanceScore: companyMatchScore,
				Context:        &d,
			})
		}
	}

	for _, d := range e.base.NonTechDomains() {
		if m, ok := countTerms(lower, d, core.DomainKindNonTech); ok {
			m.Context = &d
			matches = append(matches, m)
		}
	}

	for _, d := range e.base.TechDomains() {
		if m, ok := countTerms(lower, d, core.DomainKindTech); ok {
			matches = append(matches, m)
		}
	}

	slices.SortStableFunc(matches, func(a, b core.DomainMatch) int {
		return cmp.Compare(b.RelevanceScore, a.RelevanceScore)
	})
	return matches
}

func countTerms(lower string, d core.KnowledgeDomain, kind core.DomainKind) (core.DomainMatch, bool) {
	m := core.DomainMatch{
		DomainID:       core.DomainID(kind, d.Name),
		Kind:           kind,
		Name:           d.Name,
		KeywordMatches: core.CountContained(lower, d.Keywords),
		ConceptMatches: core.CountContained(lower, d.Concepts),
		TechMatches:    core.CountContained(lower, d.Technologies),
	}
	m.RelevanceScore = m.KeywordMatches + m.ConceptMatches + m.TechMatches
	return m, m.RelevanceScore > 0
}

// properNouns returns the whitespace tokens of query, stripped of
// surrounding punctuation, that start with an upper-case letter and are
// longer than two characters.
func properNouns(query string) []string {
	var out []string
	for _, field := range strings.Fields(query) {
		token := strings.TrimFunc(field, func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		})
		if utf8.RuneCountInString(token) <= 2 {
			continue
		}
		if first, _ := utf8.DecodeRuneInString(token); unicode.IsUpper(first) {
			out = append(out, token)
		}
	}
	return out
}
