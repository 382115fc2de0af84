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


package core

import "strings"

// DomainKind identifies which knowledge base catalog a domain belongs to.
type DomainKind string

const (
	// DomainKindCompany is a named company (netflix, spotify, ...).
	DomainKindCompany DomainKind = "company"
	// DomainKindNonTech is a non-technical subject area (gardening, finance, ...).
	DomainKindNonTech DomainKind = "non_tech"
	// DomainKindTech is a technology domain (frontend, backend, ...).
	DomainKindTech DomainKind = "tech"
)

const (
	companyPrefix = "company_"
	nonTechPrefix = "non_tech_"
)

// DomainID returns the namespaced identifier for a domain name of the given kind.
// Tech domains keep their bare name.
func DomainID(kind DomainKind, name string) string {
	switch kind {
	case DomainKindCompany:
		return companyPrefix + name
	case DomainKindNonTech:
		return nonTechPrefix + name
	default:
		return name
	}
}

// ParseDomainID splits a namespaced identifier into its kind and bare name.
func ParseDomainID(id string) (DomainKind, string) {
	if name, ok := strings.CutPrefix(id, companyPrefix); ok {
		return DomainKindCompany, name
	}
	if name, ok := strings.CutPrefix(id, nonTechPrefix); ok {
		return DomainKindNonTech, name
	}
	return DomainKindTech, id
}

// KnowledgeDomain is a named cluster of vocabulary. For companies and
// non-tech domains Concepts holds the related technical concepts and
// Technologies the related technologies.
type KnowledgeDomain struct {
	Name         string   `json:"id" yaml:"id"`
	Keywords     []string `json:"keywords" yaml:"keywords"`
	Concepts     []string `json:"concepts" yaml:"concepts"`
	Technologies []string `json:"technologies" yaml:"technologies"`
}

// Terms returns keywords, concepts and technologies in that order.
func (d *KnowledgeDomain) Terms() []string {
	terms := make([]string, 0, len(d.Keywords)+len(d.Concepts)+len(d.Technologies))
	terms = append(terms, d.Keywords...)
	terms = append(terms, d.Concepts...)
	return append(terms, d.Technologies...)
}

// IntentLabel names an intent pattern.
type IntentLabel string

const (
	IntentInformation    IntentLabel = "information"
	IntentBuilding       IntentLabel = "building"
	IntentLearning       IntentLabel = "learning"
	IntentUpdates        IntentLabel = "updates"
	IntentComparison     IntentLabel = "comparison"
	IntentProblemSolving IntentLabel = "problem_solving"
	IntentEvaluation     IntentLabel = "evaluation"
)

// IntentPattern pairs an intent label with the regular expression that detects it.
type IntentPattern struct {
	Label   IntentLabel `json:"label" yaml:"label"`
	Pattern string      `json:"pattern" yaml:"pattern"`
}

// Intent is the inferred purpose behind a query.
type Intent struct {
	Primary    IntentLabel   `json:"primary_intent"`
	Secondary  []IntentLabel `json:"secondary_intents"`
	Confidence float64       `json:"confidence"`
}

// Has reports whether the label fired for the query.
func (i Intent) Has(label IntentLabel) bool {
	for _, l := range i.Secondary {
		if l == label {
			return true
		}
	}
	return false
}

// ExtractedEntities holds the entities found in a query.
type ExtractedEntities struct {
	Companies     []string `json:"companies"`
	Technologies  []string `json:"technologies"`
	Concepts      []string `json:"concepts"`
	OtherEntities []string `json:"other_entities"`
}

// DomainMatch scores one knowledge base domain against a query.
type DomainMatch struct {
	DomainID       string           `json:"domain"`
	Kind           DomainKind       `json:"kind"`
	Name           string           `json:"name"`
	RelevanceScore int              `json:"relevance_score"`
	KeywordMatches int              `json:"keyword_matches"`
	ConceptMatches int              `json:"concept_matches"`
	TechMatches    int              `json:"tech_matches"`
	Context        *KnowledgeDomain `json:"context,omitempty"`
}

// SemanticQuery is the expanded form of a query used for ranking.
type SemanticQuery struct {
	OriginalQuery string            `json:"original_query"`
	Intent        Intent            `json:"intent"`
	Domains       []DomainMatch     `json:"domains"`
	Entities      ExtractedEntities `json:"entities"`
	ExpandedTerms []string          `json:"expanded_terms"`
	SemanticText  string            `json:"semantic_query"`
	DomainWeights map[string]int    `json:"domain_weights"`
}
