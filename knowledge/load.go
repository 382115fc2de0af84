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


package knowledge

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/poiesic/rankit/core"
	"gopkg.in/yaml.v3"
)

// SupportedVersion is the only knowledge base schema version Load accepts.
const SupportedVersion = 1

//go:embed default.yaml
var defaultYAML []byte

var loadDefault = sync.OnceValues(func() (*Base, error) {
	return Load(bytes.NewReader(defaultYAML))
})

// Default returns the knowledge base compiled into the binary.
// It is parsed once and shared.
func Default() (*Base, error) {
	return loadDefault()
}

// document mirrors the YAML layout.
type document struct {
	Version        int                    `yaml:"version"`
	Intents        []core.IntentPattern   `yaml:"intents"`
	TechDomains    []core.KnowledgeDomain `yaml:"tech_domains"`
	Companies      []core.KnowledgeDomain `yaml:"companies"`
	NonTechDomains []core.KnowledgeDomain `yaml:"non_tech_domains"`
}

// LoadFile reads a knowledge base from a YAML file.
func LoadFile(path string) (*Base, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKnowledgeBase, err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads and validates a knowledge base from YAML.
// Any error wraps ErrInvalidKnowledgeBase and should be treated as fatal.
func Load(r io.Reader) (*Base, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: %w", ErrInvalidKnowledgeBase, ErrEmptyDocument)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidKnowledgeBase, err)
	}

	if doc.Version != SupportedVersion {
		return nil, fmt.Errorf("%w: %w: got %d, want %d",
			ErrInvalidKnowledgeBase, ErrUnsupportedVersion, doc.Version, SupportedVersion)
	}

	if err := validateIntents(doc.Intents); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKnowledgeBase, err)
	}

	b := &Base{
		version: doc.Version,
		intents: doc.Intents,
		byID:    make(map[string]*core.KnowledgeDomain),
	}

	catalogs := []struct {
		kind    core.DomainKind
		domains []core.KnowledgeDomain
		dst     *[]core.KnowledgeDomain
	}{
		{core.DomainKindTech, doc.TechDomains, &b.tech},
		{core.DomainKindCompany, doc.Companies, &b.companies},
		{core.DomainKindNonTech, doc.NonTechDomains, &b.nonTech},
	}
	for _, c := range catalogs {
		normalized := make([]core.KnowledgeDomain, len(c.domains))
		for i, d := range c.domains {
			nd, err := normalizeDomain(d)
			if err != nil {
				return nil, fmt.Errorf("%w: %s domain %d: %w", ErrInvalidKnowledgeBase, c.kind, i, err)
			}
			normalized[i] = nd
		}
		*c.dst = normalized
		for i := range normalized {
			id := core.DomainID(c.kind, normalized[i].Name)
			if kind, _ := core.ParseDomainID(id); kind != c.kind {
				return nil, fmt.Errorf("%w: %w: %q is reserved for %s domains",
					ErrInvalidKnowledgeBase, ErrDuplicateDomain, id, kind)
			}
			if _, exists := b.byID[id]; exists {
				return nil, fmt.Errorf("%w: %w: %q", ErrInvalidKnowledgeBase, ErrDuplicateDomain, id)
			}
			b.byID[id] = &normalized[i]
		}
	}

	return b, nil
}

func validateIntents(intents []core.IntentPattern) error {
	if len(intents) == 0 {
		return ErrNoIntents
	}
	seen := make(map[core.IntentLabel]bool, len(intents))
	for _, p := range intents {
		if strings.TrimSpace(string(p.Label)) == "" {
			return fmt.Errorf("%w: empty label", ErrInvalidIntent)
		}
		if seen[p.Label] {
			return fmt.Errorf("%w: duplicate label %q", ErrInvalidIntent, p.Label)
		}
		seen[p.Label] = true
		if strings.TrimSpace(p.Pattern) == "" {
			return fmt.Errorf("%w: empty pattern for %q", ErrInvalidIntent, p.Label)
		}
		if _, err := regexp.Compile(p.Pattern); err != nil {
			return fmt.Errorf("%w: %q: %w", ErrInvalidIntent, p.Label, err)
		}
	}
	return nil
}

// normalizeDomain lower-cases and trims the name and every term.
func normalizeDomain(d core.KnowledgeDomain) (core.KnowledgeDomain, error) {
	name := strings.ToLower(strings.TrimSpace(d.Name))
	if name == "" {
		return core.KnowledgeDomain{}, ErrEmptyDomainName
	}

	var err error
	out := core.KnowledgeDomain{Name: name}
	if out.Keywords, err = normalizeTerms(d.Keywords); err != nil {
		return out, fmt.Errorf("%s keywords: %w", name, err)
	}
	if out.Concepts, err = normalizeTerms(d.Concepts); err != nil {
		return out, fmt.Errorf("%s concepts: %w", name, err)
	}
	if out.Technologies, err = normalizeTerms(d.Technologies); err != nil {
		return out, fmt.Errorf("%s technologies: %w", name, err)
	}
	return out, nil
}

func normalizeTerms(terms []string) ([]string, error) {
	out := make([]string, len(terms))
	for i, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			return nil, ErrEmptyTerm
		}
		out[i] = t
	}
	return out, nil
}
