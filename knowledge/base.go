package knowledge

import (
	"slices"

	"github.com/poiesic/rankit/core"
)

// Base is an immutable knowledge base: the intent pattern table plus the
// tech, company and non-tech domain catalogs. A Base is safe for concurrent
// use. Domains returned by its accessors must not be modified.
type Base struct {
	version   int
	intents   []core.IntentPattern
	tech      []core.KnowledgeDomain
	companies []core.KnowledgeDomain
	nonTech   []core.KnowledgeDomain
	byID      map[string]*core.KnowledgeDomain
}

// Version returns the schema version the base was loaded from.
func (b *Base) Version() int {
	return b.version
}

// Intents returns a copy of the intent pattern table in registration order.
func (b *Base) Intents() []core.IntentPattern {
	return slices.Clone(b.intents)
}

// Catalog returns the domains of one kind in catalog order.
func (b *Base) Catalog(kind core.DomainKind) []core.KnowledgeDomain {
	switch kind {
	case core.DomainKindCompany:
		return b.companies
	case core.DomainKindNonTech:
		return b.nonTech
	default:
		return b.tech
	}
}

// TechDomains returns the tech domain catalog.
func (b *Base) TechDomains() []core.KnowledgeDomain {
	return b.tech
}

// Companies returns the company catalog.
func (b *Base) Companies() []core.KnowledgeDomain {
	return b.companies
}

// NonTechDomains returns the non-tech domain catalog.
func (b *Base) NonTechDomains() []core.KnowledgeDomain {
	return b.nonTech
}

// Lookup finds a domain by its namespaced identifier
// ("company_netflix", "non_tech_gardening", "backend").
func (b *Base) Lookup(id string) (*core.KnowledgeDomain, bool) {
	d, ok := b.byID[id]
	return d, ok
}

// Company finds a company by bare name. The name must already be lower case.
func (b *Base) Company(name string) (*core.KnowledgeDomain, bool) {
	return b.Lookup(core.DomainID(core.DomainKindCompany, name))
}

// IsCompany reports whether name is a known company identifier.
func (b *Base) IsCompany(name string) bool {
	_, ok := b.Company(name)
	return ok
}
