package knowledge

import "errors"

var (
	// ErrInvalidKnowledgeBase wraps every load failure.
	ErrInvalidKnowledgeBase = errors.New("invalid knowledge base")

	// ErrEmptyDocument is returned when the YAML source holds no document.
	ErrEmptyDocument = errors.New("empty document")

	// ErrUnsupportedVersion is returned for an unknown schema version.
	ErrUnsupportedVersion = errors.New("unsupported version")

	// ErrNoIntents is returned when the intent pattern table is empty.
	ErrNoIntents = errors.New("no intent patterns")

	// ErrInvalidIntent is returned for a bad intent pattern entry.
	ErrInvalidIntent = errors.New("invalid intent pattern")

	// ErrEmptyDomainName is returned when a domain has no id.
	ErrEmptyDomainName = errors.New("domain id cannot be empty")

	// ErrEmptyTerm is returned when a vocabulary term is blank.
	ErrEmptyTerm = errors.New("term cannot be empty")

	// ErrDuplicateDomain is returned when two domains share a namespaced id.
	ErrDuplicateDomain = errors.New("duplicate domain id")
)
