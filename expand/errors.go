// Package expand turns a raw query into an expanded SemanticQuery.
package expand

import "errors"

var (
	// ErrKnowledgeBaseRequired is returned when no knowledge base is supplied.
	ErrKnowledgeBaseRequired = errors.New("knowledge base is required")

	// ErrClassifierRequired is returned when no intent classifier is supplied.
	ErrClassifierRequired = errors.New("intent classifier is required")

	// ErrExtractorRequired is returned when no entity extractor is supplied.
	ErrExtractorRequired = errors.New("entity extractor is required")

	// ErrInvalidMaxTerms is returned for a term cap outside 1..MaxTerms.
	ErrInvalidMaxTerms = errors.New("invalid max terms")
)
