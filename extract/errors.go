package extract

import "errors"

var (
	// ErrKnowledgeBaseRequired is returned when no knowledge base is supplied.
	ErrKnowledgeBaseRequired = errors.New("knowledge base is required")
)
