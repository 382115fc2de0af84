package rank

import "errors"

var (
	// ErrKnowledgeBaseRequired is returned when no knowledge base is supplied.
	ErrKnowledgeBaseRequired = errors.New("knowledge base is required")

	// ErrEmbedderRequired is returned when no embedder is supplied.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrInvalidConcurrency is returned for a worker count below 1.
	ErrInvalidConcurrency = errors.New("concurrency must be at least 1")

	// ErrInvalidWeights is returned when a weight is negative.
	ErrInvalidWeights = errors.New("weights must not be negative")
)
