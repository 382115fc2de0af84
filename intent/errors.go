package intent

import "errors"

var (
	// ErrNoPatterns is returned when the pattern table is empty.
	ErrNoPatterns = errors.New("no intent patterns registered")

	// ErrEmptyLabel is returned when a pattern has no label.
	ErrEmptyLabel = errors.New("intent label cannot be empty")

	// ErrDuplicateLabel is returned when two patterns share a label.
	ErrDuplicateLabel = errors.New("duplicate intent label")

	// ErrInvalidPattern is returned when a pattern does not compile.
	ErrInvalidPattern = errors.New("invalid intent pattern")
)
