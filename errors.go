package rankit

import "errors"

var (
	// ErrProviderRequired is returned when an Engine is built without an AI provider.
	ErrProviderRequired = errors.New("AI provider is required")
)
