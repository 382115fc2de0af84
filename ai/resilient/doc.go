// Package resilient adds retry with exponential backoff and circuit breaking
// to AI providers.
//
// Each operation name gets its own gobreaker circuit. Once a circuit opens,
// calls fail immediately with gobreaker.ErrOpenState until the open timeout
// passes.
//
//	provider = resilient.NewProvider(provider, resilient.DefaultConfig(), logger)
package resilient
