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


package ai

import (
	"errors"
	"strings"
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string

	// RecognizerHost is the base URL for the chat model used for entity recognition.
	RecognizerHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "all-minilm", "text-embedding-3-small"
	EmbeddingModel string

	// RecognizerModel is the chat model used for entity recognition.
	// Empty disables the recognizer; entity extraction then relies on the
	// knowledge base and capitalization alone.
	RecognizerModel string

	// NormalizeEmbeddings scales every embedding to unit length.
	// Default: true
	NormalizeEmbeddings bool

	// RecognizerAttempts is how many times a malformed recognizer reply is retried.
	// Default: 3
	RecognizerAttempts int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithRecognizerHost sets the entity recognizer host URL.
func WithRecognizerHost(host string) ConfigOption {
	return func(c *Config) {
		c.RecognizerHost = host
	}
}

// WithHost sets both embedding and recognizer hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.RecognizerHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithRecognizerModel sets the entity recognizer model identifier.
func WithRecognizerModel(model string) ConfigOption {
	return func(c *Config) {
		c.RecognizerModel = model
	}
}

// WithNormalizeEmbeddings toggles unit-length normalization of embeddings.
func WithNormalizeEmbeddings(normalize bool) ConfigOption {
	return func(c *Config) {
		c.NormalizeEmbeddings = normalize
	}
}

// WithRecognizerAttempts sets how often a malformed recognizer reply is retried.
func WithRecognizerAttempts(attempts int) ConfigOption {
	return func(c *Config) {
		c.RecognizerAttempts = attempts
	}
}

// DefaultConfig returns a Config with sensible defaults for local OpenAI-compatible services.
// The recognizer is disabled until a model is set.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		EmbeddingHost:       defaultHost,
		RecognizerHost:      defaultHost,
		EmbeddingModel:      "all-minilm",
		NormalizeEmbeddings: true,
		RecognizerAttempts:  3,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithHost("http://localhost:11434/v1"),
//	    WithRecognizerModel("qwen2.5:3b"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// RecognizerEnabled reports whether a recognizer model is configured.
func (c *Config) RecognizerEnabled() bool {
	return c.RecognizerModel != ""
}

// Normalize ensures the configuration is in a canonical form.
// It adds the /v1 suffix to hosts if missing, which is required
// by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	c.EmbeddingHost = withV1(c.EmbeddingHost)
	c.RecognizerHost = withV1(c.RecognizerHost)
}

func withV1(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	return strings.TrimSuffix(host, "/") + "/v1"
}

// Validate checks that the configuration is valid and complete.
// It normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.RecognizerEnabled() && c.RecognizerHost == "" {
		return errors.New("ai config: RecognizerHost is required when RecognizerModel is set")
	}
	if c.RecognizerAttempts < 1 || c.RecognizerAttempts > 10 {
		return errors.New("ai config: RecognizerAttempts must be between 1 and 10")
	}
	return nil
}
