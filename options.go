package rankit

import (
	"errors"
	"log/slog"

	"github.com/poiesic/rankit/ai"
	"github.com/poiesic/rankit/ai/resilient"
	"github.com/poiesic/rankit/knowledge"
	"github.com/poiesic/rankit/metrics"
	"github.com/poiesic/rankit/rank"
)

// Option configures an Engine or a Library.
type Option func(*options) error

type options struct {
	aiConfig   *ai.Config
	resilience resilient.Config
	provider   ai.AIProvider
	base       *knowledge.Base
	weights    *rank.Weights
	metrics    *metrics.SearchMetrics
	inMemory   bool
	logger     *slog.Logger
}

func newOptions(opts []Option) (*options, error) {
	o := &options{
		aiConfig:   ai.DefaultConfig(),
		resilience: resilient.DefaultConfig(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithAIConfig sets the configuration used to build the default provider.
// It is ignored when WithProvider is given.
func WithAIConfig(cfg *ai.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return errors.New("ai config is nil")
		}
		o.aiConfig = cfg
		return nil
	}
}

// WithResilience sets retry and breaker settings for the default provider.
func WithResilience(cfg resilient.Config) Option {
	return func(o *options) error {
		o.resilience = cfg
		return nil
	}
}

// WithProvider uses provider as is instead of building one from the AI config.
// The Library takes ownership and closes it.
func WithProvider(provider ai.AIProvider) Option {
	return func(o *options) error {
		o.provider = provider
		return nil
	}
}

// WithKnowledgeBase replaces the embedded knowledge base.
func WithKnowledgeBase(base *knowledge.Base) Option {
	return func(o *options) error {
		o.base = base
		return nil
	}
}

// WithWeights overrides the ranker weights.
func WithWeights(w rank.Weights) Option {
	return func(o *options) error {
		o.weights = &w
		return nil
	}
}

// WithMetrics records every Library search on m.
func WithMetrics(m *metrics.SearchMetrics) Option {
	return func(o *options) error {
		o.metrics = m
		return nil
	}
}

// WithInMemory keeps the library in memory. The path passed to OpenLibrary
// is ignored.
func WithInMemory() Option {
	return func(o *options) error {
		o.inMemory = true
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}
