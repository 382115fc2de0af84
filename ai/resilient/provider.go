package resilient

import (
	"context"
	"log/slog"

	"github.com/poiesic/rankit/ai"
)

const (
	opEmbed     = "embed"
	opRecognize = "recognize"
)

// Embedder wraps an ai.Embedder with an Executor.
type Embedder struct {
	next ai.Embedder
	exec *Executor
}

// NewEmbedder returns next guarded by exec.
func NewEmbedder(next ai.Embedder, exec *Executor) ai.Embedder {
	return &Embedder{next: next, exec: exec}
}

// EmbedText embeds a single text through the executor.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	var out []float32
	err := e.exec.Execute(ctx, opEmbed, func(ctx context.Context) error {
		var err error
		out, err = e.next.EmbedText(ctx, text)
		return err
	}, nil)
	return out, err
}

// EmbedTexts embeds a batch through the executor.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	var out [][]float32
	err := e.exec.Execute(ctx, opEmbed, func(ctx context.Context) error {
		var err error
		out, err = e.next.EmbedTexts(ctx, texts)
		return err
	}, nil)
	return out, err
}

// EntityRecognizer wraps an ai.EntityRecognizer with an Executor.
type EntityRecognizer struct {
	next ai.EntityRecognizer
	exec *Executor
}

// NewEntityRecognizer returns next guarded by exec.
func NewEntityRecognizer(next ai.EntityRecognizer, exec *Executor) ai.EntityRecognizer {
	return &EntityRecognizer{next: next, exec: exec}
}

// ExtractEntities recognizes entities through the executor.
func (r *EntityRecognizer) ExtractEntities(ctx context.Context, text string) ([]ai.Entity, error) {
	var out []ai.Entity
	err := r.exec.Execute(ctx, opRecognize, func(ctx context.Context) error {
		var err error
		out, err = r.next.ExtractEntities(ctx, text)
		return err
	}, nil)
	return out, err
}

// Provider wraps every service of an ai.AIProvider with one shared Executor.
type Provider struct {
	next       ai.AIProvider
	exec       *Executor
	embedder   ai.Embedder
	recognizer ai.EntityRecognizer
}

// NewProvider guards the services of next. Embedding and recognition trip
// separate breakers.
func NewProvider(next ai.AIProvider, cfg Config, logger *slog.Logger) ai.AIProvider {
	exec := NewExecutor(cfg, logger)
	p := &Provider{
		next:     next,
		exec:     exec,
		embedder: NewEmbedder(next.Embedder(), exec),
	}
	if rec := next.EntityRecognizer(); rec != nil {
		p.recognizer = NewEntityRecognizer(rec, exec)
	}
	return p
}

// Embedder returns the guarded embedder.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// EntityRecognizer returns the guarded recognizer, or nil if the wrapped
// provider has none.
func (p *Provider) EntityRecognizer() ai.EntityRecognizer {
	return p.recognizer
}

// Executor exposes the shared executor, mainly for breaker state.
func (p *Provider) Executor() *Executor {
	return p.exec
}

// Close closes the wrapped provider.
func (p *Provider) Close() error {
	return p.next.Close()
}
