package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Identical input must produce identical output.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// EntityRecognizer finds named entities in text.
// Implementations must be thread-safe for concurrent use.
type EntityRecognizer interface {
	// ExtractEntities returns the entity spans found in text, in the order
	// they appear. Returns an empty slice if nothing is found.
	ExtractEntities(ctx context.Context, text string) ([]Entity, error)
}

// EntityLabel classifies a recognized entity.
type EntityLabel string

const (
	// LabelOrg is a company or other organization.
	LabelOrg EntityLabel = "ORG"
	// LabelProduct is a named product or service.
	LabelProduct EntityLabel = "PRODUCT"
	// LabelLocation is a place: country, city, region.
	LabelLocation EntityLabel = "LOCATION"
	// LabelOther is anything else.
	LabelOther EntityLabel = "OTHER"
)

// EntityLabels lists the labels a recognizer may return.
var EntityLabels = []EntityLabel{LabelOrg, LabelProduct, LabelLocation, LabelOther}

// Entity is a span of text with its label.
type Entity struct {
	Span  string
	Label EntityLabel
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
type AIProvider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// EntityRecognizer returns the named-entity recognition service.
	// It may be nil when no recognizer is configured.
	EntityRecognizer() EntityRecognizer

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
