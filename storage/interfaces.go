package storage

import (
	"context"
	"time"

	"github.com/poiesic/rankit/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// LexicalHit is a record matched by term overlap. Score is the number of
// distinct terms found in the record's comparison text.
type LexicalHit struct {
	Record *core.Record
	Score  int
}

// RecordRepository provides operations for managing content records.
type RecordRepository interface {
	Repository

	// AddRecords stores one or more records.
	// A record with a URL gets the content-derived ID of that URL, so adding
	// the same URL twice replaces the earlier record. Records without a URL
	// and with ID=0 get the next sequence value.
	// Sets InsertedAt if not already set.
	AddRecords(ctx context.Context, records ...*core.Record) ([]*core.Record, error)

	// UpdateRecords updates existing records and sets UpdatedAt.
	// Returns ErrNotFound if any record doesn't exist.
	UpdateRecords(ctx context.Context, records ...*core.Record) ([]*core.Record, error)

	// DeleteRecords removes records and their index entries.
	// Returns ErrNotFound if any record doesn't exist.
	DeleteRecords(ctx context.Context, ids ...core.ID) error

	// GetRecord retrieves a single record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	GetRecord(ctx context.Context, id core.ID) (*core.Record, error)

	// GetRecords retrieves multiple records by their IDs.
	// Returns only the records that exist (no error for missing records).
	GetRecords(ctx context.Context, ids ...core.ID) ([]*core.Record, error)

	// GetRecordsByPublishedRange retrieves records where start <= PublishedAt < end,
	// ordered by PublishedAt.
	GetRecordsByPublishedRange(ctx context.Context, start, end time.Time) ([]*core.Record, error)

	// GetRecentRecords retrieves up to limit records, most recently published first.
	GetRecentRecords(ctx context.Context, limit int) ([]*core.Record, error)

	// FindLexical returns records whose comparison text contains at least one
	// of terms, best overlap first, up to limit results.
	FindLexical(ctx context.Context, terms []string, limit int) ([]*LexicalHit, error)

	// FindSimilar finds records similar to the given vector.
	// Returns records with similarity >= minSimilarity, up to limit results.
	// Results are ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error)

	// ForEachRecord calls fn for every stored record in ID order, in batches
	// of batchSize. Iteration stops at the first error fn returns.
	ForEachRecord(ctx context.Context, batchSize int, fn func(records []*core.Record) error) error
}

// ThemeRepository provides operations for managing tagging themes.
type ThemeRepository interface {
	// PutThemes stores themes keyed by the content-derived ID of their name,
	// replacing any theme with the same name.
	PutThemes(ctx context.Context, themes ...*core.Theme) ([]*core.Theme, error)

	// GetTheme retrieves a theme by ID.
	// Returns ErrNotFound if the theme doesn't exist.
	GetTheme(ctx context.Context, id core.ID) (*core.Theme, error)

	// ListThemes returns every stored theme ordered by name.
	ListThemes(ctx context.Context) ([]*core.Theme, error)

	// DeleteThemes removes themes by ID.
	// Returns ErrNotFound if any theme doesn't exist.
	DeleteThemes(ctx context.Context, ids ...core.ID) error

	// Close closes the storage backend and releases resources.
	Close() error
}
