package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Record is a candidate document (a blog post or article) that can be ranked
// against a query. Score carries the prior relevance on input and the
// combined score after ranking.
type Record struct {
	Id          ID        `json:"id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content,omitempty"`
	Author      string    `json:"author,omitempty"`
	URL         string    `json:"url,omitempty"`
	Source      string    `json:"source,omitempty"`
	Tags        []string  `json:"tags"`
	Themes      []string  `json:"themes"`
	PublishedAt time.Time `json:"published_at,omitzero"`
	InsertedAt  time.Time `json:"inserted_at,omitzero"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`
	Vector      []float32 `json:"-"`
	Score       float64   `json:"score"`
	Ranking     *Ranking  `json:"ranking,omitempty"`
}

// Ranking holds the per-signal scores produced by the ranker.
type Ranking struct {
	Semantic float64 `json:"semantic_score"`
	Domain   float64 `json:"domain_score"`
	Company  float64 `json:"company_bonus"`
	Expanded float64 `json:"expanded_bonus"`
	Original float64 `json:"original_score"`
}

// Prior returns the relevance prior for the record. Once a record has been
// ranked, Score holds the combined value and the prior lives in the ranking.
func (r *Record) Prior() float64 {
	if r.Ranking != nil {
		return r.Ranking.Original
	}
	return r.Score
}

// ComparisonText returns the lower-cased text the ranker scores a record
// against: title, description, tags and themes joined by spaces.
func (r *Record) ComparisonText() string {
	parts := []string{
		r.Title,
		r.Description,
		strings.Join(r.Tags, " "),
		strings.Join(r.Themes, " "),
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// Theme is a named group of tags used to classify incoming records.
type Theme struct {
	Id         ID        `json:"id,omitempty" yaml:"-"`
	Name       string    `json:"name" yaml:"name"`
	Tags       []string  `json:"tags" yaml:"tags"`
	InsertedAt time.Time `json:"inserted_at,omitzero" yaml:"-"`
	UpdatedAt  time.Time `json:"updated_at,omitzero" yaml:"-"`
}

// SearchResult pairs a stored record with a retrieval score.
type SearchResult struct {
	Record *Record
	Score  float32
}
