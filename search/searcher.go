package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"

	"github.com/poiesic/rankit/ai"
	"github.com/poiesic/rankit/core"
	"github.com/poiesic/rankit/expand"
	"github.com/poiesic/rankit/rank"
	"github.com/poiesic/rankit/storage"
)

const (
	// DefaultMaxHits is used when FindRelevant is called with maxHits == 0.
	DefaultMaxHits = 10
	// MaxHits is the largest number of results a search may ask for.
	MaxHits = 100
	// DefaultMinSimilarity is the vector candidate cutoff when none is given.
	DefaultMinSimilarity = 0.3

	candidateFactor = 3
)

// Results is the outcome of one search.
type Results struct {
	Query   *core.SemanticQuery `json:"semantic_analysis"`
	Records []*core.Record      `json:"results"`
	// Reranked is false when ranking failed and Records are in lexical order.
	Reranked bool `json:"reranked"`
}

// Searcher finds and re-ranks stored records for a query.
type Searcher struct {
	records       storage.RecordRepository
	expander      *expand.Expander
	ranker        *rank.Ranker
	embedder      ai.Embedder
	minSimilarity float32
	logger        *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithVectorCandidates adds records whose stored vector is at least
// minSimilarity to the embedded semantic text to the candidate set.
func WithVectorCandidates(embedder ai.Embedder, minSimilarity float32) Option {
	return func(s *Searcher) error {
		if minSimilarity < -1 || minSimilarity > 1 {
			return fmt.Errorf("min similarity must be within [-1, 1], got %v", minSimilarity)
		}
		s.embedder = embedder
		s.minSimilarity = minSimilarity
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	records storage.RecordRepository,
	expander *expand.Expander,
	ranker *rank.Ranker,
	opts ...Option,
) (*Searcher, error) {
	if records == nil {
		return nil, ErrRecordRepositoryRequired
	}
	if expander == nil {
		return nil, ErrExpanderRequired
	}
	if ranker == nil {
		return nil, ErrRankerRequired
	}

	s := &Searcher{
		records:       records,
		expander:      expander,
		ranker:        ranker,
		minSimilarity: DefaultMinSimilarity,
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "search")

	return s, nil
}

// FindRelevant searches for records relevant to the query.
// Returns up to maxHits records; 0 means DefaultMaxHits.
func (s *Searcher) FindRelevant(ctx context.Context, query string, maxHits int) (*Results, error) {
	return s.FindRelevantWithMonitor(ctx, query, maxHits, nil)
}

// FindRelevantWithMonitor searches for records relevant to the query with monitoring.
// The monitor receives callbacks at each stage of the search process.
func (s *Searcher) FindRelevantWithMonitor(ctx context.Context, query string, maxHits int, monitor SearchMonitor) (*Results, error) {
	if maxHits == 0 {
		maxHits = DefaultMaxHits
	}
	if maxHits < 1 || maxHits > MaxHits {
		return nil, fmt.Errorf("%w: %d not in 1..%d", ErrInvalidMaxHits, maxHits, MaxHits)
	}
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query)

	// 1. Expand the query
	sq, err := s.expander.Expand(ctx, query)
	if err != nil {
		s.logger.Error("error expanding query", "query", query, "err", err)
		return nil, err
	}
	monitor.AfterExpansion(sq)

	// 2. Lexical candidates
	limit := maxHits * candidateFactor
	hits, err := s.records.FindLexical(ctx, lexicalTerms(query, sq.ExpandedTerms), limit)
	if err != nil {
		s.logger.Error("error querying lexical candidates", "err", err)
		return nil, err
	}
	monitor.AfterLexicalSearch(len(hits))

	candidates := make([]*core.Record, 0, len(hits))
	seen := make(map[core.ID]bool, len(hits))
	if len(hits) > 0 {
		top := float64(hits[0].Score)
		for _, hit := range hits {
			hit.Record.Score = float64(hit.Score) / top
			hit.Record.Ranking = nil
			candidates = append(candidates, hit.Record)
			seen[hit.Record.Id] = true
		}
	}

	// 3. Vector candidates
	for _, match := range s.vectorCandidates(ctx, sq, limit, monitor) {
		if seen[match.Record.Id] {
			continue
		}
		match.Record.Score = 0
		match.Record.Ranking = nil
		candidates = append(candidates, match.Record)
		seen[match.Record.Id] = true
	}
	monitor.AfterCandidateMerge(maps.Keys(seen))

	results := &Results{Query: sq, Records: candidates, Reranked: true}

	// 4. Rank
	if len(candidates) > 0 {
		ranked, err := s.ranker.Rank(ctx, candidates, sq)
		switch {
		case errors.Is(err, core.ErrCollaboratorUnavailable):
			s.logger.Warn("ranking unavailable, returning lexical order", "err", err)
			monitor.Fallback(err)
			results.Reranked = false
		case err != nil:
			return nil, err
		default:
			results.Records = ranked
		}
	}

	if len(results.Records) > maxHits {
		results.Records = results.Records[:maxHits]
	}
	monitor.Finish(results)

	return results, nil
}

// vectorCandidates returns stored records close to the semantic text.
// Failures are logged and yield no candidates.
func (s *Searcher) vectorCandidates(ctx context.Context, sq *core.SemanticQuery, limit int, monitor SearchMonitor) []*core.SearchResult {
	if s.embedder == nil || strings.TrimSpace(sq.SemanticText) == "" {
		return nil
	}

	vector, err := s.embedder.EmbedText(ctx, sq.SemanticText)
	if err != nil {
		s.logger.Warn("error embedding semantic text, skipping vector candidates", "err", err)
		return nil
	}

	matches, err := s.records.FindSimilar(ctx, vector, s.minSimilarity, limit)
	if err != nil {
		s.logger.Warn("error querying similar records", "err", err)
		return nil
	}
	monitor.AfterVectorSearch(len(matches))
	return matches
}
