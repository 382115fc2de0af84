package rank

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/rankit/ai/mock"
	"github.com/poiesic/rankit/core"
	"github.com/poiesic/rankit/extract"
	"github.com/poiesic/rankit/expand"
	"github.com/poiesic/rankit/intent"
	"github.com/poiesic/rankit/knowledge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const netflixQuery = "I want to build a software with trendy backend solutions and AI that is similar to Netflix"

func defaultBase(t *testing.T) *knowledge.Base {
	t.Helper()
	base, err := knowledge.Default()
	require.NoError(t, err)
	return base
}

func expandQuery(t *testing.T, query string) *core.SemanticQuery {
	t.Helper()
	base := defaultBase(t)
	classifier, err := intent.NewClassifier(base.Intents())
	require.NoError(t, err)
	extractor, err := extract.NewExtractor(base)
	require.NoError(t, err)
	expander, err := expand.NewExpander(base, classifier, extractor)
	require.NoError(t, err)
	sq, err := expander.Expand(context.Background(), query)
	require.NoError(t, err)
	return sq
}

func constantEmbedder() *mock.MockEmbedder {
	m := mock.NewMockEmbedder()
	m.EmbedTextsFunc = mock.ConstantVectors([]float32{1, 0, 0})
	return m
}

func newTestRanker(t *testing.T, embedder *mock.MockEmbedder, opts ...Option) *Ranker {
	t.Helper()
	r, err := NewRanker(defaultBase(t), embedder, opts...)
	require.NoError(t, err)
	t.Cleanup(r.Release)
	return r
}

func sampleRecords() []*core.Record {
	return []*core.Record{
		{Title: "Gardening for beginners", Description: "Grow tomatoes", Tags: []string{"plants"}, Score: 0.2},
		{Title: "How Netflix scales streaming", Description: "Microservices on AWS with docker", Tags: []string{"backend"}, Score: 0.2},
		{Title: "Intro to React", Description: "Build UI components", Tags: []string{"frontend"}, Themes: []string{"javascript"}, Score: 0.4},
		{Title: "", Description: "", Score: 0.1},
	}
}

func TestRank_EmptyRecords(t *testing.T) {
	embedder := constantEmbedder()
	r := newTestRanker(t, embedder)

	got, err := r.Rank(context.Background(), nil, expandQuery(t, netflixQuery))
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
	assert.Zero(t, embedder.CallCount())
}

func TestRank_CompanyMentionScoresHigher(t *testing.T) {
	r := newTestRanker(t, constantEmbedder())
	sq := expandQuery(t, netflixQuery)

	plain := &core.Record{Title: "Streaming video at scale", Description: "A case study"}
	named := &core.Record{Title: "Streaming video at scale at Netflix", Description: "A case study"}

	got, err := r.Rank(context.Background(), []*core.Record{plain, named}, sq)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Same(t, named, got[0])
	assert.Greater(t, named.Score, plain.Score)
	assert.Greater(t, named.Ranking.Company, plain.Ranking.Company)
	assert.Equal(t, named.Ranking.Semantic, plain.Ranking.Semantic)
}

func TestRank_Signals(t *testing.T) {
	r := newTestRanker(t, constantEmbedder())
	sq := expandQuery(t, netflixQuery)

	rec := &core.Record{
		Title:       "Netflix streaming",
		Description: "react on aws",
		Score:       0.5,
	}
	_, err := r.Rank(context.Background(), []*core.Record{rec}, sq)
	require.NoError(t, err)

	// text: "netflix streaming react on aws  "
	// company: 5 for the mention, +1 streaming, +1 react, +1 aws
	assert.Equal(t, 8.0, rec.Ranking.Company)
	// domain: company_netflix 3*2, frontend 1 * (react keyword + react tech),
	// backend 1 * aws
	assert.Equal(t, 9.0, rec.Ranking.Domain)
	// expanded: streaming, react, aws, netflix
	assert.Equal(t, 4.0, rec.Ranking.Expanded)
	assert.InDelta(t, 1.0, rec.Ranking.Semantic, 1e-9)
	assert.Equal(t, 0.5, rec.Ranking.Original)

	want := 1.0*0.6 + 0.9*0.3 + 0.8*0.1 + 0.4*0.1 + 0.5*0.5
	assert.InDelta(t, want, rec.Score, 1e-9)
}

func TestRank_SortedDescendingAndStable(t *testing.T) {
	r := newTestRanker(t, constantEmbedder())
	sq := expandQuery(t, "tips for my garden plants")

	a := &core.Record{Title: "unrelated one", Score: 0.3}
	b := &core.Record{Title: "unrelated two", Score: 0.3}
	c := &core.Record{Title: "garden plants", Score: 0.3}

	got, err := r.Rank(context.Background(), []*core.Record{a, b, c}, sq)
	require.NoError(t, err)
	assert.Equal(t, []*core.Record{c, a, b}, got)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
	}
}

func TestRank_Idempotent(t *testing.T) {
	r := newTestRanker(t, mock.NewMockEmbedder())
	sq := expandQuery(t, netflixQuery)

	first, err := r.Rank(context.Background(), sampleRecords(), sq)
	require.NoError(t, err)
	scores := make([]float64, len(first))
	order := make([]string, len(first))
	for i, rec := range first {
		scores[i] = rec.Score
		order[i] = rec.Title
	}

	second, err := r.Rank(context.Background(), first, sq)
	require.NoError(t, err)
	for i, rec := range second {
		assert.Equal(t, order[i], rec.Title)
		assert.InDelta(t, scores[i], rec.Score, 1e-12)
	}
}

func TestRank_BatchedEmbedding(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	var batch []string
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		batch = texts
		return mock.ConstantVectors([]float32{0, 1})(ctx, texts)
	}
	r := newTestRanker(t, embedder)
	sq := expandQuery(t, netflixQuery)

	records := sampleRecords()
	_, err := r.Rank(context.Background(), records, sq)
	require.NoError(t, err)

	assert.Equal(t, 1, embedder.CallCount())
	require.Len(t, batch, 4, "query plus three non-blank texts")
	assert.Equal(t, sq.SemanticText, batch[0])

	for _, rec := range records {
		if rec.Title == "" {
			assert.Zero(t, rec.Ranking.Semantic)
		}
	}
}

func TestRank_EmptySemanticText(t *testing.T) {
	embedder := constantEmbedder()
	r := newTestRanker(t, embedder)

	records := sampleRecords()
	got, err := r.Rank(context.Background(), records, expandQuery(t, ""))
	require.NoError(t, err)
	assert.Zero(t, embedder.CallCount())
	for _, rec := range got {
		assert.Zero(t, rec.Ranking.Semantic)
		assert.InDelta(t, rec.Ranking.Original*0.5, rec.Score, 1e-12)
	}
}

func TestRank_EmbedderFailureLeavesRecordsUntouched(t *testing.T) {
	boom := errors.New("embedding service down")
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, boom
	}
	r := newTestRanker(t, embedder)

	records := sampleRecords()
	got, err := r.Rank(context.Background(), records, expandQuery(t, netflixQuery))
	assert.Nil(t, got)
	assert.ErrorIs(t, err, core.ErrCollaboratorUnavailable)
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, sampleRecords(), records)
}

func TestRank_VectorCountMismatch(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1}}, nil
	}
	r := newTestRanker(t, embedder)

	_, err := r.Rank(context.Background(), sampleRecords(), expandQuery(t, netflixQuery))
	assert.ErrorIs(t, err, core.ErrCollaboratorUnavailable)
}

func TestRank_ConcurrentMatchesSerial(t *testing.T) {
	sq := expandQuery(t, netflixQuery)
	serial := newTestRanker(t, mock.NewMockEmbedder())
	parallel := newTestRanker(t, mock.NewMockEmbedder(), WithConcurrency(4))

	var many []*core.Record
	for i := 0; i < 10; i++ {
		many = append(many, sampleRecords()...)
	}
	var copies []*core.Record
	for _, rec := range many {
		cp := *rec
		copies = append(copies, &cp)
	}

	want, err := serial.Rank(context.Background(), many, sq)
	require.NoError(t, err)
	got, err := parallel.Rank(context.Background(), copies, sq)
	require.NoError(t, err)

	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Title, got[i].Title)
		assert.Equal(t, want[i].Score, got[i].Score)
	}
}

func TestRank_CustomWeights(t *testing.T) {
	r := newTestRanker(t, constantEmbedder(), WithWeights(Weights{Prior: 1}))
	records := []*core.Record{{Title: "netflix", Score: 0.7}}

	_, err := r.Rank(context.Background(), records, expandQuery(t, netflixQuery))
	require.NoError(t, err)
	assert.InDelta(t, 0.7, records[0].Score, 1e-12)
	assert.Equal(t, Weights{Prior: 1}, r.Weights())
}

func TestNewRanker_Errors(t *testing.T) {
	base := defaultBase(t)

	_, err := NewRanker(nil, mock.NewMockEmbedder())
	assert.ErrorIs(t, err, ErrKnowledgeBaseRequired)
	_, err = NewRanker(base, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
	_, err = NewRanker(base, mock.NewMockEmbedder(), WithConcurrency(0))
	assert.ErrorIs(t, err, ErrInvalidConcurrency)
	_, err = NewRanker(base, mock.NewMockEmbedder(), WithWeights(Weights{Semantic: -1}))
	assert.ErrorIs(t, err, ErrInvalidWeights)
	assert.Equal(t, DefaultWeights(), Weights{Semantic: 0.6, Domain: 0.3, Company: 0.1, Expanded: 0.1, Prior: 0.5})
}
