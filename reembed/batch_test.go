package reembed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/rankit/ai/mock"
	"github.com/poiesic/rankit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unnormalized returns vectors with magnitude 3.
func unnormalized(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1.0, 2.0, 2.0}
	}
	return out, nil
}

func TestBatchProcessor_Process(t *testing.T) {
	repo := setupTestDB(t)
	added := addRecords(t, repo, 3)

	embedder := mock.NewMockEmbedder()
	var seen []string
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		seen = texts
		return unnormalized(ctx, texts)
	}

	bp := NewBatchProcessor(repo, embedder, 3, time.Millisecond)
	require.NoError(t, bp.Process(context.Background(), added))

	assert.Equal(t, 1, embedder.CallCount())
	assert.Equal(t, []string{"post  go ", "post  go ", "post  go "}, seen)

	stored, err := repo.GetRecord(context.Background(), added[0].Id)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{1.0 / 3, 2.0 / 3, 2.0 / 3}, stored.Vector, 1e-6)
}

func TestBatchProcessor_EmptyBatch(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	bp := NewBatchProcessor(setupTestDB(t), embedder, 3, time.Millisecond)

	require.NoError(t, bp.Process(context.Background(), nil))
	assert.Equal(t, 0, embedder.CallCount())
}

func TestBatchProcessor_Retry(t *testing.T) {
	repo := setupTestDB(t)
	added := addRecords(t, repo, 2)

	embedder := mock.NewMockEmbedder()
	attempts := 0
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("temporary")
		}
		return unnormalized(ctx, texts)
	}

	bp := NewBatchProcessor(repo, embedder, 3, time.Millisecond)
	require.NoError(t, bp.Process(context.Background(), added))
	assert.Equal(t, 3, attempts)
}

func TestBatchProcessor_EmbeddingError(t *testing.T) {
	repo := setupTestDB(t)
	added := addRecords(t, repo, 2)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("service down")
	}

	bp := NewBatchProcessor(repo, embedder, 2, time.Millisecond)
	err := bp.Process(context.Background(), added)
	assert.ErrorIs(t, err, core.ErrCollaboratorUnavailable)
	assert.Equal(t, 2, embedder.CallCount())

	stored, err := repo.GetRecord(context.Background(), added[0].Id)
	require.NoError(t, err)
	assert.Empty(t, stored.Vector)
}

func TestBatchProcessor_CountMismatch(t *testing.T) {
	repo := setupTestDB(t)
	added := addRecords(t, repo, 2)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1, 0}}, nil
	}

	err := NewBatchProcessor(repo, embedder, 1, time.Millisecond).Process(context.Background(), added)
	assert.ErrorIs(t, err, core.ErrCollaboratorUnavailable)
}

func TestBatchProcessor_ContextCancellation(t *testing.T) {
	repo := setupTestDB(t)
	added := addRecords(t, repo, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	embedder := mock.NewMockEmbedder()
	err := NewBatchProcessor(repo, embedder, 3, time.Millisecond).Process(ctx, added)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, embedder.CallCount())
}
