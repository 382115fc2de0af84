package mock

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/poiesic/rankit/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEmbedder_Deterministic(t *testing.T) {
	m := NewMockEmbedder()
	ctx := context.Background()

	a, err := m.EmbedText(ctx, "hello")
	require.NoError(t, err)
	b, err := m.EmbedText(ctx, "hello")
	require.NoError(t, err)
	c, err := m.EmbedText(ctx, "world")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 384)

	var sum float64
	for _, v := range a {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5)
	assert.Equal(t, 3, m.CallCount())
}

func TestMockEmbedder_CustomFunc(t *testing.T) {
	m := NewMockEmbedder()
	m.EmbedTextsFunc = ConstantVectors([]float32{1, 0})

	vectors, err := m.EmbedTexts(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {1, 0}}, vectors)

	vectors[0][0] = 5
	again, _ := m.EmbedTexts(context.Background(), []string{"a"})
	assert.Equal(t, float32(1), again[0][0])

	m.Reset()
	assert.Zero(t, m.CallCount())
	assert.Nil(t, m.EmbedTextsFunc)
}

func TestMockEmbedder_ConcurrentCalls(t *testing.T) {
	m := NewMockEmbedder()
	m.Dimensions = 8

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.EmbedText(context.Background(), "x")
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, m.CallCount())
}

func TestMockEntityRecognizer(t *testing.T) {
	r := NewMockEntityRecognizer()
	entities, err := r.ExtractEntities(context.Background(), "Netflix")
	require.NoError(t, err)
	assert.Empty(t, entities)

	r.Returning(ai.Entity{Span: "Netflix", Label: ai.LabelOrg})
	entities, err = r.ExtractEntities(context.Background(), "Netflix")
	require.NoError(t, err)
	assert.Equal(t, []ai.Entity{{Span: "Netflix", Label: ai.LabelOrg}}, entities)

	boom := errors.New("boom")
	r.ExtractEntitiesFunc = func(ctx context.Context, text string) ([]ai.Entity, error) {
		return nil, boom
	}
	_, err = r.ExtractEntities(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, r.CallCount())
}

func TestMockProvider(t *testing.T) {
	p := NewMockProvider()
	mp := p.(*MockProvider)

	assert.Same(t, mp.GetMockEmbedder(), p.Embedder())
	assert.NotNil(t, p.EntityRecognizer())
	require.NoError(t, p.Close())
	assert.True(t, mp.Closed())

	noNER := NewMockProviderWithServices(NewMockEmbedder(), nil)
	assert.Nil(t, noNER.EntityRecognizer())
}
