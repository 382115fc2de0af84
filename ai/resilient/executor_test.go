package resilient

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/rankit/ai/mock"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() Config {
	return Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2,
		BreakerEnabled:      false,
	}
}

func TestExecute_RetriesTemporaryFailure(t *testing.T) {
	exec := NewExecutor(fastConfig(), nil)
	errTemp := errors.New("temporary")

	attempts := 0
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errTemp
		}
		return nil
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestExecute_StopsAtMaxAttempts(t *testing.T) {
	exec := NewExecutor(fastConfig(), nil)
	errTemp := errors.New("temporary")

	attempts := 0
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		return errTemp
	}, nil)

	assert.ErrorIs(t, err, errTemp)
	assert.Equal(t, 3, attempts)
}

func TestExecute_DoesNotRetryPermanentFailure(t *testing.T) {
	exec := NewExecutor(fastConfig(), nil)
	errPermanent := errors.New("permanent")

	attempts := 0
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		return errPermanent
	}, func(error) Classification {
		return Classification{}
	})

	assert.ErrorIs(t, err, errPermanent)
	assert.Equal(t, 1, attempts)
}

func TestExecute_CanceledContext(t *testing.T) {
	exec := NewExecutor(fastConfig(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := exec.Execute(ctx, "op", func(context.Context) error {
		called = true
		return nil
	}, nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestExecute_NilCallback(t *testing.T) {
	exec := NewExecutor(fastConfig(), nil)
	assert.Error(t, exec.Execute(context.Background(), "op", nil, nil))
}

func TestExecute_OpensCircuitAfterFailures(t *testing.T) {
	cfg := fastConfig()
	cfg.RetryMaxAttempts = 1
	cfg.BreakerEnabled = true
	cfg.BreakerMinRequests = 2
	cfg.BreakerFailureRatio = 0.5
	cfg.BreakerOpenTimeout = time.Minute
	cfg.BreakerHalfOpenMaxCalls = 1
	exec := NewExecutor(cfg, nil)

	errTemp := errors.New("temporary")
	for i := 0; i < 2; i++ {
		err := exec.Execute(context.Background(), "op", func(context.Context) error {
			return errTemp
		}, nil)
		require.ErrorIs(t, err, errTemp, "iteration %d", i)
	}
	assert.Equal(t, gobreaker.StateOpen, exec.State("op"))

	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		t.Fatal("circuit should be open and must not call operation")
		return nil
	}, nil)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.True(t, IsCircuitOpen(err))

	// other operations keep their own circuit
	assert.Equal(t, gobreaker.StateClosed, exec.State("other"))
	require.NoError(t, exec.Execute(context.Background(), "other", func(context.Context) error { return nil }, nil))
}

func TestClassifyAIError(t *testing.T) {
	var syntaxErr error
	{
		var v any
		syntaxErr = json.Unmarshal([]byte("nope"), &v)
	}

	tests := []struct {
		name string
		err  error
		want Classification
	}{
		{"nil", nil, Classification{}},
		{"canceled", context.Canceled, Classification{}},
		{"deadline", context.DeadlineExceeded, Classification{}},
		{"malformed output", syntaxErr, Classification{Retryable: false, RecordFailure: true}},
		{"other", errors.New("connection reset"), Classification{Retryable: true, RecordFailure: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyAIError(tt.err))
		})
	}
}

func TestConfigNormalize(t *testing.T) {
	got := Config{RetryInitialBackoff: time.Second, RetryMaxBackoff: time.Millisecond}.normalize()
	def := DefaultConfig()

	assert.Equal(t, def.RetryMaxAttempts, got.RetryMaxAttempts)
	assert.Equal(t, time.Second, got.RetryMaxBackoff)
	assert.Equal(t, def.RetryMultiplier, got.RetryMultiplier)
	assert.Equal(t, def.BreakerMinRequests, got.BreakerMinRequests)
	assert.Equal(t, def.BreakerFailureRatio, got.BreakerFailureRatio)
	assert.Equal(t, def.BreakerOpenTimeout, got.BreakerOpenTimeout)
	assert.Equal(t, def.BreakerHalfOpenMaxCalls, got.BreakerHalfOpenMaxCalls)
}

func TestProvider_RetriesEmbedder(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	calls := 0
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("503")
		}
		return [][]float32{{1, 0}}, nil
	}
	provider := NewProvider(mock.NewMockProviderWithServices(embedder, nil), fastConfig(), nil)

	vectors, err := provider.Embedder().EmbedTexts(context.Background(), []string{"x"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}}, vectors)
	assert.Equal(t, 2, embedder.CallCount())
	assert.Nil(t, provider.EntityRecognizer())
}

func TestProvider_WrapsRecognizer(t *testing.T) {
	recognizer := mock.NewMockEntityRecognizer()
	inner := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), recognizer)
	provider := NewProvider(inner, fastConfig(), nil)

	require.NotNil(t, provider.EntityRecognizer())
	_, err := provider.EntityRecognizer().ExtractEntities(context.Background(), "Netflix")
	require.NoError(t, err)
	assert.Equal(t, 1, recognizer.CallCount())

	require.NoError(t, provider.Close())
	assert.True(t, inner.(*mock.MockProvider).Closed())
}
