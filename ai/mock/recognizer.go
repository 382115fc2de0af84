package mock

import (
	"context"
	"sync/atomic"

	"github.com/poiesic/rankit/ai"
)

// MockEntityRecognizer is a test double for ai.EntityRecognizer.
// By default it finds nothing.
type MockEntityRecognizer struct {
	// ExtractEntitiesFunc is called by ExtractEntities if set.
	ExtractEntitiesFunc func(ctx context.Context, text string) ([]ai.Entity, error)

	callCount atomic.Int64
}

// NewMockEntityRecognizer creates a mock recognizer that returns no entities.
func NewMockEntityRecognizer() *MockEntityRecognizer {
	return &MockEntityRecognizer{}
}

// ExtractEntities returns the injected result, or an empty slice.
func (m *MockEntityRecognizer) ExtractEntities(ctx context.Context, text string) ([]ai.Entity, error) {
	m.callCount.Add(1)

	if m.ExtractEntitiesFunc != nil {
		return m.ExtractEntitiesFunc(ctx, text)
	}
	return []ai.Entity{}, nil
}

// Returning makes the recognizer answer every call with entities.
func (m *MockEntityRecognizer) Returning(entities ...ai.Entity) *MockEntityRecognizer {
	m.ExtractEntitiesFunc = func(ctx context.Context, text string) ([]ai.Entity, error) {
		return append([]ai.Entity(nil), entities...), nil
	}
	return m
}

// CallCount returns the number of times ExtractEntities was called.
func (m *MockEntityRecognizer) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and custom functions.
func (m *MockEntityRecognizer) Reset() {
	m.callCount.Store(0)
	m.ExtractEntitiesFunc = nil
}
