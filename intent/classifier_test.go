package intent

import (
	"testing"

	"github.com/poiesic/rankit/core"
	"github.com/poiesic/rankit/knowledge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefaultClassifier(t *testing.T) *Classifier {
	t.Helper()
	base, err := knowledge.Default()
	require.NoError(t, err)
	c, err := NewClassifier(base.Intents())
	require.NoError(t, err)
	return c
}

func TestClassifier_Classify(t *testing.T) {
	c := newDefaultClassifier(t)
	require.Equal(t, 6, c.Len())

	tests := []struct {
		name      string
		query     string
		primary   core.IntentLabel
		secondary []core.IntentLabel
	}{
		{
			name:      "netflix query",
			query:     "I want to build a software with trendy backend solutions and AI that is similar to Netflix",
			primary:   core.IntentBuilding,
			secondary: []core.IntentLabel{core.IntentBuilding},
		},
		{
			name:      "building wins over learning",
			query:     "Learn how to build a REST API",
			primary:   core.IntentBuilding,
			secondary: []core.IntentLabel{core.IntentLearning, core.IntentBuilding},
		},
		{
			name:      "learning wins over updates",
			query:     "a beginner tutorial on the latest react",
			primary:   core.IntentLearning,
			secondary: []core.IntentLabel{core.IntentLearning, core.IntentUpdates},
		},
		{
			name:      "updates",
			query:     "what is trending in devops",
			primary:   core.IntentUpdates,
			secondary: []core.IntentLabel{core.IntentUpdates},
		},
		{
			name:      "comparison only is informational",
			query:     "React vs Vue",
			primary:   core.IntentInformation,
			secondary: []core.IntentLabel{core.IntentComparison},
		},
		{
			name:      "case insensitive",
			query:     "HOW TO DEBUG KUBERNETES",
			primary:   core.IntentLearning,
			secondary: []core.IntentLabel{core.IntentLearning, core.IntentProblemSolving},
		},
		{
			name:      "word boundaries",
			query:     "rebuilding newsletters",
			primary:   core.IntentInformation,
			secondary: []core.IntentLabel{},
		},
		{
			name:      "empty query",
			query:     "",
			primary:   core.IntentInformation,
			secondary: []core.IntentLabel{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.query)
			assert.Equal(t, tt.primary, got.Primary)
			assert.Equal(t, tt.secondary, got.Secondary)
			assert.InDelta(t, float64(len(tt.secondary))/6.0, got.Confidence, 1e-9)
		})
	}
}

func TestClassifier_ConfidenceBounds(t *testing.T) {
	c := newDefaultClassifier(t)

	all := c.Classify("learn to build the latest best fix and review")
	assert.Len(t, all.Secondary, 6)
	assert.Equal(t, 1.0, all.Confidence)

	none := c.Classify("gardening")
	assert.Equal(t, 0.0, none.Confidence)
}

func TestNewClassifier_Errors(t *testing.T) {
	tests := []struct {
		name     string
		patterns []core.IntentPattern
		wantErr  error
	}{
		{"empty table", nil, ErrNoPatterns},
		{"empty label", []core.IntentPattern{{Label: "", Pattern: "x"}}, ErrEmptyLabel},
		{
			"duplicate label",
			[]core.IntentPattern{{Label: "a", Pattern: "x"}, {Label: "a", Pattern: "y"}},
			ErrDuplicateLabel,
		},
		{"bad regex", []core.IntentPattern{{Label: "a", Pattern: "(x"}}, ErrInvalidPattern},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClassifier(tt.patterns)
			assert.Nil(t, c)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
