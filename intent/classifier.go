package intent

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/poiesic/rankit/core"
)

// primaryOrder is the resolution order for the primary intent. The first
// label that fired wins; otherwise the query is informational.
var primaryOrder = []core.IntentLabel{
	core.IntentBuilding,
	core.IntentLearning,
	core.IntentUpdates,
}

type compiledPattern struct {
	label core.IntentLabel
	re    *regexp.Regexp
}

// Classifier matches queries against a fixed table of intent patterns.
// It is immutable after construction and safe for concurrent use.
type Classifier struct {
	patterns []compiledPattern
}

// NewClassifier compiles the pattern table. Patterns are matched case-insensitively.
// An empty table, an empty or repeated label, or a pattern that does not
// compile is a configuration error.
func NewClassifier(patterns []core.IntentPattern) (*Classifier, error) {
	if len(patterns) == 0 {
		return nil, ErrNoPatterns
	}

	seen := make(map[core.IntentLabel]bool, len(patterns))
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, p := range patterns {
		if strings.TrimSpace(string(p.Label)) == "" {
			return nil, ErrEmptyLabel
		}
		if seen[p.Label] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateLabel, p.Label)
		}
		seen[p.Label] = true

		re, err := regexp.Compile("(?i)" + p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidPattern, p.Label, err)
		}
		compiled = append(compiled, compiledPattern{label: p.Label, re: re})
	}

	return &Classifier{patterns: compiled}, nil
}

// Len returns the number of registered patterns.
func (c *Classifier) Len() int {
	return len(c.patterns)
}

// Classify returns the intent of query. An empty query is informational
// with zero confidence.
func (c *Classifier) Classify(query string) core.Intent {
	intent := core.Intent{
		Primary:   core.IntentInformation,
		Secondary: []core.IntentLabel{},
	}

	for _, p := range c.patterns {
		if p.re.MatchString(query) {
			intent.Secondary = append(intent.Secondary, p.label)
		}
	}

	for _, label := range primaryOrder {
		if intent.Has(label) {
			intent.Primary = label
			break
		}
	}

	intent.Confidence = float64(len(intent.Secondary)) / float64(len(c.patterns))
	return intent
}
