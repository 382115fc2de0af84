// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/poiesic/rankit/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// generator is the slice of llms.Model the recognizer needs.
type generator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// EntityRecognizer implements ai.EntityRecognizer by prompting an
// OpenAI-compatible chat model for labeled spans.
type EntityRecognizer struct {
	client   generator
	attempts int
	logger   *slog.Logger
}

// entity is an internal type used for JSON unmarshaling.
// It matches the structure expected by the LLM.
type entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// recognition is the wrapper structure for the LLM's JSON response.
type recognition struct {
	Entities []entity `json:"entities"`
}

// newEntityRecognizer is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newEntityRecognizer(config *ai.Config) (*EntityRecognizer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.RecognizerHost),
		openai.WithToken("none"),
		openai.WithModel(config.RecognizerModel),
	)
	if err != nil {
		return nil, err
	}

	return &EntityRecognizer{
		client:   client,
		attempts: config.RecognizerAttempts,
		logger:   slog.Default().With("component", "openai-recognizer"),
	}, nil
}

// NewEntityRecognizer creates a new entity recognizer using the provided configuration.
//
// Returns ai.EntityRecognizer interface to enforce abstraction.
func NewEntityRecognizer(config *ai.Config) (ai.EntityRecognizer, error) {
	return newEntityRecognizer(config)
}

// ExtractEntities returns the entity spans the model finds in text.
// Malformed replies are retried; transport errors are returned immediately.
func (r *EntityRecognizer) ExtractEntities(ctx context.Context, text string) ([]ai.Entity, error) {
	text = collapseWhitespace(text)
	if text == "" {
		return []ai.Entity{}, nil
	}

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(buildSystemPrompt())},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(text)},
		},
	}

	var lastErr error
	for attempt := 0; attempt < r.attempts; attempt++ {
		response, err := r.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			r.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			r.logger.Debug("no choices returned from model")
			return []ai.Entity{}, nil
		}

		entities, err := parseEntities(response.Choices[0].Content)
		if err != nil {
			lastErr = err
			r.logger.Warn("error parsing recognizer response",
				"attempt", attempt+1,
				"response", response.Choices[0].Content,
				"err", err)
			continue
		}

		r.logger.Debug("recognized entities", "count", len(entities))
		return entities, nil
	}

	r.logger.Error("failed to parse recognizer response after retries", "err", lastErr)
	return nil, lastErr
}

// parseEntities decodes a model reply. Code fences are stripped, unquoted
// keys repaired, blank spans dropped and unknown labels mapped to OTHER.
func parseEntities(reply string) ([]ai.Entity, error) {
	reply = strings.TrimSpace(reply)
	reply = strings.TrimPrefix(reply, "```json")
	reply = strings.TrimPrefix(reply, "```")
	reply = strings.TrimSuffix(reply, "```")
	reply = repairJSON(strings.TrimSpace(reply))

	var result recognition
	if err := json.Unmarshal([]byte(reply), &result); err != nil {
		return nil, err
	}

	entities := make([]ai.Entity, 0, len(result.Entities))
	for _, e := range result.Entities {
		span := strings.TrimSpace(e.Text)
		if span == "" {
			continue
		}
		entities = append(entities, ai.Entity{Span: span, Label: toLabel(e.Label)})
	}
	return entities, nil
}

func toLabel(s string) ai.EntityLabel {
	s = strings.ToUpper(strings.TrimSpace(s))
	switch s {
	case "ORGANIZATION", "COMPANY":
		return ai.LabelOrg
	case "GPE", "LOC", "PLACE":
		return ai.LabelLocation
	}
	for _, l := range ai.EntityLabels {
		if string(l) == s {
			return l
		}
	}
	return ai.LabelOther
}
