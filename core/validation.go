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


package core

import (
	"fmt"
	"strings"
	"time"
)

// ValidateRecord validates a Record according to domain rules.
//
// Validation rules:
//   - Title and Description must not both be blank
//   - PublishedAt must not be in the future
//
// NOT validated (populated by processors):
//   - Vector (can be empty until embedding runs)
//   - Tags and Themes (assigned by theme tagging)
//   - ID (0 is valid until the repository assigns one)
func ValidateRecord(record *Record) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}

	if strings.TrimSpace(record.Title) == "" && strings.TrimSpace(record.Description) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyContent)
	}

	if !IsValidTimestamp(record.PublishedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateTheme validates a Theme according to domain rules.
//
// Validation rules:
//   - Name must not be blank
//   - At least one non-blank tag
func ValidateTheme(theme *Theme) error {
	if theme == nil {
		return fmt.Errorf("%w: theme is nil", ErrInvalidTheme)
	}

	if strings.TrimSpace(theme.Name) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidTheme, ErrEmptyThemeName)
	}

	for _, tag := range theme.Tags {
		if strings.TrimSpace(tag) != "" {
			return nil
		}
	}
	return fmt.Errorf("%w: %w", ErrInvalidTheme, ErrEmptyThemeTags)
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
// A zero timestamp is valid.
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
