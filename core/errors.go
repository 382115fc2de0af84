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

import "errors"

// Domain validation errors
var (
	// ErrInvalidRecord indicates a Record failed validation.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrInvalidTheme indicates a Theme failed validation.
	ErrInvalidTheme = errors.New("invalid theme")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrEmptyContent indicates a record has neither title nor description.
	ErrEmptyContent = errors.New("title and description cannot both be empty")

	// ErrEmptyThemeName indicates the theme Name field is empty.
	ErrEmptyThemeName = errors.New("theme name cannot be empty")

	// ErrEmptyThemeTags indicates a theme carries no tags.
	ErrEmptyThemeTags = errors.New("theme must have at least one tag")
)

// ErrCollaboratorUnavailable indicates an external collaborator (embedding or
// entity recognition) failed. Callers may retry or fall back to lexical
// ordering.
var ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
