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


package storage

import "errors"

var (
	// ErrNotFound is returned when no record or theme exists under the given ID.
	ErrNotFound = errors.New("not found")

	// ErrStorageClosed is returned by repositories whose backend has been closed.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrInvalidQuery is returned for a non-positive limit or batch size.
	ErrInvalidQuery = errors.New("invalid query parameters")

	// ErrSerializationFailed wraps a record, theme or ID that could not be decoded.
	ErrSerializationFailed = errors.New("serialization failed")

	// ErrTruncatedData is reported when an encoded value ends early.
	ErrTruncatedData = errors.New("truncated data")
)
