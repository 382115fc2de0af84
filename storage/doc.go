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


// Package storage defines the repositories that hold the content records
// ranked by rankit and the themes used to tag them on ingestion.
//
// # Constructor Return Type Pattern
//
// Backend packages hand these interfaces to callers:
//
//	records, themes, backend, err := badger.OpenRepositories(path)
//
// Per-repository constructors (badger.NewRecordRepository) return concrete
// types for callers that share one backend explicitly.
//
// # Architecture
//
//   - Repository: transactions and shutdown shared by every repository
//   - RecordRepository: records, the published-date index, lexical and vector candidate scans
//   - ThemeRepository: named tag lists used by ingestion.TagByTheme
//
// Records and themes are serialized with hand-written mus-go encoders
// (see serialization.go). The format carries a version byte.
//
// # Usage
//
// Use in tests with in-memory storage:
//
//	records, themes, backend, err := badger.NewMemoryRepositories()
//	if err != nil {
//	    t.Fatal(err)
//	}
//	defer backend.Close()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
