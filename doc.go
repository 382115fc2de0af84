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


// Package rankit understands free-form queries and re-ranks short documents
// against them.
//
// An Engine combines the knowledge base, intent classifier, entity and domain
// extractor, query expander and result ranker:
//
//	engine, err := rankit.NewEngine(provider)
//	sq, ranked, err := engine.Rank(ctx, "build something like Netflix with AI", records)
//
// A Library adds badger-backed storage, ingestion, search and reembedding:
//
//	lib, err := rankit.OpenLibrary("./data", rankit.WithAIConfig(cfg))
//	defer lib.Close()
//	report, err := lib.Ingest(ctx, records)
//	results, err := lib.Search(ctx, "trendy backend solutions", 10)
package rankit
