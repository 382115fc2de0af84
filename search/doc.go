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


// Package search finds stored records relevant to a free-text query.
//
// The Searcher runs a multi-stage pipeline:
//   - expand the query into intent, domains, entities and expanded terms
//   - gather lexical candidates by term overlap, and optionally vector
//     candidates by similarity to the embedded semantic text
//   - re-rank the candidates with the rank package
//
// When a collaborator is unavailable during re-ranking the candidates are
// returned in lexical order with Results.Reranked set to false.
package search
