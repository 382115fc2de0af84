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


// Package ai defines the collaborators the ranking engine calls but does not
// implement: text embedding and named-entity recognition.
//
// # Interfaces
//
//   - Embedder: turns text into a fixed-length vector
//   - EntityRecognizer: labels spans of text as ORG, PRODUCT, LOCATION or OTHER
//   - AIProvider: aggregates both for initialization and shutdown
//
// # Implementation Packages
//
//   - ai/openai: OpenAI-compatible services through langchaingo
//   - ai/resilient: retry and circuit breaking around any provider
//   - ai/mock: test doubles
//
// Public production constructors return interfaces. Mock constructors return
// concrete types so tests can inject behavior and read call counts:
//
//	provider, err := openai.NewProvider(ai.NewConfig(ai.WithRecognizerModel("qwen2.5:3b")))
//
//	mockEmbed := mock.NewMockEmbedder()
//	mockEmbed.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) { ... }
//	count := mockEmbed.CallCount()
package ai
