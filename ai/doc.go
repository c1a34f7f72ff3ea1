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


// Package ai provides abstractions for the embedding services used by faqbot.
//
// The matching engine only depends on the interfaces defined here, never on a
// concrete embedding backend. This keeps the semantic matcher testable without
// a running model server and lets deployments swap backends freely.
//
// # Interfaces
//
//   - Embedder: generates vector embeddings from text
//   - AIProvider: owns an Embedder and its lifecycle
//
// # Implementation Packages
//
//   - ai/openai: production implementation using OpenAI-compatible APIs
//   - ai/mock: deterministic test doubles, no external dependencies
//
// Public constructors (openai.NewProvider, openai.NewEmbedder) return the
// INTERFACE types to enforce abstraction. Mock constructors return CONCRETE
// types so tests can inject behavior and assert on call counts.
//
// The provider is intended to be created once per process and shared: the
// underlying model client is a read-only resource and every implementation of
// Embedder must be safe for concurrent use.
package ai
