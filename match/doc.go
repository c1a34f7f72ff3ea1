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


// Package match implements the FAQ matching engine.
//
// Given a free-text query and a snapshot of stored FAQ records, the Engine
// picks at most one record as the answer using a tiered strategy:
//
//   - Lexical: fuzzy string similarity, a partial-ratio pass (threshold 70 on
//     a 0-100 scale) followed by a token-sort pass (threshold 75)
//   - Semantic: embedding cosine similarity (strict threshold 0.60)
//
// Strategies are consulted in priority order; the first one that produces a
// candidate above its threshold resolves the verdict. If none does, the
// verdict is Unmatched. Within a pass, ties are broken deterministically by
// snapshot order (first seen wins).
//
// A match request is a stateless computation: the engine holds no per-request
// state, so concurrent Match calls are safe. The only shared mutable state is
// the semantic matcher's embedding cache, which is guarded by a mutex scoped
// to cache access.
//
// Failure to compute an embedding surfaces as ErrEmbeddingUnavailable rather
// than an Unmatched verdict, so callers can tell a degraded service from a
// genuine non-match.
package match
