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


// Package storage defines the persistence abstractions for faqbot.
//
// FaqRepository manages the FAQ knowledge base and produces the immutable,
// ordered snapshots the matching engine consumes. CodeRepository is a
// time-bounded key-value store for short-lived verification codes.
//
// The storage/badger subpackage provides the BadgerDB-backed implementation.
// Records are serialized with MUS format serializers generated into the core
// package (see cmd/musgen).
package storage
