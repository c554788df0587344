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


// Package storage provides the storage abstraction layer for campaignrec.
//
// This package defines one interface per store model so that the ingestion
// pipeline and the recommendation orchestrator stay decoupled from concrete
// store clients:
//
//   - DocumentStore: whole conversation records (mongo subpackage)
//   - VectorStore: embedding similarity search (qdrant subpackage)
//   - GraphStore: user/campaign/intent relationships (neo4j subpackage)
//   - AnalyticsStore: engagement aggregates (sqlite subpackage)
//   - CacheStore: recommendation lists with TTL (badgercache subpackage)
//
// The memory subpackage implements all five in process memory for tests and
// local experimentation.
//
// # Constructor Return Type Pattern
//
// Public constructors return the storage interface, not the concrete type:
//
//	store, err := mongo.NewDocumentStore(ctx, uri)  // returns storage.DocumentStore
//
// This design decision prioritizes:
//   - Abstraction: Prevents accidental coupling to one store client
//   - Swappability: Easy to substitute backends per deployment
//   - Testing: Consumers can use the memory implementations without modification
//
// # Ownership
//
// The ingestion pipeline is the sole writer of the document, vector, graph
// and analytics stores; each ingestion run fully replaces their contents.
// The recommendation orchestrator is the sole writer of the cache store and
// the sole reader of the other four.
//
// # Thread Safety
//
// All store implementations must be thread-safe and support concurrent
// access from multiple goroutines.
//
// # Context Support
//
// All store methods accept context.Context for cancellation and timeout
// support.
package storage
