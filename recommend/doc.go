// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package recommend serves campaign recommendations by chaining the
// similarity, graph and analytics stores behind a cache-aside layer.
//
// The Orchestrator handles a request in stages: a cache probe, a seed
// record lookup, request-time re-embedding of the seed message, a
// nearest-neighbor search for similar users, graph expansion from those
// users to campaigns, and engagement-based ranking. Computed results are
// written back to the cache with a bounded TTL so repeat requests within
// the window are served without touching the backing stores.
package recommend
