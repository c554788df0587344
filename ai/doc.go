// Package ai defines the embedding provider abstraction used by both the
// ingestion pipeline and the recommendation orchestrator.
//
// The embedding model is treated as a black box that maps text to a
// fixed-length numeric vector. Production deployments use an
// OpenAI-compatible embedding API via the openai subpackage; tests use the
// deterministic mock subpackage.
package ai
