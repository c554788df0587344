// Package mock provides test doubles for the ai package interfaces.
//
// The mock embedder generates deterministic vectors from content hashes, so
// tests get stable similarity behavior without a live embedding service.
package mock
