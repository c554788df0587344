package ai

import "context"

// Embedder generates vector embeddings from text.
// Implementations must be thread-safe for concurrent use.
//
// The embedding dimensionality and distance metric form a fixed contract
// between ingestion and retrieval: changing either requires rebuilding the
// vector store index, which the ingestion pipeline does on every run.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	//
	// Both callers embed one message at a time: the ingestion pipeline
	// parallelizes per-record across a worker pool, and the recommendation
	// path embeds a single seed message per request.
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// Provider aggregates embedding services for convenient initialization and
// lifecycle management.
type Provider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
