package recommend

import "errors"

var (
	// ErrUserNotFound indicates the user has no record in the document store.
	// This is a normal, expected outcome, distinct from store failures and
	// from a computed-but-empty recommendation list.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrStoreRequired is returned when any required store is not provided.
	ErrStoreRequired = errors.New("cache, document, vector, graph and analytics stores required")

	// ErrEmptyEmbedding indicates the embedding provider returned an empty
	// vector for the seed message.
	ErrEmptyEmbedding = errors.New("empty seed embedding")
)
