package ingestion

import "errors"

var (
	// ErrSourceRequired is returned when a raw record source is not provided.
	ErrSourceRequired = errors.New("source required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrStoreRequired is returned when any target store is not provided.
	ErrStoreRequired = errors.New("all four target stores required")

	// ErrSourceUnavailable indicates the raw record source is missing or unreadable.
	ErrSourceUnavailable = errors.New("raw record source unavailable")

	// ErrNoRawRecords indicates the source produced an empty batch.
	// The run halts without mutating any store.
	ErrNoRawRecords = errors.New("no raw records extracted")

	// ErrNothingToLoad indicates no record survived validation and embedding.
	// The run halts without mutating any store.
	ErrNothingToLoad = errors.New("no records survived transformation")

	// ErrRunInProgress indicates a concurrent Run call on the same pipeline.
	// Ingestion runs are single-writer batches and must be serialized.
	ErrRunInProgress = errors.New("ingestion run already in progress")
)
