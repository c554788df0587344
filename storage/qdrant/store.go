package qdrant

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/poiesic/campaignrec/core"
	"github.com/poiesic/campaignrec/storage"
	"github.com/qdrant/go-client/qdrant"
)

const defaultCollection = "conversations"

// pointNamespace is the UUID namespace for deriving deterministic point ids
// from message ids. Qdrant point ids must be numeric or UUID, so arbitrary
// message id strings are mapped through UUIDv5.
var pointNamespace = uuid.MustParse("7f1ad3a2-41a5-4c9f-9d55-1b54a3f0c6e0")

// Config holds configuration for the Qdrant vector store.
type Config struct {
	// Host is the Qdrant server hostname or IP address.
	// Default: "localhost"
	Host string

	// Port is the Qdrant gRPC port (NOT the HTTP REST port).
	// Default: 6334
	Port int

	// CollectionName is the collection holding conversation embeddings.
	// Default: "conversations"
	CollectionName string

	// VectorSize is the embedding dimensionality.
	// MUST match the embedding provider's output dimensions.
	VectorSize uint64
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 6334
	}
	if c.CollectionName == "" {
		c.CollectionName = defaultCollection
	}
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: invalid port: %d", storage.ErrInvalidQuery, c.Port)
	}
	if c.VectorSize == 0 {
		return fmt.Errorf("%w: vector size required", storage.ErrInvalidQuery)
	}
	return nil
}

// Store implements storage.VectorStore on Qdrant's native gRPC client.
//
// Similarity is measured with L2 (Euclid) distance; ReplaceAll drops and
// recreates the collection, so dimension changes take effect on the next
// ingestion run rather than via incremental migration.
type Store struct {
	client *qdrant.Client
	config Config
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// NewVectorStore connects to Qdrant and returns a vector store.
// The connection is verified with a health check.
//
// Returns storage.VectorStore interface to enforce abstraction.
func NewVectorStore(ctx context.Context, config Config, opts ...Option) (storage.VectorStore, error) {
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating qdrant config: %w", err)
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: config.Host,
		Port: config.Port,
	})
	if err != nil {
		return nil, fmt.Errorf("creating qdrant client: %w", err)
	}

	if _, err := client.HealthCheck(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("qdrant health check: %w", err)
	}

	s := &Store{
		client: client,
		config: config,
		logger: slog.Default().With("component", "qdrant-vector-store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

var _ storage.VectorStore = (*Store)(nil)

// ReplaceAll drops and recreates the collection with an L2 index, then
// upserts every entry. Upserts wait for commit so entries are searchable
// before the ingestion run is considered complete.
func (s *Store) ReplaceAll(ctx context.Context, entries []*core.SimilarityEntry) error {
	exists, err := s.client.CollectionExists(ctx, s.config.CollectionName)
	if err != nil {
		return fmt.Errorf("checking collection %s: %w", s.config.CollectionName, err)
	}
	if exists {
		if err := s.client.DeleteCollection(ctx, s.config.CollectionName); err != nil {
			return fmt.Errorf("dropping collection %s: %w", s.config.CollectionName, err)
		}
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.config.CollectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.config.VectorSize,
			Distance: qdrant.Distance_Euclid,
		}),
	})
	if err != nil {
		return fmt.Errorf("creating collection %s: %w", s.config.CollectionName, err)
	}

	if len(entries) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, len(entries))
	for i, entry := range entries {
		if uint64(len(entry.Embedding)) != s.config.VectorSize {
			return fmt.Errorf("%w: entry %s has %d dimensions, want %d",
				storage.ErrDimensionMismatch, entry.MessageID, len(entry.Embedding), s.config.VectorSize)
		}

		payload := map[string]*qdrant.Value{
			"message_id": {Kind: &qdrant.Value_StringValue{StringValue: entry.MessageID}},
			"user_id":    {Kind: &qdrant.Value_StringValue{StringValue: entry.UserID}},
		}

		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(uuid.NewSHA1(pointNamespace, []byte(entry.MessageID)).String()),
			Vectors: qdrant.NewVectors(entry.Embedding...),
			Payload: payload,
		}
	}

	_, err = s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.config.CollectionName,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("upserting %d points: %w", len(points), err)
	}

	s.logger.Info("replaced vector store contents", "points", len(points))
	return nil
}

// SearchSimilar returns up to k nearest entries by L2 distance, ascending.
func (s *Store) SearchSimilar(ctx context.Context, vector []float32, k int) ([]core.SimilarityMatch, error) {
	if k < 1 {
		return nil, storage.ErrInvalidQuery
	}

	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.config.CollectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("querying collection %s: %w", s.config.CollectionName, err)
	}

	matches := make([]core.SimilarityMatch, 0, len(results))
	for _, point := range results {
		match := core.SimilarityMatch{Distance: point.GetScore()}
		for key, value := range point.GetPayload() {
			switch key {
			case "message_id":
				match.MessageID = value.GetStringValue()
			case "user_id":
				match.UserID = value.GetStringValue()
			}
		}
		matches = append(matches, match)
	}
	return matches, nil
}

// Close closes the underlying gRPC client.
func (s *Store) Close() error {
	return s.client.Close()
}
