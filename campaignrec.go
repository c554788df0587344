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

// Package campaignrec wires the conversation ingestion pipeline and the
// campaign recommendation orchestrator on top of four persistent stores
// (MongoDB documents, Qdrant vectors, Neo4j graph, SQLite analytics) and a
// Badger-backed recommendation cache.
package campaignrec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/poiesic/campaignrec/ai"
	"github.com/poiesic/campaignrec/ai/openai"
	"github.com/poiesic/campaignrec/ingestion"
	"github.com/poiesic/campaignrec/recommend"
	"github.com/poiesic/campaignrec/storage"
	"github.com/poiesic/campaignrec/storage/badgercache"
	"github.com/poiesic/campaignrec/storage/mongo"
	"github.com/poiesic/campaignrec/storage/neo4j"
	"github.com/poiesic/campaignrec/storage/qdrant"
	"github.com/poiesic/campaignrec/storage/sqlite"
)

// Config holds the connection settings for every backing store.
type Config struct {
	// MongoURI is the MongoDB connection string for the document store.
	MongoURI string

	// QdrantHost and QdrantPort locate the vector store's gRPC endpoint.
	QdrantHost string
	QdrantPort int

	// Neo4j connection settings for the graph store.
	Neo4jURI      string
	Neo4jUsername string
	Neo4jPassword string

	// AnalyticsPath is the SQLite database file. Use ":memory:" for an
	// ephemeral store.
	AnalyticsPath string

	// CachePath is the Badger directory for the recommendation cache.
	// Ignored when CacheInMemory is set.
	CachePath     string
	CacheInMemory bool

	// ConnectAttempts bounds the retries per store while dialing.
	// Default: 4.
	ConnectAttempts uint64
}

func (c *Config) applyDefaults() {
	if c.MongoURI == "" {
		c.MongoURI = "mongodb://localhost:27017"
	}
	if c.Neo4jURI == "" {
		c.Neo4jURI = "bolt://localhost:7687"
	}
	if c.AnalyticsPath == "" {
		c.AnalyticsPath = ":memory:"
	}
	if c.ConnectAttempts == 0 {
		c.ConnectAttempts = 4
	}
}

// Service bundles the stores and the embedding provider behind one handle.
type Service struct {
	documents storage.DocumentStore
	vectors   storage.VectorStore
	graph     storage.GraphStore
	analytics storage.AnalyticsStore
	cache     storage.CacheStore
	provider  ai.Provider
	logger    *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	aiConfig *ai.Config
	logger   *slog.Logger
}

// WithAIConfig overrides the embedding provider configuration.
func WithAIConfig(cfg *ai.Config) ServiceOption {
	return func(o *serviceOptions) {
		if cfg != nil {
			o.aiConfig = cfg
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewService connects to every backing store and the embedding provider.
// Each store is dialed with bounded exponential backoff; configuration
// errors fail immediately. On any failure the stores opened so far are
// closed before returning.
func NewService(ctx context.Context, cfg Config, opts ...ServiceOption) (*Service, error) {
	cfg.applyDefaults()

	options := &serviceOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger.With("component", "service")

	documents, err := dial(ctx, logger, "mongodb", cfg.ConnectAttempts, func(ctx context.Context) (storage.DocumentStore, error) {
		return mongo.NewDocumentStore(ctx, cfg.MongoURI, mongo.WithLogger(options.logger))
	})
	if err != nil {
		return nil, err
	}

	vectors, err := dial(ctx, logger, "qdrant", cfg.ConnectAttempts, func(ctx context.Context) (storage.VectorStore, error) {
		return qdrant.NewVectorStore(ctx, qdrant.Config{
			Host:       cfg.QdrantHost,
			Port:       cfg.QdrantPort,
			VectorSize: uint64(options.aiConfig.Dimensions),
		}, qdrant.WithLogger(options.logger))
	})
	if err != nil {
		documents.Close()
		return nil, err
	}

	graph, err := dial(ctx, logger, "neo4j", cfg.ConnectAttempts, func(ctx context.Context) (storage.GraphStore, error) {
		return neo4j.NewGraphStore(ctx, cfg.Neo4jURI, cfg.Neo4jUsername, cfg.Neo4jPassword, neo4j.WithLogger(options.logger))
	})
	if err != nil {
		vectors.Close()
		documents.Close()
		return nil, err
	}

	analytics, err := sqlite.NewAnalyticsStore(ctx, cfg.AnalyticsPath, sqlite.WithLogger(options.logger))
	if err != nil {
		graph.Close()
		vectors.Close()
		documents.Close()
		return nil, fmt.Errorf("opening analytics store: %w", err)
	}

	cache, err := badgercache.Open(cfg.CachePath, cfg.CacheInMemory)
	if err != nil {
		analytics.Close()
		graph.Close()
		vectors.Close()
		documents.Close()
		return nil, fmt.Errorf("opening recommendation cache: %w", err)
	}

	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		cache.Close()
		analytics.Close()
		graph.Close()
		vectors.Close()
		documents.Close()
		return nil, err
	}

	return &Service{
		documents: documents,
		vectors:   vectors,
		graph:     graph,
		analytics: analytics,
		cache:     cache,
		provider:  provider,
		logger:    logger,
	}, nil
}

// dial opens a store with bounded exponential backoff. Configuration errors
// fail immediately; context cancellation stops the retry loop.
func dial[T any](ctx context.Context, logger *slog.Logger, name string, attempts uint64, open func(context.Context) (T, error)) (T, error) {
	var result T

	operation := func() error {
		var err error
		result, err = open(ctx)
		if err != nil {
			if errors.Is(err, storage.ErrInvalidQuery) {
				return backoff.Permanent(err)
			}
			logger.Warn("store connection failed, retrying", "store", name, "err", err)
		}
		return err
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = 500 * time.Millisecond
	policy := backoff.WithContext(backoff.WithMaxRetries(expo, attempts), ctx)

	if err := backoff.Retry(operation, policy); err != nil {
		return result, fmt.Errorf("connecting to %s: %w", name, err)
	}
	return result, nil
}

// Close releases every store in reverse acquisition order. The first store
// error is returned; provider and cache close failures are only logged.
func (s *Service) Close() error {
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing embedding provider", "err", err)
	}
	if err := s.cache.Close(); err != nil {
		s.logger.Error("error closing recommendation cache", "err", err)
	}

	var firstErr error
	for _, closer := range []struct {
		name  string
		close func() error
	}{
		{"analytics store", s.analytics.Close},
		{"graph store", s.graph.Close},
		{"vector store", s.vectors.Close},
		{"document store", s.documents.Close},
	} {
		if err := closer.close(); err != nil {
			s.logger.Error("error closing store", "store", closer.name, "err", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *Service) DocumentStore() storage.DocumentStore {
	return s.documents
}

func (s *Service) VectorStore() storage.VectorStore {
	return s.vectors
}

func (s *Service) GraphStore() storage.GraphStore {
	return s.graph
}

func (s *Service) AnalyticsStore() storage.AnalyticsStore {
	return s.analytics
}

func (s *Service) CacheStore() storage.CacheStore {
	return s.cache
}

// NewIngestionPipeline builds a pipeline over the service's stores and
// embedder, reading raw records from the given source.
func (s *Service) NewIngestionPipeline(source ingestion.Source, opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(source, s.provider.Embedder(), s.documents, s.vectors, s.graph, s.analytics, opts...)
}

// NewRecommender builds a recommendation orchestrator over the service's
// stores and embedder.
func (s *Service) NewRecommender(opts ...recommend.Option) (*recommend.Orchestrator, error) {
	return recommend.NewOrchestrator(s.cache, s.documents, s.vectors, s.graph, s.analytics, s.provider.Embedder(), opts...)
}
