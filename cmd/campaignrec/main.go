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

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/campaignrec"
	"github.com/poiesic/campaignrec/ai"
	"github.com/poiesic/campaignrec/api"
	"github.com/poiesic/campaignrec/ingestion"
	"github.com/poiesic/campaignrec/recommend"
)

func main() {
	app := &cli.App{
		Name:  "campaignrec",
		Usage: "Hybrid campaign recommendation service for conversational data",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the recommendation HTTP service",
				Action: serveCommand,
				Flags: append(storeFlags(),
					&cli.StringFlag{
						Name:    "host",
						Usage:   "HTTP listen host",
						Value:   "0.0.0.0",
						EnvVars: []string{"CAMPAIGNREC_HOST"},
					},
					&cli.IntFlag{
						Name:    "port",
						Usage:   "HTTP listen port",
						Value:   8000,
						EnvVars: []string{"CAMPAIGNREC_PORT"},
					},
					&cli.DurationFlag{
						Name:    "cache-ttl",
						Usage:   "Recommendation cache time-to-live",
						Value:   300 * time.Second,
						EnvVars: []string{"CAMPAIGNREC_CACHE_TTL"},
					},
					&cli.IntFlag{
						Name:    "top-k",
						Usage:   "Number of similar messages fetched per request",
						Value:   5,
						EnvVars: []string{"CAMPAIGNREC_TOP_K"},
					},
				),
			},
			{
				Name:   "ingest",
				Usage:  "Run the full-replace ingestion pipeline from a JSON file",
				Action: ingestCommand,
				Flags: append(storeFlags(),
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Path to the raw conversation JSON file",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Number of concurrent embedding workers (0 = auto)",
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// storeFlags returns the connection flags shared by serve and ingest.
func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "mongo-uri",
			Usage:   "MongoDB connection string",
			Value:   "mongodb://localhost:27017",
			EnvVars: []string{"CAMPAIGNREC_MONGO_URI"},
		},
		&cli.StringFlag{
			Name:    "qdrant-host",
			Usage:   "Qdrant gRPC host",
			Value:   "localhost",
			EnvVars: []string{"CAMPAIGNREC_QDRANT_HOST"},
		},
		&cli.IntFlag{
			Name:    "qdrant-port",
			Usage:   "Qdrant gRPC port",
			Value:   6334,
			EnvVars: []string{"CAMPAIGNREC_QDRANT_PORT"},
		},
		&cli.StringFlag{
			Name:    "neo4j-uri",
			Usage:   "Neo4j bolt URI",
			Value:   "bolt://localhost:7687",
			EnvVars: []string{"CAMPAIGNREC_NEO4J_URI"},
		},
		&cli.StringFlag{
			Name:    "neo4j-user",
			Usage:   "Neo4j username",
			Value:   "neo4j",
			EnvVars: []string{"CAMPAIGNREC_NEO4J_USER"},
		},
		&cli.StringFlag{
			Name:    "neo4j-password",
			Usage:   "Neo4j password",
			EnvVars: []string{"CAMPAIGNREC_NEO4J_PASSWORD"},
		},
		&cli.StringFlag{
			Name:    "analytics-db",
			Usage:   "SQLite analytics database path",
			Value:   "analytics.db",
			EnvVars: []string{"CAMPAIGNREC_ANALYTICS_DB"},
		},
		&cli.StringFlag{
			Name:    "cache-dir",
			Usage:   "Badger cache directory",
			Value:   "cache",
			EnvVars: []string{"CAMPAIGNREC_CACHE_DIR"},
		},
		&cli.StringFlag{
			Name:    "embedding-host",
			Usage:   "Embedding service host URL",
			Value:   "http://localhost:11434/v1",
			EnvVars: []string{"CAMPAIGNREC_EMBEDDING_HOST"},
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			Value:   "embeddinggemma",
			EnvVars: []string{"CAMPAIGNREC_EMBEDDING_MODEL"},
		},
		&cli.IntFlag{
			Name:    "embedding-dim",
			Usage:   "Embedding vector size",
			Value:   384,
			EnvVars: []string{"CAMPAIGNREC_EMBEDDING_DIM"},
		},
	}
}

func newService(ctx context.Context, c *cli.Context) (*campaignrec.Service, error) {
	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithModel(c.String("embedding-model")),
		ai.WithDimensions(c.Int("embedding-dim")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid embedding configuration: %w", err)
	}

	return campaignrec.NewService(ctx, campaignrec.Config{
		MongoURI:      c.String("mongo-uri"),
		QdrantHost:    c.String("qdrant-host"),
		QdrantPort:    c.Int("qdrant-port"),
		Neo4jURI:      c.String("neo4j-uri"),
		Neo4jUsername: c.String("neo4j-user"),
		Neo4jPassword: c.String("neo4j-password"),
		AnalyticsPath: c.String("analytics-db"),
		CachePath:     c.String("cache-dir"),
	}, campaignrec.WithAIConfig(aiConfig))
}

func serveCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	service, err := newService(ctx, c)
	if err != nil {
		return fmt.Errorf("failed to connect stores: %w", err)
	}
	defer service.Close()

	recommender, err := service.NewRecommender(
		recommend.WithTopK(c.Int("top-k")),
		recommend.WithCacheTTL(c.Duration("cache-ttl")),
	)
	if err != nil {
		return fmt.Errorf("failed to create recommender: %w", err)
	}

	server, err := api.NewServer(recommender, slog.Default(), &api.Config{
		Host: c.String("host"),
		Port: c.Int("port"),
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func ingestCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	service, err := newService(ctx, c)
	if err != nil {
		return fmt.Errorf("failed to connect stores: %w", err)
	}
	defer service.Close()

	source := ingestion.NewFileSource(c.String("input"))

	var opts []ingestion.Option
	if c.Int("pool-size") > 0 {
		opts = append(opts, ingestion.WithPoolSize(c.Int("pool-size")))
	}

	pipeline, err := service.NewIngestionPipeline(source, opts...)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	start := time.Now()
	if err := pipeline.Run(ctx); err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Ingestion completed in %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
