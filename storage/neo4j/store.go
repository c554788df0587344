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


package neo4j

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/poiesic/campaignrec/core"
	"github.com/poiesic/campaignrec/storage"
)

// Store implements storage.GraphStore on Neo4j.
//
// Graph shape per conversation record:
//
//	(u:User {id})-[:PARTICIPATED_IN {timestamp}]->(c:Campaign {id})
//	(u:User {id})-[:EXPRESSED {timestamp}]->(i:Intent {name})
//
// All writes use MERGE, so node and edge identity stays idempotent when a
// user or campaign recurs across many records.
type Store struct {
	driver neo4j.DriverWithContext
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

// NewGraphStore connects to Neo4j and returns a graph store.
// The connection is verified so startup retry policies can distinguish an
// unreachable server from bad credentials.
//
// Returns storage.GraphStore interface to enforce abstraction.
func NewGraphStore(ctx context.Context, uri, username, password string, opts ...Option) (storage.GraphStore, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("creating neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verifying neo4j connectivity: %w", err)
	}

	s := &Store{
		driver: driver,
		logger: slog.Default().With("component", "neo4j-graph-store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

var _ storage.GraphStore = (*Store)(nil)

// ReplaceAll detach-deletes every node, then merges the nodes and edges for
// each record.
func (s *Store) ReplaceAll(ctx context.Context, records []*core.ConversationRecord) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	if _, err := session.Run(ctx, "MATCH (n) DETACH DELETE n", nil); err != nil {
		return fmt.Errorf("clearing graph: %w", err)
	}

	query := `
		MERGE (u:User {id: $userID})
		MERGE (c:Campaign {id: $campaignID})
		MERGE (i:Intent {name: $intent})
		MERGE (u)-[:PARTICIPATED_IN {timestamp: $ts}]->(c)
		MERGE (u)-[:EXPRESSED {timestamp: $ts}]->(i)
	`

	for _, record := range records {
		_, err := session.Run(ctx, query, map[string]any{
			"userID":     record.UserID,
			"campaignID": record.CampaignID,
			"intent":     record.Intent,
			"ts":         record.Timestamp,
		})
		if err != nil {
			return fmt.Errorf("merging record %s: %w", record.MessageID, err)
		}
	}

	s.logger.Info("replaced graph store contents", "records", len(records))
	return nil
}

// CampaignsForUsers returns the distinct campaigns reachable from any of the
// given users via a PARTICIPATED_IN edge.
func (s *Store) CampaignsForUsers(ctx context.Context, userIDs []string) ([]string, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (u:User)-[:PARTICIPATED_IN]->(c:Campaign)
		WHERE u.id IN $userIDs
		RETURN DISTINCT c.id AS campaign_id
	`

	result, err := session.Run(ctx, query, map[string]any{"userIDs": userIDs})
	if err != nil {
		return nil, fmt.Errorf("fetching campaigns for users: %w", err)
	}

	var campaigns []string
	for result.Next(ctx) {
		if value, ok := result.Record().Get("campaign_id"); ok {
			if id, ok := value.(string); ok {
				campaigns = append(campaigns, id)
			}
		}
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("reading campaign results: %w", err)
	}
	return campaigns, nil
}

// Close closes the underlying driver.
func (s *Store) Close() error {
	return s.driver.Close(context.Background())
}
