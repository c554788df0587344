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


package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/campaignrec/core"
	"github.com/poiesic/campaignrec/storage"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS user_analytics (
	user_id          TEXT NOT NULL,
	campaign_id      TEXT NOT NULL,
	engagement_count INTEGER NOT NULL,
	PRIMARY KEY (user_id, campaign_id)
);
`

// Store implements storage.AnalyticsStore on SQLite.
type Store struct {
	db     *sql.DB
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

// NewAnalyticsStore opens (or creates) the analytics database at path and
// ensures the aggregate table exists. Use ":memory:" for an ephemeral store.
//
// Returns storage.AnalyticsStore interface to enforce abstraction.
func NewAnalyticsStore(ctx context.Context, path string, opts ...Option) (storage.AnalyticsStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening analytics database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensuring analytics schema: %w", err)
	}

	s := &Store{
		db:     db,
		logger: slog.Default().With("component", "sqlite-analytics-store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

var _ storage.AnalyticsStore = (*Store)(nil)

// ReplaceAll clears the aggregate table and inserts the given rows in one
// transaction.
func (s *Store) ReplaceAll(ctx context.Context, aggregates []core.EngagementAggregate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning analytics transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM user_analytics"); err != nil {
		return fmt.Errorf("clearing analytics table: %w", err)
	}

	for _, row := range aggregates {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO user_analytics (user_id, campaign_id, engagement_count) VALUES (?, ?, ?)",
			row.UserID, row.CampaignID, row.EngagementCount,
		)
		if err != nil {
			return fmt.Errorf("inserting aggregate (%s, %s): %w", row.UserID, row.CampaignID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing analytics replace: %w", err)
	}

	s.logger.Info("replaced analytics store contents", "rows", len(aggregates))
	return nil
}

// RankCampaigns sums engagement for the candidate campaigns, grouped by
// campaign, ordered by total engagement descending. Ties are left in
// store-defined order.
func (s *Store) RankCampaigns(ctx context.Context, campaignIDs []string) ([]core.RankedCampaign, error) {
	if len(campaignIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(campaignIDs)), ",")
	query := fmt.Sprintf(`
		SELECT campaign_id, SUM(engagement_count) AS total_engagement
		FROM user_analytics
		WHERE campaign_id IN (%s)
		GROUP BY campaign_id
		ORDER BY total_engagement DESC
	`, placeholders)

	args := make([]any, len(campaignIDs))
	for i, id := range campaignIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ranking campaigns: %w", err)
	}
	defer rows.Close()

	var ranked []core.RankedCampaign
	for rows.Next() {
		var rc core.RankedCampaign
		if err := rows.Scan(&rc.CampaignID, &rc.TotalEngagement); err != nil {
			return nil, fmt.Errorf("scanning ranked campaign: %w", err)
		}
		ranked = append(ranked, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading ranked campaigns: %w", err)
	}
	return ranked, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
