package storage

import (
	"context"
	"time"

	"github.com/poiesic/campaignrec/core"
)

// DocumentStore holds whole conversation records, queried by field match.
// The ingestion pipeline is its sole writer; the recommendation orchestrator
// is its sole reader.
type DocumentStore interface {
	// ReplaceAll deletes every stored record and inserts the given batch.
	// Embeddings are excluded from the stored documents.
	ReplaceAll(ctx context.Context, records []*core.ConversationRecord) error

	// FindOneByUser returns one conversation record for the user.
	// Any matching record is acceptable; no recency ordering is guaranteed.
	// Returns ErrNotFound if the user has no records.
	FindOneByUser(ctx context.Context, userID string) (*core.ConversationRecord, error)

	// CountRecords returns the number of stored records.
	CountRecords(ctx context.Context) (int64, error)

	// Close closes the store and releases resources.
	Close() error
}

// VectorStore holds fixed-length embeddings and supports nearest-neighbor
// search under L2 distance.
type VectorStore interface {
	// ReplaceAll drops and recreates the index, then inserts the given
	// entries. Entries are searchable once ReplaceAll returns.
	ReplaceAll(ctx context.Context, entries []*core.SimilarityEntry) error

	// SearchSimilar returns up to k nearest entries to the query vector,
	// ordered by L2 distance ascending.
	SearchSimilar(ctx context.Context, vector []float32, k int) ([]core.SimilarityMatch, error)

	// Close closes the store and releases resources.
	Close() error
}

// GraphStore holds User, Campaign and Intent nodes with PARTICIPATED_IN and
// EXPRESSED relationships, queried by pattern traversal.
type GraphStore interface {
	// ReplaceAll clears all graph state, then merges the nodes and edges for
	// every record. Merge semantics keep node and edge identity idempotent
	// when a user or campaign recurs across records.
	ReplaceAll(ctx context.Context, records []*core.ConversationRecord) error

	// CampaignsForUsers returns the distinct ids of campaigns reachable from
	// any of the given users via a PARTICIPATED_IN edge.
	CampaignsForUsers(ctx context.Context, userIDs []string) ([]string, error)

	// Close closes the store and releases resources.
	Close() error
}

// AnalyticsStore holds tabular engagement aggregates, queried by
// filter/group/sort.
type AnalyticsStore interface {
	// ReplaceAll clears the aggregate table and inserts the given rows.
	ReplaceAll(ctx context.Context, aggregates []core.EngagementAggregate) error

	// RankCampaigns returns the given campaigns with their engagement counts
	// summed across all users, ordered by total engagement descending.
	// Campaigns with no aggregate rows are omitted.
	RankCampaigns(ctx context.Context, campaignIDs []string) ([]core.RankedCampaign, error)

	// Close closes the store and releases resources.
	Close() error
}

// CacheStore is a key-value store with per-key expiration, used for
// cache-aside acceleration of recommendation requests.
type CacheStore interface {
	// GetRecommendations returns the cached recommendation list for the user.
	// Returns ErrNotFound on a miss or after the entry expired.
	GetRecommendations(ctx context.Context, userID string) ([]core.Recommendation, error)

	// SetRecommendations stores the recommendation list for the user with the
	// given time-to-live, overwriting any previous entry.
	SetRecommendations(ctx context.Context, userID string, recs []core.Recommendation, ttl time.Duration) error

	// Close closes the store and releases resources.
	Close() error
}
