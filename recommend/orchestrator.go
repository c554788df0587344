package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/campaignrec/ai"
	"github.com/poiesic/campaignrec/core"
	"github.com/poiesic/campaignrec/storage"
)

const (
	// DefaultTopK is the number of nearest neighbors fetched from the vector
	// store per request.
	DefaultTopK = 5

	// DefaultCacheTTL is how long a computed recommendation list stays cached.
	DefaultCacheTTL = 300 * time.Second

	// DefaultReason is the annotation attached to every ranked item.
	DefaultReason = "Recommended based on users with similar interests."
)

// Orchestrator serves per-user campaign recommendations with cache-aside,
// multi-stage hybrid retrieval: vector similarity, then graph expansion,
// then analytics ranking.
type Orchestrator struct {
	cache     storage.CacheStore
	documents storage.DocumentStore
	vectors   storage.VectorStore
	graph     storage.GraphStore
	analytics storage.AnalyticsStore
	embedder  ai.Embedder

	topK     int
	cacheTTL time.Duration
	reason   string
	logger   *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithTopK sets the number of nearest neighbors requested per query.
// Default is DefaultTopK.
func WithTopK(k int) Option {
	return func(o *Orchestrator) error {
		if k < 1 {
			return fmt.Errorf("top-k must be positive, got %d", k)
		}
		o.topK = k
		return nil
	}
}

// WithCacheTTL sets the cache entry time-to-live.
// Default is DefaultCacheTTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *Orchestrator) error {
		if ttl <= 0 {
			return fmt.Errorf("cache TTL must be positive, got %s", ttl)
		}
		o.cacheTTL = ttl
		return nil
	}
}

// WithReason sets the annotation attached to every recommendation.
// Default is DefaultReason.
func WithReason(reason string) Option {
	return func(o *Orchestrator) error {
		o.reason = reason
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// NewOrchestrator creates a new recommendation orchestrator.
func NewOrchestrator(
	cache storage.CacheStore,
	documents storage.DocumentStore,
	vectors storage.VectorStore,
	graph storage.GraphStore,
	analytics storage.AnalyticsStore,
	embedder ai.Embedder,
	opts ...Option,
) (*Orchestrator, error) {
	if cache == nil || documents == nil || vectors == nil || graph == nil || analytics == nil {
		return nil, ErrStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	o := &Orchestrator{
		cache:     cache,
		documents: documents,
		vectors:   vectors,
		graph:     graph,
		analytics: analytics,
		embedder:  embedder,
		topK:      DefaultTopK,
		cacheTTL:  DefaultCacheTTL,
		reason:    DefaultReason,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	return o, nil
}

// Recommend returns ranked campaign recommendations for the user.
//
// On a cache hit the cached list is returned with source "cache". A cache
// read failure degrades to a miss; retrieval proceeds. On a miss the
// pipeline runs: one of the user's records is fetched as a seed, its message
// re-embedded, similar users found by L2 search and deduplicated, their
// campaigns expanded through the graph, and the candidates ranked by summed
// engagement. An empty similar-user or campaign set short-circuits to an
// empty computed list. The computed list is written back to the cache;
// a cache write failure is logged and swallowed.
//
// Returns ErrUserNotFound if the user has no document-store record. Failures
// of the document, vector, graph or analytics stores abort the request.
func (o *Orchestrator) Recommend(ctx context.Context, userID string) (*core.RecommendationSet, error) {
	if cached, err := o.cache.GetRecommendations(ctx, userID); err == nil {
		o.logger.Info("cache hit", "user_id", userID)
		return &core.RecommendationSet{
			UserID:          userID,
			Recommendations: cached,
			RetrievalSource: core.SourceCache,
		}, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		o.logger.Warn("cache read failed, treating as miss", "user_id", userID, "err", err)
	}

	o.logger.Info("cache miss, computing", "user_id", userID)

	seed, err := o.documents.FindOneByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("fetching seed record: %w", err)
	}

	// The seed embedding is recomputed from the stored message text rather
	// than reusing the ingestion-time vector; numeric equality with the
	// stored embedding is not guaranteed.
	vector, err := o.embedder.EmbedText(ctx, seed.Message)
	if err != nil {
		return nil, fmt.Errorf("embedding seed message: %w", err)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: user %s", ErrEmptyEmbedding, userID)
	}

	matches, err := o.vectors.SearchSimilar(ctx, vector, o.topK)
	if err != nil {
		return nil, fmt.Errorf("searching similar users: %w", err)
	}

	similarUsers := dedupUserIDs(matches)
	o.logger.Debug("found similar users", "user_id", userID, "similar", similarUsers)
	if len(similarUsers) == 0 {
		o.logger.Warn("no similar users found", "user_id", userID)
		return o.emptyComputed(userID), nil
	}

	campaignIDs, err := o.graph.CampaignsForUsers(ctx, similarUsers)
	if err != nil {
		return nil, fmt.Errorf("expanding campaigns: %w", err)
	}
	o.logger.Debug("found related campaigns", "user_id", userID, "campaigns", campaignIDs)
	if len(campaignIDs) == 0 {
		o.logger.Warn("no campaigns found for similar users", "user_id", userID)
		return o.emptyComputed(userID), nil
	}

	ranked, err := o.analytics.RankCampaigns(ctx, campaignIDs)
	if err != nil {
		return nil, fmt.Errorf("ranking campaigns: %w", err)
	}

	recs := make([]core.Recommendation, len(ranked))
	for i, rc := range ranked {
		recs[i] = core.Recommendation{
			CampaignID:   rc.CampaignID,
			RankingScore: rc.TotalEngagement,
			Reason:       o.reason,
		}
	}

	if err := o.cache.SetRecommendations(ctx, userID, recs, o.cacheTTL); err != nil {
		o.logger.Warn("cache write failed", "user_id", userID, "err", err)
	}

	return &core.RecommendationSet{
		UserID:          userID,
		Recommendations: recs,
		RetrievalSource: core.SourceComputed,
	}, nil
}

func (o *Orchestrator) emptyComputed(userID string) *core.RecommendationSet {
	return &core.RecommendationSet{
		UserID:          userID,
		Recommendations: []core.Recommendation{},
		RetrievalSource: core.SourceComputed,
	}
}

// dedupUserIDs collapses matches to distinct user ids. Set semantics: the
// similarity ordering is discarded since ranking happens downstream by
// engagement, not distance.
func dedupUserIDs(matches []core.SimilarityMatch) []string {
	seen := make(map[string]bool, len(matches))
	ids := make([]string, 0, len(matches))
	for _, match := range matches {
		if match.UserID == "" || seen[match.UserID] {
			continue
		}
		seen[match.UserID] = true
		ids = append(ids, match.UserID)
	}
	return ids
}
