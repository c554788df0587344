package recommend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/campaignrec/ai/mock"
	"github.com/poiesic/campaignrec/core"
	"github.com/poiesic/campaignrec/storage/memory"
)

// testStores bundles the in-memory stores backing an orchestrator under test.
type testStores struct {
	cache     *memory.CacheStore
	documents *memory.DocumentStore
	vectors   *memory.VectorStore
	graph     *memory.GraphStore
	analytics *memory.AnalyticsStore
}

func newTestStores() *testStores {
	return &testStores{
		cache:     memory.NewCacheStore(),
		documents: memory.NewDocumentStore(),
		vectors:   memory.NewVectorStore(),
		graph:     memory.NewGraphStore(),
		analytics: memory.NewAnalyticsStore(),
	}
}

func record(messageID, userID, campaignID, intent, message string) *core.ConversationRecord {
	return &core.ConversationRecord{
		MessageID:  messageID,
		UserID:     userID,
		CampaignID: campaignID,
		Timestamp:  "2025-06-01T10:00:00Z",
		Intent:     intent,
		Message:    message,
	}
}

// seedFixture loads a small corpus where u2 and u3 sit near the query vector,
// u4 sits far away, and engagement favors u2's campaign.
func seedFixture(t *testing.T, stores *testStores) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, stores.documents.ReplaceAll(ctx, []*core.ConversationRecord{
		record("m1", "u1", "camp-a", "interest", "looking for trail shoes"),
		record("m2", "u2", "camp-a", "interest", "need hiking boots"),
		record("m3", "u3", "camp-b", "purchase", "bought a tent"),
		record("m4", "u4", "camp-c", "complaint", "late delivery"),
	}))

	require.NoError(t, stores.vectors.ReplaceAll(ctx, []*core.SimilarityEntry{
		{MessageID: "m2", UserID: "u2", Embedding: []float32{1, 0, 0.1}},
		{MessageID: "m3", UserID: "u3", Embedding: []float32{1, 0, 0.2}},
		{MessageID: "m4", UserID: "u4", Embedding: []float32{9, 9, 9}},
	}))

	require.NoError(t, stores.graph.ReplaceAll(ctx, []*core.ConversationRecord{
		record("m2", "u2", "camp-a", "interest", "need hiking boots"),
		record("m3", "u3", "camp-b", "purchase", "bought a tent"),
		record("m4", "u4", "camp-c", "complaint", "late delivery"),
	}))

	require.NoError(t, stores.analytics.ReplaceAll(ctx, []core.EngagementAggregate{
		{UserID: "u2", CampaignID: "camp-a", EngagementCount: 5},
		{UserID: "u3", CampaignID: "camp-b", EngagementCount: 3},
		{UserID: "u4", CampaignID: "camp-c", EngagementCount: 100},
	}))
}

// fixedEmbedder always returns the same query vector, keeping nearest-neighbor
// results deterministic.
func fixedEmbedder(vector []float32) *mock.MockEmbedder {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return vector, nil
	}
	return embedder
}

func newTestOrchestrator(t *testing.T, stores *testStores, opts ...Option) *Orchestrator {
	t.Helper()
	o, err := NewOrchestrator(
		stores.cache, stores.documents, stores.vectors, stores.graph, stores.analytics,
		fixedEmbedder([]float32{1, 0, 0}),
		opts...,
	)
	require.NoError(t, err)
	return o
}

func TestNewOrchestratorValidatesDependencies(t *testing.T) {
	stores := newTestStores()
	embedder := mock.NewMockEmbedder()

	_, err := NewOrchestrator(nil, stores.documents, stores.vectors, stores.graph, stores.analytics, embedder)
	assert.ErrorIs(t, err, ErrStoreRequired)

	_, err = NewOrchestrator(stores.cache, stores.documents, nil, stores.graph, stores.analytics, embedder)
	assert.ErrorIs(t, err, ErrStoreRequired)

	_, err = NewOrchestrator(stores.cache, stores.documents, stores.vectors, stores.graph, stores.analytics, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	_, err = NewOrchestrator(stores.cache, stores.documents, stores.vectors, stores.graph, stores.analytics, embedder, WithTopK(0))
	assert.Error(t, err)

	_, err = NewOrchestrator(stores.cache, stores.documents, stores.vectors, stores.graph, stores.analytics, embedder, WithCacheTTL(0))
	assert.Error(t, err)
}

func TestRecommendComputesRankedList(t *testing.T) {
	stores := newTestStores()
	seedFixture(t, stores)
	o := newTestOrchestrator(t, stores, WithTopK(2))

	set, err := o.Recommend(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, "u1", set.UserID)
	assert.Equal(t, core.SourceComputed, set.RetrievalSource)
	require.Len(t, set.Recommendations, 2)

	// camp-a outranks camp-b; camp-c is out of reach of the top-2 neighbors.
	assert.Equal(t, "camp-a", set.Recommendations[0].CampaignID)
	assert.Equal(t, int64(5), set.Recommendations[0].RankingScore)
	assert.Equal(t, "camp-b", set.Recommendations[1].CampaignID)
	assert.Equal(t, int64(3), set.Recommendations[1].RankingScore)
	for _, rec := range set.Recommendations {
		assert.Equal(t, DefaultReason, rec.Reason)
	}
}

func TestRecommendSecondCallServedFromCache(t *testing.T) {
	stores := newTestStores()
	seedFixture(t, stores)
	o := newTestOrchestrator(t, stores, WithTopK(2))
	ctx := context.Background()

	first, err := o.Recommend(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, core.SourceComputed, first.RetrievalSource)

	second, err := o.Recommend(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, core.SourceCache, second.RetrievalSource)
	assert.Equal(t, first.Recommendations, second.Recommendations)
}

func TestRecommendUnknownUser(t *testing.T) {
	stores := newTestStores()
	seedFixture(t, stores)
	o := newTestOrchestrator(t, stores)

	set, err := o.Recommend(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Nil(t, set)
}

func TestRecommendNoSimilarUsers(t *testing.T) {
	stores := newTestStores()
	ctx := context.Background()
	require.NoError(t, stores.documents.ReplaceAll(ctx, []*core.ConversationRecord{
		record("m1", "u1", "camp-a", "interest", "hello"),
	}))

	o := newTestOrchestrator(t, stores)

	set, err := o.Recommend(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, core.SourceComputed, set.RetrievalSource)
	assert.Empty(t, set.Recommendations)
	assert.NotNil(t, set.Recommendations)
}

func TestRecommendNoCampaignsForSimilarUsers(t *testing.T) {
	stores := newTestStores()
	ctx := context.Background()
	require.NoError(t, stores.documents.ReplaceAll(ctx, []*core.ConversationRecord{
		record("m1", "u1", "camp-a", "interest", "hello"),
	}))
	require.NoError(t, stores.vectors.ReplaceAll(ctx, []*core.SimilarityEntry{
		{MessageID: "m9", UserID: "u9", Embedding: []float32{1, 0, 0}},
	}))

	o := newTestOrchestrator(t, stores)

	set, err := o.Recommend(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, core.SourceComputed, set.RetrievalSource)
	assert.Empty(t, set.Recommendations)
}

func TestRecommendEmptyEmbedding(t *testing.T) {
	stores := newTestStores()
	seedFixture(t, stores)

	o, err := NewOrchestrator(
		stores.cache, stores.documents, stores.vectors, stores.graph, stores.analytics,
		fixedEmbedder(nil),
	)
	require.NoError(t, err)

	_, err = o.Recommend(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrEmptyEmbedding)
}

// faultyCache injects read/write failures around a real in-memory cache.
type faultyCache struct {
	*memory.CacheStore
	failReads  bool
	failWrites bool
	writeCalls int
}

func (c *faultyCache) GetRecommendations(ctx context.Context, userID string) ([]core.Recommendation, error) {
	if c.failReads {
		return nil, errors.New("cache backend down")
	}
	return c.CacheStore.GetRecommendations(ctx, userID)
}

func (c *faultyCache) SetRecommendations(ctx context.Context, userID string, recs []core.Recommendation, ttl time.Duration) error {
	c.writeCalls++
	if c.failWrites {
		return errors.New("cache backend down")
	}
	return c.CacheStore.SetRecommendations(ctx, userID, recs, ttl)
}

func TestRecommendCacheReadFailureDegradesToMiss(t *testing.T) {
	stores := newTestStores()
	seedFixture(t, stores)
	cache := &faultyCache{CacheStore: stores.cache, failReads: true}

	o, err := NewOrchestrator(
		cache, stores.documents, stores.vectors, stores.graph, stores.analytics,
		fixedEmbedder([]float32{1, 0, 0}),
		WithTopK(2),
	)
	require.NoError(t, err)

	set, err := o.Recommend(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, core.SourceComputed, set.RetrievalSource)
	assert.NotEmpty(t, set.Recommendations)
}

func TestRecommendCacheWriteFailureSwallowed(t *testing.T) {
	stores := newTestStores()
	seedFixture(t, stores)
	cache := &faultyCache{CacheStore: stores.cache, failWrites: true}

	o, err := NewOrchestrator(
		cache, stores.documents, stores.vectors, stores.graph, stores.analytics,
		fixedEmbedder([]float32{1, 0, 0}),
		WithTopK(2),
	)
	require.NoError(t, err)

	set, err := o.Recommend(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, core.SourceComputed, set.RetrievalSource)
	assert.Equal(t, 1, cache.writeCalls)
}

func TestRecommendRecomputesAfterExpiry(t *testing.T) {
	stores := newTestStores()
	seedFixture(t, stores)

	now := time.Now()
	stores.cache.Now = func() time.Time { return now }

	o := newTestOrchestrator(t, stores, WithTopK(2), WithCacheTTL(300*time.Second))
	ctx := context.Background()

	first, err := o.Recommend(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, core.SourceComputed, first.RetrievalSource)

	now = now.Add(60 * time.Second)
	warm, err := o.Recommend(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, core.SourceCache, warm.RetrievalSource)

	now = now.Add(300 * time.Second)
	expired, err := o.Recommend(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, core.SourceComputed, expired.RetrievalSource)
}

func TestRecommendCustomReason(t *testing.T) {
	stores := newTestStores()
	seedFixture(t, stores)
	o := newTestOrchestrator(t, stores, WithTopK(2), WithReason("trending with your cohort"))

	set, err := o.Recommend(context.Background(), "u1")
	require.NoError(t, err)
	require.NotEmpty(t, set.Recommendations)
	assert.Equal(t, "trending with your cohort", set.Recommendations[0].Reason)
}

func TestDedupUserIDs(t *testing.T) {
	ids := dedupUserIDs([]core.SimilarityMatch{
		{MessageID: "m1", UserID: "u2", Distance: 0.1},
		{MessageID: "m2", UserID: "u3", Distance: 0.2},
		{MessageID: "m3", UserID: "u2", Distance: 0.3},
		{MessageID: "m4", UserID: "", Distance: 0.4},
	})
	assert.Equal(t, []string{"u2", "u3"}, ids)
}
