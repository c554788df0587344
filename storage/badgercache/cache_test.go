package badgercache

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/campaignrec/core"
	"github.com/poiesic/campaignrec/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCache(t *testing.T) storage.CacheStore {
	t.Helper()
	cache, err := Open("", true)
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestSetAndGet(t *testing.T) {
	ctx := context.Background()
	cache := setupCache(t)

	recs := []core.Recommendation{
		{CampaignID: "camp_x", RankingScore: 3, Reason: "Recommended based on users with similar interests."},
		{CampaignID: "camp_y", RankingScore: 1, Reason: "Recommended based on users with similar interests."},
	}
	require.NoError(t, cache.SetRecommendations(ctx, "user_a", recs, time.Minute))

	got, err := cache.GetRecommendations(ctx, "user_a")
	require.NoError(t, err)
	assert.Equal(t, recs, got, "cached list round-trips in order")
}

func TestGetMiss(t *testing.T) {
	cache := setupCache(t)

	_, err := cache.GetRecommendations(context.Background(), "unknown")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSetOverwrites(t *testing.T) {
	ctx := context.Background()
	cache := setupCache(t)

	require.NoError(t, cache.SetRecommendations(ctx, "user_a",
		[]core.Recommendation{{CampaignID: "old", RankingScore: 1}}, time.Minute))
	require.NoError(t, cache.SetRecommendations(ctx, "user_a",
		[]core.Recommendation{{CampaignID: "new", RankingScore: 2}}, time.Minute))

	got, err := cache.GetRecommendations(ctx, "user_a")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].CampaignID)
}

func TestEntryExpires(t *testing.T) {
	ctx := context.Background()
	cache := setupCache(t)

	require.NoError(t, cache.SetRecommendations(ctx, "user_a",
		[]core.Recommendation{{CampaignID: "camp_x", RankingScore: 1}}, 50*time.Millisecond))

	time.Sleep(100 * time.Millisecond)

	_, err := cache.GetRecommendations(ctx, "user_a")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestEmptyListRoundTrips(t *testing.T) {
	ctx := context.Background()
	cache := setupCache(t)

	require.NoError(t, cache.SetRecommendations(ctx, "user_a", []core.Recommendation{}, time.Minute))

	got, err := cache.GetRecommendations(ctx, "user_a")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClosedCache(t *testing.T) {
	ctx := context.Background()
	cache, err := Open("", true)
	require.NoError(t, err)
	require.NoError(t, cache.Close())

	_, err = cache.GetRecommendations(ctx, "user_a")
	assert.ErrorIs(t, err, storage.ErrStorageClosed)

	err = cache.SetRecommendations(ctx, "user_a", nil, time.Minute)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}
