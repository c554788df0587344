package memory

import (
	"context"
	"sync"
	"time"

	"github.com/poiesic/campaignrec/core"
	"github.com/poiesic/campaignrec/storage"
)

type cacheEntry struct {
	recs      []core.Recommendation
	expiresAt time.Time
}

// CacheStore is an in-memory storage.CacheStore with per-key expiration.
//
// Now is injectable so tests can exercise TTL expiry without sleeping.
type CacheStore struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// NewCacheStore creates an empty in-memory cache store.
func NewCacheStore() *CacheStore {
	return &CacheStore{
		entries: make(map[string]cacheEntry),
		Now:     time.Now,
	}
}

var _ storage.CacheStore = (*CacheStore)(nil)

// GetRecommendations returns the cached list for the user, or ErrNotFound on
// a miss or after expiry.
func (s *CacheStore) GetRecommendations(ctx context.Context, userID string) ([]core.Recommendation, error) {
	s.mu.RLock()
	entry, ok := s.entries[cacheKey(userID)]
	s.mu.RUnlock()

	if !ok || s.Now().After(entry.expiresAt) {
		return nil, storage.ErrNotFound
	}

	recs := make([]core.Recommendation, len(entry.recs))
	copy(recs, entry.recs)
	return recs, nil
}

// SetRecommendations stores the list for the user with the given TTL.
func (s *CacheStore) SetRecommendations(ctx context.Context, userID string, recs []core.Recommendation, ttl time.Duration) error {
	stored := make([]core.Recommendation, len(recs))
	copy(stored, recs)

	s.mu.Lock()
	s.entries[cacheKey(userID)] = cacheEntry{
		recs:      stored,
		expiresAt: s.Now().Add(ttl),
	}
	s.mu.Unlock()
	return nil
}

// Close is a no-op for the in-memory store.
func (s *CacheStore) Close() error {
	return nil
}

func cacheKey(userID string) string {
	return "rec:" + userID
}
