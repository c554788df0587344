package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/poiesic/campaignrec/core"
	"github.com/poiesic/campaignrec/storage"
)

// VectorStore is an in-memory storage.VectorStore using brute-force L2 search.
type VectorStore struct {
	mu      sync.RWMutex
	entries []*core.SimilarityEntry
}

// NewVectorStore creates an empty in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{}
}

var _ storage.VectorStore = (*VectorStore)(nil)

// ReplaceAll replaces the full index contents with the given entries.
func (s *VectorStore) ReplaceAll(ctx context.Context, entries []*core.SimilarityEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make([]*core.SimilarityEntry, len(entries))
	copy(s.entries, entries)
	return nil
}

// SearchSimilar returns up to k entries nearest to the query vector,
// ordered by L2 distance ascending.
func (s *VectorStore) SearchSimilar(ctx context.Context, vector []float32, k int) ([]core.SimilarityMatch, error) {
	if k < 1 {
		return nil, storage.ErrInvalidQuery
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]core.SimilarityMatch, 0, len(s.entries))
	for _, entry := range s.entries {
		if len(entry.Embedding) != len(vector) {
			return nil, storage.ErrDimensionMismatch
		}
		matches = append(matches, core.SimilarityMatch{
			MessageID: entry.MessageID,
			UserID:    entry.UserID,
			Distance:  l2Distance(vector, entry.Embedding),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Close is a no-op for the in-memory store.
func (s *VectorStore) Close() error {
	return nil
}

func l2Distance(a, b []float32) float32 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return float32(math.Sqrt(sum))
}
