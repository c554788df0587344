package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/poiesic/campaignrec/core"
	"github.com/poiesic/campaignrec/storage"
)

// AnalyticsStore is an in-memory storage.AnalyticsStore.
type AnalyticsStore struct {
	mu   sync.RWMutex
	rows []core.EngagementAggregate
}

// NewAnalyticsStore creates an empty in-memory analytics store.
func NewAnalyticsStore() *AnalyticsStore {
	return &AnalyticsStore{}
}

var _ storage.AnalyticsStore = (*AnalyticsStore)(nil)

// ReplaceAll clears the aggregate table and inserts the given rows.
func (s *AnalyticsStore) ReplaceAll(ctx context.Context, aggregates []core.EngagementAggregate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows = make([]core.EngagementAggregate, len(aggregates))
	copy(s.rows, aggregates)
	return nil
}

// RankCampaigns sums engagement per campaign and orders descending.
func (s *AnalyticsStore) RankCampaigns(ctx context.Context, campaignIDs []string) ([]core.RankedCampaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]bool, len(campaignIDs))
	for _, id := range campaignIDs {
		wanted[id] = true
	}

	totals := make(map[string]int64)
	for _, row := range s.rows {
		if wanted[row.CampaignID] {
			totals[row.CampaignID] += row.EngagementCount
		}
	}

	ranked := make([]core.RankedCampaign, 0, len(totals))
	for campaignID, total := range totals {
		ranked = append(ranked, core.RankedCampaign{CampaignID: campaignID, TotalEngagement: total})
	}
	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].TotalEngagement > ranked[j].TotalEngagement
	})
	return ranked, nil
}

// Rows returns a copy of the stored aggregates. Used by tests.
func (s *AnalyticsStore) Rows() []core.EngagementAggregate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := make([]core.EngagementAggregate, len(s.rows))
	copy(rows, s.rows)
	return rows
}

// Close is a no-op for the in-memory store.
func (s *AnalyticsStore) Close() error {
	return nil
}
