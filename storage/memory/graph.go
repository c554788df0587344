package memory

import (
	"context"
	"sync"

	"github.com/poiesic/campaignrec/core"
	"github.com/poiesic/campaignrec/storage"
)

// GraphStore is an in-memory storage.GraphStore.
//
// Nodes and edges are kept as sets keyed by identity, which mirrors the
// MERGE semantics of a real graph database: repeating a user/campaign pair
// across records collapses to a single edge.
type GraphStore struct {
	mu             sync.RWMutex
	users          map[string]bool
	campaigns      map[string]bool
	intents        map[string]bool
	participatedIn map[[2]string]string // (user, campaign) -> timestamp
	expressed      map[[2]string]string // (user, intent) -> timestamp
}

// NewGraphStore creates an empty in-memory graph store.
func NewGraphStore() *GraphStore {
	s := &GraphStore{}
	s.clearLocked()
	return s
}

var _ storage.GraphStore = (*GraphStore)(nil)

func (s *GraphStore) clearLocked() {
	s.users = make(map[string]bool)
	s.campaigns = make(map[string]bool)
	s.intents = make(map[string]bool)
	s.participatedIn = make(map[[2]string]string)
	s.expressed = make(map[[2]string]string)
}

// ReplaceAll clears the graph and merges nodes and edges for every record.
func (s *GraphStore) ReplaceAll(ctx context.Context, records []*core.ConversationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearLocked()
	for _, record := range records {
		s.users[record.UserID] = true
		s.campaigns[record.CampaignID] = true
		s.intents[record.Intent] = true
		s.participatedIn[[2]string{record.UserID, record.CampaignID}] = record.Timestamp
		s.expressed[[2]string{record.UserID, record.Intent}] = record.Timestamp
	}
	return nil
}

// CampaignsForUsers returns the distinct campaigns any of the given users
// participated in.
func (s *GraphStore) CampaignsForUsers(ctx context.Context, userIDs []string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = true
	}

	seen := make(map[string]bool)
	var campaigns []string
	for edge := range s.participatedIn {
		if wanted[edge[0]] && !seen[edge[1]] {
			seen[edge[1]] = true
			campaigns = append(campaigns, edge[1])
		}
	}
	return campaigns, nil
}

// EdgeCount returns the number of PARTICIPATED_IN edges. Used by tests to
// assert merge idempotence.
func (s *GraphStore) EdgeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.participatedIn)
}

// Close is a no-op for the in-memory store.
func (s *GraphStore) Close() error {
	return nil
}
