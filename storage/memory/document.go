package memory

import (
	"context"
	"sync"

	"github.com/poiesic/campaignrec/core"
	"github.com/poiesic/campaignrec/storage"
)

// DocumentStore is an in-memory storage.DocumentStore.
type DocumentStore struct {
	mu      sync.RWMutex
	records []*core.ConversationRecord
}

// NewDocumentStore creates an empty in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{}
}

var _ storage.DocumentStore = (*DocumentStore)(nil)

// ReplaceAll deletes every stored record and inserts the given batch,
// excluding embeddings.
func (s *DocumentStore) ReplaceAll(ctx context.Context, records []*core.ConversationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make([]*core.ConversationRecord, 0, len(records))
	for _, record := range records {
		doc := record.Document()
		s.records = append(s.records, &doc)
	}
	return nil
}

// FindOneByUser returns the first stored record for the user.
func (s *DocumentStore) FindOneByUser(ctx context.Context, userID string) (*core.ConversationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, record := range s.records {
		if record.UserID == userID {
			doc := *record
			return &doc, nil
		}
	}
	return nil, storage.ErrNotFound
}

// CountRecords returns the number of stored records.
func (s *DocumentStore) CountRecords(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.records)), nil
}

// Close is a no-op for the in-memory store.
func (s *DocumentStore) Close() error {
	return nil
}
