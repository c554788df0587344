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


package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/campaignrec/core"
	"github.com/poiesic/campaignrec/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultDatabase   = "marketing"
	defaultCollection = "conversations"
)

// Store implements storage.DocumentStore on MongoDB.
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *slog.Logger
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

// NewDocumentStore connects to MongoDB and returns a document store over the
// conversations collection. The connection is verified with a ping so startup
// retry policies can distinguish an unreachable server from a bad URI.
//
// Returns storage.DocumentStore interface to enforce abstraction.
func NewDocumentStore(ctx context.Context, uri string, opts ...Option) (storage.DocumentStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	s := &Store{
		client:     client,
		collection: client.Database(defaultDatabase).Collection(defaultCollection),
		logger:     slog.Default().With("component", "mongo-document-store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

var _ storage.DocumentStore = (*Store)(nil)

// ReplaceAll deletes every stored document and inserts the batch.
// Embeddings are stripped before insertion; they belong to the vector store.
func (s *Store) ReplaceAll(ctx context.Context, records []*core.ConversationRecord) error {
	if _, err := s.collection.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("clearing conversations: %w", err)
	}

	if len(records) == 0 {
		return nil
	}

	docs := make([]any, len(records))
	for i, record := range records {
		docs[i] = record.Document()
	}

	if _, err := s.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("inserting conversations: %w", err)
	}

	s.logger.Info("replaced document store contents", "records", len(docs))
	return nil
}

// FindOneByUser returns one of the user's conversation records.
// Any matching record is acceptable; no recency ordering is guaranteed.
func (s *Store) FindOneByUser(ctx context.Context, userID string) (*core.ConversationRecord, error) {
	var record core.ConversationRecord
	err := s.collection.FindOne(ctx, bson.D{{Key: "user_id", Value: userID}}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("finding conversation for user %q: %w", userID, err)
	}
	return &record, nil
}

// CountRecords returns the number of stored documents.
func (s *Store) CountRecords(ctx context.Context) (int64, error) {
	count, err := s.collection.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("counting conversations: %w", err)
	}
	return count, nil
}

// Close disconnects the underlying client.
func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}
