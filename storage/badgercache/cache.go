package badgercache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/poiesic/campaignrec/core"
	"github.com/poiesic/campaignrec/storage"
)

// keyPrefix namespaces recommendation entries. The full key for a user is
// "rec:" + user id, and the value is the JSON array of recommendations.
const keyPrefix = "rec:"

// Cache implements storage.CacheStore on BadgerDB using native entry TTLs.
// Entries expire autonomously; nothing deletes them explicitly.
type Cache struct {
	db     *badger.DB
	logger *slog.Logger
}

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// Open opens a cache at the specified path, creating the directory if it
// doesn't exist. Pass inMemory=true for an ephemeral cache (tests, demos).
//
// Returns storage.CacheStore interface to enforce abstraction.
func Open(path string, inMemory bool) (storage.CacheStore, error) {
	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(path, 0755); err != nil {
					return nil, err
				}
				info, err = os.Stat(path)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", path)
		}
		opts = badger.DefaultOptions(path)
	}

	opts.Logger = &badgerLoggerAdapter{logger: slog.Default()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Cache{
		db:     db,
		logger: slog.Default().With("component", "badger-cache"),
	}, nil
}

var _ storage.CacheStore = (*Cache)(nil)

// GetRecommendations returns the cached list for the user.
// Misses and expired entries both surface as storage.ErrNotFound.
func (c *Cache) GetRecommendations(ctx context.Context, userID string) ([]core.Recommendation, error) {
	if c.db.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var recs []core.Recommendation
	err := c.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(keyPrefix + userID))
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			return json.Unmarshal(value, &recs)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("reading cache entry for %q: %w", userID, err)
	}
	return recs, nil
}

// SetRecommendations stores the list for the user with the given TTL,
// overwriting any previous entry.
func (c *Cache) SetRecommendations(ctx context.Context, userID string, recs []core.Recommendation, ttl time.Duration) error {
	if c.db.IsClosed() {
		return storage.ErrStorageClosed
	}

	value, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("encoding cache entry for %q: %w", userID, err)
	}

	err = c.db.Update(func(tx *badger.Txn) error {
		entry := badger.NewEntry([]byte(keyPrefix+userID), value).WithTTL(ttl)
		return tx.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("writing cache entry for %q: %w", userID, err)
	}
	return nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}
