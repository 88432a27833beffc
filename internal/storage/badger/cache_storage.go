package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scout/internal/interfaces"
)

// cacheKeyPrefix keeps cache entries apart from badgerhold's typed records
const cacheKeyPrefix = "cache:"

// CacheStorage implements the CacheStorage interface on Badger's native per-entry TTL
type CacheStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewCacheStorage creates a new CacheStorage instance
func NewCacheStorage(db *BadgerDB, logger arbor.ILogger) interfaces.CacheStorage {
	return &CacheStorage{
		db:     db,
		logger: logger,
	}
}

func (s *CacheStorage) storageKey(key string) []byte {
	return []byte(cacheKeyPrefix + key)
}

// Get retrieves a value by key; expired entries are reported as a miss by Badger itself
func (s *CacheStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var value []byte
	err := s.db.Store().Badger().View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.storageKey(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, interfaces.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cache entry: %w", err)
	}

	return value, nil
}

// Set stores a value with the given time-to-live (zero means no expiry)
func (s *CacheStorage) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entry := badger.NewEntry(s.storageKey(key), value)
	if ttl > 0 {
		entry = entry.WithTTL(ttl)
	}

	if err := s.db.Store().Badger().Update(func(txn *badger.Txn) error {
		return txn.SetEntry(entry)
	}); err != nil {
		return fmt.Errorf("failed to set cache entry: %w", err)
	}

	return nil
}

// Delete removes a cache entry
func (s *CacheStorage) Delete(ctx context.Context, key string) error {
	if err := s.db.Store().Badger().Update(func(txn *badger.Txn) error {
		return txn.Delete(s.storageKey(key))
	}); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// RunGC runs value-log garbage collection until Badger reports nothing left to rewrite
func (s *CacheStorage) RunGC(discardRatio float64) error {
	if s.db.config != nil && s.db.config.InMemory {
		return nil
	}

	rounds := 0
	for {
		err := s.db.Store().Badger().RunValueLogGC(discardRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			break
		}
		if err != nil {
			return fmt.Errorf("value log gc failed after %d rounds: %w", rounds, err)
		}
		rounds++
	}

	s.logger.Debug().Int("rounds", rounds).Msg("Cache value log GC complete")
	return nil
}

// Close closes the underlying database
func (s *CacheStorage) Close() error {
	return s.db.Close()
}
