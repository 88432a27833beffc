// Package cache memoizes connector and fetch results on top of an expiring key/value store.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scout/internal/interfaces"
)

// Service provides typed JSON access to the cache storage.
type Service struct {
	storage interfaces.CacheStorage
	logger  arbor.ILogger
}

// NewService creates a new cache service.
func NewService(storage interfaces.CacheStorage, logger arbor.ILogger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// Key builds a deterministic cache key from a namespace tag and the logical request
// parameters, e.g. Key("ddg", query, maxResults, lang). Equal tuples give equal keys.
func Key(namespace string, parts ...interface{}) string {
	encoded, err := json.Marshal(parts)
	if err != nil {
		// Unencodable parts still need a stable key
		encoded = []byte(fmt.Sprintf("%#v", parts))
	}
	sum := sha256.Sum256(encoded)
	return namespace + ":" + hex.EncodeToString(sum[:16])
}

// Get decodes the entry under key into dest. Misses, storage errors and corrupt
// entries all report false.
func (s *Service) Get(ctx context.Context, key string, dest interface{}) bool {
	data, err := s.storage.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, interfaces.ErrCacheMiss) && ctx.Err() == nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("Cache read failed, treating as miss")
		}
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Discarding undecodable cache entry")
		_ = s.storage.Delete(ctx, key)
		return false
	}

	return true
}

// Set encodes value and stores it under key for ttl. Failures are logged only.
func (s *Service) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Failed to encode cache entry")
		return
	}

	if err := s.storage.Set(ctx, key, data, ttl); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Cache write failed")
		return
	}

	s.logger.Debug().Str("key", key).Dur("ttl", ttl).Int("bytes", len(data)).Msg("Cache entry stored")
}
