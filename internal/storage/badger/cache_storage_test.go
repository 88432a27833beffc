package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scout/internal/common"
	"github.com/ternarybob/scout/internal/interfaces"
)

func newTestCacheStorage(t *testing.T, config *common.BadgerConfig) interfaces.CacheStorage {
	t.Helper()
	logger := arbor.NewLogger()
	db, err := NewBadgerDB(logger, config)
	require.NoError(t, err)
	storage := NewCacheStorage(db, logger)
	t.Cleanup(func() { _ = storage.Close() })
	return storage
}

func TestCacheStorage_SetGetDelete(t *testing.T) {
	storage := newTestCacheStorage(t, &common.BadgerConfig{InMemory: true})
	ctx := context.Background()

	_, err := storage.Get(ctx, "missing")
	assert.ErrorIs(t, err, interfaces.ErrCacheMiss)

	require.NoError(t, storage.Set(ctx, "k", []byte(`["a"]`), time.Hour))
	value, err := storage.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `["a"]`, string(value))

	// Overwrite replaces the entry
	require.NoError(t, storage.Set(ctx, "k", []byte(`[]`), time.Hour))
	value, err = storage.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(value))

	require.NoError(t, storage.Delete(ctx, "k"))
	_, err = storage.Get(ctx, "k")
	assert.ErrorIs(t, err, interfaces.ErrCacheMiss)

	// Deleting a missing key is fine
	assert.NoError(t, storage.Delete(ctx, "never-set"))
}

func TestCacheStorage_EntryExpires(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for a one second TTL")
	}
	storage := newTestCacheStorage(t, &common.BadgerConfig{InMemory: true})
	ctx := context.Background()

	require.NoError(t, storage.Set(ctx, "short", []byte("v"), time.Second))
	require.NoError(t, storage.Set(ctx, "long", []byte("v"), time.Hour))

	time.Sleep(2100 * time.Millisecond)

	_, err := storage.Get(ctx, "short")
	assert.ErrorIs(t, err, interfaces.ErrCacheMiss)
	_, err = storage.Get(ctx, "long")
	assert.NoError(t, err)
}

func TestCacheStorage_PersistsOnDisk(t *testing.T) {
	dir := t.TempDir()
	logger := arbor.NewLogger()
	ctx := context.Background()

	db, err := NewBadgerDB(logger, &common.BadgerConfig{Path: dir})
	require.NoError(t, err)
	storage := NewCacheStorage(db, logger)
	require.NoError(t, storage.Set(ctx, "fetch:x", []byte(`"text"`), time.Hour))
	require.NoError(t, storage.RunGC(0.5))
	require.NoError(t, storage.Close())

	db, err = NewBadgerDB(logger, &common.BadgerConfig{Path: dir})
	require.NoError(t, err)
	storage = NewCacheStorage(db, logger)
	defer storage.Close()

	value, err := storage.Get(ctx, "fetch:x")
	require.NoError(t, err)
	assert.Equal(t, `"text"`, string(value))
}

func TestCacheStorage_ResetOnStartup(t *testing.T) {
	dir := t.TempDir()
	logger := arbor.NewLogger()
	ctx := context.Background()

	db, err := NewBadgerDB(logger, &common.BadgerConfig{Path: dir})
	require.NoError(t, err)
	storage := NewCacheStorage(db, logger)
	require.NoError(t, storage.Set(ctx, "k", []byte("v"), time.Hour))
	require.NoError(t, storage.Close())

	db, err = NewBadgerDB(logger, &common.BadgerConfig{Path: dir, ResetOnStartup: true})
	require.NoError(t, err)
	storage = NewCacheStorage(db, logger)
	defer storage.Close()

	_, err = storage.Get(ctx, "k")
	assert.ErrorIs(t, err, interfaces.ErrCacheMiss)
}
