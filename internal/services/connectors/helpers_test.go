package connectors

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scout/internal/common"
	"github.com/ternarybob/scout/internal/interfaces"
	"github.com/ternarybob/scout/internal/services/cache"
	"github.com/ternarybob/scout/internal/storage/badger"
)

const testUserAgent = "scout-test/1.0"

var testTTLs = TTLs{Search: time.Hour, Failure: time.Minute}

func newTestCache(t *testing.T) interfaces.CacheService {
	t.Helper()
	logger := arbor.NewLogger()
	db, err := badger.NewBadgerDB(logger, &common.BadgerConfig{InMemory: true})
	require.NoError(t, err)
	storage := badger.NewCacheStorage(db, logger)
	t.Cleanup(func() { _ = storage.Close() })
	return cache.NewService(storage, logger)
}

// countingServer wraps a handler and counts the requests it receives
type countingServer struct {
	*httptest.Server
	hits int64
}

func newCountingServer(t *testing.T, handler http.HandlerFunc) *countingServer {
	t.Helper()
	cs := &countingServer{}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&cs.hits, 1)
		handler(w, r)
	}))
	t.Cleanup(cs.Close)
	return cs
}

func (cs *countingServer) Hits() int64 {
	return atomic.LoadInt64(&cs.hits)
}

func testClient() *http.Client {
	return &http.Client{Timeout: 5 * time.Second}
}
