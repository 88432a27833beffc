package scheduler

import (
	"github.com/ternarybob/scout/internal/interfaces"
)

// CacheGCJobName identifies the cache value-log GC job
const CacheGCJobName = "cache_gc"

// RegisterCacheGC schedules value-log garbage collection of the cache store.
// An empty schedule disables the job.
func RegisterCacheGC(scheduler interfaces.SchedulerService, storage interfaces.CacheStorage, schedule string, discardRatio float64) error {
	if schedule == "" {
		return nil
	}

	return scheduler.RegisterJob(CacheGCJobName, schedule, "Reclaim space from expired cache entries", func() error {
		return storage.RunGC(discardRatio)
	})
}
