package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func TestRegisterJob(t *testing.T) {
	s := NewService(arbor.NewLogger())

	require.NoError(t, s.RegisterJob("gc", "@every 30m", "collect", func() error { return nil }))
	assert.Error(t, s.RegisterJob("gc", "@every 30m", "again", func() error { return nil }))
	assert.Error(t, s.RegisterJob("bad", "not a schedule", "", func() error { return nil }))

	status, err := s.GetJobStatus("gc")
	require.NoError(t, err)
	assert.Equal(t, "@every 30m", status.Schedule)
	assert.Equal(t, "collect", status.Description)
	assert.Nil(t, status.LastRun)

	_, err = s.GetJobStatus("missing")
	assert.Error(t, err)
	assert.Len(t, s.GetAllJobStatuses(), 1)
}

func TestTriggerJob_RecordsOutcome(t *testing.T) {
	s := NewService(arbor.NewLogger())
	failing := true

	require.NoError(t, s.RegisterJob("flaky", "@every 1h", "", func() error {
		if failing {
			return errors.New("disk busy")
		}
		return nil
	}))
	require.NoError(t, s.RegisterJob("explodes", "@every 1h", "", func() error {
		panic("boom")
	}))

	require.NoError(t, s.TriggerJob("flaky"))
	status, _ := s.GetJobStatus("flaky")
	assert.Equal(t, "disk busy", status.LastError)
	require.NotNil(t, status.LastRun)
	assert.False(t, status.IsRunning)

	failing = false
	require.NoError(t, s.TriggerJob("flaky"))
	status, _ = s.GetJobStatus("flaky")
	assert.Empty(t, status.LastError)

	require.NoError(t, s.TriggerJob("explodes"))
	status, _ = s.GetJobStatus("explodes")
	assert.Equal(t, "panic: boom", status.LastError)

	assert.Error(t, s.TriggerJob("missing"))
}

func TestStartStop_RunsOnSchedule(t *testing.T) {
	s := NewService(arbor.NewLogger())
	var runs atomic.Int32
	require.NoError(t, s.RegisterJob("tick", "@every 1s", "", func() error {
		runs.Add(1)
		return nil
	}))

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.Error(t, s.Start())

	status, _ := s.GetJobStatus("tick")
	require.NotNil(t, status.NextRun)

	assert.Eventually(t, func() bool { return runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	require.NoError(t, s.Stop())
}

type fakeStorage struct {
	ratio float64
	runs  int
}

func (f *fakeStorage) Get(ctx context.Context, key string) ([]byte, error) { return nil, nil }
func (f *fakeStorage) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}
func (f *fakeStorage) Delete(ctx context.Context, key string) error { return nil }
func (f *fakeStorage) Close() error                                 { return nil }
func (f *fakeStorage) RunGC(discardRatio float64) error {
	f.runs++
	f.ratio = discardRatio
	return nil
}

func TestRegisterCacheGC(t *testing.T) {
	s := NewService(arbor.NewLogger())
	storage := &fakeStorage{}

	require.NoError(t, RegisterCacheGC(s, storage, "@every 30m", 0.5))
	require.NoError(t, s.TriggerJob(CacheGCJobName))

	assert.Equal(t, 1, storage.runs)
	assert.Equal(t, 0.5, storage.ratio)
}

func TestRegisterCacheGC_Disabled(t *testing.T) {
	s := NewService(arbor.NewLogger())

	require.NoError(t, RegisterCacheGC(s, &fakeStorage{}, "", 0.5))
	assert.Empty(t, s.GetAllJobStatuses())
}
