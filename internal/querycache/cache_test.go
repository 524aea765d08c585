package querycache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchCachesUntilTTL(t *testing.T) {
	c := New(time.Minute)
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }

	var calls atomic.Int32
	fn := func(context.Context) (any, error) {
		calls.Add(1)
		return "v1", nil
	}

	v, err := c.Fetch(context.Background(), "sessions", fn)
	require.NoError(t, err)
	assert.Equal(t, "v1", v)

	_, err = c.Fetch(context.Background(), "sessions", fn)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load(), "second read served from cache")

	now = now.Add(2 * time.Minute)
	_, err = c.Fetch(context.Background(), "sessions", fn)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load(), "expired entry refetched")
}

func TestFetchDeduplicatesConcurrentReads(t *testing.T) {
	c := New(time.Minute)

	var calls atomic.Int32
	release := make(chan struct{})
	fn := func(context.Context) (any, error) {
		calls.Add(1)
		<-release
		return "v", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.Fetch(context.Background(), "activity", fn)
			assert.NoError(t, err)
			assert.Equal(t, "v", v)
		}()
	}

	// Let the goroutines pile onto the same key, then release the flight.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load(), "identical in-flight reads share one call")
}

func TestFetchDoesNotCacheErrors(t *testing.T) {
	c := New(time.Minute)

	var calls atomic.Int32
	boom := errors.New("boom")
	fn := func(context.Context) (any, error) {
		calls.Add(1)
		return nil, boom
	}

	_, err := c.Fetch(context.Background(), "devices", fn)
	assert.ErrorIs(t, err, boom)
	_, err = c.Fetch(context.Background(), "devices", fn)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(2), calls.Load())
}

func TestInvalidateByPrefix(t *testing.T) {
	c := New(time.Minute)
	seed := func(key, val string) {
		_, err := c.Fetch(context.Background(), key, func(context.Context) (any, error) { return val, nil })
		require.NoError(t, err)
	}
	seed(Key("sessions"), "s")
	seed(Key("sessions", "cursor=2"), "s2")
	seed(Key("devices"), "d")

	c.Invalidate("sessions")

	var calls atomic.Int32
	count := func(context.Context) (any, error) { calls.Add(1); return "x", nil }
	_, _ = c.Fetch(context.Background(), Key("sessions"), count)
	_, _ = c.Fetch(context.Background(), Key("sessions", "cursor=2"), count)
	_, _ = c.Fetch(context.Background(), Key("devices"), count)
	assert.Equal(t, int32(2), calls.Load(), "both session entries dropped, devices kept")
}

func TestKey(t *testing.T) {
	assert.Equal(t, "activity", Key("activity"))
	assert.Equal(t, "activity?action=login&limit=10", Key("activity", "action=login", "limit=10"))
}
