package redislock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
)

func newLocker(t *testing.T, ttl time.Duration) (*Locker, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return New(client, ttl, zerolog.Nop()), mr
}

func TestLocker(t *testing.T) {
	ctx := context.Background()

	t.Run("ExclusiveUntilReleased", func(t *testing.T) {
		l, mr := newLocker(t, 200*time.Millisecond)

		release, err := l.Lock(ctx, "salon:1:2025-06-02")
		require.NoError(t, err)
		assert.True(t, mr.Exists(keyPrefix+"salon:1:2025-06-02"))

		_, err = l.Lock(ctx, "salon:1:2025-06-02")
		assert.True(t, httperr.IsBusiness(err, "resource_busy"))

		release()
		assert.False(t, mr.Exists(keyPrefix+"salon:1:2025-06-02"))

		release2, err := l.Lock(ctx, "salon:1:2025-06-02")
		require.NoError(t, err)
		release2()
	})

	t.Run("ReleaseKeepsForeignLock", func(t *testing.T) {
		l, mr := newLocker(t, time.Second)

		release, err := l.Lock(ctx, "salon:3:2025-06-02")
		require.NoError(t, err)

		// simulate expiry and another holder taking over
		require.NoError(t, mr.Set(keyPrefix+"salon:3:2025-06-02", "someone-else"))
		release()

		got, err := mr.Get(keyPrefix + "salon:3:2025-06-02")
		require.NoError(t, err)
		assert.Equal(t, "someone-else", got)
	})

	t.Run("DifferentKeysDoNotBlock", func(t *testing.T) {
		l, _ := newLocker(t, time.Second)

		r1, err := l.Lock(ctx, "salon:1:2025-06-02")
		require.NoError(t, err)
		r2, err := l.Lock(ctx, "salon:2:2025-06-02")
		require.NoError(t, err)
		r1()
		r2()
	})
}
