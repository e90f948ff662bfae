//go:build integration

package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisinfra "github.com/MinhTruong204/movie-booking-system-sub000/internal/infrastructure/redis"
)

func TestSeatCache_GetAvailableCount(t *testing.T) {
	cache := redisinfra.NewSeatCache(testClient)
	ctx := context.Background()
	showtimeID := "test-showtime-123"

	t.Run("キャッシュミス時はErrCacheMissを返す", func(t *testing.T) {
		_, err := cache.GetAvailableCount(ctx, showtimeID)
		assert.ErrorIs(t, err, redisinfra.ErrCacheMiss)
	})

	t.Run("キャッシュにセットした値を取得できる", func(t *testing.T) {
		require.NoError(t, cache.SetAvailableCount(ctx, showtimeID, 100, 30*time.Second))

		count, err := cache.GetAvailableCount(ctx, showtimeID)
		require.NoError(t, err)
		assert.Equal(t, 100, count)
	})

	t.Run("複数の上映回をまとめて無効化できる", func(t *testing.T) {
		require.NoError(t, cache.SetAvailableCount(ctx, showtimeID, 50, 30*time.Second))
		require.NoError(t, cache.SetAvailableCount(ctx, "other-showtime", 10, 30*time.Second))

		require.NoError(t, cache.Invalidate(ctx, showtimeID, "other-showtime"))

		_, err := cache.GetAvailableCount(ctx, showtimeID)
		assert.ErrorIs(t, err, redisinfra.ErrCacheMiss)
		_, err = cache.GetAvailableCount(ctx, "other-showtime")
		assert.ErrorIs(t, err, redisinfra.ErrCacheMiss)
	})
}

func TestSeatCache_TTL(t *testing.T) {
	cache := redisinfra.NewSeatCache(testClient)
	ctx := context.Background()
	showtimeID := "test-showtime-ttl"

	require.NoError(t, cache.SetAvailableCount(ctx, showtimeID, 100, 100*time.Millisecond))

	count, err := cache.GetAvailableCount(ctx, showtimeID)
	require.NoError(t, err)
	assert.Equal(t, 100, count)

	time.Sleep(150 * time.Millisecond)
	_, err = cache.GetAvailableCount(ctx, showtimeID)
	assert.ErrorIs(t, err, redisinfra.ErrCacheMiss)
}
