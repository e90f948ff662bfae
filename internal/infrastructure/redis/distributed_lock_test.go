//go:build integration

package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisinfra "github.com/MinhTruong204/movie-booking-system-sub000/internal/infrastructure/redis"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/pkg/metrics"
)

func TestLockManager_AcquireLock(t *testing.T) {
	ctx := context.Background()
	manager := redisinfra.NewLockManager(testClient, nil)

	t.Run("ロックを取得できる", func(t *testing.T) {
		lock, err := manager.AcquireLock(ctx, "test-key-1", 5*time.Second)
		require.NoError(t, err)
		require.NotNil(t, lock)
		defer lock.Release(ctx)
	})

	t.Run("同じキーのロックは取得できない", func(t *testing.T) {
		lock1, err := manager.AcquireLock(ctx, "test-key-2", 5*time.Second)
		require.NoError(t, err)
		defer lock1.Release(ctx)

		lock2, err := manager.AcquireLock(ctx, "test-key-2", 5*time.Second)
		assert.ErrorIs(t, err, redisinfra.ErrLockNotAcquired)
		assert.Nil(t, lock2)
	})

	t.Run("解放後は再取得できる", func(t *testing.T) {
		lock1, err := manager.AcquireLock(ctx, "test-key-3", 5*time.Second)
		require.NoError(t, err)
		require.NoError(t, lock1.Release(ctx))

		lock2, err := manager.AcquireLock(ctx, "test-key-3", 5*time.Second)
		require.NoError(t, err)
		defer lock2.Release(ctx)
	})

	t.Run("ロックを延長できる", func(t *testing.T) {
		lock, err := manager.AcquireLock(ctx, "test-key-extend", 1*time.Second)
		require.NoError(t, err)
		defer lock.Release(ctx)

		require.NoError(t, lock.Extend(ctx, 5*time.Second))

		_, err = manager.AcquireLock(ctx, "test-key-extend", 1*time.Second)
		assert.ErrorIs(t, err, redisinfra.ErrLockNotAcquired)
	})

	t.Run("解放後は延長できない", func(t *testing.T) {
		lock, err := manager.AcquireLock(ctx, "test-key-extend-after-release", 1*time.Second)
		require.NoError(t, err)
		require.NoError(t, lock.Release(ctx))

		assert.ErrorIs(t, lock.Extend(ctx, 5*time.Second), redisinfra.ErrLockNotOwned)
	})
}

func TestLockManager_TryLock(t *testing.T) {
	ctx := context.Background()
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	manager := redisinfra.NewLockManager(testClient, m)

	unlock, acquired, err := manager.TryLock(ctx, "reaper:test", 5*time.Second)
	require.NoError(t, err)
	require.True(t, acquired)

	_, acquired, err = manager.TryLock(ctx, "reaper:test", 5*time.Second)
	require.NoError(t, err)
	assert.False(t, acquired)

	require.NoError(t, unlock(ctx))

	_, acquired, err = manager.TryLock(ctx, "reaper:test", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, acquired)

	assert.Equal(t, 2, testutil.CollectAndCount(m.DistributedLockDuration))
}

func TestLockManager_TryLockKeepsLockAlive(t *testing.T) {
	ctx := context.Background()
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	manager := redisinfra.NewLockManager(testClient, m)

	unlock, acquired, err := manager.TryLock(ctx, "reaper:slow", 300*time.Millisecond)
	require.NoError(t, err)
	require.True(t, acquired)

	// ttl を超えて処理が続いても延長されている
	time.Sleep(900 * time.Millisecond)
	_, acquired, err = manager.TryLock(ctx, "reaper:slow", 300*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, acquired)
	// acquire の success / not_acquired と extend の success
	assert.Equal(t, 3, testutil.CollectAndCount(m.DistributedLockDuration))

	require.NoError(t, unlock(ctx))
	exists, err := testClient.Exists(ctx, "lock:reaper:slow").Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}
