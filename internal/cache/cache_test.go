package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestIdempotencyStore_ReserveThenRemember(t *testing.T) {
	ctx := context.Background()
	_, rdb := newRedis(t)
	store := NewIdempotencyStore(rdb)

	_, reserved, err := store.Reserve(ctx, "u1", "key-1")
	require.NoError(t, err)
	require.True(t, reserved)

	// a second request while the first is still running
	orderID, reserved, err := store.Reserve(ctx, "u1", "key-1")
	require.NoError(t, err)
	assert.False(t, reserved)
	assert.Empty(t, orderID)

	require.NoError(t, store.Remember(ctx, "u1", "key-1", "order-1"))

	orderID, reserved, err = store.Reserve(ctx, "u1", "key-1")
	require.NoError(t, err)
	assert.False(t, reserved)
	assert.Equal(t, "order-1", orderID)

	// keys are per user
	_, reserved, err = store.Reserve(ctx, "u2", "key-1")
	require.NoError(t, err)
	assert.True(t, reserved)
}

func TestIdempotencyStore_ReleaseFreesOnlyPendingKeys(t *testing.T) {
	ctx := context.Background()
	_, rdb := newRedis(t)
	store := NewIdempotencyStore(rdb)

	_, reserved, err := store.Reserve(ctx, "u1", "failed")
	require.NoError(t, err)
	require.True(t, reserved)
	require.NoError(t, store.Release(ctx, "u1", "failed"))

	_, reserved, err = store.Reserve(ctx, "u1", "failed")
	require.NoError(t, err)
	assert.True(t, reserved)

	require.NoError(t, store.Remember(ctx, "u1", "done", "order-1"))
	require.NoError(t, store.Release(ctx, "u1", "done"))

	orderID, reserved, err := store.Reserve(ctx, "u1", "done")
	require.NoError(t, err)
	assert.False(t, reserved)
	assert.Equal(t, "order-1", orderID)
}

func TestIdempotencyStore_Expires(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newRedis(t)
	store := NewIdempotencyStore(rdb)

	_, _, err := store.Reserve(ctx, "u1", "abandoned")
	require.NoError(t, err)
	mr.FastForward(reservationTTL + time.Second)
	_, reserved, err := store.Reserve(ctx, "u1", "abandoned")
	require.NoError(t, err)
	assert.True(t, reserved)

	require.NoError(t, store.Remember(ctx, "u1", "key-1", "order-1"))
	mr.FastForward(idempotencyTTL + time.Second)

	_, reserved, err = store.Reserve(ctx, "u1", "key-1")
	require.NoError(t, err)
	assert.True(t, reserved)
}

func TestRedisLocker_ExclusiveUntilReleased(t *testing.T) {
	ctx := context.Background()
	_, rdb := newRedis(t)
	locker := NewLocker(rdb)

	unlock, ok, err := locker.TryLock(ctx, "receipt:lock:o1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = locker.TryLock(ctx, "receipt:lock:o1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	unlock()

	_, ok, err = locker.TryLock(ctx, "receipt:lock:o1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLocker_StaleUnlockKeepsNewOwner(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newRedis(t)
	locker := NewLocker(rdb)

	unlock, ok, err := locker.TryLock(ctx, "k", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)
	_, ok, err = locker.TryLock(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	unlock()
	assert.True(t, mr.Exists("k"))
}

func TestLocalLocker(t *testing.T) {
	ctx := context.Background()
	locker := NewLocalLocker()

	unlock, ok, err := locker.TryLock(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, _ = locker.TryLock(ctx, "k", time.Minute)
	assert.False(t, ok)

	unlock()
	_, ok, _ = locker.TryLock(ctx, "k", time.Minute)
	assert.True(t, ok)
}

func TestLocalLocker_StaleUnlockKeepsNewOwner(t *testing.T) {
	ctx := context.Background()
	locker := NewLocalLocker()
	now := time.Unix(0, 0)
	locker.keys.now = func() time.Time { return now }

	staleUnlock, ok, err := locker.TryLock(ctx, "k", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok, err = locker.TryLock(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	staleUnlock()

	_, ok, _ = locker.TryLock(ctx, "k", time.Minute)
	assert.False(t, ok)
}

func TestTTLSet_ExpiredEntryCanBeReplaced(t *testing.T) {
	s := newTTLSet()
	now := time.Unix(0, 0)
	s.now = func() time.Time { return now }

	first, ok := s.add("k", time.Second)
	assert.True(t, ok)
	_, ok = s.add("k", time.Second)
	assert.False(t, ok)

	now = now.Add(2 * time.Second)
	second, ok := s.add("k", time.Second)
	assert.True(t, ok)
	assert.NotEqual(t, first, second)
}
