package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotKey(t *testing.T) {
	staffID := int64(5)
	assert.Equal(t, "slots:1:2025-06-04:5:30", SlotKey(1, "2025-06-04", &staffID, 30))
	assert.Equal(t, "slots:1:2025-06-04:any:45", SlotKey(1, "2025-06-04", nil, 45))
}

func TestRedisSlotCache(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()

	cache := NewRedisSlotCache(client, time.Hour)
	ctx := context.Background()

	t.Run("MissThenHit", func(t *testing.T) {
		key := SlotKey(1, "2025-06-04", nil, 30)

		_, ok, err := cache.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, cache.Set(ctx, key, []string{"09:00", "09:30"}))

		labels, ok, err := cache.Get(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []string{"09:00", "09:30"}, labels)
	})

	t.Run("EmptyListIsAHit", func(t *testing.T) {
		key := SlotKey(1, "2025-06-05", nil, 30)
		require.NoError(t, cache.Set(ctx, key, nil))

		labels, ok, err := cache.Get(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, labels)
	})

	t.Run("InvalidateDate", func(t *testing.T) {
		staffID := int64(2)
		keep := SlotKey(1, "2025-06-07", nil, 30)
		drop1 := SlotKey(1, "2025-06-06", nil, 30)
		drop2 := SlotKey(1, "2025-06-06", &staffID, 45)

		require.NoError(t, cache.Set(ctx, keep, []string{"10:00"}))
		require.NoError(t, cache.Set(ctx, drop1, []string{"11:00"}))
		require.NoError(t, cache.Set(ctx, drop2, []string{"12:00"}))

		require.NoError(t, cache.InvalidateDate(ctx, 1, "2025-06-06"))

		_, ok, err := cache.Get(ctx, drop1)
		require.NoError(t, err)
		assert.False(t, ok)
		_, ok, err = cache.Get(ctx, drop2)
		require.NoError(t, err)
		assert.False(t, ok)

		_, ok, err = cache.Get(ctx, keep)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestMemorySlotCache(t *testing.T) {
	ctx := context.Background()
	cache := NewMemorySlotCache(50 * time.Millisecond)

	key := SlotKey(3, "2025-06-04", nil, 30)
	require.NoError(t, cache.Set(ctx, key, []string{"09:00"}))

	labels, ok, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"09:00"}, labels)

	time.Sleep(80 * time.Millisecond)
	_, ok, err = cache.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok, "entry should expire after ttl")
}

func TestMemorySlotCacheInvalidateDate(t *testing.T) {
	ctx := context.Background()
	cache := NewMemorySlotCache(time.Hour)

	keep := SlotKey(3, "2025-06-05", nil, 30)
	drop := SlotKey(3, "2025-06-04", nil, 30)
	require.NoError(t, cache.Set(ctx, keep, []string{"09:00"}))
	require.NoError(t, cache.Set(ctx, drop, []string{"10:00"}))

	require.NoError(t, cache.InvalidateDate(ctx, 3, "2025-06-04"))

	_, ok, _ := cache.Get(ctx, drop)
	assert.False(t, ok)
	_, ok, _ = cache.Get(ctx, keep)
	assert.True(t, ok)
}
