package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheSetGet(t *testing.T) {
	mc := NewMemoryCache(1)
	defer mc.Stop()
	ctx := context.Background()

	_, found := mc.Get(ctx, "tags")
	assert.False(t, found)

	require.NoError(t, mc.Set(ctx, "tags", []byte(`{"count":3}`), time.Minute))

	value, found := mc.Get(ctx, "tags")
	require.True(t, found)
	assert.Equal(t, []byte(`{"count":3}`), value)

	stats := mc.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Sets)
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache(1)
	defer mc.Stop()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "short", []byte("v"), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, found := mc.Get(ctx, "short")
	assert.False(t, found, "expired entry should be a miss")
}

func TestMemoryCacheDeleteAndClear(t *testing.T) {
	mc := NewMemoryCache(1)
	defer mc.Stop()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, mc.Set(ctx, "b", []byte("2"), time.Minute))

	require.NoError(t, mc.Delete(ctx, "a"))
	_, found := mc.Get(ctx, "a")
	assert.False(t, found)

	require.NoError(t, mc.Clear(ctx))
	_, found = mc.Get(ctx, "b")
	assert.False(t, found)
	assert.Equal(t, int64(0), mc.Stats().Size)
}

func TestMemoryCacheEvictsWhenFull(t *testing.T) {
	// 1 MB limit with entries sized so the cache must evict to fit new data.
	mc := NewMemoryCache(1)
	defer mc.Stop()
	ctx := context.Background()

	large := make([]byte, 400*1024)
	for i := 0; i < 4; i++ {
		require.NoError(t, mc.Set(ctx, fmt.Sprintf("entry-%d", i), large, time.Minute))
	}

	stats := mc.Stats()
	assert.Greater(t, stats.Evictions, int64(0))
	assert.LessOrEqual(t, stats.Size, stats.MaxSize)
}
