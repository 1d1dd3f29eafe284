package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)

	port, err := strconv.Atoi(srv.Port())
	require.NoError(t, err)

	rc, err := NewRedisCache(
		WithRedisHost(srv.Host()),
		WithRedisPort(port),
		WithRedisPrefix("test"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })

	return rc, srv
}

func TestRedisCache_SetGetString(t *testing.T) {
	rc, srv := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, rc.Set(ctx, "greeting", "hello", 0))

	var got string
	require.NoError(t, rc.Get(ctx, "greeting", &got))
	assert.Equal(t, "hello", got)

	// Strings are stored raw, not JSON encoded.
	raw, err := srv.Get("test:greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello", raw)
}

func TestRedisCache_SetGetStruct(t *testing.T) {
	rc, _ := newTestRedisCache(t)
	ctx := context.Background()

	type quote struct {
		Symbol string  `json:"symbol"`
		Price  float64 `json:"price"`
	}

	require.NoError(t, rc.Set(ctx, "quote:MSFT", quote{Symbol: "MSFT", Price: 412.5}, time.Minute))

	var got quote
	require.NoError(t, rc.Get(ctx, "quote:MSFT", &got))
	assert.Equal(t, quote{Symbol: "MSFT", Price: 412.5}, got)
}

func TestRedisCache_MissAndExpiry(t *testing.T) {
	rc, srv := newTestRedisCache(t)
	ctx := context.Background()

	var got string
	assert.ErrorIs(t, rc.Get(ctx, "absent", &got), ErrCacheMiss)

	require.NoError(t, rc.Set(ctx, "short", "v", time.Second))
	srv.FastForward(2 * time.Second)
	assert.ErrorIs(t, rc.Get(ctx, "short", &got), ErrCacheMiss)
}

func TestRedisCache_DeleteAndExists(t *testing.T) {
	rc, _ := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, rc.Set(ctx, "a", "1", 0))
	require.NoError(t, rc.Set(ctx, "b", "2", 0))

	ok, err := rc.Exists(ctx, "a", "b")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, rc.Delete(ctx, "a", "b"))

	ok, err = rc.Exists(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLayeredCache_WriteThrough(t *testing.T) {
	rc, srv := newTestRedisCache(t)
	lc := NewLayeredCache(rc, WithLayeredMemorySize(8))
	ctx := context.Background()

	require.NoError(t, lc.Set(ctx, "k", "value", 0))

	// Present in both layers.
	var fromMem string
	require.NoError(t, lc.memCache.Get(ctx, "k", &fromMem))
	assert.Equal(t, "value", fromMem)
	assert.True(t, srv.Exists("test:k"))
}

func TestLayeredCache_RedisFallbackBackfillsMemory(t *testing.T) {
	rc, _ := newTestRedisCache(t)
	lc := NewLayeredCache(rc)
	ctx := context.Background()

	// Seed Redis only, simulating a fresh process with a warm L2.
	require.NoError(t, rc.Set(ctx, "symbol", "GOOG", 0))

	var got string
	require.NoError(t, lc.Get(ctx, "symbol", &got))
	assert.Equal(t, "GOOG", got)

	// The read promoted the entry into memory.
	var fromMem string
	require.NoError(t, lc.memCache.Get(ctx, "symbol", &fromMem))
	assert.Equal(t, "GOOG", fromMem)
}

func TestLayeredCache_DeleteClearsBothLayers(t *testing.T) {
	rc, srv := newTestRedisCache(t)
	lc := NewLayeredCache(rc)
	ctx := context.Background()

	require.NoError(t, lc.Set(ctx, "k", "v", 0))
	require.NoError(t, lc.Delete(ctx, "k"))

	var got string
	assert.ErrorIs(t, lc.memCache.Get(ctx, "k", &got), ErrCacheMiss)
	assert.False(t, srv.Exists("test:k"))

	ok, err := lc.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
