package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewCache(rdb, time.Minute), mr
}

type sample struct {
	Name  string  `json:"name"`
	Total float64 `json:"total"`
}

func TestCacheMiss(t *testing.T) {
	c, _ := newTestCache(t)
	var out sample
	found, err := c.Get(context.Background(), "missing", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCacheSetGet(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", sample{Name: "food", Total: -4.5}))

	var out sample
	found, err := c.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, sample{Name: "food", Total: -4.5}, out)
	assert.Equal(t, time.Minute, mr.TTL("k"))
}

func TestCacheExpires(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", sample{Name: "x"}))

	mr.FastForward(2 * time.Minute)

	var out sample
	found, err := c.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCacheGenerations(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	gen, err := c.Generation(ctx, "gen")
	require.NoError(t, err)
	assert.Zero(t, gen)

	for want := int64(1); want <= 3; want++ {
		got, err := c.Bump(ctx, "gen")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	gen, err = c.Generation(ctx, "gen")
	require.NoError(t, err)
	assert.Equal(t, int64(3), gen)
	assert.Zero(t, mr.TTL("gen"))

	require.NoError(t, mr.Set("gen", "x"))
	_, err = c.Generation(ctx, "gen")
	assert.Error(t, err)
}

func TestCacheCorruptEntry(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set("bad", "{not json"))

	var out sample
	found, err := c.Get(context.Background(), "bad", &out)
	assert.Error(t, err)
	assert.False(t, found)
}

func TestCacheUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	c := NewCache(rdb, time.Minute)
	mr.Close()

	var out sample
	_, err = c.Get(context.Background(), "k", &out)
	assert.Error(t, err)
}
