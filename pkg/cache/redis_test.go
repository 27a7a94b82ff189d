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

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisCacheWithClient(client, DefaultRedisPrefix)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestNewRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)

	c, err := NewRedisCache(context.Background(), RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, DefaultRedisPrefix, c.prefix)
}

func TestNewRedisCacheConnectionError(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisCache(context.Background(), RedisConfig{Addr: addr})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestRedisCacheSetAndGet(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	data, hit, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []byte("v"), data)
	assert.True(t, mr.Exists(DefaultRedisPrefix+"k"))
}

func TestRedisCacheMiss(t *testing.T) {
	c, _ := setupTestRedis(t)

	data, hit, err := c.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, data)
}

func TestRedisCacheTTL(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	mr.FastForward(2 * time.Minute)

	_, hit, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedisCacheDeleteAndClear(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("other:key", "kept"))
	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, c.Set(ctx, k, []byte(k), 0))
	}

	require.NoError(t, c.Delete(ctx, "a"))
	_, hit, _ := c.Get(ctx, "a")
	assert.False(t, hit)

	require.NoError(t, c.Clear(ctx))
	assert.False(t, mr.Exists(DefaultRedisPrefix+"b"))
	assert.True(t, mr.Exists("other:key"), "Clear must only touch prefixed keys")
}

func TestRedisCacheErrorsAreRetryable(t *testing.T) {
	c, mr := setupTestRedis(t)
	mr.SetError("server down")

	_, _, err := c.Get(context.Background(), "k")
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
	assert.ErrorIs(t, err, ErrNetwork)
}
