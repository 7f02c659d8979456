package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisCache "github.com/aretw0/espalier/pkg/adapters/redis"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
)

func newTestCache(t *testing.T, opts ...redisCache.Option) (*redisCache.Cache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	cache := redisCache.NewFromClient(client, opts...)
	t.Cleanup(func() { _ = cache.Close() })
	return cache, mr
}

func TestRedisCache_Contract(t *testing.T) {
	cache, _ := newTestCache(t)
	ports.RunResponseCacheContract(t, cache)
}

func TestRedisCache_Prefix(t *testing.T) {
	cache, mr := newTestCache(t, redisCache.WithPrefix("custom:"))

	require.NoError(t, cache.Set(context.Background(), "abc", []byte("v"), 0))
	assert.True(t, mr.Exists("custom:abc"))
}

func TestRedisCache_DefaultTTL(t *testing.T) {
	cache, mr := newTestCache(t, redisCache.WithTTL(time.Minute))
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", []byte("v"), 0))

	mr.FastForward(2 * time.Minute)

	_, err := cache.Get(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestRedisCache_ExplicitTTLWins(t *testing.T) {
	cache, mr := newTestCache(t, redisCache.WithTTL(time.Minute))
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", []byte("v"), time.Hour))

	mr.FastForward(30 * time.Minute)

	val, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), val)
}
