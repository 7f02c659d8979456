package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier/pkg/adapters/memory"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
)

func TestMemoryCache_Contract(t *testing.T) {
	cache := memory.New()
	ports.RunResponseCacheContract(t, cache)
}

func TestMemoryCache_TTL(t *testing.T) {
	ctx := context.Background()
	cache := memory.New()

	require.NoError(t, cache.Set(ctx, "k", []byte("v"), 10*time.Millisecond))

	val, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), val)

	time.Sleep(20 * time.Millisecond)

	_, err = cache.Get(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
	assert.Equal(t, 0, cache.Len(), "expired entry is pruned on read")
}

func TestMemoryCache_CopiesValues(t *testing.T) {
	ctx := context.Background()
	cache := memory.New()

	src := []byte("original")
	require.NoError(t, cache.Set(ctx, "k", src, 0))
	src[0] = 'X'

	val, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), val)

	val[0] = 'Y'
	again, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), again)
}
