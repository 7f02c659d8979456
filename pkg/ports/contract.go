package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier/pkg/domain"
)

// RunResponseCacheContract runs a suite of tests to verify that a
// ResponseCache implementation adheres to the defined interface contract.
func RunResponseCacheContract(t *testing.T, cache ResponseCache) {
	ctx := context.Background()
	key := "contract-test-" + time.Now().Format("20060102150405")

	t.Run("Set and Get", func(t *testing.T) {
		err := cache.Set(ctx, key, []byte(`{"tests":1}`), 0)
		require.NoError(t, err, "Set should not return error")

		val, err := cache.Get(ctx, key)
		require.NoError(t, err, "Get should not return error")
		assert.Equal(t, []byte(`{"tests":1}`), val)
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := cache.Get(ctx, "non-existent-"+key)
		assert.ErrorIs(t, err, domain.ErrCacheMiss)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, key, []byte("first"), 0))
		require.NoError(t, cache.Set(ctx, key, []byte("second"), 0))

		val, err := cache.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, []byte("second"), val)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, key, []byte("to-delete"), 0))

		err := cache.Delete(ctx, key)
		require.NoError(t, err, "Delete should not return error")

		_, err = cache.Get(ctx, key)
		assert.ErrorIs(t, err, domain.ErrCacheMiss, "Get after Delete should return ErrCacheMiss")
	})

	t.Run("Delete Non-Existent", func(t *testing.T) {
		err := cache.Delete(ctx, "non-existent-"+key)
		assert.NoError(t, err)
	})
}
