// Package kvtest общий набор проверок контракта KVStore для всех backend'ов.
package kvtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StorefrontPlatform/services/storefront-service/internal/repository"
)

// Factory создает пустое хранилище для одного подтеста
type Factory func(t *testing.T) repository.KVStore

// Run прогоняет контракт KVStore и, если backend его поддерживает, ConditionalStore
func Run(t *testing.T, newStore Factory) {
	t.Run("GetMissing", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Get(context.Background(), "absent")
		assert.ErrorIs(t, err, repository.ErrKeyNotFound)
	})

	t.Run("SetGetOverwrite", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.Set(ctx, "config", []byte(`{"version":1}`)))
		got, err := store.Get(ctx, "config")
		require.NoError(t, err)
		assert.JSONEq(t, `{"version":1}`, string(got))

		require.NoError(t, store.Set(ctx, "config", []byte(`{"version":2}`)))
		got, err = store.Get(ctx, "config")
		require.NoError(t, err)
		assert.JSONEq(t, `{"version":2}`, string(got))
	})

	t.Run("DeleteIdempotent", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.Set(ctx, "orders/a", []byte(`{}`)))
		require.NoError(t, store.Delete(ctx, "orders/a"))
		require.NoError(t, store.Delete(ctx, "orders/a"))
		_, err := store.Get(ctx, "orders/a")
		assert.ErrorIs(t, err, repository.ErrKeyNotFound)
	})

	t.Run("ListPrefixOrdered", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		for _, id := range []string{"c", "a", "b"} {
			require.NoError(t, store.Set(ctx, "orders/"+id, []byte(`{}`)))
		}
		require.NoError(t, store.Set(ctx, "config", []byte(`{}`)))

		keys, err := store.List(ctx, "orders/", 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"orders/a", "orders/b", "orders/c"}, keys)

		keys, err = store.List(ctx, "orders/", 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"orders/a", "orders/b"}, keys)

		keys, err = store.List(ctx, "missing/", 0)
		require.NoError(t, err)
		assert.Empty(t, keys)
	})

	t.Run("ListManyKeys", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		for i := 0; i < 120; i++ {
			require.NoError(t, store.Set(ctx, fmt.Sprintf("orders/%03d", i), []byte(`{}`)))
		}
		keys, err := store.List(ctx, "orders/", 0)
		require.NoError(t, err)
		require.Len(t, keys, 120)
		assert.Equal(t, "orders/000", keys[0])
		assert.Equal(t, "orders/119", keys[119])
	})

	t.Run("StrongConsistency", func(t *testing.T) {
		store := newStore(t)
		assert.Equal(t, repository.ConsistencyStrong, store.Consistency())
	})

	t.Run("CompareAndSwap", func(t *testing.T) {
		store := newStore(t)
		cas, ok := store.(repository.ConditionalStore)
		if !ok {
			t.Skip("backend does not support conditional writes")
		}
		ctx := context.Background()

		swapped, err := cas.CompareAndSwap(ctx, "config", nil, []byte(`{"version":1}`))
		require.NoError(t, err)
		assert.True(t, swapped)

		// Ключ уже существует
		swapped, err = cas.CompareAndSwap(ctx, "config", nil, []byte(`{"version":9}`))
		require.NoError(t, err)
		assert.False(t, swapped)

		swapped, err = cas.CompareAndSwap(ctx, "config", []byte(`{"version":1}`), []byte(`{"version":2}`))
		require.NoError(t, err)
		assert.True(t, swapped)

		// Устаревший снимок
		swapped, err = cas.CompareAndSwap(ctx, "config", []byte(`{"version":1}`), []byte(`{"version":3}`))
		require.NoError(t, err)
		assert.False(t, swapped)

		got, err := store.Get(ctx, "config")
		require.NoError(t, err)
		assert.Equal(t, `{"version":2}`, string(got))

		swapped, err = cas.CompareAndSwap(ctx, "absent", []byte(`{}`), []byte(`{"x":1}`))
		require.NoError(t, err)
		assert.False(t, swapped)
	})
}
