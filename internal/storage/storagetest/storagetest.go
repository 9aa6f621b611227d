// storagetest — общий набор проверок контракта storage.Store для всех реализаций.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/game-catalog/internal/storage"
)

// Run прогоняет контракт storage.Store на хранилище, которое создаёт newStore.
// newStore вызывается заново для каждого подтеста.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	t.Helper()

	t.Run("get_missing_returns_not_found", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(context.Background(), "missing")
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("set_then_get", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Set(ctx, "searchHistory", []byte(`["a","b"]`)))
		got, err := s.Get(ctx, "searchHistory")
		require.NoError(t, err)
		require.Equal(t, `["a","b"]`, string(got))
	})

	t.Run("set_overwrites", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Set(ctx, "k", []byte("v1")))
		require.NoError(t, s.Set(ctx, "k", []byte("v2")))
		got, err := s.Get(ctx, "k")
		require.NoError(t, err)
		require.Equal(t, "v2", string(got))
	})

	t.Run("delete", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Set(ctx, "k", []byte("v")))
		require.NoError(t, s.Delete(ctx, "k"))
		_, err := s.Get(ctx, "k")
		require.ErrorIs(t, err, storage.ErrNotFound)

		// повторное удаление — не ошибка.
		require.NoError(t, s.Delete(ctx, "k"))
	})

	t.Run("keys_are_isolated", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Set(ctx, "a", []byte("1")))
		require.NoError(t, s.Set(ctx, "b", []byte("2")))
		require.NoError(t, s.Delete(ctx, "a"))

		got, err := s.Get(ctx, "b")
		require.NoError(t, err)
		require.Equal(t, "2", string(got))
	})

	t.Run("concurrent_writers_last_write_wins", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				assert.NoError(t, s.Set(ctx, "k", []byte(fmt.Sprintf("v%02d", i))))
			}(i)
		}
		wg.Wait()

		got, err := s.Get(ctx, "k")
		require.NoError(t, err)
		require.Len(t, got, 3, "значение целиком от одного из писателей")
	})
}
