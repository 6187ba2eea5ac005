package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryCheckoutStore_Get(t *testing.T) {
	store := NewInMemoryCheckoutStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("returns miss for unknown key", func(t *testing.T) {
		value, found, err := store.Get(ctx, "unknown-key")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, value)
	})

	t.Run("returns stored value", func(t *testing.T) {
		err := store.Set(ctx, "key-1", []byte(`{"sale_number":"POS-20260829-a1b2c3d4"}`), 1*time.Hour)
		require.NoError(t, err)

		value, found, err := store.Get(ctx, "key-1")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []byte(`{"sale_number":"POS-20260829-a1b2c3d4"}`), value)
	})

	t.Run("treats expired value as miss", func(t *testing.T) {
		err := store.Set(ctx, "key-2", []byte("result"), 10*time.Millisecond)
		require.NoError(t, err)

		time.Sleep(20 * time.Millisecond)

		_, found, err := store.Get(ctx, "key-2")
		require.NoError(t, err)
		assert.False(t, found, "expired entry should not be returned")
	})
}

func TestInMemoryCheckoutStore_Set(t *testing.T) {
	store := NewInMemoryCheckoutStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("overwrites existing value", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "key-1", []byte("first"), 1*time.Hour))
		require.NoError(t, store.Set(ctx, "key-1", []byte("second"), 1*time.Hour))

		value, found, err := store.Get(ctx, "key-1")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []byte("second"), value)
	})
}

func TestInMemoryCheckoutStore_Cleanup(t *testing.T) {
	store := NewInMemoryCheckoutStore()
	defer store.Close()

	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "stale", []byte("x"), 1*time.Millisecond))
	require.NoError(t, store.Set(ctx, "fresh", []byte("y"), 1*time.Hour))

	time.Sleep(5 * time.Millisecond)
	store.cleanup()

	assert.Equal(t, 1, store.Size())
}

func TestInMemoryCheckoutStore_Close(t *testing.T) {
	store := NewInMemoryCheckoutStore()

	require.NoError(t, store.Close())
	// Second close is a no-op
	require.NoError(t, store.Close())
}
