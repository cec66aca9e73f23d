package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSetGetDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "chat.trial.t1", []byte(`[]`), 0))

	value, ok, err := store.Get(ctx, "chat.trial.t1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte(`[]`), value)

	require.NoError(t, store.Delete(ctx, "chat.trial.t1"))
	_, ok, err = store.Get(ctx, "chat.trial.t1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "telemetry.f1", []byte("x"), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, ok, err := store.Get(ctx, "telemetry.f1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	payload := []byte("original")
	require.NoError(t, store.Set(ctx, "k", payload, 0))
	payload[0] = 'X'

	value, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("original"), value)
}
