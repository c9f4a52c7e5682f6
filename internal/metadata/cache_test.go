package metadata

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmunix/mediarr/internal/database"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCache_GetSet_RoundTrip(t *testing.T) {
	cache := NewCache(setupTestDB(t))
	ctx := context.Background()

	value := []byte(`{"id": 123, "name": "Test Show"}`)
	require.NoError(t, cache.Set(ctx, "test-key", value, time.Hour))

	got, ok := cache.Get(ctx, "test-key")
	assert.True(t, ok, "expected to find cached value")
	assert.Equal(t, value, got)

	got, ok = cache.Get(ctx, "nonexistent-key")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestCache_Get_Expired(t *testing.T) {
	cache := NewCache(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "expiring-key", []byte("v"), 50*time.Millisecond))
	_, ok := cache.Get(ctx, "expiring-key")
	assert.True(t, ok, "expected to find cached value before expiration")

	time.Sleep(100 * time.Millisecond)

	_, ok = cache.Get(ctx, "expiring-key")
	assert.False(t, ok, "expected not to find cached value after expiration")
}

func TestCache_Set_Overwrite(t *testing.T) {
	cache := NewCache(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", []byte("first"), time.Hour))
	require.NoError(t, cache.Set(ctx, "k", []byte("second"), time.Hour))

	got, ok := cache.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, []byte("second"), got)
}

func TestCache_Prune(t *testing.T) {
	cache := NewCache(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "short-ttl-1", []byte("value1"), 50*time.Millisecond))
	require.NoError(t, cache.Set(ctx, "short-ttl-2", []byte("value2"), 50*time.Millisecond))
	require.NoError(t, cache.Set(ctx, "long-ttl", []byte("value3"), time.Hour))

	time.Sleep(100 * time.Millisecond)

	pruned, err := cache.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pruned, "expected 2 expired entries to be pruned")

	got, ok := cache.Get(ctx, "long-ttl")
	assert.True(t, ok)
	assert.Equal(t, []byte("value3"), got)
}

func TestCached(t *testing.T) {
	cache := NewCache(setupTestDB(t))
	ctx := context.Background()

	calls := 0
	fetch := func() ([]ShowMatch, error) {
		calls++
		return []ShowMatch{{ProviderID: "1", Name: "Show"}}, nil
	}

	for range 3 {
		got, err := cached(ctx, cache, testLogger(), "k", time.Hour, fetch)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Show", got[0].Name)
	}
	assert.Equal(t, 1, calls)

	// Errors are not cached.
	_, err := cached(ctx, cache, testLogger(), "failing", time.Hour, func() ([]ShowMatch, error) {
		return nil, errors.New("provider down")
	})
	assert.Error(t, err)
	_, ok := cache.Get(ctx, "failing")
	assert.False(t, ok)

	// A nil cache always fetches.
	_, err = cached(ctx, nil, testLogger(), "k", time.Hour, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}
