package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/jobwatch/internal/testutil"
)

func TestRedisCacheRepo_ClaimLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client := testutil.SetupTestRedis(t)
	defer client.Close()

	repo := NewRedisCacheRepo(client)
	ctx := context.Background()

	t.Run("first claim wins", func(t *testing.T) {
		key := "test:sweep:lock:1"
		ttl := time.Minute

		wasSet, err := repo.SetIfNotExists(ctx, key, []byte("host-a"), ttl)
		require.NoError(t, err)
		assert.True(t, wasSet)

		exists, err := repo.Exists(ctx, key)
		require.NoError(t, err)
		assert.True(t, exists)

		actualTTL := client.TTL(ctx, key).Val()
		assert.True(t, actualTTL > 0 && actualTTL <= ttl)
	})

	t.Run("second claim loses and keeps the holder", func(t *testing.T) {
		key := "test:sweep:lock:2"

		wasSet, err := repo.SetIfNotExists(ctx, key, []byte("host-a"), time.Minute)
		require.NoError(t, err)
		require.True(t, wasSet)

		wasSet, err = repo.SetIfNotExists(ctx, key, []byte("host-b"), time.Minute)
		require.NoError(t, err)
		assert.False(t, wasSet)

		assert.Equal(t, "host-a", client.Get(ctx, key).Val())
	})

	t.Run("delete releases the claim", func(t *testing.T) {
		key := "test:sweep:lock:3"

		wasSet, err := repo.SetIfNotExists(ctx, key, []byte("host-a"), time.Minute)
		require.NoError(t, err)
		require.True(t, wasSet)

		deleted, err := repo.Delete(ctx, key)
		require.NoError(t, err)
		assert.True(t, deleted)

		exists, err := repo.Exists(ctx, key)
		require.NoError(t, err)
		assert.False(t, exists)

		// The next claimant gets in.
		wasSet, err = repo.SetIfNotExists(ctx, key, []byte("host-b"), time.Minute)
		require.NoError(t, err)
		assert.True(t, wasSet)
	})

	t.Run("delete of an absent key reports false", func(t *testing.T) {
		deleted, err := repo.Delete(ctx, "test:sweep:lock:absent")
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("non-positive ttl still expires", func(t *testing.T) {
		key := "test:sweep:lock:4"

		wasSet, err := repo.SetIfNotExists(ctx, key, []byte("host-a"), 0)
		require.NoError(t, err)
		assert.True(t, wasSet)

		actualTTL := client.TTL(ctx, key).Val()
		assert.True(t, actualTTL > 0 && actualTTL <= time.Second)
	})

	t.Run("health", func(t *testing.T) {
		assert.NoError(t, repo.Health(ctx))
	})
}

func TestRedisCacheRepo_EmptyKeyRejected(t *testing.T) {
	// Key validation happens before any Redis round trip.
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	repo := NewRedisCacheRepo(client)
	ctx := context.Background()

	_, err := repo.SetIfNotExists(ctx, "", []byte("value"), time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key cannot be empty")

	_, err = repo.Delete(ctx, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key cannot be empty")

	_, err = repo.Exists(ctx, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key cannot be empty")
}
