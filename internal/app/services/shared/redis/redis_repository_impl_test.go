package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisRepository(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	repo := NewRedisRepository(client)

	t.Run("Get on a missing key returns empty", func(t *testing.T) {
		v, err := repo.Get(ctx, "missing")
		require.NoError(t, err)
		assert.Empty(t, v)
	})

	t.Run("TrySetNX stores JSON once", func(t *testing.T) {
		ok, err := repo.TrySetNX(ctx, "k", "token", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.TrySetNX(ctx, "k", "other", time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)

		v, err := repo.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, `"token"`, v)
	})

	t.Run("Expire updates the TTL", func(t *testing.T) {
		require.NoError(t, repo.Expire(ctx, "k", 2*time.Minute))
		assert.Equal(t, 2*time.Minute, mr.TTL("k"))
		assert.Error(t, repo.Expire(ctx, "nope", time.Minute))
	})

	t.Run("Delete removes the key", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "k"))
		assert.False(t, mr.Exists("k"))
	})
}
