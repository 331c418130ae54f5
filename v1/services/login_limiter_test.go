package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisLoginLimiter) {
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(&RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisLoginLimiter(client, 3, 15*time.Minute)
}

func TestRedisLoginLimiter(t *testing.T) {
	ctx := context.Background()

	t.Run("ThrottlesAfterMaxFailures", func(t *testing.T) {
		mr, limiter := setupTestRedis(t)

		for i := 0; i < 3; i++ {
			allowed, err := limiter.Allow(ctx, "a@example.com")
			require.NoError(t, err)
			assert.True(t, allowed)
			require.NoError(t, limiter.RecordFailure(ctx, "a@example.com"))
		}

		allowed, err := limiter.Allow(ctx, "A@Example.com")
		require.NoError(t, err)
		assert.False(t, allowed, "keys are case-insensitive")

		count, err := mr.Get(loginFailureKeyPrefix + "a@example.com")
		require.NoError(t, err)
		assert.Equal(t, "3", count)
		assert.Equal(t, 15*time.Minute, mr.TTL(loginFailureKeyPrefix+"a@example.com"))

		allowed, err = limiter.Allow(ctx, "b@example.com")
		require.NoError(t, err)
		assert.True(t, allowed, "other keys are unaffected")
	})

	t.Run("WindowExpires", func(t *testing.T) {
		mr, limiter := setupTestRedis(t)
		for i := 0; i < 3; i++ {
			require.NoError(t, limiter.RecordFailure(ctx, "a@example.com"))
		}

		mr.FastForward(16 * time.Minute)
		allowed, err := limiter.Allow(ctx, "a@example.com")
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("ResetClearsCounter", func(t *testing.T) {
		mr, limiter := setupTestRedis(t)
		require.NoError(t, limiter.RecordFailure(ctx, "a@example.com"))
		require.NoError(t, limiter.Reset(ctx, "a@example.com"))
		assert.False(t, mr.Exists(loginFailureKeyPrefix+"a@example.com"))
	})

	t.Run("BackendDownReturnsError", func(t *testing.T) {
		mr, limiter := setupTestRedis(t)
		mr.Close()

		_, err := limiter.Allow(ctx, "a@example.com")
		assert.Error(t, err)
		assert.Error(t, limiter.RecordFailure(ctx, "a@example.com"))
	})
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	_, err := NewRedisClient(&RedisConfig{Addr: "127.0.0.1:1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping failed")
}
