package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"notifyd/internal/common/database"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisIdempotencyStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisIdempotencyStore(database.NewRedisFromClient(client), ttl), mr
}

func TestRedisIdempotencyReserve(t *testing.T) {
	s, _ := newRedisStore(t, 0)
	ctx := context.Background()

	id, created, err := s.Reserve(ctx, "app-1", "key-1", "n-1")
	assert.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "n-1", id)

	// same key returns the original notification id
	id, created, err = s.Reserve(ctx, "app-1", "key-1", "n-2")
	assert.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "n-1", id)
}

func TestRedisIdempotencyKeysScopedByApp(t *testing.T) {
	s, _ := newRedisStore(t, 0)
	ctx := context.Background()

	_, created, err := s.Reserve(ctx, "app-1", "key-1", "n-1")
	assert.NoError(t, err)
	assert.True(t, created)

	id, created, err := s.Reserve(ctx, "app-2", "key-1", "n-2")
	assert.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "n-2", id)
}

func TestRedisIdempotencyTTL(t *testing.T) {
	s, mr := newRedisStore(t, time.Minute)
	ctx := context.Background()

	_, _, err := s.Reserve(ctx, "app-1", "key-1", "n-1")
	assert.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	id, created, err := s.Reserve(ctx, "app-1", "key-1", "n-2")
	assert.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "n-2", id)
}

func TestMemoryIdempotencyStore(t *testing.T) {
	s := NewMemoryIdempotencyStore()
	ctx := context.Background()

	id, created, err := s.Reserve(ctx, "app-1", "key-1", "n-1")
	assert.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "n-1", id)

	id, created, err = s.Reserve(ctx, "app-1", "key-1", "n-2")
	assert.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "n-1", id)
}
