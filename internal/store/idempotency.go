// internal/store/idempotency.go
package store

import (
	"context"
	"fmt"
	"time"

	"notifyd/internal/common/database"
	commonerrors "notifyd/internal/common/errors"
)

// RedisIdempotencyStore binds idempotency keys to notification ids with
// SET NX, so concurrent submissions of the same key race safely.
type RedisIdempotencyStore struct {
	redis *database.RedisClient
	ttl   time.Duration
}

// NewRedisIdempotencyStore creates the store. ttl zero means keys never
// expire.
func NewRedisIdempotencyStore(redis *database.RedisClient, ttl time.Duration) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{redis: redis, ttl: ttl}
}

func idempotencyKey(appID, key string) string {
	return fmt.Sprintf("notifyd:idem:%s:%s", appID, key)
}

func (s *RedisIdempotencyStore) Reserve(ctx context.Context, appID, key, notificationID string) (string, bool, error) {
	k := idempotencyKey(appID, key)

	created, err := s.redis.SetNX(ctx, k, notificationID, s.ttl)
	if err != nil {
		return "", false, commonerrors.NewIdempotencyStoreFailedError(err)
	}
	if created {
		return notificationID, true, nil
	}

	existing, err := s.redis.Get(ctx, k)
	if err != nil {
		return "", false, commonerrors.NewIdempotencyStoreFailedError(err)
	}
	return existing, false, nil
}
