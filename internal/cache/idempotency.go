package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	idempotencyTTL = 24 * time.Hour
	// a reservation outlives any checkout transaction
	reservationTTL = time.Minute
	pendingMarker  = "pending"
)

type RedisIdempotencyStore struct {
	rdb            redis.UniversalClient
	ttl            time.Duration
	reservationTTL time.Duration
}

func NewIdempotencyStore(rdb redis.UniversalClient) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{rdb: rdb, ttl: idempotencyTTL, reservationTTL: reservationTTL}
}

func idempotencyKey(userID, key string) string {
	return fmt.Sprintf("idempotency:checkout:%s:%s", userID, key)
}

// Reserve claims the key for a new checkout. When the key is taken it returns
// the order it produced, or "" while that checkout is still running.
func (s *RedisIdempotencyStore) Reserve(ctx context.Context, userID, key string) (string, bool, error) {
	k := idempotencyKey(userID, key)

	ok, err := s.rdb.SetNX(ctx, k, pendingMarker, s.reservationTTL).Result()
	if err != nil {
		return "", false, fmt.Errorf("redis reserve idempotency key: %w", err)
	}
	if ok {
		return "", true, nil
	}

	orderID, err := s.rdb.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) || orderID == pendingMarker {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get idempotency key: %w", err)
	}
	return orderID, false, nil
}

// Remember replaces the reservation with the committed order id.
func (s *RedisIdempotencyStore) Remember(ctx context.Context, userID, key, orderID string) error {
	if err := s.rdb.Set(ctx, idempotencyKey(userID, key), orderID, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set idempotency key: %w", err)
	}
	return nil
}

// Release drops a reservation whose checkout failed. A remembered order is kept.
func (s *RedisIdempotencyStore) Release(ctx context.Context, userID, key string) error {
	err := releaseScript.Run(ctx, s.rdb, []string{idempotencyKey(userID, key)}, pendingMarker).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis release idempotency key: %w", err)
	}
	return nil
}
