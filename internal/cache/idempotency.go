// Package cache holds the Redis-backed idempotency store for payment
// initialization.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "gasdepot:idem:"

// DefaultTTL is how long a stored response is replayed.
const DefaultTTL = 24 * time.Hour

// IdempotencyStore remembers responses by client-supplied key. A nil store
// remembers nothing.
type IdempotencyStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewIdempotencyStore(rdb *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &IdempotencyStore{rdb: rdb, ttl: ttl}
}

// Connect opens a Redis client and checks it answers.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// Get returns the stored body for key; ok is false on a miss.
func (s *IdempotencyStore) Get(ctx context.Context, scope, key string) (body []byte, ok bool, err error) {
	if s == nil || key == "" {
		return nil, false, nil
	}
	body, err = s.rdb.Get(ctx, keyPrefix+scope+":"+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return body, true, nil
}

// Put stores body under key unless one is already stored; stored reports
// whether this call won.
func (s *IdempotencyStore) Put(ctx context.Context, scope, key string, body []byte) (stored bool, err error) {
	if s == nil || key == "" {
		return false, nil
	}
	return s.rdb.SetNX(ctx, keyPrefix+scope+":"+key, body, s.ttl).Result()
}
