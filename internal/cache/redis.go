// internal/cache/redis.go

package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// redisStore backs the cache with Redis.
type redisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing Redis client as a cache Store.
func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

func (s *redisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	s.client.Set(ctx, key, value, ttl)
}

func (s *redisStore) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	s.client.Del(ctx, keys...)
}
