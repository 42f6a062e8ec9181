package draft

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisTimeout bounds each draft round trip.
const redisTimeout = 2 * time.Second

// RedisStore keeps drafts in Redis, for devices shared by several people.
// A zero ttl keeps entries until removed.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Set(key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		fail("set", key, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		fail("set", key, err)
	}
}

func (s *RedisStore) Get(key string, dst any) bool {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			fail("get", key, err)
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		fail("decode", key, err)
		return false
	}
	return true
}

func (s *RedisStore) Remove(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	if err := s.client.Del(ctx, key).Err(); err != nil {
		fail("remove", key, err)
	}
}
