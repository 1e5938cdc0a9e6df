package common

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"transvalia/dispatch/internal/logging"
)

// RedisCacheService implements CacheInterface on Redis, for deployments where
// several backend instances should share the route-template cache.
//
// Values round-trip through JSON, so readers get generic decoded values back;
// callers fall through to the store when the shape does not match.
type RedisCacheService struct {
	client *redis.Client
	ctx    context.Context
}

var _ CacheInterface = (*RedisCacheService)(nil)

// NewRedisCacheService connects to the given address (host:port) and verifies
// the connection before returning.
func NewRedisCacheService(addr string) (*RedisCacheService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}

	return &RedisCacheService{client: client, ctx: ctx}, nil
}

func (r *RedisCacheService) Set(key string, value interface{}, duration time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		logging.Warn("redis cache: marshal failed", "key", key, "error", err.Error())
		return
	}
	if err := r.client.Set(r.ctx, key, data, duration).Err(); err != nil {
		logging.Warn("redis cache: set failed", "key", key, "error", err.Error())
	}
}

func (r *RedisCacheService) Get(key string) (interface{}, bool) {
	data, err := r.client.Get(r.ctx, key).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logging.Warn("redis cache: get failed", "key", key, "error", err.Error())
		return nil, false
	}

	var result interface{}
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		logging.Warn("redis cache: unmarshal failed", "key", key, "error", err.Error())
		return nil, false
	}
	return result, true
}

func (r *RedisCacheService) Delete(key string) {
	if err := r.client.Del(r.ctx, key).Err(); err != nil {
		logging.Warn("redis cache: delete failed", "key", key, "error", err.Error())
	}
}

func (r *RedisCacheService) GetOrSet(
	key string,
	duration time.Duration,
	loader func() (any, error),
) (interface{}, error) {
	if val, found := r.Get(key); found {
		return val, nil
	}

	val, err := loader()
	if err != nil {
		return nil, err
	}

	r.Set(key, val, duration)
	return val, nil
}

func (r *RedisCacheService) Close() error {
	return r.client.Close()
}
