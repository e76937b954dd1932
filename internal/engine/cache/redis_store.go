// internal/engine/cache/redis_store.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"property-advisor/internal/models"
)

const redisKeyPrefix = "advisor:rec:"

// RedisStore is a Store backed by Redis, for deployments running more than
// one advisor instance against the same dataset.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, fingerprint string) ([]models.RecommendationResult, bool, error) {
	val, err := s.client.Get(ctx, redisKeyPrefix+fingerprint).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var results []models.RecommendationResult
	if err := json.Unmarshal([]byte(val), &results); err != nil {
		// A corrupt entry behaves like a miss; it gets overwritten.
		return nil, false, nil
	}
	return results, true, nil
}

func (s *RedisStore) Set(ctx context.Context, fingerprint string, results []models.RecommendationResult, ttl time.Duration) error {
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+fingerprint, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// DeleteAll removes every cached recommendation, scanning by prefix so
// unrelated keys in a shared Redis stay untouched.
func (s *RedisStore) DeleteAll(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
