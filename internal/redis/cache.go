package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"shuttle/internal/domain"
)

const tariffCacheKey = "cache:tariff"

// CacheStore handles entity caching in Redis.
type CacheStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client, ttl time.Duration) *CacheStore {
	return &CacheStore{client: client, ttl: ttl}
}

// GetTariff retrieves the tariff from cache. It returns nil on a miss.
func (s *CacheStore) GetTariff(ctx context.Context) (*domain.Tariff, error) {
	data, err := s.client.Get(ctx, tariffCacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var tariff domain.Tariff
	if err := json.Unmarshal(data, &tariff); err != nil {
		return nil, err
	}
	return &tariff, nil
}

// SetTariff stores the tariff in cache.
func (s *CacheStore) SetTariff(ctx context.Context, tariff domain.Tariff) error {
	data, err := json.Marshal(tariff)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, tariffCacheKey, data, s.ttl).Err()
}

// InvalidateTariff removes the tariff from cache.
func (s *CacheStore) InvalidateTariff(ctx context.Context) error {
	return s.client.Del(ctx, tariffCacheKey).Err()
}
