package redis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	idempotencyKeyPrefix = "idempotency:"
	reservationTTL       = time.Minute
)

// StoredResponse is a replayable HTTP response. A zero StatusCode marks a
// request that is still in flight.
type StoredResponse struct {
	StatusCode int         `json:"status_code"`
	Body       []byte      `json:"body"`
	Headers    http.Header `json:"headers"`
}

// Pending reports whether the original request has not finished yet.
func (r *StoredResponse) Pending() bool {
	return r.StatusCode == 0
}

// IdempotencyStore keeps responses of POST/PATCH requests keyed by the
// client supplied Idempotency-Key.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Lookup returns the stored response for key, or nil when there is none.
func (s *IdempotencyStore) Lookup(ctx context.Context, key string) (*StoredResponse, error) {
	data, err := s.client.Get(ctx, idempotencyKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var resp StoredResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Reserve marks key as in flight. It reports false when another request
// already holds the key.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string) (bool, error) {
	data, err := json.Marshal(StoredResponse{})
	if err != nil {
		return false, err
	}
	return s.client.SetNX(ctx, idempotencyKeyPrefix+key, data, reservationTTL).Result()
}

// Save stores the final response for key.
func (s *IdempotencyStore) Save(ctx context.Context, key string, resp StoredResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, idempotencyKeyPrefix+key, data, s.ttl).Err()
}

// Release drops a reservation so the request can be retried.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, idempotencyKeyPrefix+key).Err()
}
