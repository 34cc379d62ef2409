package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockNotAcquired is returned when the lock stays held past the wait deadline.
var ErrLockNotAcquired = errors.New("lock not acquired")

const lockRetryInterval = 50 * time.Millisecond

// releaseScript deletes the key only if it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// Lock is a held lock. Release it exactly once.
type Lock struct {
	store *LockStore
	key   string
	token string
}

// TryAcquire attempts to take the named lock once.
// Returns nil, nil if the lock is already held.
func (s *LockStore) TryAcquire(ctx context.Context, name string, ttl time.Duration) (*Lock, error) {
	key := fmt.Sprintf("lock:%s", name)
	token := uuid.New().String()

	ok, err := s.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	return &Lock{store: s, key: key, token: token}, nil
}

// Acquire retries TryAcquire until it succeeds, wait elapses, or ctx ends.
func (s *LockStore) Acquire(ctx context.Context, name string, ttl, wait time.Duration) (*Lock, error) {
	deadline := time.Now().Add(wait)
	for {
		lock, err := s.TryAcquire(ctx, name, ttl)
		if err != nil || lock != nil {
			return lock, err
		}
		if time.Now().After(deadline) {
			return nil, ErrLockNotAcquired
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}
}

// Release frees the lock if it is still owned by this holder.
func (l *Lock) Release(ctx context.Context) error {
	return releaseScript.Run(ctx, l.store.client, []string{l.key}, l.token).Err()
}

// VehicleLock serializes schedule changes for the single vehicle across
// service instances.
type VehicleLock struct {
	store *LockStore
	ttl   time.Duration
	wait  time.Duration
}

// NewVehicleLock creates a VehicleLock backed by store.
func NewVehicleLock(store *LockStore, ttl, wait time.Duration) *VehicleLock {
	return &VehicleLock{store: store, ttl: ttl, wait: wait}
}

// Acquire blocks until the vehicle lock is held and returns its release func.
func (v *VehicleLock) Acquire(ctx context.Context) (func(), error) {
	lock, err := v.store.Acquire(ctx, "vehicle", v.ttl, v.wait)
	if err != nil {
		return nil, err
	}
	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = lock.Release(releaseCtx)
	}, nil
}
