package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"shuttle/internal/domain"
	"shuttle/internal/repository"
)

const driverLocationKey = "driver:location"

// LocationStore keeps the vehicle's last known position in a Redis hash.
type LocationStore struct {
	client *redis.Client
}

// NewLocationStore creates a new LocationStore.
func NewLocationStore(client *redis.Client) *LocationStore {
	return &LocationStore{client: client}
}

// Set overwrites the stored position.
func (s *LocationStore) Set(ctx context.Context, position domain.LatLng, at time.Time) error {
	return s.client.HSet(ctx, driverLocationKey,
		"lat", strconv.FormatFloat(position.Lat, 'f', -1, 64),
		"lng", strconv.FormatFloat(position.Lng, 'f', -1, 64),
		"updated_at", at.UTC().Format(time.RFC3339Nano),
	).Err()
}

// Get returns the stored position, or repository.ErrNotFound.
func (s *LocationStore) Get(ctx context.Context) (*domain.DriverLocation, error) {
	fields, err := s.client.HGetAll(ctx, driverLocationKey).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, repository.ErrNotFound
	}

	lat, err := strconv.ParseFloat(fields["lat"], 64)
	if err != nil {
		return nil, err
	}
	lng, err := strconv.ParseFloat(fields["lng"], 64)
	if err != nil {
		return nil, err
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, fields["updated_at"])
	if err != nil {
		return nil, err
	}

	return &domain.DriverLocation{
		Position:  domain.LatLng{Lat: lat, Lng: lng},
		UpdatedAt: updatedAt,
	}, nil
}
