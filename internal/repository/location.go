package repository

import (
	"context"
	"time"

	"shuttle/internal/domain"
)

// DriverLocationRepository holds the single last known vehicle position.
type DriverLocationRepository interface {
	// Set overwrites the stored position.
	Set(ctx context.Context, position domain.LatLng, at time.Time) error

	// Get returns the stored position, or ErrNotFound when none was reported.
	Get(ctx context.Context) (*domain.DriverLocation, error)
}
