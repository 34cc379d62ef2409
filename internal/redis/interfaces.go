package redis

import (
	"context"

	"shuttle/internal/domain"
	"shuttle/internal/repository"
)

// VehicleLocker defines the interface for the vehicle-wide lock.
type VehicleLocker interface {
	Acquire(ctx context.Context) (func(), error)
}

// TariffCache defines the interface for tariff caching.
type TariffCache interface {
	GetTariff(ctx context.Context) (*domain.Tariff, error)
	SetTariff(ctx context.Context, tariff domain.Tariff) error
	InvalidateTariff(ctx context.Context) error
}

// ResponseStore defines the interface for idempotent response storage.
type ResponseStore interface {
	Lookup(ctx context.Context, key string) (*StoredResponse, error)
	Reserve(ctx context.Context, key string) (bool, error)
	Save(ctx context.Context, key string, resp StoredResponse) error
	Release(ctx context.Context, key string) error
}

// Ensure concrete types implement interfaces.
var (
	_ repository.DriverLocationRepository = (*LocationStore)(nil)
	_ VehicleLocker                       = (*VehicleLock)(nil)
	_ TariffCache                         = (*CacheStore)(nil)
	_ ResponseStore                       = (*IdempotencyStore)(nil)
)
