package repository

import (
	"context"

	"shuttle/internal/domain"
)

// SettingsRepository stores the tariff in effect.
type SettingsRepository interface {
	// GetTariff returns the stored tariff, or ErrNotFound when none was saved.
	GetTariff(ctx context.Context) (*domain.Tariff, error)

	// SaveTariff replaces the stored tariff.
	SaveTariff(ctx context.Context, tariff domain.Tariff) error
}
