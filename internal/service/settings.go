package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"shuttle/internal/domain"
	internalRedis "shuttle/internal/redis"
	"shuttle/internal/repository"
)

// TariffSource supplies the tariff in effect.
type TariffSource interface {
	Tariff(ctx context.Context) (domain.Tariff, error)
}

// SettingsService reads and updates the tariff. Reads go through the cache,
// then the store, then the configured defaults.
type SettingsService struct {
	mu       sync.Mutex
	repo     repository.SettingsRepository
	cache    internalRedis.TariffCache
	defaults domain.Tariff
	logger   *zap.Logger
}

// NewSettingsService creates a new SettingsService. cache may be nil.
func NewSettingsService(repo repository.SettingsRepository, cache internalRedis.TariffCache, defaults domain.Tariff, logger *zap.Logger) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{repo: repo, cache: cache, defaults: defaults, logger: logger}
}

// Tariff returns the tariff in effect.
func (s *SettingsService) Tariff(ctx context.Context) (domain.Tariff, error) {
	if s.cache != nil {
		cached, err := s.cache.GetTariff(ctx)
		if err != nil {
			s.logger.Warn("tariff cache read failed", zap.Error(err))
		} else if cached != nil {
			return *cached, nil
		}
	}

	tariff, err := s.load(ctx)
	if err != nil {
		return domain.Tariff{}, err
	}

	if s.cache != nil {
		if err := s.cache.SetTariff(ctx, tariff); err != nil {
			s.logger.Warn("tariff cache write failed", zap.Error(err))
		}
	}
	return tariff, nil
}

func (s *SettingsService) load(ctx context.Context) (domain.Tariff, error) {
	stored, err := s.repo.GetTariff(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return s.defaults, nil
		}
		return domain.Tariff{}, err
	}
	return *stored, nil
}

// UpdateTariff applies a partial update and returns the resulting tariff.
func (s *SettingsService) UpdateTariff(ctx context.Context, patch domain.TariffPatch) (domain.Tariff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(ctx)
	if err != nil {
		return domain.Tariff{}, err
	}

	updated := patch.Apply(current)
	if err := validateTariff(updated); err != nil {
		return domain.Tariff{}, err
	}

	if err := s.repo.SaveTariff(ctx, updated); err != nil {
		return domain.Tariff{}, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateTariff(ctx); err != nil {
			s.logger.Warn("tariff cache invalidation failed", zap.Error(err))
		}
	}

	s.logger.Info("tariff updated")
	return updated, nil
}

func validateTariff(t domain.Tariff) error {
	switch {
	case t.Currency == "":
		return fmt.Errorf("%w: currency is required", ErrInvalidTariff)
	case t.MaxPassengers < 1:
		return fmt.Errorf("%w: max passengers must be at least 1", ErrInvalidTariff)
	case t.IncludedPassengers < 0:
		return fmt.Errorf("%w: included passengers must not be negative", ErrInvalidTariff)
	case t.ReturnTripMultiplier < 1:
		return fmt.Errorf("%w: return trip multiplier must be at least 1", ErrInvalidTariff)
	}

	for name, v := range map[string]float64{
		"base fare":               t.BaseFare,
		"per km":                  t.PerKm,
		"waiting per minute":      t.WaitingPerMinute,
		"waiting free minutes":    t.WaitingFreeMinutes,
		"extra passenger fee":     t.ExtraPassengerFee,
		"extra passenger percent": t.ExtraPassengerPercent,
		"night percent":           t.NightPercent,
		"weekend percent":         t.WeekendPercent,
		"holiday percent":         t.HolidayPercent,
	} {
		if v < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidTariff, name)
		}
	}
	for _, w := range t.PeakWindows {
		if w.Percent < 0 || w.End < w.Start {
			return fmt.Errorf("%w: invalid peak window %s-%s", ErrInvalidTariff, w.Start, w.End)
		}
	}
	for _, h := range t.Holidays {
		if _, err := time.Parse("2006-01-02", h); err != nil {
			return fmt.Errorf("%w: invalid holiday %q", ErrInvalidTariff, h)
		}
	}
	return nil
}
