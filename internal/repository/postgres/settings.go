package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"shuttle/internal/domain"
	"shuttle/internal/repository"
)

const tariffKey = "tariff"

// SettingsRepository is a PostgreSQL implementation of repository.SettingsRepository.
type SettingsRepository struct {
	q Querier
}

// NewSettingsRepository creates a new PostgreSQL settings repository.
func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{q: db}
}

// tariffRecord is the stored JSON form of a tariff.
type tariffRecord struct {
	Currency              string       `json:"currency"`
	BaseFare              float64      `json:"base_fare"`
	PerKm                 float64      `json:"per_km"`
	WaitingPerMinute      float64      `json:"waiting_per_minute"`
	WaitingFreeMinutes    float64      `json:"waiting_free_minutes"`
	ExtraPassengerFee     float64      `json:"extra_passenger_fee"`
	ExtraPassengerPercent float64      `json:"extra_passenger_percent"`
	IncludedPassengers    int          `json:"included_passengers"`
	MaxPassengers         int          `json:"max_passengers"`
	ReturnTripMultiplier  float64      `json:"return_trip_multiplier"`
	NightPercent          float64      `json:"night_percent"`
	WeekendPercent        float64      `json:"weekend_percent"`
	HolidayPercent        float64      `json:"holiday_percent"`
	PeakWindows           []peakRecord `json:"peak_windows"`
	Holidays              []string     `json:"holidays"`
	UnavailableStart      string       `json:"unavailable_start"`
	UnavailableEnd        string       `json:"unavailable_end"`
	Unavailable           bool         `json:"unavailable"`
}

type peakRecord struct {
	Label   string  `json:"label"`
	Start   string  `json:"start"`
	End     string  `json:"end"`
	Percent float64 `json:"percent"`
}

// GetTariff returns the stored tariff.
func (r *SettingsRepository) GetTariff(ctx context.Context) (*domain.Tariff, error) {
	query := `SELECT value FROM settings WHERE key = $1`

	var raw []byte
	if err := r.q.QueryRowContext(ctx, query, tariffKey).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	var rec tariffRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return rec.toDomain()
}

// SaveTariff replaces the stored tariff.
func (r *SettingsRepository) SaveTariff(ctx context.Context, t domain.Tariff) error {
	query := `
		INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`

	data, err := json.Marshal(recordFromDomain(t))
	if err != nil {
		return err
	}
	_, err = r.q.ExecContext(ctx, query, tariffKey, data, time.Now())
	return err
}

func recordFromDomain(t domain.Tariff) tariffRecord {
	rec := tariffRecord{
		Currency:              t.Currency,
		BaseFare:              t.BaseFare,
		PerKm:                 t.PerKm,
		WaitingPerMinute:      t.WaitingPerMinute,
		WaitingFreeMinutes:    t.WaitingFreeMinutes,
		ExtraPassengerFee:     t.ExtraPassengerFee,
		ExtraPassengerPercent: t.ExtraPassengerPercent,
		IncludedPassengers:    t.IncludedPassengers,
		MaxPassengers:         t.MaxPassengers,
		ReturnTripMultiplier:  t.ReturnTripMultiplier,
		NightPercent:          t.NightPercent,
		WeekendPercent:        t.WeekendPercent,
		HolidayPercent:        t.HolidayPercent,
		Holidays:              t.Holidays,
		UnavailableStart:      t.UnavailableStart.String(),
		UnavailableEnd:        t.UnavailableEnd.String(),
		Unavailable:           t.Unavailable,
	}
	for _, w := range t.PeakWindows {
		rec.PeakWindows = append(rec.PeakWindows, peakRecord{
			Label:   w.Label,
			Start:   w.Start.String(),
			End:     w.End.String(),
			Percent: w.Percent,
		})
	}
	return rec
}

func (rec tariffRecord) toDomain() (*domain.Tariff, error) {
	start, err := domain.ParseClock(rec.UnavailableStart)
	if err != nil {
		return nil, err
	}
	end, err := domain.ParseClock(rec.UnavailableEnd)
	if err != nil {
		return nil, err
	}

	t := &domain.Tariff{
		Currency:              rec.Currency,
		BaseFare:              rec.BaseFare,
		PerKm:                 rec.PerKm,
		WaitingPerMinute:      rec.WaitingPerMinute,
		WaitingFreeMinutes:    rec.WaitingFreeMinutes,
		ExtraPassengerFee:     rec.ExtraPassengerFee,
		ExtraPassengerPercent: rec.ExtraPassengerPercent,
		IncludedPassengers:    rec.IncludedPassengers,
		MaxPassengers:         rec.MaxPassengers,
		ReturnTripMultiplier:  rec.ReturnTripMultiplier,
		NightPercent:          rec.NightPercent,
		WeekendPercent:        rec.WeekendPercent,
		HolidayPercent:        rec.HolidayPercent,
		Holidays:              rec.Holidays,
		UnavailableStart:      start,
		UnavailableEnd:        end,
		Unavailable:           rec.Unavailable,
	}
	for _, p := range rec.PeakWindows {
		ps, err := domain.ParseClock(p.Start)
		if err != nil {
			return nil, err
		}
		pe, err := domain.ParseClock(p.End)
		if err != nil {
			return nil, err
		}
		t.PeakWindows = append(t.PeakWindows, domain.PeakWindow{Label: p.Label, Start: ps, End: pe, Percent: p.Percent})
	}
	return t, nil
}
