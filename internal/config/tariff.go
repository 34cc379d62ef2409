package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"shuttle/internal/domain"
)

// Tariff builds the default tariff from configuration.
func (c TariffConfig) Tariff() (domain.Tariff, error) {
	start, err := domain.ParseClock(c.UnavailableStart)
	if err != nil {
		return domain.Tariff{}, fmt.Errorf("unavailable start: %w", err)
	}
	end, err := domain.ParseClock(c.UnavailableEnd)
	if err != nil {
		return domain.Tariff{}, fmt.Errorf("unavailable end: %w", err)
	}
	peaks, err := ParsePeakWindows(c.PeakWindows, c.PeakPercent)
	if err != nil {
		return domain.Tariff{}, err
	}

	return domain.Tariff{
		Currency:              c.Currency,
		BaseFare:              c.BaseFare,
		PerKm:                 c.PerKm,
		WaitingPerMinute:      c.WaitingPerMinute,
		WaitingFreeMinutes:    c.WaitingFreeMinutes,
		ExtraPassengerFee:     c.ExtraPassengerFee,
		ExtraPassengerPercent: c.ExtraPassengerPercent,
		IncludedPassengers:    c.IncludedPassengers,
		MaxPassengers:         c.MaxPassengers,
		ReturnTripMultiplier:  c.ReturnTripMultiplier,
		NightPercent:          c.NightPercent,
		WeekendPercent:        c.WeekendPercent,
		HolidayPercent:        c.HolidayPercent,
		PeakWindows:           peaks,
		Holidays:              append([]string(nil), c.Holidays...),
		UnavailableStart:      start,
		UnavailableEnd:        end,
		Unavailable:           c.Unavailable,
	}, nil
}

// ParsePeakWindows parses "HH:MM-HH:MM" ranges separated by commas.
func ParsePeakWindows(raw string, percent float64) ([]domain.PeakWindow, error) {
	var out []domain.PeakWindow
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		bounds := strings.SplitN(item, "-", 2)
		if len(bounds) != 2 {
			return nil, fmt.Errorf("invalid peak window %q", item)
		}
		start, err := domain.ParseClock(strings.TrimSpace(bounds[0]))
		if err != nil {
			return nil, err
		}
		end, err := domain.ParseClock(strings.TrimSpace(bounds[1]))
		if err != nil {
			return nil, err
		}
		out = append(out, domain.PeakWindow{Label: "peak", Start: start, End: end, Percent: percent})
	}
	return out, nil
}

// Location loads the booking timezone.
func (c BookingConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Origin parses DefaultDriverOrigin. It returns nil when unset or malformed.
func (c BookingConfig) Origin() *domain.LatLng {
	parts := strings.Split(c.DefaultDriverOrigin, ",")
	if len(parts) != 2 {
		return nil
	}
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, errLng := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errLat != nil || errLng != nil {
		return nil
	}
	p := domain.LatLng{Lat: lat, Lng: lng}
	if !p.Valid() {
		return nil
	}
	return &p
}
