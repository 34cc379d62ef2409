// Package pricing computes fares and travel time estimates.
package pricing

import (
	"math"
	"time"

	"shuttle/internal/domain"
)

// Surcharge labels.
const (
	SurchargeNight   = "night"
	SurchargeWeekend = "weekend"
	SurchargeHoliday = "holiday"
	SurchargePeak    = "peak"
)

// ComputeFare prices a trip under the given tariff.
//
// distanceKm must already include any return-trip multiplier. Surcharges are
// evaluated against the local time of at and each one is a percentage of the
// same subtotal. No rounding is applied.
func ComputeFare(distanceKm float64, at time.Time, passengers, waitingMinutes int, t domain.Tariff) domain.FareBreakdown {
	base := t.BaseFare
	distanceCost := math.Max(0, distanceKm) * t.PerKm
	waitingCost := math.Max(0, float64(waitingMinutes)-t.WaitingFreeMinutes) * t.WaitingPerMinute

	extra := passengers - t.IncludedPassengers
	if extra < 0 {
		extra = 0
	}
	var passengerCost float64
	if t.ExtraPassengerPercent > 0 {
		passengerCost = (base + distanceCost + waitingCost) * t.ExtraPassengerPercent / 100 * float64(extra)
	} else {
		passengerCost = float64(extra) * t.ExtraPassengerFee
	}

	subtotal := base + distanceCost + waitingCost + passengerCost

	applied := Surcharges(at, t)
	var surchargeAmount float64
	for _, s := range applied {
		surchargeAmount += subtotal * s.Percent / 100
	}

	return domain.FareBreakdown{
		Base:            base,
		DistanceCost:    distanceCost,
		WaitingCost:     waitingCost,
		PassengerCost:   passengerCost,
		Subtotal:        subtotal,
		SurchargeAmount: surchargeAmount,
		Surcharges:      applied,
		Total:           subtotal + surchargeAmount,
		Currency:        t.Currency,
	}
}

// Surcharges returns the surcharges triggered at the local time of at.
// Only the first matching peak window contributes and zero percentages are
// never listed.
func Surcharges(at time.Time, t domain.Tariff) []domain.AppliedSurcharge {
	var out []domain.AppliedSurcharge
	add := func(label string, percent float64) {
		if percent > 0 {
			out = append(out, domain.AppliedSurcharge{Label: label, Percent: percent})
		}
	}

	if IsNight(at) {
		add(SurchargeNight, t.NightPercent)
	}
	if wd := at.Weekday(); wd == time.Saturday || wd == time.Sunday {
		add(SurchargeWeekend, t.WeekendPercent)
	}
	if t.IsHoliday(at) {
		add(SurchargeHoliday, t.HolidayPercent)
	}

	clock := domain.ClockOf(at)
	for _, w := range t.PeakWindows {
		if w.Contains(clock) {
			label := w.Label
			if label == "" {
				label = SurchargePeak
			}
			add(label, w.Percent)
			break
		}
	}
	return out
}

// IsNight reports whether the local hour of at is 20:00 or later, or before 06:00.
func IsNight(at time.Time) bool {
	h := at.Hour()
	return h >= 20 || h < 6
}
