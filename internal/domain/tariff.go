package domain

import (
	"fmt"
	"time"
)

// ClockTime is a time of day expressed in minutes since midnight.
type ClockTime int

// ParseClock parses an "HH:MM" string.
func ParseClock(raw string) (ClockTime, error) {
	t, err := time.Parse("15:04", raw)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", raw, err)
	}
	return ClockTime(t.Hour()*60 + t.Minute()), nil
}

// MustParseClock is like ParseClock but panics on malformed input.
func MustParseClock(raw string) ClockTime {
	c, err := ParseClock(raw)
	if err != nil {
		panic(err)
	}
	return c
}

// ClockOf returns the local time of day of t.
func ClockOf(t time.Time) ClockTime {
	return ClockTime(t.Hour()*60 + t.Minute())
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// PeakWindow is a named time-of-day range with inclusive bounds.
type PeakWindow struct {
	Label   string
	Start   ClockTime
	End     ClockTime
	Percent float64
}

// Contains reports whether c falls within the window, bounds included.
func (w PeakWindow) Contains(c ClockTime) bool {
	return c >= w.Start && c <= w.End
}

// Tariff is the pricing and availability policy in effect for a computation.
type Tariff struct {
	Currency              string
	BaseFare              float64
	PerKm                 float64
	WaitingPerMinute      float64
	WaitingFreeMinutes    float64
	ExtraPassengerFee     float64
	ExtraPassengerPercent float64 // wins over ExtraPassengerFee when > 0
	IncludedPassengers    int
	MaxPassengers         int
	ReturnTripMultiplier  float64
	NightPercent          float64
	WeekendPercent        float64
	HolidayPercent        float64
	PeakWindows           []PeakWindow
	Holidays              []string // YYYY-MM-DD
	UnavailableStart      ClockTime
	UnavailableEnd        ClockTime
	Unavailable           bool
}

// IsHoliday reports whether the calendar date of t is configured as a holiday.
func (t Tariff) IsHoliday(at time.Time) bool {
	date := at.Format("2006-01-02")
	for _, h := range t.Holidays {
		if h == date {
			return true
		}
	}
	return false
}

// TariffPatch carries a partial tariff update. Nil fields are left unchanged.
type TariffPatch struct {
	Currency              *string
	BaseFare              *float64
	PerKm                 *float64
	WaitingPerMinute      *float64
	WaitingFreeMinutes    *float64
	ExtraPassengerFee     *float64
	ExtraPassengerPercent *float64
	IncludedPassengers    *int
	MaxPassengers         *int
	ReturnTripMultiplier  *float64
	NightPercent          *float64
	WeekendPercent        *float64
	HolidayPercent        *float64
	PeakWindows           []PeakWindow
	Holidays              []string
	UnavailableStart      *ClockTime
	UnavailableEnd        *ClockTime
	Unavailable           *bool
}

// Apply returns a copy of t with the non-nil fields of p applied.
func (p TariffPatch) Apply(t Tariff) Tariff {
	if p.Currency != nil {
		t.Currency = *p.Currency
	}
	if p.BaseFare != nil {
		t.BaseFare = *p.BaseFare
	}
	if p.PerKm != nil {
		t.PerKm = *p.PerKm
	}
	if p.WaitingPerMinute != nil {
		t.WaitingPerMinute = *p.WaitingPerMinute
	}
	if p.WaitingFreeMinutes != nil {
		t.WaitingFreeMinutes = *p.WaitingFreeMinutes
	}
	if p.ExtraPassengerFee != nil {
		t.ExtraPassengerFee = *p.ExtraPassengerFee
	}
	if p.ExtraPassengerPercent != nil {
		t.ExtraPassengerPercent = *p.ExtraPassengerPercent
	}
	if p.IncludedPassengers != nil {
		t.IncludedPassengers = *p.IncludedPassengers
	}
	if p.MaxPassengers != nil {
		t.MaxPassengers = *p.MaxPassengers
	}
	if p.ReturnTripMultiplier != nil {
		t.ReturnTripMultiplier = *p.ReturnTripMultiplier
	}
	if p.NightPercent != nil {
		t.NightPercent = *p.NightPercent
	}
	if p.WeekendPercent != nil {
		t.WeekendPercent = *p.WeekendPercent
	}
	if p.HolidayPercent != nil {
		t.HolidayPercent = *p.HolidayPercent
	}
	if p.PeakWindows != nil {
		t.PeakWindows = append([]PeakWindow(nil), p.PeakWindows...)
	}
	if p.Holidays != nil {
		t.Holidays = append([]string(nil), p.Holidays...)
	}
	if p.UnavailableStart != nil {
		t.UnavailableStart = *p.UnavailableStart
	}
	if p.UnavailableEnd != nil {
		t.UnavailableEnd = *p.UnavailableEnd
	}
	if p.Unavailable != nil {
		t.Unavailable = *p.Unavailable
	}
	return t
}

// FareBreakdown is the itemised result of a fare computation.
type FareBreakdown struct {
	Base            float64
	DistanceCost    float64
	WaitingCost     float64
	PassengerCost   float64
	Subtotal        float64
	SurchargeAmount float64
	Surcharges      []AppliedSurcharge
	Total           float64
	Currency        string
}

// AppliedSurcharge names a surcharge that contributed to a fare.
type AppliedSurcharge struct {
	Label   string
	Percent float64
}
