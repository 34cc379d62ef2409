// Package admission decides whether a requested time window can be served by
// the single vehicle.
package admission

import (
	"time"

	"shuttle/internal/domain"
)

// InBlackout reports whether at falls inside the daily window [start, end).
// A window with start > end wraps past midnight. An empty window never matches.
func InBlackout(at time.Time, start, end domain.ClockTime) bool {
	now := domain.ClockOf(at)
	switch {
	case start == end:
		return false
	case start < end:
		return now >= start && now < end
	default:
		return now >= start || now < end
	}
}

// CheckAvailability applies the global flag and the recurring blackout window.
func CheckAvailability(at time.Time, t domain.Tariff) error {
	if t.Unavailable {
		return &UnavailableError{Global: true, Start: t.UnavailableStart, End: t.UnavailableEnd}
	}
	if InBlackout(at, t.UnavailableStart, t.UnavailableEnd) {
		return &UnavailableError{Start: t.UnavailableStart, End: t.UnavailableEnd}
	}
	return nil
}

// CheckCapacity rejects passenger counts above the tariff maximum.
func CheckCapacity(passengers int, t domain.Tariff) error {
	if passengers > t.MaxPassengers {
		return &CapacityError{Requested: passengers, Max: t.MaxPassengers}
	}
	return nil
}

// WindowEnd returns start + travel + waiting, plus travel again for a
// wait-and-return trip.
func WindowEnd(start time.Time, travelMinutes, waitingMinutes int, waitAndReturn bool) time.Time {
	total := travelMinutes + waitingMinutes
	if waitAndReturn {
		total += travelMinutes
	}
	return start.Add(time.Duration(total) * time.Minute)
}

// FindConflict returns the first accepted booking whose window overlaps
// candidate. Bookings in any other status are ignored, as is skipID.
func FindConflict(candidate domain.TimeWindow, bookings []*domain.Booking, skipID string) *domain.Booking {
	for _, b := range bookings {
		if b.Status != domain.BookingStatusAccepted || b.ID == skipID {
			continue
		}
		if candidate.Overlaps(b.Window()) {
			return b
		}
	}
	return nil
}

// Candidate is the input to Decide.
type Candidate struct {
	Window     domain.TimeWindow
	Passengers int
}

// Decide runs the admission checks in order and stops at the first failure:
// global flag, blackout window, capacity, schedule conflict.
func Decide(c Candidate, t domain.Tariff, accepted []*domain.Booking) error {
	if err := CheckAvailability(c.Window.Start, t); err != nil {
		return err
	}
	if err := CheckCapacity(c.Passengers, t); err != nil {
		return err
	}
	if b := FindConflict(c.Window, accepted, ""); b != nil {
		return &ConflictError{BookingID: b.ID, Start: b.Start, End: b.End}
	}
	return nil
}
