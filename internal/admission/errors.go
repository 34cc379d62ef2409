package admission

import (
	"errors"
	"fmt"
	"time"

	"shuttle/internal/domain"
)

var (
	// ErrUnavailable is returned when the vehicle does not take requests at the requested time.
	ErrUnavailable = errors.New("driver unavailable")

	// ErrOverCapacity is returned when the passenger count exceeds the tariff maximum.
	ErrOverCapacity = errors.New("too many passengers")

	// ErrScheduleConflict is returned when the requested window overlaps an accepted booking.
	ErrScheduleConflict = errors.New("schedule conflict")
)

// UnavailableError reports a rejection by the availability rules.
type UnavailableError struct {
	// Global is set when the unavailable flag caused the rejection.
	Global bool
	Start  domain.ClockTime
	End    domain.ClockTime
}

func (e *UnavailableError) Error() string {
	if e.Global {
		return "driver unavailable"
	}
	return fmt.Sprintf("driver unavailable between %s and %s", e.Start, e.End)
}

func (e *UnavailableError) Unwrap() error { return ErrUnavailable }

// CapacityError reports a passenger count above the allowed maximum.
type CapacityError struct {
	Requested int
	Max       int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("maximum passengers is %d, requested %d", e.Max, e.Requested)
}

func (e *CapacityError) Unwrap() error { return ErrOverCapacity }

// ConflictError carries the window of the accepted booking that blocks a request.
type ConflictError struct {
	BookingID string
	Start     time.Time
	End       time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicts with accepted booking %s (%s - %s)",
		e.BookingID, e.Start.Format("2006-01-02 15:04"), e.End.Format("15:04"))
}

func (e *ConflictError) Unwrap() error { return ErrScheduleConflict }
