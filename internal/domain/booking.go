package domain

import (
	"fmt"
	"strings"
	"time"
)

// BookingStatus represents the current status of a booking.
type BookingStatus string

const (
	BookingStatusPending  BookingStatus = "pending"
	BookingStatusAccepted BookingStatus = "accepted"
	BookingStatusDeclined BookingStatus = "declined"
)

// bookingTransitions lists the statuses each status may move to.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:  {BookingStatusAccepted, BookingStatusDeclined},
	BookingStatusAccepted: {},
	BookingStatusDeclined: {},
}

// ParseBookingStatus converts a raw value into a BookingStatus.
func ParseBookingStatus(raw string) (BookingStatus, error) {
	s := BookingStatus(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := bookingTransitions[s]; !ok {
		return "", fmt.Errorf("unknown booking status %q", raw)
	}
	return s, nil
}

// CanTransitionTo reports whether the booking may move from s to next.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are defined.
func (s BookingStatus) IsTerminal() bool {
	return len(bookingTransitions[s]) == 0
}

// Booking is an admitted trip request on the vehicle schedule.
type Booking struct {
	ID                  string
	RequesterContact    string
	RequesterName       string
	Pickup              Place
	Dropoff             Place
	Start               time.Time
	End                 time.Time // always after Start
	Passengers          int
	WaitingMinutes      int
	WaitAndReturn       bool
	DistanceKm          float64
	FareAmount          float64
	Currency            string
	EstimatedPickupMins int
	Status              BookingStatus
	DriverResponse      string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Window returns the half-open interval the booking occupies.
func (b *Booking) Window() TimeWindow {
	return TimeWindow{Start: b.Start, End: b.End}
}

// TimeWindow is a half-open interval [Start, End).
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether w and other share any instant.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.Start.Before(other.End) && w.End.After(other.Start)
}

// Contains reports whether t lies within the closed interval [Start, End].
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}
