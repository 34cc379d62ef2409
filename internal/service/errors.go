package service

import (
	"errors"
	"strings"

	"shuttle/internal/domain"
)

var (
	// ErrInvalidBookingID is returned when booking ID is empty.
	ErrInvalidBookingID = errors.New("invalid booking id")

	// ErrInvalidDecision is returned for driver decisions other than accept or decline.
	ErrInvalidDecision = errors.New("unknown decision")

	// ErrInvalidTransition is returned when a booking cannot move to the requested status.
	ErrInvalidTransition = errors.New("invalid booking status transition")

	// ErrMissingFields is returned when required trip fields are absent.
	ErrMissingFields = errors.New("missing required fields")

	// ErrInvalidLocation is returned when coordinates are out of range.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrInvalidWaiting is returned when waiting minutes are out of range.
	ErrInvalidWaiting = errors.New("invalid waiting minutes")

	// ErrInvalidDistance is returned when an explicit distance is out of range.
	ErrInvalidDistance = errors.New("invalid distance")

	// ErrInvalidContact is returned when the requester contact is empty.
	ErrInvalidContact = errors.New("invalid requester contact")

	// ErrInvalidTariff is returned when a settings update would produce an unusable tariff.
	ErrInvalidTariff = errors.New("invalid tariff")

	// ErrInvalidStatus is returned when a status filter is not a known booking status.
	ErrInvalidStatus = errors.New("invalid booking status")

	// ErrNotAccepted is returned when pickup tracking is requested for a booking that is not accepted.
	ErrNotAccepted = errors.New("booking is not accepted")

	// ErrScheduleBusy is returned when the schedule lock could not be taken in time.
	ErrScheduleBusy = errors.New("schedule busy, try again")
)

// MissingFieldsError lists the required trip fields that were not supplied.
type MissingFieldsError struct {
	Fields domain.MissingFields
}

func (e *MissingFieldsError) Error() string {
	return "missing " + strings.Join(e.Fields.Labels(), ", ")
}

func (e *MissingFieldsError) Unwrap() error { return ErrMissingFields }
