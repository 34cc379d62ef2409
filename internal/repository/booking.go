package repository

import (
	"context"
	"time"

	"shuttle/internal/domain"
)

// BookingRepository defines the persistence operations for bookings.
type BookingRepository interface {
	// Create persists a new booking.
	Create(ctx context.Context, booking *domain.Booking) error

	// GetByID retrieves a booking by ID.
	GetByID(ctx context.Context, id string) (*domain.Booking, error)

	// ListByStatus retrieves bookings ordered by start time. An empty status lists all.
	ListByStatus(ctx context.Context, status domain.BookingStatus) ([]*domain.Booking, error)

	// ListByContact retrieves the bookings of one requester, newest first.
	ListByContact(ctx context.Context, contact string) ([]*domain.Booking, error)

	// UpdateStatus sets the status and driver response of a booking.
	UpdateStatus(ctx context.Context, id string, status domain.BookingStatus, driverResponse string, at time.Time) error
}
