package service

import (
	"context"
	"time"

	"shuttle/internal/domain"
	"shuttle/internal/repository"
)

// DriverService handles the vehicle position and ride status.
type DriverService struct {
	locationRepo repository.DriverLocationRepository
	bookingRepo  repository.BookingRepository
	now          func() time.Time
}

// NewDriverService creates a new DriverService.
func NewDriverService(
	locationRepo repository.DriverLocationRepository,
	bookingRepo repository.BookingRepository,
) *DriverService {
	return &DriverService{
		locationRepo: locationRepo,
		bookingRepo:  bookingRepo,
		now:          time.Now,
	}
}

// UpdateLocation records the latest vehicle position.
func (s *DriverService) UpdateLocation(ctx context.Context, position domain.LatLng) (*domain.DriverLocation, error) {
	if !position.Valid() {
		return nil, ErrInvalidLocation
	}

	now := s.now()
	if err := s.locationRepo.Set(ctx, position, now); err != nil {
		return nil, err
	}
	return &domain.DriverLocation{Position: position, UpdatedAt: now}, nil
}

// Location returns the last reported vehicle position.
func (s *DriverService) Location(ctx context.Context) (*domain.DriverLocation, error) {
	return s.locationRepo.Get(ctx)
}

// DriverStatusResult describes what the vehicle is doing right now.
type DriverStatusResult struct {
	Status  domain.DriverStatus
	Booking *domain.Booking // the ride in progress, if any
}

// Status reports currently_in_ride when now lies within an accepted
// booking's window, bounds included.
func (s *DriverService) Status(ctx context.Context) (*DriverStatusResult, error) {
	accepted, err := s.bookingRepo.ListByStatus(ctx, domain.BookingStatusAccepted)
	if err != nil {
		return nil, err
	}

	now := s.now()
	for _, b := range accepted {
		if b.Window().Contains(now) {
			return &DriverStatusResult{Status: domain.DriverStatusInRide, Booking: b}, nil
		}
	}
	return &DriverStatusResult{Status: domain.DriverStatusAvailable}, nil
}

// ActiveBooking returns the earliest accepted booking that has not ended.
func (s *DriverService) ActiveBooking(ctx context.Context) (*domain.Booking, error) {
	accepted, err := s.bookingRepo.ListByStatus(ctx, domain.BookingStatusAccepted)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var active *domain.Booking
	for _, b := range accepted {
		if !b.End.After(now) {
			continue
		}
		if active == nil || b.Start.Before(active.Start) {
			active = b
		}
	}
	if active == nil {
		return nil, repository.ErrNotFound
	}
	return active, nil
}
