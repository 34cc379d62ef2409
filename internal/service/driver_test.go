package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"shuttle/internal/domain"
	"shuttle/internal/repository"
	"shuttle/internal/tests"
)

func TestDriverService_Status(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	cases := []struct {
		name string
		now  time.Time
		want domain.DriverStatus
	}{
		{"before ride", start.Add(-time.Minute), domain.DriverStatusAvailable},
		{"at start", start, domain.DriverStatusInRide},
		{"during ride", start.Add(30 * time.Minute), domain.DriverStatusInRide},
		{"at end", end, domain.DriverStatusInRide},
		{"after ride", end.Add(time.Minute), domain.DriverStatusAvailable},
	}

	for _, tt := range cases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := tests.NewMockBookingRepository()
			repo.AddBooking(&domain.Booking{ID: "a", Start: start, End: end, Status: domain.BookingStatusAccepted})
			repo.AddBooking(&domain.Booking{ID: "p", Start: start, End: end, Status: domain.BookingStatusPending})

			svc := NewDriverService(tests.NewMockLocationRepository(), repo)
			svc.now = func() time.Time { return tt.now }

			got, err := svc.Status(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Status != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got.Status)
			}
			if tt.want == domain.DriverStatusInRide && (got.Booking == nil || got.Booking.ID != "a") {
				t.Errorf("expected booking a in progress, got %+v", got.Booking)
			}
		})
	}
}

func TestDriverService_ActiveBooking(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := tests.NewMockBookingRepository()
	repo.AddBooking(&domain.Booking{ID: "past", Start: now.Add(-3 * time.Hour), End: now.Add(-2 * time.Hour), Status: domain.BookingStatusAccepted})
	repo.AddBooking(&domain.Booking{ID: "later", Start: now.Add(5 * time.Hour), End: now.Add(6 * time.Hour), Status: domain.BookingStatusAccepted})
	repo.AddBooking(&domain.Booking{ID: "next", Start: now.Add(time.Hour), End: now.Add(2 * time.Hour), Status: domain.BookingStatusAccepted})
	repo.AddBooking(&domain.Booking{ID: "pending", Start: now, End: now.Add(time.Hour), Status: domain.BookingStatusPending})

	svc := NewDriverService(tests.NewMockLocationRepository(), repo)
	svc.now = func() time.Time { return now }

	active, err := svc.ActiveBooking(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if active.ID != "next" {
		t.Errorf("expected next, got %s", active.ID)
	}

	svc.now = func() time.Time { return now.Add(24 * time.Hour) }
	if _, err := svc.ActiveBooking(context.Background()); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDriverService_UpdateLocation(t *testing.T) {
	t.Parallel()

	locations := tests.NewMockLocationRepository()
	svc := NewDriverService(locations, tests.NewMockBookingRepository())
	ctx := context.Background()

	if _, err := svc.Location(ctx); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound before any update, got %v", err)
	}

	if _, err := svc.UpdateLocation(ctx, domain.LatLng{Lat: 120, Lng: 0}); !errors.Is(err, ErrInvalidLocation) {
		t.Errorf("expected ErrInvalidLocation, got %v", err)
	}

	if _, err := svc.UpdateLocation(ctx, domain.LatLng{Lat: -20.16, Lng: 57.5}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loc, err := svc.Location(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.Position.Lat != -20.16 {
		t.Errorf("unexpected position %+v", loc.Position)
	}
}
