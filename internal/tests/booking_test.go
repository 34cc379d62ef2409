package tests

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"shuttle/internal/admission"
	"shuttle/internal/domain"
	"shuttle/internal/repository"
	"shuttle/internal/service"
)

// ──────────────────────────────────────────────
// 1. ADMISSION AND BOOKING CREATION
// ──────────────────────────────────────────────

func TestBooking_CreatedPendingAndDriverNotified(t *testing.T) {
	t.Parallel()

	h := newHarness()
	ctx := context.Background()

	result, err := h.booking.Book(ctx, tripAt(at(14, 0)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b := result.Booking
	if b.Status != domain.BookingStatusPending {
		t.Errorf("expected status %s, got %s", domain.BookingStatusPending, b.Status)
	}
	if !b.End.Equal(at(15, 0)) {
		t.Errorf("expected end 15:00, got %s", b.End)
	}
	if math.Abs(b.FareAmount-904) > 1e-9 {
		t.Errorf("expected fare 904, got %f", b.FareAmount)
	}
	if b.EstimatedPickupMins != 7 {
		t.Errorf("expected pickup estimate 7, got %d", b.EstimatedPickupMins)
	}
	if h.bookingRepo.GetBooking(b.ID) == nil {
		t.Fatal("booking not stored")
	}
	if h.lock.AcquireCount != 1 {
		t.Errorf("expected vehicle lock to be taken once, got %d", h.lock.AcquireCount)
	}

	msgs := h.sender.MessagesTo(driverContact)
	if len(msgs) != 1 {
		t.Fatalf("expected 1 driver message, got %d", len(msgs))
	}
	if !strings.Contains(msgs[0].Body, "Reply: ACCEPT "+b.ID+" or DECLINE "+b.ID) {
		t.Errorf("driver message missing reply instructions: %q", msgs[0].Body)
	}
}

func TestBooking_AcceptedWindowBlocksOverlap(t *testing.T) {
	t.Parallel()

	h := newHarness()
	ctx := context.Background()

	a, err := h.booking.Book(ctx, tripAt(at(14, 0)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := h.lifecycle.Accept(ctx, a.Booking.ID); err != nil {
		t.Fatalf("unexpected error accepting: %v", err)
	}

	_, err = h.booking.Book(ctx, tripAt(at(14, 30)))
	if !errors.Is(err, admission.ErrScheduleConflict) {
		t.Fatalf("expected schedule conflict, got %v", err)
	}

	var conflict *admission.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected *admission.ConflictError, got %T", err)
	}
	if !conflict.Start.Equal(at(14, 0)) || !conflict.End.Equal(at(15, 0)) {
		t.Errorf("expected conflicting window 14:00-15:00, got %s-%s", conflict.Start, conflict.End)
	}
	if h.bookingRepo.CountBookings() != 1 {
		t.Errorf("expected 1 booking, got %d", h.bookingRepo.CountBookings())
	}
}

func TestBooking_OnlyAcceptedBookingsBlock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		decision string // empty leaves the first booking pending
	}{
		{"pending does not block", ""},
		{"declined does not block", "decline"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness()
			ctx := context.Background()

			a, err := h.booking.Book(ctx, tripAt(at(14, 0)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.decision != "" {
				if _, err := h.lifecycle.Decide(ctx, a.Booking.ID, tt.decision); err != nil {
					t.Fatalf("unexpected error deciding: %v", err)
				}
			}

			if _, err := h.booking.Book(ctx, tripAt(at(14, 30))); err != nil {
				t.Fatalf("expected overlapping request to be admitted, got %v", err)
			}
			if h.bookingRepo.CountBookings() != 2 {
				t.Errorf("expected 2 bookings, got %d", h.bookingRepo.CountBookings())
			}
		})
	}
}

func TestBooking_AdjacentWindowsDoNotConflict(t *testing.T) {
	t.Parallel()

	h := newHarness()
	ctx := context.Background()

	a, err := h.booking.Book(ctx, tripAt(at(14, 0)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := h.lifecycle.Accept(ctx, a.Booking.ID); err != nil {
		t.Fatalf("unexpected error accepting: %v", err)
	}

	// [15:00, 16:00) touches [14:00, 15:00) without overlapping.
	if _, err := h.booking.Book(ctx, tripAt(at(15, 0))); err != nil {
		t.Fatalf("expected adjacent window to be admitted, got %v", err)
	}
}

func TestBooking_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		patch   domain.TariffPatch
		mutate  func(*domain.TripRequest)
		wantErr error
	}{
		{
			name:    "global unavailable flag",
			patch:   domain.TariffPatch{Unavailable: boolPtr(true)},
			wantErr: admission.ErrUnavailable,
		},
		{
			name:    "inside blackout window",
			mutate:  func(r *domain.TripRequest) { r.Start = at(21, 0) },
			wantErr: admission.ErrUnavailable,
		},
		{
			name:    "blackout wraps past midnight",
			mutate:  func(r *domain.TripRequest) { r.Start = at(5, 59) },
			wantErr: admission.ErrUnavailable,
		},
		{
			name:    "unavailable flag wins over capacity",
			patch:   domain.TariffPatch{Unavailable: boolPtr(true)},
			mutate:  func(r *domain.TripRequest) { r.Passengers = 9 },
			wantErr: admission.ErrUnavailable,
		},
		{
			name:    "too many passengers",
			mutate:  func(r *domain.TripRequest) { r.Passengers = 5 },
			wantErr: admission.ErrOverCapacity,
		},
		{
			name:    "missing date",
			mutate:  func(r *domain.TripRequest) { r.Start = time.Time{} },
			wantErr: service.ErrMissingFields,
		},
		{
			name:    "missing contact",
			mutate:  func(r *domain.TripRequest) { r.RequesterContact = " " },
			wantErr: service.ErrInvalidContact,
		},
		{
			name:    "negative waiting",
			mutate:  func(r *domain.TripRequest) { r.WaitingMinutes = -1 },
			wantErr: service.ErrInvalidWaiting,
		},
		{
			name:    "waiting beyond a day",
			mutate:  func(r *domain.TripRequest) { r.WaitingMinutes = 268435456 },
			wantErr: service.ErrInvalidWaiting,
		},
		{
			name: "distance override out of range",
			mutate: func(r *domain.TripRequest) {
				d := 5000.0
				r.DistanceKm = &d
			},
			wantErr: service.ErrInvalidDistance,
		},
		{
			name: "coordinates out of range",
			mutate: func(r *domain.TripRequest) {
				r.Pickup = domain.Place{Coords: &domain.LatLng{Lat: 91, Lng: 0}}
			},
			wantErr: service.ErrInvalidLocation,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness()
			ctx := context.Background()

			if _, err := h.settings.UpdateTariff(ctx, tt.patch); err != nil {
				t.Fatalf("unexpected error updating tariff: %v", err)
			}

			req := tripAt(at(14, 0))
			if tt.mutate != nil {
				tt.mutate(&req)
			}

			_, err := h.booking.Book(ctx, req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if h.bookingRepo.CreateCallCount != 0 {
				t.Errorf("expected no booking to be created, got %d", h.bookingRepo.CreateCallCount)
			}
			if len(h.sender.Messages()) != 0 {
				t.Errorf("expected no notifications, got %d", len(h.sender.Messages()))
			}
		})
	}
}

func TestBooking_OversizedWaitCannotSlipPastAcceptedBooking(t *testing.T) {
	t.Parallel()

	h := newHarness()
	ctx := context.Background()

	accepted := pendingBooking("a", at(14, 0), at(15, 0))
	accepted.Status = domain.BookingStatusAccepted
	h.bookingRepo.AddBooking(accepted)

	for _, waiting := range []int{268435456, 8589934592, 34359738368} {
		req := tripAt(at(13, 0))
		req.WaitingMinutes = waiting

		if _, err := h.booking.Book(ctx, req); !errors.Is(err, service.ErrInvalidWaiting) {
			t.Errorf("waiting %d: expected ErrInvalidWaiting, got %v", waiting, err)
		}
	}

	req := tripAt(at(13, 0))
	req.WaitingMinutes = domain.MaxWaitingMinutes
	if _, err := h.booking.Book(ctx, req); !errors.Is(err, admission.ErrScheduleConflict) {
		t.Errorf("expected conflict for a day-long wait, got %v", err)
	}
	if h.bookingRepo.CountBookings() != 1 {
		t.Errorf("expected only the accepted booking, got %d", h.bookingRepo.CountBookings())
	}
}

func TestBooking_WaitAndReturn(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.planner.TravelMinutes = 30
	ctx := context.Background()

	req := tripAt(at(14, 0))
	req.WaitingMinutes = 15
	req.WaitAndReturn = true

	result, err := h.booking.Book(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// travel + waiting + travel back
	if !result.Booking.End.Equal(at(15, 15)) {
		t.Errorf("expected end 15:15, got %s", result.Booking.End)
	}
	if result.Booking.DistanceKm != 20 {
		t.Errorf("expected priced distance 20, got %f", result.Booking.DistanceKm)
	}
	// 4 + 20*90 + (15-3)*0.5
	if math.Abs(result.Quote.Fare.Total-1810) > 1e-9 {
		t.Errorf("expected total 1810, got %f", result.Quote.Fare.Total)
	}
}

func TestBooking_QuoteDoesNotCreate(t *testing.T) {
	t.Parallel()

	h := newHarness()
	ctx := context.Background()

	distance := 3.5
	req := tripAt(at(17, 30))
	req.DistanceKm = &distance

	quote, err := h.booking.Quote(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// (4 + 315) * 1.15 for the evening peak
	if math.Abs(quote.Fare.Total-366.85) > 1e-6 {
		t.Errorf("expected total 366.85, got %f", quote.Fare.Total)
	}
	if len(quote.Fare.Surcharges) != 1 || quote.Fare.Surcharges[0].Label != "evening peak" {
		t.Errorf("expected evening peak surcharge, got %+v", quote.Fare.Surcharges)
	}
	if h.bookingRepo.CreateCallCount != 0 {
		t.Errorf("expected no booking to be created, got %d", h.bookingRepo.CreateCallCount)
	}
	if h.lock.AcquireCount != 0 {
		t.Errorf("expected quote not to take the vehicle lock, got %d", h.lock.AcquireCount)
	}
}

func TestBooking_CoordinateOnlyPlacesGetLabels(t *testing.T) {
	t.Parallel()

	h := newHarness()
	ctx := context.Background()

	req := tripAt(at(10, 0))
	req.Pickup = domain.Place{Coords: &domain.LatLng{Lat: -20.16, Lng: 57.5}}

	result, err := h.booking.Book(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Booking.Pickup.Label != "Near -20.16000, 57.50000" {
		t.Errorf("unexpected pickup label %q", result.Booking.Pickup.Label)
	}
	if result.Booking.Dropoff.Label != "Grand Baie" {
		t.Errorf("expected dropoff label to be kept, got %q", result.Booking.Dropoff.Label)
	}
}

func TestBooking_ListByStatus(t *testing.T) {
	t.Parallel()

	h := newHarness()
	ctx := context.Background()

	a, _ := h.booking.Book(ctx, tripAt(at(10, 0)))
	if _, err := h.booking.Book(ctx, tripAt(at(12, 0))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := h.lifecycle.Accept(ctx, a.Booking.ID); err != nil {
		t.Fatalf("unexpected error accepting: %v", err)
	}

	accepted, err := h.booking.List(ctx, "ACCEPTED")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(accepted) != 1 || accepted[0].ID != a.Booking.ID {
		t.Errorf("expected only %s accepted, got %d bookings", a.Booking.ID, len(accepted))
	}

	all, err := h.booking.List(ctx, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 bookings, got %d", len(all))
	}

	if _, err := h.booking.List(ctx, "completed"); !errors.Is(err, service.ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}

	mine, err := h.booking.ListByContact(ctx, customerContact)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("expected 2 bookings for requester, got %d", len(mine))
	}
}

func boolPtr(b bool) *bool { return &b }

func TestBooking_PickupETA(t *testing.T) {
	t.Parallel()

	h := newHarness()
	ctx := context.Background()

	pending := pendingBooking("p", at(14, 0), at(15, 0))
	h.bookingRepo.AddBooking(pending)

	if _, err := h.booking.PickupETA(ctx, "p"); !errors.Is(err, service.ErrNotAccepted) {
		t.Fatalf("expected ErrNotAccepted, got %v", err)
	}
	if _, err := h.booking.PickupETA(ctx, "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := h.lifecycle.Accept(ctx, "p"); err != nil {
		t.Fatalf("unexpected error accepting: %v", err)
	}

	before := time.Now()
	eta, err := h.booking.PickupETA(ctx, "p")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	after := time.Now()

	if eta.Minutes != 7 {
		t.Errorf("expected 7 minutes, got %d", eta.Minutes)
	}
	if eta.ArrivalAt.Before(before.Add(7*time.Minute)) || eta.ArrivalAt.After(after.Add(7*time.Minute)) {
		t.Errorf("arrival %s not now + 7 minutes", eta.ArrivalAt)
	}
}
