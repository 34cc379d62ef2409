package admission_test

import (
	"errors"
	"testing"
	"time"

	"shuttle/internal/admission"
	"shuttle/internal/domain"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, 2, 5, hour, minute, 0, 0, time.UTC)
}

func window(startH, startM, endH, endM int) domain.TimeWindow {
	return domain.TimeWindow{Start: at(startH, startM), End: at(endH, endM)}
}

func openTariff() domain.Tariff {
	return domain.Tariff{MaxPassengers: 4}
}

func TestInBlackout(t *testing.T) {
	t.Parallel()

	night := [2]domain.ClockTime{domain.MustParseClock("20:00"), domain.MustParseClock("06:00")}
	morning := [2]domain.ClockTime{domain.MustParseClock("09:00"), domain.MustParseClock("10:00")}

	testCases := []struct {
		name   string
		window [2]domain.ClockTime
		at     time.Time
		want   bool
	}{
		{"wrapping rejects late evening", night, at(23, 0), true},
		{"wrapping rejects early morning", night, at(2, 0), true},
		{"wrapping includes start", night, at(20, 0), true},
		{"wrapping excludes end", night, at(6, 0), false},
		{"wrapping admits noon", night, at(12, 0), false},
		{"same day rejects inside", morning, at(9, 30), true},
		{"same day admits before", morning, at(8, 0), false},
		{"same day excludes end", morning, at(10, 0), false},
		{"empty window never matches", [2]domain.ClockTime{600, 600}, at(10, 0), false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := admission.InBlackout(tc.at, tc.window[0], tc.window[1]); got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestTimeWindowOverlap_HalfOpen(t *testing.T) {
	t.Parallel()

	a := window(10, 0, 11, 0)

	testCases := []struct {
		name  string
		other domain.TimeWindow
		want  bool
	}{
		{"adjacent after", window(11, 0, 12, 0), false},
		{"adjacent before", window(9, 0, 10, 0), false},
		{"one minute overlap", window(10, 59, 11, 30), true},
		{"contained", window(10, 15, 10, 45), true},
		{"containing", window(9, 0, 12, 0), true},
	}
	for _, tc := range testCases {
		if got := a.Overlaps(tc.other); got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
		if got := tc.other.Overlaps(a); got != tc.want {
			t.Errorf("%s (reversed): expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestDecide_CheckOrder(t *testing.T) {
	t.Parallel()

	accepted := []*domain.Booking{
		{ID: "a", Status: domain.BookingStatusAccepted, Start: at(14, 0), End: at(15, 0)},
	}

	t.Run("global flag first", func(t *testing.T) {
		tariff := openTariff()
		tariff.Unavailable = true
		err := admission.Decide(admission.Candidate{Window: window(14, 30, 15, 30), Passengers: 9}, tariff, accepted)
		var ue *admission.UnavailableError
		if !errors.As(err, &ue) || !ue.Global {
			t.Fatalf("expected global unavailable error, got %v", err)
		}
	})

	t.Run("blackout before capacity", func(t *testing.T) {
		tariff := openTariff()
		tariff.UnavailableStart = domain.MustParseClock("14:00")
		tariff.UnavailableEnd = domain.MustParseClock("16:00")
		err := admission.Decide(admission.Candidate{Window: window(14, 30, 15, 30), Passengers: 9}, tariff, accepted)
		if !errors.Is(err, admission.ErrUnavailable) {
			t.Fatalf("expected ErrUnavailable, got %v", err)
		}
	})

	t.Run("capacity before conflict", func(t *testing.T) {
		err := admission.Decide(admission.Candidate{Window: window(14, 30, 15, 30), Passengers: 5}, openTariff(), accepted)
		var ce *admission.CapacityError
		if !errors.As(err, &ce) || ce.Max != 4 {
			t.Fatalf("expected capacity error with max 4, got %v", err)
		}
	})

	t.Run("conflict reports accepted window", func(t *testing.T) {
		err := admission.Decide(admission.Candidate{Window: window(14, 30, 15, 30), Passengers: 2}, openTariff(), accepted)
		var ce *admission.ConflictError
		if !errors.As(err, &ce) {
			t.Fatalf("expected conflict error, got %v", err)
		}
		if ce.BookingID != "a" || !ce.Start.Equal(at(14, 0)) || !ce.End.Equal(at(15, 0)) {
			t.Errorf("unexpected conflict details: %+v", ce)
		}
		if !errors.Is(err, admission.ErrScheduleConflict) {
			t.Error("expected conflict error to match ErrScheduleConflict")
		}
	})

	t.Run("admits adjacent window", func(t *testing.T) {
		err := admission.Decide(admission.Candidate{Window: window(15, 0, 16, 0), Passengers: 4}, openTariff(), accepted)
		if err != nil {
			t.Fatalf("expected admission, got %v", err)
		}
	})
}

func TestFindConflict_IgnoresNonAccepted(t *testing.T) {
	t.Parallel()

	bookings := []*domain.Booking{
		{ID: "p", Status: domain.BookingStatusPending, Start: at(14, 0), End: at(15, 0)},
		{ID: "d", Status: domain.BookingStatusDeclined, Start: at(14, 0), End: at(15, 0)},
		{ID: "self", Status: domain.BookingStatusAccepted, Start: at(14, 0), End: at(15, 0)},
	}

	if b := admission.FindConflict(window(14, 0, 15, 0), bookings, "self"); b != nil {
		t.Errorf("expected no conflict, got booking %s", b.ID)
	}
	if b := admission.FindConflict(window(14, 0, 15, 0), bookings, ""); b == nil || b.ID != "self" {
		t.Errorf("expected conflict with accepted booking, got %v", b)
	}
}

func TestWindowEnd(t *testing.T) {
	t.Parallel()

	start := at(14, 0)
	if got := admission.WindowEnd(start, 20, 10, false); !got.Equal(at(14, 30)) {
		t.Errorf("expected 14:30, got %s", got.Format("15:04"))
	}
	if got := admission.WindowEnd(start, 20, 10, true); !got.Equal(at(14, 50)) {
		t.Errorf("expected 14:50 for wait-and-return, got %s", got.Format("15:04"))
	}
}
