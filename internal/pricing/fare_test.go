package pricing_test

import (
	"math"
	"testing"
	"time"

	"shuttle/internal/domain"
	"shuttle/internal/pricing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func nightTariff() domain.Tariff {
	return domain.Tariff{
		Currency:           "MUR",
		BaseFare:           4,
		PerKm:              90,
		WaitingPerMinute:   0.35,
		WaitingFreeMinutes: 3,
		IncludedPassengers: 2,
		ExtraPassengerFee:  2,
		MaxPassengers:      4,
		NightPercent:       20,
	}
}

func TestComputeFare_NightScenario(t *testing.T) {
	t.Parallel()

	// Thursday, 22:00 local.
	at := time.Date(2026, 2, 5, 22, 0, 0, 0, time.UTC)
	fare := pricing.ComputeFare(10, at, 3, 5, nightTariff())

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"distance", fare.DistanceCost, 900},
		{"waiting", fare.WaitingCost, 0.7},
		{"passengers", fare.PassengerCost, 2},
		{"subtotal", fare.Subtotal, 906.7},
		{"surcharge", fare.SurchargeAmount, 181.34},
		{"total", fare.Total, 1088.04},
	}
	for _, c := range checks {
		if !almostEqual(c.got, c.want) {
			t.Errorf("%s: expected %.4f, got %.4f", c.name, c.want, c.got)
		}
	}

	if len(fare.Surcharges) != 1 || fare.Surcharges[0].Label != pricing.SurchargeNight {
		t.Errorf("expected only night surcharge, got %+v", fare.Surcharges)
	}
	if fare.Currency != "MUR" {
		t.Errorf("expected currency MUR, got %s", fare.Currency)
	}
}

func TestComputeFare_SurchargesAreAdditiveOnSubtotal(t *testing.T) {
	t.Parallel()

	tariff := nightTariff()
	tariff.WeekendPercent = 10
	tariff.HolidayPercent = 25
	tariff.Holidays = []string{"2026-12-26"}
	tariff.PeakWindows = []domain.PeakWindow{
		{Label: "evening", Start: domain.MustParseClock("20:00"), End: domain.MustParseClock("23:00"), Percent: 15},
		{Label: "late", Start: domain.MustParseClock("21:00"), End: domain.MustParseClock("23:59"), Percent: 50},
	}

	// Saturday 2026-12-26 21:30: night, weekend, holiday, first peak window.
	at := time.Date(2026, 12, 26, 21, 30, 0, 0, time.UTC)
	fare := pricing.ComputeFare(2, at, 1, 0, tariff)

	if len(fare.Surcharges) != 4 {
		t.Fatalf("expected 4 surcharges, got %+v", fare.Surcharges)
	}

	var sum float64
	for _, s := range fare.Surcharges {
		sum += fare.Subtotal * s.Percent / 100
		if s.Label == "late" {
			t.Error("expected only the first matching peak window to apply")
		}
	}
	if !almostEqual(fare.SurchargeAmount, sum) {
		t.Errorf("expected surcharge %.4f, got %.4f", sum, fare.SurchargeAmount)
	}
	if !almostEqual(fare.SurchargeAmount, fare.Subtotal*0.70) {
		t.Errorf("expected 70%% of subtotal, got %.4f", fare.SurchargeAmount)
	}
	if !almostEqual(fare.Total, fare.Base+fare.DistanceCost+fare.WaitingCost+fare.PassengerCost+fare.SurchargeAmount) {
		t.Error("expected total to equal the sum of its components")
	}
}

func TestComputeFare_WaitingWithinAllowanceIsFree(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 2, 5, 12, 0, 0, 0, time.UTC)
	for _, minutes := range []int{0, 1, 3} {
		fare := pricing.ComputeFare(1, at, 1, minutes, nightTariff())
		if fare.WaitingCost != 0 {
			t.Errorf("waiting %d: expected zero waiting cost, got %.4f", minutes, fare.WaitingCost)
		}
	}
}

func TestComputeFare_PassengerPricing(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 2, 5, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name       string
		percent    float64
		passengers int
		want       float64
	}{
		{name: "within included", passengers: 2, want: 0},
		{name: "flat fee per extra", passengers: 4, want: 4},
		{name: "percentage mode wins", percent: 10, passengers: 3, want: (4 + 90) * 0.10},
		{name: "percentage mode within included", percent: 10, passengers: 1, want: 0},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tariff := nightTariff()
			tariff.ExtraPassengerPercent = tc.percent
			fare := pricing.ComputeFare(1, at, tc.passengers, 0, tariff)
			if !almostEqual(fare.PassengerCost, tc.want) {
				t.Errorf("expected passenger cost %.4f, got %.4f", tc.want, fare.PassengerCost)
			}
		})
	}
}

func TestSurcharges_PeakBoundsInclusiveAndZeroSkipped(t *testing.T) {
	t.Parallel()

	tariff := domain.Tariff{
		WeekendPercent: 0,
		PeakWindows: []domain.PeakWindow{
			{Start: domain.MustParseClock("07:00"), End: domain.MustParseClock("09:00"), Percent: 15},
		},
	}

	testCases := []struct {
		name string
		at   time.Time
		want int
	}{
		{"at start", time.Date(2026, 2, 7, 7, 0, 0, 0, time.UTC), 1},
		{"at end", time.Date(2026, 2, 7, 9, 0, 0, 0, time.UTC), 1},
		{"after end", time.Date(2026, 2, 7, 9, 1, 0, 0, time.UTC), 0},
	}
	for _, tc := range testCases {
		got := pricing.Surcharges(tc.at, tariff)
		if len(got) != tc.want {
			t.Errorf("%s: expected %d surcharges, got %+v", tc.name, tc.want, got)
		}
	}
}

func TestSurcharges_UseLocalTime(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("MUT", 4*3600)
	// 17:00 UTC is 21:00 in UTC+4.
	at := time.Date(2026, 2, 5, 17, 0, 0, 0, time.UTC).In(loc)
	got := pricing.Surcharges(at, domain.Tariff{NightPercent: 20})
	if len(got) != 1 {
		t.Errorf("expected night surcharge in local time, got %+v", got)
	}
}

func TestEstimator_Minutes(t *testing.T) {
	t.Parallel()

	pickup := pricing.NewPickupEstimator(25, 1.2, 3)
	travel := pricing.NewTravelEstimator(25, 5)

	testCases := []struct {
		name string
		est  pricing.Estimator
		km   float64
		want int
	}{
		{"pickup default distance", pickup, 5, 14},
		{"pickup short hop floors", pickup, 0.2, 3},
		{"pickup zero distance floors", pickup, 0, 3},
		{"travel ten km", travel, 10, 24},
		{"travel short hop floors", travel, 1, 5},
	}
	for _, tc := range testCases {
		if got := tc.est.Minutes(tc.km); got != tc.want {
			t.Errorf("%s: expected %d, got %d", tc.name, tc.want, got)
		}
	}
}
