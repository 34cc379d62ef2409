package config

import (
	"testing"
	_ "time/tzdata"

	"shuttle/internal/domain"
)

func TestLoad_DefaultTariff(t *testing.T) {
	cfg := Load()

	tariff, err := cfg.Tariff.Tariff()
	if err != nil {
		t.Fatalf("expected default tariff to parse, got %v", err)
	}

	if tariff.Currency != "MUR" || tariff.BaseFare != 4 || tariff.PerKm != 90 {
		t.Errorf("unexpected rates: %+v", tariff)
	}
	if tariff.MaxPassengers != 4 || tariff.IncludedPassengers != 2 {
		t.Errorf("unexpected passenger limits: %+v", tariff)
	}
	if tariff.UnavailableStart != domain.MustParseClock("20:00") || tariff.UnavailableEnd != domain.MustParseClock("06:00") {
		t.Errorf("unexpected blackout window %s-%s", tariff.UnavailableStart, tariff.UnavailableEnd)
	}
	if len(tariff.PeakWindows) != 2 || tariff.PeakWindows[1].Start != domain.MustParseClock("17:00") {
		t.Errorf("unexpected peak windows: %+v", tariff.PeakWindows)
	}
	if len(tariff.Holidays) != 2 {
		t.Errorf("expected 2 holidays, got %v", tariff.Holidays)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("TARIFF_MAX_PASSENGERS", "6")
	t.Setenv("TARIFF_HOLIDAYS", "2026-03-12, 2026-05-01")
	t.Setenv("AVG_SPEED_KMH", "30.5")
	t.Setenv("DRIVER_CONTACT", "whatsapp:+230 5555 0000")
	t.Setenv("PUBLIC_BASE_URL", "https://rides.example.com/")
	t.Setenv("SERVER_PORT", "9090")

	cfg := Load()

	if cfg.Tariff.MaxPassengers != 6 {
		t.Errorf("expected 6 max passengers, got %d", cfg.Tariff.MaxPassengers)
	}
	if len(cfg.Tariff.Holidays) != 2 || cfg.Tariff.Holidays[0] != "2026-03-12" {
		t.Errorf("unexpected holidays: %v", cfg.Tariff.Holidays)
	}
	if cfg.Booking.AvgSpeedKmh != 30.5 {
		t.Errorf("expected 30.5 km/h, got %v", cfg.Booking.AvgSpeedKmh)
	}
	if cfg.Messaging.DriverContact != "+23055550000" {
		t.Errorf("expected normalized contact, got %q", cfg.Messaging.DriverContact)
	}
	if cfg.Messaging.PublicBaseURL != "https://rides.example.com" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.Messaging.PublicBaseURL)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Server.Port)
	}
}

func TestParsePeakWindows_Invalid(t *testing.T) {
	if _, err := ParsePeakWindows("07:00", 15); err == nil {
		t.Error("expected error for window without end")
	}
	if _, err := ParsePeakWindows("7am-9am", 15); err == nil {
		t.Error("expected error for malformed clock")
	}
	got, err := ParsePeakWindows("", 15)
	if err != nil || len(got) != 0 {
		t.Errorf("expected no windows, got %v (%v)", got, err)
	}
}

func TestBookingConfig_Origin(t *testing.T) {
	testCases := []struct {
		raw  string
		want bool
	}{
		{"-20.16,57.50", true},
		{" -20.16 , 57.50 ", true},
		{"", false},
		{"somewhere", false},
		{"120,57", false},
	}
	for _, tc := range testCases {
		got := BookingConfig{DefaultDriverOrigin: tc.raw}.Origin()
		if (got != nil) != tc.want {
			t.Errorf("%q: expected parsed=%v, got %v", tc.raw, tc.want, got)
		}
	}
}

func TestBookingConfig_Location(t *testing.T) {
	loc, err := BookingConfig{Timezone: "Indian/Mauritius"}.Location()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.String() != "Indian/Mauritius" {
		t.Errorf("expected Indian/Mauritius, got %s", loc)
	}

	if _, err := (BookingConfig{Timezone: "Mars/Olympus_Mons"}).Location(); err == nil {
		t.Error("expected error for unknown timezone")
	}
}
