package tests

import (
	"time"

	"shuttle/internal/domain"
	"shuttle/internal/service"
)

const (
	driverContact   = "+23057000000"
	customerContact = "+23058000000"
	publicBaseURL   = "https://shuttle.example"
)

// harness wires the services against in-memory mocks.
type harness struct {
	bookingRepo  *MockBookingRepository
	settingsRepo *MockSettingsRepository
	locationRepo *MockLocationRepository
	cache        *MockTariffCache
	lock         *MockVehicleLock
	sender       *MockSender
	planner      *MockPlanner

	settings  *service.SettingsService
	booking   *service.BookingService
	lifecycle *service.LifecycleService
	driver    *service.DriverService
	inbound   *service.InboundService
}

func newHarness() *harness {
	h := &harness{
		bookingRepo:  NewMockBookingRepository(),
		settingsRepo: NewMockSettingsRepository(),
		locationRepo: NewMockLocationRepository(),
		cache:        NewMockTariffCache(),
		lock:         NewMockVehicleLock(),
		sender:       NewMockSender(),
		planner:      &MockPlanner{DistanceKm: 10, TravelMinutes: 60, PickupMins: 7},
	}

	cfg := service.BookingConfig{DriverContact: driverContact, Location: time.UTC}
	guard := service.NewScheduleGuard(h.lock)
	notifications := service.NewNotificationService(h.sender, publicBaseURL, nil)

	h.settings = service.NewSettingsService(h.settingsRepo, h.cache, testTariff(), nil)
	h.booking = service.NewBookingService(h.bookingRepo, h.locationRepo, h.settings, h.planner, guard, notifications, cfg, nil)
	h.lifecycle = service.NewLifecycleService(h.bookingRepo, guard, notifications, nil)
	h.driver = service.NewDriverService(h.locationRepo, h.bookingRepo)
	h.inbound = service.NewInboundService(h.booking, h.lifecycle, h.driver, cfg, nil)
	return h
}

func testTariff() domain.Tariff {
	return domain.Tariff{
		Currency:             "MUR",
		BaseFare:             4,
		PerKm:                90,
		WaitingPerMinute:     0.5,
		WaitingFreeMinutes:   3,
		ExtraPassengerFee:    2,
		IncludedPassengers:   2,
		MaxPassengers:        4,
		ReturnTripMultiplier: 2,
		NightPercent:         20,
		WeekendPercent:       10,
		HolidayPercent:       25,
		PeakWindows: []domain.PeakWindow{
			{Label: "morning peak", Start: domain.MustParseClock("07:00"), End: domain.MustParseClock("09:00"), Percent: 15},
			{Label: "evening peak", Start: domain.MustParseClock("17:00"), End: domain.MustParseClock("19:00"), Percent: 15},
		},
		Holidays:         []string{"2026-12-25"},
		UnavailableStart: domain.MustParseClock("20:00"),
		UnavailableEnd:   domain.MustParseClock("06:00"),
	}
}

// at returns 2026-03-10 (a Tuesday) at hh:mm UTC.
func at(hh, mm int) time.Time {
	return time.Date(2026, 3, 10, hh, mm, 0, 0, time.UTC)
}

func tripAt(start time.Time) domain.TripRequest {
	return domain.TripRequest{
		Pickup:           domain.Place{Label: "Port Louis"},
		Dropoff:          domain.Place{Label: "Grand Baie"},
		Start:            start,
		Passengers:       2,
		RequesterContact: customerContact,
	}
}
