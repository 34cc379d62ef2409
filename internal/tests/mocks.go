package tests

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"shuttle/internal/domain"
	"shuttle/internal/redis"
	"shuttle/internal/repository"
	"shuttle/internal/routing"
)

// ──────────────────────────────────────────────
// MOCK BOOKING REPOSITORY
// ──────────────────────────────────────────────

// MockBookingRepository is a mock implementation of BookingRepository.
type MockBookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]*domain.Booking

	// Counters for verification
	CreateCallCount       int32
	UpdateStatusCallCount int32

	// Error injection
	CreateError       error
	ListError         error
	UpdateStatusError error

	// ListDelay widens the window between reading the schedule and writing to it.
	ListDelay time.Duration
}

// NewMockBookingRepository creates a new mock booking repository.
func NewMockBookingRepository() *MockBookingRepository {
	return &MockBookingRepository{
		bookings: make(map[string]*domain.Booking),
	}
}

// AddBooking adds a booking to the mock repository.
func (m *MockBookingRepository) AddBooking(booking *domain.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[booking.ID] = booking
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *booking
	m.bookings[booking.ID] = &copy
	return nil
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	booking, ok := m.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *booking
	return &copy, nil
}

func (m *MockBookingRepository) ListByStatus(ctx context.Context, status domain.BookingStatus) ([]*domain.Booking, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	if m.ListDelay > 0 {
		time.Sleep(m.ListDelay)
	}
	return m.filter(func(b *domain.Booking) bool {
		return status == "" || b.Status == status
	}), nil
}

func (m *MockBookingRepository) ListByContact(ctx context.Context, contact string) ([]*domain.Booking, error) {
	result := m.filter(func(b *domain.Booking) bool { return b.RequesterContact == contact })
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *MockBookingRepository) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus, driverResponse string, at time.Time) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	booking, ok := m.bookings[id]
	if !ok {
		return repository.ErrNotFound
	}
	booking.Status = status
	booking.DriverResponse = driverResponse
	booking.UpdatedAt = at
	return nil
}

func (m *MockBookingRepository) filter(keep func(*domain.Booking) bool) []*domain.Booking {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Booking, 0, len(m.bookings))
	for _, b := range m.bookings {
		if keep(b) {
			copy := *b
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Start.Before(result[j].Start) })
	return result
}

// GetBooking returns booking for test assertions.
func (m *MockBookingRepository) GetBooking(id string) *domain.Booking {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bookings[id]
}

// CountBookings returns the number of stored bookings.
func (m *MockBookingRepository) CountBookings() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.bookings)
}

// ──────────────────────────────────────────────
// MOCK SETTINGS REPOSITORY
// ──────────────────────────────────────────────

// MockSettingsRepository is a mock implementation of SettingsRepository.
type MockSettingsRepository struct {
	mu     sync.RWMutex
	tariff *domain.Tariff

	SaveCallCount int32
	GetError      error
	SaveError     error
}

// NewMockSettingsRepository creates a new mock settings repository.
func NewMockSettingsRepository() *MockSettingsRepository {
	return &MockSettingsRepository{}
}

func (m *MockSettingsRepository) GetTariff(ctx context.Context) (*domain.Tariff, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.tariff == nil {
		return nil, repository.ErrNotFound
	}
	copy := *m.tariff
	return &copy, nil
}

func (m *MockSettingsRepository) SaveTariff(ctx context.Context, tariff domain.Tariff) error {
	atomic.AddInt32(&m.SaveCallCount, 1)
	if m.SaveError != nil {
		return m.SaveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tariff = &tariff
	return nil
}

// ──────────────────────────────────────────────
// MOCK DRIVER LOCATION REPOSITORY
// ──────────────────────────────────────────────

// MockLocationRepository is a mock implementation of DriverLocationRepository.
type MockLocationRepository struct {
	mu       sync.RWMutex
	location *domain.DriverLocation

	SetError error
}

// NewMockLocationRepository creates a new mock location repository.
func NewMockLocationRepository() *MockLocationRepository {
	return &MockLocationRepository{}
}

func (m *MockLocationRepository) Set(ctx context.Context, position domain.LatLng, at time.Time) error {
	if m.SetError != nil {
		return m.SetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.location = &domain.DriverLocation{Position: position, UpdatedAt: at}
	return nil
}

func (m *MockLocationRepository) Get(ctx context.Context) (*domain.DriverLocation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.location == nil {
		return nil, repository.ErrNotFound
	}
	copy := *m.location
	return &copy, nil
}

// ──────────────────────────────────────────────
// MOCK TARIFF CACHE
// ──────────────────────────────────────────────

// MockTariffCache is an in-memory TariffCache.
type MockTariffCache struct {
	mu     sync.Mutex
	tariff *domain.Tariff

	InvalidateCallCount int32
}

// NewMockTariffCache creates a new mock tariff cache.
func NewMockTariffCache() *MockTariffCache {
	return &MockTariffCache{}
}

func (m *MockTariffCache) GetTariff(ctx context.Context) (*domain.Tariff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tariff == nil {
		return nil, nil
	}
	copy := *m.tariff
	return &copy, nil
}

func (m *MockTariffCache) SetTariff(ctx context.Context, tariff domain.Tariff) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tariff = &tariff
	return nil
}

func (m *MockTariffCache) InvalidateTariff(ctx context.Context) error {
	atomic.AddInt32(&m.InvalidateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tariff = nil
	return nil
}

// Cached reports whether a tariff is currently cached.
func (m *MockTariffCache) Cached() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tariff != nil
}

// ──────────────────────────────────────────────
// MOCK VEHICLE LOCK
// ──────────────────────────────────────────────

// MockVehicleLock is an in-memory VehicleLocker that counts acquisitions.
type MockVehicleLock struct {
	mu           sync.Mutex
	AcquireCount int32
	AcquireError error
}

// NewMockVehicleLock creates a new mock vehicle lock.
func NewMockVehicleLock() *MockVehicleLock {
	return &MockVehicleLock{}
}

func (m *MockVehicleLock) Acquire(ctx context.Context) (func(), error) {
	atomic.AddInt32(&m.AcquireCount, 1)
	if m.AcquireError != nil {
		return nil, m.AcquireError
	}
	m.mu.Lock()
	return m.mu.Unlock, nil
}

// ──────────────────────────────────────────────
// MOCK SENDER
// ──────────────────────────────────────────────

// SentMessage is a message captured by MockSender.
type SentMessage struct {
	Recipient string
	Body      string
}

// MockSender records outbound messages.
type MockSender struct {
	mu       sync.Mutex
	messages []SentMessage

	SendError error
}

// NewMockSender creates a new mock sender.
func NewMockSender() *MockSender {
	return &MockSender{}
}

func (m *MockSender) Send(ctx context.Context, recipient, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, SentMessage{Recipient: recipient, Body: body})
	return m.SendError
}

// Messages returns the messages sent so far.
func (m *MockSender) Messages() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMessage(nil), m.messages...)
}

// MessagesTo returns the messages sent to recipient.
func (m *MockSender) MessagesTo(recipient string) []SentMessage {
	var out []SentMessage
	for _, msg := range m.Messages() {
		if msg.Recipient == recipient {
			out = append(out, msg)
		}
	}
	return out
}

// ──────────────────────────────────────────────
// MOCK ROUTE PLANNER
// ──────────────────────────────────────────────

// MockPlanner returns a fixed leg. An explicit distance on the request wins.
type MockPlanner struct {
	DistanceKm    float64
	TravelMinutes int
	PickupMins    int
}

func (m *MockPlanner) TripLeg(ctx context.Context, req domain.TripRequest) routing.Leg {
	if req.DistanceKm != nil {
		return routing.Leg{DistanceKm: *req.DistanceKm, TravelMinutes: m.TravelMinutes, Source: routing.SourceOverride}
	}
	return routing.Leg{DistanceKm: m.DistanceKm, TravelMinutes: m.TravelMinutes, Source: routing.SourceOracle}
}

func (m *MockPlanner) PickupMinutes(ctx context.Context, driver *domain.DriverLocation, req domain.TripRequest) int {
	return m.PickupMins
}

func (m *MockPlanner) Label(ctx context.Context, place domain.Place) string {
	if place.Coords != nil {
		return "Near " + place.Coords.String()
	}
	return place.Label
}

// Ensure mocks implement interfaces.
var (
	_ repository.BookingRepository        = (*MockBookingRepository)(nil)
	_ repository.SettingsRepository       = (*MockSettingsRepository)(nil)
	_ repository.DriverLocationRepository = (*MockLocationRepository)(nil)
	_ redis.TariffCache                   = (*MockTariffCache)(nil)
	_ redis.VehicleLocker                 = (*MockVehicleLock)(nil)
)
