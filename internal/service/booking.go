package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shuttle/internal/admission"
	"shuttle/internal/domain"
	"shuttle/internal/metrics"
	"shuttle/internal/pricing"
	"shuttle/internal/repository"
	"shuttle/internal/routing"
)

// RoutePlanner resolves trip legs, pickup estimates and place labels.
type RoutePlanner interface {
	TripLeg(ctx context.Context, req domain.TripRequest) routing.Leg
	PickupMinutes(ctx context.Context, driver *domain.DriverLocation, req domain.TripRequest) int
	Label(ctx context.Context, place domain.Place) string
}

// Ensure Planner implements RoutePlanner.
var _ RoutePlanner = (*routing.Planner)(nil)

// BookingConfig holds the booking settings that are not part of the tariff.
type BookingConfig struct {
	DriverContact string
	Location      *time.Location
}

// BookingService prices and admits trip requests.
type BookingService struct {
	bookingRepo         repository.BookingRepository
	locationRepo        repository.DriverLocationRepository
	tariffs             TariffSource
	planner             RoutePlanner
	guard               *ScheduleGuard
	notificationService *NotificationService
	cfg                 BookingConfig
	logger              *zap.Logger
	now                 func() time.Time
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	bookingRepo repository.BookingRepository,
	locationRepo repository.DriverLocationRepository,
	tariffs TariffSource,
	planner RoutePlanner,
	guard *ScheduleGuard,
	notificationService *NotificationService,
	cfg BookingConfig,
	logger *zap.Logger,
) *BookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &BookingService{
		bookingRepo:         bookingRepo,
		locationRepo:        locationRepo,
		tariffs:             tariffs,
		planner:             planner,
		guard:               guard,
		notificationService: notificationService,
		cfg:                 cfg,
		logger:              logger,
		now:                 time.Now,
	}
}

// Quote is a priced trip that has passed the availability and capacity checks.
type Quote struct {
	Request          domain.TripRequest
	Leg              routing.Leg
	PricedDistanceKm float64
	Fare             domain.FareBreakdown
	Window           domain.TimeWindow
	PickupMinutes    int
}

// BookingResult contains the result of creating a booking.
type BookingResult struct {
	Booking *domain.Booking
	Quote   *Quote
}

// Quote prices a trip request and computes its window without creating a booking.
func (s *BookingService) Quote(ctx context.Context, req domain.TripRequest) (*Quote, error) {
	if err := validateTripRequest(req); err != nil {
		return nil, err
	}

	tariff, err := s.tariffs.Tariff(ctx)
	if err != nil {
		return nil, err
	}

	start := req.Start.In(s.cfg.Location)
	req.Start = start

	// Availability and capacity do not depend on the route, so they run
	// before any external lookup.
	if err := admission.CheckAvailability(start, tariff); err != nil {
		return nil, err
	}
	if err := admission.CheckCapacity(req.Passengers, tariff); err != nil {
		return nil, err
	}

	leg := s.planner.TripLeg(ctx, req)
	pickup := s.planner.PickupMinutes(ctx, s.driverLocation(ctx), req)

	distance := leg.DistanceKm
	if req.WaitAndReturn {
		multiplier := tariff.ReturnTripMultiplier
		if multiplier <= 0 {
			multiplier = 1
		}
		distance *= multiplier
	}

	end := admission.WindowEnd(start, leg.TravelMinutes, req.WaitingMinutes, req.WaitAndReturn)
	if end.Equal(start) {
		end = start.Add(time.Minute)
	}

	return &Quote{
		Request:          req,
		Leg:              leg,
		PricedDistanceKm: distance,
		Fare:             pricing.ComputeFare(distance, start, req.Passengers, req.WaitingMinutes, tariff),
		Window:           domain.TimeWindow{Start: start, End: end},
		PickupMinutes:    pickup,
	}, nil
}

// Book admits a trip request and creates a pending booking. The conflict
// check and the insert run inside the schedule guard.
func (s *BookingService) Book(ctx context.Context, req domain.TripRequest) (*BookingResult, error) {
	req.RequesterContact = strings.TrimSpace(req.RequesterContact)
	if req.RequesterContact == "" {
		return nil, ErrInvalidContact
	}

	quote, err := s.Quote(ctx, req)
	if err != nil {
		recordRejection(err)
		return nil, err
	}

	now := s.now()
	booking := &domain.Booking{
		ID:                  uuid.New().String(),
		RequesterContact:    req.RequesterContact,
		RequesterName:       strings.TrimSpace(req.RequesterName),
		Pickup:              s.resolvePlace(ctx, req.Pickup),
		Dropoff:             s.resolvePlace(ctx, req.Dropoff),
		Start:               quote.Window.Start,
		End:                 quote.Window.End,
		Passengers:          req.Passengers,
		WaitingMinutes:      req.WaitingMinutes,
		WaitAndReturn:       req.WaitAndReturn,
		DistanceKm:          quote.PricedDistanceKm,
		FareAmount:          quote.Fare.Total,
		Currency:            quote.Fare.Currency,
		EstimatedPickupMins: quote.PickupMinutes,
		Status:              domain.BookingStatusPending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.admit(ctx, booking); err != nil {
		recordRejection(err)
		return nil, err
	}

	metrics.BookingsAdmitted.Inc()
	s.logger.Info("booking created",
		zap.String("booking_id", booking.ID),
		zap.Time("start", booking.Start),
		zap.Time("end", booking.End),
		zap.Float64("fare", booking.FareAmount),
	)

	if s.notificationService != nil && s.cfg.DriverContact != "" {
		_ = s.notificationService.NotifyBookingRequested(ctx, s.cfg.DriverContact, booking, quote.Fare, s.cfg.Location)
	}

	return &BookingResult{Booking: booking, Quote: quote}, nil
}

func (s *BookingService) admit(ctx context.Context, booking *domain.Booking) error {
	release, err := s.guard.Enter(ctx)
	if err != nil {
		return err
	}
	defer release()

	// Re-read the tariff so a settings change made while routing ran is honoured.
	tariff, err := s.tariffs.Tariff(ctx)
	if err != nil {
		return err
	}

	accepted, err := s.bookingRepo.ListByStatus(ctx, domain.BookingStatusAccepted)
	if err != nil {
		return err
	}

	candidate := admission.Candidate{Window: booking.Window(), Passengers: booking.Passengers}
	if err := admission.Decide(candidate, tariff, accepted); err != nil {
		return err
	}

	return s.bookingRepo.Create(ctx, booking)
}

// Get retrieves a booking by ID.
func (s *BookingService) Get(ctx context.Context, id string) (*domain.Booking, error) {
	if id == "" {
		return nil, ErrInvalidBookingID
	}
	return s.bookingRepo.GetByID(ctx, id)
}

// PickupETA is the live estimate of the driver reaching a booking's pickup.
type PickupETA struct {
	Booking   *domain.Booking
	Minutes   int
	ArrivalAt time.Time
}

// PickupETA estimates when the driver reaches the pickup of an accepted
// booking, starting from the last reported driver position.
func (s *BookingService) PickupETA(ctx context.Context, id string) (*PickupETA, error) {
	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status != domain.BookingStatusAccepted {
		return nil, fmt.Errorf("%w: #%s is %s", ErrNotAccepted, booking.ID, booking.Status)
	}

	req := domain.TripRequest{
		Pickup:     booking.Pickup,
		Dropoff:    booking.Dropoff,
		Start:      booking.Start,
		Passengers: booking.Passengers,
	}
	minutes := s.planner.PickupMinutes(ctx, s.driverLocation(ctx), req)

	return &PickupETA{
		Booking:   booking,
		Minutes:   minutes,
		ArrivalAt: s.now().Add(time.Duration(minutes) * time.Minute),
	}, nil
}

// List returns bookings in the given status. An empty status lists all.
func (s *BookingService) List(ctx context.Context, status string) ([]*domain.Booking, error) {
	var filter domain.BookingStatus
	if status != "" {
		parsed, err := domain.ParseBookingStatus(status)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
		}
		filter = parsed
	}
	return s.bookingRepo.ListByStatus(ctx, filter)
}

// ListByContact returns the bookings of one requester.
func (s *BookingService) ListByContact(ctx context.Context, contact string) ([]*domain.Booking, error) {
	contact = strings.TrimSpace(contact)
	if contact == "" {
		return nil, ErrInvalidContact
	}
	return s.bookingRepo.ListByContact(ctx, contact)
}

func (s *BookingService) driverLocation(ctx context.Context) *domain.DriverLocation {
	if s.locationRepo == nil {
		return nil
	}
	loc, err := s.locationRepo.Get(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("driver location lookup failed", zap.Error(err))
		}
		return nil
	}
	return loc
}

// resolvePlace fills in a label for coordinate-only places.
func (s *BookingService) resolvePlace(ctx context.Context, p domain.Place) domain.Place {
	if strings.TrimSpace(p.Label) != "" || p.Coords == nil {
		return p
	}
	p.Label = s.planner.Label(ctx, p)
	return p
}

func validateTripRequest(req domain.TripRequest) error {
	if missing := req.Missing(); len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}
	for _, p := range []domain.Place{req.Pickup, req.Dropoff} {
		if p.Coords != nil && !p.Coords.Valid() {
			return fmt.Errorf("%w: %s", ErrInvalidLocation, p.Coords)
		}
	}
	if req.WaitingMinutes < 0 || req.WaitingMinutes > domain.MaxWaitingMinutes {
		return fmt.Errorf("%w: must be between 0 and %d minutes", ErrInvalidWaiting, domain.MaxWaitingMinutes)
	}
	for _, d := range []*float64{req.DistanceKm, req.PickupDistanceKm} {
		if d != nil && (*d < 0 || *d > domain.MaxDistanceKm) {
			return fmt.Errorf("%w: must be between 0 and %d km", ErrInvalidDistance, domain.MaxDistanceKm)
		}
	}
	return nil
}

func recordRejection(err error) {
	switch {
	case errors.Is(err, ErrMissingFields):
		metrics.BookingsRejected.WithLabelValues(metrics.ReasonMissingFields).Inc()
	case errors.Is(err, admission.ErrUnavailable):
		metrics.BookingsRejected.WithLabelValues(metrics.ReasonUnavailable).Inc()
	case errors.Is(err, admission.ErrOverCapacity):
		metrics.BookingsRejected.WithLabelValues(metrics.ReasonCapacity).Inc()
	case errors.Is(err, admission.ErrScheduleConflict):
		metrics.BookingsRejected.WithLabelValues(metrics.ReasonConflict).Inc()
	}
}
