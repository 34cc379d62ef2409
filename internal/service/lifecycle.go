package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"shuttle/internal/admission"
	"shuttle/internal/domain"
	"shuttle/internal/metrics"
	"shuttle/internal/repository"
)

// Decision is a driver's answer to a pending booking.
type Decision string

const (
	DecisionAccept  Decision = "accept"
	DecisionDecline Decision = "decline"
)

// ParseDecision normalises a raw decision value.
func ParseDecision(raw string) (Decision, error) {
	switch d := Decision(strings.ToLower(strings.TrimSpace(raw))); d {
	case DecisionAccept, DecisionDecline:
		return d, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDecision, raw)
	}
}

func (d Decision) target() domain.BookingStatus {
	if d == DecisionAccept {
		return domain.BookingStatusAccepted
	}
	return domain.BookingStatusDeclined
}

// DecisionResult contains the outcome of a driver decision.
type DecisionResult struct {
	Booking *domain.Booking
	Message string
}

// LifecycleService moves bookings out of pending on driver decisions.
type LifecycleService struct {
	bookingRepo         repository.BookingRepository
	guard               *ScheduleGuard
	notificationService *NotificationService
	logger              *zap.Logger
	now                 func() time.Time
}

// NewLifecycleService creates a new LifecycleService.
func NewLifecycleService(
	bookingRepo repository.BookingRepository,
	guard *ScheduleGuard,
	notificationService *NotificationService,
	logger *zap.Logger,
) *LifecycleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LifecycleService{
		bookingRepo:         bookingRepo,
		guard:               guard,
		notificationService: notificationService,
		logger:              logger,
		now:                 time.Now,
	}
}

// Accept confirms a pending booking.
func (s *LifecycleService) Accept(ctx context.Context, bookingID string) (*DecisionResult, error) {
	return s.Decide(ctx, bookingID, string(DecisionAccept))
}

// Decline rejects a pending booking.
func (s *LifecycleService) Decline(ctx context.Context, bookingID string) (*DecisionResult, error) {
	return s.Decide(ctx, bookingID, string(DecisionDecline))
}

// Decide applies a driver decision to a booking and notifies the requester.
// Unknown decisions are rejected before the booking is looked up.
func (s *LifecycleService) Decide(ctx context.Context, bookingID, decision string) (*DecisionResult, error) {
	d, err := ParseDecision(decision)
	if err != nil {
		return nil, err
	}

	bookingID = strings.TrimSpace(bookingID)
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	booking, err := s.transition(ctx, bookingID, d.target())
	if err != nil {
		return nil, err
	}

	metrics.BookingTransitions.WithLabelValues(string(booking.Status)).Inc()
	s.logger.Info("booking decided",
		zap.String("booking_id", booking.ID),
		zap.String("status", string(booking.Status)),
	)

	var message string
	switch d {
	case DecisionAccept:
		if s.notificationService != nil {
			_ = s.notificationService.NotifyBookingAccepted(ctx, booking)
		}
		message = fmt.Sprintf("Accepted booking #%s. Customer notified.", booking.ID)
	default:
		if s.notificationService != nil {
			_ = s.notificationService.NotifyBookingDeclined(ctx, booking)
		}
		message = fmt.Sprintf("Declined booking #%s. Customer notified.", booking.ID)
	}

	return &DecisionResult{Booking: booking, Message: message}, nil
}

func (s *LifecycleService) transition(ctx context.Context, bookingID string, target domain.BookingStatus) (*domain.Booking, error) {
	release, err := s.guard.Enter(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: #%s is already %s", ErrInvalidTransition, booking.ID, booking.Status)
	}
	if !booking.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, booking.Status, target)
	}

	if target == domain.BookingStatusAccepted {
		accepted, err := s.bookingRepo.ListByStatus(ctx, domain.BookingStatusAccepted)
		if err != nil {
			return nil, err
		}
		if other := admission.FindConflict(booking.Window(), accepted, booking.ID); other != nil {
			return nil, &admission.ConflictError{BookingID: other.ID, Start: other.Start, End: other.End}
		}
	}

	now := s.now()
	if err := s.bookingRepo.UpdateStatus(ctx, booking.ID, target, string(target), now); err != nil {
		return nil, err
	}

	booking.Status = target
	booking.DriverResponse = string(target)
	booking.UpdatedAt = now
	return booking, nil
}
