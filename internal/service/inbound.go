package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"shuttle/internal/admission"
	"shuttle/internal/config"
	"shuttle/internal/parser"
	"shuttle/internal/repository"
)

// InboundMessage is a chat message received on the messaging channel.
type InboundMessage struct {
	From string
	Name string
	Body string
}

// InboundService routes chat messages. Messages from the driver contact are
// commands; everything else is a trip request.
type InboundService struct {
	bookingService   *BookingService
	lifecycleService *LifecycleService
	driverService    *DriverService
	driverContact    string
	location         *time.Location
	logger           *zap.Logger
}

// NewInboundService creates a new InboundService.
func NewInboundService(
	bookingService *BookingService,
	lifecycleService *LifecycleService,
	driverService *DriverService,
	cfg BookingConfig,
	logger *zap.Logger,
) *InboundService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &InboundService{
		bookingService:   bookingService,
		lifecycleService: lifecycleService,
		driverService:    driverService,
		driverContact:    config.NormalizeContact(cfg.DriverContact),
		location:         cfg.Location,
		logger:           logger,
	}
}

// Handle processes one message and returns the reply text.
func (s *InboundService) Handle(ctx context.Context, msg InboundMessage) string {
	from := config.NormalizeContact(msg.From)
	if s.driverContact != "" && from == s.driverContact {
		return s.handleDriver(ctx, msg.Body)
	}
	return s.handleCustomer(ctx, from, msg)
}

func (s *InboundService) handleDriver(ctx context.Context, body string) string {
	cmd := parser.ParseDriverCommand(body)

	switch cmd.Kind {
	case parser.CommandLocation:
		if cmd.Position == nil {
			return parser.LocationHelp
		}
		if _, err := s.driverService.UpdateLocation(ctx, *cmd.Position); err != nil {
			s.logger.Error("driver location update failed", zap.Error(err))
			return genericFailureReply
		}
		return "Driver location updated."

	case parser.CommandAccept, parser.CommandDecline:
		decision := DecisionAccept
		if cmd.Kind == parser.CommandDecline {
			decision = DecisionDecline
		}
		result, err := s.lifecycleService.Decide(ctx, cmd.BookingID, string(decision))
		if err != nil {
			return s.decisionFailureReply(cmd.BookingID, err)
		}
		return result.Message

	default:
		return parser.DriverHelp
	}
}

func (s *InboundService) decisionFailureReply(bookingID string, err error) string {
	var conflict *admission.ConflictError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Sprintf("Booking #%s not found.", bookingID)
	case errors.Is(err, ErrInvalidTransition):
		return fmt.Sprintf("Booking #%s was already decided.", bookingID)
	case errors.As(err, &conflict):
		return fmt.Sprintf("Cannot accept #%s: it overlaps accepted booking #%s (%s).",
			bookingID, conflict.BookingID, FormatRange(conflict.Start, conflict.End, s.location))
	case errors.Is(err, ErrScheduleBusy):
		return "Schedule is busy, please resend the command."
	default:
		s.logger.Error("driver decision failed", zap.String("booking_id", bookingID), zap.Error(err))
		return genericFailureReply
	}
}

func (s *InboundService) handleCustomer(ctx context.Context, from string, msg InboundMessage) string {
	parsed := parser.ParseMessage(msg.Body, s.location)
	if !parsed.Complete() {
		return BookingTemplate(parsed.Missing)
	}

	req := parsed.Request
	req.RequesterContact = from
	req.RequesterName = msg.Name

	result, err := s.bookingService.Book(ctx, req)
	if err != nil {
		return s.rejectionReply(err)
	}

	return FareSummary(result.Quote.Fare) +
		fmt.Sprintf(" Estimated pickup in %d minutes. Waiting for driver approval.", result.Booking.EstimatedPickupMins)
}

// rejectionReply turns a booking failure into a message for the requester.
func (s *InboundService) rejectionReply(err error) string {
	var (
		missing     *MissingFieldsError
		unavailable *admission.UnavailableError
		capacity    *admission.CapacityError
		conflict    *admission.ConflictError
	)
	switch {
	case errors.As(err, &missing):
		return BookingTemplate(missing.Fields)
	case errors.As(err, &unavailable):
		if unavailable.Global {
			return "Sorry, the driver is currently unavailable. Please try again later."
		}
		return UnavailableMessage(unavailable.Start, unavailable.End)
	case errors.As(err, &capacity):
		return CapacityMessage(capacity.Max)
	case errors.As(err, &conflict):
		return ConflictMessage(conflict.Start, conflict.End, s.location)
	case errors.Is(err, ErrInvalidLocation), errors.Is(err, ErrInvalidWaiting), errors.Is(err, ErrInvalidDistance):
		return fmt.Sprintf("Sorry, %v. Please correct it and resend.", err)
	case errors.Is(err, ErrScheduleBusy):
		return "Sorry, we are processing another request. Please resend in a moment."
	default:
		s.logger.Error("booking request failed", zap.Error(err))
		return genericFailureReply
	}
}
