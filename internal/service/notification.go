package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shuttle/internal/domain"
	"shuttle/internal/metrics"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationBookingRequested NotificationType = "BOOKING_REQUESTED"
	NotificationBookingAccepted  NotificationType = "BOOKING_ACCEPTED"
	NotificationBookingDeclined  NotificationType = "BOOKING_DECLINED"
)

// Notification represents a notification to be sent.
type Notification struct {
	ID        string
	Type      NotificationType
	Recipient string
	BookingID string
	Message   string
	CreatedAt time.Time
}

// Sender delivers a text message to a contact.
type Sender interface {
	Send(ctx context.Context, recipient, body string) error
}

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	Logger *zap.Logger
}

// Send logs the message.
func (s LogSender) Send(ctx context.Context, recipient, body string) error {
	s.Logger.Info("outbound message", zap.String("recipient", recipient), zap.String("body", body))
	return nil
}

// NotificationService handles notification delivery. Delivery failures are
// logged and counted; callers never block on them.
type NotificationService struct {
	sender        Sender
	publicBaseURL string
	logger        *zap.Logger
	timeout       time.Duration
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(sender Sender, publicBaseURL string, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sender == nil {
		sender = LogSender{Logger: logger}
	}
	return &NotificationService{
		sender:        sender,
		publicBaseURL: publicBaseURL,
		logger:        logger,
		timeout:       5 * time.Second,
	}
}

// NotifyBookingRequested sends the driver a summary of a new booking.
func (s *NotificationService) NotifyBookingRequested(ctx context.Context, driverContact string, b *domain.Booking, fare domain.FareBreakdown, loc *time.Location) error {
	if driverContact == "" {
		return nil // No driver channel configured
	}
	return s.send(ctx, Notification{
		Type:      NotificationBookingRequested,
		Recipient: driverContact,
		BookingID: b.ID,
		Message:   DriverRequestMessage(b, fare, loc),
	})
}

// NotifyBookingAccepted tells the requester the booking is confirmed.
func (s *NotificationService) NotifyBookingAccepted(ctx context.Context, b *domain.Booking) error {
	return s.send(ctx, Notification{
		Type:      NotificationBookingAccepted,
		Recipient: b.RequesterContact,
		BookingID: b.ID,
		Message:   AcceptedMessage(b, s.publicBaseURL),
	})
}

// NotifyBookingDeclined tells the requester the booking was declined.
func (s *NotificationService) NotifyBookingDeclined(ctx context.Context, b *domain.Booking) error {
	return s.send(ctx, Notification{
		Type:      NotificationBookingDeclined,
		Recipient: b.RequesterContact,
		BookingID: b.ID,
		Message:   DeclinedMessage(b),
	})
}

// send delivers a notification once. Failures are not retried.
func (s *NotificationService) send(ctx context.Context, n Notification) error {
	if n.Recipient == "" {
		return nil
	}
	n.ID = uuid.New().String()
	n.CreatedAt = time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.sender.Send(ctx, n.Recipient, n.Message); err != nil {
		metrics.NotificationFailures.Inc()
		s.logger.Warn("notification failed",
			zap.String("type", string(n.Type)),
			zap.String("booking_id", n.BookingID),
			zap.Error(err))
		return err
	}

	s.logger.Debug("notification sent",
		zap.String("id", n.ID),
		zap.String("type", string(n.Type)),
		zap.String("booking_id", n.BookingID))
	return nil
}
