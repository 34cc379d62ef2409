package service

import (
	"fmt"
	"strings"
	"time"

	"shuttle/internal/domain"
)

const genericFailureReply = "Sorry, something went wrong. Please try again in a moment."

// FareSummary renders a fare breakdown for the requester.
func FareSummary(f domain.FareBreakdown) string {
	c := f.Currency
	return fmt.Sprintf("Fare estimate: %s %.2f (includes base %s %.2f, distance %s %.2f, waiting %s %.2f, passengers %s %.2f, surcharges %s %.2f).",
		c, f.Total, c, f.Base, c, f.DistanceCost, c, f.WaitingCost, c, f.PassengerCost, c, f.SurchargeAmount)
}

// BookingTemplate explains the expected message format and lists what is missing.
func BookingTemplate(missing domain.MissingFields) string {
	return "Thanks for your message. Please send booking details in this format:\n\n" +
		"Pickup: 123 Main St\n" +
		"Dropoff: 500 Market St\n" +
		"Date: 2026-02-05\n" +
		"Time: 14:30\n" +
		"Passengers: 2\n" +
		"Waiting: 5 (minutes, optional)\n" +
		"Distance: 12 (km, optional)\n" +
		"Pickup_Distance: 4 (km from driver, optional)\n\n" +
		"Missing: " + strings.Join(missing.Labels(), ", ")
}

// DriverRequestMessage summarises a new booking for the driver.
func DriverRequestMessage(b *domain.Booking, f domain.FareBreakdown, loc *time.Location) string {
	lines := []string{
		fmt.Sprintf("New ride request #%s", b.ID),
		fmt.Sprintf("Pickup: %s", b.Pickup.Label),
	}
	if b.Pickup.Coords != nil {
		lines = append(lines, fmt.Sprintf("Pickup GPS: %s", b.Pickup.Coords))
	}
	lines = append(lines, fmt.Sprintf("Dropoff: %s", b.Dropoff.Label))
	if b.Dropoff.Coords != nil {
		lines = append(lines, fmt.Sprintf("Dropoff GPS: %s", b.Dropoff.Coords))
	}
	lines = append(lines,
		fmt.Sprintf("Date/Time: %s", b.Start.In(loc).Format("2006-01-02 15:04")),
		fmt.Sprintf("Passengers: %d", b.Passengers),
		fmt.Sprintf("Waiting: %d min", b.WaitingMinutes),
	)
	if b.WaitAndReturn {
		lines = append(lines, "Return: waiting then back to pickup")
	}
	lines = append(lines,
		fmt.Sprintf("Estimated pickup: %d min", b.EstimatedPickupMins),
		fmt.Sprintf("Fare estimate: %s %.2f", f.Currency, f.Total),
		fmt.Sprintf("Reply: ACCEPT %s or DECLINE %s", b.ID, b.ID),
	)
	return strings.Join(lines, "\n")
}

// AcceptedMessage tells the requester their booking is confirmed.
func AcceptedMessage(b *domain.Booking, publicBaseURL string) string {
	msg := fmt.Sprintf("Your ride request #%s is confirmed. Driver will arrive in about %d minutes.", b.ID, b.EstimatedPickupMins)
	if publicBaseURL != "" {
		msg += fmt.Sprintf(" Track your driver: %s", TrackingURL(publicBaseURL, b.ID))
	}
	return msg
}

// DeclinedMessage tells the requester their booking was declined.
func DeclinedMessage(b *domain.Booking) string {
	return fmt.Sprintf("Sorry, your ride request #%s was declined. Please try another time.", b.ID)
}

// TrackingURL returns the public tracking page of a booking.
func TrackingURL(publicBaseURL, bookingID string) string {
	return fmt.Sprintf("%s/track/%s", publicBaseURL, bookingID)
}

// UnavailableMessage names the blackout window.
func UnavailableMessage(start, end domain.ClockTime) string {
	return fmt.Sprintf("Sorry, the driver is unavailable between %s and %s. Please choose another time.", start, end)
}

// CapacityMessage names the passenger limit.
func CapacityMessage(max int) string {
	return fmt.Sprintf("Sorry, maximum passengers is %d. Please adjust and resend.", max)
}

// ConflictMessage names the accepted window that blocks the request.
func ConflictMessage(start, end time.Time, loc *time.Location) string {
	return fmt.Sprintf("Sorry, that time is not available. Already accepted %s.", FormatRange(start, end, loc))
}

// FormatRange renders a window in the booking timezone.
func FormatRange(start, end time.Time, loc *time.Location) string {
	s, e := start.In(loc), end.In(loc)
	if s.Format("2006-01-02") == e.Format("2006-01-02") {
		return fmt.Sprintf("%s - %s", s.Format("2006-01-02 15:04"), e.Format("15:04"))
	}
	return fmt.Sprintf("%s - %s", s.Format("2006-01-02 15:04"), e.Format("2006-01-02 15:04"))
}
