package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shuttle/internal/admission"
	"shuttle/internal/repository"
	"shuttle/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error         string        `json:"error"`
	MissingFields []string      `json:"missing_fields,omitempty"`
	Conflict      *ConflictBody `json:"conflict,omitempty"`
}

// ConflictBody carries the window of the accepted booking that blocks a request.
type ConflictBody struct {
	BookingID string    `json:"booking_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	body := ErrorResponse{Error: err.Error()}

	var (
		missing  *service.MissingFieldsError
		conflict *admission.ConflictError
	)
	if errors.As(err, &missing) {
		body.MissingFields = missing.Fields.Labels()
	}
	if errors.As(err, &conflict) {
		body.Conflict = &ConflictBody{BookingID: conflict.BookingID, Start: conflict.Start, End: conflict.End}
	}

	c.JSON(mapErrorToHTTPStatus(err), body)
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidBookingID),
		errors.Is(err, service.ErrInvalidDecision),
		errors.Is(err, service.ErrMissingFields),
		errors.Is(err, service.ErrInvalidLocation),
		errors.Is(err, service.ErrInvalidWaiting),
		errors.Is(err, service.ErrInvalidDistance),
		errors.Is(err, service.ErrInvalidContact),
		errors.Is(err, service.ErrInvalidTariff),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, admission.ErrOverCapacity),
		errors.Is(err, admission.ErrUnavailable):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, admission.ErrScheduleConflict),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrNotAccepted):
		return http.StatusConflict

	// Service unavailable
	case errors.Is(err, service.ErrScheduleBusy):
		return http.StatusServiceUnavailable

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
