package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shuttle/internal/domain"
	"shuttle/internal/service"
)

// BookingHandler handles HTTP requests for bookings.
type BookingHandler struct {
	bookingService   *service.BookingService
	lifecycleService *service.LifecycleService
	location         *time.Location
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookingService *service.BookingService, lifecycleService *service.LifecycleService, location *time.Location) *BookingHandler {
	if location == nil {
		location = time.UTC
	}
	return &BookingHandler{
		bookingService:   bookingService,
		lifecycleService: lifecycleService,
		location:         location,
	}
}

// CreateBookingResponse is the HTTP response for creating a booking.
type CreateBookingResponse struct {
	Booking BookingResponse `json:"booking"`
	Fare    FareResponse    `json:"fare"`
	Message string          `json:"message"`
}

// DecisionRequest is the HTTP request body for a driver decision.
type DecisionRequest struct {
	Decision string `json:"decision"`
}

// DecisionResponse is the HTTP response for a driver decision.
type DecisionResponse struct {
	Booking BookingResponse `json:"booking"`
	Message string          `json:"message"`
}

// Create handles POST /v1/bookings
func (h *BookingHandler) Create(c *gin.Context) {
	req, ok := h.bindTrip(c)
	if !ok {
		return
	}

	result, err := h.bookingService.Book(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, CreateBookingResponse{
		Booking: newBookingResponse(result.Booking),
		Fare:    newFareResponse(result.Quote.Fare),
		Message: "Booking submitted. Waiting for driver approval.",
	})
}

// Quote handles POST /v1/quotes
func (h *BookingHandler) Quote(c *gin.Context) {
	req, ok := h.bindTrip(c)
	if !ok {
		return
	}

	quote, err := h.bookingService.Quote(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newQuoteResponse(quote))
}

// Get handles GET /v1/bookings/:id
func (h *BookingHandler) Get(c *gin.Context) {
	booking, err := h.bookingService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newBookingResponse(booking))
}

// List handles GET /v1/bookings?status=
func (h *BookingHandler) List(c *gin.Context) {
	bookings, err := h.bookingService.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newBookingResponses(bookings))
}

// ListByContact handles GET /v1/requesters/:contact/bookings
func (h *BookingHandler) ListByContact(c *gin.Context) {
	bookings, err := h.bookingService.ListByContact(c.Request.Context(), c.Param("contact"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newBookingResponses(bookings))
}

// PickupETA handles GET /v1/bookings/:id/eta and GET /track/:id
func (h *BookingHandler) PickupETA(c *gin.Context) {
	eta, err := h.bookingService.PickupETA(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newPickupETAResponse(eta))
}

// Accept handles POST /v1/bookings/:id/accept
func (h *BookingHandler) Accept(c *gin.Context) {
	h.decide(c, c.Param("id"), "accept")
}

// Decline handles POST /v1/bookings/:id/decline
func (h *BookingHandler) Decline(c *gin.Context) {
	h.decide(c, c.Param("id"), "decline")
}

// Decide handles POST /v1/bookings/:id/decision
func (h *BookingHandler) Decide(c *gin.Context) {
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	h.decide(c, c.Param("id"), req.Decision)
}

func (h *BookingHandler) decide(c *gin.Context, id, decision string) {
	result, err := h.lifecycleService.Decide(c.Request.Context(), id, decision)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, DecisionResponse{
		Booking: newBookingResponse(result.Booking),
		Message: result.Message,
	})
}

func (h *BookingHandler) bindTrip(c *gin.Context) (domain.TripRequest, bool) {
	var body TripRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return domain.TripRequest{}, false
	}

	trip, err := body.toDomain(h.location)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return domain.TripRequest{}, false
	}
	return trip, true
}
