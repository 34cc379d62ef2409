package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shuttle/internal/domain"
	"shuttle/internal/service"
)

// DriverHandler handles HTTP requests for the vehicle.
type DriverHandler struct {
	driverService *service.DriverService
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(driverService *service.DriverService) *DriverHandler {
	return &DriverHandler{driverService: driverService}
}

// UpdateLocationRequest is the HTTP request body for updating driver location.
type UpdateLocationRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// LocationResponse is the HTTP response for the vehicle position.
type LocationResponse struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StatusResponse is the HTTP response for the vehicle status.
type StatusResponse struct {
	Status  string           `json:"status"`
	Booking *BookingResponse `json:"booking,omitempty"`
}

func newLocationResponse(loc *domain.DriverLocation) LocationResponse {
	return LocationResponse{Lat: loc.Position.Lat, Lng: loc.Position.Lng, UpdatedAt: loc.UpdatedAt}
}

// UpdateLocation handles POST /v1/driver/location
func (h *DriverHandler) UpdateLocation(c *gin.Context) {
	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Lat == nil || req.Lng == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "lat and lng are required"})
		return
	}

	loc, err := h.driverService.UpdateLocation(c.Request.Context(), domain.LatLng{Lat: *req.Lat, Lng: *req.Lng})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newLocationResponse(loc))
}

// GetLocation handles GET /v1/driver/location
func (h *DriverHandler) GetLocation(c *gin.Context) {
	loc, err := h.driverService.Location(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newLocationResponse(loc))
}

// GetStatus handles GET /v1/driver/status
func (h *DriverHandler) GetStatus(c *gin.Context) {
	result, err := h.driverService.Status(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := StatusResponse{Status: string(result.Status)}
	if result.Booking != nil {
		b := newBookingResponse(result.Booking)
		resp.Booking = &b
	}
	respondJSON(c, http.StatusOK, resp)
}

// GetActiveBooking handles GET /v1/driver/active-booking
func (h *DriverHandler) GetActiveBooking(c *gin.Context) {
	booking, err := h.driverService.ActiveBooking(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newBookingResponse(booking))
}
