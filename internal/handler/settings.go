package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shuttle/internal/domain"
	"shuttle/internal/service"
)

// SettingsHandler handles HTTP requests for the tariff.
type SettingsHandler struct {
	settingsService *service.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// PeakWindowBody is a peak window in a request or response body.
type PeakWindowBody struct {
	Label   string  `json:"label"`
	Start   string  `json:"start"`
	End     string  `json:"end"`
	Percent float64 `json:"percent"`
}

// TariffResponse is the HTTP response for the tariff.
type TariffResponse struct {
	Currency              string           `json:"currency"`
	BaseFare              float64          `json:"base_fare"`
	PerKm                 float64          `json:"per_km"`
	WaitingPerMinute      float64          `json:"waiting_per_minute"`
	WaitingFreeMinutes    float64          `json:"waiting_free_minutes"`
	ExtraPassengerFee     float64          `json:"extra_passenger_fee"`
	ExtraPassengerPercent float64          `json:"extra_passenger_percent"`
	IncludedPassengers    int              `json:"included_passengers"`
	MaxPassengers         int              `json:"max_passengers"`
	ReturnTripMultiplier  float64          `json:"return_trip_multiplier"`
	NightPercent          float64          `json:"night_percent"`
	WeekendPercent        float64          `json:"weekend_percent"`
	HolidayPercent        float64          `json:"holiday_percent"`
	PeakWindows           []PeakWindowBody `json:"peak_windows"`
	Holidays              []string         `json:"holidays"`
	UnavailableStart      string           `json:"unavailable_start"`
	UnavailableEnd        string           `json:"unavailable_end"`
	Unavailable           bool             `json:"unavailable"`
}

// UpdateTariffRequest is the HTTP request body for a partial tariff update.
type UpdateTariffRequest struct {
	Currency              *string          `json:"currency"`
	BaseFare              *float64         `json:"base_fare"`
	PerKm                 *float64         `json:"per_km"`
	WaitingPerMinute      *float64         `json:"waiting_per_minute"`
	WaitingFreeMinutes    *float64         `json:"waiting_free_minutes"`
	ExtraPassengerFee     *float64         `json:"extra_passenger_fee"`
	ExtraPassengerPercent *float64         `json:"extra_passenger_percent"`
	IncludedPassengers    *int             `json:"included_passengers"`
	MaxPassengers         *int             `json:"max_passengers"`
	ReturnTripMultiplier  *float64         `json:"return_trip_multiplier"`
	NightPercent          *float64         `json:"night_percent"`
	WeekendPercent        *float64         `json:"weekend_percent"`
	HolidayPercent        *float64         `json:"holiday_percent"`
	PeakWindows           []PeakWindowBody `json:"peak_windows"`
	Holidays              []string         `json:"holidays"`
	UnavailableStart      *string          `json:"unavailable_start"`
	UnavailableEnd        *string          `json:"unavailable_end"`
	Unavailable           *bool            `json:"unavailable"`
}

func newTariffResponse(t domain.Tariff) TariffResponse {
	peaks := make([]PeakWindowBody, 0, len(t.PeakWindows))
	for _, w := range t.PeakWindows {
		peaks = append(peaks, PeakWindowBody{Label: w.Label, Start: w.Start.String(), End: w.End.String(), Percent: w.Percent})
	}
	holidays := t.Holidays
	if holidays == nil {
		holidays = []string{}
	}
	return TariffResponse{
		Currency:              t.Currency,
		BaseFare:              t.BaseFare,
		PerKm:                 t.PerKm,
		WaitingPerMinute:      t.WaitingPerMinute,
		WaitingFreeMinutes:    t.WaitingFreeMinutes,
		ExtraPassengerFee:     t.ExtraPassengerFee,
		ExtraPassengerPercent: t.ExtraPassengerPercent,
		IncludedPassengers:    t.IncludedPassengers,
		MaxPassengers:         t.MaxPassengers,
		ReturnTripMultiplier:  t.ReturnTripMultiplier,
		NightPercent:          t.NightPercent,
		WeekendPercent:        t.WeekendPercent,
		HolidayPercent:        t.HolidayPercent,
		PeakWindows:           peaks,
		Holidays:              holidays,
		UnavailableStart:      t.UnavailableStart.String(),
		UnavailableEnd:        t.UnavailableEnd.String(),
		Unavailable:           t.Unavailable,
	}
}

func (r UpdateTariffRequest) toPatch() (domain.TariffPatch, error) {
	patch := domain.TariffPatch{
		Currency:              r.Currency,
		BaseFare:              r.BaseFare,
		PerKm:                 r.PerKm,
		WaitingPerMinute:      r.WaitingPerMinute,
		WaitingFreeMinutes:    r.WaitingFreeMinutes,
		ExtraPassengerFee:     r.ExtraPassengerFee,
		ExtraPassengerPercent: r.ExtraPassengerPercent,
		IncludedPassengers:    r.IncludedPassengers,
		MaxPassengers:         r.MaxPassengers,
		ReturnTripMultiplier:  r.ReturnTripMultiplier,
		NightPercent:          r.NightPercent,
		WeekendPercent:        r.WeekendPercent,
		HolidayPercent:        r.HolidayPercent,
		Holidays:              r.Holidays,
		Unavailable:           r.Unavailable,
	}

	if r.PeakWindows != nil {
		patch.PeakWindows = make([]domain.PeakWindow, 0, len(r.PeakWindows))
		for _, w := range r.PeakWindows {
			start, err := domain.ParseClock(w.Start)
			if err != nil {
				return patch, err
			}
			end, err := domain.ParseClock(w.End)
			if err != nil {
				return patch, err
			}
			patch.PeakWindows = append(patch.PeakWindows, domain.PeakWindow{Label: w.Label, Start: start, End: end, Percent: w.Percent})
		}
	}

	if r.UnavailableStart != nil {
		c, err := domain.ParseClock(*r.UnavailableStart)
		if err != nil {
			return patch, err
		}
		patch.UnavailableStart = &c
	}
	if r.UnavailableEnd != nil {
		c, err := domain.ParseClock(*r.UnavailableEnd)
		if err != nil {
			return patch, err
		}
		patch.UnavailableEnd = &c
	}
	return patch, nil
}

// GetTariff handles GET /v1/settings/tariff
func (h *SettingsHandler) GetTariff(c *gin.Context) {
	tariff, err := h.settingsService.Tariff(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newTariffResponse(tariff))
}

// UpdateTariff handles PATCH /v1/settings/tariff
func (h *SettingsHandler) UpdateTariff(c *gin.Context) {
	var req UpdateTariffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	patch, err := req.toPatch()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	tariff, err := h.settingsService.UpdateTariff(c.Request.Context(), patch)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newTariffResponse(tariff))
}
