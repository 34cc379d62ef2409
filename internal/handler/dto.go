package handler

import (
	"errors"
	"strings"
	"time"

	"shuttle/internal/domain"
	"shuttle/internal/service"
)

var errInvalidStart = errors.New("invalid start, expected RFC3339 or YYYY-MM-DD HH:MM")

var startLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
}

// PlaceRequest is a pickup or dropoff in a request body.
type PlaceRequest struct {
	Label string   `json:"label"`
	Lat   *float64 `json:"lat,omitempty"`
	Lng   *float64 `json:"lng,omitempty"`
}

func (p PlaceRequest) toDomain() domain.Place {
	place := domain.Place{Label: strings.TrimSpace(p.Label)}
	if p.Lat != nil && p.Lng != nil {
		place.Coords = &domain.LatLng{Lat: *p.Lat, Lng: *p.Lng}
	}
	return place
}

// TripRequestBody is the HTTP request body for quoting or booking a trip.
type TripRequestBody struct {
	RequesterContact string       `json:"requester_contact"`
	RequesterName    string       `json:"requester_name"`
	Pickup           PlaceRequest `json:"pickup"`
	Dropoff          PlaceRequest `json:"dropoff"`
	Start            string       `json:"start"`
	Passengers       int          `json:"passengers"`
	WaitingMinutes   int          `json:"waiting_minutes"`
	DistanceKm       *float64     `json:"distance_km,omitempty"`
	PickupDistanceKm *float64     `json:"pickup_distance_km,omitempty"`
	WaitAndReturn    bool         `json:"wait_and_return"`
}

// toDomain converts the body into a TripRequest. Local start times are
// interpreted in loc; an empty start is left for the missing-field check.
func (b TripRequestBody) toDomain(loc *time.Location) (domain.TripRequest, error) {
	start, err := parseStart(b.Start, loc)
	if err != nil {
		return domain.TripRequest{}, err
	}
	return domain.TripRequest{
		Pickup:           b.Pickup.toDomain(),
		Dropoff:          b.Dropoff.toDomain(),
		Start:            start,
		Passengers:       b.Passengers,
		WaitingMinutes:   b.WaitingMinutes,
		DistanceKm:       b.DistanceKm,
		PickupDistanceKm: b.PickupDistanceKm,
		WaitAndReturn:    b.WaitAndReturn,
		RequesterContact: b.RequesterContact,
		RequesterName:    b.RequesterName,
	}, nil
}

func parseStart(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	for _, layout := range startLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errInvalidStart
}

// PlaceResponse is a pickup or dropoff in a response body.
type PlaceResponse struct {
	Label string   `json:"label"`
	Lat   *float64 `json:"lat,omitempty"`
	Lng   *float64 `json:"lng,omitempty"`
}

func newPlaceResponse(p domain.Place) PlaceResponse {
	resp := PlaceResponse{Label: p.Label}
	if p.Coords != nil {
		lat, lng := p.Coords.Lat, p.Coords.Lng
		resp.Lat, resp.Lng = &lat, &lng
	}
	return resp
}

// BookingResponse is the HTTP response for booking data.
type BookingResponse struct {
	ID                     string        `json:"id"`
	RequesterContact       string        `json:"requester_contact"`
	RequesterName          string        `json:"requester_name,omitempty"`
	Pickup                 PlaceResponse `json:"pickup"`
	Dropoff                PlaceResponse `json:"dropoff"`
	Start                  time.Time     `json:"start"`
	End                    time.Time     `json:"end"`
	Passengers             int           `json:"passengers"`
	WaitingMinutes         int           `json:"waiting_minutes"`
	WaitAndReturn          bool          `json:"wait_and_return"`
	DistanceKm             float64       `json:"distance_km"`
	FareAmount             float64       `json:"fare_amount"`
	Currency               string        `json:"currency"`
	EstimatedPickupMinutes int           `json:"estimated_pickup_minutes"`
	Status                 string        `json:"status"`
	DriverResponse         string        `json:"driver_response,omitempty"`
	CreatedAt              time.Time     `json:"created_at"`
	UpdatedAt              time.Time     `json:"updated_at"`
}

func newBookingResponse(b *domain.Booking) BookingResponse {
	return BookingResponse{
		ID:                     b.ID,
		RequesterContact:       b.RequesterContact,
		RequesterName:          b.RequesterName,
		Pickup:                 newPlaceResponse(b.Pickup),
		Dropoff:                newPlaceResponse(b.Dropoff),
		Start:                  b.Start,
		End:                    b.End,
		Passengers:             b.Passengers,
		WaitingMinutes:         b.WaitingMinutes,
		WaitAndReturn:          b.WaitAndReturn,
		DistanceKm:             b.DistanceKm,
		FareAmount:             b.FareAmount,
		Currency:               b.Currency,
		EstimatedPickupMinutes: b.EstimatedPickupMins,
		Status:                 string(b.Status),
		DriverResponse:         b.DriverResponse,
		CreatedAt:              b.CreatedAt,
		UpdatedAt:              b.UpdatedAt,
	}
}

func newBookingResponses(bookings []*domain.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, newBookingResponse(b))
	}
	return out
}

// SurchargeResponse is one applied surcharge.
type SurchargeResponse struct {
	Label   string  `json:"label"`
	Percent float64 `json:"percent"`
}

// FareResponse is the HTTP response for a fare breakdown.
type FareResponse struct {
	Base            float64             `json:"base"`
	DistanceCost    float64             `json:"distance_cost"`
	WaitingCost     float64             `json:"waiting_cost"`
	PassengerCost   float64             `json:"passenger_cost"`
	Subtotal        float64             `json:"subtotal"`
	SurchargeAmount float64             `json:"surcharge_amount"`
	Surcharges      []SurchargeResponse `json:"surcharges"`
	Total           float64             `json:"total"`
	Currency        string              `json:"currency"`
	Summary         string              `json:"summary"`
}

func newFareResponse(f domain.FareBreakdown) FareResponse {
	surcharges := make([]SurchargeResponse, 0, len(f.Surcharges))
	for _, s := range f.Surcharges {
		surcharges = append(surcharges, SurchargeResponse{Label: s.Label, Percent: s.Percent})
	}
	return FareResponse{
		Base:            f.Base,
		DistanceCost:    f.DistanceCost,
		WaitingCost:     f.WaitingCost,
		PassengerCost:   f.PassengerCost,
		Subtotal:        f.Subtotal,
		SurchargeAmount: f.SurchargeAmount,
		Surcharges:      surcharges,
		Total:           f.Total,
		Currency:        f.Currency,
		Summary:         service.FareSummary(f),
	}
}

// QuoteResponse is the HTTP response for a trip quote.
type QuoteResponse struct {
	Fare                   FareResponse `json:"fare"`
	DistanceKm             float64      `json:"distance_km"`
	PricedDistanceKm       float64      `json:"priced_distance_km"`
	TravelMinutes          int          `json:"travel_minutes"`
	DistanceSource         string       `json:"distance_source"`
	Geometry               string       `json:"geometry,omitempty"`
	Start                  time.Time    `json:"start"`
	End                    time.Time    `json:"end"`
	EstimatedPickupMinutes int          `json:"estimated_pickup_minutes"`
}

func newQuoteResponse(q *service.Quote) QuoteResponse {
	return QuoteResponse{
		Fare:                   newFareResponse(q.Fare),
		DistanceKm:             q.Leg.DistanceKm,
		PricedDistanceKm:       q.PricedDistanceKm,
		TravelMinutes:          q.Leg.TravelMinutes,
		DistanceSource:         q.Leg.Source,
		Geometry:               q.Leg.Geometry,
		Start:                  q.Window.Start,
		End:                    q.Window.End,
		EstimatedPickupMinutes: q.PickupMinutes,
	}
}

// PickupETAResponse is the HTTP response for a live pickup estimate.
type PickupETAResponse struct {
	BookingID  string        `json:"booking_id"`
	Pickup     PlaceResponse `json:"pickup"`
	EtaMinutes int           `json:"eta_minutes"`
	ArrivalAt  time.Time     `json:"arrival_at"`
}

func newPickupETAResponse(eta *service.PickupETA) PickupETAResponse {
	return PickupETAResponse{
		BookingID:  eta.Booking.ID,
		Pickup:     newPlaceResponse(eta.Booking.Pickup),
		EtaMinutes: eta.Minutes,
		ArrivalAt:  eta.ArrivalAt,
	}
}
