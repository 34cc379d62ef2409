package domain

import (
	"fmt"
	"strings"
	"time"
)

// LatLng is a coordinate pair.
type LatLng struct {
	Lat float64
	Lng float64
}

func (p LatLng) String() string {
	return fmt.Sprintf("%.5f, %.5f", p.Lat, p.Lng)
}

// Valid reports whether the coordinates are within range.
func (p LatLng) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Place identifies a pickup or dropoff by label, coordinates, or both.
type Place struct {
	Label  string
	Coords *LatLng
}

// Known reports whether the place carries a label or coordinates.
func (p Place) Known() bool {
	return strings.TrimSpace(p.Label) != "" || p.Coords != nil
}

// Query returns the best string for a route lookup.
func (p Place) Query() string {
	if p.Coords != nil {
		return p.Coords.String()
	}
	return p.Label
}

// MissingField names a required trip field that could not be resolved.
type MissingField int

const (
	MissingPickup MissingField = iota
	MissingDropoff
	MissingDateTime
	MissingPassengers
)

func (f MissingField) String() string {
	switch f {
	case MissingPickup:
		return "pickup location"
	case MissingDropoff:
		return "drop-off location"
	case MissingDateTime:
		return "date and time"
	case MissingPassengers:
		return "number of passengers"
	default:
		return "unknown"
	}
}

// MissingFields is an ordered set of missing fields.
type MissingFields []MissingField

// Labels returns the human-readable names of the missing fields.
func (m MissingFields) Labels() []string {
	out := make([]string, 0, len(m))
	for _, f := range m {
		out = append(out, f.String())
	}
	return out
}

// Upper bounds on request quantities.
const (
	MaxWaitingMinutes = 24 * 60
	MaxDistanceKm     = 1000
)

// TripRequest is a structured request for a ride.
type TripRequest struct {
	Pickup           Place
	Dropoff          Place
	Start            time.Time
	Passengers       int
	WaitingMinutes   int
	DistanceKm       *float64 // explicit override
	PickupDistanceKm *float64
	WaitAndReturn    bool
	RequesterContact string
	RequesterName    string
}

// Missing returns the required fields not set on the request.
func (r TripRequest) Missing() MissingFields {
	var m MissingFields
	if !r.Pickup.Known() {
		m = append(m, MissingPickup)
	}
	if !r.Dropoff.Known() {
		m = append(m, MissingDropoff)
	}
	if r.Start.IsZero() {
		m = append(m, MissingDateTime)
	}
	if r.Passengers <= 0 {
		m = append(m, MissingPassengers)
	}
	return m
}
