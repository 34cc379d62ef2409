// Package routing resolves trip distances and durations through an external
// route oracle with local fallbacks.
package routing

import (
	"context"
	"math"
	"time"

	"shuttle/internal/domain"
)

// Metrics is a distance and duration pair returned by a route lookup.
type Metrics struct {
	DistanceKm      float64
	DurationMinutes int
}

// Route is a coordinate-to-coordinate route with its encoded geometry.
type Route struct {
	Metrics
	Geometry string
}

// RouteOracle looks up live routes. A nil result with a nil error means the
// oracle had no answer.
type RouteOracle interface {
	RouteMetrics(ctx context.Context, origin, destination string, departure *time.Time) (*Metrics, error)
	OptimalRoute(ctx context.Context, from, to domain.LatLng) (*Route, error)
}

// ReverseGeocoder resolves coordinates into a street address.
type ReverseGeocoder interface {
	AddressFor(ctx context.Context, p domain.LatLng) (string, error)
}

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two points.
func HaversineKm(a, b domain.LatLng) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
