package routing

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"shuttle/internal/domain"
	"shuttle/internal/metrics"
	"shuttle/internal/pricing"
)

// Sources of a resolved distance or duration.
const (
	SourceOverride  = "override"
	SourceOracle    = "oracle"
	SourceHaversine = "haversine"
	SourceDefault   = "default"
)

// PlannerConfig holds the fallback parameters of a Planner.
type PlannerConfig struct {
	Timeout         time.Duration
	DefaultTripKm   float64
	DefaultPickupKm float64
	DefaultOrigin   *domain.LatLng
	TravelEstimator pricing.Estimator
	PickupEstimator pricing.Estimator
}

// Planner resolves trip legs in the order: live oracle, straight-line
// distance, configured default. Oracle and geocoder failures are logged and
// never returned.
type Planner struct {
	oracle   RouteOracle
	geocoder ReverseGeocoder
	cfg      PlannerConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewPlanner creates a Planner. oracle and geocoder may be nil.
func NewPlanner(oracle RouteOracle, geocoder ReverseGeocoder, cfg PlannerConfig, logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Planner{
		oracle:   oracle,
		geocoder: geocoder,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Leg is a resolved pickup-to-dropoff trip.
type Leg struct {
	DistanceKm    float64
	TravelMinutes int
	Geometry      string
	Source        string
}

// TripLeg resolves the distance and travel time from pickup to dropoff.
func (p *Planner) TripLeg(ctx context.Context, req domain.TripRequest) Leg {
	if req.DistanceKm != nil && *req.DistanceKm > 0 {
		d := *req.DistanceKm
		return Leg{DistanceKm: d, TravelMinutes: p.cfg.TravelEstimator.Minutes(d), Source: SourceOverride}
	}

	from, to := req.Pickup.Coords, req.Dropoff.Coords
	if from != nil && to != nil {
		if route := p.optimalRoute(ctx, *from, *to); route != nil && route.DistanceKm > 0 {
			return p.legFrom(route.Metrics, route.Geometry)
		}
	} else if m := p.routeMetrics(ctx, req.Pickup.Query(), req.Dropoff.Query(), nil); m != nil && m.DistanceKm > 0 {
		return p.legFrom(*m, "")
	}

	if from != nil && to != nil {
		d := HaversineKm(*from, *to)
		metrics.RouteFallbacks.WithLabelValues("trip", SourceHaversine).Inc()
		return Leg{DistanceKm: d, TravelMinutes: p.cfg.TravelEstimator.Minutes(d), Source: SourceHaversine}
	}

	d := p.cfg.DefaultTripKm
	metrics.RouteFallbacks.WithLabelValues("trip", SourceDefault).Inc()
	return Leg{DistanceKm: d, TravelMinutes: p.cfg.TravelEstimator.Minutes(d), Source: SourceDefault}
}

func (p *Planner) legFrom(m Metrics, geometry string) Leg {
	minutes := m.DurationMinutes
	if minutes <= 0 {
		minutes = p.cfg.TravelEstimator.Minutes(m.DistanceKm)
	}
	return Leg{DistanceKm: m.DistanceKm, TravelMinutes: minutes, Geometry: geometry, Source: SourceOracle}
}

// PickupMinutes estimates how long the driver needs to reach the pickup.
// The origin is the last known driver location, else the configured default.
func (p *Planner) PickupMinutes(ctx context.Context, driver *domain.DriverLocation, req domain.TripRequest) int {
	origin := p.cfg.DefaultOrigin
	if driver != nil {
		pos := driver.Position
		origin = &pos
	}

	if origin != nil {
		now := p.now()
		if m := p.routeMetrics(ctx, origin.String(), req.Pickup.Query(), &now); m != nil && m.DurationMinutes > 0 {
			return m.DurationMinutes
		}
	}

	switch {
	case req.PickupDistanceKm != nil && *req.PickupDistanceKm > 0:
		return p.cfg.PickupEstimator.Minutes(*req.PickupDistanceKm)
	case origin != nil && req.Pickup.Coords != nil:
		metrics.RouteFallbacks.WithLabelValues("pickup", SourceHaversine).Inc()
		return p.cfg.PickupEstimator.Minutes(HaversineKm(*origin, *req.Pickup.Coords))
	default:
		metrics.RouteFallbacks.WithLabelValues("pickup", SourceDefault).Inc()
		return p.cfg.PickupEstimator.Minutes(p.cfg.DefaultPickupKm)
	}
}

// Label returns a display label for place, reverse geocoding bare coordinates.
func (p *Planner) Label(ctx context.Context, place domain.Place) string {
	if place.Label != "" || place.Coords == nil {
		return place.Label
	}
	if p.geocoder != nil {
		ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
		addr, err := p.geocoder.AddressFor(ctx, *place.Coords)
		if err != nil {
			p.logger.Warn("reverse geocode failed, using GPS label", zap.Error(err))
		} else if addr != "" {
			return addr
		}
	}
	return fmt.Sprintf("GPS (%.5f, %.5f)", place.Coords.Lat, place.Coords.Lng)
}

func (p *Planner) routeMetrics(ctx context.Context, origin, destination string, departure *time.Time) *Metrics {
	if p.oracle == nil || origin == "" || destination == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	m, err := p.oracle.RouteMetrics(ctx, origin, destination, departure)
	if err != nil {
		p.logger.Warn("route lookup failed, using fallback",
			zap.String("origin", origin),
			zap.String("destination", destination),
			zap.Error(err))
		return nil
	}
	return m
}

func (p *Planner) optimalRoute(ctx context.Context, from, to domain.LatLng) *Route {
	if p.oracle == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	r, err := p.oracle.OptimalRoute(ctx, from, to)
	if err != nil {
		p.logger.Warn("route lookup failed, using fallback", zap.Error(err))
		return nil
	}
	return r
}
