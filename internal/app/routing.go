package app

import (
	"go.uber.org/zap"

	"shuttle/internal/config"
	"shuttle/internal/pricing"
	"shuttle/internal/routing"
)

// NewPlanner builds the route planner. Without a Maps API key it relies on
// straight-line distances and configured defaults.
func NewPlanner(maps config.MapsConfig, booking config.BookingConfig, logger *zap.Logger) (*routing.Planner, error) {
	cfg := routing.PlannerConfig{
		Timeout:         maps.Timeout,
		DefaultTripKm:   booking.DefaultTripKm,
		DefaultPickupKm: booking.DefaultPickupKm,
		DefaultOrigin:   booking.Origin(),
		TravelEstimator: pricing.NewTravelEstimator(booking.AvgSpeedKmh, booking.TravelFloorMinutes),
		PickupEstimator: pricing.NewPickupEstimator(booking.AvgSpeedKmh, booking.PickupTraffic, booking.PickupFloorMinutes),
	}

	if maps.APIKey == "" {
		logger.Warn("MAPS_API_KEY not set, using distance heuristics")
		return routing.NewPlanner(nil, nil, cfg, logger), nil
	}

	client, err := routing.NewGoogleMaps(maps.APIKey, maps.Language, maps.Region)
	if err != nil {
		return nil, err
	}
	return routing.NewPlanner(client, client, cfg, logger), nil
}
