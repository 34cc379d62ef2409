package pricing

import "math"

// Estimator converts a distance into minutes when no live route is known.
type Estimator struct {
	AvgSpeedKmh   float64
	TrafficFactor float64
	FloorMinutes  int
}

// NewPickupEstimator returns the estimator used for driver-to-pickup legs.
func NewPickupEstimator(avgSpeedKmh, trafficFactor float64, floor int) Estimator {
	return Estimator{AvgSpeedKmh: avgSpeedKmh, TrafficFactor: trafficFactor, FloorMinutes: floor}
}

// NewTravelEstimator returns the estimator used for pickup-to-dropoff legs.
func NewTravelEstimator(avgSpeedKmh float64, floor int) Estimator {
	return Estimator{AvgSpeedKmh: avgSpeedKmh, TrafficFactor: 1, FloorMinutes: floor}
}

// Minutes returns max(floor, round(distanceKm / speed * 60 * traffic)).
func (e Estimator) Minutes(distanceKm float64) int {
	if e.AvgSpeedKmh <= 0 || distanceKm <= 0 {
		return e.FloorMinutes
	}
	factor := e.TrafficFactor
	if factor <= 0 {
		factor = 1
	}
	m := int(math.Round(distanceKm / e.AvgSpeedKmh * 60 * factor))
	if m < e.FloorMinutes {
		return e.FloorMinutes
	}
	return m
}
