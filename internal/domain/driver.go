package domain

import "time"

// DriverStatus describes whether the vehicle is serving a ride right now.
type DriverStatus string

const (
	DriverStatusAvailable DriverStatus = "available"
	DriverStatusInRide    DriverStatus = "currently_in_ride"
)

// DriverLocation is the last known position of the vehicle.
type DriverLocation struct {
	Position  LatLng
	UpdatedAt time.Time
}
