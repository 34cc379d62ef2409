package routing

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"googlemaps.github.io/maps"

	"shuttle/internal/domain"
)

// GoogleMaps implements RouteOracle and ReverseGeocoder on the Google Maps APIs.
type GoogleMaps struct {
	client   *maps.Client
	language string
	region   string
}

// NewGoogleMaps creates a client for the given API key.
func NewGoogleMaps(apiKey, language, region string) (*GoogleMaps, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleMaps{client: client, language: language, region: region}, nil
}

// RouteMetrics queries the distance matrix for a single origin/destination pair.
func (g *GoogleMaps) RouteMetrics(ctx context.Context, origin, destination string, departure *time.Time) (*Metrics, error) {
	r := &maps.DistanceMatrixRequest{
		Origins:      []string{origin},
		Destinations: []string{destination},
		Mode:         maps.TravelModeDriving,
		Language:     g.language,
		Units:        maps.UnitsMetric,
	}
	if departure != nil {
		r.DepartureTime = strconv.FormatInt(departure.Unix(), 10)
	}

	resp, err := g.client.DistanceMatrix(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("maps api error: %w", err)
	}
	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return nil, nil
	}

	el := resp.Rows[0].Elements[0]
	if el.Status != "OK" {
		return nil, nil
	}
	duration := el.Duration
	if el.DurationInTraffic > 0 {
		duration = el.DurationInTraffic
	}
	return &Metrics{
		DistanceKm:      float64(el.Distance.Meters) / 1000,
		DurationMinutes: int(math.Round(duration.Minutes())),
	}, nil
}

// OptimalRoute requests driving directions between two coordinates.
func (g *GoogleMaps) OptimalRoute(ctx context.Context, from, to domain.LatLng) (*Route, error) {
	r := &maps.DirectionsRequest{
		Origin:      from.String(),
		Destination: to.String(),
		Mode:        maps.TravelModeDriving,
		Language:    g.language,
		Region:      g.region,
	}

	routes, _, err := g.client.Directions(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return nil, nil
	}

	var meters int
	var duration time.Duration
	for _, leg := range routes[0].Legs {
		meters += leg.Distance.Meters
		duration += leg.Duration
	}
	return &Route{
		Metrics: Metrics{
			DistanceKm:      float64(meters) / 1000,
			DurationMinutes: int(math.Round(duration.Minutes())),
		},
		Geometry: routes[0].OverviewPolyline.Points,
	}, nil
}

// AddressFor returns the formatted address closest to p.
func (g *GoogleMaps) AddressFor(ctx context.Context, p domain.LatLng) (string, error) {
	results, err := g.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng:   &maps.LatLng{Lat: p.Lat, Lng: p.Lng},
		Language: g.language,
	})
	if err != nil {
		return "", fmt.Errorf("maps api error: %w", err)
	}
	if len(results) == 0 {
		return "", nil
	}
	return results[0].FormattedAddress, nil
}
