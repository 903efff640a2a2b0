package maps

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"googlemaps.github.io/maps"

	"loadapp/internal/modules/costing"
	"loadapp/internal/modules/route"
	"loadapp/internal/types"
)

// RouteService resolves route legs through the Google Maps API. It
// implements route.SegmentProvider.
type RouteService struct {
	client *maps.Client
}

// NewRouteService creates a new RouteService with the given API Key.
func NewRouteService(apiKey string) (*RouteService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &RouteService{client: client}, nil
}

// Segments resolves the loaded leg from origin to destination.
func (s *RouteService) Segments(ctx context.Context, origin, destination types.Location) (route.Estimate, error) {
	return s.estimate(ctx, origin, destination)
}

// EmptyDrivingSegments resolves the unladen repositioning leg. The
// Directions call is identical; the cost engine applies the
// empty-driving factors.
func (s *RouteService) EmptyDrivingSegments(ctx context.Context, origin, destination types.Location) (route.Estimate, error) {
	return s.estimate(ctx, origin, destination)
}

func (s *RouteService) estimate(ctx context.Context, origin, destination types.Location) (route.Estimate, error) {
	r := &maps.DirectionsRequest{
		Origin:      origin.Address,
		Destination: destination.Address,
		Mode:        maps.TravelModeDriving,
		Region:      "eu",
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return route.Estimate{}, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return route.Estimate{}, fmt.Errorf("no route found between %q and %q", origin.Address, destination.Address)
	}

	meters := 0
	seconds := 0.0
	for _, leg := range routes[0].Legs {
		meters += leg.Distance.Meters
		seconds += leg.Duration.Seconds()
	}
	distanceKm := decimal.NewFromInt(int64(meters)).Div(decimal.NewFromInt(1000))
	durationHours := decimal.NewFromFloat(seconds).Div(decimal.NewFromInt(3600))

	originCountry, err := s.countryCode(ctx, origin)
	if err != nil {
		return route.Estimate{}, err
	}
	destCountry, err := s.countryCode(ctx, destination)
	if err != nil {
		return route.Estimate{}, err
	}

	return route.Estimate{
		DistanceKm:    distanceKm,
		DurationHours: durationHours,
		Segments:      splitByCountry(originCountry, destCountry, distanceKm, durationHours),
	}, nil
}

// countryCode reverse-geocodes a location to its 2-letter country code.
func (s *RouteService) countryCode(ctx context.Context, loc types.Location) (string, error) {
	req := &maps.GeocodingRequest{Address: loc.Address}
	if loc.Latitude != 0 || loc.Longitude != 0 {
		req = &maps.GeocodingRequest{
			LatLng: &maps.LatLng{Lat: loc.Latitude, Lng: loc.Longitude},
		}
	}

	results, err := s.client.Geocode(ctx, req)
	if err != nil {
		return "", fmt.Errorf("geocoding error for %q: %w", loc.Address, err)
	}
	for _, result := range results {
		for _, component := range result.AddressComponents {
			for _, t := range component.Types {
				if t == "country" {
					return component.ShortName, nil
				}
			}
		}
	}
	return "", fmt.Errorf("no country resolved for %q", loc.Address)
}

// splitByCountry distributes the leg across the endpoint countries.
// The Directions API does not expose border crossings, so a
// cross-border leg is split evenly between the two countries.
func splitByCountry(originCountry, destCountry string, distanceKm, durationHours decimal.Decimal) []costing.CountrySegment {
	if originCountry == destCountry {
		return []costing.CountrySegment{
			{CountryCode: originCountry, DistanceKm: distanceKm, DurationHours: durationHours},
		}
	}

	two := decimal.NewFromInt(2)
	halfDistance := distanceKm.Div(two)
	halfDuration := durationHours.Div(two)
	return []costing.CountrySegment{
		{CountryCode: originCountry, DistanceKm: halfDistance, DurationHours: halfDuration},
		{CountryCode: destCountry, DistanceKm: distanceKm.Sub(halfDistance), DurationHours: durationHours.Sub(halfDuration)},
	}
}
