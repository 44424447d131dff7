package ports

import (
	"context"
	"freight-match-service/internal/domain"
)

// Contract for the fallback city-to-city distance table used when a
// location has no coordinates. Lookups must be symmetric and side-effect free.
type CityDistanceLookup interface {
	// Return the road distance in km between two cities, if known.
	DistanceKm(cityA, cityB string) (float64, bool)
}

// Optional geocoding collaborator that supplies coordinates for locations.
type Geocoder interface {
	// Resolve coordinates for the given locations, keyed by Location.String().
	// Locations that cannot be resolved are omitted from the result.
	Geocode(ctx context.Context, locations []domain.Location) (map[string]domain.Coordinates, error)
}
