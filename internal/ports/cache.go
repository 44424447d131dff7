package ports

import (
	"context"
	"freight-match-service/internal/domain"
)

// Persistent cache of address -> coordinates used by geocoders.
type GeocodeCache interface {
	GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
	PutMany(ctx context.Context, results map[string]domain.Coordinates) error
}

// CityPair is one row of the operator-maintained distance table.
type CityPair struct {
	CityA string
	CityB string
	Km    float64
}

// Persistent store for the city distance table. Rows are loaded at startup
// into the in-memory lookup used by the core.
type CityDistanceStore interface {
	ListCityDistances(ctx context.Context) ([]CityPair, error)
	PutCityDistances(ctx context.Context, pairs []CityPair) error
}
