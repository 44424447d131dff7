package services

import (
	"freight-match-service/internal/domain"
	"freight-match-service/internal/ports"
	"math"
	"time"
)

const (
	EarthRadiusKm      = 6371.0
	FallbackDistanceKm = 500.0
	// Two places closer than this count as the same city for route matching.
	NearCityKm = 50.0
	// Average speed used for arrival estimates when no carrier type is known.
	DefaultSpeedKmh = 80.0
)

// Haversine returns the great-circle distance in km.
func Haversine(a, b domain.Coordinates) float64 {
	dLat := deg2rad(b.Lat - a.Lat)
	dLon := deg2rad(b.Lon - a.Lon)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(deg2rad(a.Lat))*math.Cos(deg2rad(b.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func deg2rad(d float64) float64 { return d * math.Pi / 180 }

// Geo estimates distances and route compatibility.
// It is read-only after construction and safe for concurrent use.
type Geo struct {
	table ports.CityDistanceLookup
}

// NewGeo builds a Geo backed by the given fallback table (may be nil).
func NewGeo(table ports.CityDistanceLookup) *Geo {
	return &Geo{table: table}
}

// DistanceKm uses coordinates when both locations have them, the city table
// otherwise, and FallbackDistanceKm when the pair is unknown.
func (g *Geo) DistanceKm(a, b domain.Location) float64 {
	if a.HasCoords() && b.HasCoords() {
		return Haversine(*a.Coords, *b.Coords)
	}
	if a.SameCity(b) {
		return 0
	}
	if g.table != nil {
		if km, ok := g.table.DistanceKm(a.City, b.City); ok {
			return km
		}
	}
	return FallbackDistanceKm
}

// near treats matching city names as the same place, even when geocoded
// coordinates put them NearCityKm or more apart. Different names are near only
// when the distance between them is under NearCityKm.
func (g *Geo) near(a, b domain.Location) bool {
	return a.SameCity(b) || g.DistanceKm(a, b) < NearCityKm
}

// IsRouteCompatible reports whether a trip can carry the shipment: both ends
// are near the trip's endpoints and the trip does not leave before pickup.
func (g *Geo) IsRouteCompatible(s *domain.Shipment, t *domain.Trip) bool {
	if !g.near(s.Pickup, t.Origin) {
		return false
	}
	if !g.near(s.Delivery, t.Destination) {
		return false
	}
	return !t.DepartureDate.Before(s.PickupDate)
}

// EstimateDurationHours estimates travel time for a carrier type, to one decimal.
func EstimateDurationHours(distanceKm float64, ct domain.CarrierType) float64 {
	speed := DefaultSpeedKmh
	if spec, ok := domain.LookupCarrierType(ct); ok && spec.SpeedKmh > 0 {
		speed = spec.SpeedKmh
	}
	return math.Round(distanceKm/speed*10) / 10
}

// EstimateArrival adds whole hours of driving at DefaultSpeedKmh to departure.
func (g *Geo) EstimateArrival(departure time.Time, from, to domain.Location) time.Time {
	hours := math.Ceil(g.DistanceKm(from, to) / DefaultSpeedKmh)
	return departure.Add(time.Duration(hours) * time.Hour)
}

// DurationHours is EstimateDurationHours for callers holding a Geo.
func (g *Geo) DurationHours(distanceKm float64, ct domain.CarrierType) float64 {
	return EstimateDurationHours(distanceKm, ct)
}
