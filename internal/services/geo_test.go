package services

import (
	"freight-match-service/internal/domain"
	"testing"
	"time"
)

func TestHaversineIdenticalPoints(t *testing.T) {
	p := domain.Coordinates{Lat: 24.7136, Lon: 46.6753}
	if got := Haversine(p, p); got != 0 {
		t.Fatalf("distance = %v, want 0", got)
	}

	g := newTestGeo()
	a := domain.Location{City: "Riyadh", Coords: &p}
	b := domain.Location{City: "Somewhere", Coords: &domain.Coordinates{Lat: p.Lat, Lon: p.Lon}}
	if got := g.DistanceKm(a, b); got != 0 {
		t.Fatalf("DistanceKm = %v, want 0", got)
	}
}

func TestHaversineKnownDistance(t *testing.T) {
	riyadh := domain.Coordinates{Lat: 24.7136, Lon: 46.6753}
	jeddah := domain.Coordinates{Lat: 21.4858, Lon: 39.1925}

	got := Haversine(riyadh, jeddah)
	if got < 830 || got > 870 {
		t.Fatalf("Riyadh-Jeddah great circle = %v, want about 850", got)
	}
	if back := Haversine(jeddah, riyadh); !approx(got, back) {
		t.Fatalf("haversine not symmetric: %v vs %v", got, back)
	}
}

func TestDistanceKmFallbacks(t *testing.T) {
	g := newTestGeo()
	cases := []struct {
		a, b string
		want float64
	}{
		{"Riyadh", "Jeddah", 950},
		{"jeddah", "RIYADH", 950},
		{"Medina", "Dammam", 1050},
		{"Riyadh", "riyadh ", 0},
		{"Riyadh", "Hail", FallbackDistanceKm},
	}
	for _, tc := range cases {
		if got := g.DistanceKm(loc(tc.a), loc(tc.b)); got != tc.want {
			t.Errorf("DistanceKm(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}

	if got := NewGeo(nil).DistanceKm(loc("Riyadh"), loc("Jeddah")); got != FallbackDistanceKm {
		t.Errorf("DistanceKm without table = %v, want %v", got, FallbackDistanceKm)
	}
}

func TestIsRouteCompatible(t *testing.T) {
	g := newTestGeo()

	s := testShipment("s1", 10)
	trip := testTrip("t1", "c1", 100)
	if !g.IsRouteCompatible(s, trip) {
		t.Fatalf("same cities and later departure should be compatible")
	}

	early := testTrip("t2", "c1", 100)
	early.DepartureDate = s.PickupDate.Add(-time.Hour)
	if g.IsRouteCompatible(s, early) {
		t.Fatalf("trip leaving before pickup should not be compatible")
	}

	sameTime := testTrip("t3", "c1", 100)
	sameTime.DepartureDate = s.PickupDate
	if !g.IsRouteCompatible(s, sameTime) {
		t.Fatalf("trip leaving at pickup time should be compatible")
	}

	wrongWay := testTrip("t4", "c1", 100)
	wrongWay.Origin, wrongWay.Destination = loc("Jeddah"), loc("Riyadh")
	if g.IsRouteCompatible(s, wrongWay) {
		t.Fatalf("reverse route should not be compatible")
	}
}

func TestIsRouteCompatibleNearbyCoordinates(t *testing.T) {
	g := newTestGeo()

	s := testShipment("s1", 10)
	s.Pickup = domain.Location{City: "Diriyah", Coords: &domain.Coordinates{Lat: 24.7340, Lon: 46.5750}}

	trip := testTrip("t1", "c1", 100)
	trip.Origin = domain.Location{City: "Riyadh", Coords: &domain.Coordinates{Lat: 24.7136, Lon: 46.6753}}
	if !g.IsRouteCompatible(s, trip) {
		t.Fatalf("pickup about 10km from origin should be compatible")
	}

	s.Pickup = domain.Location{City: "Kharj", Coords: &domain.Coordinates{Lat: 24.1556, Lon: 47.3120}}
	if g.IsRouteCompatible(s, trip) {
		t.Fatalf("pickup about 90km from origin should not be compatible")
	}
}

func TestIsRouteCompatibleCityNameWinsOverCoordinates(t *testing.T) {
	g := newTestGeo()

	// Two geocodes for "Riyadh" about 90km apart still name the same city.
	s := testShipment("s1", 10)
	s.Pickup = domain.Location{City: "Riyadh", Coords: &domain.Coordinates{Lat: 24.1556, Lon: 47.3120}}

	trip := testTrip("t1", "c1", 100)
	trip.Origin = domain.Location{City: "riyadh", Coords: &domain.Coordinates{Lat: 24.7136, Lon: 46.6753}}
	if g.DistanceKm(s.Pickup, trip.Origin) < NearCityKm {
		t.Fatalf("test points should be at least %vkm apart", NearCityKm)
	}
	if !g.IsRouteCompatible(s, trip) {
		t.Fatalf("same city name should be compatible regardless of coordinates")
	}

	s.Pickup.City = "Kharj"
	if g.IsRouteCompatible(s, trip) {
		t.Fatalf("different city name far from origin should not be compatible")
	}
}

func TestDurationAndArrival(t *testing.T) {
	g := newTestGeo()

	if got := g.DurationHours(950, domain.RegularTraveler); got != 11.9 {
		t.Fatalf("duration = %v, want 11.9", got)
	}
	if got := g.DurationHours(100, domain.PrivateCar); got != 1 {
		t.Fatalf("duration = %v, want 1", got)
	}
	if got := g.DurationHours(80, "unknown"); got != 1 {
		t.Fatalf("duration = %v, want 1 at default speed", got)
	}

	arrival := g.EstimateArrival(day0, loc("Riyadh"), loc("Jeddah"))
	if want := day0.Add(12 * time.Hour); !arrival.Equal(want) {
		t.Fatalf("arrival = %v, want %v", arrival, want)
	}
}
