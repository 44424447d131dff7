package services

import (
	"freight-match-service/internal/domain"
	"testing"
	"time"
)

func newTestMatcher() *Matcher {
	return NewMatcher(newTestGeo(), NewPricingEngine(DefaultPricingConfig(), SeasonNormal))
}

func carrierIDs(ms []domain.CarrierMatch) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.CarrierID)
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFindCarriersForFiltersIneligible(t *testing.T) {
	m := newTestMatcher()
	s := testShipment("s1", 10)

	best := testCarrier("best", "taxi", 0, 20)
	best.Verified = true
	best.Rating = 5

	plain := testCarrier("plain", "taxi", 0, 20)
	plain.Rating = 3

	car := testCarrier("car", "car", 20, 1500)

	offline := testCarrier("offline", "taxi", 0, 20)
	offline.Availability = domain.CarrierOffline

	elsewhere := testCarrier("elsewhere", "taxi", 0, 20)
	elsewhere.ServiceAreas = []domain.ServiceArea{{City: "Dammam"}}

	regional := testCarrier("regional", "taxi", 0, 20)
	regional.Rating = 1
	regional.ServiceAreas = []domain.ServiceArea{{Region: "Central"}}

	s.Pickup.Region = "Central"
	got := m.FindCarriersFor(s, []*domain.Carrier{plain, car, offline, best, elsewhere, regional}, nil, MatchFilters{})

	want := []string{"best", "plain", "regional"}
	if ids := carrierIDs(got); !equalIDs(ids, want) {
		t.Fatalf("carriers = %v, want %v", ids, want)
	}
	if got[0].Score != 5*6+15 {
		t.Fatalf("score = %v, want 45", got[0].Score)
	}
	if got[0].Price.Total == 0 || got[0].DistanceKm != 950 {
		t.Fatalf("match should carry a quote and distance, got %+v", got[0].MatchResult)
	}
}

func TestFindCarriersForFilters(t *testing.T) {
	m := newTestMatcher()
	s := testShipment("s1", 10)

	verified := testCarrier("verified", "taxi", 0, 20)
	verified.Verified = true
	verified.Rating = 4.5
	low := testCarrier("low", "taxi", 0, 20)
	low.Rating = 2

	carriers := []*domain.Carrier{verified, low}

	if ids := carrierIDs(m.FindCarriersFor(s, carriers, nil, MatchFilters{MinRating: 3})); !equalIDs(ids, []string{"verified"}) {
		t.Fatalf("min rating: got %v", ids)
	}
	if ids := carrierIDs(m.FindCarriersFor(s, carriers, nil, MatchFilters{VerifiedOnly: true})); !equalIDs(ids, []string{"verified"}) {
		t.Fatalf("verified only: got %v", ids)
	}
	if got := m.FindCarriersFor(s, carriers, nil, MatchFilters{MaxPrice: 100}); len(got) != 0 {
		t.Fatalf("max price 100 should drop every carrier, got %v", carrierIDs(got))
	}
}

func TestFindCarriersForRequiresCompatibleTrip(t *testing.T) {
	m := newTestMatcher()
	s := testShipment("s1", 10)

	withTrip := testCarrier("with-trip", "taxi", 0, 20)
	noRoom := testCarrier("no-room", "taxi", 0, 20)
	noTrip := testCarrier("no-trip", "taxi", 0, 20)
	noTrip.Rating = 5

	full := testTrip("t-full", "no-room", 15)
	full.BookedWeight = 10

	soon := testTrip("t-soon", "with-trip", 100)
	later := testTrip("t-later", "with-trip", 100)
	later.DepartureDate = day0.Add(48 * time.Hour)
	done := testTrip("t-done", "with-trip", 100)
	done.Status = domain.TripCompleted

	got := m.FindCarriersFor(s, []*domain.Carrier{noTrip, noRoom, withTrip}, []*domain.Trip{full, later, soon, done}, MatchFilters{})
	if ids := carrierIDs(got); !equalIDs(ids, []string{"with-trip"}) {
		t.Fatalf("carriers = %v, want [with-trip]", ids)
	}
	if n := len(got[0].Trips); n != 2 {
		t.Fatalf("compatible trips = %d, want 2", n)
	}
	// rating 4*6 + 2 trips*5 + departs within a day of pickup.
	if got[0].Score != 24+10+10 {
		t.Fatalf("score = %v, want 44", got[0].Score)
	}

	if got := m.FindCarriersFor(s, []*domain.Carrier{withTrip}, []*domain.Trip{}, MatchFilters{}); len(got) != 0 {
		t.Fatalf("empty trip list should leave no carriers, got %v", carrierIDs(got))
	}
}

func TestFindCarriersForStableTies(t *testing.T) {
	m := newTestMatcher()
	s := testShipment("s1", 10)
	a := testCarrier("a", "taxi", 0, 20)
	b := testCarrier("b", "taxi", 0, 20)

	if ids := carrierIDs(m.FindCarriersFor(s, []*domain.Carrier{a, b}, nil, MatchFilters{})); !equalIDs(ids, []string{"a", "b"}) {
		t.Fatalf("order = %v, want [a b]", ids)
	}
	if ids := carrierIDs(m.FindCarriersFor(s, []*domain.Carrier{b, a}, nil, MatchFilters{})); !equalIDs(ids, []string{"b", "a"}) {
		t.Fatalf("order = %v, want [b a]", ids)
	}
}

func TestFindAvailableTrips(t *testing.T) {
	m := newTestMatcher()
	s := testShipment("s1", 10)
	c := testCarrier("c1", "taxi", 0, 20)

	later := testTrip("later", "c1", 100)
	later.DepartureDate = day0.Add(48 * time.Hour)
	soon := testTrip("soon", "c1", 100)
	far := testTrip("far", "c1", 100)
	far.DepartureDate = day0.Add(10 * 24 * time.Hour)
	orphan := testTrip("orphan", "nobody", 100)

	got := m.FindAvailableTrips(s, []*domain.Carrier{c}, []*domain.Trip{far, later, orphan, soon}, MatchFilters{})
	if len(got) != 3 {
		t.Fatalf("options = %d, want 3", len(got))
	}
	order := []string{got[0].Trip.ID, got[1].Trip.ID, got[2].Trip.ID}
	if !equalIDs(order, []string{"soon", "later", "far"}) {
		t.Fatalf("order = %v, want [soon later far]", order)
	}
	if got[0].Carrier != c {
		t.Fatalf("option should carry its carrier")
	}
}

func TestFindShipmentsFor(t *testing.T) {
	m := newTestMatcher()
	c := testCarrier("c1", "car", 0, 1500)
	trip := testTrip("t1", "c1", 500)
	now := day0

	urgent := testShipment("urgent", 100)
	valuable := testShipment("valuable", 40)
	valuable.PickupDate = day0.Add(-48 * time.Hour)
	valuable.DeclaredValue = 9000
	valuable.InsuranceRequired = true
	heavyCheap := testShipment("heavy", 300)
	lightCheap := testShipment("light", 25)

	matched := testShipment("matched", 30)
	matched.Status = domain.ShipmentMatched
	tooHeavy := testShipment("too-heavy", 600)
	otherRoute := testShipment("other-route", 30)
	otherRoute.Delivery = loc("Dammam")

	shipments := []*domain.Shipment{lightCheap, matched, valuable, tooHeavy, heavyCheap, otherRoute, urgent}
	got := m.FindShipmentsFor(c, trip, shipments, SuggestFilters{}, now)

	ids := make([]string, 0, len(got))
	for _, g := range got {
		ids = append(ids, g.Shipment.ID)
	}
	// heavy, urgent and light all pick up now (+10) and are ordered by earnings.
	want := []string{"valuable", "heavy", "urgent", "light"}
	if !equalIDs(ids, want) {
		t.Fatalf("suggestions = %v, want %v", ids, want)
	}
	if got[0].Priority != 5+5+3 {
		t.Fatalf("valuable priority = %d, want 13", got[0].Priority)
	}
	if got[1].SpaceUsage != 60 {
		t.Fatalf("space usage = %v, want 60", got[1].SpaceUsage)
	}
	if !approx(got[0].Profit, got[0].Price*0.8) {
		t.Fatalf("profit = %v, want 80%% of %v", got[0].Profit, got[0].Price)
	}

	trip.Status = domain.TripCompleted
	if got := m.FindShipmentsFor(c, trip, shipments, SuggestFilters{}, now); len(got) != 0 {
		t.Fatalf("inactive trip should get no suggestions, got %d", len(got))
	}
}

func TestFindShipmentsForFilters(t *testing.T) {
	m := newTestMatcher()
	c := testCarrier("c1", "car", 0, 1500)
	trip := testTrip("t1", "c1", 500)

	food := testShipment("food", 30)
	food.Category = "food"
	books := testShipment("books", 30)
	books.Category = "books"

	got := m.FindShipmentsFor(c, trip, []*domain.Shipment{food, books}, SuggestFilters{Categories: []string{"FOOD"}}, day0)
	if len(got) != 1 || got[0].Shipment.ID != "food" {
		t.Fatalf("category filter kept %d suggestions", len(got))
	}

	if got := m.FindShipmentsFor(c, trip, []*domain.Shipment{books}, SuggestFilters{MinPrice: 1e9}, day0); len(got) != 0 {
		t.Fatalf("min price filter kept %d suggestions", len(got))
	}
}
