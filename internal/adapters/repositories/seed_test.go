package repositories

import (
	"context"
	"errors"
	"freight-match-service/internal/adapters/distance"
	"freight-match-service/internal/domain"
	"freight-match-service/internal/ports"
	"os"
	"path/filepath"
	"testing"
)

type capturingCityStore struct {
	pairs []ports.CityPair
}

func (c *capturingCityStore) ListCityDistances(context.Context) ([]ports.CityPair, error) {
	return c.pairs, nil
}

func (c *capturingCityStore) PutCityDistances(_ context.Context, pairs []ports.CityPair) error {
	c.pairs = append(c.pairs, pairs...)
	return nil
}

func TestSeedFromJSONBundledFile(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	cities := &capturingCityStore{}

	counts, err := SeedFromJSON(ctx, store, cities, filepath.Join("..", "..", "..", "data", "seeds", "marketplace.json"))
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if counts.Carriers != 3 || counts.Trips != 3 || counts.Shipments != 3 || counts.CityDistances != 3 {
		t.Fatalf("unexpected counts: %+v", counts)
	}

	taxi, err := store.GetCarrier(ctx, "carrier-taxi-1")
	if err != nil {
		t.Fatalf("get carrier: %v", err)
	}
	if taxi.Type != domain.RegularTraveler || taxi.Availability != domain.CarrierAvailable {
		t.Fatalf("carrier not normalized: %+v", taxi)
	}

	trip, err := store.GetTrip(ctx, "trip-ruh-dmm-1")
	if err != nil {
		t.Fatalf("get trip: %v", err)
	}
	if trip.MaxShipments != domain.DefaultMaxShipments || trip.Status != domain.TripActive {
		t.Fatalf("trip defaults not applied: %+v", trip)
	}

	docs, err := store.GetShipment(ctx, "shipment-docs-1")
	if err != nil {
		t.Fatalf("get shipment: %v", err)
	}
	if docs.Status != domain.ShipmentPending || docs.Urgency != domain.UrgencyHigh {
		t.Fatalf("unexpected shipment: %+v", docs)
	}
	machinery, _ := store.GetShipment(ctx, "shipment-machinery-1")
	if machinery.Tier() != domain.TierLarge {
		t.Fatalf("expected large tier, got %s", machinery.Tier())
	}

	table := distance.NewStaticCityTable(cities.pairs)
	if km, ok := table.DistanceKm("Qassim", "Riyadh"); !ok || km != 350 {
		t.Fatalf("expected seeded Qassim distance, got %v %v", km, ok)
	}
}

func TestSeedFromJSONRejectsInvalidRecords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	body := `{"shipments":[{"id":"s-1","weight":0,"length_cm":1,"width_cm":1,"height_cm":1,
		"pickup":{"city":"Riyadh"},"delivery":{"city":"Jeddah"}}]}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store := NewMemoryStore()
	_, err := SeedFromJSON(context.Background(), store, nil, path)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if all, _ := store.ListShipments(context.Background(), ""); len(all) != 0 {
		t.Fatalf("nothing should be written on validation failure")
	}
}

func TestSeedFromJSONMissingFile(t *testing.T) {
	if _, err := SeedFromJSON(context.Background(), NewMemoryStore(), nil, "does-not-exist.json"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
