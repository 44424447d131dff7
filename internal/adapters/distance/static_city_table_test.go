package distance

import (
	"freight-match-service/internal/ports"
	"testing"
)

func TestStaticCityTableSymmetricLookup(t *testing.T) {
	table := NewDefaultCityTable()

	ab, ok := table.DistanceKm("Riyadh", "Jeddah")
	if !ok || ab != 950 {
		t.Fatalf("expected 950, got %v %v", ab, ok)
	}
	ba, ok := table.DistanceKm("  jeddah ", "RIYADH")
	if !ok || ba != ab {
		t.Fatalf("lookup should be symmetric and case-insensitive, got %v %v", ba, ok)
	}
	if _, ok := table.DistanceKm("Riyadh", "Atlantis"); ok {
		t.Fatalf("unknown pair should miss")
	}
}

func TestStaticCityTablePut(t *testing.T) {
	table := NewStaticCityTable(nil)
	table.Put(
		ports.CityPair{CityA: "Riyadh", CityB: "Qassim", Km: 350},
		ports.CityPair{CityA: "", CityB: "Qassim", Km: 10},
		ports.CityPair{CityA: "Riyadh", CityB: "Hail", Km: -5},
	)

	if km, ok := table.DistanceKm("Qassim", "Riyadh"); !ok || km != 350 {
		t.Fatalf("expected 350, got %v %v", km, ok)
	}
	if got := len(table.Pairs()); got != 1 {
		t.Fatalf("invalid pairs should be ignored, got %d entries", got)
	}

	table.Put(ports.CityPair{CityA: "Riyadh", CityB: "Qassim", Km: 360})
	if km, _ := table.DistanceKm("Riyadh", "Qassim"); km != 360 {
		t.Fatalf("expected replacement, got %v", km)
	}
}
