package distance

import (
	"freight-match-service/internal/ports"
	"strings"
	"sync"
)

// DefaultCityPairs is the built-in inter-city road distance table (km).
var DefaultCityPairs = []ports.CityPair{
	{CityA: "Riyadh", CityB: "Jeddah", Km: 950},
	{CityA: "Riyadh", CityB: "Dammam", Km: 400},
	{CityA: "Riyadh", CityB: "Medina", Km: 850},
	{CityA: "Riyadh", CityB: "Abha", Km: 950},
	{CityA: "Riyadh", CityB: "Tabuk", Km: 1300},
	{CityA: "Jeddah", CityB: "Medina", Km: 420},
	{CityA: "Jeddah", CityB: "Dammam", Km: 1350},
	{CityA: "Jeddah", CityB: "Abha", Km: 580},
	{CityA: "Dammam", CityB: "Medina", Km: 1050},
	{CityA: "Dammam", CityB: "Abha", Km: 1200},
	{CityA: "Medina", CityB: "Abha", Km: 900},
}

// StaticCityTable is an in-memory, symmetric city-pair distance lookup.
// It is safe for concurrent use; Put may extend the table at runtime.
type StaticCityTable struct {
	mu sync.RWMutex
	m  map[string]float64
}

func NewStaticCityTable(pairs []ports.CityPair) *StaticCityTable {
	t := &StaticCityTable{m: make(map[string]float64, len(pairs))}
	t.Put(pairs...)
	return t
}

// NewDefaultCityTable returns a table seeded with DefaultCityPairs.
func NewDefaultCityTable() *StaticCityTable {
	return NewStaticCityTable(DefaultCityPairs)
}

func normalizeCity(c string) string {
	return strings.ToLower(strings.Join(strings.Fields(c), " "))
}

func pairKey(a, b string) string {
	return normalizeCity(a) + "|" + normalizeCity(b)
}

// Put adds or replaces entries.
func (t *StaticCityTable) Put(pairs ...ports.CityPair) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range pairs {
		if strings.TrimSpace(p.CityA) == "" || strings.TrimSpace(p.CityB) == "" || p.Km < 0 {
			continue
		}
		t.m[pairKey(p.CityA, p.CityB)] = p.Km
	}
}

// DistanceKm looks the pair up in either order.
func (t *StaticCityTable) DistanceKm(cityA, cityB string) (float64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if km, ok := t.m[pairKey(cityA, cityB)]; ok {
		return km, true
	}
	km, ok := t.m[pairKey(cityB, cityA)]
	return km, ok
}

// Pairs returns a snapshot of all entries.
func (t *StaticCityTable) Pairs() []ports.CityPair {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]ports.CityPair, 0, len(t.m))
	for k, km := range t.m {
		a, b, _ := strings.Cut(k, "|")
		out = append(out, ports.CityPair{CityA: a, CityB: b, Km: km})
	}
	return out
}
