package distance

import (
	"context"
	"encoding/json"
	"freight-match-service/internal/domain"
	"freight-match-service/internal/ports"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type mapGeocodeCache struct {
	mu sync.Mutex
	m  map[string]domain.Coordinates
}

func (c *mapGeocodeCache) GetMany(_ context.Context, addresses []string) (map[string]domain.Coordinates, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := map[string]domain.Coordinates{}
	for _, a := range addresses {
		if v, ok := c.m[a]; ok {
			out[a] = v
		}
	}
	return out, nil
}

func (c *mapGeocodeCache) PutMany(_ context.Context, results map[string]domain.Coordinates) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range results {
		c.m[k] = v
	}
	return nil
}

var knownPlaces = map[string][]float64{
	"Riyadh, Riyadh": {46.6753, 24.7136},
	"Jeddah, Makkah": {39.1925, 21.4858},
}

func newORSServer(t *testing.T, searches *atomic.Int32, failFirst int32) *httptest.Server {
	t.Helper()
	var failures atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/geocode/search", func(w http.ResponseWriter, r *http.Request) {
		searches.Add(1)
		if failures.Add(1) <= failFirst {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if r.Header.Get("Authorization") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("boundary.country") != "SA" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		type feature struct {
			Geometry struct {
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
		}
		var body struct {
			Features []feature `json:"features"`
		}
		if c, ok := knownPlaces[r.URL.Query().Get("text")]; ok {
			var f feature
			f.Geometry.Coordinates = c
			body.Features = append(body.Features, f)
		}
		_ = json.NewEncoder(w).Encode(body)
	})
	mux.HandleFunc("/v2/matrix/driving-car", func(w http.ResponseWriter, r *http.Request) {
		var req matrixRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Locations) != 2 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		km := 949.64
		_ = json.NewEncoder(w).Encode(map[string]any{"distances": [][]*float64{{&km}}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestGeocoder(t *testing.T, srv *httptest.Server, cache ports.GeocodeCache) *ORSGeocoder {
	t.Helper()
	g, err := NewORSGeocoder("test-key", cache, WithBaseURL(srv.URL), WithRetryBase(time.Millisecond))
	if err != nil {
		t.Fatalf("new geocoder: %v", err)
	}
	return g
}

func TestORSGeocoderUsesCacheAndSkipsUnknown(t *testing.T) {
	var searches atomic.Int32
	srv := newORSServer(t, &searches, 0)
	cache := &mapGeocodeCache{m: map[string]domain.Coordinates{
		"Jeddah, Makkah": {Lon: 39.19, Lat: 21.48},
	}}
	g := newTestGeocoder(t, srv, cache)

	locs := []domain.Location{
		{City: "Riyadh", Region: "Riyadh"},
		{City: "Jeddah", Region: "Makkah"},
		{City: "Atlantis"},
		{City: "  Riyadh", Region: "Riyadh"},
	}
	got, err := g.Geocode(context.Background(), locs)
	if err != nil {
		t.Fatalf("geocode: %v", err)
	}

	if got["Jeddah, Makkah"].Lat != 21.48 {
		t.Fatalf("expected cached Jeddah coords, got %+v", got["Jeddah, Makkah"])
	}
	if got["Riyadh, Riyadh"].Lon != 46.6753 || got["  Riyadh, Riyadh"].Lon != 46.6753 {
		t.Fatalf("expected Riyadh coords for both spellings, got %v", got)
	}
	if _, ok := got["Atlantis"]; ok {
		t.Fatalf("unknown place should be omitted")
	}
	// Riyadh and Atlantis only; Jeddah came from cache.
	if n := searches.Load(); n != 2 {
		t.Fatalf("expected 2 searches, got %d", n)
	}
	if _, ok := cache.m["Riyadh, Riyadh"]; !ok {
		t.Fatalf("fresh result should be written to cache")
	}
}

func TestORSGeocoderRetriesTransientFailures(t *testing.T) {
	var searches atomic.Int32
	srv := newORSServer(t, &searches, 2)
	g := newTestGeocoder(t, srv, nil)

	got, err := g.Geocode(context.Background(), []domain.Location{{City: "Riyadh", Region: "Riyadh"}})
	if err != nil {
		t.Fatalf("geocode: %v", err)
	}
	if _, ok := got["Riyadh, Riyadh"]; !ok {
		t.Fatalf("expected a result after retries")
	}
	if n := searches.Load(); n != 3 {
		t.Fatalf("expected 3 attempts, got %d", n)
	}
}

func TestORSGeocoderGivesUpOnClientErrors(t *testing.T) {
	var searches atomic.Int32
	srv := newORSServer(t, &searches, 0)
	g, err := NewORSGeocoder("wrong-key", nil, WithBaseURL(srv.URL), WithRetryBase(time.Millisecond))
	if err != nil {
		t.Fatalf("new geocoder: %v", err)
	}

	if _, err := g.Geocode(context.Background(), []domain.Location{{City: "Riyadh", Region: "Riyadh"}}); err == nil {
		t.Fatalf("expected error for unauthorized request")
	}
	if n := searches.Load(); n != 1 {
		t.Fatalf("401 must not be retried, got %d attempts", n)
	}
}

func TestORSGeocoderRoadDistance(t *testing.T) {
	var searches atomic.Int32
	srv := newORSServer(t, &searches, 0)
	g := newTestGeocoder(t, srv, nil)

	km, err := g.RoadDistanceKm(context.Background(),
		domain.Location{City: "Riyadh", Region: "Riyadh"},
		domain.Location{City: "Jeddah", Region: "Makkah"},
	)
	if err != nil {
		t.Fatalf("road distance: %v", err)
	}
	if km != 949.6 {
		t.Fatalf("expected 949.6 km, got %v", km)
	}

	if _, err := g.RoadDistanceKm(context.Background(),
		domain.Location{City: "Riyadh", Region: "Riyadh"},
		domain.Location{City: "Atlantis"},
	); err == nil {
		t.Fatalf("expected error when a place cannot be geocoded")
	}
}

func TestNewORSGeocoderRequiresKey(t *testing.T) {
	if _, err := NewORSGeocoder("", nil); err == nil {
		t.Fatalf("expected error for empty api key")
	}
}

func TestParseRetryAfter(t *testing.T) {
	cases := map[string]time.Duration{
		"":     0,
		"abc":  0,
		"2":    2 * time.Second,
		"3600": maxRetryAfter,
		"-1":   0,
	}
	for in, want := range cases {
		if got := parseRetryAfter(in); got != want {
			t.Errorf("parseRetryAfter(%q) = %v, want %v", in, got, want)
		}
	}
}
