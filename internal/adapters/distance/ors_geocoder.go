package distance

import (
	"context"
	"errors"
	"fmt"
	"freight-match-service/internal/domain"
	"freight-match-service/internal/platform/obs"
	"freight-match-service/internal/ports"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

const DefaultORSBaseURL = "https://api.openrouteservice.org"

// ORSGeocoder implements ports.Geocoder using OpenRouteService.
//
// It coordinates:
//   - Location normalization
//   - Persistent geocode caching
//   - Collapsing concurrent lookups of the same place
//   - External API calls with retry/backoff
//
// The geocoder is safe for concurrent use.
type ORSGeocoder struct {
	session      *http.Client
	apiKey       string
	baseURL      string
	profile      string
	country      string
	retryBase    time.Duration
	geocodeCache ports.GeocodeCache
	group        singleflight.Group
}

var _ ports.Geocoder = (*ORSGeocoder)(nil)

// ORSOption customizes an ORSGeocoder.
type ORSOption func(*ORSGeocoder)

// WithBaseURL points the geocoder at another ORS deployment.
func WithBaseURL(u string) ORSOption {
	return func(o *ORSGeocoder) { o.baseURL = strings.TrimRight(u, "/") }
}

// WithCountry restricts geocoding results to an ISO country code.
func WithCountry(code string) ORSOption {
	return func(o *ORSGeocoder) { o.country = code }
}

// WithRetryBase sets the first backoff delay between retries.
func WithRetryBase(d time.Duration) ORSOption {
	return func(o *ORSGeocoder) { o.retryBase = d }
}

// WithHTTPClient replaces the default 10s-timeout client.
func WithHTTPClient(c *http.Client) ORSOption {
	return func(o *ORSGeocoder) { o.session = c }
}

func NewORSGeocoder(
	apiKey string,
	geocodeCache ports.GeocodeCache,
	opts ...ORSOption,
) (*ORSGeocoder, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	g := &ORSGeocoder{
		session:      &http.Client{Timeout: 10 * time.Second},
		apiKey:       apiKey,
		baseURL:      DefaultORSBaseURL,
		profile:      "driving-car",
		country:      "SA",
		retryBase:    defaultRetryBase,
		geocodeCache: geocodeCache,
	}
	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

// normalize ensures consistent cache keys by collapsing whitespace.
func (o *ORSGeocoder) normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Geocode resolves coordinates for locations, keyed by Location.String().
// Places the service cannot find are omitted; transport failures abort.
func (o *ORSGeocoder) Geocode(
	ctx context.Context,
	locations []domain.Location,
) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, "ors.Geocode")(&err)

	// normalized text -> keys asking for it
	wanted := make(map[string][]string, len(locations))
	needed := make([]string, 0, len(locations))
	for _, l := range locations {
		key := l.String()
		norm := o.normalize(key)
		if norm == "" {
			continue
		}
		if _, ok := wanted[norm]; !ok {
			needed = append(needed, norm)
		}
		wanted[norm] = append(wanted[norm], key)
	}

	if len(needed) == 0 {
		return map[string]domain.Coordinates{}, nil
	}

	hits := make(map[string]domain.Coordinates)
	// Resolve coordinates via cache before calling ORS geocoding.
	if o.geocodeCache != nil {
		cached, err := o.geocodeCache.GetMany(ctx, needed)
		if err != nil {
			log.Printf("geocode cache read failed: %v", err)
		} else {
			hits = cached
		}
	}

	misses := make([]string, 0, len(needed))
	for _, a := range needed {
		if _, ok := hits[a]; !ok {
			misses = append(misses, a)
		}
	}

	fresh := make(map[string]domain.Coordinates)
	if len(misses) > 0 {
		fresh, err = o.geocodeMany(ctx, misses)
		if err != nil {
			return nil, fmt.Errorf("retrieving coordinates: %w", err)
		}
	}

	if o.geocodeCache != nil && len(fresh) > 0 {
		if err := o.geocodeCache.PutMany(ctx, fresh); err != nil {
			log.Printf("geocode cache write failed: %v", err)
		}
	}

	out := make(map[string]domain.Coordinates, len(locations))
	for _, src := range []map[string]domain.Coordinates{hits, fresh} {
		for norm, c := range src {
			for _, key := range wanted[norm] {
				out[key] = c
			}
		}
	}

	return out, nil
}

// RoadDistanceKm geocodes both places and asks the matrix service for the
// driving distance between them.
func (o *ORSGeocoder) RoadDistanceKm(ctx context.Context, from, to domain.Location) (_ float64, err error) {
	defer obs.Time(ctx, "ors.RoadDistanceKm")(&err)

	coords, err := o.Geocode(ctx, []domain.Location{from, to})
	if err != nil {
		return 0, err
	}
	a, ok := coords[from.String()]
	if !ok {
		return 0, fmt.Errorf("road distance: no coordinates for %q", from.String())
	}
	b, ok := coords[to.String()]
	if !ok {
		return 0, fmt.Errorf("road distance: no coordinates for %q", to.String())
	}

	row, err := o.fetchMatrixRow(ctx, a, []domain.Coordinates{b})
	if err != nil {
		return 0, fmt.Errorf("fetching matrix row: %w", err)
	}
	return row[0], nil
}
