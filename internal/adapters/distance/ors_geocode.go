package distance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"freight-match-service/internal/domain"
	"freight-match-service/internal/platform/obs"
	"net/http"
)

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

var errNoGeocodeResult = errors.New("no geocode result")

// geocodeMany resolves addresses individually using OpenRouteService (/geocode/search).
// Addresses without a result are left out of the map.
func (o *ORSGeocoder) geocodeMany(
	ctx context.Context,
	addresses []string,
) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, "ors.geocodeMany")(&err)

	out := make(map[string]domain.Coordinates, len(addresses))
	for _, a := range addresses {
		c, err := o.geocodeOne(ctx, a)
		if errors.Is(err, errNoGeocodeResult) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[a] = c
	}

	return out, nil
}

// geocodeOne shares a single in-flight request between callers asking for
// the same address.
func (o *ORSGeocoder) geocodeOne(ctx context.Context, address string) (domain.Coordinates, error) {
	v, err, _ := o.group.Do(address, func() (any, error) {
		return o.search(ctx, address)
	})
	if err != nil {
		return domain.Coordinates{}, err
	}
	return v.(domain.Coordinates), nil
}

func (o *ORSGeocoder) search(ctx context.Context, address string) (domain.Coordinates, error) {
	endpoint := o.baseURL + "/geocode/search"

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := o.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("text", address)
		if o.country != "" {
			q.Set("boundary.country", o.country)
		}
		q.Set("size", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, fmt.Errorf("decode geocode response: %w", err)
	}

	if len(decoded.Features) == 0 {
		return domain.Coordinates{}, fmt.Errorf("%q: %w", address, errNoGeocodeResult)
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return domain.Coordinates{}, fmt.Errorf("invalid coordinate format for %q", address)
	}

	return domain.Coordinates{Lon: coords[0], Lat: coords[1]}, nil
}
