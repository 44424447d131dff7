package cache

import (
	"context"
	"errors"
	"fmt"
	"freight-match-service/internal/domain"
	"freight-match-service/internal/platform/obs"
	"freight-match-service/internal/ports"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	geocodeKeyPrefix  = "geocode:"
	DefaultGeocodeTTL = 30 * 24 * time.Hour
)

// RedisGeocodeCache keeps address -> coordinates entries in Redis as "lon,lat"
// strings with a TTL.
type RedisGeocodeCache struct {
	Client redis.UniversalClient
	TTL    time.Duration
}

var _ ports.GeocodeCache = (*RedisGeocodeCache)(nil)

func NewRedisGeocodeCache(client redis.UniversalClient, ttl time.Duration) *RedisGeocodeCache {
	if ttl <= 0 {
		ttl = DefaultGeocodeTTL
	}
	return &RedisGeocodeCache{Client: client, TTL: ttl}
}

func geocodeKey(address string) string {
	return geocodeKeyPrefix + strings.ToLower(address)
}

func encodeCoords(c domain.Coordinates) string {
	return strconv.FormatFloat(c.Lon, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lat, 'f', -1, 64)
}

func decodeCoords(v string) (domain.Coordinates, error) {
	lonStr, latStr, ok := strings.Cut(v, ",")
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("malformed value %q", v)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("parse lon: %w", err)
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("parse lat: %w", err)
	}
	return domain.Coordinates{Lon: lon, Lat: lat}, nil
}

// Fetch cached coordinates for the given addresses. Malformed entries are
// treated as misses.
func (r *RedisGeocodeCache) GetMany(
	ctx context.Context,
	addresses []string,
) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, "geocode.redis.GetMany")(&err)

	if r.Client == nil {
		return nil, errors.New("geocode cache: redis client is nil")
	}

	uniq := uniqueKeys(addresses)
	if len(uniq) == 0 {
		return map[string]domain.Coordinates{}, nil
	}

	keys := make([]string, len(uniq))
	for i, a := range uniq {
		keys[i] = geocodeKey(a)
	}

	vals, err := r.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: redis mget: %w", err)
	}

	out := make(map[string]domain.Coordinates, len(uniq))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		c, err := decodeCoords(s)
		if err != nil {
			continue
		}
		out[uniq[i]] = c
	}

	return out, nil
}

// Store address -> coordinate mappings in one pipeline.
func (r *RedisGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Coordinates) (err error) {
	defer obs.Time(ctx, "geocode.redis.PutMany")(&err)

	if r.Client == nil {
		return errors.New("geocode cache: redis client is nil")
	}

	if len(results) == 0 {
		return nil
	}

	pipe := r.Client.Pipeline()
	for addr, c := range results {
		if strings.TrimSpace(addr) == "" {
			return fmt.Errorf("insert geocode cache: empty address key")
		}
		pipe.Set(ctx, geocodeKey(strings.TrimSpace(addr)), encodeCoords(c), r.TTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert geocode cache: redis pipeline: %w", err)
	}

	return nil
}
