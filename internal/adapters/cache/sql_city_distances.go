package cache

import (
	"context"
	"errors"
	"fmt"
	"freight-match-service/internal/platform/db"
	"freight-match-service/internal/platform/obs"
	"freight-match-service/internal/ports"
	"strings"
)

// SQLCityDistanceStore persists the operator-maintained city distance table.
// Pairs are stored once per direction given; lookups are made symmetric by
// the in-memory table they are loaded into.
type SQLCityDistanceStore struct {
	DB *db.DB
}

var _ ports.CityDistanceStore = (*SQLCityDistanceStore)(nil)

func NewSQLCityDistanceStore(d *db.DB) *SQLCityDistanceStore {
	return &SQLCityDistanceStore{DB: d}
}

// Load every stored pair, ordered by city names.
func (s *SQLCityDistanceStore) ListCityDistances(ctx context.Context) (_ []ports.CityPair, err error) {
	defer obs.Time(ctx, "distance.cache.ListCityDistances")(&err)

	if s.DB == nil || s.DB.DB == nil {
		return nil, errors.New("city distances: db is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT city_a, city_b, km
	FROM city_distances
	ORDER BY city_a, city_b;
	`)
	if err != nil {
		return nil, fmt.Errorf("list city distances: query city_distances table: %w", err)
	}
	defer rows.Close()

	out := make([]ports.CityPair, 0, 32)
	for rows.Next() {
		var p ports.CityPair
		if err := rows.Scan(&p.CityA, &p.CityB, &p.Km); err != nil {
			return nil, fmt.Errorf("list city distances: scan rows: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list city distances: row iteration: %w", err)
	}

	return out, nil
}

// Store many city pairs, replacing the distance of pairs already present.
func (s *SQLCityDistanceStore) PutCityDistances(ctx context.Context, pairs []ports.CityPair) (err error) {
	defer obs.Time(ctx, "distance.cache.PutCityDistances")(&err)

	if s.DB == nil || s.DB.DB == nil {
		return errors.New("city distances: db is nil")
	}

	if len(pairs) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert city distances: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, s.DB.Dialect.Rebind(`
	INSERT INTO city_distances (city_a, city_b, km)
	VALUES (?, ?, ?)
	ON CONFLICT (city_a, city_b) DO UPDATE
	SET km = EXCLUDED.km;
	`))
	if err != nil {
		return fmt.Errorf("insert city distances: db prepare: %w", err)
	}
	defer stmt.Close()

	for _, p := range pairs {
		a, b := strings.TrimSpace(p.CityA), strings.TrimSpace(p.CityB)
		if a == "" || b == "" {
			return fmt.Errorf("insert city distances: empty city name")
		}
		if p.Km < 0 {
			return fmt.Errorf("insert city distances %s-%s: negative distance", a, b)
		}

		if _, err := stmt.ExecContext(ctx, a, b, p.Km); err != nil {
			return fmt.Errorf("insert city distances %s-%s: %w", a, b, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert city distances commit: %w", err)
	}

	return nil
}
