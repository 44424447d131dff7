package repositories

import (
	"context"
	"errors"
	"fmt"
	"freight-match-service/internal/platform/db"
)

// Column types are chosen to work unchanged on Postgres and SQLite.
var schema = []string{
	`
	CREATE TABLE IF NOT EXISTS shipments (
		id TEXT PRIMARY KEY,
		sender_id TEXT NOT NULL,
		category TEXT NOT NULL,
		weight DOUBLE PRECISION NOT NULL,
		length_cm DOUBLE PRECISION NOT NULL,
		width_cm DOUBLE PRECISION NOT NULL,
		height_cm DOUBLE PRECISION NOT NULL,
		volume_m3 DOUBLE PRECISION NOT NULL,
		pickup TEXT NOT NULL,
		delivery TEXT NOT NULL,
		pickup_date TEXT NOT NULL,
		delivery_date TEXT NOT NULL,
		declared_value DOUBLE PRECISION NOT NULL,
		insurance_required INTEGER NOT NULL,
		images TEXT NOT NULL,
		urgency TEXT NOT NULL,
		status TEXT NOT NULL,
		matching_carriers TEXT NOT NULL,
		selected_carrier TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`,
	`CREATE INDEX IF NOT EXISTS idx_shipments_status ON shipments(status);`,
	`
	CREATE TABLE IF NOT EXISTS carriers (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		vehicle_type TEXT NOT NULL,
		carrier_type TEXT NOT NULL,
		tier TEXT NOT NULL,
		min_weight DOUBLE PRECISION NOT NULL,
		max_weight DOUBLE PRECISION NOT NULL,
		max_volume DOUBLE PRECISION NOT NULL,
		service_areas TEXT NOT NULL,
		availability TEXT NOT NULL,
		base_rate DOUBLE PRECISION NOT NULL,
		price_per_km DOUBLE PRECISION NOT NULL,
		weight_rate DOUBLE PRECISION NOT NULL,
		minimum_charge DOUBLE PRECISION NOT NULL,
		rating DOUBLE PRECISION NOT NULL,
		total_trips INTEGER NOT NULL,
		verified INTEGER NOT NULL,
		insured INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS trips (
		id TEXT PRIMARY KEY,
		carrier_id TEXT NOT NULL,
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		departure_date TEXT NOT NULL,
		arrival_date TEXT NOT NULL,
		capacity_weight DOUBLE PRECISION NOT NULL,
		capacity_volume DOUBLE PRECISION NOT NULL,
		shipment_ids TEXT NOT NULL,
		booked_weight DOUBLE PRECISION NOT NULL,
		max_shipments INTEGER NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`,
	`CREATE INDEX IF NOT EXISTS idx_trips_carrier ON trips(carrier_id);`,
	`CREATE INDEX IF NOT EXISTS idx_trips_status ON trips(status);`,
	`
	CREATE TABLE IF NOT EXISTS bookings (
		id TEXT PRIMARY KEY,
		trip_id TEXT NOT NULL,
		shipment_id TEXT NOT NULL,
		weight DOUBLE PRECISION NOT NULL,
		price DOUBLE PRECISION NOT NULL,
		status TEXT NOT NULL,
		booked_at TEXT NOT NULL,
		cancelled_at TEXT
	);
	`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_trip ON bookings(trip_id);`,
	`
	CREATE TABLE IF NOT EXISTS geocode_cache (
		address TEXT PRIMARY KEY,
		lon DOUBLE PRECISION NOT NULL,
		lat DOUBLE PRECISION NOT NULL
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS city_distances (
		city_a TEXT NOT NULL,
		city_b TEXT NOT NULL,
		km DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (city_a, city_b)
	);
	`,
}

// InitSchema creates every table the service uses. It is idempotent.
func InitSchema(ctx context.Context, d *db.DB) error {
	if d == nil || d.DB == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
