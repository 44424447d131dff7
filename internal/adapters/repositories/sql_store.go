package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"freight-match-service/internal/domain"
	"freight-match-service/internal/platform/db"
	"freight-match-service/internal/platform/obs"
	"freight-match-service/internal/ports"
	"strings"
	"time"
)

// SQLStore implements ports.Store on Postgres (pgx) or SQLite.
//
// Locations and string lists are stored as JSON text, timestamps as
// RFC 3339 text, so the same schema and queries serve both databases.
type SQLStore struct {
	DB *db.DB
}

var _ ports.Store = (*SQLStore)(nil)

func NewSQLStore(d *db.DB) *SQLStore {
	return &SQLStore{DB: d}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SQLStore) q(query string) string { return s.DB.Dialect.Rebind(query) }

func (s *SQLStore) check() error {
	if s.DB == nil || s.DB.DB == nil {
		return errors.New("sql store: db is nil")
	}
	return nil
}

// upsertSQL builds an INSERT ... ON CONFLICT (key) DO UPDATE statement.
func upsertSQL(table, key string, cols []string) string {
	sets := make([]string, 0, len(cols))
	for _, c := range cols {
		if c == key {
			continue
		}
		sets = append(sets, c+" = EXCLUDED."+c)
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s;",
		table, strings.Join(cols, ", "), db.Placeholders(len(cols)), key, strings.Join(sets, ", "),
	)
}

func encodeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func decodeTime(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, v)
}

func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

type locationJSON struct {
	City    string   `json:"city"`
	Region  string   `json:"region,omitempty"`
	Address string   `json:"address,omitempty"`
	Lon     *float64 `json:"lon,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
}

func encodeLocation(l domain.Location) (string, error) {
	j := locationJSON{City: l.City, Region: l.Region, Address: l.Address}
	if l.Coords != nil {
		lon, lat := l.Coords.Lon, l.Coords.Lat
		j.Lon, j.Lat = &lon, &lat
	}
	return encodeJSON(j)
}

func decodeLocation(v string) (domain.Location, error) {
	var j locationJSON
	if err := json.Unmarshal([]byte(v), &j); err != nil {
		return domain.Location{}, err
	}
	l := domain.Location{City: j.City, Region: j.Region, Address: j.Address}
	if j.Lon != nil && j.Lat != nil {
		l.Coords = &domain.Coordinates{Lon: *j.Lon, Lat: *j.Lat}
	}
	return l, nil
}

// ---- shipments ----

var shipmentCols = []string{
	"id", "sender_id", "category", "weight", "length_cm", "width_cm", "height_cm", "volume_m3",
	"pickup", "delivery", "pickup_date", "delivery_date", "declared_value", "insurance_required",
	"images", "urgency", "status", "matching_carriers", "selected_carrier", "created_at", "updated_at",
}

func scanShipment(r rowScanner) (*domain.Shipment, error) {
	var (
		sh                                    domain.Shipment
		pickup, delivery, images, matching    string
		pickupDate, deliveryDate              string
		createdAt, updatedAt, urgency, status string
		insurance                             int
	)
	err := r.Scan(
		&sh.ID, &sh.SenderID, &sh.Category, &sh.Weight,
		&sh.Dimensions.Length, &sh.Dimensions.Width, &sh.Dimensions.Height, &sh.VolumeM3,
		&pickup, &delivery, &pickupDate, &deliveryDate, &sh.DeclaredValue, &insurance,
		&images, &urgency, &status, &matching, &sh.SelectedCarrier, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	sh.InsuranceRequired = insurance != 0
	sh.Urgency = domain.Urgency(urgency)
	sh.Status = domain.ShipmentStatus(status)

	if sh.Pickup, err = decodeLocation(pickup); err != nil {
		return nil, fmt.Errorf("decode pickup: %w", err)
	}
	if sh.Delivery, err = decodeLocation(delivery); err != nil {
		return nil, fmt.Errorf("decode delivery: %w", err)
	}
	if err := json.Unmarshal([]byte(images), &sh.Images); err != nil {
		return nil, fmt.Errorf("decode images: %w", err)
	}
	if err := json.Unmarshal([]byte(matching), &sh.MatchingCarriers); err != nil {
		return nil, fmt.Errorf("decode matching carriers: %w", err)
	}
	for _, f := range []struct {
		dst *time.Time
		src string
	}{
		{&sh.PickupDate, pickupDate},
		{&sh.DeliveryDate, deliveryDate},
		{&sh.CreatedAt, createdAt},
		{&sh.UpdatedAt, updatedAt},
	} {
		if *f.dst, err = decodeTime(f.src); err != nil {
			return nil, fmt.Errorf("decode time: %w", err)
		}
	}
	return &sh, nil
}

func (s *SQLStore) GetShipment(ctx context.Context, id string) (_ *domain.Shipment, err error) {
	defer obs.Time(ctx, "store.GetShipment")(&err)
	if err := s.check(); err != nil {
		return nil, err
	}

	query := "SELECT " + strings.Join(shipmentCols, ", ") + " FROM shipments WHERE id = ?;"
	sh, err := scanShipment(s.DB.QueryRowContext(ctx, s.q(query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get shipment %q: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get shipment %q: scan row: %w", id, err)
	}
	return sh, nil
}

func (s *SQLStore) ListShipments(ctx context.Context, status domain.ShipmentStatus) (_ []*domain.Shipment, err error) {
	defer obs.Time(ctx, "store.ListShipments")(&err)
	if err := s.check(); err != nil {
		return nil, err
	}

	query := "SELECT " + strings.Join(shipmentCols, ", ") + " FROM shipments"
	var args []any
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, string(status))
	}
	query += " ORDER BY created_at, id;"

	rows, err := s.DB.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list shipments: query shipments table: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Shipment, 0, 64)
	for rows.Next() {
		sh, err := scanShipment(rows)
		if err != nil {
			return nil, fmt.Errorf("list shipments: scan row: %w", err)
		}
		out = append(out, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list shipments: row iteration: %w", err)
	}
	return out, nil
}

func (s *SQLStore) SaveShipment(ctx context.Context, sh *domain.Shipment) (err error) {
	defer obs.Time(ctx, "store.SaveShipment")(&err)
	if err := s.check(); err != nil {
		return err
	}

	pickup, err := encodeLocation(sh.Pickup)
	if err != nil {
		return fmt.Errorf("save shipment %q: encode pickup: %w", sh.ID, err)
	}
	delivery, err := encodeLocation(sh.Delivery)
	if err != nil {
		return fmt.Errorf("save shipment %q: encode delivery: %w", sh.ID, err)
	}
	images, err := encodeJSON(nonNil(sh.Images))
	if err != nil {
		return fmt.Errorf("save shipment %q: encode images: %w", sh.ID, err)
	}
	matching, err := encodeJSON(nonNil(sh.MatchingCarriers))
	if err != nil {
		return fmt.Errorf("save shipment %q: encode matching carriers: %w", sh.ID, err)
	}

	_, err = s.DB.ExecContext(ctx, s.q(upsertSQL("shipments", "id", shipmentCols)),
		sh.ID, sh.SenderID, sh.Category, sh.Weight,
		sh.Dimensions.Length, sh.Dimensions.Width, sh.Dimensions.Height, sh.VolumeM3,
		pickup, delivery, encodeTime(sh.PickupDate), encodeTime(sh.DeliveryDate),
		sh.DeclaredValue, boolInt(sh.InsuranceRequired),
		images, string(sh.Urgency), string(sh.Status), matching, sh.SelectedCarrier,
		encodeTime(sh.CreatedAt), encodeTime(sh.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("save shipment %q: %w", sh.ID, err)
	}
	return nil
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

// ---- carriers ----

var carrierCols = []string{
	"id", "user_id", "vehicle_type", "carrier_type", "tier", "min_weight", "max_weight", "max_volume",
	"service_areas", "availability", "base_rate", "price_per_km", "weight_rate", "minimum_charge",
	"rating", "total_trips", "verified", "insured", "created_at", "updated_at",
}

type serviceAreaJSON struct {
	City   string `json:"city,omitempty"`
	Region string `json:"region,omitempty"`
}

func scanCarrier(r rowScanner) (*domain.Carrier, error) {
	var (
		c                                      domain.Carrier
		carrierType, tier, areas, availability string
		verified, insured                      int
		createdAt, updatedAt                   string
	)
	err := r.Scan(
		&c.ID, &c.UserID, &c.VehicleType, &carrierType, &tier,
		&c.Capacity.MinWeight, &c.Capacity.MaxWeight, &c.Capacity.MaxVolume,
		&areas, &availability,
		&c.Pricing.BaseRate, &c.Pricing.PricePerKm, &c.Pricing.WeightRate, &c.Pricing.MinimumCharge,
		&c.Rating, &c.TotalTrips, &verified, &insured, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Type = domain.CarrierType(carrierType)
	c.Tier = domain.CarrierTier(tier)
	c.Availability = domain.Availability(availability)
	c.Verified, c.Insured = verified != 0, insured != 0

	var sa []serviceAreaJSON
	if err := json.Unmarshal([]byte(areas), &sa); err != nil {
		return nil, fmt.Errorf("decode service areas: %w", err)
	}
	for _, a := range sa {
		c.ServiceAreas = append(c.ServiceAreas, domain.ServiceArea{City: a.City, Region: a.Region})
	}

	if c.CreatedAt, err = decodeTime(createdAt); err != nil {
		return nil, fmt.Errorf("decode created_at: %w", err)
	}
	if c.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return nil, fmt.Errorf("decode updated_at: %w", err)
	}
	return &c, nil
}

func (s *SQLStore) GetCarrier(ctx context.Context, id string) (_ *domain.Carrier, err error) {
	defer obs.Time(ctx, "store.GetCarrier")(&err)
	if err := s.check(); err != nil {
		return nil, err
	}

	query := "SELECT " + strings.Join(carrierCols, ", ") + " FROM carriers WHERE id = ?;"
	c, err := scanCarrier(s.DB.QueryRowContext(ctx, s.q(query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get carrier %q: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get carrier %q: scan row: %w", id, err)
	}
	return c, nil
}

func (s *SQLStore) ListCarriers(ctx context.Context) (_ []*domain.Carrier, err error) {
	defer obs.Time(ctx, "store.ListCarriers")(&err)
	if err := s.check(); err != nil {
		return nil, err
	}

	query := "SELECT " + strings.Join(carrierCols, ", ") + " FROM carriers ORDER BY created_at, id;"
	rows, err := s.DB.QueryContext(ctx, s.q(query))
	if err != nil {
		return nil, fmt.Errorf("list carriers: query carriers table: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Carrier, 0, 64)
	for rows.Next() {
		c, err := scanCarrier(rows)
		if err != nil {
			return nil, fmt.Errorf("list carriers: scan row: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list carriers: row iteration: %w", err)
	}
	return out, nil
}

func (s *SQLStore) SaveCarrier(ctx context.Context, c *domain.Carrier) (err error) {
	defer obs.Time(ctx, "store.SaveCarrier")(&err)
	if err := s.check(); err != nil {
		return err
	}

	sa := make([]serviceAreaJSON, 0, len(c.ServiceAreas))
	for _, a := range c.ServiceAreas {
		sa = append(sa, serviceAreaJSON{City: a.City, Region: a.Region})
	}
	areas, err := encodeJSON(sa)
	if err != nil {
		return fmt.Errorf("save carrier %q: encode service areas: %w", c.ID, err)
	}

	_, err = s.DB.ExecContext(ctx, s.q(upsertSQL("carriers", "id", carrierCols)),
		c.ID, c.UserID, c.VehicleType, string(c.Type), string(c.Tier),
		c.Capacity.MinWeight, c.Capacity.MaxWeight, c.Capacity.MaxVolume,
		areas, string(c.Availability),
		c.Pricing.BaseRate, c.Pricing.PricePerKm, c.Pricing.WeightRate, c.Pricing.MinimumCharge,
		c.Rating, c.TotalTrips, boolInt(c.Verified), boolInt(c.Insured),
		encodeTime(c.CreatedAt), encodeTime(c.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("save carrier %q: %w", c.ID, err)
	}
	return nil
}

// ---- trips ----

var tripCols = []string{
	"id", "carrier_id", "origin", "destination", "departure_date", "arrival_date",
	"capacity_weight", "capacity_volume", "shipment_ids", "booked_weight", "max_shipments",
	"status", "created_at", "updated_at",
}

func scanTrip(r rowScanner) (*domain.Trip, error) {
	var (
		t                                domain.Trip
		origin, destination, shipmentIDs string
		departure, arrival, status       string
		createdAt, updatedAt             string
	)
	err := r.Scan(
		&t.ID, &t.CarrierID, &origin, &destination, &departure, &arrival,
		&t.TotalCapacity.Weight, &t.TotalCapacity.Volume, &shipmentIDs, &t.BookedWeight, &t.MaxShipments,
		&status, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Status = domain.TripStatus(status)
	if t.Origin, err = decodeLocation(origin); err != nil {
		return nil, fmt.Errorf("decode origin: %w", err)
	}
	if t.Destination, err = decodeLocation(destination); err != nil {
		return nil, fmt.Errorf("decode destination: %w", err)
	}
	if err := json.Unmarshal([]byte(shipmentIDs), &t.ShipmentIDs); err != nil {
		return nil, fmt.Errorf("decode shipment ids: %w", err)
	}
	for _, f := range []struct {
		dst *time.Time
		src string
	}{
		{&t.DepartureDate, departure},
		{&t.ArrivalDate, arrival},
		{&t.CreatedAt, createdAt},
		{&t.UpdatedAt, updatedAt},
	} {
		if *f.dst, err = decodeTime(f.src); err != nil {
			return nil, fmt.Errorf("decode time: %w", err)
		}
	}
	return &t, nil
}

func (s *SQLStore) GetTrip(ctx context.Context, id string) (_ *domain.Trip, err error) {
	defer obs.Time(ctx, "store.GetTrip")(&err)
	if err := s.check(); err != nil {
		return nil, err
	}

	query := "SELECT " + strings.Join(tripCols, ", ") + " FROM trips WHERE id = ?;"
	t, err := scanTrip(s.DB.QueryRowContext(ctx, s.q(query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get trip %q: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get trip %q: scan row: %w", id, err)
	}
	return t, nil
}

func (s *SQLStore) ListTrips(ctx context.Context, f ports.TripFilter) (_ []*domain.Trip, err error) {
	defer obs.Time(ctx, "store.ListTrips")(&err)
	if err := s.check(); err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	if f.CarrierID != "" {
		where = append(where, "carrier_id = ?")
		args = append(args, f.CarrierID)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}

	query := "SELECT " + strings.Join(tripCols, ", ") + " FROM trips"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY departure_date, id;"

	rows, err := s.DB.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list trips: query trips table: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Trip, 0, 64)
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("list trips: scan row: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list trips: row iteration: %w", err)
	}
	return out, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLStore) putTrip(ctx context.Context, ex execer, t *domain.Trip) error {
	origin, err := encodeLocation(t.Origin)
	if err != nil {
		return fmt.Errorf("encode origin: %w", err)
	}
	destination, err := encodeLocation(t.Destination)
	if err != nil {
		return fmt.Errorf("encode destination: %w", err)
	}
	shipmentIDs, err := encodeJSON(nonNil(t.ShipmentIDs))
	if err != nil {
		return fmt.Errorf("encode shipment ids: %w", err)
	}

	_, err = ex.ExecContext(ctx, s.q(upsertSQL("trips", "id", tripCols)),
		t.ID, t.CarrierID, origin, destination,
		encodeTime(t.DepartureDate), encodeTime(t.ArrivalDate),
		t.TotalCapacity.Weight, t.TotalCapacity.Volume, shipmentIDs, t.BookedWeight, t.MaxShipments,
		string(t.Status), encodeTime(t.CreatedAt), encodeTime(t.UpdatedAt),
	)
	return err
}

func (s *SQLStore) SaveTrip(ctx context.Context, t *domain.Trip) (err error) {
	defer obs.Time(ctx, "store.SaveTrip")(&err)
	if err := s.check(); err != nil {
		return err
	}
	if err := s.putTrip(ctx, s.DB, t); err != nil {
		return fmt.Errorf("save trip %q: %w", t.ID, err)
	}
	return nil
}

// ---- bookings ----

var bookingCols = []string{"id", "trip_id", "shipment_id", "weight", "price", "status", "booked_at", "cancelled_at"}

func scanBooking(r rowScanner) (*domain.Booking, error) {
	var (
		b                domain.Booking
		status, bookedAt string
		cancelledAt      sql.NullString
	)
	if err := r.Scan(&b.ID, &b.TripID, &b.ShipmentID, &b.Weight, &b.Price, &status, &bookedAt, &cancelledAt); err != nil {
		return nil, err
	}

	b.Status = domain.BookingStatus(status)
	var err error
	if b.BookedAt, err = decodeTime(bookedAt); err != nil {
		return nil, fmt.Errorf("decode booked_at: %w", err)
	}
	if cancelledAt.Valid && cancelledAt.String != "" {
		at, err := decodeTime(cancelledAt.String)
		if err != nil {
			return nil, fmt.Errorf("decode cancelled_at: %w", err)
		}
		b.CancelledAt = &at
	}
	return &b, nil
}

func (s *SQLStore) GetBooking(ctx context.Context, id string) (_ *domain.Booking, err error) {
	defer obs.Time(ctx, "store.GetBooking")(&err)
	if err := s.check(); err != nil {
		return nil, err
	}

	query := "SELECT " + strings.Join(bookingCols, ", ") + " FROM bookings WHERE id = ?;"
	b, err := scanBooking(s.DB.QueryRowContext(ctx, s.q(query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get booking %q: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get booking %q: scan row: %w", id, err)
	}
	return b, nil
}

func (s *SQLStore) ListBookings(ctx context.Context, tripID string) (_ []*domain.Booking, err error) {
	defer obs.Time(ctx, "store.ListBookings")(&err)
	if err := s.check(); err != nil {
		return nil, err
	}

	query := "SELECT " + strings.Join(bookingCols, ", ") + " FROM bookings"
	var args []any
	if tripID != "" {
		query += " WHERE trip_id = ?"
		args = append(args, tripID)
	}
	query += " ORDER BY booked_at, id;"

	rows, err := s.DB.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: query bookings table: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("list bookings: scan row: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list bookings: row iteration: %w", err)
	}
	return out, nil
}

// CommitBooking writes the trip and the booking in one transaction.
func (s *SQLStore) CommitBooking(ctx context.Context, t *domain.Trip, b *domain.Booking) (err error) {
	defer obs.Time(ctx, "store.CommitBooking")(&err)
	if err := s.check(); err != nil {
		return err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("commit booking: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.putTrip(ctx, tx, t); err != nil {
		return fmt.Errorf("commit booking: trip %q: %w", t.ID, err)
	}

	if b != nil {
		var cancelledAt any
		if b.CancelledAt != nil {
			cancelledAt = encodeTime(*b.CancelledAt)
		}
		_, err := tx.ExecContext(ctx, s.q(upsertSQL("bookings", "id", bookingCols)),
			b.ID, b.TripID, b.ShipmentID, b.Weight, b.Price, string(b.Status),
			encodeTime(b.BookedAt), cancelledAt,
		)
		if err != nil {
			return fmt.Errorf("commit booking: booking %q: %w", b.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit booking: commit: %w", err)
	}
	return nil
}
