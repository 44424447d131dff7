package domain

import (
	"fmt"
	"slices"
	"time"
)

// TripStatus is the lifecycle state of a trip.
type TripStatus string

const (
	TripActive     TripStatus = "active"
	TripInProgress TripStatus = "in_progress"
	TripCompleted  TripStatus = "completed"
	TripCancelled  TripStatus = "cancelled"
)

// DefaultMaxShipments applies when a trip is created without a count cap.
const DefaultMaxShipments = 10

var tripTransitions = map[TripStatus][]TripStatus{
	TripActive:     {TripInProgress, TripCancelled},
	TripInProgress: {TripCompleted, TripCancelled},
}

// CanTransitionTrip reports whether a trip may move from one status to another.
// in_progress -> cancelled is kept for operator overrides.
func CanTransitionTrip(from, to TripStatus) bool {
	return slices.Contains(tripTransitions[from], to)
}

// TripCapacity is the total space a carrier declares for a trip.
type TripCapacity struct {
	Weight float64 // kg
	Volume float64 // m3
}

// Trip is a carrier's declared journey with spare capacity.
// BookedWeight is the sum of confirmed booking weights; it only changes
// through the ledger together with ShipmentIDs.
type Trip struct {
	ID            string
	CarrierID     string
	Origin        Location
	Destination   Location
	DepartureDate time.Time
	ArrivalDate   time.Time
	TotalCapacity TripCapacity
	ShipmentIDs   []string
	BookedWeight  float64
	MaxShipments  int
	Status        TripStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AvailableWeight is the unbooked weight capacity, never negative.
func (t *Trip) AvailableWeight() float64 {
	avail := t.TotalCapacity.Weight - t.BookedWeight
	if avail < 0 {
		return 0
	}
	return avail
}

// OpenSlots is the number of shipments the trip can still take.
func (t *Trip) OpenSlots() int {
	n := t.MaxShipments - len(t.ShipmentIDs)
	if n < 0 {
		return 0
	}
	return n
}

// HasShipment reports whether shipmentID is booked on the trip.
func (t *Trip) HasShipment(shipmentID string) bool {
	return slices.Contains(t.ShipmentIDs, shipmentID)
}

// Clone returns a copy that shares no slices with t.
func (t *Trip) Clone() *Trip {
	c := *t
	c.ShipmentIDs = slices.Clone(t.ShipmentIDs)
	return &c
}

// Validate checks the fields required to accept bookings.
func (t *Trip) Validate() error {
	if t.CarrierID == "" {
		return fmt.Errorf("trip %q: carrier id is required: %w", t.ID, ErrValidation)
	}
	if t.Origin.City == "" || t.Destination.City == "" {
		return fmt.Errorf("trip %q: origin and destination are required: %w", t.ID, ErrValidation)
	}
	if t.DepartureDate.IsZero() {
		return fmt.Errorf("trip %q: departure date is required: %w", t.ID, ErrValidation)
	}
	if t.TotalCapacity.Weight <= 0 {
		return fmt.Errorf("trip %q: capacity weight must be positive: %w", t.ID, ErrValidation)
	}
	if t.MaxShipments < 0 {
		return fmt.Errorf("trip %q: max shipments must not be negative: %w", t.ID, ErrValidation)
	}
	return nil
}
