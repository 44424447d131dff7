package domain

import "time"

// BookingStatus of a reservation.
type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking reserves part of a trip's capacity for one shipment.
// Weight is snapshotted at booking time and never changes afterwards.
type Booking struct {
	ID          string
	TripID      string
	ShipmentID  string
	Weight      float64
	Price       float64
	Status      BookingStatus
	BookedAt    time.Time
	CancelledAt *time.Time
}

// Active reports whether the booking still holds capacity.
func (b *Booking) Active() bool { return b.Status == BookingConfirmed }
