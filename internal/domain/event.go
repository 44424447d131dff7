package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType names a notification the core produces for the notification collaborator.
type EventType string

const (
	EventMatchFound           EventType = "match.found"
	EventShipmentStatusChange EventType = "shipment.status_changed"
	EventTripStatusChange     EventType = "trip.status_changed"
	EventBookingConfirmed     EventType = "booking.confirmed"
	EventBookingCancelled     EventType = "booking.cancelled"
)

// Event is notification data. The core never delivers events itself.
type Event struct {
	ID         uuid.UUID         `json:"id"`
	Type       EventType         `json:"type"`
	ShipmentID string            `json:"shipment_id,omitempty"`
	CarrierID  string            `json:"carrier_id,omitempty"`
	TripID     string            `json:"trip_id,omitempty"`
	BookingID  string            `json:"booking_id,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// NewEvent stamps an event with a fresh id.
func NewEvent(t EventType, at time.Time) Event {
	return Event{ID: uuid.New(), Type: t, OccurredAt: at}
}

// Key is the partition/routing key for the event: the shipment when there is one,
// otherwise the trip.
func (e Event) Key() string {
	if e.ShipmentID != "" {
		return e.ShipmentID
	}
	return e.TripID
}
