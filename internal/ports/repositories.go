package ports

import (
	"context"
	"freight-match-service/internal/domain"
)

// Port: persistence of shipments. Implementations return an error wrapping
// domain.ErrNotFound for unknown ids.
type ShipmentRepository interface {
	GetShipment(ctx context.Context, id string) (*domain.Shipment, error)
	// List shipments, optionally restricted to one status ("" for all).
	ListShipments(ctx context.Context, status domain.ShipmentStatus) ([]*domain.Shipment, error)
	SaveShipment(ctx context.Context, s *domain.Shipment) error
}

// Port: persistence of carriers.
type CarrierRepository interface {
	GetCarrier(ctx context.Context, id string) (*domain.Carrier, error)
	ListCarriers(ctx context.Context) ([]*domain.Carrier, error)
	SaveCarrier(ctx context.Context, c *domain.Carrier) error
}

// TripFilter narrows ListTrips; zero values match everything.
type TripFilter struct {
	CarrierID string
	Status    domain.TripStatus
}

// Port: persistence of trips.
type TripRepository interface {
	GetTrip(ctx context.Context, id string) (*domain.Trip, error)
	ListTrips(ctx context.Context, f TripFilter) ([]*domain.Trip, error)
	SaveTrip(ctx context.Context, t *domain.Trip) error
}

// Port: persistence of bookings.
type BookingRepository interface {
	GetBooking(ctx context.Context, id string) (*domain.Booking, error)
	ListBookings(ctx context.Context, tripID string) ([]*domain.Booking, error)
}

// Port used by the ledger to persist a booking change together with the
// trip's capacity. Implementations must apply both writes atomically.
// booking is nil when only the trip changed (status updates).
type LedgerStore interface {
	CommitBooking(ctx context.Context, trip *domain.Trip, booking *domain.Booking) error
}

// Store is the full persistence collaborator.
type Store interface {
	ShipmentRepository
	CarrierRepository
	TripRepository
	BookingRepository
	LedgerStore
}
