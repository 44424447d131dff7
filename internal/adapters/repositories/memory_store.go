package repositories

import (
	"context"
	"fmt"
	"freight-match-service/internal/domain"
	"freight-match-service/internal/ports"
	"sync"
)

// MemoryStore keeps everything in process memory. It implements ports.Store
// and is used when no database is configured and in tests.
//
// Values are copied on the way in and out so callers never share state with
// the store. Listing preserves insertion order.
type MemoryStore struct {
	mu sync.RWMutex

	shipments     map[string]*domain.Shipment
	shipmentOrder []string
	carriers      map[string]*domain.Carrier
	carrierOrder  []string
	trips         map[string]*domain.Trip
	tripOrder     []string
	bookings      map[string]*domain.Booking
	bookingOrder  []string
}

var _ ports.Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		shipments: make(map[string]*domain.Shipment),
		carriers:  make(map[string]*domain.Carrier),
		trips:     make(map[string]*domain.Trip),
		bookings:  make(map[string]*domain.Booking),
	}
}

func (m *MemoryStore) GetShipment(_ context.Context, id string) (*domain.Shipment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.shipments[id]
	if !ok {
		return nil, fmt.Errorf("get shipment %q: %w", id, domain.ErrNotFound)
	}
	return cloneShipment(s), nil
}

func (m *MemoryStore) ListShipments(_ context.Context, status domain.ShipmentStatus) ([]*domain.Shipment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Shipment, 0, len(m.shipmentOrder))
	for _, id := range m.shipmentOrder {
		s := m.shipments[id]
		if status != "" && s.Status != status {
			continue
		}
		out = append(out, cloneShipment(s))
	}
	return out, nil
}

func (m *MemoryStore) SaveShipment(_ context.Context, s *domain.Shipment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.shipments[s.ID]; !ok {
		m.shipmentOrder = append(m.shipmentOrder, s.ID)
	}
	m.shipments[s.ID] = cloneShipment(s)
	return nil
}

func (m *MemoryStore) GetCarrier(_ context.Context, id string) (*domain.Carrier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.carriers[id]
	if !ok {
		return nil, fmt.Errorf("get carrier %q: %w", id, domain.ErrNotFound)
	}
	return cloneCarrier(c), nil
}

func (m *MemoryStore) ListCarriers(_ context.Context) ([]*domain.Carrier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Carrier, 0, len(m.carrierOrder))
	for _, id := range m.carrierOrder {
		out = append(out, cloneCarrier(m.carriers[id]))
	}
	return out, nil
}

func (m *MemoryStore) SaveCarrier(_ context.Context, c *domain.Carrier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.carriers[c.ID]; !ok {
		m.carrierOrder = append(m.carrierOrder, c.ID)
	}
	m.carriers[c.ID] = cloneCarrier(c)
	return nil
}

func (m *MemoryStore) GetTrip(_ context.Context, id string) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.trips[id]
	if !ok {
		return nil, fmt.Errorf("get trip %q: %w", id, domain.ErrNotFound)
	}
	return cloneTrip(t), nil
}

func (m *MemoryStore) ListTrips(_ context.Context, f ports.TripFilter) ([]*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Trip, 0, len(m.tripOrder))
	for _, id := range m.tripOrder {
		t := m.trips[id]
		if f.CarrierID != "" && t.CarrierID != f.CarrierID {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		out = append(out, cloneTrip(t))
	}
	return out, nil
}

func (m *MemoryStore) SaveTrip(_ context.Context, t *domain.Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putTrip(t)
	return nil
}

func (m *MemoryStore) putTrip(t *domain.Trip) {
	if _, ok := m.trips[t.ID]; !ok {
		m.tripOrder = append(m.tripOrder, t.ID)
	}
	m.trips[t.ID] = cloneTrip(t)
}

func (m *MemoryStore) GetBooking(_ context.Context, id string) (*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, fmt.Errorf("get booking %q: %w", id, domain.ErrNotFound)
	}
	return cloneBooking(b), nil
}

func (m *MemoryStore) ListBookings(_ context.Context, tripID string) ([]*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Booking, 0)
	for _, id := range m.bookingOrder {
		if b := m.bookings[id]; tripID == "" || b.TripID == tripID {
			out = append(out, cloneBooking(b))
		}
	}
	return out, nil
}

// CommitBooking stores the trip and booking under a single lock.
func (m *MemoryStore) CommitBooking(_ context.Context, t *domain.Trip, b *domain.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putTrip(t)
	if b != nil {
		if _, ok := m.bookings[b.ID]; !ok {
			m.bookingOrder = append(m.bookingOrder, b.ID)
		}
		m.bookings[b.ID] = cloneBooking(b)
	}
	return nil
}
