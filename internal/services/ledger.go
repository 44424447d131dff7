package services

import (
	"cmp"
	"context"
	"fmt"
	"freight-match-service/internal/domain"
	"freight-match-service/internal/ports"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// tripEntry is one trip's slice of the ledger. mu serializes every change to
// the trip's capacity and bookings.
type tripEntry struct {
	mu       sync.Mutex
	trip     *domain.Trip
	bookings map[string]*domain.Booking
	order    []string
}

// confirmedWeight sums the entry's confirmed bookings in booking order, with b
// standing in for the stored booking of the same id.
func (e *tripEntry) confirmedWeight(b *domain.Booking) float64 {
	total := 0.0
	for _, id := range e.order {
		cur := e.bookings[id]
		if id == b.ID {
			cur = b
		}
		if cur.Active() {
			total += cur.Weight
		}
	}
	if _, ok := e.bookings[b.ID]; !ok && b.Active() {
		total += b.Weight
	}
	return total
}

// Ledger owns trip capacity and bookings. Each trip is guarded by its own
// mutex, so bookings on different trips never wait on each other.
//
// When a LedgerStore is set, every change is committed to it while the trip
// is locked; a failed commit leaves the in-memory state untouched.
type Ledger struct {
	mu          sync.RWMutex // guards the two indexes below, not their entries
	trips       map[string]*tripEntry
	tripOrder   []string
	bookingTrip map[string]string

	store ports.LedgerStore
	now   func() time.Time
	newID func() string
}

func NewLedger(store ports.LedgerStore) *Ledger {
	return &Ledger{
		trips:       make(map[string]*tripEntry),
		bookingTrip: make(map[string]string),
		store:       store,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// Track registers a trip and its existing bookings. Tracking a trip twice is a no-op.
func (l *Ledger) Track(trip *domain.Trip, bookings []*domain.Booking) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.trips[trip.ID]; ok {
		return
	}

	t := trip.Clone()
	if t.MaxShipments == 0 {
		t.MaxShipments = domain.DefaultMaxShipments
	}
	if t.Status == "" {
		t.Status = domain.TripActive
	}

	e := &tripEntry{trip: t, bookings: make(map[string]*domain.Booking, len(bookings))}
	for _, b := range bookings {
		if b.TripID != trip.ID {
			continue
		}
		cp := *b
		e.bookings[b.ID] = &cp
		e.order = append(e.order, b.ID)
		l.bookingTrip[b.ID] = trip.ID
	}

	l.trips[trip.ID] = e
	l.tripOrder = append(l.tripOrder, trip.ID)
}

// Tracked reports whether the trip is known to the ledger.
func (l *Ledger) Tracked(tripID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.trips[tripID]
	return ok
}

func (l *Ledger) entry(tripID string) (*tripEntry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.trips[tripID]
	return e, ok
}

func (l *Ledger) commit(ctx context.Context, trip *domain.Trip, b *domain.Booking) error {
	if l.store == nil {
		return nil
	}
	return l.store.CommitBooking(ctx, trip, b)
}

// Trip returns a snapshot of the trip.
func (l *Ledger) Trip(tripID string) (*domain.Trip, error) {
	e, ok := l.entry(tripID)
	if !ok {
		return nil, fmt.Errorf("trip %q: %w", tripID, domain.ErrNotFound)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.trip.Clone(), nil
}

// BookSpace reserves weight on a trip for a shipment.
func (l *Ledger) BookSpace(ctx context.Context, tripID, shipmentID string, weight, price float64) (*domain.Booking, error) {
	if weight <= 0 {
		return nil, fmt.Errorf("book space: weight must be positive (got %v): %w", weight, domain.ErrValidation)
	}
	e, ok := l.entry(tripID)
	if !ok {
		return nil, fmt.Errorf("book space: trip %q: %w", tripID, domain.ErrNotFound)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	cur := e.trip
	switch {
	case cur.Status != domain.TripActive:
		return nil, fmt.Errorf("book space: trip %q is %s: %w", tripID, cur.Status, domain.ErrTripNotActive)
	case cur.HasShipment(shipmentID):
		return nil, fmt.Errorf("book space: shipment %q on trip %q: %w", shipmentID, tripID, domain.ErrAlreadyBooked)
	case cur.OpenSlots() == 0:
		return nil, fmt.Errorf("book space: trip %q holds %d shipments: %w", tripID, len(cur.ShipmentIDs), domain.ErrMaxShipmentsReached)
	case weight > cur.AvailableWeight():
		return nil, fmt.Errorf("book space: trip %q has %.2fkg left, need %.2fkg: %w", tripID, cur.AvailableWeight(), weight, domain.ErrCapacityExceeded)
	}

	now := l.now()
	b := &domain.Booking{
		ID:         l.newID(),
		TripID:     tripID,
		ShipmentID: shipmentID,
		Weight:     weight,
		Price:      price,
		Status:     domain.BookingConfirmed,
		BookedAt:   now,
	}

	next := cur.Clone()
	next.BookedWeight = e.confirmedWeight(b)
	next.ShipmentIDs = append(next.ShipmentIDs, shipmentID)
	next.UpdatedAt = now

	if err := l.commit(ctx, next, b); err != nil {
		return nil, fmt.Errorf("book space: commit: %w", err)
	}

	e.trip = next
	e.bookings[b.ID] = b
	e.order = append(e.order, b.ID)

	l.mu.Lock()
	l.bookingTrip[b.ID] = tripID
	l.mu.Unlock()

	cp := *b
	return &cp, nil
}

// CancelBooking releases the weight held by a booking. Cancelling twice
// returns ErrBookingCancelled and restores nothing.
func (l *Ledger) CancelBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	l.mu.RLock()
	tripID, ok := l.bookingTrip[bookingID]
	l.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("cancel booking %q: %w", bookingID, domain.ErrBookingNotFound)
	}
	e, ok := l.entry(tripID)
	if !ok {
		return nil, fmt.Errorf("cancel booking %q: %w", bookingID, domain.ErrBookingNotFound)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	b := e.bookings[bookingID]
	if !b.Active() {
		return nil, fmt.Errorf("cancel booking %q: %w", bookingID, domain.ErrBookingCancelled)
	}

	now := l.now()
	cancelled := *b
	cancelled.Status = domain.BookingCancelled
	cancelled.CancelledAt = &now

	next := e.trip.Clone()
	next.BookedWeight = e.confirmedWeight(&cancelled)
	if i := slices.Index(next.ShipmentIDs, b.ShipmentID); i >= 0 {
		next.ShipmentIDs = slices.Delete(next.ShipmentIDs, i, i+1)
	}
	next.UpdatedAt = now

	if err := l.commit(ctx, next, &cancelled); err != nil {
		return nil, fmt.Errorf("cancel booking %q: commit: %w", bookingID, err)
	}

	e.trip = next
	e.bookings[bookingID] = &cancelled

	cp := cancelled
	return &cp, nil
}

// UpdateStatus moves a trip through active -> in_progress -> completed, or to cancelled.
func (l *Ledger) UpdateStatus(ctx context.Context, tripID string, status domain.TripStatus) (*domain.Trip, error) {
	e, ok := l.entry(tripID)
	if !ok {
		return nil, fmt.Errorf("update trip status: trip %q: %w", tripID, domain.ErrNotFound)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !domain.CanTransitionTrip(e.trip.Status, status) {
		return nil, fmt.Errorf("update trip status: trip %q %s -> %s: %w", tripID, e.trip.Status, status, domain.ErrInvalidTransition)
	}

	next := e.trip.Clone()
	next.Status = status
	next.UpdatedAt = l.now()

	if err := l.commit(ctx, next, nil); err != nil {
		return nil, fmt.Errorf("update trip status: commit: %w", err)
	}
	e.trip = next
	return next.Clone(), nil
}

// Booking returns a booking by id.
func (l *Ledger) Booking(bookingID string) (*domain.Booking, error) {
	l.mu.RLock()
	tripID, ok := l.bookingTrip[bookingID]
	l.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("booking %q: %w", bookingID, domain.ErrBookingNotFound)
	}
	e, _ := l.entry(tripID)

	e.mu.Lock()
	defer e.mu.Unlock()
	cp := *e.bookings[bookingID]
	return &cp, nil
}

// Bookings lists a trip's bookings in booking order, cancelled ones included.
func (l *Ledger) Bookings(tripID string) ([]*domain.Booking, error) {
	e, ok := l.entry(tripID)
	if !ok {
		return nil, fmt.Errorf("list bookings: trip %q: %w", tripID, domain.ErrNotFound)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]*domain.Booking, 0, len(e.order))
	for _, id := range e.order {
		cp := *e.bookings[id]
		out = append(out, &cp)
	}
	return out, nil
}

// Stats summarizes capacity usage of a trip.
func (l *Ledger) Stats(tripID string) (domain.TripStats, error) {
	e, ok := l.entry(tripID)
	if !ok {
		return domain.TripStats{}, fmt.Errorf("trip stats: trip %q: %w", tripID, domain.ErrNotFound)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	t := e.trip
	confirmed := 0
	for _, b := range e.bookings {
		if b.Active() {
			confirmed++
		}
	}

	util := 0.0
	if t.TotalCapacity.Weight > 0 {
		util = math.Round(t.BookedWeight/t.TotalCapacity.Weight*1000) / 10
	}
	return domain.TripStats{
		TripID:            t.ID,
		TotalCapacity:     t.TotalCapacity.Weight,
		UsedSpace:         t.BookedWeight,
		AvailableSpace:    t.AvailableWeight(),
		UtilizationPct:    util,
		ShipmentsCount:    len(t.ShipmentIDs),
		MaxShipments:      t.MaxShipments,
		ConfirmedBookings: confirmed,
		Status:            t.Status,
	}, nil
}

const (
	similarSameCityScore    = 10
	similarSoonScore        = 5
	similarLaterScore       = 3
	similarSpaceScore       = 3
	similarSpaceToleranceKg = 100.0
	defaultSimilarLimit     = 5
)

type scoredTrip struct {
	trip  *domain.Trip
	score int
}

// SimilarTrips returns other active trips resembling tripID, most similar first.
func (l *Ledger) SimilarTrips(tripID string, limit int) ([]*domain.Trip, error) {
	ref, err := l.Trip(tripID)
	if err != nil {
		return nil, fmt.Errorf("similar trips: %w", err)
	}
	if limit <= 0 {
		limit = defaultSimilarLimit
	}

	l.mu.RLock()
	ids := slices.Clone(l.tripOrder)
	l.mu.RUnlock()

	var scored []scoredTrip
	for _, id := range ids {
		if id == tripID {
			continue
		}
		t, err := l.Trip(id)
		if err != nil || t.Status != domain.TripActive {
			continue
		}

		score := 0
		if t.Origin.SameCity(ref.Origin) {
			score += similarSameCityScore
		}
		if t.Destination.SameCity(ref.Destination) {
			score += similarSameCityScore
		}
		gap := t.DepartureDate.Sub(ref.DepartureDate)
		if gap < 0 {
			gap = -gap
		}
		switch {
		case gap <= 24*time.Hour:
			score += similarSoonScore
		case gap <= 72*time.Hour:
			score += similarLaterScore
		}
		if math.Abs(t.AvailableWeight()-ref.AvailableWeight()) < similarSpaceToleranceKg {
			score += similarSpaceScore
		}

		if score > 0 {
			scored = append(scored, scoredTrip{trip: t, score: score})
		}
	}

	slices.SortStableFunc(scored, func(a, b scoredTrip) int { return cmp.Compare(b.score, a.score) })

	out := make([]*domain.Trip, 0, min(limit, len(scored)))
	for _, s := range scored[:min(limit, len(scored))] {
		out = append(out, s.trip)
	}
	return out, nil
}

// ActiveBookingFor returns the confirmed booking holding shipmentID, if any.
func (l *Ledger) ActiveBookingFor(shipmentID string) (*domain.Booking, bool) {
	l.mu.RLock()
	entries := make([]*tripEntry, 0, len(l.tripOrder))
	for _, id := range l.tripOrder {
		entries = append(entries, l.trips[id])
	}
	l.mu.RUnlock()

	for _, e := range entries {
		e.mu.Lock()
		for _, id := range e.order {
			if b := e.bookings[id]; b.ShipmentID == shipmentID && b.Active() {
				cp := *b
				e.mu.Unlock()
				return &cp, true
			}
		}
		e.mu.Unlock()
	}
	return nil, false
}
