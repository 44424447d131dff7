package services

import (
	"context"
	"errors"
	"fmt"
	"freight-match-service/internal/domain"
	"freight-match-service/internal/platform/obs"
	"freight-match-service/internal/ports"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// MarketplaceDeps are the collaborators of a Marketplace. Geocoder and Events are optional.
type MarketplaceDeps struct {
	Store               ports.Store
	Geo                 *Geo
	Pricing             *PricingEngine
	Geocoder            ports.Geocoder
	Events              ports.EventPublisher
	DefaultMaxShipments int
	GeocodeConcurrency  int
}

// Marketplace is the process-wide entry point to the matching core. It owns
// the ledger and wires the pure engines to persistence and notifications.
type Marketplace struct {
	store    ports.Store
	geo      *Geo
	pricing  *PricingEngine
	matcher  *Matcher
	ledger   *Ledger
	geocoder ports.Geocoder
	events   ports.EventPublisher

	// Serializes accept, cancel and advance per shipment.
	shipments keyLock

	maxShipments int
	geocodeLimit int
	now          func() time.Time
}

func NewMarketplace(d MarketplaceDeps) *Marketplace {
	if d.Geo == nil {
		d.Geo = NewGeo(nil)
	}
	if d.Pricing == nil {
		d.Pricing = NewPricingEngine(DefaultPricingConfig(), SeasonNormal)
	}
	if d.DefaultMaxShipments <= 0 {
		d.DefaultMaxShipments = domain.DefaultMaxShipments
	}
	if d.GeocodeConcurrency <= 0 {
		d.GeocodeConcurrency = 5
	}
	return &Marketplace{
		store:        d.Store,
		geo:          d.Geo,
		pricing:      d.Pricing,
		matcher:      NewMatcher(d.Geo, d.Pricing),
		ledger:       NewLedger(d.Store),
		geocoder:     d.Geocoder,
		events:       d.Events,
		maxShipments: d.DefaultMaxShipments,
		geocodeLimit: d.GeocodeConcurrency,
		now:          time.Now,
	}
}

// Pricing exposes the engine for callers that only need quotes.
func (m *Marketplace) Pricing() *PricingEngine { return m.pricing }

// Load tracks every stored trip and its bookings in the ledger.
func (m *Marketplace) Load(ctx context.Context) (err error) {
	defer obs.Time(ctx, "marketplace.Load")(&err)

	trips, err := m.store.ListTrips(ctx, ports.TripFilter{})
	if err != nil {
		return fmt.Errorf("load: list trips: %w", err)
	}

	bookings := make([][]*domain.Booking, len(trips))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, t := range trips {
		i, t := i, t
		g.Go(func() error {
			bs, err := m.store.ListBookings(gctx, t.ID)
			if err != nil {
				return fmt.Errorf("load: list bookings of trip %q: %w", t.ID, err)
			}
			bookings[i] = bs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, t := range trips {
		m.ledger.Track(t, bookings[i])
	}
	log.Printf("marketplace loaded trips=%d", len(trips))
	return nil
}

func (m *Marketplace) publish(ctx context.Context, e domain.Event) {
	if m.events == nil {
		return
	}
	if err := m.events.Publish(ctx, e); err != nil {
		log.Printf("publish event failed type=%s key=%s err=%v", e.Type, e.Key(), err)
	}
}

// enrichCoordinates fills missing coordinates through the geocoder, resolving
// locations in small batches with bounded concurrency. Geocoding is best
// effort: failures are logged and the city table is used instead.
func (m *Marketplace) enrichCoordinates(ctx context.Context, locs ...*domain.Location) {
	if m.geocoder == nil {
		return
	}

	seen := make(map[string]bool)
	var pending []domain.Location
	for _, l := range locs {
		if l.HasCoords() || strings.TrimSpace(l.City) == "" {
			continue
		}
		if k := l.String(); !seen[k] {
			seen[k] = true
			pending = append(pending, *l)
		}
	}
	if len(pending) == 0 {
		return
	}

	const batchSize = 10
	batches := make([]map[string]domain.Coordinates, (len(pending)+batchSize-1)/batchSize)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.geocodeLimit)
	for i := range batches {
		i := i
		start := i * batchSize
		end := min(start+batchSize, len(pending))
		g.Go(func() error {
			res, err := m.geocoder.Geocode(gctx, pending[start:end])
			if err != nil {
				return err
			}
			batches[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Printf("geocode failed locations=%d err=%v", len(pending), err)
	}

	for _, l := range locs {
		if l.HasCoords() {
			continue
		}
		for _, res := range batches {
			if c, ok := res[l.String()]; ok {
				l.Coords = &domain.Coordinates{Lon: c.Lon, Lat: c.Lat}
				break
			}
		}
	}
}

// RegisterShipment validates and stores a new shipment in the pending state.
func (m *Marketplace) RegisterShipment(ctx context.Context, s *domain.Shipment) (_ *domain.Shipment, err error) {
	defer obs.Time(ctx, "marketplace.RegisterShipment")(&err)

	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Urgency == "" {
		s.Urgency = domain.UrgencyNormal
	}
	s.Status = domain.ShipmentPending
	s.MatchingCarriers = nil
	s.SelectedCarrier = ""
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("register shipment: %w", err)
	}

	now := m.now()
	s.CreatedAt, s.UpdatedAt = now, now
	if s.PickupDate.IsZero() {
		s.PickupDate = now
	}

	m.enrichCoordinates(ctx, &s.Pickup, &s.Delivery)

	if err := m.store.SaveShipment(ctx, s); err != nil {
		return nil, fmt.Errorf("register shipment: save: %w", err)
	}
	return s, nil
}

// RegisterCarrier derives the carrier's type and tier and stores it.
func (m *Marketplace) RegisterCarrier(ctx context.Context, c *domain.Carrier) (_ *domain.Carrier, err error) {
	defer obs.Time(ctx, "marketplace.RegisterCarrier")(&err)

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.Normalize()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("register carrier: %w", err)
	}

	now := m.now()
	c.CreatedAt, c.UpdatedAt = now, now

	if err := m.store.SaveCarrier(ctx, c); err != nil {
		return nil, fmt.Errorf("register carrier: save: %w", err)
	}
	return c, nil
}

// CreateTrip stores a carrier's trip and starts tracking its capacity.
// A missing arrival date is estimated from the route.
func (m *Marketplace) CreateTrip(ctx context.Context, t *domain.Trip) (_ *domain.Trip, err error) {
	defer obs.Time(ctx, "marketplace.CreateTrip")(&err)

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.MaxShipments == 0 {
		t.MaxShipments = m.maxShipments
	}
	t.Status = domain.TripActive
	t.ShipmentIDs = nil
	t.BookedWeight = 0
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("create trip: %w", err)
	}

	c, err := m.store.GetCarrier(ctx, t.CarrierID)
	if err != nil {
		return nil, fmt.Errorf("create trip: %w", err)
	}
	if c.Availability == domain.CarrierOffline {
		return nil, fmt.Errorf("create trip: carrier %q is offline: %w", c.ID, domain.ErrValidation)
	}

	m.enrichCoordinates(ctx, &t.Origin, &t.Destination)
	if t.ArrivalDate.IsZero() {
		t.ArrivalDate = m.geo.EstimateArrival(t.DepartureDate, t.Origin, t.Destination)
	}

	now := m.now()
	t.CreatedAt, t.UpdatedAt = now, now

	if err := m.store.SaveTrip(ctx, t); err != nil {
		return nil, fmt.Errorf("create trip: save: %w", err)
	}
	m.ledger.Track(t, nil)
	return m.ledger.Trip(t.ID)
}

func (m *Marketplace) GetShipment(ctx context.Context, id string) (*domain.Shipment, error) {
	return m.store.GetShipment(ctx, id)
}

func (m *Marketplace) GetCarrier(ctx context.Context, id string) (*domain.Carrier, error) {
	return m.store.GetCarrier(ctx, id)
}

// GetTrip returns the ledger's view of the trip.
func (m *Marketplace) GetTrip(ctx context.Context, id string) (*domain.Trip, error) {
	if err := m.ensureTracked(ctx, id); err != nil {
		return nil, err
	}
	return m.ledger.Trip(id)
}

func (m *Marketplace) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	if b, err := m.ledger.Booking(id); err == nil {
		return b, nil
	}
	b, err := m.store.GetBooking(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get booking %q: %w", id, domain.ErrBookingNotFound)
	}
	return b, err
}

// ensureTracked pulls a trip stored by another process into the ledger.
func (m *Marketplace) ensureTracked(ctx context.Context, tripID string) error {
	if m.ledger.Tracked(tripID) {
		return nil
	}
	t, err := m.store.GetTrip(ctx, tripID)
	if err != nil {
		return err
	}
	bs, err := m.store.ListBookings(ctx, tripID)
	if err != nil {
		return fmt.Errorf("list bookings of trip %q: %w", tripID, err)
	}
	m.ledger.Track(t, bs)
	return nil
}

// tripSnapshots lists stored trips with their capacity taken from the ledger.
func (m *Marketplace) tripSnapshots(ctx context.Context, f ports.TripFilter) ([]*domain.Trip, error) {
	stored, err := m.store.ListTrips(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Trip, 0, len(stored))
	for _, t := range stored {
		if !m.ledger.Tracked(t.ID) {
			m.ledger.Track(t, nil)
		}
		snap, err := m.ledger.Trip(t.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, nil
}

// loadMarket fetches the shipment, all carriers and all active trips concurrently.
func (m *Marketplace) loadMarket(ctx context.Context, shipmentID string) (*domain.Shipment, []*domain.Carrier, []*domain.Trip, error) {
	var (
		s        *domain.Shipment
		carriers []*domain.Carrier
		trips    []*domain.Trip
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		s, err = m.store.GetShipment(gctx, shipmentID)
		return err
	})
	g.Go(func() (err error) {
		carriers, err = m.store.ListCarriers(gctx)
		if err != nil {
			return fmt.Errorf("list carriers: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		trips, err = m.tripSnapshots(gctx, ports.TripFilter{Status: domain.TripActive})
		if err != nil {
			return fmt.Errorf("list trips: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	return s, carriers, trips, nil
}

// MatchShipment ranks the carriers able to take a shipment on one of their
// active trips and records the matching carriers on the shipment.
func (m *Marketplace) MatchShipment(ctx context.Context, shipmentID string, f MatchFilters) (_ []domain.CarrierMatch, err error) {
	defer obs.Time(ctx, "marketplace.MatchShipment")(&err)

	s, carriers, trips, err := m.loadMarket(ctx, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("match shipment: %w", err)
	}

	matches := m.matcher.FindCarriersFor(s, carriers, trips, f)

	ids := make([]string, 0, len(matches))
	for _, mt := range matches {
		ids = append(ids, mt.CarrierID)
	}
	s.MatchingCarriers = ids
	s.UpdatedAt = m.now()
	if err := m.store.SaveShipment(ctx, s); err != nil {
		return nil, fmt.Errorf("match shipment: save: %w", err)
	}

	for _, mt := range matches {
		e := domain.NewEvent(domain.EventMatchFound, s.UpdatedAt)
		e.ShipmentID = s.ID
		e.CarrierID = mt.CarrierID
		e.Attributes = map[string]string{
			"score": strconv.FormatFloat(mt.Score, 'f', 1, 64),
			"price": strconv.FormatFloat(mt.Price.Total, 'f', 0, 64),
		}
		m.publish(ctx, e)
	}
	return matches, nil
}

// AvailableTrips lists every bookable trip for a shipment, best first.
func (m *Marketplace) AvailableTrips(ctx context.Context, shipmentID string, f MatchFilters) (_ []domain.TripOption, err error) {
	defer obs.Time(ctx, "marketplace.AvailableTrips")(&err)

	s, carriers, trips, err := m.loadMarket(ctx, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("available trips: %w", err)
	}
	return m.matcher.FindAvailableTrips(s, carriers, trips, f), nil
}

// SuggestShipments proposes pending shipments for a trip.
func (m *Marketplace) SuggestShipments(ctx context.Context, tripID string, f SuggestFilters) (_ []domain.ShipmentSuggestion, err error) {
	defer obs.Time(ctx, "marketplace.SuggestShipments")(&err)

	t, c, err := m.tripAndCarrier(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("suggest shipments: %w", err)
	}
	pending, err := m.store.ListShipments(ctx, domain.ShipmentPending)
	if err != nil {
		return nil, fmt.Errorf("suggest shipments: list shipments: %w", err)
	}
	return m.matcher.FindShipmentsFor(c, t, pending, f, m.now()), nil
}

// OptimizeTrip plans the most valuable load of pending shipments for a trip.
// Nothing is booked; the plan is advisory.
func (m *Marketplace) OptimizeTrip(ctx context.Context, tripID string) (_ domain.LoadPlan, err error) {
	defer obs.Time(ctx, "marketplace.OptimizeTrip")(&err)

	t, c, err := m.tripAndCarrier(ctx, tripID)
	if err != nil {
		return domain.LoadPlan{}, fmt.Errorf("optimize trip: %w", err)
	}
	pending, err := m.store.ListShipments(ctx, domain.ShipmentPending)
	if err != nil {
		return domain.LoadPlan{}, fmt.Errorf("optimize trip: list shipments: %w", err)
	}

	candidates := make([]*domain.Shipment, 0, len(pending))
	for _, s := range pending {
		if c.CanAccept(s) {
			candidates = append(candidates, s)
		}
	}
	return OptimizeLoad(t, candidates, m.geo), nil
}

func (m *Marketplace) tripAndCarrier(ctx context.Context, tripID string) (*domain.Trip, *domain.Carrier, error) {
	t, err := m.GetTrip(ctx, tripID)
	if err != nil {
		return nil, nil, err
	}
	c, err := m.store.GetCarrier(ctx, t.CarrierID)
	if err != nil {
		return nil, nil, err
	}
	return t, c, nil
}

// QuoteShipment prices a shipment on a specific carrier.
func (m *Marketplace) QuoteShipment(ctx context.Context, shipmentID, carrierID string, opts QuoteOptions) (_ domain.PriceBreakdown, err error) {
	defer obs.Time(ctx, "marketplace.QuoteShipment")(&err)

	s, err := m.store.GetShipment(ctx, shipmentID)
	if err != nil {
		return domain.PriceBreakdown{}, fmt.Errorf("quote shipment: %w", err)
	}
	c, err := m.store.GetCarrier(ctx, carrierID)
	if err != nil {
		return domain.PriceBreakdown{}, fmt.Errorf("quote shipment: %w", err)
	}
	return m.pricing.Quote(s, c, m.geo.DistanceKm(s.Pickup, s.Delivery), opts), nil
}

// ComparePrices quotes a shipment on every carrier that can accept it,
// cheapest first.
func (m *Marketplace) ComparePrices(ctx context.Context, shipmentID string) (_ []PriceComparison, err error) {
	defer obs.Time(ctx, "marketplace.ComparePrices")(&err)

	s, err := m.store.GetShipment(ctx, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("compare prices: %w", err)
	}
	carriers, err := m.store.ListCarriers(ctx)
	if err != nil {
		return nil, fmt.Errorf("compare prices: list carriers: %w", err)
	}

	able := make([]*domain.Carrier, 0, len(carriers))
	for _, c := range carriers {
		if c.Availability != domain.CarrierOffline && c.CanAccept(s) {
			able = append(able, c)
		}
	}
	return m.pricing.ComparePrices(s, able, m.geo.DistanceKm(s.Pickup, s.Delivery)), nil
}

// QuickEstimate prices a trip between two places for a carrier type without
// a stored shipment. It also returns the distance used.
func (m *Marketplace) QuickEstimate(weight float64, from, to domain.Location, ct domain.CarrierType) (price, distanceKm float64) {
	distanceKm = m.geo.DistanceKm(from, to)
	return m.pricing.QuickEstimate(weight, distanceKm, ct), distanceKm
}

// bookable reports whether a shipment may be booked: pending, or matched
// earlier with a booking that has since been cancelled.
func bookable(s *domain.Shipment) bool {
	return pending(s) || (s.Status == domain.ShipmentMatched && s.SelectedCarrier == "")
}

// AcceptMatch books a shipment on a trip. The pairing is checked again, so a
// caller forcing a match the engine would not propose gets ErrIncompatibleMatch.
func (m *Marketplace) AcceptMatch(ctx context.Context, shipmentID, tripID string) (_ *domain.Booking, err error) {
	defer obs.Time(ctx, "marketplace.AcceptMatch")(&err)
	defer m.shipments.Lock(shipmentID)()

	s, err := m.store.GetShipment(ctx, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("accept match: %w", err)
	}
	if !bookable(s) {
		return nil, fmt.Errorf("accept match: shipment %q is %s: %w", s.ID, s.Status, domain.ErrInvalidTransition)
	}
	if held, ok := m.ledger.ActiveBookingFor(s.ID); ok {
		return nil, fmt.Errorf("accept match: shipment %q holds booking %q: %w", s.ID, held.ID, domain.ErrAlreadyBooked)
	}

	t, c, err := m.tripAndCarrier(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("accept match: %w", err)
	}
	if c.Availability == domain.CarrierOffline || !c.CanAccept(s) {
		return nil, fmt.Errorf("accept match: carrier %q cannot carry shipment %q: %w", c.ID, s.ID, domain.ErrIncompatibleMatch)
	}
	if !m.geo.IsRouteCompatible(s, t) {
		return nil, fmt.Errorf("accept match: trip %q does not cover shipment %q: %w", t.ID, s.ID, domain.ErrIncompatibleMatch)
	}

	price := m.pricing.Quote(s, c, m.geo.DistanceKm(s.Pickup, s.Delivery), QuoteOptions{})

	b, err := m.ledger.BookSpace(ctx, t.ID, s.ID, s.Weight, price.Total)
	if err != nil {
		return nil, fmt.Errorf("accept match: %w", err)
	}

	now := m.now()
	if pending(s) {
		if err := s.Transition(domain.ShipmentMatched, now); err != nil {
			return nil, fmt.Errorf("accept match: %w", err)
		}
	}
	s.SelectedCarrier = c.ID
	s.UpdatedAt = now
	if err := m.store.SaveShipment(ctx, s); err != nil {
		if _, cerr := m.ledger.CancelBooking(ctx, b.ID); cerr != nil {
			log.Printf("accept match: release booking=%s after failed save: %v", b.ID, cerr)
		}
		return nil, fmt.Errorf("accept match: save shipment: %w", err)
	}

	e := domain.NewEvent(domain.EventBookingConfirmed, now)
	e.ShipmentID, e.TripID, e.CarrierID, e.BookingID = s.ID, t.ID, c.ID, b.ID
	e.Attributes = map[string]string{"price": strconv.FormatFloat(b.Price, 'f', 0, 64)}
	m.publish(ctx, e)

	m.publishShipmentStatus(ctx, s, now)
	return b, nil
}

func (m *Marketplace) publishShipmentStatus(ctx context.Context, s *domain.Shipment, at time.Time) {
	e := domain.NewEvent(domain.EventShipmentStatusChange, at)
	e.ShipmentID = s.ID
	e.CarrierID = s.SelectedCarrier
	e.Attributes = map[string]string{"status": string(s.Status)}
	m.publish(ctx, e)
}

// CancelBooking releases a booking's capacity. The shipment keeps its status
// but loses its selected carrier, so it can be booked again.
func (m *Marketplace) CancelBooking(ctx context.Context, bookingID string) (_ *domain.Booking, err error) {
	defer obs.Time(ctx, "marketplace.CancelBooking")(&err)

	held, err := m.ledger.Booking(bookingID)
	if err != nil {
		return nil, fmt.Errorf("cancel booking: %w", err)
	}
	defer m.shipments.Lock(held.ShipmentID)()

	b, err := m.ledger.CancelBooking(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("cancel booking: %w", err)
	}

	s, err := m.store.GetShipment(ctx, b.ShipmentID)
	switch {
	case err == nil:
		s.SelectedCarrier = ""
		s.UpdatedAt = m.now()
		if err := m.store.SaveShipment(ctx, s); err != nil {
			log.Printf("cancel booking: update shipment=%s: %v", s.ID, err)
		}
	case !errors.Is(err, domain.ErrNotFound):
		log.Printf("cancel booking: load shipment=%s: %v", b.ShipmentID, err)
	}

	m.publishBookingCancelled(ctx, b)
	return b, nil
}

func (m *Marketplace) publishBookingCancelled(ctx context.Context, b *domain.Booking) {
	e := domain.NewEvent(domain.EventBookingCancelled, m.now())
	e.ShipmentID, e.TripID, e.BookingID = b.ShipmentID, b.TripID, b.ID
	m.publish(ctx, e)
}

// UpdateTripStatus moves a trip through its lifecycle. A trip in progress makes
// its carrier busy; completing or cancelling it frees the carrier again.
func (m *Marketplace) UpdateTripStatus(ctx context.Context, tripID string, status domain.TripStatus) (_ *domain.Trip, err error) {
	defer obs.Time(ctx, "marketplace.UpdateTripStatus")(&err)

	if err := m.ensureTracked(ctx, tripID); err != nil {
		return nil, fmt.Errorf("update trip status: %w", err)
	}
	t, err := m.ledger.UpdateStatus(ctx, tripID, status)
	if err != nil {
		return nil, err
	}

	if err := m.updateCarrierAfterTrip(ctx, t); err != nil {
		log.Printf("update trip status: carrier=%s: %v", t.CarrierID, err)
	}

	e := domain.NewEvent(domain.EventTripStatusChange, t.UpdatedAt)
	e.TripID, e.CarrierID = t.ID, t.CarrierID
	e.Attributes = map[string]string{"status": string(t.Status)}
	m.publish(ctx, e)
	return t, nil
}

func (m *Marketplace) updateCarrierAfterTrip(ctx context.Context, t *domain.Trip) error {
	c, err := m.store.GetCarrier(ctx, t.CarrierID)
	if err != nil {
		return err
	}
	if c.Availability == domain.CarrierOffline {
		return nil
	}

	switch t.Status {
	case domain.TripInProgress:
		c.Availability = domain.CarrierBusy
	case domain.TripCompleted:
		c.Availability = domain.CarrierAvailable
		c.TotalTrips++
	case domain.TripCancelled:
		c.Availability = domain.CarrierAvailable
	default:
		return nil
	}
	c.UpdatedAt = t.UpdatedAt
	return m.store.SaveCarrier(ctx, c)
}

// AdvanceShipment moves a shipment to its next status. Cancelling a shipment
// also releases any booking it holds. The shipment is saved before the booking
// is released, so a failed save leaves the booking in place.
func (m *Marketplace) AdvanceShipment(ctx context.Context, shipmentID string, status domain.ShipmentStatus) (_ *domain.Shipment, err error) {
	defer obs.Time(ctx, "marketplace.AdvanceShipment")(&err)
	defer m.shipments.Lock(shipmentID)()

	s, err := m.store.GetShipment(ctx, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("advance shipment: %w", err)
	}
	if err := s.Transition(status, m.now()); err != nil {
		return nil, fmt.Errorf("advance shipment: %w", err)
	}

	var held *domain.Booking
	if status == domain.ShipmentCancelled {
		if b, ok := m.ledger.ActiveBookingFor(s.ID); ok {
			held = b
			s.SelectedCarrier = ""
		}
	}

	if err := m.store.SaveShipment(ctx, s); err != nil {
		return nil, fmt.Errorf("advance shipment: save: %w", err)
	}

	if held != nil {
		b, err := m.ledger.CancelBooking(ctx, held.ID)
		if err != nil {
			log.Printf("advance shipment: release booking=%s for cancelled shipment=%s: %v", held.ID, s.ID, err)
		} else {
			m.publishBookingCancelled(ctx, b)
		}
	}
	m.publishShipmentStatus(ctx, s, s.UpdatedAt)
	return s, nil
}

func (m *Marketplace) TripStats(ctx context.Context, tripID string) (domain.TripStats, error) {
	if err := m.ensureTracked(ctx, tripID); err != nil {
		return domain.TripStats{}, fmt.Errorf("trip stats: %w", err)
	}
	return m.ledger.Stats(tripID)
}

func (m *Marketplace) TripBookings(ctx context.Context, tripID string) ([]*domain.Booking, error) {
	if err := m.ensureTracked(ctx, tripID); err != nil {
		return nil, fmt.Errorf("trip bookings: %w", err)
	}
	return m.ledger.Bookings(tripID)
}

func (m *Marketplace) SimilarTrips(ctx context.Context, tripID string, limit int) ([]*domain.Trip, error) {
	if err := m.ensureTracked(ctx, tripID); err != nil {
		return nil, fmt.Errorf("similar trips: %w", err)
	}
	return m.ledger.SimilarTrips(tripID, limit)
}

// TripSearch filters SearchTrips. Zero values match everything; DepartureDate
// matches by calendar day.
type TripSearch struct {
	FromCity      string
	ToCity        string
	DepartureDate time.Time
	MinSpace      float64
}

// TripSearchResult is one row of SearchTrips.
type TripSearchResult struct {
	Trip           *domain.Trip
	DistanceKm     float64
	UtilizationPct float64
}

// SearchTrips lists active trips by route, day and free space.
func (m *Marketplace) SearchTrips(ctx context.Context, q TripSearch) (_ []TripSearchResult, err error) {
	defer obs.Time(ctx, "marketplace.SearchTrips")(&err)

	trips, err := m.tripSnapshots(ctx, ports.TripFilter{Status: domain.TripActive})
	if err != nil {
		return nil, fmt.Errorf("search trips: %w", err)
	}

	from := domain.Location{City: q.FromCity}
	to := domain.Location{City: q.ToCity}
	out := make([]TripSearchResult, 0)
	for _, t := range trips {
		if q.FromCity != "" && !t.Origin.SameCity(from) {
			continue
		}
		if q.ToCity != "" && !t.Destination.SameCity(to) {
			continue
		}
		if !q.DepartureDate.IsZero() && !sameDay(t.DepartureDate, q.DepartureDate) {
			continue
		}
		if t.AvailableWeight() < q.MinSpace {
			continue
		}

		util := 0.0
		if t.TotalCapacity.Weight > 0 {
			util = math.Round(t.BookedWeight/t.TotalCapacity.Weight*1000) / 10
		}
		out = append(out, TripSearchResult{
			Trip:           t,
			DistanceKm:     m.geo.DistanceKm(t.Origin, t.Destination),
			UtilizationPct: util,
		})
	}
	return out, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
