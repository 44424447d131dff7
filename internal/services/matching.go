package services

import (
	"cmp"
	"freight-match-service/internal/domain"
	"math"
	"slices"
	"strings"
	"time"
)

// MatchFilters narrow the carriers offered to a shipment. Zero values disable a filter.
type MatchFilters struct {
	MinRating    float64
	VerifiedOnly bool
	MaxPrice     float64
}

// SuggestFilters narrow the shipments suggested to a carrier.
type SuggestFilters struct {
	MinPrice   float64
	Categories []string
}

const (
	scorePerRatingPoint = 6.0
	maxExperienceScore  = 20.0
	verifiedScore       = 15.0
	insuredScore        = 10.0
	scorePerTrip        = 5.0
	maxTripScore        = 25.0
	departsSoonScore    = 10.0
	departsLaterScore   = 5.0
)

// Matcher ranks carriers for shipments and shipments for trips.
// It keeps no state of its own and is safe for concurrent use.
type Matcher struct {
	geo     *Geo
	pricing *PricingEngine
}

func NewMatcher(geo *Geo, pricing *PricingEngine) *Matcher {
	return &Matcher{geo: geo, pricing: pricing}
}

func (m *Matcher) eligible(s *domain.Shipment, c *domain.Carrier, f MatchFilters) bool {
	if c.Availability == domain.CarrierOffline {
		return false
	}
	if !c.CanAccept(s) {
		return false
	}
	if !c.Serves(s.Pickup) {
		return false
	}
	if c.Rating < f.MinRating {
		return false
	}
	return !f.VerifiedOnly || c.Verified
}

// tripFits reports whether the trip can still take the shipment.
func (m *Matcher) tripFits(s *domain.Shipment, t *domain.Trip) bool {
	if t.Status != domain.TripActive {
		return false
	}
	if t.HasShipment(s.ID) || t.OpenSlots() == 0 {
		return false
	}
	if s.Weight > t.AvailableWeight() {
		return false
	}
	return m.geo.IsRouteCompatible(s, t)
}

func tripsByCarrier(trips []*domain.Trip) map[string][]*domain.Trip {
	out := make(map[string][]*domain.Trip)
	for _, t := range trips {
		out[t.CarrierID] = append(out[t.CarrierID], t)
	}
	return out
}

// carrierScore is the part of the score that depends on the carrier alone.
func carrierScore(c *domain.Carrier) float64 {
	score := c.Rating * scorePerRatingPoint
	score += math.Min(float64(c.TotalTrips)/10, maxExperienceScore)
	if c.Verified {
		score += verifiedScore
	}
	if c.Insured {
		score += insuredScore
	}
	return score
}

// departureScore rewards trips leaving close to the requested pickup date.
func departureScore(pickup, departure time.Time) float64 {
	gap := departure.Sub(pickup)
	if gap < 0 {
		gap = -gap
	}
	switch {
	case gap <= 24*time.Hour:
		return departsSoonScore
	case gap <= 72*time.Hour:
		return departsLaterScore
	}
	return 0
}

func (m *Matcher) matchResult(s *domain.Shipment, c *domain.Carrier, distanceKm, score float64) domain.MatchResult {
	return domain.MatchResult{
		ShipmentID:    s.ID,
		CarrierID:     c.ID,
		Score:         score,
		Price:         m.pricing.Quote(s, c, distanceKm, QuoteOptions{}),
		DistanceKm:    math.Round(distanceKm*10) / 10,
		DurationHours: m.geo.DurationHours(distanceKm, c.Type),
	}
}

func byScoreDesc(a, b float64) int { return cmp.Compare(b, a) }

// FindCarriersFor returns the carriers that can take the shipment, best first.
//
// A nil trips slice means trips are not considered. Otherwise a carrier is only
// kept when at least one of its active trips is route compatible and still has
// room for the shipment; those trips are attached to the match and contribute
// to the score. Equal scores keep the order of carriers.
func (m *Matcher) FindCarriersFor(s *domain.Shipment, carriers []*domain.Carrier, trips []*domain.Trip, f MatchFilters) []domain.CarrierMatch {
	var byCarrier map[string][]*domain.Trip
	if trips != nil {
		byCarrier = tripsByCarrier(trips)
	}
	distanceKm := m.geo.DistanceKm(s.Pickup, s.Delivery)

	out := make([]domain.CarrierMatch, 0)
	for _, c := range carriers {
		if !m.eligible(s, c, f) {
			continue
		}

		score := carrierScore(c)

		var compatible []*domain.Trip
		if trips != nil {
			for _, t := range byCarrier[c.ID] {
				if m.tripFits(s, t) {
					compatible = append(compatible, t)
				}
			}
			if len(compatible) == 0 {
				continue
			}

			score += math.Min(scorePerTrip*float64(len(compatible)), maxTripScore)
			nearest := slices.MinFunc(compatible, func(a, b *domain.Trip) int {
				return a.DepartureDate.Compare(b.DepartureDate)
			})
			score += departureScore(s.PickupDate, nearest.DepartureDate)
		}

		res := m.matchResult(s, c, distanceKm, score)
		if f.MaxPrice > 0 && res.Price.Total > f.MaxPrice {
			continue
		}
		out = append(out, domain.CarrierMatch{Carrier: c, Trips: compatible, MatchResult: res})
	}

	slices.SortStableFunc(out, func(a, b domain.CarrierMatch) int {
		return byScoreDesc(a.Score, b.Score)
	})
	return out
}

// FindAvailableTrips is the per-trip view of FindCarriersFor: one option per
// bookable trip, scored by its carrier and its own departure date.
func (m *Matcher) FindAvailableTrips(s *domain.Shipment, carriers []*domain.Carrier, trips []*domain.Trip, f MatchFilters) []domain.TripOption {
	byID := make(map[string]*domain.Carrier, len(carriers))
	for _, c := range carriers {
		byID[c.ID] = c
	}
	distanceKm := m.geo.DistanceKm(s.Pickup, s.Delivery)

	out := make([]domain.TripOption, 0)
	for _, t := range trips {
		c, ok := byID[t.CarrierID]
		if !ok || !m.eligible(s, c, f) || !m.tripFits(s, t) {
			continue
		}

		score := carrierScore(c) + scorePerTrip + departureScore(s.PickupDate, t.DepartureDate)
		res := m.matchResult(s, c, distanceKm, score)
		if f.MaxPrice > 0 && res.Price.Total > f.MaxPrice {
			continue
		}
		out = append(out, domain.TripOption{Trip: t, Carrier: c, MatchResult: res})
	}

	slices.SortStableFunc(out, func(a, b domain.TripOption) int {
		return byScoreDesc(a.Score, b.Score)
	})
	return out
}

const (
	pickupSoonPriority   = 10
	pickupLaterPriority  = 5
	highValuePriority    = 5
	insuredPriority      = 3
	smallParcelPriority  = 2
	highValueThreshold   = 5000.0
	smallParcelMaxWeight = 20.0
)

func shipmentPriority(s *domain.Shipment, now time.Time) int {
	p := 0
	gap := s.PickupDate.Sub(now)
	if gap < 0 {
		gap = -gap
	}
	switch {
	case gap <= 24*time.Hour:
		p += pickupSoonPriority
	case gap <= 72*time.Hour:
		p += pickupLaterPriority
	}
	if s.DeclaredValue > highValueThreshold {
		p += highValuePriority
	}
	if s.InsuranceRequired {
		p += insuredPriority
	}
	if s.Weight <= smallParcelMaxWeight {
		p += smallParcelPriority
	}
	return p
}

func pending(s *domain.Shipment) bool {
	return s.Status == "" || s.Status == domain.ShipmentPending
}

// FindShipmentsFor suggests pending shipments for a carrier's trip, ordered by
// priority and then by the carrier's earnings.
func (m *Matcher) FindShipmentsFor(c *domain.Carrier, t *domain.Trip, shipments []*domain.Shipment, f SuggestFilters, now time.Time) []domain.ShipmentSuggestion {
	out := make([]domain.ShipmentSuggestion, 0)
	if t.Status != domain.TripActive {
		return out
	}
	available := t.AvailableWeight()

	for _, s := range shipments {
		if !pending(s) || !c.CanAccept(s) || !m.tripFits(s, t) {
			continue
		}
		if len(f.Categories) > 0 && !slices.ContainsFunc(f.Categories, func(cat string) bool {
			return strings.EqualFold(cat, s.Category)
		}) {
			continue
		}

		distanceKm := m.geo.DistanceKm(s.Pickup, s.Delivery)
		q := m.pricing.Quote(s, c, distanceKm, QuoteOptions{})
		if q.Total < f.MinPrice {
			continue
		}

		usage := 0.0
		if available > 0 {
			usage = math.Round(s.Weight/available*1000) / 10
		}
		out = append(out, domain.ShipmentSuggestion{
			Shipment:   s,
			Price:      q.Total,
			Profit:     q.CarrierEarnings,
			DistanceKm: math.Round(distanceKm*10) / 10,
			SpaceUsage: usage,
			Priority:   shipmentPriority(s, now),
		})
	}

	slices.SortStableFunc(out, func(a, b domain.ShipmentSuggestion) int {
		if a.Priority != b.Priority {
			return cmp.Compare(b.Priority, a.Priority)
		}
		return byScoreDesc(a.Profit, b.Profit)
	})
	return out
}
