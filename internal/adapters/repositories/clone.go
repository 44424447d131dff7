package repositories

import (
	"freight-match-service/internal/domain"
	"slices"
)

func cloneLocation(l domain.Location) domain.Location {
	if l.Coords != nil {
		c := *l.Coords
		l.Coords = &c
	}
	return l
}

func cloneShipment(s *domain.Shipment) *domain.Shipment {
	cp := *s
	cp.Pickup = cloneLocation(s.Pickup)
	cp.Delivery = cloneLocation(s.Delivery)
	cp.Images = slices.Clone(s.Images)
	cp.MatchingCarriers = slices.Clone(s.MatchingCarriers)
	return &cp
}

func cloneCarrier(c *domain.Carrier) *domain.Carrier {
	cp := *c
	cp.ServiceAreas = slices.Clone(c.ServiceAreas)
	return &cp
}

func cloneTrip(t *domain.Trip) *domain.Trip {
	cp := t.Clone()
	cp.Origin = cloneLocation(t.Origin)
	cp.Destination = cloneLocation(t.Destination)
	return cp
}

func cloneBooking(b *domain.Booking) *domain.Booking {
	cp := *b
	if b.CancelledAt != nil {
		at := *b.CancelledAt
		cp.CancelledAt = &at
	}
	return &cp
}
