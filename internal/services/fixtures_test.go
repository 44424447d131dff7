package services

import (
	"freight-match-service/internal/adapters/distance"
	"freight-match-service/internal/domain"
	"math"
	"time"
)

var day0 = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func loc(city string) domain.Location { return domain.Location{City: city} }

func newTestGeo() *Geo { return NewGeo(distance.NewDefaultCityTable()) }

func testShipment(id string, weight float64) *domain.Shipment {
	return &domain.Shipment{
		ID:           id,
		SenderID:     "sender-" + id,
		Category:     "other",
		Weight:       weight,
		VolumeM3:     0.1,
		Pickup:       loc("Riyadh"),
		Delivery:     loc("Jeddah"),
		PickupDate:   day0,
		DeliveryDate: day0.Add(72 * time.Hour),
		Urgency:      domain.UrgencyNormal,
		Status:       domain.ShipmentPending,
	}
}

func testCarrier(id, vehicle string, minW, maxW float64) *domain.Carrier {
	c := &domain.Carrier{
		ID:           id,
		UserID:       "user-" + id,
		VehicleType:  vehicle,
		Capacity:     domain.Capacity{MinWeight: minW, MaxWeight: maxW, MaxVolume: 100},
		Rating:       4,
		Availability: domain.CarrierAvailable,
	}
	c.Normalize()
	return c
}

func testTrip(id, carrierID string, capacity float64) *domain.Trip {
	return &domain.Trip{
		ID:            id,
		CarrierID:     carrierID,
		Origin:        loc("Riyadh"),
		Destination:   loc("Jeddah"),
		DepartureDate: day0.Add(12 * time.Hour),
		TotalCapacity: domain.TripCapacity{Weight: capacity, Volume: 100},
		MaxShipments:  domain.DefaultMaxShipments,
		Status:        domain.TripActive,
	}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }
