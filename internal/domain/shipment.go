package domain

import (
	"fmt"
	"strings"
	"time"
)

// Category describes what is being shipped and the handling it needs.
type Category struct {
	ID                    string
	MaxWeight             float64
	Fragile               bool
	RequiresSpecialCare   bool
	RequiresRefrigeration bool
}

var categories = map[string]Category{
	"documents":   {ID: "documents", MaxWeight: 5},
	"electronics": {ID: "electronics", MaxWeight: 100, Fragile: true, RequiresSpecialCare: true},
	"clothes":     {ID: "clothes", MaxWeight: 500},
	"food":        {ID: "food", MaxWeight: 200, RequiresSpecialCare: true},
	"books":       {ID: "books", MaxWeight: 300},
	"medicine":    {ID: "medicine", MaxWeight: 50, Fragile: true, RequiresSpecialCare: true, RequiresRefrigeration: true},
	"furniture":   {ID: "furniture", MaxWeight: 50000, Fragile: true, RequiresSpecialCare: true},
	"other":       {ID: "other", MaxWeight: 1000000},
}

// LookupCategory returns the category table entry for id.
func LookupCategory(id string) (Category, bool) {
	c, ok := categories[strings.ToLower(strings.TrimSpace(id))]
	return c, ok
}

// Urgency is the delivery urgency requested by the sender.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyNormal Urgency = "normal"
	UrgencyHigh   Urgency = "high"
	UrgencyUrgent Urgency = "urgent"
)

// ShipmentStatus is the lifecycle state of a shipment.
type ShipmentStatus string

const (
	ShipmentPending   ShipmentStatus = "pending"
	ShipmentMatched   ShipmentStatus = "matched"
	ShipmentPickedUp  ShipmentStatus = "picked_up"
	ShipmentInTransit ShipmentStatus = "in_transit"
	ShipmentDelivered ShipmentStatus = "delivered"
	ShipmentCancelled ShipmentStatus = "cancelled"
)

var shipmentOrder = map[ShipmentStatus]int{
	ShipmentPending:   0,
	ShipmentMatched:   1,
	ShipmentPickedUp:  2,
	ShipmentInTransit: 3,
	ShipmentDelivered: 4,
}

// Dimensions in centimetres.
type Dimensions struct {
	Length float64
	Width  float64
	Height float64
}

// Shipment is an item waiting to be (or being) transported.
type Shipment struct {
	ID                string
	SenderID          string
	Category          string
	Weight            float64 // kg
	Dimensions        Dimensions
	VolumeM3          float64 // overrides Dimensions when > 0
	Pickup            Location
	Delivery          Location
	PickupDate        time.Time
	DeliveryDate      time.Time
	DeclaredValue     float64
	InsuranceRequired bool
	Images            []string
	Urgency           Urgency
	Status            ShipmentStatus
	MatchingCarriers  []string
	SelectedCarrier   string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Volume returns the shipment volume in cubic metres.
func (s *Shipment) Volume() float64 {
	if s.VolumeM3 > 0 {
		return s.VolumeM3
	}
	d := s.Dimensions
	return d.Length * d.Width * d.Height / 1_000_000
}

// Tier classifies the shipment by weight.
func (s *Shipment) Tier() Tier { return ClassifyByWeight(s.Weight) }

// CategoryInfo returns the category entry, falling back to "other".
func (s *Shipment) CategoryInfo() Category {
	if c, ok := LookupCategory(s.Category); ok {
		return c
	}
	return categories["other"]
}

// Validate checks the fields the core relies on.
func (s *Shipment) Validate() error {
	if s.Weight <= 0 {
		return fmt.Errorf("shipment %q: weight must be positive (got %v): %w", s.ID, s.Weight, ErrValidation)
	}
	if s.Volume() <= 0 {
		return fmt.Errorf("shipment %q: volume must be positive: %w", s.ID, ErrValidation)
	}
	if strings.TrimSpace(s.Pickup.City) == "" {
		return fmt.Errorf("shipment %q: pickup city is required: %w", s.ID, ErrValidation)
	}
	if strings.TrimSpace(s.Delivery.City) == "" {
		return fmt.Errorf("shipment %q: delivery city is required: %w", s.ID, ErrValidation)
	}
	if s.DeclaredValue < 0 {
		return fmt.Errorf("shipment %q: declared value must not be negative: %w", s.ID, ErrValidation)
	}
	return nil
}

// CanTransition reports whether the shipment may move from its current status to next.
// Forward moves follow pending → matched → picked_up → in_transit → delivered one
// step at a time; cancelled is reachable from every state before delivered.
func (s *Shipment) CanTransition(next ShipmentStatus) bool {
	cur := s.Status
	if cur == "" {
		cur = ShipmentPending
	}
	if cur == ShipmentCancelled || cur == ShipmentDelivered {
		return false
	}
	if next == ShipmentCancelled {
		return true
	}
	from, ok := shipmentOrder[cur]
	if !ok {
		return false
	}
	to, ok := shipmentOrder[next]
	if !ok {
		return false
	}
	return to == from+1
}

// Transition moves the shipment to next or returns ErrInvalidTransition.
func (s *Shipment) Transition(next ShipmentStatus, at time.Time) error {
	if !s.CanTransition(next) {
		return fmt.Errorf("shipment %q: %s -> %s: %w", s.ID, s.Status, next, ErrInvalidTransition)
	}
	s.Status = next
	s.UpdatedAt = at
	return nil
}
