package domain

import (
	"fmt"
	"strings"
	"time"
)

// Availability of a carrier for new work.
type Availability string

const (
	CarrierAvailable Availability = "available"
	CarrierBusy      Availability = "busy"
	CarrierOffline   Availability = "offline"
)

// Capacity of a carrier's vehicle. MinWeight is the smallest load the
// carrier takes on; a shipment must fall inside [MinWeight, MaxWeight].
type Capacity struct {
	MinWeight float64 // kg
	MaxWeight float64 // kg
	MaxVolume float64 // m3
}

// PricingParams are the carrier's own rates. Zero values fall back to the
// defaults of the carrier type.
type PricingParams struct {
	BaseRate      float64
	PricePerKm    float64
	WeightRate    float64
	MinimumCharge float64
}

// ServiceArea is a city/region pair a carrier operates in.
// An empty City matches the whole region.
type ServiceArea struct {
	City   string
	Region string
}

// Carrier is a person, vehicle or fleet with spare capacity.
type Carrier struct {
	ID           string
	UserID       string
	VehicleType  string
	Type         CarrierType
	Tier         CarrierTier
	Capacity     Capacity
	ServiceAreas []ServiceArea
	Availability Availability
	Pricing      PricingParams
	Rating       float64
	TotalTrips   int
	Verified     bool
	Insured      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ClampRating bounds a rating to [0, 5].
func ClampRating(r float64) float64 {
	if r < 0 {
		return 0
	}
	if r > 5 {
		return 5
	}
	return r
}

// Normalize derives type and tier from the vehicle and clamps the rating.
func (c *Carrier) Normalize() {
	if c.Type == "" {
		c.Type = CarrierTypeForVehicle(c.VehicleType)
	}
	if c.Tier == "" {
		c.Tier = TierForVehicle(c.VehicleType)
	}
	if c.Availability == "" {
		c.Availability = CarrierAvailable
	}
	c.Rating = ClampRating(c.Rating)
}

// Validate checks the capacity invariant.
func (c *Carrier) Validate() error {
	if c.Capacity.MaxWeight <= 0 {
		return fmt.Errorf("carrier %q: capacity weight must be positive: %w", c.ID, ErrValidation)
	}
	if c.Capacity.MaxVolume <= 0 {
		return fmt.Errorf("carrier %q: capacity volume must be positive: %w", c.ID, ErrValidation)
	}
	if c.Capacity.MinWeight < 0 || c.Capacity.MinWeight > c.Capacity.MaxWeight {
		return fmt.Errorf("carrier %q: min weight must be within [0, max weight]: %w", c.ID, ErrValidation)
	}
	return nil
}

// Rates returns the effective pricing of the carrier, filling gaps from its type.
func (c *Carrier) Rates() PricingParams {
	p := c.Pricing
	spec, ok := LookupCarrierType(c.Type)
	if !ok {
		spec, _ = LookupCarrierType(CarrierTypeForVehicle(c.VehicleType))
	}
	if p.BaseRate == 0 {
		p.BaseRate = spec.BasePrice
	}
	if p.PricePerKm == 0 {
		p.PricePerKm = spec.PricePerKm
	}
	return p
}

// CanAccept reports whether the carrier may carry the shipment: its type must be
// compatible with the shipment tier and the weight and volume must fall within
// the vehicle capacity.
func (c *Carrier) CanAccept(s *Shipment) bool {
	if !IsCompatible(s.Tier(), c.Type) {
		return false
	}
	if s.Weight < c.Capacity.MinWeight || s.Weight > c.Capacity.MaxWeight {
		return false
	}
	return s.Volume() <= c.Capacity.MaxVolume
}

// Serves reports whether the carrier operates at loc.
func (c *Carrier) Serves(loc Location) bool {
	if len(c.ServiceAreas) == 0 {
		return true
	}
	for _, a := range c.ServiceAreas {
		if a.City != "" && strings.EqualFold(strings.TrimSpace(a.City), strings.TrimSpace(loc.City)) {
			return true
		}
		if a.City == "" && a.Region != "" && strings.EqualFold(strings.TrimSpace(a.Region), strings.TrimSpace(loc.Region)) {
			return true
		}
	}
	return false
}
