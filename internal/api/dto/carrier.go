package dto

import "time"

type ServiceAreaDTO struct {
	City   string `json:"city,omitempty"`
	Region string `json:"region,omitempty"`
}

type CreateCarrierRequest struct {
	ID            string           `json:"id"`
	UserID        string           `json:"user_id"`
	VehicleType   string           `json:"vehicle_type"`
	MinWeight     float64          `json:"min_weight"`
	MaxWeight     float64          `json:"max_weight"`
	MaxVolume     float64          `json:"max_volume"`
	ServiceAreas  []ServiceAreaDTO `json:"service_areas"`
	Availability  string           `json:"availability"`
	BaseRate      float64          `json:"base_rate"`
	PricePerKm    float64          `json:"price_per_km"`
	WeightRate    float64          `json:"weight_rate"`
	MinimumCharge float64          `json:"minimum_charge"`
	Rating        float64          `json:"rating"`
	TotalTrips    int              `json:"total_trips"`
	Verified      bool             `json:"verified"`
	Insured       bool             `json:"insured"`
}

type CarrierResponse struct {
	ID            string           `json:"id"`
	UserID        string           `json:"user_id"`
	VehicleType   string           `json:"vehicle_type"`
	Type          string           `json:"type"`
	Tier          string           `json:"tier"`
	MinWeight     float64          `json:"min_weight"`
	MaxWeight     float64          `json:"max_weight"`
	MaxVolume     float64          `json:"max_volume"`
	ServiceAreas  []ServiceAreaDTO `json:"service_areas"`
	Availability  string           `json:"availability"`
	BaseRate      float64          `json:"base_rate"`
	PricePerKm    float64          `json:"price_per_km"`
	WeightRate    float64          `json:"weight_rate"`
	MinimumCharge float64          `json:"minimum_charge"`
	Rating        float64          `json:"rating"`
	TotalTrips    int              `json:"total_trips"`
	Verified      bool             `json:"verified"`
	Insured       bool             `json:"insured"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}
