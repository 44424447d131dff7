package dto

import "time"

type CreateShipmentRequest struct {
	ID                string      `json:"id"`
	SenderID          string      `json:"sender_id"`
	Category          string      `json:"category"`
	Weight            float64     `json:"weight"`
	LengthCm          float64     `json:"length_cm"`
	WidthCm           float64     `json:"width_cm"`
	HeightCm          float64     `json:"height_cm"`
	VolumeM3          float64     `json:"volume_m3"`
	Pickup            LocationDTO `json:"pickup"`
	Delivery          LocationDTO `json:"delivery"`
	PickupDate        time.Time   `json:"pickup_date"`
	DeliveryDate      *time.Time  `json:"delivery_date"`
	DeclaredValue     float64     `json:"declared_value"`
	InsuranceRequired bool        `json:"insurance_required"`
	Images            []string    `json:"images"`
	Urgency           string      `json:"urgency"`
}

type ShipmentResponse struct {
	ID                string      `json:"id"`
	SenderID          string      `json:"sender_id"`
	Category          string      `json:"category"`
	Weight            float64     `json:"weight"`
	Tier              string      `json:"tier"`
	VolumeM3          float64     `json:"volume_m3"`
	Pickup            LocationDTO `json:"pickup"`
	Delivery          LocationDTO `json:"delivery"`
	PickupDate        time.Time   `json:"pickup_date"`
	DeliveryDate      *time.Time  `json:"delivery_date,omitempty"`
	DeclaredValue     float64     `json:"declared_value"`
	InsuranceRequired bool        `json:"insurance_required"`
	Images            []string    `json:"images"`
	Urgency           string      `json:"urgency"`
	Status            string      `json:"status"`
	MatchingCarriers  []string    `json:"matching_carriers"`
	SelectedCarrier   string      `json:"selected_carrier,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

type CarrierMatchResponse struct {
	Carrier       CarrierResponse `json:"carrier"`
	Score         float64         `json:"score"`
	Price         PriceResponse   `json:"price"`
	DistanceKm    float64         `json:"distance_km"`
	DurationHours float64         `json:"duration_hours"`
	TripIDs       []string        `json:"trip_ids"`
}

type ListMatchesResponse struct {
	ShipmentID string                 `json:"shipment_id"`
	Matches    []CarrierMatchResponse `json:"matches"`
}

type TripOptionResponse struct {
	Trip          TripResponse  `json:"trip"`
	CarrierID     string        `json:"carrier_id"`
	Score         float64       `json:"score"`
	Price         PriceResponse `json:"price"`
	DistanceKm    float64       `json:"distance_km"`
	DurationHours float64       `json:"duration_hours"`
}

type ListTripOptionsResponse struct {
	ShipmentID string               `json:"shipment_id"`
	Trips      []TripOptionResponse `json:"trips"`
}
