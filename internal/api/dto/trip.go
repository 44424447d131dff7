package dto

import "time"

type CreateTripRequest struct {
	ID             string      `json:"id"`
	CarrierID      string      `json:"carrier_id"`
	Origin         LocationDTO `json:"origin"`
	Destination    LocationDTO `json:"destination"`
	DepartureDate  time.Time   `json:"departure_date"`
	ArrivalDate    *time.Time  `json:"arrival_date"`
	CapacityWeight float64     `json:"capacity_weight"`
	CapacityVolume float64     `json:"capacity_volume"`
	MaxShipments   int         `json:"max_shipments"`
}

type TripResponse struct {
	ID              string      `json:"id"`
	CarrierID       string      `json:"carrier_id"`
	Origin          LocationDTO `json:"origin"`
	Destination     LocationDTO `json:"destination"`
	DepartureDate   time.Time   `json:"departure_date"`
	ArrivalDate     time.Time   `json:"arrival_date"`
	CapacityWeight  float64     `json:"capacity_weight"`
	CapacityVolume  float64     `json:"capacity_volume"`
	BookedWeight    float64     `json:"booked_weight"`
	AvailableWeight float64     `json:"available_weight"`
	ShipmentIDs     []string    `json:"shipment_ids"`
	MaxShipments    int         `json:"max_shipments"`
	OpenSlots       int         `json:"open_slots"`
	Status          string      `json:"status"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

type ListTripsResponse struct {
	Trips []TripResponse `json:"trips"`
}

type TripSearchResultResponse struct {
	Trip           TripResponse `json:"trip"`
	DistanceKm     float64      `json:"distance_km"`
	UtilizationPct float64      `json:"utilization_pct"`
}

type SearchTripsResponse struct {
	Results []TripSearchResultResponse `json:"results"`
}

type SuggestionResponse struct {
	Shipment   ShipmentResponse `json:"shipment"`
	Price      float64          `json:"price"`
	Profit     float64          `json:"profit"`
	DistanceKm float64          `json:"distance_km"`
	SpaceUsage float64          `json:"space_usage_pct"`
	Priority   int              `json:"priority"`
}

type ListSuggestionsResponse struct {
	TripID      string               `json:"trip_id"`
	Suggestions []SuggestionResponse `json:"suggestions"`
}

type LoadPlanResponse struct {
	TripID            string   `json:"trip_id"`
	ShipmentIDs       []string `json:"shipment_ids"`
	TotalWeight       float64  `json:"total_weight"`
	UtilizationPct    float64  `json:"utilization_pct"`
	RemainingCapacity float64  `json:"remaining_capacity"`
}

type TripStatsResponse struct {
	TripID            string  `json:"trip_id"`
	TotalCapacity     float64 `json:"total_capacity"`
	UsedSpace         float64 `json:"used_space"`
	AvailableSpace    float64 `json:"available_space"`
	UtilizationPct    float64 `json:"utilization_pct"`
	ShipmentsCount    int     `json:"shipments_count"`
	MaxShipments      int     `json:"max_shipments"`
	ConfirmedBookings int     `json:"confirmed_bookings"`
	Status            string  `json:"status"`
}
