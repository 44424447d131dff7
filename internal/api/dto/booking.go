package dto

import "time"

type CreateBookingRequest struct {
	ShipmentID string `json:"shipment_id"`
	TripID     string `json:"trip_id"`
}

type BookingResponse struct {
	ID          string     `json:"id"`
	TripID      string     `json:"trip_id"`
	ShipmentID  string     `json:"shipment_id"`
	Weight      float64    `json:"weight"`
	Price       float64    `json:"price"`
	Status      string     `json:"status"`
	BookedAt    time.Time  `json:"booked_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

type ListBookingsResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

type EarningsResponse struct {
	BookingID    string  `json:"booking_id"`
	Total        float64 `json:"total"`
	Commission   float64 `json:"commission"`
	Fuel         float64 `json:"fuel"`
	Toll         float64 `json:"toll"`
	Other        float64 `json:"other"`
	Net          float64 `json:"net"`
	ProfitMargin float64 `json:"profit_margin_pct"`
}
