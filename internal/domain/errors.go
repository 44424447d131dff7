package domain

import "errors"

// Sentinel errors returned by the core. Callers wrap them with context;
// the transport layer maps them to status codes with errors.Is.
var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrBookingNotFound     = errors.New("booking not found")
	ErrBookingCancelled    = errors.New("booking already cancelled")
	ErrCapacityExceeded    = errors.New("capacity exceeded")
	ErrMaxShipmentsReached = errors.New("max shipments reached")
	ErrTripNotActive       = errors.New("trip not active")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrIncompatibleMatch   = errors.New("incompatible match")
	ErrAlreadyBooked       = errors.New("shipment already booked on trip")
)
