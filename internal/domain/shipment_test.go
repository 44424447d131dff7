package domain

import (
	"errors"
	"testing"
	"time"
)

func TestShipmentValidate(t *testing.T) {
	valid := Shipment{
		ID:       "s1",
		Weight:   10,
		VolumeM3: 0.1,
		Pickup:   Location{City: "Riyadh"},
		Delivery: Location{City: "Jeddah"},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := map[string]func(s *Shipment){
		"zero weight":      func(s *Shipment) { s.Weight = 0 },
		"negative weight":  func(s *Shipment) { s.Weight = -3 },
		"no volume":        func(s *Shipment) { s.VolumeM3 = 0 },
		"missing pickup":   func(s *Shipment) { s.Pickup.City = " " },
		"missing delivery": func(s *Shipment) { s.Delivery = Location{} },
	}

	for name, mutate := range cases {
		s := valid
		mutate(&s)
		if err := s.Validate(); !errors.Is(err, ErrValidation) {
			t.Errorf("%s: err = %v, want ErrValidation", name, err)
		}
	}
}

func TestShipmentTransitions(t *testing.T) {
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	s := &Shipment{ID: "s1", Status: ShipmentPending}

	path := []ShipmentStatus{ShipmentMatched, ShipmentPickedUp, ShipmentInTransit, ShipmentDelivered}
	for _, next := range path {
		if err := s.Transition(next, now); err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
	}

	if err := s.Transition(ShipmentCancelled, now); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("cancel after delivery: err = %v, want ErrInvalidTransition", err)
	}
}

func TestShipmentCannotSkipOrGoBack(t *testing.T) {
	s := &Shipment{ID: "s1", Status: ShipmentMatched}

	if s.CanTransition(ShipmentInTransit) {
		t.Errorf("matched -> in_transit should skip picked_up and be rejected")
	}
	if s.CanTransition(ShipmentPending) {
		t.Errorf("matched -> pending should be rejected")
	}
	if !s.CanTransition(ShipmentCancelled) {
		t.Errorf("matched -> cancelled should be allowed")
	}

	s.Status = ShipmentCancelled
	if s.CanTransition(ShipmentMatched) {
		t.Errorf("cancelled is terminal")
	}
}
