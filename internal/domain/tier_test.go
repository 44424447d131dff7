package domain

import "testing"

func TestClassifyByWeightBoundaries(t *testing.T) {
	cases := []struct {
		weight float64
		want   Tier
	}{
		{0, TierSmall},
		{5, TierSmall},
		{20, TierSmall},
		{20.0001, TierMedium},
		{1500, TierMedium},
		{1500.5, TierLarge},
		{50000, TierLarge},
		{50000.01, TierGiant},
		{2_000_000, TierGiant},
	}

	for _, tc := range cases {
		if got := ClassifyByWeight(tc.weight); got != tc.want {
			t.Errorf("ClassifyByWeight(%v) = %q, want %q", tc.weight, got, tc.want)
		}
	}
}

func TestClassifyByWeightPartitionsRange(t *testing.T) {
	// Walk the range in small steps: the tier may only ever move up, one step at a time.
	order := map[Tier]int{TierSmall: 0, TierMedium: 1, TierLarge: 2, TierGiant: 3}

	prev := ClassifyByWeight(0)
	for w := 0.25; w <= 60000; w += 0.25 {
		cur := ClassifyByWeight(w)
		diff := order[cur] - order[prev]
		if diff < 0 || diff > 1 {
			t.Fatalf("tier jumped from %q to %q at %v", prev, cur, w)
		}
		prev = cur
	}
	if prev != TierGiant {
		t.Fatalf("final tier = %q, want giant", prev)
	}
}

func TestCarrierAcceptsByCapacityRange(t *testing.T) {
	shipment := &Shipment{ID: "s1", Weight: 5, VolumeM3: 0.01}
	if got := shipment.Tier(); got != TierSmall {
		t.Fatalf("tier = %q, want small", got)
	}

	traveler := &Carrier{ID: "c1", VehicleType: "taxi", Capacity: Capacity{MinWeight: 0.1, MaxWeight: 20, MaxVolume: 0.5}}
	traveler.Normalize()
	if !traveler.CanAccept(shipment) {
		t.Errorf("carrier with 0.1-20kg capacity should accept a 5kg shipment")
	}

	car := &Carrier{ID: "c2", VehicleType: "car", Capacity: Capacity{MinWeight: 20, MaxWeight: 1500, MaxVolume: 5}}
	car.Normalize()
	if car.CanAccept(shipment) {
		t.Errorf("carrier with 20-1500kg capacity should reject a 5kg shipment")
	}
}

func TestCarrierRejectsOversizedVolume(t *testing.T) {
	shipment := &Shipment{ID: "s1", Weight: 300, Dimensions: Dimensions{Length: 200, Width: 200, Height: 200}}
	car := &Carrier{ID: "c1", VehicleType: "pickup", Capacity: Capacity{MinWeight: 20, MaxWeight: 1500, MaxVolume: 4}}
	car.Normalize()

	if got := shipment.Volume(); got != 8 {
		t.Fatalf("volume = %v, want 8", got)
	}
	if car.CanAccept(shipment) {
		t.Errorf("8m3 shipment should not fit a 4m3 vehicle")
	}
}

func TestVehicleDerivations(t *testing.T) {
	cases := []struct {
		vehicle string
		typ     CarrierType
		tier    CarrierTier
	}{
		{"taxi", RegularTraveler, TierIndividual},
		{"SUV", PrivateCar, TierProfessional},
		{"truck", TruckOwner, TierProfessional},
		{"airline", FleetCompany, TierCompany},
		{"hovercraft", PrivateCar, TierProfessional},
	}

	for _, tc := range cases {
		if got := CarrierTypeForVehicle(tc.vehicle); got != tc.typ {
			t.Errorf("CarrierTypeForVehicle(%q) = %q, want %q", tc.vehicle, got, tc.typ)
		}
		if got := TierForVehicle(tc.vehicle); got != tc.tier {
			t.Errorf("TierForVehicle(%q) = %q, want %q", tc.vehicle, got, tc.tier)
		}
	}
}

func TestCarrierRatingIsClamped(t *testing.T) {
	c := &Carrier{VehicleType: "car", Rating: 7.5}
	c.Normalize()
	if c.Rating != 5 {
		t.Errorf("rating = %v, want 5", c.Rating)
	}

	c.Rating = -1
	c.Normalize()
	if c.Rating != 0 {
		t.Errorf("rating = %v, want 0", c.Rating)
	}
}
