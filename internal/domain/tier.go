package domain

import "strings"

// Tier is the size class of a shipment, derived from its weight.
type Tier string

const (
	TierSmall  Tier = "small"
	TierMedium Tier = "medium"
	TierLarge  Tier = "large"
	TierGiant  Tier = "giant"
)

// Inclusive upper bounds (kg) of the Small, Medium and Large tiers.
const (
	SmallMaxWeight  = 20.0
	MediumMaxWeight = 1500.0
	LargeMaxWeight  = 50000.0
)

// ClassifyByWeight maps a weight in kg to exactly one tier.
// Each bound belongs to the lower tier: 20kg is Small, 20.01kg is Medium.
func ClassifyByWeight(weight float64) Tier {
	switch {
	case weight <= SmallMaxWeight:
		return TierSmall
	case weight <= MediumMaxWeight:
		return TierMedium
	case weight <= LargeMaxWeight:
		return TierLarge
	default:
		return TierGiant
	}
}

// CarrierType groups carriers by the kind of vehicle capacity they offer.
type CarrierType string

const (
	RegularTraveler CarrierType = "regular_traveler"
	PrivateCar      CarrierType = "private_car"
	TruckOwner      CarrierType = "truck_owner"
	FleetCompany    CarrierType = "fleet_company"
)

// CarrierTypeSpec holds the fixed capacity range and default rates of a carrier type.
type CarrierTypeSpec struct {
	Type        CarrierType
	MinCapacity float64 // kg
	MaxCapacity float64 // kg
	BasePrice   float64
	PricePerKm  float64
	SpeedKmh    float64
}

var carrierTypes = map[CarrierType]CarrierTypeSpec{
	RegularTraveler: {Type: RegularTraveler, MinCapacity: 0, MaxCapacity: 20, BasePrice: 20, PricePerKm: 2, SpeedKmh: 80},
	PrivateCar:      {Type: PrivateCar, MinCapacity: 20, MaxCapacity: 1500, BasePrice: 50, PricePerKm: 1.5, SpeedKmh: 100},
	TruckOwner:      {Type: TruckOwner, MinCapacity: 1500, MaxCapacity: 50000, BasePrice: 200, PricePerKm: 1, SpeedKmh: 70},
	FleetCompany:    {Type: FleetCompany, MinCapacity: 50000, MaxCapacity: 1000000, BasePrice: 1000, PricePerKm: 0.5, SpeedKmh: 60},
}

// LookupCarrierType returns the capacity range and default rates of a carrier type.
func LookupCarrierType(t CarrierType) (CarrierTypeSpec, bool) {
	spec, ok := carrierTypes[CarrierType(strings.ToLower(string(t)))]
	return spec, ok
}

var compatibleTypes = map[Tier][]CarrierType{
	TierSmall:  {RegularTraveler},
	TierMedium: {RegularTraveler, PrivateCar},
	TierLarge:  {PrivateCar, TruckOwner},
	TierGiant:  {TruckOwner, FleetCompany},
}

// CompatibleCarrierTypes returns the carrier types allowed to carry a shipment tier.
// This is a coarse pre-filter; Carrier.CanAccept applies the capacity range.
func CompatibleCarrierTypes(t Tier) []CarrierType {
	types := compatibleTypes[t]
	out := make([]CarrierType, len(types))
	copy(out, types)
	return out
}

// IsCompatible reports whether carrier type ct may carry shipments of tier t.
func IsCompatible(t Tier, ct CarrierType) bool {
	for _, c := range compatibleTypes[t] {
		if c == ct {
			return true
		}
	}
	return false
}

// CarrierTier is the business class of a carrier.
type CarrierTier string

const (
	TierIndividual   CarrierTier = "individual"
	TierProfessional CarrierTier = "professional"
	TierCompany      CarrierTier = "company"
)

var vehicleTypes = map[string]CarrierType{
	"taxi":        RegularTraveler,
	"bus":         RegularTraveler,
	"plane":       RegularTraveler,
	"train":       RegularTraveler,
	"car":         PrivateCar,
	"suv":         PrivateCar,
	"pickup":      PrivateCar,
	"van":         TruckOwner,
	"truck":       TruckOwner,
	"trailer":     TruckOwner,
	"fleet":       FleetCompany,
	"airline":     FleetCompany,
	"shipping":    FleetCompany,
	"train_cargo": FleetCompany,
}

func normalizeVehicle(vehicle string) string {
	return strings.ToLower(strings.TrimSpace(vehicle))
}

// CarrierTypeForVehicle derives the carrier type from a vehicle type.
// Unknown vehicles default to PrivateCar.
func CarrierTypeForVehicle(vehicle string) CarrierType {
	if ct, ok := vehicleTypes[normalizeVehicle(vehicle)]; ok {
		return ct
	}
	return PrivateCar
}

// TierForVehicle derives the business tier from a vehicle type.
func TierForVehicle(vehicle string) CarrierTier {
	ct, ok := vehicleTypes[normalizeVehicle(vehicle)]
	if !ok {
		return TierProfessional
	}
	switch ct {
	case RegularTraveler:
		return TierIndividual
	case FleetCompany:
		return TierCompany
	default:
		return TierProfessional
	}
}
