package domain

// Results below are the output of the matching, pricing and allocation
// algorithms. They are immutable planning data, produced per request and
// never persisted.

// PriceLine is one labelled row of a price breakdown.
type PriceLine struct {
	Label   string
	Amount  float64
	IsTotal bool
}

// PriceBreakdown is a priced quote for a shipment/carrier pair.
type PriceBreakdown struct {
	Transport          float64 // carrier base + distance + weight
	VolumeComponent    float64
	CityComponent      float64
	BasePrice          float64 // Transport + volume + city, after the minimum charge
	UrgencyMultiplier  float64
	SeasonalMultiplier float64
	AdditionalFees     float64
	InsuranceCost      float64
	TaxAmount          float64
	Total              float64 // rounded up to a multiple of 5
	CarrierEarnings    float64
	PlatformCommission float64
	Lines              []PriceLine
}

// MatchResult pairs a shipment with a carrier and the figures shown to the sender.
type MatchResult struct {
	ShipmentID    string
	CarrierID     string
	Score         float64
	Price         PriceBreakdown
	DistanceKm    float64
	DurationHours float64
}

// CarrierMatch is a ranked carrier for a shipment together with its
// route-compatible trips.
type CarrierMatch struct {
	Carrier *Carrier
	Trips   []*Trip
	MatchResult
}

// TripOption is a single bookable trip for a shipment.
type TripOption struct {
	Trip    *Trip
	Carrier *Carrier
	MatchResult
}

// ShipmentSuggestion is a pending shipment proposed to a carrier for a trip.
type ShipmentSuggestion struct {
	Shipment   *Shipment
	Price      float64
	Profit     float64
	DistanceKm float64
	SpaceUsage float64 // percent of the trip's available weight
	Priority   int
}

// LoadPlan is the allocator's choice of shipments for a trip.
type LoadPlan struct {
	TripID            string
	Selected          []*Shipment
	TotalWeight       float64
	UtilizationPct    float64
	RemainingCapacity float64
}

// TripStats summarizes a trip's capacity usage.
type TripStats struct {
	TripID            string
	TotalCapacity     float64
	UsedSpace         float64
	AvailableSpace    float64
	UtilizationPct    float64
	ShipmentsCount    int
	MaxShipments      int
	ConfirmedBookings int
	Status            TripStatus
}
