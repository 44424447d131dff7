package handlers

import (
	"freight-match-service/internal/api/dto"
	"freight-match-service/internal/domain"
	"freight-match-service/internal/services"
	"strings"
	"time"
)

func toLocation(in dto.LocationDTO) domain.Location {
	loc := domain.Location{
		City:    strings.TrimSpace(in.City),
		Region:  strings.TrimSpace(in.Region),
		Address: strings.TrimSpace(in.Address),
	}
	if in.Lat != nil && in.Lon != nil {
		loc.Coords = &domain.Coordinates{Lon: *in.Lon, Lat: *in.Lat}
	}
	return loc
}

func fromLocation(loc domain.Location) dto.LocationDTO {
	out := dto.LocationDTO{City: loc.City, Region: loc.Region, Address: loc.Address}
	if loc.Coords != nil {
		lon, lat := loc.Coords.Lon, loc.Coords.Lat
		out.Lon, out.Lat = &lon, &lat
	}
	return out
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func toShipment(req dto.CreateShipmentRequest) *domain.Shipment {
	s := &domain.Shipment{
		ID:       strings.TrimSpace(req.ID),
		SenderID: req.SenderID,
		Category: strings.TrimSpace(req.Category),
		Weight:   req.Weight,
		Dimensions: domain.Dimensions{
			Length: req.LengthCm,
			Width:  req.WidthCm,
			Height: req.HeightCm,
		},
		VolumeM3:          req.VolumeM3,
		Pickup:            toLocation(req.Pickup),
		Delivery:          toLocation(req.Delivery),
		PickupDate:        req.PickupDate.UTC(),
		DeclaredValue:     req.DeclaredValue,
		InsuranceRequired: req.InsuranceRequired,
		Images:            req.Images,
		Urgency:           domain.Urgency(strings.ToLower(strings.TrimSpace(req.Urgency))),
	}
	if req.DeliveryDate != nil {
		s.DeliveryDate = req.DeliveryDate.UTC()
	}
	return s
}

func toShipmentResponse(s *domain.Shipment) dto.ShipmentResponse {
	out := dto.ShipmentResponse{
		ID:                s.ID,
		SenderID:          s.SenderID,
		Category:          s.Category,
		Weight:            s.Weight,
		Tier:              string(s.Tier()),
		VolumeM3:          s.Volume(),
		Pickup:            fromLocation(s.Pickup),
		Delivery:          fromLocation(s.Delivery),
		PickupDate:        s.PickupDate,
		DeclaredValue:     s.DeclaredValue,
		InsuranceRequired: s.InsuranceRequired,
		Images:            nonNil(s.Images),
		Urgency:           string(s.Urgency),
		Status:            string(s.Status),
		MatchingCarriers:  nonNil(s.MatchingCarriers),
		SelectedCarrier:   s.SelectedCarrier,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
	if !s.DeliveryDate.IsZero() {
		d := s.DeliveryDate
		out.DeliveryDate = &d
	}
	return out
}

func toCarrier(req dto.CreateCarrierRequest) *domain.Carrier {
	c := &domain.Carrier{
		ID:          strings.TrimSpace(req.ID),
		UserID:      req.UserID,
		VehicleType: strings.TrimSpace(req.VehicleType),
		Capacity: domain.Capacity{
			MinWeight: req.MinWeight,
			MaxWeight: req.MaxWeight,
			MaxVolume: req.MaxVolume,
		},
		Availability: domain.Availability(strings.ToLower(strings.TrimSpace(req.Availability))),
		Pricing: domain.PricingParams{
			BaseRate:      req.BaseRate,
			PricePerKm:    req.PricePerKm,
			WeightRate:    req.WeightRate,
			MinimumCharge: req.MinimumCharge,
		},
		Rating:     req.Rating,
		TotalTrips: req.TotalTrips,
		Verified:   req.Verified,
		Insured:    req.Insured,
	}
	for _, a := range req.ServiceAreas {
		c.ServiceAreas = append(c.ServiceAreas, domain.ServiceArea{
			City:   strings.TrimSpace(a.City),
			Region: strings.TrimSpace(a.Region),
		})
	}
	return c
}

func toCarrierResponse(c *domain.Carrier) dto.CarrierResponse {
	areas := make([]dto.ServiceAreaDTO, 0, len(c.ServiceAreas))
	for _, a := range c.ServiceAreas {
		areas = append(areas, dto.ServiceAreaDTO{City: a.City, Region: a.Region})
	}
	return dto.CarrierResponse{
		ID:            c.ID,
		UserID:        c.UserID,
		VehicleType:   c.VehicleType,
		Type:          string(c.Type),
		Tier:          string(c.Tier),
		MinWeight:     c.Capacity.MinWeight,
		MaxWeight:     c.Capacity.MaxWeight,
		MaxVolume:     c.Capacity.MaxVolume,
		ServiceAreas:  areas,
		Availability:  string(c.Availability),
		BaseRate:      c.Pricing.BaseRate,
		PricePerKm:    c.Pricing.PricePerKm,
		WeightRate:    c.Pricing.WeightRate,
		MinimumCharge: c.Pricing.MinimumCharge,
		Rating:        c.Rating,
		TotalTrips:    c.TotalTrips,
		Verified:      c.Verified,
		Insured:       c.Insured,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func toTrip(req dto.CreateTripRequest) *domain.Trip {
	t := &domain.Trip{
		ID:            strings.TrimSpace(req.ID),
		CarrierID:     strings.TrimSpace(req.CarrierID),
		Origin:        toLocation(req.Origin),
		Destination:   toLocation(req.Destination),
		DepartureDate: req.DepartureDate.UTC(),
		TotalCapacity: domain.TripCapacity{Weight: req.CapacityWeight, Volume: req.CapacityVolume},
		MaxShipments:  req.MaxShipments,
	}
	if req.ArrivalDate != nil {
		t.ArrivalDate = req.ArrivalDate.UTC()
	}
	return t
}

func toTripResponse(t *domain.Trip) dto.TripResponse {
	return dto.TripResponse{
		ID:              t.ID,
		CarrierID:       t.CarrierID,
		Origin:          fromLocation(t.Origin),
		Destination:     fromLocation(t.Destination),
		DepartureDate:   t.DepartureDate,
		ArrivalDate:     t.ArrivalDate,
		CapacityWeight:  t.TotalCapacity.Weight,
		CapacityVolume:  t.TotalCapacity.Volume,
		BookedWeight:    t.BookedWeight,
		AvailableWeight: t.AvailableWeight(),
		ShipmentIDs:     nonNil(t.ShipmentIDs),
		MaxShipments:    t.MaxShipments,
		OpenSlots:       t.OpenSlots(),
		Status:          string(t.Status),
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

func toTripResponses(trips []*domain.Trip) []dto.TripResponse {
	out := make([]dto.TripResponse, 0, len(trips))
	for _, t := range trips {
		out = append(out, toTripResponse(t))
	}
	return out
}

func toBookingResponse(b *domain.Booking) dto.BookingResponse {
	out := dto.BookingResponse{
		ID:         b.ID,
		TripID:     b.TripID,
		ShipmentID: b.ShipmentID,
		Weight:     b.Weight,
		Price:      b.Price,
		Status:     string(b.Status),
		BookedAt:   b.BookedAt,
	}
	if b.CancelledAt != nil {
		at := *b.CancelledAt
		out.CancelledAt = &at
	}
	return out
}

func toPriceResponse(p domain.PriceBreakdown) dto.PriceResponse {
	lines := make([]dto.PriceLineDTO, 0, len(p.Lines))
	for _, l := range p.Lines {
		lines = append(lines, dto.PriceLineDTO{Label: l.Label, Amount: l.Amount, IsTotal: l.IsTotal})
	}
	return dto.PriceResponse{
		Transport:          p.Transport,
		VolumeComponent:    p.VolumeComponent,
		CityComponent:      p.CityComponent,
		BasePrice:          p.BasePrice,
		UrgencyMultiplier:  p.UrgencyMultiplier,
		SeasonalMultiplier: p.SeasonalMultiplier,
		AdditionalFees:     p.AdditionalFees,
		InsuranceCost:      p.InsuranceCost,
		TaxAmount:          p.TaxAmount,
		Total:              p.Total,
		CarrierEarnings:    p.CarrierEarnings,
		PlatformCommission: p.PlatformCommission,
		Lines:              lines,
	}
}

func toPriceComparisons(in []services.PriceComparison) []dto.PriceComparisonResponse {
	out := make([]dto.PriceComparisonResponse, 0, len(in))
	for _, p := range in {
		out = append(out, dto.PriceComparisonResponse{
			CarrierID:       p.CarrierID,
			CarrierType:     string(p.CarrierType),
			Total:           p.Total,
			CarrierEarnings: p.CarrierEarnings,
			DurationHours:   p.DurationHours,
			PricePerKm:      p.PricePerKm,
		})
	}
	return out
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
