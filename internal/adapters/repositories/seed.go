package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"freight-match-service/internal/domain"
	"freight-match-service/internal/ports"
	"os"
	"strings"
	"time"
)

type LocationSeed struct {
	City    string   `json:"city"`
	Region  string   `json:"region"`
	Address string   `json:"address"`
	Lon     *float64 `json:"lon"`
	Lat     *float64 `json:"lat"`
}

func (l LocationSeed) location() domain.Location {
	loc := domain.Location{
		City:    strings.TrimSpace(l.City),
		Region:  strings.TrimSpace(l.Region),
		Address: strings.TrimSpace(l.Address),
	}
	if l.Lon != nil && l.Lat != nil {
		loc.Coords = &domain.Coordinates{Lon: *l.Lon, Lat: *l.Lat}
	}
	return loc
}

type CarrierSeed struct {
	ID            string   `json:"id"`
	UserID        string   `json:"user_id"`
	VehicleType   string   `json:"vehicle_type"`
	MinWeight     float64  `json:"min_weight"`
	MaxWeight     float64  `json:"max_weight"`
	MaxVolume     float64  `json:"max_volume"`
	ServiceCities []string `json:"service_cities"`
	BaseRate      float64  `json:"base_rate"`
	PricePerKm    float64  `json:"price_per_km"`
	MinimumCharge float64  `json:"minimum_charge"`
	Rating        float64  `json:"rating"`
	TotalTrips    int      `json:"total_trips"`
	Verified      bool     `json:"verified"`
	Insured       bool     `json:"insured"`
}

type TripSeed struct {
	ID             string       `json:"id"`
	CarrierID      string       `json:"carrier_id"`
	Origin         LocationSeed `json:"origin"`
	Destination    LocationSeed `json:"destination"`
	DepartureDate  time.Time    `json:"departure_date"`
	CapacityWeight float64      `json:"capacity_weight"`
	CapacityVolume float64      `json:"capacity_volume"`
	MaxShipments   int          `json:"max_shipments"`
}

type ShipmentSeed struct {
	ID                string       `json:"id"`
	SenderID          string       `json:"sender_id"`
	Category          string       `json:"category"`
	Weight            float64      `json:"weight"`
	LengthCm          float64      `json:"length_cm"`
	WidthCm           float64      `json:"width_cm"`
	HeightCm          float64      `json:"height_cm"`
	Pickup            LocationSeed `json:"pickup"`
	Delivery          LocationSeed `json:"delivery"`
	PickupDate        time.Time    `json:"pickup_date"`
	DeclaredValue     float64      `json:"declared_value"`
	InsuranceRequired bool         `json:"insurance_required"`
	Urgency           string       `json:"urgency"`
}

type CityDistanceSeed struct {
	CityA string  `json:"city_a"`
	CityB string  `json:"city_b"`
	Km    float64 `json:"km"`
}

// MarketplaceSeed is the layout of the seed file.
type MarketplaceSeed struct {
	Carriers      []CarrierSeed      `json:"carriers"`
	Trips         []TripSeed         `json:"trips"`
	Shipments     []ShipmentSeed     `json:"shipments"`
	CityDistances []CityDistanceSeed `json:"city_distances"`
}

// SeedCounts reports what SeedFromJSON wrote.
type SeedCounts struct {
	Carriers      int
	Trips         int
	Shipments     int
	CityDistances int
}

// SeedFromJSON reads a MarketplaceSeed file and upserts its records into store.
// City distances are written only when cities is non-nil.
// Every record is validated before anything is written.
func SeedFromJSON(ctx context.Context, store ports.Store, cities ports.CityDistanceStore, jsonPath string) (SeedCounts, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return SeedCounts{}, fmt.Errorf("seed marketplace: read %q: %w", jsonPath, err)
	}

	var data MarketplaceSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return SeedCounts{}, fmt.Errorf("seed marketplace: parse json: %w", err)
	}

	now := time.Now().UTC()
	carriers, err := buildCarriers(data.Carriers, now)
	if err != nil {
		return SeedCounts{}, err
	}
	trips, err := buildTrips(data.Trips, now)
	if err != nil {
		return SeedCounts{}, err
	}
	shipments, err := buildShipments(data.Shipments, now)
	if err != nil {
		return SeedCounts{}, err
	}
	pairs := make([]ports.CityPair, 0, len(data.CityDistances))
	for i, d := range data.CityDistances {
		if strings.TrimSpace(d.CityA) == "" || strings.TrimSpace(d.CityB) == "" || d.Km <= 0 {
			return SeedCounts{}, fmt.Errorf("seed marketplace: city distance at index %d: cities and positive km are required", i+1)
		}
		pairs = append(pairs, ports.CityPair{CityA: strings.TrimSpace(d.CityA), CityB: strings.TrimSpace(d.CityB), Km: d.Km})
	}

	for _, c := range carriers {
		if err := store.SaveCarrier(ctx, c); err != nil {
			return SeedCounts{}, fmt.Errorf("seed marketplace: %w", err)
		}
	}
	for _, t := range trips {
		if err := store.SaveTrip(ctx, t); err != nil {
			return SeedCounts{}, fmt.Errorf("seed marketplace: %w", err)
		}
	}
	for _, s := range shipments {
		if err := store.SaveShipment(ctx, s); err != nil {
			return SeedCounts{}, fmt.Errorf("seed marketplace: %w", err)
		}
	}

	counts := SeedCounts{Carriers: len(carriers), Trips: len(trips), Shipments: len(shipments)}
	if cities != nil && len(pairs) > 0 {
		if err := cities.PutCityDistances(ctx, pairs); err != nil {
			return counts, fmt.Errorf("seed marketplace: city distances: %w", err)
		}
		counts.CityDistances = len(pairs)
	}
	return counts, nil
}

func buildCarriers(in []CarrierSeed, now time.Time) ([]*domain.Carrier, error) {
	out := make([]*domain.Carrier, 0, len(in))
	seen := make(map[string]bool, len(in))
	for i, item := range in {
		id := strings.TrimSpace(item.ID)
		if id == "" {
			return nil, fmt.Errorf("seed marketplace: carrier at index %d: id cannot be empty", i+1)
		}
		if seen[id] {
			return nil, fmt.Errorf("seed marketplace: carrier at index %d: duplicate id %q", i+1, id)
		}
		seen[id] = true

		c := &domain.Carrier{
			ID:          id,
			UserID:      item.UserID,
			VehicleType: item.VehicleType,
			Capacity: domain.Capacity{
				MinWeight: item.MinWeight,
				MaxWeight: item.MaxWeight,
				MaxVolume: item.MaxVolume,
			},
			Pricing: domain.PricingParams{
				BaseRate:      item.BaseRate,
				PricePerKm:    item.PricePerKm,
				MinimumCharge: item.MinimumCharge,
			},
			Rating:     item.Rating,
			TotalTrips: item.TotalTrips,
			Verified:   item.Verified,
			Insured:    item.Insured,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		for _, city := range item.ServiceCities {
			c.ServiceAreas = append(c.ServiceAreas, domain.ServiceArea{City: strings.TrimSpace(city)})
		}
		c.Normalize()
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("seed marketplace: carrier at index %d: %w", i+1, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func buildTrips(in []TripSeed, now time.Time) ([]*domain.Trip, error) {
	out := make([]*domain.Trip, 0, len(in))
	for i, item := range in {
		maxShipments := item.MaxShipments
		if maxShipments <= 0 {
			maxShipments = domain.DefaultMaxShipments
		}
		t := &domain.Trip{
			ID:            strings.TrimSpace(item.ID),
			CarrierID:     strings.TrimSpace(item.CarrierID),
			Origin:        item.Origin.location(),
			Destination:   item.Destination.location(),
			DepartureDate: item.DepartureDate.UTC(),
			TotalCapacity: domain.TripCapacity{Weight: item.CapacityWeight, Volume: item.CapacityVolume},
			ShipmentIDs:   []string{},
			MaxShipments:  maxShipments,
			Status:        domain.TripActive,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if t.ID == "" {
			return nil, fmt.Errorf("seed marketplace: trip at index %d: id cannot be empty", i+1)
		}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("seed marketplace: trip at index %d: %w", i+1, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func buildShipments(in []ShipmentSeed, now time.Time) ([]*domain.Shipment, error) {
	out := make([]*domain.Shipment, 0, len(in))
	for i, item := range in {
		urgency := domain.Urgency(strings.ToLower(strings.TrimSpace(item.Urgency)))
		if urgency == "" {
			urgency = domain.UrgencyNormal
		}
		s := &domain.Shipment{
			ID:       strings.TrimSpace(item.ID),
			SenderID: item.SenderID,
			Category: item.Category,
			Weight:   item.Weight,
			Dimensions: domain.Dimensions{
				Length: item.LengthCm,
				Width:  item.WidthCm,
				Height: item.HeightCm,
			},
			Pickup:            item.Pickup.location(),
			Delivery:          item.Delivery.location(),
			PickupDate:        item.PickupDate.UTC(),
			DeclaredValue:     item.DeclaredValue,
			InsuranceRequired: item.InsuranceRequired,
			Urgency:           urgency,
			Status:            domain.ShipmentPending,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if s.ID == "" {
			return nil, fmt.Errorf("seed marketplace: shipment at index %d: id cannot be empty", i+1)
		}
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("seed marketplace: shipment at index %d: %w", i+1, err)
		}
		out = append(out, s)
	}
	return out, nil
}
