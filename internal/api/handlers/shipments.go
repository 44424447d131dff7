package handlers

import (
	"freight-match-service/internal/api/dto"
	"freight-match-service/internal/domain"
	"freight-match-service/internal/services"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type ShipmentHandler struct {
	Market *services.Marketplace
}

// Create registers a new shipment. It starts pending; coordinates are looked
// up when a geocoder is configured.
func (h *ShipmentHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateShipmentRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}

	s, err := h.Market.RegisterShipment(c.UserContext(), toShipment(req))
	if err != nil {
		return writeServiceError(c, err)
	}
	return writeJSON(c, fiber.StatusCreated, toShipmentResponse(s))
}

func (h *ShipmentHandler) Get(c *fiber.Ctx) error {
	s, err := h.Market.GetShipment(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return writeJSON(c, fiber.StatusOK, toShipmentResponse(s))
}

func matchFilters(c *fiber.Ctx) (services.MatchFilters, error) {
	var f services.MatchFilters
	var err error
	if f.MinRating, err = queryFloat(c, "min_rating"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = queryFloat(c, "max_price"); err != nil {
		return f, err
	}
	if f.VerifiedOnly, err = queryBool(c, "verified_only"); err != nil {
		return f, err
	}
	return f, nil
}

// Matches lists the carriers able to take the shipment, best score first.
func (h *ShipmentHandler) Matches(c *fiber.Ctx) error {
	f, err := matchFilters(c)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}

	id := c.Params("id")
	matches, err := h.Market.MatchShipment(c.UserContext(), id, f)
	if err != nil {
		return writeServiceError(c, err)
	}

	res := dto.ListMatchesResponse{ShipmentID: id, Matches: make([]dto.CarrierMatchResponse, 0, len(matches))}
	for _, m := range matches {
		tripIDs := make([]string, 0, len(m.Trips))
		for _, t := range m.Trips {
			tripIDs = append(tripIDs, t.ID)
		}
		res.Matches = append(res.Matches, dto.CarrierMatchResponse{
			Carrier:       toCarrierResponse(m.Carrier),
			Score:         m.Score,
			Price:         toPriceResponse(m.Price),
			DistanceKm:    m.DistanceKm,
			DurationHours: m.DurationHours,
			TripIDs:       tripIDs,
		})
	}
	return writeJSON(c, fiber.StatusOK, res)
}

// Trips lists bookable trips for the shipment, one option per trip.
func (h *ShipmentHandler) Trips(c *fiber.Ctx) error {
	f, err := matchFilters(c)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}

	id := c.Params("id")
	options, err := h.Market.AvailableTrips(c.UserContext(), id, f)
	if err != nil {
		return writeServiceError(c, err)
	}

	res := dto.ListTripOptionsResponse{ShipmentID: id, Trips: make([]dto.TripOptionResponse, 0, len(options))}
	for _, o := range options {
		res.Trips = append(res.Trips, dto.TripOptionResponse{
			Trip:          toTripResponse(o.Trip),
			CarrierID:     o.Carrier.ID,
			Score:         o.Score,
			Price:         toPriceResponse(o.Price),
			DistanceKm:    o.DistanceKm,
			DurationHours: o.DurationHours,
		})
	}
	return writeJSON(c, fiber.StatusOK, res)
}

// Prices compares the shipment's price across every carrier that can take it.
func (h *ShipmentHandler) Prices(c *fiber.Ctx) error {
	id := c.Params("id")
	prices, err := h.Market.ComparePrices(c.UserContext(), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return writeJSON(c, fiber.StatusOK, dto.ComparePricesResponse{
		ShipmentID: id,
		Prices:     toPriceComparisons(prices),
	})
}

// UpdateStatus moves the shipment along its lifecycle.
func (h *ShipmentHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.StatusRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}
	status := domain.ShipmentStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if status == "" {
		return writeError(c, fiber.StatusBadRequest, "status is required")
	}

	s, err := h.Market.AdvanceShipment(c.UserContext(), c.Params("id"), status)
	if err != nil {
		return writeServiceError(c, err)
	}
	return writeJSON(c, fiber.StatusOK, toShipmentResponse(s))
}
