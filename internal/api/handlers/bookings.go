package handlers

import (
	"freight-match-service/internal/api/dto"
	"freight-match-service/internal/services"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type BookingHandler struct {
	Market *services.Marketplace
}

// Create accepts a match: it books the shipment on the trip and reserves its weight.
func (h *BookingHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateBookingRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}
	shipmentID, tripID := strings.TrimSpace(req.ShipmentID), strings.TrimSpace(req.TripID)
	if shipmentID == "" || tripID == "" {
		return writeError(c, fiber.StatusBadRequest, "shipment_id and trip_id are required")
	}

	b, err := h.Market.AcceptMatch(c.UserContext(), shipmentID, tripID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return writeJSON(c, fiber.StatusCreated, toBookingResponse(b))
}

func (h *BookingHandler) Get(c *fiber.Ctx) error {
	b, err := h.Market.GetBooking(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return writeJSON(c, fiber.StatusOK, toBookingResponse(b))
}

// Cancel releases the booking's capacity on its trip.
func (h *BookingHandler) Cancel(c *fiber.Ctx) error {
	b, err := h.Market.CancelBooking(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return writeJSON(c, fiber.StatusOK, toBookingResponse(b))
}

// Earnings reports what the carrier keeps from the booking after commission
// and the deductions passed as fuel, toll and other.
func (h *BookingHandler) Earnings(c *fiber.Ctx) error {
	var d services.Deductions
	var err error
	if d.Fuel, err = queryFloat(c, "fuel"); err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}
	if d.Toll, err = queryFloat(c, "toll"); err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}
	if d.Other, err = queryFloat(c, "other"); err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}

	b, err := h.Market.GetBooking(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeServiceError(c, err)
	}

	net := h.Market.Pricing().CarrierNetEarnings(b.Price, d)
	return writeJSON(c, fiber.StatusOK, dto.EarningsResponse{
		BookingID:    b.ID,
		Total:        net.Total,
		Commission:   net.Commission,
		Fuel:         net.Fuel,
		Toll:         net.Toll,
		Other:        net.Other,
		Net:          net.Net,
		ProfitMargin: net.ProfitMargin,
	})
}
