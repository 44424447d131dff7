package handlers

import (
	"freight-match-service/internal/api/dto"
	"freight-match-service/internal/services"

	"github.com/gofiber/fiber/v2"
)

type CarrierHandler struct {
	Market *services.Marketplace
}

// Create registers a carrier. Type and tier are derived from the vehicle.
func (h *CarrierHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateCarrierRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}
	if req.VehicleType == "" {
		return writeError(c, fiber.StatusBadRequest, "vehicle_type is required")
	}

	carrier, err := h.Market.RegisterCarrier(c.UserContext(), toCarrier(req))
	if err != nil {
		return writeServiceError(c, err)
	}
	return writeJSON(c, fiber.StatusCreated, toCarrierResponse(carrier))
}

func (h *CarrierHandler) Get(c *fiber.Ctx) error {
	carrier, err := h.Market.GetCarrier(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return writeJSON(c, fiber.StatusOK, toCarrierResponse(carrier))
}
