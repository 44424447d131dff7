package handlers

import (
	"freight-match-service/internal/api/dto"
	"freight-match-service/internal/domain"
	"freight-match-service/internal/services"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type QuoteHandler struct {
	Market *services.Marketplace
}

func parseUrgency(raw string) (domain.Urgency, bool) {
	u := domain.Urgency(strings.ToLower(strings.TrimSpace(raw)))
	switch u {
	case "", domain.UrgencyLow, domain.UrgencyNormal, domain.UrgencyHigh, domain.UrgencyUrgent:
		return u, true
	}
	return "", false
}

func parseSeason(raw string) (services.Season, bool) {
	s := services.Season(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case "", services.SeasonPeak, services.SeasonNormal, services.SeasonLow:
		return s, true
	}
	return "", false
}

// Quote prices a stored shipment on a carrier. A discount code or user level,
// when given, is applied to the total.
func (h *QuoteHandler) Quote(c *fiber.Ctx) error {
	var req dto.QuoteRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.ShipmentID) == "" || strings.TrimSpace(req.CarrierID) == "" {
		return writeError(c, fiber.StatusBadRequest, "shipment_id and carrier_id are required")
	}
	urgency, ok := parseUrgency(req.Urgency)
	if !ok {
		return writeError(c, fiber.StatusBadRequest, "urgency must be one of low, normal, high, urgent")
	}
	season, ok := parseSeason(req.Season)
	if !ok {
		return writeError(c, fiber.StatusBadRequest, "season must be one of peak, normal, low")
	}

	opts := services.QuoteOptions{
		IncludeInsurance: req.IncludeInsurance,
		ExcludeTax:       req.ExcludeTax,
		Urgency:          urgency,
		Season:           season,
	}
	price, err := h.Market.QuoteShipment(c.UserContext(), req.ShipmentID, req.CarrierID, opts)
	if err != nil {
		return writeServiceError(c, err)
	}

	res := dto.QuoteResponse{
		ShipmentID: req.ShipmentID,
		CarrierID:  req.CarrierID,
		Price:      toPriceResponse(price),
	}
	if req.DiscountCode != "" || req.UserLevel != "" {
		d := h.Market.Pricing().ApplyDiscount(price.Total, req.DiscountCode, req.UserLevel)
		res.Discount = &dto.DiscountResponse{
			Code:       strings.ToUpper(strings.TrimSpace(req.DiscountCode)),
			Amount:     d.Amount,
			FinalPrice: d.FinalPrice,
			Reason:     d.Reason,
			Percentage: d.Percentage,
		}
	}
	return writeJSON(c, fiber.StatusOK, res)
}

// Estimate prices a route for a weight without a stored shipment.
// The carrier type defaults to the first type able to carry the weight.
func (h *QuoteHandler) Estimate(c *fiber.Ctx) error {
	weight, err := queryFloat(c, "weight")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}
	if weight <= 0 {
		return writeError(c, fiber.StatusBadRequest, "weight must be positive")
	}
	from, to := strings.TrimSpace(c.Query("from")), strings.TrimSpace(c.Query("to"))
	if from == "" || to == "" {
		return writeError(c, fiber.StatusBadRequest, "from and to are required")
	}

	ct := domain.CarrierType(strings.ToLower(strings.TrimSpace(c.Query("carrier_type"))))
	if ct == "" {
		ct = domain.CompatibleCarrierTypes(domain.ClassifyByWeight(weight))[0]
	}
	if _, ok := domain.LookupCarrierType(ct); !ok {
		return writeError(c, fiber.StatusBadRequest, "unknown carrier_type")
	}

	price, km := h.Market.QuickEstimate(weight, domain.Location{City: from}, domain.Location{City: to}, ct)
	return writeJSON(c, fiber.StatusOK, dto.EstimateResponse{
		Price:       price,
		DistanceKm:  km,
		CarrierType: string(ct),
	})
}

// Classify reports the weight tier and the carrier types that may carry it.
func Classify(c *fiber.Ctx) error {
	weight, err := queryFloat(c, "weight")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}
	if weight <= 0 {
		return writeError(c, fiber.StatusBadRequest, "weight must be positive")
	}

	tier := domain.ClassifyByWeight(weight)
	types := domain.CompatibleCarrierTypes(tier)
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, string(t))
	}
	return writeJSON(c, fiber.StatusOK, dto.ClassificationResponse{
		Weight:                 weight,
		Tier:                   string(tier),
		CompatibleCarrierTypes: names,
	})
}
