package handlers

import (
	"freight-match-service/internal/api/dto"
	"freight-match-service/internal/domain"
	"freight-match-service/internal/services"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const defaultSimilarTrips = 5

type TripHandler struct {
	Market *services.Marketplace
}

// Create publishes a carrier's trip. A missing arrival date is estimated from the route.
func (h *TripHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTripRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.CarrierID) == "" {
		return writeError(c, fiber.StatusBadRequest, "carrier_id is required")
	}
	if req.DepartureDate.IsZero() {
		return writeError(c, fiber.StatusBadRequest, "departure_date is required")
	}
	if req.MaxShipments < 0 {
		return writeError(c, fiber.StatusBadRequest, "max_shipments must not be negative")
	}

	t, err := h.Market.CreateTrip(c.UserContext(), toTrip(req))
	if err != nil {
		return writeServiceError(c, err)
	}
	return writeJSON(c, fiber.StatusCreated, toTripResponse(t))
}

// Search lists active trips by route, departure day and free weight.
func (h *TripHandler) Search(c *fiber.Ctx) error {
	q := services.TripSearch{
		FromCity: strings.TrimSpace(c.Query("from")),
		ToCity:   strings.TrimSpace(c.Query("to")),
	}
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		d, err := parseDate(raw)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "invalid date: use YYYY-MM-DD")
		}
		q.DepartureDate = d
	}
	var err error
	if q.MinSpace, err = queryFloat(c, "min_space"); err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}

	results, err := h.Market.SearchTrips(c.UserContext(), q)
	if err != nil {
		return writeServiceError(c, err)
	}

	res := dto.SearchTripsResponse{Results: make([]dto.TripSearchResultResponse, 0, len(results))}
	for _, r := range results {
		res.Results = append(res.Results, dto.TripSearchResultResponse{
			Trip:           toTripResponse(r.Trip),
			DistanceKm:     r.DistanceKm,
			UtilizationPct: r.UtilizationPct,
		})
	}
	return writeJSON(c, fiber.StatusOK, res)
}

func (h *TripHandler) Get(c *fiber.Ctx) error {
	t, err := h.Market.GetTrip(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return writeJSON(c, fiber.StatusOK, toTripResponse(t))
}

// Suggestions lists pending shipments the trip could carry, most urgent first.
func (h *TripHandler) Suggestions(c *fiber.Ctx) error {
	minPrice, err := queryFloat(c, "min_price")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}
	f := services.SuggestFilters{MinPrice: minPrice, Categories: splitList(c.Query("categories"))}

	id := c.Params("id")
	suggestions, err := h.Market.SuggestShipments(c.UserContext(), id, f)
	if err != nil {
		return writeServiceError(c, err)
	}

	res := dto.ListSuggestionsResponse{TripID: id, Suggestions: make([]dto.SuggestionResponse, 0, len(suggestions))}
	for _, s := range suggestions {
		res.Suggestions = append(res.Suggestions, dto.SuggestionResponse{
			Shipment:   toShipmentResponse(s.Shipment),
			Price:      s.Price,
			Profit:     s.Profit,
			DistanceKm: s.DistanceKm,
			SpaceUsage: s.SpaceUsage,
			Priority:   s.Priority,
		})
	}
	return writeJSON(c, fiber.StatusOK, res)
}

// Optimize returns the greedy load plan for the trip without booking anything.
func (h *TripHandler) Optimize(c *fiber.Ctx) error {
	plan, err := h.Market.OptimizeTrip(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeServiceError(c, err)
	}

	ids := make([]string, 0, len(plan.Selected))
	for _, s := range plan.Selected {
		ids = append(ids, s.ID)
	}
	return writeJSON(c, fiber.StatusOK, dto.LoadPlanResponse{
		TripID:            plan.TripID,
		ShipmentIDs:       ids,
		TotalWeight:       plan.TotalWeight,
		UtilizationPct:    plan.UtilizationPct,
		RemainingCapacity: plan.RemainingCapacity,
	})
}

func (h *TripHandler) Stats(c *fiber.Ctx) error {
	st, err := h.Market.TripStats(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return writeJSON(c, fiber.StatusOK, dto.TripStatsResponse{
		TripID:            st.TripID,
		TotalCapacity:     st.TotalCapacity,
		UsedSpace:         st.UsedSpace,
		AvailableSpace:    st.AvailableSpace,
		UtilizationPct:    st.UtilizationPct,
		ShipmentsCount:    st.ShipmentsCount,
		MaxShipments:      st.MaxShipments,
		ConfirmedBookings: st.ConfirmedBookings,
		Status:            string(st.Status),
	})
}

func (h *TripHandler) Bookings(c *fiber.Ctx) error {
	bookings, err := h.Market.TripBookings(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeServiceError(c, err)
	}
	res := dto.ListBookingsResponse{Bookings: make([]dto.BookingResponse, 0, len(bookings))}
	for _, b := range bookings {
		res.Bookings = append(res.Bookings, toBookingResponse(b))
	}
	return writeJSON(c, fiber.StatusOK, res)
}

func (h *TripHandler) Similar(c *fiber.Ctx) error {
	limit, err := queryInt(c, "limit", defaultSimilarTrips)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}
	trips, err := h.Market.SimilarTrips(c.UserContext(), c.Params("id"), limit)
	if err != nil {
		return writeServiceError(c, err)
	}
	return writeJSON(c, fiber.StatusOK, dto.ListTripsResponse{Trips: toTripResponses(trips)})
}

func (h *TripHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.StatusRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}
	status := domain.TripStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if status == "" {
		return writeError(c, fiber.StatusBadRequest, "status is required")
	}

	t, err := h.Market.UpdateTripStatus(c.UserContext(), c.Params("id"), status)
	if err != nil {
		return writeServiceError(c, err)
	}
	return writeJSON(c, fiber.StatusOK, toTripResponse(t))
}
