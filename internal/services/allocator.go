package services

import (
	"cmp"
	"freight-match-service/internal/domain"
	"math"
	"slices"
)

// OptimizeLoad picks shipments for a trip's remaining capacity.
//
// Candidates are ranked by declared value per kg and loaded greedily in that
// order, skipping any that no longer fit, until the weight or the shipment
// count runs out. This is a deterministic planning heuristic, not an exact
// knapsack: a lighter, lower-density set can sometimes carry more value.
// Equal densities keep the candidates' order.
func OptimizeLoad(trip *domain.Trip, candidates []*domain.Shipment, geo *Geo) domain.LoadPlan {
	capacity := trip.AvailableWeight()
	slots := trip.OpenSlots()

	plan := domain.LoadPlan{
		TripID:            trip.ID,
		Selected:          []*domain.Shipment{},
		RemainingCapacity: capacity,
	}
	if capacity <= 0 || slots == 0 {
		return plan
	}

	pool := make([]*domain.Shipment, 0, len(candidates))
	for _, s := range candidates {
		if s.Weight <= 0 || s.Weight > capacity || trip.HasShipment(s.ID) {
			continue
		}
		if geo != nil && !geo.IsRouteCompatible(s, trip) {
			continue
		}
		pool = append(pool, s)
	}

	// Rank by value density so each kg of capacity goes to the most valuable cargo first.
	slices.SortStableFunc(pool, func(a, b *domain.Shipment) int {
		return cmp.Compare(b.DeclaredValue/b.Weight, a.DeclaredValue/a.Weight)
	})

	remaining := capacity
	for _, s := range pool {
		if len(plan.Selected) == slots {
			break
		}
		if s.Weight > remaining {
			continue
		}
		plan.Selected = append(plan.Selected, s)
		plan.TotalWeight += s.Weight
		remaining -= s.Weight
	}

	plan.RemainingCapacity = remaining
	plan.UtilizationPct = math.Round(plan.TotalWeight/capacity*1000) / 10
	return plan
}
