package services

import (
	"freight-match-service/internal/domain"
	"math"
	"slices"
	"strings"
)

// Season selects the seasonal multiplier.
type Season string

const (
	SeasonPeak   Season = "peak"
	SeasonNormal Season = "normal"
	SeasonLow    Season = "low"
)

// PricingConfig holds every constant of the pricing formula.
type PricingConfig struct {
	UrgencyMultipliers  map[domain.Urgency]float64
	SeasonalMultipliers map[Season]float64
	CityBasePrices      map[string]float64
	DefaultCityPrice    float64
	VolumeRate          float64 // per m3
	WeightStepKg        float64
	WeightStepShare     float64 // share of the base rate charged per weight step
	FragileFee          float64
	SpecialCareFee      float64
	RefrigerationFee    float64
	ImagesFee           float64
	InsuranceRate       float64
	MinInsurance        float64
	TaxRate             float64
	PlatformCommission  float64
	RoundTo             float64
}

// DefaultPricingConfig returns the canonical pricing table.
func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		UrgencyMultipliers: map[domain.Urgency]float64{
			domain.UrgencyUrgent: 2.0,
			domain.UrgencyHigh:   1.5,
			domain.UrgencyNormal: 1.0,
			domain.UrgencyLow:    0.9,
		},
		SeasonalMultipliers: map[Season]float64{
			SeasonPeak:   1.3,
			SeasonNormal: 1.0,
			SeasonLow:    0.8,
		},
		CityBasePrices: map[string]float64{
			"riyadh":   50,
			"jeddah":   50,
			"mecca":    45,
			"medina":   45,
			"dammam":   40,
			"khobar":   40,
			"taif":     35,
			"tabuk":    35,
			"buraidah": 30,
			"abha":     30,
		},
		DefaultCityPrice:   30,
		VolumeRate:         50,
		WeightStepKg:       10,
		WeightStepShare:    0.05,
		FragileFee:         20,
		SpecialCareFee:     30,
		RefrigerationFee:   50,
		ImagesFee:          10,
		InsuranceRate:      0.05,
		MinInsurance:       20,
		TaxRate:            0.15,
		PlatformCommission: 0.20,
		RoundTo:            5,
	}
}

// QuoteOptions tune a single quote. Zero values mean: insurance as the shipment
// requires, tax included, the shipment's urgency and the engine's default season.
type QuoteOptions struct {
	IncludeInsurance *bool
	ExcludeTax       bool
	Urgency          domain.Urgency
	Season           Season
}

// PricingEngine prices shipment/carrier pairs. It holds no mutable state.
type PricingEngine struct {
	cfg    PricingConfig
	season Season
}

func NewPricingEngine(cfg PricingConfig, season Season) *PricingEngine {
	if season == "" {
		season = SeasonNormal
	}
	return &PricingEngine{cfg: cfg, season: season}
}

// Config returns the engine's constants.
func (e *PricingEngine) Config() PricingConfig { return e.cfg }

// transport is the carrier's own charge: base rate, distance and weight.
// Quote and QuickEstimate share it so both paths agree on equivalent inputs.
func (e *PricingEngine) transport(rates domain.PricingParams, distanceKm, weight float64) float64 {
	weightSteps := weight / e.cfg.WeightStepKg
	weightPrice := weightSteps*rates.BaseRate*e.cfg.WeightStepShare + weight*rates.WeightRate
	return rates.BaseRate + distanceKm*rates.PricePerKm + weightPrice
}

func (e *PricingEngine) cityPrice(city string) float64 {
	if p, ok := e.cfg.CityBasePrices[strings.ToLower(strings.TrimSpace(city))]; ok {
		return p
	}
	return e.cfg.DefaultCityPrice
}

func (e *PricingEngine) additionalFees(s *domain.Shipment) float64 {
	cat := s.CategoryInfo()
	fees := 0.0
	if cat.Fragile {
		fees += e.cfg.FragileFee
	}
	if cat.RequiresSpecialCare {
		fees += e.cfg.SpecialCareFee
	}
	if cat.RequiresRefrigeration {
		fees += e.cfg.RefrigerationFee
	}
	if len(s.Images) > 0 {
		fees += e.cfg.ImagesFee
	}
	return fees
}

// Insurance is a share of the declared value with a floor; nothing is charged
// for shipments without a declared value.
func (e *PricingEngine) Insurance(value float64) float64 {
	if value <= 0 {
		return 0
	}
	return math.Max(value*e.cfg.InsuranceRate, e.cfg.MinInsurance)
}

// roundUp rounds up to the next multiple of RoundTo. Float noise below a
// micro-unit is dropped first so 100.0000000001 stays 100.
func (e *PricingEngine) roundUp(v float64) float64 {
	step := e.cfg.RoundTo
	if step <= 0 {
		return v
	}
	v = math.Round(v*1e6) / 1e6
	return math.Ceil(v/step) * step
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func (e *PricingEngine) urgencyMultiplier(u domain.Urgency) float64 {
	if m, ok := e.cfg.UrgencyMultipliers[u]; ok {
		return m
	}
	return e.cfg.UrgencyMultipliers[domain.UrgencyNormal]
}

func (e *PricingEngine) seasonalMultiplier(s Season) float64 {
	if m, ok := e.cfg.SeasonalMultipliers[s]; ok {
		return m
	}
	return 1
}

// Quote prices a shipment on a carrier over distanceKm.
//
// The steps are applied in a fixed order: base price, urgency, season,
// category fees, insurance, tax, then rounding up to a multiple of 5.
// Tax is computed on the subtotal that already includes insurance.
func (e *PricingEngine) Quote(s *domain.Shipment, c *domain.Carrier, distanceKm float64, opts QuoteOptions) domain.PriceBreakdown {
	rates := c.Rates()

	transport := e.transport(rates, distanceKm, s.Weight)
	volume := s.Volume() * e.cfg.VolumeRate
	city := (e.cityPrice(s.Pickup.City) + e.cityPrice(s.Delivery.City)) / 2

	base := transport + volume + city
	if rates.MinimumCharge > base {
		base = rates.MinimumCharge
	}

	urgency := opts.Urgency
	if urgency == "" {
		urgency = s.Urgency
	}
	season := opts.Season
	if season == "" {
		season = e.season
	}

	um := e.urgencyMultiplier(urgency)
	sm := e.seasonalMultiplier(season)
	fees := e.additionalFees(s)

	total := base*um*sm + fees

	includeInsurance := s.InsuranceRequired
	if opts.IncludeInsurance != nil {
		includeInsurance = *opts.IncludeInsurance
	}
	insurance := 0.0
	if includeInsurance {
		insurance = e.Insurance(s.DeclaredValue)
		total += insurance
	}

	tax := 0.0
	if !opts.ExcludeTax {
		tax = total * e.cfg.TaxRate
		total += tax
	}

	total = e.roundUp(total)

	return domain.PriceBreakdown{
		Transport:          transport,
		VolumeComponent:    volume,
		CityComponent:      city,
		BasePrice:          base,
		UrgencyMultiplier:  um,
		SeasonalMultiplier: sm,
		AdditionalFees:     fees,
		InsuranceCost:      insurance,
		TaxAmount:          tax,
		Total:              total,
		CarrierEarnings:    round2(total * (1 - e.cfg.PlatformCommission)),
		PlatformCommission: round2(total * e.cfg.PlatformCommission),
		Lines: []domain.PriceLine{
			{Label: "base price", Amount: round2(base)},
			{Label: "additional fees", Amount: round2(fees)},
			{Label: "insurance", Amount: round2(insurance)},
			{Label: "tax", Amount: round2(tax)},
			{Label: "total", Amount: total, IsTotal: true},
		},
	}
}

// QuickEstimate is the reduced-precision price used when only weight, distance
// and a carrier type are known: transport charge plus tax, rounded up to 5.
// Unknown carrier types estimate to 0.
func (e *PricingEngine) QuickEstimate(weight, distanceKm float64, ct domain.CarrierType) float64 {
	spec, ok := domain.LookupCarrierType(ct)
	if !ok {
		return 0
	}
	rates := domain.PricingParams{BaseRate: spec.BasePrice, PricePerKm: spec.PricePerKm}
	return e.roundUp(e.transport(rates, distanceKm, weight) * (1 + e.cfg.TaxRate))
}

// PriceComparison is one carrier's row in ComparePrices.
type PriceComparison struct {
	CarrierID       string
	CarrierType     domain.CarrierType
	Total           float64
	CarrierEarnings float64
	DurationHours   float64
	PricePerKm      float64
	Breakdown       domain.PriceBreakdown
}

// ComparePrices quotes the shipment on each carrier, cheapest first.
// Equal totals keep the input order.
func (e *PricingEngine) ComparePrices(s *domain.Shipment, carriers []*domain.Carrier, distanceKm float64) []PriceComparison {
	out := make([]PriceComparison, 0, len(carriers))
	for _, c := range carriers {
		q := e.Quote(s, c, distanceKm, QuoteOptions{})
		perKm := 0.0
		if distanceKm > 0 {
			perKm = round2(q.Total / distanceKm)
		}
		out = append(out, PriceComparison{
			CarrierID:       c.ID,
			CarrierType:     c.Type,
			Total:           q.Total,
			CarrierEarnings: q.CarrierEarnings,
			DurationHours:   EstimateDurationHours(distanceKm, c.Type),
			PricePerKm:      perKm,
			Breakdown:       q,
		})
	}

	slices.SortStableFunc(out, func(a, b PriceComparison) int {
		switch {
		case a.Total < b.Total:
			return -1
		case a.Total > b.Total:
			return 1
		}
		return 0
	})
	return out
}

var userLevelDiscounts = map[string]float64{
	"new":     0.10,
	"regular": 0.05,
	"premium": 0.15,
	"vip":     0.20,
}

type coupon struct {
	rate float64
	max  float64
}

var coupons = map[string]coupon{
	"WELCOME10": {rate: 0.10, max: 50},
	"SAVE20":    {rate: 0.20, max: 100},
	"VIP30":     {rate: 0.30, max: 200},
}

// Discount is the result of ApplyDiscount.
type Discount struct {
	Amount     float64
	FinalPrice float64
	Reason     string
	Percentage float64
}

// ApplyDiscount picks the larger of the user-level discount and a capped coupon.
func (e *PricingEngine) ApplyDiscount(total float64, code, userLevel string) Discount {
	amount, reason := 0.0, ""

	if rate, ok := userLevelDiscounts[strings.ToLower(userLevel)]; ok {
		amount = total * rate
		reason = "user level " + strings.ToLower(userLevel)
	}

	if c, ok := coupons[strings.ToUpper(strings.TrimSpace(code))]; ok {
		if d := math.Min(total*c.rate, c.max); d > amount {
			amount = d
			reason = "coupon " + strings.ToUpper(strings.TrimSpace(code))
		}
	}

	pct := 0.0
	if total > 0 {
		pct = math.Round(amount/total*1000) / 10
	}
	return Discount{
		Amount:     math.Round(amount),
		FinalPrice: math.Round(total - amount),
		Reason:     reason,
		Percentage: pct,
	}
}

// Deductions reduce a carrier's take from a price.
type Deductions struct {
	Fuel  float64
	Toll  float64
	Other float64
}

// NetEarnings is the carrier's take after commission and costs.
type NetEarnings struct {
	Total        float64
	Commission   float64
	Fuel         float64
	Toll         float64
	Other        float64
	Net          float64
	ProfitMargin float64 // percent of total
}

// CarrierNetEarnings subtracts the platform commission and trip costs from total.
func (e *PricingEngine) CarrierNetEarnings(total float64, d Deductions) NetEarnings {
	commission := total * e.cfg.PlatformCommission
	net := total - commission - d.Fuel - d.Toll - d.Other
	margin := 0.0
	if total > 0 {
		margin = math.Round(net/total*1000) / 10
	}
	return NetEarnings{
		Total:        round2(total),
		Commission:   round2(commission),
		Fuel:         round2(d.Fuel),
		Toll:         round2(d.Toll),
		Other:        round2(d.Other),
		Net:          round2(net),
		ProfitMargin: margin,
	}
}
