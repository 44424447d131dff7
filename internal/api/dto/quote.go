package dto

type QuoteRequest struct {
	ShipmentID       string `json:"shipment_id"`
	CarrierID        string `json:"carrier_id"`
	IncludeInsurance *bool  `json:"include_insurance"`
	ExcludeTax       bool   `json:"exclude_tax"`
	Urgency          string `json:"urgency"`
	Season           string `json:"season"`
	DiscountCode     string `json:"discount_code"`
	UserLevel        string `json:"user_level"`
}

type PriceLineDTO struct {
	Label   string  `json:"label"`
	Amount  float64 `json:"amount"`
	IsTotal bool    `json:"is_total,omitempty"`
}

type PriceResponse struct {
	Transport          float64        `json:"transport"`
	VolumeComponent    float64        `json:"volume_component"`
	CityComponent      float64        `json:"city_component"`
	BasePrice          float64        `json:"base_price"`
	UrgencyMultiplier  float64        `json:"urgency_multiplier"`
	SeasonalMultiplier float64        `json:"seasonal_multiplier"`
	AdditionalFees     float64        `json:"additional_fees"`
	InsuranceCost      float64        `json:"insurance_cost"`
	TaxAmount          float64        `json:"tax_amount"`
	Total              float64        `json:"total"`
	CarrierEarnings    float64        `json:"carrier_earnings"`
	PlatformCommission float64        `json:"platform_commission"`
	Lines              []PriceLineDTO `json:"lines"`
}

type DiscountResponse struct {
	Code       string  `json:"code,omitempty"`
	Amount     float64 `json:"amount"`
	FinalPrice float64 `json:"final_price"`
	Reason     string  `json:"reason,omitempty"`
	Percentage float64 `json:"percentage"`
}

type QuoteResponse struct {
	ShipmentID string            `json:"shipment_id"`
	CarrierID  string            `json:"carrier_id"`
	Price      PriceResponse     `json:"price"`
	Discount   *DiscountResponse `json:"discount,omitempty"`
}

type EstimateResponse struct {
	Price       float64 `json:"price"`
	DistanceKm  float64 `json:"distance_km"`
	CarrierType string  `json:"carrier_type"`
}

type PriceComparisonResponse struct {
	CarrierID       string  `json:"carrier_id"`
	CarrierType     string  `json:"carrier_type"`
	Total           float64 `json:"total"`
	CarrierEarnings float64 `json:"carrier_earnings"`
	DurationHours   float64 `json:"duration_hours"`
	PricePerKm      float64 `json:"price_per_km"`
}

type ComparePricesResponse struct {
	ShipmentID string                    `json:"shipment_id"`
	Prices     []PriceComparisonResponse `json:"prices"`
}

type ClassificationResponse struct {
	Weight                 float64  `json:"weight"`
	Tier                   string   `json:"tier"`
	CompatibleCarrierTypes []string `json:"compatible_carrier_types"`
}
