package dto

type LocationDTO struct {
	City    string   `json:"city"`
	Region  string   `json:"region,omitempty"`
	Address string   `json:"address,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Lon     *float64 `json:"lon,omitempty"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}
