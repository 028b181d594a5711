package handlers

import "github.com/vzahanych/weather-search-app/internal/presenter"

// WeatherRequest selects the unit temperatures are rendered in.
type WeatherRequest struct {
	Unit string `form:"unit" json:"unit" validate:"omitempty,display_unit"`
}

// SearchRequest starts a new search for a place.
type SearchRequest struct {
	Query string `json:"query" validate:"required,place_query,max=200"`
}

// WeatherResponse is the rendered view plus the display theme.
type WeatherResponse struct {
	presenter.Presentation
	Theme string `json:"theme"`
}

type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	Timestamp string `json:"timestamp,omitempty"`
}
