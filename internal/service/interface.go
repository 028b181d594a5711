package service

import (
	"context"

	"github.com/vzahanych/weather-search-app/internal/weather"
)

// LocationResolver turns a free-text place query into its first geocoding match.
// It returns ErrPlaceNotFound when the upstream has no match.
type LocationResolver interface {
	Resolve(ctx context.Context, query string) (weather.ResolvedPlace, error)
	Name() string
}

// ForecastFetcher returns current and daily values for a coordinate, uninterpreted.
type ForecastFetcher interface {
	Fetch(ctx context.Context, lat, lon float64) (weather.RawForecast, error)
	Name() string
}
