package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/vzahanych/weather-search-app/internal/config"
	"github.com/vzahanych/weather-search-app/internal/weather"
	"github.com/vzahanych/weather-search-app/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type GeocodingService struct {
	baseURL   string
	language  string
	transport *Transport
	logger    *zap.Logger
	tele      *telemetry.Telemetry
}

type geocodingResponse struct {
	Results []geocodingResult `json:"results" validate:"dive"`
}

type geocodingResult struct {
	Name      string   `json:"name" validate:"required"`
	Admin1    string   `json:"admin1"`
	Country   string   `json:"country"`
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
}

func NewGeocodingServiceWithConfig(cfg config.WeatherConfig, transport *Transport, logger *zap.Logger, tele *telemetry.Telemetry) *GeocodingService {
	return &GeocodingService{
		baseURL:   strings.TrimRight(cfg.GeocodingURL, "/"),
		language:  cfg.Language,
		transport: transport,
		logger:    logger,
		tele:      tele,
	}
}

func (s *GeocodingService) Name() string {
	return "open-meteo-geocoding"
}

// Resolve returns the first match for query. No disambiguation is done; the
// upstream ranking decides.
func (s *GeocodingService) Resolve(ctx context.Context, query string) (weather.ResolvedPlace, error) {
	tracer := s.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "geocoding.Resolve")
	defer span.End()

	query = strings.TrimSpace(query)
	span.SetAttributes(
		attribute.String("query", query),
		attribute.String("service", s.Name()),
	)

	if query == "" {
		return weather.ResolvedPlace{}, ErrEmptyQuery
	}

	u, err := url.Parse(fmt.Sprintf("%s/search", s.baseURL))
	if err != nil {
		return weather.ResolvedPlace{}, err
	}

	q := u.Query()
	q.Set("name", query)
	q.Set("count", "1")
	q.Set("language", s.language)
	q.Set("format", "json")
	u.RawQuery = q.Encode()

	s.logger.Debug("Resolving place", zap.String("query", query))

	var result geocodingResponse
	if err := s.transport.getJSON(ctx, s.Name(), u, &result); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return weather.ResolvedPlace{}, err
	}

	if len(result.Results) == 0 {
		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Bool("found", false),
		)
		return weather.ResolvedPlace{}, ErrPlaceNotFound
	}

	first := result.Results[0]
	place := weather.ResolvedPlace{
		Name:        first.Name,
		AdminRegion: first.Admin1,
		Country:     first.Country,
		Latitude:    *first.Latitude,
		Longitude:   *first.Longitude,
	}

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Bool("found", true),
		attribute.Float64("lat", place.Latitude),
		attribute.Float64("lon", place.Longitude),
	)

	s.logger.Debug("Place resolved",
		zap.String("query", query),
		zap.String("place", place.DisplayLabel()),
		zap.Float64("lat", place.Latitude),
		zap.Float64("lon", place.Longitude))

	return place, nil
}
