package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vzahanych/weather-search-app/internal/config"
	"github.com/vzahanych/weather-search-app/internal/weather"
	"github.com/vzahanych/weather-search-app/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	currentFields = "temperature_2m,relative_humidity_2m,wind_speed_10m,weather_code"
	dailyFields   = "weather_code,temperature_2m_max,temperature_2m_min"
	dateLayout    = "2006-01-02"
)

type OpenMeteoService struct {
	baseURL      string
	forecastDays int
	transport    *Transport
	logger       *zap.Logger
	tele         *telemetry.Telemetry
}

type forecastResponse struct {
	Timezone string           `json:"timezone"`
	Current  *forecastCurrent `json:"current" validate:"required"`
	Daily    *forecastDaily   `json:"daily" validate:"required"`
}

type forecastCurrent struct {
	Temperature *float64 `json:"temperature_2m"`
	Humidity    *float64 `json:"relative_humidity_2m"`
	WindSpeed   *float64 `json:"wind_speed_10m"`
	WeatherCode *int     `json:"weather_code" validate:"required"`
}

type forecastDaily struct {
	Time           []string   `json:"time" validate:"required,min=1,dive,datetime=2006-01-02"`
	WeatherCode    []*int     `json:"weather_code" validate:"required"`
	TemperatureMax []*float64 `json:"temperature_2m_max" validate:"required"`
	TemperatureMin []*float64 `json:"temperature_2m_min" validate:"required"`
}

func NewOpenMeteoServiceWithConfig(cfg config.WeatherConfig, transport *Transport, logger *zap.Logger, tele *telemetry.Telemetry) *OpenMeteoService {
	return &OpenMeteoService{
		baseURL:      strings.TrimRight(cfg.ForecastURL, "/"),
		forecastDays: cfg.ForecastDays,
		transport:    transport,
		logger:       logger,
		tele:         tele,
	}
}

func (s *OpenMeteoService) Name() string {
	return "open-meteo-forecast"
}

// Fetch requests current conditions and the daily series in the location's own time zone.
func (s *OpenMeteoService) Fetch(ctx context.Context, lat, lon float64) (weather.RawForecast, error) {
	tracer := s.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "open-meteo.Fetch")
	defer span.End()

	span.SetAttributes(
		attribute.Float64("lat", lat),
		attribute.Float64("lon", lon),
		attribute.String("service", s.Name()),
	)

	u, err := url.Parse(fmt.Sprintf("%s/forecast", s.baseURL))
	if err != nil {
		return weather.RawForecast{}, err
	}

	q := u.Query()
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("current", currentFields)
	q.Set("daily", dailyFields)
	q.Set("wind_speed_unit", "ms")
	q.Set("timezone", "auto")
	q.Set("forecast_days", strconv.Itoa(s.forecastDays))
	u.RawQuery = q.Encode()

	s.logger.Debug("Fetching forecast",
		zap.Float64("lat", lat),
		zap.Float64("lon", lon))

	var result forecastResponse
	if err := s.transport.getJSON(ctx, s.Name(), u, &result); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return weather.RawForecast{}, err
	}

	forecast, err := result.toRaw()
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return weather.RawForecast{}, err
	}

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("days_fetched", len(forecast.Daily)),
	)

	s.logger.Debug("Forecast fetched",
		zap.String("timezone", forecast.Timezone),
		zap.Int("days_fetched", len(forecast.Daily)))

	return forecast, nil
}

func (r *forecastResponse) toRaw() (weather.RawForecast, error) {
	d := r.Daily
	n := len(d.Time)
	if len(d.WeatherCode) != n || len(d.TemperatureMax) != n || len(d.TemperatureMin) != n {
		return weather.RawForecast{}, fmt.Errorf("%w: daily series lengths differ", ErrMalformedResponse)
	}

	daily := make([]weather.DailyEntry, 0, n)
	for i, day := range d.Time {
		date, err := time.Parse(dateLayout, day)
		if err != nil {
			return weather.RawForecast{}, fmt.Errorf("%w: daily time %q: %v", ErrMalformedResponse, day, err)
		}
		daily = append(daily, weather.DailyEntry{
			Date:        date,
			WeatherCode: d.WeatherCode[i],
			TempMinC:    d.TemperatureMin[i],
			TempMaxC:    d.TemperatureMax[i],
		})
	}

	return weather.RawForecast{
		Timezone: r.Timezone,
		Current: weather.CurrentConditions{
			TemperatureC: r.Current.Temperature,
			HumidityPct:  r.Current.Humidity,
			WindSpeedMps: r.Current.WindSpeed,
			WeatherCode:  *r.Current.WeatherCode,
		},
		Daily: daily,
	}, nil
}
