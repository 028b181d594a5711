package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/vzahanych/weather-search-app/internal/config"
	"github.com/vzahanych/weather-search-app/pkg/telemetry"
	"go.uber.org/zap/zaptest"
)

const forecastBody = `{
  "latitude": 48.86, "longitude": 2.35, "timezone": "Europe/Paris",
  "current": {"time": "2024-05-06T14:00", "temperature_2m": 21.4, "relative_humidity_2m": 55, "wind_speed_10m": 3.2, "weather_code": 0},
  "daily": {
    "time": ["2024-05-06","2024-05-07","2024-05-08","2024-05-09","2024-05-10","2024-05-11","2024-05-12"],
    "weather_code": [0, 1, 2, 3, 61, 95, null],
    "temperature_2m_max": [22.1, 23.0, 19.5, 18.2, 17.0, 20.4, 21.0],
    "temperature_2m_min": [12.3, 13.1, 11.0, null, 9.5, 10.2, 11.1]
  }
}`

func testConfig(baseURL string) config.WeatherConfig {
	cfg := config.NewDefaultConfig().Weather
	cfg.GeocodingURL = baseURL
	cfg.ForecastURL = baseURL
	cfg.RateLimit = 1000
	cfg.RateBurst = 1000
	return cfg
}

// newFakeOpenMeteo serves body for every request and records the last query seen.
func newFakeOpenMeteo(t *testing.T, status int, body string) (*httptest.Server, *url.Values) {
	t.Helper()
	var last url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		last = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &last
}

func newServices(t *testing.T, baseURL string) (*GeocodingService, *OpenMeteoService) {
	t.Helper()
	cfg := testConfig(baseURL)
	tr := NewTransport(cfg)
	logger := zaptest.NewLogger(t)
	tele := &telemetry.Telemetry{}
	return NewGeocodingServiceWithConfig(cfg, tr, logger, tele),
		NewOpenMeteoServiceWithConfig(cfg, tr, logger, tele)
}

func background() context.Context {
	return context.Background()
}
