package config

import (
	"sync/atomic"
)

var configValue atomic.Value

func GetConfig() *Config {
	return configValue.Load().(*Config)
}

func SetConfig(cfg *Config) {
	configValue.Store(cfg)
}

// Config is loaded once at startup and handed to the display layer by reference.
// The weather core only ever sees WeatherConfig.
type Config struct {
	Version     string          `mapstructure:"version"`
	Environment string          `mapstructure:"environment"`
	Server      ServerConfig    `mapstructure:"server"`
	Weather     WeatherConfig   `mapstructure:"weather"`
	Display     DisplayConfig   `mapstructure:"display"`
	Logging     LoggingConfig   `mapstructure:"logging"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port" validate:"min=1,max=65535"`
	Host         string `mapstructure:"host"`
	ReadTimeout  int    `mapstructure:"read_timeout" validate:"min=0"`
	WriteTimeout int    `mapstructure:"write_timeout" validate:"min=0"`
	IdleTimeout  int    `mapstructure:"idle_timeout" validate:"min=0"`
}

type WeatherConfig struct {
	GeocodingURL string  `mapstructure:"geocoding_url" validate:"required,url"`
	ForecastURL  string  `mapstructure:"forecast_url" validate:"required,url"`
	Language     string  `mapstructure:"language" validate:"required"`
	ForecastDays int     `mapstructure:"forecast_days" validate:"min=1,max=16"`
	Timeout      int     `mapstructure:"timeout" validate:"min=1"`
	RateLimit    float64 `mapstructure:"rate_limit" validate:"gt=0"`
	RateBurst    int     `mapstructure:"rate_burst" validate:"min=1"`
	SeedCity     string  `mapstructure:"seed_city" validate:"required"`
}

type DisplayConfig struct {
	Locale  string `mapstructure:"locale" validate:"required"`
	Unit    string `mapstructure:"unit" validate:"oneof=C F c f"`
	Theme   string `mapstructure:"theme"`
	IconURL string `mapstructure:"icon_url" validate:"required,contains=%s"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format     string `mapstructure:"format" validate:"oneof=json console"`
	OutputPath string `mapstructure:"output_path"`
}

type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

func NewDefaultConfig() *Config {
	return &Config{
		Version:     "1.0.0",
		Environment: "development",
		Server: ServerConfig{
			Port:         8080,
			Host:         "0.0.0.0",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  60,
		},
		Weather: WeatherConfig{
			GeocodingURL: "https://geocoding-api.open-meteo.com/v1",
			ForecastURL:  "https://api.open-meteo.com/v1",
			Language:     "en",
			ForecastDays: 7,
			Timeout:      10,
			RateLimit:    5,
			RateBurst:    5,
			SeedCity:     "London",
		},
		Display: DisplayConfig{
			Locale:  "en",
			Unit:    "C",
			Theme:   string(ThemeLight),
			IconURL: "https://openweathermap.org/img/wn/%s@2x.png",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "",
		},
		Telemetry: TelemetryConfig{
			Enabled:     false,
			Endpoint:    "tempo:4317",
			ServiceName: "weather-search",
		},
	}
}
