package weather

import (
	"strings"
	"time"
)

// ResolvedPlace is the first geocoding match for a query.
type ResolvedPlace struct {
	Name        string  `json:"name"`
	AdminRegion string  `json:"admin_region,omitempty"`
	Country     string  `json:"country,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// DisplayLabel joins name, admin region and country with ", ", skipping empty parts.
func (p ResolvedPlace) DisplayLabel() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.Name, p.AdminRegion, p.Country} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

type CurrentConditions struct {
	TemperatureC *float64
	HumidityPct  *float64
	WindSpeedMps *float64
	WeatherCode  int
}

type DailyEntry struct {
	Date        time.Time
	WeatherCode *int
	TempMinC    *float64
	TempMaxC    *float64
}

// RawForecast holds the forecast values as returned upstream. Daily is ordered by
// date ascending and index 0 is today.
type RawForecast struct {
	Timezone string
	Current  CurrentConditions
	Daily    []DailyEntry
}

type ForecastDay struct {
	Date         time.Time `json:"date"`
	ShortDayName string    `json:"short_day_name"`
	Icon         string    `json:"icon"`
	Description  string    `json:"description"`
	TempMinC     *float64  `json:"temp_min_c"`
	TempMaxC     *float64  `json:"temp_max_c"`
}

type Status string

const (
	StatusIdle      Status = "idle"
	StatusResolving Status = "resolving"
	StatusFetching  Status = "fetching"
	StatusReady     Status = "ready"
	StatusFailed    Status = "failed"
)

// InProgress reports whether a run is between start and its terminal state.
func (s Status) InProgress() bool {
	return s == StatusResolving || s == StatusFetching
}

type ErrorKind string

const (
	ErrorNone          ErrorKind = ""
	ErrorPlaceNotFound ErrorKind = "place_not_found"
	ErrorFetchFailed   ErrorKind = "fetch_failed"
)

// Message is the static user-facing text for the error kind.
func (k ErrorKind) Message() string {
	switch k {
	case ErrorPlaceNotFound:
		return "City not found. Try another search."
	case ErrorFetchFailed:
		return "Could not load data. Please try again."
	default:
		return ""
	}
}

// ViewState is the result of the most recently started pipeline run.
// It is replaced as a whole and never mutated after being published.
type ViewState struct {
	Status        Status         `json:"status"`
	Query         string         `json:"query,omitempty"`
	Place         *ResolvedPlace `json:"place"`
	ObservedAt    time.Time      `json:"observed_at"`
	ObservedLabel string         `json:"observed_label"`
	Description   string         `json:"description"`
	Icon          string         `json:"icon"`
	TemperatureC  *float64       `json:"temperature_c"`
	HumidityPct   *float64       `json:"humidity_pct"`
	WindSpeedMps  *float64       `json:"wind_speed_mps"`
	Outlook       []ForecastDay  `json:"outlook"`
	Error         ErrorKind      `json:"error,omitempty"`
}

// NewViewState returns the state shown before any run has completed.
func NewViewState() ViewState {
	return ViewState{
		Status:  StatusIdle,
		Icon:    DefaultIcon,
		Outlook: []ForecastDay{},
	}
}

// Clone returns a copy whose outlook slice does not alias the receiver's.
func (v ViewState) Clone() ViewState {
	out := v
	out.Outlook = append([]ForecastDay(nil), v.Outlook...)
	return out
}
