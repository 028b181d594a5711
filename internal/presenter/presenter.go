// Package presenter turns a weather.ViewState into display values for a chosen unit.
package presenter

import (
	"fmt"
	"math"
	"strings"

	"github.com/vzahanych/weather-search-app/internal/weather"
)

// Placeholder is shown where no value is available yet.
const Placeholder = "—"

type Presentation struct {
	Status       string        `json:"status"`
	City         string        `json:"city"`
	ObservedAt   string        `json:"observed_at"`
	Description  string        `json:"description"`
	Icon         string        `json:"icon"`
	IconURL      string        `json:"icon_url"`
	Unit         string        `json:"unit"`
	Temperature  *int          `json:"temperature"`
	HumidityPct  *int          `json:"humidity_pct"`
	WindSpeedMps *float64      `json:"wind_speed_mps"`
	Outlook      []DayForecast `json:"outlook"`
	Error        string        `json:"error,omitempty"`
	ErrorCode    string        `json:"error_code,omitempty"`
}

type DayForecast struct {
	Day         string `json:"day"`
	Date        string `json:"date"`
	Icon        string `json:"icon"`
	IconURL     string `json:"icon_url"`
	Description string `json:"description"`
	Max         *int   `json:"max"`
	Min         *int   `json:"min"`
}

// Present renders state in unit. iconURL is a format string with one %s verb for
// the icon id.
func Present(state weather.ViewState, unit weather.DisplayUnit, iconURL string) Presentation {
	p := Presentation{
		Status:       string(state.Status),
		City:         Placeholder,
		ObservedAt:   state.ObservedLabel,
		Description:  state.Description,
		Icon:         state.Icon,
		IconURL:      IconURL(iconURL, state.Icon),
		Unit:         string(unit),
		Temperature:  unit.Round(state.TemperatureC),
		HumidityPct:  roundInt(state.HumidityPct),
		WindSpeedMps: roundTenth(state.WindSpeedMps),
		Outlook:      make([]DayForecast, 0, len(state.Outlook)),
		Error:        state.Error.Message(),
		ErrorCode:    string(state.Error),
	}

	if state.Place != nil {
		p.City = state.Place.DisplayLabel()
	}
	if p.Description == "" {
		p.Description = Placeholder
	}

	for _, day := range state.Outlook {
		p.Outlook = append(p.Outlook, DayForecast{
			Day:         day.ShortDayName,
			Date:        day.Date.Format("2006-01-02"),
			Icon:        day.Icon,
			IconURL:     IconURL(iconURL, day.Icon),
			Description: day.Description,
			Max:         unit.Round(day.TempMaxC),
			Min:         unit.Round(day.TempMinC),
		})
	}

	return p
}

func IconURL(template, icon string) string {
	if template == "" || icon == "" {
		return ""
	}
	return fmt.Sprintf(template, icon)
}

// Text renders p as a few lines for terminals.
func Text(p Presentation) string {
	var b strings.Builder

	if p.Error != "" {
		fmt.Fprintf(&b, "%s\n\n", p.Error)
	}

	fmt.Fprintf(&b, "%s\n", p.City)
	if p.ObservedAt != "" {
		fmt.Fprintf(&b, "%s\n", p.ObservedAt)
	}
	fmt.Fprintf(&b, "%s°%s  %s\n", intOrDash(p.Temperature), p.Unit, p.Description)
	fmt.Fprintf(&b, "Humidity: %s%%  Wind: %s m/s\n", intOrDash(p.HumidityPct), windOrDash(p.WindSpeedMps))

	if len(p.Outlook) > 0 {
		b.WriteString("\n")
		for _, d := range p.Outlook {
			fmt.Fprintf(&b, "%-5s %4s° / %4s°  %s\n", d.Day, intOrDash(d.Max), intOrDash(d.Min), d.Description)
		}
	}

	return b.String()
}

func roundInt(v *float64) *int {
	if v == nil {
		return nil
	}
	r := int(math.Round(*v))
	return &r
}

func roundTenth(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := math.Round(*v*10) / 10
	return &r
}

func intOrDash(v *int) string {
	if v == nil {
		return "–"
	}
	return fmt.Sprintf("%d", *v)
}

func windOrDash(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return fmt.Sprintf("%.1f", *v)
}
