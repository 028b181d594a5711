package weather

import (
	"fmt"
	"math"
	"strings"
)

type DisplayUnit string

const (
	Celsius    DisplayUnit = "C"
	Fahrenheit DisplayUnit = "F"
)

func ParseDisplayUnit(s string) (DisplayUnit, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "C", "CELSIUS":
		return Celsius, nil
	case "F", "FAHRENHEIT":
		return Fahrenheit, nil
	default:
		return Celsius, fmt.Errorf("unknown display unit %q", s)
	}
}

func ToFahrenheit(celsius float64) float64 {
	return celsius*9/5 + 32
}

// Convert expresses a Celsius value in the unit without rounding.
func (u DisplayUnit) Convert(celsius float64) float64 {
	if u == Fahrenheit {
		return ToFahrenheit(celsius)
	}
	return celsius
}

// Round converts first and rounds the converted value to the nearest integer.
// A nil temperature stays nil.
func (u DisplayUnit) Round(celsius *float64) *int {
	if celsius == nil {
		return nil
	}
	v := int(math.Round(u.Convert(*celsius)))
	return &v
}

// Symbol is the degree label, e.g. "°C".
func (u DisplayUnit) Symbol() string {
	return "°" + string(u)
}
