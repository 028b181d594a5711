package config

import (
	"fmt"
	"strings"
)

// Theme is the persisted color theme of the display layer.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme accepts "light" or "dark" in any case. An empty value means light.
func ParseTheme(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case "", ThemeLight:
		return ThemeLight, nil
	case ThemeDark:
		return ThemeDark, nil
	default:
		return ThemeLight, fmt.Errorf("unknown theme %q, expected light or dark", s)
	}
}

// ThemePreference returns the configured theme, falling back to light for unknown values.
func (c DisplayConfig) ThemePreference() Theme {
	t, _ := ParseTheme(c.Theme)
	return t
}
