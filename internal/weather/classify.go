package weather

// Icon identifiers follow the OpenWeatherMap icon set.
const (
	DefaultIcon        = "01d"
	DefaultDescription = "Weather"
)

type classification struct {
	icon string
	text string
}

// WMO weather interpretation codes as reported by Open-Meteo.
var codeTable = map[int]classification{
	0: {"01d", "Clear sky"},
	1: {"02d", "Mainly clear"},
	2: {"03d", "Partly cloudy"},
	3: {"04d", "Overcast"},

	45: {"50d", "Fog"},
	48: {"50d", "Rime fog"},

	51: {"09d", "Light drizzle"},
	53: {"09d", "Drizzle"},
	55: {"09d", "Dense drizzle"},

	61: {"10d", "Light rain"},
	63: {"10d", "Rain"},
	65: {"10d", "Heavy rain"},
	66: {"10d", "Freezing rain"},
	67: {"10d", "Freezing rain"},

	71: {"13d", "Light snow"},
	73: {"13d", "Snow"},
	75: {"13d", "Heavy snow"},
	77: {"13d", "Snow grains"},

	80: {"09d", "Light showers"},
	81: {"09d", "Showers"},
	82: {"09d", "Heavy showers"},

	85: {"13d", "Snow showers"},
	86: {"13d", "Snow showers"},

	95: {"11d", "Thunderstorm"},
	96: {"11d", "Thunderstorm w/ hail"},
	99: {"11d", "Thunderstorm w/ hail"},
}

// ClassifyIcon maps a weather code to an icon id. Unknown codes map to DefaultIcon.
func ClassifyIcon(code int) string {
	if c, ok := codeTable[code]; ok {
		return c.icon
	}
	return DefaultIcon
}

// ClassifyText maps a weather code to a description. Unknown codes map to DefaultDescription.
func ClassifyText(code int) string {
	if c, ok := codeTable[code]; ok {
		return c.text
	}
	return DefaultDescription
}

// Classify returns both the icon and the description for code.
func Classify(code int) (icon, text string) {
	return ClassifyIcon(code), ClassifyText(code)
}

// KnownCodes lists the codes with a dedicated classification.
func KnownCodes() []int {
	codes := make([]int, 0, len(codeTable))
	for code := range codeTable {
		codes = append(codes, code)
	}
	return codes
}
