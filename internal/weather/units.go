package weather

import (
	"fmt"
	"math"
	"strings"
)

// Units is the user's temperature unit preference. It also selects the
// provider unit system, which governs wind speed.
type Units string

const (
	Celsius    Units = "celsius"
	Fahrenheit Units = "fahrenheit"
)

const metersPerMile = 1609.344

// ParseUnits accepts the stored literals and the provider system names.
func ParseUnits(s string) (Units, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "celsius", "c", "metric":
		return Celsius, nil
	case "fahrenheit", "f", "imperial":
		return Fahrenheit, nil
	default:
		return "", fmt.Errorf("unknown units %q", s)
	}
}

func (u Units) Valid() bool {
	return u == Celsius || u == Fahrenheit
}

// System is the provider's "units" query value.
func (u Units) System() string {
	if u == Fahrenheit {
		return "imperial"
	}
	return "metric"
}

func (u Units) Toggle() Units {
	if u == Fahrenheit {
		return Celsius
	}
	return Fahrenheit
}

func (u Units) TemperatureSymbol() string {
	if u == Fahrenheit {
		return "°F"
	}
	return "°C"
}

// WindSpeedLabel matches what the provider returns for System().
func (u Units) WindSpeedLabel() string {
	if u == Fahrenheit {
		return "mph"
	}
	return "m/s"
}

func (u Units) VisibilityLabel() string {
	if u == Fahrenheit {
		return "mi"
	}
	return "km"
}

// Visibility converts the provider's meters into km or miles.
func (u Units) Visibility(meters int) float64 {
	if u == Fahrenheit {
		return float64(meters) / metersPerMile
	}
	return float64(meters) / 1000
}

// Round rounds half up, so -2.5 becomes -2 and 2.5 becomes 3.
func Round(v float64) int {
	return int(math.Floor(v + 0.5))
}

// FormatTemperature renders a rounded temperature such as "15°C".
func (u Units) FormatTemperature(v float64) string {
	return fmt.Sprintf("%d%s", Round(v), u.TemperatureSymbol())
}
