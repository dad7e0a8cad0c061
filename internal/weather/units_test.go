package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUnits(t *testing.T) {
	for in, want := range map[string]Units{
		"celsius":    Celsius,
		"Fahrenheit": Fahrenheit,
		"metric":     Celsius,
		"imperial":   Fahrenheit,
		" f ":        Fahrenheit,
	} {
		got, err := ParseUnits(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseUnits("kelvin")
	assert.Error(t, err)
}

func TestUnits_ToggleIsInvolution(t *testing.T) {
	assert.Equal(t, Fahrenheit, Celsius.Toggle())
	assert.Equal(t, Celsius, Fahrenheit.Toggle())
	assert.Equal(t, Celsius, Celsius.Toggle().Toggle())
}

func TestUnits_Labels(t *testing.T) {
	assert.Equal(t, "metric", Celsius.System())
	assert.Equal(t, "imperial", Fahrenheit.System())
	assert.Equal(t, "m/s", Celsius.WindSpeedLabel())
	assert.Equal(t, "mph", Fahrenheit.WindSpeedLabel())
	assert.InDelta(t, 10.0, Celsius.Visibility(10000), 1e-9)
	assert.InDelta(t, 6.2137, Fahrenheit.Visibility(10000), 1e-4)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 15, Round(15.0))
	assert.Equal(t, 3, Round(2.5))
	assert.Equal(t, -2, Round(-2.5))
	assert.Equal(t, -3, Round(-2.6))
	assert.Equal(t, "12°C", Celsius.FormatTemperature(12.4))
	assert.Equal(t, "59°F", Fahrenheit.FormatTemperature(59.0))
}
