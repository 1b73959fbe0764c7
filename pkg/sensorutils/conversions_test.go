package sensorutils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCelsiusFahrenheitRoundTrip(t *testing.T) {
	require.Equal(t, 212.0, CelsiusToFahrenheit(100))
	require.Equal(t, 32.0, CelsiusToFahrenheit(0))
	require.InDelta(t, 23.5, FahrenheitToCelsius(CelsiusToFahrenheit(23.5)), 1e-9)
}

func TestDewPoint(t *testing.T) {
	// 20C at 50% RH sits just above 9C
	require.InDelta(t, 9.3, DewPointC(20, 50), 0.2)
	// Saturated air: dew point equals the temperature
	require.InDelta(t, 25.0, DewPointC(25, 100), 1e-6)
	// Garbage humidity does not produce NaN/Inf
	require.False(t, DewPointC(20, 0) > 20)
	require.False(t, DewPointC(20, 150) > 21)
}
