package sensorutils

import "math"

func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

func FahrenheitToCelsius(f float64) float64 {
	return (f - 32) * 5 / 9
}

// DewPointC approximates the dew point with the Magnus formula.
// Relative humidity is clamped into (0, 100].
func DewPointC(tempC, relHumidity float64) float64 {
	if relHumidity > 100 {
		relHumidity = 100
	}
	if relHumidity <= 0 {
		relHumidity = 0.1
	}
	const a, b = 17.62, 243.12
	gamma := math.Log(relHumidity/100) + a*tempC/(b+tempC)
	return b * gamma / (a - gamma)
}
