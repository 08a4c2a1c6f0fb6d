package domain

// Bounds of MeteorologicalFactor: stagnant wind at night through strong wind by day.
const (
	MinMeteorologicalFactor = 0.4
	MaxMeteorologicalFactor = 1.1
)

// MeteorologicalFactor converts wind speed (m/s) and local hour of day into a
// dimensionless multiplier on intervention effectiveness. It is a coarse
// ventilation proxy loosely following Pasquill-Gifford stability classes, not
// a calibrated dispersion model.
func MeteorologicalFactor(windSpeed float64, hour int) float64 {
	return windFactor(windSpeed) * mixingFactor(hour)
}

func windFactor(windSpeed float64) float64 {
	switch {
	case windSpeed < 1.0:
		return 0.5 // very stable
	case windSpeed < 2.0:
		return 0.65
	case windSpeed < 4.0:
		return 0.85
	case windSpeed < 6.0:
		return 1.0
	default:
		return 1.1 // unstable, good dispersion
	}
}

// mixingFactor approximates boundary-layer height: nocturnal inversions trap
// pollutants near the surface.
func mixingFactor(hour int) float64 {
	if hour >= 6 && hour <= 18 {
		return 1.0
	}
	return 0.8
}
