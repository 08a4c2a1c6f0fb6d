package domain

import "math"

// Normalization ceilings for the pollutant-derived traffic index.
const (
	no2Ceiling = 150.0
	coCeiling  = 80.0
)

// TrafficIndexFromPollutants derives the 0-1 traffic index from NO2 and CO
// readings (60/40 weighting). A missing or zero component counts as 0.5.
// Returns false when neither pollutant was reported.
func TrafficIndexFromPollutants(no2, co *float64) (float64, bool) {
	if no2 == nil && co == nil {
		return 0, false
	}
	idx := normalizedPollutant(no2, no2Ceiling)*0.6 + normalizedPollutant(co, coCeiling)*0.4
	return math.Round(idx*100) / 100, true
}

func normalizedPollutant(v *float64, ceiling float64) float64 {
	if v == nil || *v == 0 {
		return 0.5
	}
	return math.Min(1.0, *v/ceiling)
}

// SimulatedTrafficIndex estimates the traffic index from the sector baseline
// and the local hour when no NO2/CO data is available. Both derivations are
// treated as the same 0-1 scale.
func SimulatedTrafficIndex(base float64, hour int) float64 {
	mult := 1.0
	switch {
	case (hour >= 8 && hour <= 10) || (hour >= 17 && hour <= 19):
		mult = 1.3 // rush hour
	case hour >= 22 || hour <= 5:
		mult = 0.4
	}
	return math.Min(1.0, math.Max(0.1, base*mult))
}
