package domain

import (
	"fmt"
	"math"
	"strings"
)

// Confidence qualifies how strongly a reading indicates the targeted source.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// degradedDispersion is the meteorological factor below which the explanation
// warns about reduced effectiveness.
const degradedDispersion = 0.8

// ReductionRange holds adjusted reductions in percent.
type ReductionRange struct {
	Min      float64
	Expected float64
	Max      float64
}

// Projection holds post-intervention pm2.5. Best uses the largest reduction
// and Worst the smallest, so Best <= Expected <= Worst.
type Projection struct {
	Best     float64
	Expected float64
	Worst    float64
}

// ImpactEstimate is the unrounded outcome of simulating an intervention.
type ImpactEstimate struct {
	Intervention string
	KnownRange   bool
	CurrentPM25  float64
	Reduction    ReductionRange
	Projected    Projection
	MetFactor    float64
	SourceMatch  float64
	Confidence   Confidence
	Explanation  string
}

// Simulate projects the effect of an intervention on the current reading.
// hour is the local hour of day used for the mixing-height factor. The result
// depends only on its arguments.
func Simulate(intervention string, m Measurement, category Category, hour int) ImpactEstimate {
	eff, known := Effectiveness(intervention)
	match, confidence := sourceMatch(intervention, m, category)
	met := MeteorologicalFactor(m.WindSpeed, hour)

	scale := met * match
	adjMin := eff.Min * scale
	adjTyp := eff.Typical * scale
	adjMax := eff.Max * scale

	est := ImpactEstimate{
		Intervention: intervention,
		KnownRange:   known,
		CurrentPM25:  m.PM25,
		Reduction: ReductionRange{
			Min:      adjMin * 100,
			Expected: adjTyp * 100,
			Max:      adjMax * 100,
		},
		Projected: Projection{
			Best:     m.PM25 * (1 - adjMax),
			Expected: m.PM25 * (1 - adjTyp),
			Worst:    m.PM25 * (1 - adjMin),
		},
		MetFactor:   met,
		SourceMatch: match,
		Confidence:  confidence,
	}
	est.Explanation = explain(est, m.WindSpeed)
	return est
}

// sourceMatch discounts an intervention by how well it targets the source
// the reading points to, keyed on keywords in the intervention name.
func sourceMatch(intervention string, m Measurement, category Category) (float64, Confidence) {
	switch {
	case containsAny(intervention, "Traffic", "Vehicle", "Truck"):
		c := ConfidenceMedium
		if m.TrafficIndex > 0.4 {
			c = ConfidenceHigh
		}
		return math.Min(1.0, m.TrafficIndex+0.5), c
	case containsAny(intervention, "Construction", "Dust", "Street"):
		r := dustRatio(m.PM25, m.PM10)
		c := ConfidenceMedium
		if r > 1.5 {
			c = ConfidenceHigh
		}
		return math.Max(0, math.Min(1.0, (r-1)*0.5+0.5)), c
	case strings.Contains(intervention, "Industrial"):
		if category.IsIndustrial() {
			return 0.85, ConfidenceHigh
		}
		return 0.5, ConfidenceLow
	default:
		return 0.7, ConfidenceMedium
	}
}

// dustRatio is pm10/pm25 for the dust family. A zero pm25 is replaced by
// pm10/1.5, which pins the ratio at 1.5; with no particulates at all it is 1.
func dustRatio(pm25, pm10 float64) float64 {
	if pm25 > 0 {
		return pm10 / pm25
	}
	if pm10 > 0 {
		return pm10 / (pm10 / 1.5)
	}
	return 1
}

func containsAny(s string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func explain(est ImpactEstimate, windSpeed float64) string {
	var b strings.Builder
	if est.KnownRange {
		b.WriteString("Based on peer-reviewed studies for similar interventions. ")
	} else {
		b.WriteString("No published range for this intervention; using a conservative default. ")
	}
	if est.MetFactor < degradedDispersion {
		fmt.Fprintf(&b, "Effectiveness reduced due to poor atmospheric dispersion (wind: %.1f m/s). ", windSpeed)
	}
	fmt.Fprintf(&b, "Confidence: %s. Range: %.0f%%-%.0f%%.", est.Confidence, est.Reduction.Min, est.Reduction.Max)
	return b.String()
}
