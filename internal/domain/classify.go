package domain

// Severity is the pm2.5 severity tier.
type Severity string

const (
	SeverityModerate              Severity = "moderate"
	SeverityUnhealthyForSensitive Severity = "unhealthy_for_sensitive"
	SeverityUnhealthy             Severity = "unhealthy"
	SeverityVeryUnhealthy         Severity = "very_unhealthy"
	SeverityHazardous             Severity = "hazardous"
)

// Cause is the dominant pollution source inferred from a reading.
type Cause string

const (
	CauseDustConstruction Cause = "dust_construction"
	CauseFineParticles    Cause = "fine_particles"
	CauseMixedTrafficDust Cause = "mixed_traffic_dust"
	CauseIndustrial       Cause = "industrial_emissions"
	CauseResidential      Cause = "residential_traffic"
	CauseCommercial       Cause = "commercial_congestion"
	CauseMixedSources     Cause = "mixed_sources"
)

var causeDescriptions = map[Cause]string{
	CauseDustConstruction: "Dust and construction activity (high coarse particles)",
	CauseFineParticles:    "Vehicle emissions and industrial pollution (fine particles)",
	CauseMixedTrafficDust: "Mixed traffic and dust pollution",
	CauseIndustrial:       "Industrial emissions (high particulate concentration)",
	CauseResidential:      "Residential emissions and traffic (balanced sources)",
	CauseCommercial:       "Commercial area pollution (traffic congestion and activities)",
	CauseMixedSources:     "Mixed pollution sources (dust, traffic, and industrial)",
}

// Description returns the human-readable explanation of the cause.
func (c Cause) Description() string {
	if d, ok := causeDescriptions[c]; ok {
		return d
	}
	return string(c)
}

// Diagnosis is the result of classifying one reading.
type Diagnosis struct {
	Severity Severity
	Cause    Cause
}

// Classify labels the severity tier and dominant cause of a reading.
func Classify(pm25, pm10, trafficIndex float64, category Category) Diagnosis {
	return Diagnosis{
		Severity: SeverityOf(pm25),
		Cause:    causeOf(pm25, pm10, trafficIndex, category),
	}
}

// SeverityOf maps pm2.5 onto the five-tier ladder. Bounds are exclusive.
func SeverityOf(pm25 float64) Severity {
	switch {
	case pm25 > 250:
		return SeverityHazardous
	case pm25 > 200:
		return SeverityVeryUnhealthy
	case pm25 > 150:
		return SeverityUnhealthy
	case pm25 > 100:
		return SeverityUnhealthyForSensitive
	default:
		return SeverityModerate
	}
}

// causeOf evaluates the cause cascade; the first matching case wins.
func causeOf(pm25, pm10, trafficIndex float64, category Category) Cause {
	r := pmRatio(pm25, pm10)

	switch {
	case r > 2.5:
		return CauseDustConstruction
	case r < 0.8 && trafficIndex > 0.25:
		return CauseFineParticles
	case r >= 0.8 && r <= 2.0 && trafficIndex > 0.3:
		return CauseMixedTrafficDust
	case category.IsIndustrial() && pm25 > 150:
		return CauseIndustrial
	case category.IsResidential() && r < 1.5:
		return CauseResidential
	case category.IsCommercial():
		return CauseCommercial
	default:
		return CauseMixedSources
	}
}
