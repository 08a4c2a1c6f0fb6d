package domain

import "fmt"

// Priority is the urgency tier of a recommendation.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
)

// Recommendation is the intervention selected for a reading.
type Recommendation struct {
	Rule                 string   `json:"rule"`
	Intervention         string   `json:"name"`
	Reason               string   `json:"reason"`
	ExpectedReductionPct float64  `json:"expected_reduction_pct"`
	EstimatedHours       int      `json:"estimated_hours"`
	Priority             Priority `json:"priority"`
}

// RecommendationInput is the reading a rule is evaluated against.
type RecommendationInput struct {
	Category     Category
	PM25         float64
	PM10         float64
	TrafficIndex float64
	WindSpeed    float64
}

func (in RecommendationInput) ratio() float64 { return pmRatio(in.PM25, in.PM10) }

// rule pairs a predicate with the recommendation it yields.
type rule struct {
	id    string
	match func(RecommendationInput) bool
	build func(RecommendationInput) Recommendation
}

// rules are evaluated in order and the first match wins. Predicates overlap,
// so the order encodes priority.
var rules = []rule{
	{
		id: "stagnant_traffic_peak",
		match: func(in RecommendationInput) bool {
			return in.PM25 > 250 && in.TrafficIndex > 0.5 && in.WindSpeed < 2
		},
		build: func(in RecommendationInput) Recommendation {
			if in.Category.IsIndustrial() {
				return Recommendation{
					Intervention: InterventionIndustrialControl,
					Reason: fmt.Sprintf("Critical pollution in industrial area: PM2.5=%.0f, Traffic index=%.1f, Wind=%.1fm/s",
						in.PM25, in.TrafficIndex, in.WindSpeed),
					ExpectedReductionPct: 35,
					EstimatedHours:       24,
					Priority:             PriorityCritical,
				}
			}
			return Recommendation{
				Intervention: InterventionTruckBan,
				Reason: fmt.Sprintf("High PM2.5 (%.0f) with heavy traffic (%.1f) and poor wind dispersal (%.1f m/s).",
					in.PM25, in.TrafficIndex, in.WindSpeed),
				ExpectedReductionPct: 22,
				EstimatedHours:       12,
				Priority:             PriorityCritical,
			}
		},
	},
	{
		id: "severe_dust",
		match: func(in RecommendationInput) bool {
			return in.PM10 > 250 && in.ratio() > 2.0
		},
		build: func(in RecommendationInput) Recommendation {
			return Recommendation{
				Intervention: InterventionConstructionHalt,
				Reason: fmt.Sprintf("Severe dust pollution: PM10=%.0f, PM10/PM2.5 ratio=%.1f (coarse particles dominant)",
					in.PM10, in.ratio()),
				ExpectedReductionPct: 25,
				EstimatedHours:       12,
				Priority:             PriorityCritical,
			}
		},
	},
	{
		id: "traffic_dominant",
		match: func(in RecommendationInput) bool {
			return in.PM25 > 200 && in.TrafficIndex > 0.3 && in.ratio() < 1.5
		},
		build: func(in RecommendationInput) Recommendation {
			switch {
			case in.Category.IsCommercial():
				return Recommendation{
					Intervention: InterventionPeakHourRestrictions,
					Reason: fmt.Sprintf("High PM2.5 (%.0f) driven by traffic in commercial area (Traffic index: %.1f)",
						in.PM25, in.TrafficIndex),
					ExpectedReductionPct: 20,
					EstimatedHours:       8,
					Priority:             PriorityHigh,
				}
			case in.Category.IsResidential():
				return Recommendation{
					Intervention: InterventionOddEven,
					Reason: fmt.Sprintf("High PM2.5 (%.0f) with moderate traffic impact in residential area (Traffic index: %.1f)",
						in.PM25, in.TrafficIndex),
					ExpectedReductionPct: 18,
					EstimatedHours:       6,
					Priority:             PriorityHigh,
				}
			default:
				return Recommendation{
					Intervention: InterventionEmissionStandards,
					Reason: fmt.Sprintf("High PM2.5 (%.0f) from traffic-related sources (Traffic index: %.1f)",
						in.PM25, in.TrafficIndex),
					ExpectedReductionPct: 16,
					EstimatedHours:       6,
					Priority:             PriorityHigh,
				}
			}
		},
	},
	{
		id: "stagnant_moderate",
		match: func(in RecommendationInput) bool {
			return in.PM25 > 150 && in.WindSpeed < 2
		},
		build: func(in RecommendationInput) Recommendation {
			return Recommendation{
				Intervention: InterventionPublicTransport,
				Reason: fmt.Sprintf("Moderate pollution (PM2.5: %.0f) with poor wind dispersal (%.1f m/s).",
					in.PM25, in.WindSpeed),
				ExpectedReductionPct: 12,
				EstimatedHours:       4,
				Priority:             PriorityMedium,
			}
		},
	},
	{
		id: "low_traffic_dust",
		match: func(in RecommendationInput) bool {
			return in.PM10 > 150 && in.TrafficIndex < 0.3 && in.ratio() > 1.5
		},
		build: func(in RecommendationInput) Recommendation {
			return Recommendation{
				Intervention: InterventionStreetCleaning,
				Reason: fmt.Sprintf("Notable dust levels (PM10: %.0f) with low traffic contribution (Traffic index: %.1f)",
					in.PM10, in.TrafficIndex),
				ExpectedReductionPct: 15,
				EstimatedHours:       6,
				Priority:             PriorityMedium,
			}
		},
	},
}

// RuleIDs returns the selector rule identifiers in evaluation order.
func RuleIDs() []string {
	ids := make([]string, len(rules))
	for i, r := range rules {
		ids[i] = r.id
	}
	return ids
}

// Recommend runs the rule cascade and returns the first matching
// recommendation. The boolean is false when levels are acceptable and no
// intervention applies.
func Recommend(category Category, pm25, pm10, trafficIndex, windSpeed float64) (Recommendation, bool) {
	in := RecommendationInput{
		Category:     category,
		PM25:         pm25,
		PM10:         pm10,
		TrafficIndex: trafficIndex,
		WindSpeed:    windSpeed,
	}
	for _, r := range rules {
		if !r.match(in) {
			continue
		}
		rec := r.build(in)
		rec.Rule = r.id
		return rec, true
	}
	return Recommendation{}, false
}
