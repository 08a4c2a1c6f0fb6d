package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommend_Scenarios(t *testing.T) {
	tests := []struct {
		name     string
		category Category
		pm25     float64
		pm10     float64
		traffic  float64
		wind     float64
		rule     string
		want     string
		pct      float64
		hours    int
		priority Priority
	}{
		{"industrial stagnant peak", "Gurgaon Industrial Hub", 300, 200, 0.6, 1.5,
			"stagnant_traffic_peak", InterventionIndustrialControl, 35, 24, PriorityCritical},
		{"non-industrial stagnant peak", "South Delhi Commercial", 300, 200, 0.6, 1.5,
			"stagnant_traffic_peak", InterventionTruckBan, 22, 12, PriorityCritical},
		{"severe dust regardless of traffic", "Noida Residential Sector", 100, 280, 0.1, 3,
			"severe_dust", InterventionConstructionHalt, 25, 12, PriorityCritical},
		{"commercial traffic", "South Delhi Commercial", 220, 250, 0.5, 3,
			"traffic_dominant", InterventionPeakHourRestrictions, 20, 8, PriorityHigh},
		{"residential traffic", "Noida Residential Sector", 220, 250, 0.5, 3,
			"traffic_dominant", InterventionOddEven, 18, 6, PriorityHigh},
		{"other traffic", "Gurgaon Industrial Hub", 220, 250, 0.5, 3,
			"traffic_dominant", InterventionEmissionStandards, 16, 6, PriorityHigh},
		{"moderate stagnant", "South Delhi Commercial", 160, 200, 0.2, 1.0,
			"stagnant_moderate", InterventionPublicTransport, 12, 4, PriorityMedium},
		{"low traffic dust", "Noida Residential Sector", 100, 200, 0.2, 3,
			"low_traffic_dust", InterventionStreetCleaning, 15, 6, PriorityMedium},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok := Recommend(tt.category, tt.pm25, tt.pm10, tt.traffic, tt.wind)
			require.True(t, ok)
			assert.Equal(t, tt.rule, rec.Rule)
			assert.Equal(t, tt.want, rec.Intervention)
			assert.Equal(t, tt.pct, rec.ExpectedReductionPct)
			assert.Equal(t, tt.hours, rec.EstimatedHours)
			assert.Equal(t, tt.priority, rec.Priority)
			assert.NotEmpty(t, rec.Reason)
		})
	}
}

func TestRecommend_AcceptableLevels(t *testing.T) {
	rec, ok := Recommend("South Delhi Commercial", 50, 60, 0.2, 5)
	assert.False(t, ok)
	assert.Equal(t, Recommendation{}, rec)
}

func TestRecommend_FirstMatchWins(t *testing.T) {
	// Satisfies both the stagnant peak rule and the traffic dominant rule.
	in := RecommendationInput{Category: "South Delhi Commercial", PM25: 300, PM10: 330, TrafficIndex: 0.7, WindSpeed: 1}
	require.True(t, rules[0].match(in))
	require.True(t, rules[2].match(in))

	rec, ok := Recommend(in.Category, in.PM25, in.PM10, in.TrafficIndex, in.WindSpeed)
	require.True(t, ok)
	assert.Equal(t, "stagnant_traffic_peak", rec.Rule)
	assert.Equal(t, InterventionTruckBan, rec.Intervention)
}

func TestRecommend_ReasonEmbedsReadings(t *testing.T) {
	rec, ok := Recommend("Gurgaon Industrial Hub", 300, 200, 0.6, 1.5)
	require.True(t, ok)
	assert.Equal(t, "Critical pollution in industrial area: PM2.5=300, Traffic index=0.6, Wind=1.5m/s", rec.Reason)

	rec, ok = Recommend("", 100, 280, 0.1, 3)
	require.True(t, ok)
	assert.Contains(t, rec.Reason, "PM10=280")
	assert.Contains(t, rec.Reason, "ratio=2.8")
}

func TestRecommend_ZeroPM25UsesUnitRatio(t *testing.T) {
	// Ratio falls back to 1, so neither dust rule can fire.
	_, ok := Recommend("", 0, 500, 0.1, 3)
	assert.False(t, ok)
}

func TestRuleIDs_Order(t *testing.T) {
	assert.Equal(t, []string{
		"stagnant_traffic_peak",
		"severe_dust",
		"traffic_dominant",
		"stagnant_moderate",
		"low_traffic_dust",
	}, RuleIDs())
}

func TestRecommend_InterventionsHaveRanges(t *testing.T) {
	for _, r := range rules {
		for _, cat := range []Category{"Gurgaon Industrial Hub", "South Delhi Commercial", "Noida Residential Sector", ""} {
			rec := r.build(RecommendationInput{Category: cat, PM25: 300, PM10: 300, TrafficIndex: 0.6, WindSpeed: 1})
			_, known := Effectiveness(rec.Intervention)
			assert.True(t, known, "no effectiveness range for %q", rec.Intervention)
		}
	}
}
