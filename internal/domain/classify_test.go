package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverityOf_Thresholds(t *testing.T) {
	tests := []struct {
		pm25 float64
		want Severity
	}{
		{0, SeverityModerate},
		{100, SeverityModerate},
		{100.1, SeverityUnhealthyForSensitive},
		{150, SeverityUnhealthyForSensitive},
		{150.1, SeverityUnhealthy},
		{200, SeverityUnhealthy},
		{200.1, SeverityVeryUnhealthy},
		{250, SeverityVeryUnhealthy},
		{250.1, SeverityHazardous},
		{999, SeverityHazardous},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SeverityOf(tt.pm25), "pm25=%v", tt.pm25)
	}
}

func TestClassify_Causes(t *testing.T) {
	tests := []struct {
		name     string
		pm25     float64
		pm10     float64
		traffic  float64
		category Category
		want     Cause
	}{
		{"coarse ratio wins over everything", 100, 260, 0.9, "Gurgaon Industrial Hub", CauseDustConstruction},
		{"fine particles with traffic", 200, 150, 0.3, "Noida Residential Sector", CauseFineParticles},
		{"fine particles need traffic above 0.25", 200, 150, 0.25, "Some Sector", CauseMixedSources},
		{"mixed traffic and dust", 100, 150, 0.4, "South Delhi Commercial", CauseMixedTrafficDust},
		{"ratio exactly 0.8 is mixed", 100, 80, 0.4, "", CauseMixedTrafficDust},
		{"ratio exactly 2.0 is mixed", 100, 200, 0.4, "", CauseMixedTrafficDust},
		{"industrial high pm25", 200, 450, 0.2, "Gurgaon Industrial Hub", CauseIndustrial},
		{"industrial low pm25 falls through", 100, 220, 0.2, "Gurgaon Industrial Hub", CauseMixedSources},
		{"residential balanced", 100, 120, 0.2, "Noida Residential Sector", CauseResidential},
		{"residential coarse falls through", 100, 180, 0.2, "Noida Residential Sector", CauseMixedSources},
		{"commercial", 100, 220, 0.2, "South Delhi Commercial", CauseCommercial},
		{"generic", 100, 220, 0.2, "Airport Zone", CauseMixedSources},
		{"zero pm25 uses unit ratio", 0, 50, 0.5, "", CauseMixedTrafficDust},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Classify(tt.pm25, tt.pm10, tt.traffic, tt.category)
			assert.Equal(t, tt.want, d.Cause)
			assert.Equal(t, SeverityOf(tt.pm25), d.Severity)
		})
	}
}

func TestCause_Description(t *testing.T) {
	assert.Equal(t, "Mixed traffic and dust pollution", CauseMixedTrafficDust.Description())
	assert.Equal(t, "something_else", Cause("something_else").Description())
}

func TestCategory_Keywords(t *testing.T) {
	c := SectorProfile{Name: "Gurgaon Industrial Hub"}.Category()
	assert.True(t, c.IsIndustrial())
	assert.False(t, c.IsResidential())
	assert.False(t, c.IsCommercial())
	assert.True(t, Category("South Delhi Commercial").IsCommercial())
	assert.True(t, Category("Noida Residential Sector").IsResidential())
}
