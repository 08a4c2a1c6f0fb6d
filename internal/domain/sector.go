package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Upper bounds (exclusive) above which a raw particulate reading is treated as
// a sensor fault rather than a real concentration.
const (
	MaxPM25 = 1000.0
	MaxPM10 = 2000.0
)

// ErrInvalidMeasurement is returned when a measurement fails boundary validation.
var ErrInvalidMeasurement = errors.New("invalid measurement")

// Category is the sector name text used for keyword-based category checks.
// A sector name such as "Gurgaon Industrial Hub" is Industrial.
type Category string

// IsIndustrial reports whether the name contains "Industrial".
func (c Category) IsIndustrial() bool { return strings.Contains(string(c), "Industrial") }

// IsResidential reports whether the name contains "Residential".
func (c Category) IsResidential() bool { return strings.Contains(string(c), "Residential") }

// IsCommercial reports whether the name contains "Commercial".
func (c Category) IsCommercial() bool { return strings.Contains(string(c), "Commercial") }

// SectorProfile is the static description of a monitored sector.
type SectorProfile struct {
	ID          int      `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Lat         float64  `json:"lat" yaml:"lat"`
	Lon         float64  `json:"lon" yaml:"lon"`
	TrafficBase float64  `json:"traffic_base" yaml:"traffic_base"`
	Stations    []string `json:"stations,omitempty" yaml:"stations"` // WAQI station feeds used when the geo feed is empty
}

// Category returns the sector's category keyword carrier.
func (s SectorProfile) Category() Category { return Category(s.Name) }

// Measurement is one trusted reading for a sector.
type Measurement struct {
	PM25         float64   `json:"pm25"`
	PM10         float64   `json:"pm10"`
	TrafficIndex float64   `json:"traffic_index"`
	WindSpeed    float64   `json:"wind_speed"` // m/s
	NO2          float64   `json:"no2,omitempty"`
	CO           float64   `json:"co,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Validate checks that the measurement is inside the ranges the scoring
// functions assume. Out-of-range values are rejected, never clamped.
func (m Measurement) Validate() error {
	switch {
	case !ValidPM25(m.PM25):
		return fmt.Errorf("%w: pm25 %.1f outside [0, %.0f)", ErrInvalidMeasurement, m.PM25, MaxPM25)
	case !ValidPM10(m.PM10):
		return fmt.Errorf("%w: pm10 %.1f outside [0, %.0f)", ErrInvalidMeasurement, m.PM10, MaxPM10)
	case !ValidTrafficIndex(m.TrafficIndex):
		return fmt.Errorf("%w: traffic index %.2f outside [0, 1]", ErrInvalidMeasurement, m.TrafficIndex)
	case !ValidWindSpeed(m.WindSpeed):
		return fmt.Errorf("%w: wind speed %.1f not a finite non-negative value", ErrInvalidMeasurement, m.WindSpeed)
	}
	return nil
}

// ValidPM25 reports whether a raw pm2.5 value can be trusted.
func ValidPM25(v float64) bool { return v >= 0 && v < MaxPM25 }

// ValidPM10 reports whether a raw pm10 value can be trusted.
func ValidPM10(v float64) bool { return v >= 0 && v < MaxPM10 }

// ValidTrafficIndex reports whether v is inside [0, 1]. NaN is invalid.
func ValidTrafficIndex(v float64) bool { return v >= 0 && v <= 1 }

// ValidWindSpeed reports whether v is a finite, non-negative speed.
func ValidWindSpeed(v float64) bool { return v >= 0 && !math.IsInf(v, 1) }

// ValidPollutant reports whether a raw NO2 or CO value can be trusted.
func ValidPollutant(v float64) bool { return v >= 0 && !math.IsInf(v, 1) }

// AirQuality is the normalized output of an air-quality source for one sector.
// Nil fields were not reported or failed validation.
type AirQuality struct {
	PM25         *float64
	PM10         *float64
	NO2          *float64
	CO           *float64
	TrafficIndex *float64
	Station      string
	Stations     int
}

// pmRatio returns pm10/pm25, or 1 when pm25 is not positive.
func pmRatio(pm25, pm10 float64) float64 {
	if pm25 <= 0 {
		return 1
	}
	return pm10 / pm25
}
