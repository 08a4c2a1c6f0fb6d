package engine

import (
	"math"
	"time"

	"github.com/couchcryptid/urban-policy-engine/internal/domain"
	"github.com/couchcryptid/urban-policy-engine/internal/store"
)

// Readings are the rounded values reported for a sector.
type Readings struct {
	PM25         float64 `json:"pm25"`
	PM10         float64 `json:"pm10"`
	NO2          float64 `json:"no2"`
	CO           float64 `json:"co"`
	TrafficIndex float64 `json:"traffic_index"`
	WindSpeed    float64 `json:"wind_speed"`
}

// Classification is the boundary form of a diagnosis.
type Classification struct {
	Severity         domain.Severity `json:"severity"`
	Cause            domain.Cause    `json:"cause"`
	CauseDescription string          `json:"cause_description"`
}

// SectorStatus is a sector's current reading and its classification.
type SectorStatus struct {
	SectorID   int      `json:"sector_id"`
	SectorName string   `json:"sector_name"`
	Readings   Readings `json:"readings"`
	Classification
	DataSource    string     `json:"data_source"`
	TrafficSource string     `json:"traffic_source,omitempty"`
	Stations      int        `json:"stations"`
	LastUpdate    *time.Time `json:"last_update"`
	Timestamp     time.Time  `json:"timestamp"`
}

// Policy is the boundary form of a recommendation.
type Policy struct {
	Rule                 string          `json:"rule"`
	Name                 string          `json:"name"`
	Reason               string          `json:"reason"`
	ExpectedReductionPct float64         `json:"expected_reduction_pct"`
	EstimatedHours       int             `json:"estimated_hours"`
	Priority             domain.Priority `json:"priority"`
}

// PolicyResult reports whether a policy applies and which one.
type PolicyResult struct {
	SectorID   int       `json:"sector_id"`
	SectorName string    `json:"sector_name"`
	HasPolicy  bool      `json:"has_policy"`
	Policy     *Policy   `json:"policy,omitempty"`
	Message    string    `json:"message,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// ProjectedPM25 is the post-intervention pm2.5 range.
type ProjectedPM25 struct {
	BestCase  float64 `json:"best_case"`
	Expected  float64 `json:"expected"`
	WorstCase float64 `json:"worst_case"`
}

// ReductionRange is the adjusted reduction range in percent.
type ReductionRange struct {
	Min      float64 `json:"min"`
	Expected float64 `json:"expected"`
	Max      float64 `json:"max"`
}

// SimulationResult is the boundary form of an impact estimate.
type SimulationResult struct {
	SectorID       int               `json:"sector_id,omitempty"`
	SectorName     string            `json:"sector_name,omitempty"`
	PolicyName     string            `json:"policy_name"`
	CurrentPM25    float64           `json:"current_pm25"`
	Projected      ProjectedPM25     `json:"projected"`
	ReductionRange ReductionRange    `json:"reduction_range"`
	Confidence     domain.Confidence `json:"confidence"`
	MetFactor      float64           `json:"met_factor"`
	SourceMatch    float64           `json:"source_match"`
	WindSpeed      float64           `json:"wind_speed"`
	Methodology    string            `json:"methodology"`
	Explanation    string            `json:"explanation"`
	Timestamp      time.Time         `json:"timestamp"`
}

// Evaluation bundles every output for one ad-hoc measurement.
type Evaluation struct {
	SectorID       int               `json:"sector_id"`
	SectorName     string            `json:"sector_name"`
	Readings       Readings          `json:"readings"`
	Classification Classification    `json:"classification"`
	Recommendation PolicyResult      `json:"recommendation"`
	Simulation     *SimulationResult `json:"simulation,omitempty"`
}

// Assessment is the per-sector record published after each polling cycle.
type Assessment struct {
	CycleID    string       `json:"cycle_id"`
	Status     SectorStatus `json:"status"`
	Policy     PolicyResult `json:"policy"`
	AssessedAt time.Time    `json:"assessed_at"`
}

// SnapshotReadings returns the rounded readings of a snapshot, or nil while the
// sector is initializing.
func SnapshotReadings(snap store.Snapshot) *Readings {
	if !snap.Available() {
		return nil
	}
	r := readingsOf(*snap.Measurement)
	return &r
}

func readingsOf(m domain.Measurement) Readings {
	return Readings{
		PM25:         round1(m.PM25),
		PM10:         round1(m.PM10),
		NO2:          round1(m.NO2),
		CO:           round2(m.CO),
		TrafficIndex: round2(m.TrafficIndex),
		WindSpeed:    round1(m.WindSpeed),
	}
}

func simulationOf(est domain.ImpactEstimate, m domain.Measurement, now time.Time) SimulationResult {
	return SimulationResult{
		PolicyName:  est.Intervention,
		CurrentPM25: round1(est.CurrentPM25),
		Projected: ProjectedPM25{
			BestCase:  round1(est.Projected.Best),
			Expected:  round1(est.Projected.Expected),
			WorstCase: round1(est.Projected.Worst),
		},
		ReductionRange: ReductionRange{
			Min:      round1(est.Reduction.Min),
			Expected: round1(est.Reduction.Expected),
			Max:      round1(est.Reduction.Max),
		},
		Confidence:  est.Confidence,
		MetFactor:   round2(est.MetFactor),
		SourceMatch: round2(est.SourceMatch),
		WindSpeed:   round1(m.WindSpeed),
		Methodology: methodology,
		Explanation: est.Explanation,
		Timestamp:   now,
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
