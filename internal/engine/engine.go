// Package engine exposes the scoring core to callers. It reads the wall clock
// for hour-of-day, rounds numbers at the output boundary, and shapes results
// for the HTTP API, the assessment publisher and the CLI.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/urban-policy-engine/internal/domain"
	"github.com/couchcryptid/urban-policy-engine/internal/observability"
	"github.com/couchcryptid/urban-policy-engine/internal/store"
)

// ErrReadingUnavailable is returned when a sector has no trusted reading yet.
var ErrReadingUnavailable = errors.New("sector reading unavailable")

const (
	acceptableMessage = "Pollution levels acceptable. Continue monitoring."
	methodology       = "Based on CPCB/DPCC/IIT Delhi studies"
)

// Engine evaluates sector snapshots.
type Engine struct {
	clock    clockwork.Clock
	location *time.Location
	metrics  *observability.Metrics
}

// New creates an Engine. Hours of day are taken in loc.
func New(clock clockwork.Clock, loc *time.Location, metrics *observability.Metrics) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{clock: clock, location: loc, metrics: metrics}
}

// Hour returns the local hour of day at t.
func (e *Engine) Hour(t time.Time) int { return t.In(e.location).Hour() }

// Now returns the engine clock's current time.
func (e *Engine) Now() time.Time { return e.clock.Now() }

// Status classifies a sector's current reading.
func (e *Engine) Status(snap store.Snapshot) (SectorStatus, error) {
	m, err := measurementOf(snap)
	if err != nil {
		return SectorStatus{}, err
	}
	status := SectorStatus{
		SectorID:       snap.Sector.ID,
		SectorName:     snap.Sector.Name,
		Readings:       readingsOf(m),
		Classification: e.Classify(m, snap.Sector.Category()),
		DataSource:     string(snap.DataSource),
		TrafficSource:  string(snap.TrafficSource),
		Stations:       snap.Stations,
		Timestamp:      e.clock.Now(),
	}
	if !snap.LastUpdate.IsZero() {
		lu := snap.LastUpdate
		status.LastUpdate = &lu
	}
	return status, nil
}

// Classify returns the rounded boundary form of a diagnosis.
func (e *Engine) Classify(m domain.Measurement, category domain.Category) Classification {
	d := domain.Classify(m.PM25, m.PM10, m.TrafficIndex, category)
	return Classification{
		Severity:         d.Severity,
		Cause:            d.Cause,
		CauseDescription: d.Cause.Description(),
	}
}

// Policy selects the recommended intervention for a sector.
func (e *Engine) Policy(snap store.Snapshot) (PolicyResult, error) {
	m, err := measurementOf(snap)
	if err != nil {
		return PolicyResult{}, err
	}
	res := e.Recommend(m, snap.Sector.Category())
	res.SectorID = snap.Sector.ID
	res.SectorName = snap.Sector.Name
	return res, nil
}

// Recommend runs the selector on a measurement.
func (e *Engine) Recommend(m domain.Measurement, category domain.Category) PolicyResult {
	rec, ok := domain.Recommend(category, m.PM25, m.PM10, m.TrafficIndex, m.WindSpeed)
	res := PolicyResult{HasPolicy: ok, Timestamp: e.clock.Now()}
	if !ok {
		res.Message = acceptableMessage
		e.metrics.Recommendations.WithLabelValues("none").Inc()
		return res
	}
	res.Policy = &Policy{
		Rule:                 rec.Rule,
		Name:                 rec.Intervention,
		Reason:               rec.Reason,
		ExpectedReductionPct: round1(rec.ExpectedReductionPct),
		EstimatedHours:       rec.EstimatedHours,
		Priority:             rec.Priority,
	}
	e.metrics.Recommendations.WithLabelValues(string(rec.Priority)).Inc()
	return res
}

// Simulate projects an intervention on a sector's current reading using the
// current local hour.
func (e *Engine) Simulate(snap store.Snapshot, intervention string) (SimulationResult, error) {
	m, err := measurementOf(snap)
	if err != nil {
		return SimulationResult{}, err
	}
	res := e.SimulateMeasurement(m, snap.Sector.Category(), intervention)
	res.SectorID = snap.Sector.ID
	res.SectorName = snap.Sector.Name
	return res, nil
}

// SimulateMeasurement projects an intervention on an arbitrary measurement.
func (e *Engine) SimulateMeasurement(m domain.Measurement, category domain.Category, intervention string) SimulationResult {
	now := e.clock.Now()
	est := domain.Simulate(intervention, m, category, e.Hour(now))
	e.metrics.Simulations.WithLabelValues(string(est.Confidence)).Inc()
	return simulationOf(est, m, now)
}

// Evaluate validates an ad-hoc measurement and returns its classification,
// recommendation and, when a policy applies, the simulated impact of it.
func (e *Engine) Evaluate(sector domain.SectorProfile, m domain.Measurement) (Evaluation, error) {
	if err := m.Validate(); err != nil {
		return Evaluation{}, err
	}
	ev := Evaluation{
		SectorID:       sector.ID,
		SectorName:     sector.Name,
		Readings:       readingsOf(m),
		Classification: e.Classify(m, sector.Category()),
		Recommendation: e.Recommend(m, sector.Category()),
	}
	ev.Recommendation.SectorID = sector.ID
	ev.Recommendation.SectorName = sector.Name
	if ev.Recommendation.HasPolicy {
		sim := e.SimulateMeasurement(m, sector.Category(), ev.Recommendation.Policy.Name)
		sim.SectorID = sector.ID
		sim.SectorName = sector.Name
		ev.Simulation = &sim
	}
	return ev, nil
}

// Assess builds the publishable assessment of a sector snapshot.
func (e *Engine) Assess(snap store.Snapshot, cycleID string) (Assessment, error) {
	status, err := e.Status(snap)
	if err != nil {
		return Assessment{}, err
	}
	policy, err := e.Policy(snap)
	if err != nil {
		return Assessment{}, err
	}
	return Assessment{
		CycleID:    cycleID,
		Status:     status,
		Policy:     policy,
		AssessedAt: e.clock.Now().UTC(),
	}, nil
}

func measurementOf(snap store.Snapshot) (domain.Measurement, error) {
	if !snap.Available() {
		return domain.Measurement{}, fmt.Errorf("%w: sector %d", ErrReadingUnavailable, snap.Sector.ID)
	}
	return *snap.Measurement, nil
}
