// Package poller refreshes sector readings from the upstream sources on a
// fixed interval and publishes an assessment of every sector after each cycle.
package poller

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/urban-policy-engine/internal/domain"
	"github.com/couchcryptid/urban-policy-engine/internal/engine"
	"github.com/couchcryptid/urban-policy-engine/internal/observability"
	"github.com/couchcryptid/urban-policy-engine/internal/store"
)

// defaultWindSpeed is used until a sector has ever had wind fetched.
const defaultWindSpeed = 2.0

const (
	initialBackoff = 5 * time.Second
	minInterval    = time.Second
)

// AirQualitySource reads particulate and traffic pollutants for a sector.
type AirQualitySource interface {
	AirQuality(ctx context.Context, sector domain.SectorProfile) (domain.AirQuality, error)
}

// WindSource reads current wind speed (m/s) for a sector.
type WindSource interface {
	WindSpeed(ctx context.Context, sector domain.SectorProfile) (float64, error)
}

// Publisher delivers the assessments of one cycle.
type Publisher interface {
	PublishAssessments(ctx context.Context, assessments []engine.Assessment) error
}

// Outcome summarizes one polling cycle.
type Outcome string

const (
	OutcomeOK       Outcome = "ok"       // every sector refreshed live
	OutcomeDegraded Outcome = "degraded" // some sectors fell back to cached values
	OutcomeFailed   Outcome = "failed"   // no sector refreshed live
)

// Cycle is the result of RunOnce.
type Cycle struct {
	ID      string
	Outcome Outcome
	Live    int
	Cached  int
}

// Poller owns the only writer path into the store.
type Poller struct {
	store       *store.Store
	air         AirQualitySource
	wind        WindSource
	publisher   Publisher // nil disables publishing
	engine      *engine.Engine
	clock       clockwork.Clock
	logger      *slog.Logger
	metrics     *observability.Metrics
	interval    time.Duration
	sectorDelay time.Duration
}

// Options configures a Poller.
type Options struct {
	Interval    time.Duration
	SectorDelay time.Duration
	Publisher   Publisher
}

// New creates a Poller.
func New(st *store.Store, air AirQualitySource, wind WindSource, eng *engine.Engine, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Poller {
	interval := opts.Interval
	if interval < minInterval {
		interval = minInterval
	}
	return &Poller{
		store:       st,
		air:         air,
		wind:        wind,
		publisher:   opts.Publisher,
		engine:      eng,
		clock:       clock,
		logger:      logger,
		metrics:     metrics,
		interval:    interval,
		sectorDelay: opts.SectorDelay,
	}
}

// CheckReadiness returns nil once at least one sector has a reading that can
// be scored.
func (p *Poller) CheckReadiness(_ context.Context) error {
	if !p.store.AnyAvailable() {
		return errors.New("no sector has a reading yet")
	}
	return nil
}

// Run polls until the context is cancelled. A cycle in which no sector
// refreshed live is retried sooner, with exponential backoff capped at the
// poll interval.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("poller started", "interval", p.interval, "sectors", len(p.store.Sectors()))
	p.metrics.PollerRunning.Set(1)
	defer p.metrics.PollerRunning.Set(0)

	backoff := initialBackoff
	for {
		cycle, err := p.RunOnce(ctx)
		if err != nil {
			p.logger.Info("poller stopping", "reason", err)
			return nil
		}

		wait := p.interval
		if cycle.Outcome == OutcomeFailed {
			wait = min(backoff, p.interval)
			backoff = retry.NextBackoff(backoff, p.interval)
		} else {
			backoff = initialBackoff
		}

		if !sleepWithContext(ctx, p.clock, wait) {
			p.logger.Info("poller stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// RunOnce refreshes every sector in configuration order and publishes the
// resulting assessments. It returns an error only when ctx is cancelled.
func (p *Poller) RunOnce(ctx context.Context) (Cycle, error) {
	cycle := Cycle{ID: uuid.NewString()}
	sectors := p.store.Sectors()

	for i, sector := range sectors {
		if i > 0 && !sleepWithContext(ctx, p.clock, p.sectorDelay) {
			return cycle, ctx.Err()
		}
		snap, err := p.refresh(ctx, sector)
		if err != nil {
			return cycle, err
		}
		switch snap.DataSource {
		case store.SourceLive:
			cycle.Live++
		case store.SourceCached:
			cycle.Cached++
		}
	}

	switch {
	case cycle.Live == len(sectors):
		cycle.Outcome = OutcomeOK
	case cycle.Live > 0:
		cycle.Outcome = OutcomeDegraded
	default:
		cycle.Outcome = OutcomeFailed
	}
	p.metrics.PollCycles.WithLabelValues(string(cycle.Outcome)).Inc()
	p.logger.Info("poll cycle complete",
		"cycle_id", cycle.ID, "outcome", cycle.Outcome, "live", cycle.Live, "cached", cycle.Cached)

	p.publish(ctx, cycle.ID)
	return cycle, nil
}

// refresh fetches one sector and stores the merged snapshot.
func (p *Poller) refresh(ctx context.Context, sector domain.SectorProfile) (store.Snapshot, error) {
	prev, err := p.store.Get(sector.ID)
	if err != nil {
		return store.Snapshot{}, err
	}

	aq, aqErr := p.air.AirQuality(ctx, sector)
	wind, windErr := p.wind.WindSpeed(ctx, sector)
	if ctx.Err() != nil {
		return store.Snapshot{}, ctx.Err()
	}
	if aqErr != nil {
		p.logger.Warn("air quality fetch failed", "sector_id", sector.ID, "error", aqErr)
	}
	if windErr != nil {
		p.logger.Warn("wind fetch failed", "sector_id", sector.ID, "error", windErr)
	} else if !domain.ValidWindSpeed(wind) {
		p.logger.Warn("discarding invalid wind speed", "sector_id", sector.ID, "wind_speed", wind)
	}

	now := p.clock.Now()
	snap, ok := merge(prev, aq, aqErr == nil, wind, windErr == nil, now, p.engine.Hour(now))
	if !ok {
		p.logger.Warn("sector has no reading yet", "sector_id", sector.ID, "sector", sector.Name)
		p.recordGauges(prev)
		return prev, nil
	}
	if err := snap.Measurement.Validate(); err != nil {
		p.logger.Error("discarding invalid reading", "sector_id", sector.ID, "error", err)
		if !prev.Available() {
			p.recordGauges(prev)
			return prev, nil
		}
		snap = stale(prev)
	}
	if err := p.store.Put(snap); err != nil {
		return store.Snapshot{}, err
	}

	p.recordGauges(snap)
	p.logger.Debug("sector updated",
		"sector_id", sector.ID,
		"sector", sector.Name,
		"pm25", snap.Measurement.PM25,
		"pm10", snap.Measurement.PM10,
		"traffic_index", snap.Measurement.TrafficIndex,
		"traffic_source", snap.TrafficSource,
		"wind_speed", snap.Measurement.WindSpeed,
		"data_source", snap.DataSource,
	)
	return snap, nil
}

func (p *Poller) publish(ctx context.Context, cycleID string) {
	if p.publisher == nil {
		return
	}
	var assessments []engine.Assessment
	for _, snap := range p.store.All() {
		if !snap.Available() {
			continue
		}
		a, err := p.engine.Assess(snap, cycleID)
		if err != nil {
			p.logger.Warn("assess sector failed", "sector_id", snap.Sector.ID, "error", err)
			continue
		}
		assessments = append(assessments, a)
	}
	if len(assessments) == 0 {
		return
	}
	if err := p.publisher.PublishAssessments(ctx, assessments); err != nil {
		p.metrics.PublishErrors.Inc()
		p.logger.Error("publish assessments failed", "cycle_id", cycleID, "count", len(assessments), "error", err)
		return
	}
	p.metrics.AssessmentsPublished.Add(float64(len(assessments)))
}

func (p *Poller) recordGauges(snap store.Snapshot) {
	label := strconv.Itoa(snap.Sector.ID)
	if !snap.Available() {
		p.metrics.SectorAvailable.WithLabelValues(label).Set(0)
		return
	}
	p.metrics.SectorAvailable.WithLabelValues(label).Set(1)
	p.metrics.SectorPM25.WithLabelValues(label).Set(snap.Measurement.PM25)
	p.metrics.SectorPM10.WithLabelValues(label).Set(snap.Measurement.PM10)
}

// sleepWithContext waits on the injected clock so tests can advance it.
func sleepWithContext(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
