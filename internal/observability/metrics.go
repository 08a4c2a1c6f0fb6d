package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "policy_engine"

// Metrics holds the Prometheus counters, histograms, and gauges for the engine.
type Metrics struct {
	PollCycles    *prometheus.CounterVec // labels: outcome={ok,degraded,failed}
	PollerRunning prometheus.Gauge

	// Upstream source metrics.
	UpstreamRequests *prometheus.CounterVec   // labels: source={waqi_geo,waqi_station,open_meteo}, outcome={success,error,empty}
	UpstreamDuration *prometheus.HistogramVec // labels: source

	// Per-sector reading gauges.
	SectorPM25      *prometheus.GaugeVec // labels: sector
	SectorPM10      *prometheus.GaugeVec // labels: sector
	SectorAvailable *prometheus.GaugeVec // labels: sector

	// Scoring metrics.
	Recommendations *prometheus.CounterVec // labels: priority={critical,high,medium,none}
	Simulations     *prometheus.CounterVec // labels: confidence={low,medium,high}

	// Assessment publishing metrics.
	AssessmentsPublished prometheus.Counter
	PublishErrors        prometheus.Counter
}

// NewMetrics creates and registers all engine metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.PollCycles,
		m.PollerRunning,
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.SectorPM25,
		m.SectorPM10,
		m.SectorAvailable,
		m.Recommendations,
		m.Simulations,
		m.AssessmentsPublished,
		m.PublishErrors,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests. One-shot
// tools that never serve /metrics use it too.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		PollCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_cycles_total",
			Help:      "Completed polling cycles by outcome.",
		}, []string{"outcome"}),
		PollerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "poller_running",
			Help:      "1 when the poller is active, 0 when shut down.",
		}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Upstream API requests by source and outcome.",
		}, []string{"source", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"source"}),
		SectorPM25: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sector_pm25",
			Help:      "Last trusted PM2.5 reading per sector (µg/m³).",
		}, []string{"sector"}),
		SectorPM10: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sector_pm10",
			Help:      "Last trusted PM10 reading per sector (µg/m³).",
		}, []string{"sector"}),
		SectorAvailable: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sector_available",
			Help:      "1 when the sector has a scoreable reading, 0 otherwise.",
		}, []string{"sector"}),
		Recommendations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_total",
			Help:      "Policy recommendations computed, by priority.",
		}, []string{"priority"}),
		Simulations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulations_total",
			Help:      "Impact simulations computed, by confidence.",
		}, []string{"confidence"}),
		AssessmentsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessments_published_total",
			Help:      "Sector assessments written to the sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed assessment publish attempts.",
		}),
	}
}
