package poller

import (
	"time"

	"github.com/couchcryptid/urban-policy-engine/internal/domain"
	"github.com/couchcryptid/urban-policy-engine/internal/store"
)

// merge combines a fetch result with the previous snapshot. Live pm2.5 makes
// the snapshot live; otherwise the previous trusted values are carried over
// and labelled cached. Each fetched field that fails its range check falls
// back on its own. Returns false when there is nothing to score yet.
func merge(prev store.Snapshot, aq domain.AirQuality, aqOK bool, wind float64, windOK bool, now time.Time, hour int) (store.Snapshot, bool) {
	live := aqOK && aq.PM25 != nil && domain.ValidPM25(*aq.PM25)
	windOK = windOK && domain.ValidWindSpeed(wind)
	if !live && !prev.Available() {
		return store.Snapshot{}, false
	}

	var old domain.Measurement
	if prev.Available() {
		old = *prev.Measurement
	}

	m := domain.Measurement{WindSpeed: defaultWindSpeed}
	snap := store.Snapshot{Sector: prev.Sector}

	switch {
	case windOK:
		m.WindSpeed = wind
	case prev.Available():
		m.WindSpeed = old.WindSpeed
	}

	if live {
		m.PM25 = *aq.PM25
		switch {
		case aq.PM10 != nil && domain.ValidPM10(*aq.PM10):
			m.PM10 = *aq.PM10
		case prev.Available():
			m.PM10 = old.PM10
		default:
			m.PM10 = m.PM25
		}
		m.NO2 = valueOr(aq.NO2, old.NO2)
		m.CO = valueOr(aq.CO, old.CO)
		m.Timestamp = now
		snap.DataSource = store.SourceLive
		snap.Stations = aq.Stations
		snap.LastUpdate = now
	} else {
		m.PM25 = old.PM25
		m.PM10 = old.PM10
		m.NO2 = old.NO2
		m.CO = old.CO
		m.Timestamp = old.Timestamp
		snap.DataSource = store.SourceCached
		snap.LastUpdate = prev.LastUpdate
	}

	if live && aq.TrafficIndex != nil && domain.ValidTrafficIndex(*aq.TrafficIndex) {
		m.TrafficIndex = *aq.TrafficIndex
		snap.TrafficSource = store.TrafficFromPollutants
	} else {
		m.TrafficIndex = domain.SimulatedTrafficIndex(prev.Sector.TrafficBase, hour)
		snap.TrafficSource = store.TrafficSimulated
	}

	snap.Measurement = &m
	return snap, true
}

// stale relabels a previous snapshot as cached, keeping its values and
// LastUpdate.
func stale(prev store.Snapshot) store.Snapshot {
	prev.DataSource = store.SourceCached
	return prev
}

func valueOr(v *float64, fallback float64) float64 {
	if v != nil && domain.ValidPollutant(*v) {
		return *v
	}
	return fallback
}
