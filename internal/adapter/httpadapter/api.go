// Package httpadapter serves the policy engine's JSON API.
package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/urban-policy-engine/internal/domain"
	"github.com/couchcryptid/urban-policy-engine/internal/engine"
	"github.com/couchcryptid/urban-policy-engine/internal/store"
)

const maxBodyBytes = 1 << 20

// Upstreams names the data sources reported by /api/status.
type Upstreams struct {
	WAQI      string `json:"waqi"`
	OpenMeteo string `json:"open_meteo"`
}

// API holds the handlers for the policy routes. Handlers only read the store.
type API struct {
	store     *store.Store
	engine    *engine.Engine
	upstreams Upstreams
	logger    *slog.Logger
}

// NewAPI creates the API handlers.
func NewAPI(st *store.Store, eng *engine.Engine, upstreams Upstreams, logger *slog.Logger) *API {
	return &API{store: st, engine: eng, upstreams: upstreams, logger: logger}
}

type sectorSummary struct {
	ID          int              `json:"id"`
	Name        string           `json:"name"`
	Lat         float64          `json:"lat"`
	Lon         float64          `json:"lon"`
	TrafficBase float64          `json:"traffic_base"`
	Available   bool             `json:"available"`
	DataSource  string           `json:"data_source"`
	Readings    *engine.Readings `json:"readings"`
	LastUpdate  *time.Time       `json:"last_update"`
}

type simulateRequest struct {
	SectorID   int    `json:"sector_id"`
	PolicyName string `json:"policy_name"`
}

type evaluateRequest struct {
	SectorID     int     `json:"sector_id"`
	SectorName   string  `json:"sector_name"`
	PM25         float64 `json:"pm25"`
	PM10         float64 `json:"pm10"`
	TrafficIndex float64 `json:"traffic_index"`
	WindSpeed    float64 `json:"wind_speed"`
}

func (a *API) handleRoot(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{
		"service": "urban-policy-engine",
		"status":  "running",
		"sectors": len(a.store.Sectors()),
		"endpoints": []string{
			"GET /sectors",
			"GET /sectors/{id}/status",
			"GET /sectors/{id}/policy",
			"POST /simulate",
			"POST /evaluate",
			"GET /api/status",
		},
	})
}

func (a *API) handleSectors(w http.ResponseWriter, _ *http.Request) {
	snaps := a.store.All()
	out := make([]sectorSummary, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, summarize(snap))
	}
	sharedobs.WriteJSON(w, http.StatusOK, out)
}

func (a *API) handleSectorStatus(w http.ResponseWriter, r *http.Request) {
	snap, ok := a.sector(w, r)
	if !ok {
		return
	}
	status, err := a.engine.Status(snap)
	if err != nil {
		a.writeError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, status)
}

func (a *API) handleSectorPolicy(w http.ResponseWriter, r *http.Request) {
	snap, ok := a.sector(w, r)
	if !ok {
		return
	}
	res, err := a.engine.Policy(snap)
	if err != nil {
		a.writeError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, res)
}

func (a *API) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.PolicyName == "" {
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorBody("policy_name is required"))
		return
	}
	snap, err := a.store.Get(req.SectorID)
	if err != nil {
		a.writeError(w, err)
		return
	}
	res, err := a.engine.Simulate(snap, req.PolicyName)
	if err != nil {
		a.writeError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, res)
}

func (a *API) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	sector := domain.SectorProfile{ID: req.SectorID, Name: req.SectorName}
	if req.SectorID != 0 {
		snap, err := a.store.Get(req.SectorID)
		if err != nil {
			a.writeError(w, err)
			return
		}
		sector = snap.Sector
	}

	ev, err := a.engine.Evaluate(sector, domain.Measurement{
		PM25:         req.PM25,
		PM10:         req.PM10,
		TrafficIndex: req.TrafficIndex,
		WindSpeed:    req.WindSpeed,
		Timestamp:    a.engine.Now(),
	})
	if err != nil {
		a.writeError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, ev)
}

func (a *API) handleAPIStatus(w http.ResponseWriter, _ *http.Request) {
	snaps := a.store.All()
	sectors := make([]sectorSummary, 0, len(snaps))
	live := 0
	for _, snap := range snaps {
		sectors = append(sectors, summarize(snap))
		if snap.DataSource == store.SourceLive {
			live++
		}
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{
		"upstreams":    a.upstreams,
		"live_sectors": live,
		"sectors":      sectors,
		"timestamp":    a.engine.Now(),
	})
}

// sector resolves the {id} path value, writing the error response itself.
func (a *API) sector(w http.ResponseWriter, r *http.Request) (store.Snapshot, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorBody(fmt.Sprintf("invalid sector id %q", r.PathValue("id"))))
		return store.Snapshot{}, false
	}
	snap, err := a.store.Get(id)
	if err != nil {
		a.writeError(w, err)
		return store.Snapshot{}, false
	}
	return snap, true
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		a.logger.Error("request failed", "error", err)
	}
	sharedobs.WriteJSON(w, status, errorBody(err.Error()))
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrSectorNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrReadingUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrInvalidMeasurement):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func summarize(snap store.Snapshot) sectorSummary {
	s := sectorSummary{
		ID:          snap.Sector.ID,
		Name:        snap.Sector.Name,
		Lat:         snap.Sector.Lat,
		Lon:         snap.Sector.Lon,
		TrafficBase: snap.Sector.TrafficBase,
		Available:   snap.Available(),
		DataSource:  string(snap.DataSource),
		Readings:    engine.SnapshotReadings(snap),
	}
	if !snap.LastUpdate.IsZero() {
		lu := snap.LastUpdate
		s.LastUpdate = &lu
	}
	return s
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorBody("invalid request body: "+err.Error()))
		return false
	}
	return true
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

