package httpadapter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/urban-policy-engine/internal/adapter/httpadapter"
	"github.com/couchcryptid/urban-policy-engine/internal/domain"
	"github.com/couchcryptid/urban-policy-engine/internal/engine"
	"github.com/couchcryptid/urban-policy-engine/internal/observability"
	"github.com/couchcryptid/urban-policy-engine/internal/store"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

var now = time.Date(2026, 1, 15, 6, 30, 0, 0, time.UTC)

func newTestServer(t *testing.T, readyErr error) (*httpadapter.Server, *store.Store) {
	t.Helper()
	st, err := store.New([]domain.SectorProfile{
		{ID: 1, Name: "South Delhi Commercial", Lat: 28.5245, Lon: 77.2066, TrafficBase: 0.75},
		{ID: 2, Name: "Gurgaon Industrial Hub", Lat: 28.4595, Lon: 77.0266, TrafficBase: 0.45},
	})
	require.NoError(t, err)
	require.NoError(t, st.Put(store.Snapshot{
		Sector:        domain.SectorProfile{ID: 1},
		Measurement:   &domain.Measurement{PM25: 300, PM10: 200, TrafficIndex: 0.6, WindSpeed: 1.5, Timestamp: now},
		DataSource:    store.SourceLive,
		TrafficSource: store.TrafficFromPollutants,
		Stations:      1,
		LastUpdate:    now,
	}))

	eng := engine.New(clockwork.NewFakeClockAt(now), time.FixedZone("IST", 5*3600+1800), observability.NewMetricsForTesting())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	api := httpadapter.NewAPI(st, eng, httpadapter.Upstreams{WAQI: "https://api.waqi.info", OpenMeteo: "https://api.open-meteo.com"}, logger)
	return httpadapter.NewServer(":0", api, &mockReadiness{err: readyErr}, logger), st
}

func do(t *testing.T, srv *httpadapter.Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(method, path, r))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthzReturns200(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/healthz", nil).Code)
}

func TestReadyz(t *testing.T) {
	ready, _ := newTestServer(t, nil)
	assert.Equal(t, http.StatusOK, do(t, ready, http.MethodGet, "/readyz", nil).Code)

	notReady, _ := newTestServer(t, errors.New("no sector has a reading yet"))
	assert.Equal(t, http.StatusServiceUnavailable, do(t, notReady, http.MethodGet, "/readyz", nil).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := do(t, srv, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoot(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := do(t, srv, http.MethodGet, "/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "urban-policy-engine", decode(t, rec)["service"])
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSectors(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := do(t, srv, http.MethodGet, "/sectors", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var sectors []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sectors))
	require.Len(t, sectors, 2)
	assert.Equal(t, "waqi_live", sectors[0]["data_source"])
	assert.Equal(t, true, sectors[0]["available"])
	readings := sectors[0]["readings"].(map[string]any)
	assert.Equal(t, 300.0, readings["pm25"])
	assert.Equal(t, 200.0, readings["pm10"])
	assert.Equal(t, 0.6, readings["traffic_index"])
	assert.Equal(t, 1.5, readings["wind_speed"])
	assert.Equal(t, "initializing", sectors[1]["data_source"])
	assert.Nil(t, sectors[1]["readings"])
	assert.Nil(t, sectors[1]["last_update"])
}

func TestSectorStatus(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := do(t, srv, http.MethodGet, "/sectors/1/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "hazardous", body["severity"])
	assert.Equal(t, "fine_particles", body["cause"])
	readings := body["readings"].(map[string]any)
	assert.Equal(t, 300.0, readings["pm25"])
}

func TestSectorStatus_Errors(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodGet, "/sectors/9/status", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodGet, "/sectors/abc/status", nil).Code)

	rec := do(t, srv, http.MethodGet, "/sectors/2/status", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "unavailable")
}

func TestSectorPolicy(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := do(t, srv, http.MethodGet, "/sectors/1/policy", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, true, body["has_policy"])
	policy := body["policy"].(map[string]any)
	assert.Equal(t, domain.InterventionTruckBan, policy["name"])
	assert.Equal(t, "critical", policy["priority"])
}

func TestSimulate(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := do(t, srv, http.MethodPost, "/simulate", map[string]any{
		"sector_id":   1,
		"policy_name": domain.InterventionTruckBan,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, 300.0, body["current_pm25"])
	assert.Equal(t, "high", body["confidence"])
	projected := body["projected"].(map[string]any)
	assert.Equal(t, 264.9, projected["expected"])
}

func TestSimulate_BadRequests(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	assert.Equal(t, http.StatusBadRequest,
		do(t, srv, http.MethodPost, "/simulate", map[string]any{"sector_id": 1}).Code)
	assert.Equal(t, http.StatusNotFound,
		do(t, srv, http.MethodPost, "/simulate", map[string]any{"sector_id": 7, "policy_name": "x"}).Code)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/simulate", bytes.NewBufferString("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEvaluate(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := do(t, srv, http.MethodPost, "/evaluate", map[string]any{
		"sector_id":     2,
		"pm25":          280,
		"pm10":          320,
		"traffic_index": 0.7,
		"wind_speed":    1.0,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	rec2 := body["recommendation"].(map[string]any)
	policy := rec2["policy"].(map[string]any)
	assert.Equal(t, domain.InterventionIndustrialControl, policy["name"])
	assert.NotNil(t, body["simulation"])
}

func TestEvaluate_InvalidMeasurement(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := do(t, srv, http.MethodPost, "/evaluate", map[string]any{
		"sector_name":   "Anywhere",
		"pm25":          50,
		"pm10":          60,
		"traffic_index": 1.4,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPIStatus(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := do(t, srv, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, 1.0, body["live_sectors"])
	upstreams := body["upstreams"].(map[string]any)
	assert.Equal(t, "https://api.waqi.info", upstreams["waqi"])
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := do(t, srv, http.MethodOptions, "/simulate", nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}
