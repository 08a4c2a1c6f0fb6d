package waqi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/couchcryptid/urban-policy-engine/internal/domain"
	"github.com/couchcryptid/urban-policy-engine/internal/observability"
)

const (
	testToken         = "test-token"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

var testSector = domain.SectorProfile{
	ID:       1,
	Name:     "South Delhi Commercial",
	Lat:      28.5245,
	Lon:      77.2066,
	Stations: []string{"@delhi-iitdelhi", "@delhi-rkpuram", "@delhi-lodhi-road"},
}

func testClient(baseURL string) *Client {
	return NewClient(testToken, baseURL, 5*time.Second, rate.NewLimiter(rate.Inf, 1),
		observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeJSON(t *testing.T, w http.ResponseWriter, body string) {
	t.Helper()
	w.Header().Set(headerContentType, contentTypeJSON)
	_, err := io.WriteString(w, body)
	require.NoError(t, err)
}

func TestClient_GeoFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/feed/geo:28.5245;77.2066/", r.URL.Path)
		assert.Equal(t, testToken, r.URL.Query().Get("token"))
		writeJSON(t, w, `{"status":"ok","data":{"city":{"name":"IIT Delhi"},"iaqi":{
			"pm25":{"v":182},"pm10":{"v":240},"no2":{"v":75},"co":{"v":16}}}}`)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	aq, err := c.AirQuality(context.Background(), testSector)
	require.NoError(t, err)

	require.NotNil(t, aq.PM25)
	require.NotNil(t, aq.PM10)
	require.NotNil(t, aq.TrafficIndex)
	assert.Equal(t, 182.0, *aq.PM25)
	assert.Equal(t, 240.0, *aq.PM10)
	assert.Equal(t, 0.38, *aq.TrafficIndex) // 0.5*0.6 + 0.2*0.4
	assert.Equal(t, "IIT Delhi", aq.Station)
	assert.Equal(t, 1, aq.Stations)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.UpstreamRequests.WithLabelValues(sourceGeo, "success")))
}

func TestClient_StationFallbackAverages(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		switch {
		case strings.HasPrefix(r.URL.Path, "/feed/geo:"):
			writeJSON(t, w, `{"status":"error","data":"Unknown station"}`)
		case r.URL.Path == "/feed/@delhi-iitdelhi/":
			writeJSON(t, w, `{"status":"ok","data":{"iaqi":{"pm25":{"v":200},"pm10":{"v":300}}}}`)
		case r.URL.Path == "/feed/@delhi-rkpuram/":
			writeJSON(t, w, `{"status":"ok","data":{"iaqi":{"pm25":{"v":100}}}}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	aq, err := c.AirQuality(context.Background(), testSector)
	require.NoError(t, err)

	assert.Equal(t, int32(3), calls.Load(), "only the first two stations are queried")
	require.NotNil(t, aq.PM25)
	assert.Equal(t, 150.0, *aq.PM25)
	require.NotNil(t, aq.PM10)
	assert.Equal(t, 300.0, *aq.PM10)
	assert.Equal(t, 2, aq.Stations)
	assert.Nil(t, aq.TrafficIndex)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.UpstreamRequests.WithLabelValues(sourceGeo, "empty")))
}

func TestClient_DropsOutOfRangeValues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/feed/geo:") {
			writeJSON(t, w, `{"status":"ok","data":{"iaqi":{"pm25":{"v":1500},"pm10":{"v":2500}}}}`)
			return
		}
		writeJSON(t, w, `{"status":"ok","data":{"iaqi":{"pm25":{"v":-4}}}}`)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).AirQuality(context.Background(), testSector)
	require.ErrorIs(t, err, ErrNoReading)
}

func TestClient_DropsNegativePollutants(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, `{"status":"ok","data":{"iaqi":{
			"pm25":{"v":140},"pm10":{"v":210},"no2":{"v":-20},"co":{"v":16}}}}`)
	}))
	defer srv.Close()

	aq, err := testClient(srv.URL).AirQuality(context.Background(), testSector)
	require.NoError(t, err)
	assert.Nil(t, aq.NO2)
	require.NotNil(t, aq.CO)
	require.NotNil(t, aq.TrafficIndex)
	assert.InDelta(t, 0.38, *aq.TrafficIndex, 1e-9) // missing no2 counts as 0.5
}

func TestClient_HTTPErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/feed/geo:") {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeJSON(t, w, `{"status":"ok","data":{"iaqi":{"pm25":{"v":90},"pm10":{"v":120}}}}`)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	aq, err := c.AirQuality(context.Background(), testSector)
	require.NoError(t, err)
	assert.Equal(t, 90.0, *aq.PM25)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.UpstreamRequests.WithLabelValues(sourceGeo, "error")))
}

func TestClient_AllSourcesDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).AirQuality(context.Background(), testSector)
	require.ErrorIs(t, err, ErrNoReading)
}

func TestClient_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, `{"status":"ok","data":{"iaqi":{}}}`)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient(srv.URL).AirQuality(ctx, testSector)
	require.ErrorIs(t, err, context.Canceled)
}

func TestFeedData_AirQualityWithoutPollutants(t *testing.T) {
	aq := feedData{IAQI: map[string]iaqiValue{}}.airQuality()
	assert.Nil(t, aq.PM25)
	assert.Nil(t, aq.TrafficIndex)
}
