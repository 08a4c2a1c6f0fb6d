// Package waqi fetches particulate and traffic-pollutant readings from the
// World Air Quality Index feed API.
package waqi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/couchcryptid/urban-policy-engine/internal/domain"
	"github.com/couchcryptid/urban-policy-engine/internal/observability"
)

// ErrNoReading is returned when neither the geo feed nor any station
// reported a usable pm2.5 value.
var ErrNoReading = errors.New("waqi: no pm2.5 reading")

// maxStations bounds the station fallback per sector.
const maxStations = 2

const (
	sourceGeo     = "waqi_geo"
	sourceStation = "waqi_station"
)

// Client reads air quality for a sector from WAQI.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a WAQI client. The limiter is shared with other upstream
// clients so the whole poller stays under one request budget.
func NewClient(token, baseURL string, timeout time.Duration, limiter *rate.Limiter, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		limiter:    limiter,
		metrics:    metrics,
		logger:     logger,
	}
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string { return c.baseURL }

// AirQuality returns the reading for a sector. The geo feed at the sector's
// coordinates is tried first; when it has no pm2.5 the sector's named
// stations are queried and their values averaged.
func (c *Client) AirQuality(ctx context.Context, sector domain.SectorProfile) (domain.AirQuality, error) {
	geo, err := c.fetch(ctx, fmt.Sprintf("geo:%g;%g", sector.Lat, sector.Lon), sourceGeo)
	if err != nil {
		if ctx.Err() != nil {
			return domain.AirQuality{}, ctx.Err()
		}
		c.logger.Warn("waqi geo lookup failed", "sector_id", sector.ID, "error", err)
	}
	if aq := geo.airQuality(); aq.PM25 != nil {
		aq.Stations = 1
		return aq, nil
	}
	return c.fromStations(ctx, sector)
}

func (c *Client) fromStations(ctx context.Context, sector domain.SectorProfile) (domain.AirQuality, error) {
	stations := sector.Stations
	if len(stations) > maxStations {
		stations = stations[:maxStations]
	}

	var pm25, pm10 []float64
	for _, station := range stations {
		feed, err := c.fetch(ctx, station, sourceStation)
		if err != nil {
			if ctx.Err() != nil {
				return domain.AirQuality{}, ctx.Err()
			}
			c.logger.Warn("waqi station lookup failed", "sector_id", sector.ID, "station", station, "error", err)
			continue
		}
		aq := feed.airQuality()
		if aq.PM25 != nil {
			pm25 = append(pm25, *aq.PM25)
		}
		if aq.PM10 != nil {
			pm10 = append(pm10, *aq.PM10)
		}
	}

	if len(pm25) == 0 {
		return domain.AirQuality{}, fmt.Errorf("%w for sector %d", ErrNoReading, sector.ID)
	}
	return domain.AirQuality{
		PM25:     mean(pm25),
		PM10:     mean(pm10),
		Stations: len(pm25),
	}, nil
}

// fetch requests one feed. A response with status other than "ok" yields an
// empty feed and no error.
func (c *Client) fetch(ctx context.Context, station, source string) (feedData, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return feedData{}, err
	}

	u := fmt.Sprintf("%s/feed/%s/?%s", c.baseURL, station, url.Values{"token": {c.token}}.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return feedData{}, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.UpstreamDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(source, "error").Inc()
		return feedData{}, fmt.Errorf("%s request: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.UpstreamRequests.WithLabelValues(source, "error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return feedData{}, fmt.Errorf("waqi API error: status %d: %s", resp.StatusCode, body)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(source, "error").Inc()
		return feedData{}, fmt.Errorf("decode response: %w", err)
	}
	if env.Status != "ok" {
		c.metrics.UpstreamRequests.WithLabelValues(source, "empty").Inc()
		c.logger.Debug("waqi feed not ok", "station", station, "status", env.Status, "data", string(env.Data))
		return feedData{}, nil
	}

	var data feedData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(source, "error").Inc()
		return feedData{}, fmt.Errorf("decode feed data: %w", err)
	}
	c.metrics.UpstreamRequests.WithLabelValues(source, "success").Inc()
	return data, nil
}

func mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	avg := sum / float64(len(values))
	return &avg
}
