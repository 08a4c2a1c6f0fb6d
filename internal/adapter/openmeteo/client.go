// Package openmeteo fetches current wind speed from the Open-Meteo forecast API.
package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/couchcryptid/urban-policy-engine/internal/domain"
	"github.com/couchcryptid/urban-policy-engine/internal/observability"
)

// ErrNoWind is returned when the response carries no current wind speed.
var ErrNoWind = errors.New("open-meteo: no current windspeed")

const source = "open_meteo"

// Client reads current weather from Open-Meteo.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an Open-Meteo client.
func NewClient(baseURL string, timeout time.Duration, limiter *rate.Limiter, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		limiter:    limiter,
		metrics:    metrics,
		logger:     logger,
	}
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string { return c.baseURL }

// WindSpeed returns the current wind speed at the sector in m/s, rounded to
// one decimal.
func (c *Client) WindSpeed(ctx context.Context, sector domain.SectorProfile) (float64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	params := url.Values{
		"latitude":        {strconv.FormatFloat(sector.Lat, 'f', -1, 64)},
		"longitude":       {strconv.FormatFloat(sector.Lon, 'f', -1, 64)},
		"current_weather": {"true"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/forecast?"+params.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.UpstreamDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(source, "error").Inc()
		return 0, fmt.Errorf("forecast request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.UpstreamRequests.WithLabelValues(source, "error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("open-meteo API error: status %d: %s", resp.StatusCode, body)
	}

	var fr forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&fr); err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(source, "error").Inc()
		return 0, fmt.Errorf("decode response: %w", err)
	}
	if fr.CurrentWeather == nil || fr.CurrentWeather.WindSpeed == nil {
		c.metrics.UpstreamRequests.WithLabelValues(source, "empty").Inc()
		return 0, ErrNoWind
	}
	c.metrics.UpstreamRequests.WithLabelValues(source, "success").Inc()
	return kmhToMS(*fr.CurrentWeather.WindSpeed), nil
}

func kmhToMS(kmh float64) float64 {
	return math.Round(kmh/3.6*10) / 10
}

// Open-Meteo API response types.

type forecastResponse struct {
	CurrentWeather *currentWeather `json:"current_weather"`
}

type currentWeather struct {
	WindSpeed *float64 `json:"windspeed"` // km/h
}
