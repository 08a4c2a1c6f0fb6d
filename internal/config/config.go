package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata" // SECTOR_TIMEZONE must resolve on minimal images

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/urban-policy-engine/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Polling of upstream sources.
	PollInterval      time.Duration
	SectorDelay       time.Duration
	UpstreamTimeout   time.Duration
	UpstreamRateLimit float64 // requests per second, shared by all upstream clients

	WAQIToken        string
	WAQIBaseURL      string
	OpenMeteoBaseURL string

	SectorsFile string
	Sectors     []domain.SectorProfile
	Location    *time.Location // hour-of-day for traffic and mixing heuristics

	// Assessment publishing.
	KafkaEnabled         bool
	KafkaBrokers         []string
	KafkaAssessmentTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	pollInterval, err := parseDuration("POLL_INTERVAL", "60s")
	if err != nil {
		return nil, err
	}
	sectorDelay, err := parseDuration("SECTOR_DELAY", "2s")
	if err != nil {
		return nil, err
	}
	upstreamTimeout, err := parseDuration("UPSTREAM_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}

	rateLimit, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("UPSTREAM_RATE_LIMIT", "2"), 64)
	if err != nil || rateLimit <= 0 {
		return nil, errors.New("invalid UPSTREAM_RATE_LIMIT")
	}

	loc, err := time.LoadLocation(sharedcfg.EnvOrDefault("SECTOR_TIMEZONE", "Asia/Kolkata"))
	if err != nil {
		return nil, fmt.Errorf("invalid SECTOR_TIMEZONE: %w", err)
	}

	sectorsFile := os.Getenv("SECTORS_FILE")
	sectors := DefaultSectors()
	if sectorsFile != "" {
		sectors, err = LoadSectors(sectorsFile)
		if err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		PollInterval:      pollInterval,
		SectorDelay:       sectorDelay,
		UpstreamTimeout:   upstreamTimeout,
		UpstreamRateLimit: rateLimit,

		WAQIToken:        sharedcfg.EnvOrDefault("WAQI_API_KEY", "demo"),
		WAQIBaseURL:      sharedcfg.EnvOrDefault("WAQI_BASE", "https://api.waqi.info"),
		OpenMeteoBaseURL: sharedcfg.EnvOrDefault("OPEN_METEO_BASE", "https://api.open-meteo.com"),

		SectorsFile: sectorsFile,
		Sectors:     sectors,
		Location:    loc,

		KafkaEnabled:         os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:         sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaAssessmentTopic: sharedcfg.EnvOrDefault("KAFKA_ASSESSMENT_TOPIC", "sector-assessments"),
	}

	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaAssessmentTopic == "" {
		return nil, errors.New("KAFKA_ASSESSMENT_TOPIC is required")
	}

	return cfg, nil
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}
