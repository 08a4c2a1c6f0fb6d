package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"

	"github.com/couchcryptid/urban-policy-engine/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/urban-policy-engine/internal/adapter/kafka"
	"github.com/couchcryptid/urban-policy-engine/internal/adapter/openmeteo"
	"github.com/couchcryptid/urban-policy-engine/internal/adapter/waqi"
	"github.com/couchcryptid/urban-policy-engine/internal/config"
	"github.com/couchcryptid/urban-policy-engine/internal/engine"
	"github.com/couchcryptid/urban-policy-engine/internal/observability"
	"github.com/couchcryptid/urban-policy-engine/internal/poller"
	"github.com/couchcryptid/urban-policy-engine/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	st, err := store.New(cfg.Sectors)
	if err != nil {
		logger.Error("failed to create sector store", "error", err)
		os.Exit(1)
	}
	eng := engine.New(clock, cfg.Location, metrics)

	// One request budget shared by every upstream client.
	limiter := rate.NewLimiter(rate.Limit(cfg.UpstreamRateLimit), 1)
	air := waqi.NewClient(cfg.WAQIToken, cfg.WAQIBaseURL, cfg.UpstreamTimeout, limiter, metrics, logger)
	wind := openmeteo.NewClient(cfg.OpenMeteoBaseURL, cfg.UpstreamTimeout, limiter, metrics, logger)

	opts := poller.Options{Interval: cfg.PollInterval, SectorDelay: cfg.SectorDelay}
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		opts.Publisher = writer
		logger.Info("assessment publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaAssessmentTopic)
	} else {
		logger.Info("assessment publishing disabled")
	}

	p := poller.New(st, air, wind, eng, clock, logger, metrics, opts)

	api := httpadapter.NewAPI(st, eng, httpadapter.Upstreams{WAQI: air.BaseURL(), OpenMeteo: wind.BaseURL()}, logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, api, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start sector poller.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("poller error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
