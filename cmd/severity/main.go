package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/couchcryptid/collision-severity-service/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/collision-severity-service/internal/adapter/kafka"
	"github.com/couchcryptid/collision-severity-service/internal/adapter/mapbox"
	"github.com/couchcryptid/collision-severity-service/internal/config"
	"github.com/couchcryptid/collision-severity-service/internal/domain"
	"github.com/couchcryptid/collision-severity-service/internal/model"
	"github.com/couchcryptid/collision-severity-service/internal/observability"
	"github.com/couchcryptid/collision-severity-service/internal/pipeline"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The classifier is loaded once up front; a service without it cannot score.
	fetcher := model.NewFetcher(cfg.ModelCacheDir, cfg.ModelFetchTimeout, 2*time.Minute, logger)
	loader := model.NewLoader(model.Source{Path: cfg.ModelPath, URL: cfg.ModelURL}, fetcher, logger)
	clf, err := loader.Load(ctx)
	if err != nil {
		logger.Error("failed to load model", "error", err)
		os.Exit(1)
	}
	if info, ok := loader.Info(); ok {
		metrics.ModelLoaded.Set(1)
		metrics.ModelInfo.WithLabelValues(info.Name, info.Version, info.Kind).Set(1)
	}
	logger.Info("serious threshold", "threshold", cfg.SeriousThreshold)

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, logger, metrics)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	readiness := []sharedobs.ReadinessChecker{loader}

	var (
		p      *pipeline.Pipeline
		reader *kafkaadapter.Reader
		writer *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		writer = kafkaadapter.NewWriter(cfg, logger)
		scorer := pipeline.NewScorer(clf, cfg.SeriousThreshold, metrics, logger)
		p = pipeline.New(reader, scorer, writer, logger, metrics, cfg.BatchSize)
		readiness = append(readiness, p)
		logger.Info("kafka stream scoring enabled",
			"source_topic", cfg.KafkaSourceTopic, "sink_topic", cfg.KafkaSinkTopic, "group_id", cfg.KafkaGroupID)
	}

	srv := httpadapter.NewServer(httpadapter.Options{
		Addr:      cfg.HTTPAddr,
		Models:    loader,
		Threshold: cfg.SeriousThreshold,
		Geocoder:  geocoder,
		Ready:     httpadapter.Readiness(readiness...),
		RateLimit: rate.Limit(cfg.PredictRateLimit),
		RateBurst: cfg.PredictRateBurst,
		Metrics:   metrics,
		Logger:    logger,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if p != nil {
		g.Go(func() error {
			return p.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("service error", "error", err)
	}

	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
