package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/collision-severity-service/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Classifier artifact and decision rule.
	ModelPath         string
	ModelURL          string
	ModelCacheDir     string
	ModelFetchTimeout time.Duration
	SeriousThreshold  float64

	PredictRateLimit float64
	PredictRateBurst int

	// Stream scoring is optional; the remaining Kafka fields are ignored when disabled.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaSourceTopic   string
	KafkaSinkTopic     string
	KafkaGroupID       string
	BatchSize          int
	BatchFlushInterval time.Duration

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := parsePositiveDuration("MODEL_FETCH_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	threshold, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("SERIOUS_THRESHOLD", "0.55"), 64)
	if err != nil || !domain.ValidThreshold(threshold) {
		return nil, errors.New("invalid SERIOUS_THRESHOLD: must be a number in [0, 1]")
	}

	rateLimit, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("PREDICT_RATE_LIMIT", "20"), 64)
	if err != nil || rateLimit <= 0 {
		return nil, errors.New("invalid PREDICT_RATE_LIMIT: must be a positive number")
	}
	rateBurst, err := strconv.Atoi(sharedcfg.EnvOrDefault("PREDICT_RATE_BURST", "40"))
	if err != nil || rateBurst <= 0 {
		return nil, errors.New("invalid PREDICT_RATE_BURST: must be a positive integer")
	}

	mapboxTimeout, err := parsePositiveDuration("MAPBOX_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		ModelPath:         os.Getenv("MODEL_PATH"),
		ModelURL:          os.Getenv("MODEL_URL"),
		ModelCacheDir:     sharedcfg.EnvOrDefault("MODEL_CACHE_DIR", os.TempDir()),
		ModelFetchTimeout: fetchTimeout,
		SeriousThreshold:  threshold,

		PredictRateLimit: rateLimit,
		PredictRateBurst: rateBurst,

		KafkaEnabled:       os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "collision-reports"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "collision-severity"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "collision-severity"),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseMapboxCacheSize(),
	}

	switch {
	case cfg.ModelPath == "" && cfg.ModelURL == "":
		return nil, errors.New("one of MODEL_PATH or MODEL_URL is required")
	case cfg.ModelPath != "" && cfg.ModelURL != "":
		return nil, errors.New("MODEL_PATH and MODEL_URL are mutually exclusive")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required")
		}
		if cfg.KafkaSourceTopic == "" {
			return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_SINK_TOPIC is required")
		}
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
