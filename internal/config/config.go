package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/squirrel-census/internal/domain"
	"github.com/couchcryptid/squirrel-census/internal/spatial"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Config holds all settings for the wrangler and the dashboard, populated from
// environment variables.
type Config struct {
	// Wrangler inputs and outputs.
	ObservationsPath  string
	ZonesPath         string
	DatasetPath       string
	SummaryPath       string
	ZoneTablePath     string
	SimplifyTolerance float64
	OverlapPolicy     spatial.OverlapPolicy
	LocatorCacheSize  int

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Dashboard settings.
	DatasetWatch       bool
	CORSAllowedOrigins []string
	DefaultBehavior    domain.BehaviorCategory

	// Optional Kafka publishing of zone aggregates.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
// A .env file in the working directory is read first if present; variables already set
// in the environment take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	tolerance, err := parseFloat("SIMPLIFY_TOLERANCE", 0)
	if err != nil {
		return nil, err
	}
	if tolerance < 0 {
		return nil, errors.New("SIMPLIFY_TOLERANCE must not be negative")
	}

	policy, err := spatial.ParseOverlapPolicy(os.Getenv("OVERLAP_POLICY"))
	if err != nil {
		return nil, fmt.Errorf("invalid OVERLAP_POLICY: %w", err)
	}

	cacheSize, err := parseInt("LOCATOR_CACHE_SIZE", 4096)
	if err != nil {
		return nil, err
	}
	if cacheSize <= 0 {
		return nil, errors.New("LOCATOR_CACHE_SIZE must be positive")
	}

	watch, err := parseBool("DATASET_WATCH", false)
	if err != nil {
		return nil, err
	}

	behavior, err := domain.ParseBehaviorCategory(sharedcfg.EnvOrDefault("DEFAULT_BEHAVIOR", string(domain.DefaultCategory)))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_BEHAVIOR: %w", err)
	}

	kafkaEnabled, err := parseBool("KAFKA_ENABLED", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ObservationsPath:  sharedcfg.EnvOrDefault("OBSERVATIONS_PATH", "data/squirrel_census.csv"),
		ZonesPath:         sharedcfg.EnvOrDefault("ZONES_PATH", "data/central_park_geo.geojson"),
		DatasetPath:       sharedcfg.EnvOrDefault("DATASET_PATH", "data/squirrel_plots.json"),
		SummaryPath:       os.Getenv("SUMMARY_PATH"),
		ZoneTablePath:     os.Getenv("ZONE_TABLE_PATH"),
		SimplifyTolerance: tolerance,
		OverlapPolicy:     policy,
		LocatorCacheSize:  cacheSize,

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DatasetWatch:       watch,
		CORSAllowedOrigins: splitList(sharedcfg.EnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),
		DefaultBehavior:    behavior,

		KafkaEnabled: kafkaEnabled,
		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "squirrel-zone-aggregates"),
	}

	if cfg.DatasetPath == "" {
		return nil, errors.New("DATASET_PATH is required")
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q: want json or text", cfg.LogFormat)
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaTopic == "" {
			return nil, errors.New("KAFKA_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

func parseInt(name string, def int) (int, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return n, nil
}

func parseFloat(name string, def float64) (float64, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return f, nil
}

func parseBool(name string, def bool) (bool, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", name, err)
	}
	return b, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
