package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"stockhub/internal/alerts"
	"stockhub/internal/forecast"
)

// Config is the process configuration read from the environment.
type Config struct {
	DatabaseURL string
	Port        int

	JWTSecret string
	JWKSURL   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	ImageBucket    string

	// RefreshInterval is how often the background scheduler fans out
	// per-owner alert generation.
	RefreshInterval time.Duration

	// TuningFile optionally points at a TOML file overriding the forecast
	// defaults.
	TuningFile string
}

// Load reads configuration from the environment. Development defaults keep
// a local compose stack working with no env at all.
func Load() *Config {
	cfg := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		Port:           8080,
		JWTSecret:      os.Getenv("JWT_SECRET"),
		JWKSURL:        os.Getenv("JWKS_URL"),
		RedisAddr:      envOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		MinioEndpoint:  envOrDefault("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: envOrDefault("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey: envOrDefault("MINIO_SECRET_KEY", "minioadmin"),
		MinioUseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
		ImageBucket:    envOrDefault("IMAGE_BUCKET", "item-images"),
		RefreshInterval: 30 * time.Minute,
		TuningFile:      os.Getenv("FORECAST_CONFIG"),
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			cfg.Port = port
		}
	}
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			cfg.RedisDB = db
		}
	}
	if intervalStr := os.Getenv("REFRESH_INTERVAL"); intervalStr != "" {
		if interval, err := time.ParseDuration(intervalStr); err == nil {
			cfg.RefreshInterval = interval
		}
	}

	return cfg
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// tuningFile mirrors the TOML layout:
//
//	[alerts]
//	min_raw_history = 10
//	horizon_days = 14.0
//
//	[forecast]
//	alpha = 0.3
//	linear_weight = 0.5
type tuningFile struct {
	Alerts   alerts.Config   `toml:"alerts"`
	Forecast forecast.Config `toml:"forecast"`
}

// LoadTuning returns the alert-generation configuration, starting from the
// shipped defaults and applying overrides from the TOML file when one is
// configured.
func LoadTuning(filename string) (alerts.Config, error) {
	cfg := alerts.DefaultConfig()
	if filename == "" {
		return cfg, nil
	}

	file := tuningFile{Alerts: cfg, Forecast: cfg.Forecast}
	if _, err := toml.DecodeFile(filename, &file); err != nil {
		return cfg, fmt.Errorf("failed to load tuning file %s: %w", filename, err)
	}

	file.Alerts.Forecast = file.Forecast
	return file.Alerts, nil
}
