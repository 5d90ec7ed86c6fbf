package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"datajobs/internal/alias"
	"datajobs/internal/dedup"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Ingest   IngestConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout time.Duration
	PoolMaxConns   int32
	PoolMinConns   int32
}

type AuthConfig struct {
	TokenSecret    string
	TokenExpiresIn time.Duration
}

// IngestConfig holds the policy parameters of the engine. Thresholds are
// tunable per deployment so curation teams can trade precision against
// recall without a code change.
type IngestConfig struct {
	AliasThreshold     float64
	DuplicateThreshold float64
	UpdateThreshold    float64
	BatchWorkers       int
	RetryAttempts      int
	RetryBackoff       time.Duration
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

func Load() (Config, error) {
	cfg := Config{}

	var missing []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key string) string {
		return strings.TrimSpace(os.Getenv(key))
	}

	cfg.App = AppConfig{
		AppName:     req("APP_NAME"),
		Environment: req("APP_ENV"),
		HTTPPort:    req("HTTP_PORT"),
	}

	cfg.Database = DatabaseConfig{
		DBHost:         opt("DB_HOST"),
		DBPort:         opt("DB_PORT"),
		DBName:         opt("DB_NAME"),
		DBUser:         opt("DB_USER"),
		DBPassword:     opt("DB_PASSWORD"),
		DBSSLMode:      opt("DB_SSL_MODE"),
		ConnectTimeout: optDuration("DB_CONNECT_TIMEOUT", 5*time.Second),
		PoolMaxConns:   int32(optInt("DB_POOL_MAX_CONNS", 0)),
		PoolMinConns:   int32(optInt("DB_POOL_MIN_CONNS", 0)),
	}

	cfg.Auth = AuthConfig{
		TokenSecret:    opt("AUTH_TOKEN_SECRET"),
		TokenExpiresIn: optDuration("AUTH_TOKEN_EXPIRES_IN", time.Hour),
	}

	cfg.Ingest = IngestConfig{
		AliasThreshold:     optFloat("INGEST_ALIAS_THRESHOLD", alias.DefaultAcceptThreshold),
		DuplicateThreshold: optFloat("INGEST_DUPLICATE_THRESHOLD", dedup.DefaultDuplicateThreshold),
		UpdateThreshold:    optFloat("INGEST_UPDATE_THRESHOLD", dedup.DefaultUpdateThreshold),
		BatchWorkers:       optInt("INGEST_BATCH_WORKERS", 4),
		RetryAttempts:      optInt("INGEST_RETRY_ATTEMPTS", 3),
		RetryBackoff:       optDuration("INGEST_RETRY_BACKOFF", 500*time.Millisecond),
	}

	if cfg.Ingest.UpdateThreshold >= cfg.Ingest.DuplicateThreshold {
		return Config{}, fmt.Errorf("INGEST_UPDATE_THRESHOLD must be below INGEST_DUPLICATE_THRESHOLD")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}

	return cfg, nil
}

func optInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func optFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func optDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
