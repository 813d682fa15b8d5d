package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "aren.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML unmarshals the file at path over cfg. A missing file leaves the
// defaults in place.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // the path is our own default or flag, not user input
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg. Empty and unparsable
// values leave the lower layers in place.
func loadEnv(cfg *Config) {
	overlay(&cfg.Server.Port, "AREN_PORT", rawString)
	overlay(&cfg.Server.CORSOrigin, "AREN_CORS_ORIGIN", rawString)

	overlay(&cfg.Postgres.DSN, "DATABASE_URL", rawString)
	overlay(&cfg.Postgres.MaxConns, "AREN_PG_MAX_CONNS", parseInt32)
	overlay(&cfg.Postgres.MinConns, "AREN_PG_MIN_CONNS", parseInt32)
	overlay(&cfg.Postgres.MaxConnLifetime, "AREN_PG_MAX_CONN_LIFETIME", time.ParseDuration)
	overlay(&cfg.Postgres.MaxConnIdleTime, "AREN_PG_MAX_CONN_IDLE_TIME", time.ParseDuration)
	overlay(&cfg.Postgres.HealthCheck, "AREN_PG_HEALTH_CHECK", time.ParseDuration)

	overlay(&cfg.NATS.URL, "NATS_URL", rawString)

	overlay(&cfg.Cache.L1MaxSizeMB, "AREN_CACHE_L1_SIZE_MB", parseInt64)
	overlay(&cfg.Cache.L1TTL, "AREN_CACHE_L1_TTL", time.ParseDuration)
	overlay(&cfg.Cache.L2Bucket, "AREN_CACHE_L2_BUCKET", rawString)
	overlay(&cfg.Cache.L2TTL, "AREN_CACHE_L2_TTL", time.ParseDuration)

	overlay(&cfg.Logging.Level, "AREN_LOG_LEVEL", rawString)
	overlay(&cfg.Logging.Service, "AREN_LOG_SERVICE", rawString)
	overlay(&cfg.Logging.Async, "AREN_LOG_ASYNC", strconv.ParseBool)

	overlay(&cfg.Breaker.MaxFailures, "AREN_BREAKER_MAX_FAILURES", strconv.Atoi)
	overlay(&cfg.Breaker.Timeout, "AREN_BREAKER_TIMEOUT", time.ParseDuration)

	overlay(&cfg.Rate.RequestsPerSecond, "AREN_RATE_RPS", parseFloat)
	overlay(&cfg.Rate.Burst, "AREN_RATE_BURST", strconv.Atoi)
	overlay(&cfg.Rate.CleanupInterval, "AREN_RATE_CLEANUP_INTERVAL", time.ParseDuration)
	overlay(&cfg.Rate.MaxIdleTime, "AREN_RATE_MAX_IDLE_TIME", time.ParseDuration)

	overlay(&cfg.Dispatch.MaxConcurrentCalls, "AREN_DISPATCH_MAX_CONCURRENT", strconv.Atoi)
	overlay(&cfg.Dispatch.HandlerTimeout, "AREN_DISPATCH_HANDLER_TIMEOUT", time.ParseDuration)
	overlay(&cfg.Dispatch.DefaultDevice, "AREN_DISPATCH_DEFAULT_DEVICE", rawString)

	overlay(&cfg.Weather.Endpoint, "AREN_WEATHER_ENDPOINT", rawString)
	overlay(&cfg.Weather.Units, "AREN_WEATHER_UNITS", rawString)
	overlay(&cfg.Weather.CacheTTL, "AREN_WEATHER_CACHE_TTL", time.ParseDuration)

	overlay(&cfg.Translate.Endpoint, "AREN_TRANSLATE_ENDPOINT", rawString)

	overlay(&cfg.Search.Endpoint, "AREN_SEARCH_ENDPOINT", rawString)
	overlay(&cfg.Search.CacheTTL, "AREN_SEARCH_CACHE_TTL", time.ParseDuration)

	overlay(&cfg.Telemetry.Enabled, "AREN_OTEL_ENABLED", strconv.ParseBool)
	overlay(&cfg.Telemetry.Endpoint, "AREN_OTEL_ENDPOINT", rawString)
	overlay(&cfg.Telemetry.SampleRatio, "AREN_OTEL_SAMPLE_RATIO", parseFloat)

	overlay(&cfg.MCP.Addr, "AREN_MCP_ADDR", rawString)
	overlay(&cfg.MCP.APIKey, "AREN_MCP_API_KEY", rawString)

	overlay(&cfg.Prefs.Dir, "AREN_PREFS_DIR", rawString)
}

// overlay stores the parsed environment value for key in dst. Unset keys
// and values parse rejects are skipped.
func overlay[T any](dst *T, key string, parse func(string) (T, error)) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if parsed, err := parse(v); err == nil {
		*dst = parsed
	}
}

func rawString(v string) (string, error) { return v, nil }

func parseInt32(v string) (int32, error) {
	n, err := strconv.ParseInt(v, 10, 32)
	return int32(n), err
}

func parseInt64(v string) (int64, error) { return strconv.ParseInt(v, 10, 64) }

func parseFloat(v string) (float64, error) { return strconv.ParseFloat(v, 64) }

// validate checks the fields the process cannot run without.
func validate(cfg *Config) error {
	checks := []struct {
		bad bool
		msg string
	}{
		{cfg.Server.Port == "", "server.port is required"},
		{cfg.Postgres.DSN == "", "postgres.dsn is required"},
		{cfg.NATS.URL == "", "nats.url is required"},
		{cfg.Postgres.MaxConns < 1, "postgres.max_conns must be >= 1"},
		{cfg.Breaker.MaxFailures < 1, "breaker.max_failures must be >= 1"},
		{cfg.Rate.Burst < 1, "rate.burst must be >= 1"},
		{cfg.Dispatch.MaxConcurrentCalls < 1, "dispatch.max_concurrent_calls must be >= 1"},
	}
	for _, c := range checks {
		if c.bad {
			return errors.New(c.msg)
		}
	}
	return nil
}
