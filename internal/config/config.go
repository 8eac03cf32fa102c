// Package config loads ingestion/worker service configuration from the
// environment and an optional YAML file, mirroring the teacher's koanf-based
// config.Load (internal/config/config.go) generalized from a single flat
// struct to the sections this service needs.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	kfile "github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the merged configuration for both the ingestion and worker
// binaries. Each binary only reads the sections it needs.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Redis    RedisConfig    `koanf:"redis"`
	Worker   WorkerConfig   `koanf:"worker"`
	Cloud    CloudConfig    `koanf:"cloud"`
	Database DatabaseConfig `koanf:"database"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
}

type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
}

// WorkerConfig holds both the C5 dispatch target and the C6/C7 pool sizes,
// named after the exact env vars spec §6 specifies.
type WorkerConfig struct {
	Host                string `koanf:"host"`
	Password            string `koanf:"password"`
	CreatorConcurrency  int    `koanf:"creator_concurrency"`
	ExecutorConcurrency int    `koanf:"executor_concurrency"`
	// Port is where this worker's own /api/events receiver listens (spec
	// §4.5/§6): the other end of the WORKER_HOST/WORKER_PASSWORD pair C5
	// dispatches to.
	Port int `koanf:"port"`
}

// CloudConfig gates rate limiting (spec §4.1) and carries the error-tracker
// DSN (spec §6). ReportErrors exposes whether the DSN is set; no service in
// this module calls it, so no errors are sent to an error tracker.
type CloudConfig struct {
	Region    string `koanf:"region"`
	SentryDSN string `koanf:"sentry_dsn"`
}

// IsCloud reports whether this deployment should enforce rate limits.
func (c CloudConfig) IsCloud() bool {
	return c.Region != ""
}

// ReportErrors reports whether a Sentry-shaped error tracker is configured.
func (c CloudConfig) ReportErrors() bool {
	return c.SentryDSN != ""
}

type DatabaseConfig struct {
	Path string `koanf:"path"`
}

// envMapping maps the exact environment variable names spec §6 names to
// dotted koanf keys. Unlike the teacher's single "POLY_" prefix, this
// service's env vars don't share one prefix, so each is mapped explicitly.
var envMapping = map[string]string{
	"LANGFUSE_EVAL_CREATOR_WORKER_CONCURRENCY":   "worker.creator_concurrency",
	"LANGFUSE_EVAL_EXECUTION_WORKER_CONCURRENCY": "worker.executor_concurrency",
	"WORKER_HOST":                       "worker.host",
	"WORKER_PASSWORD":                   "worker.password",
	"WORKER_EVENTS_PORT":                "worker.port",
	"NEXT_PUBLIC_LANGFUSE_CLOUD_REGION": "cloud.region",
	"NEXT_PUBLIC_SENTRY_DSN":            "cloud.sentry_dsn",
	"REDIS_ADDR":                        "redis.addr",
	"REDIS_PASSWORD":                    "redis.password",
	"SERVER_PORT":                       "server.port",
	"DATABASE_PATH":                     "database.path",
}

// Load reads defaults, an optional YAML file at path (ignored if empty or
// missing), then environment variables (highest precedence), matching the
// teacher's file-then-env layering in adapters/config/file/provider.go.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	k.Set("server.port", 3000)
	k.Set("redis.addr", "127.0.0.1:6379")
	k.Set("worker.creator_concurrency", 5)
	k.Set("worker.executor_concurrency", 5)
	k.Set("worker.port", 3030)
	k.Set("database.path", "./data/langfuse.db")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(kfile.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		mapped, ok := envMapping[key]
		if !ok {
			return "", nil
		}
		if strings.HasSuffix(mapped, "concurrency") || strings.HasSuffix(mapped, "port") {
			if n, err := strconv.Atoi(value); err == nil {
				return mapped, n
			}
			return "", nil
		}
		return mapped, value
	}), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}
