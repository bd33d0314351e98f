// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Playforge Contributors

// Package config loads service configuration from a YAML file, command
// line flags, and environment variables, in increasing precedence. The
// result is an immutable value constructed once at startup; nothing in
// the service mutates configuration afterwards.
package config

import (
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Environment variables honored for secrets, so they stay out of config
// files and process listings of flags.
const (
	envDatabaseURL = "DATABASE_URL"
	envRedisURL    = "REDIS_URL"
	envJWTSecret   = "AUTHD_JWT_SECRET"
)

// Defaults.
const (
	DefaultHTTPAddr    = ":8080"
	DefaultMetricsAddr = "127.0.0.1:9100"
	DefaultLogFormat   = "json"
	DefaultJWTIssuer   = "authd"
	DefaultJWTTTL      = 6 * time.Minute
)

// JWT holds the token codec's signing policy.
type JWT struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// Config is the full service configuration.
type Config struct {
	HTTPAddr    string
	MetricsAddr string
	LogFormat   string
	DatabaseURL string
	RedisURL    string
	JWT         JWT
}

// Load reads configuration: file (optional), then flags, then
// environment. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	cfg := &Config{
		HTTPAddr:    stringOr(k, "http.addr", DefaultHTTPAddr),
		MetricsAddr: stringOr(k, "metrics.addr", DefaultMetricsAddr),
		LogFormat:   stringOr(k, "log.format", DefaultLogFormat),
		DatabaseURL: k.String("database.url"),
		RedisURL:    k.String("redis.url"),
		JWT: JWT{
			Secret: k.String("jwt.secret"),
			Issuer: stringOr(k, "jwt.issuer", DefaultJWTIssuer),
			TTL:    DefaultJWTTTL,
		},
	}

	if ttl := k.String("jwt.ttl"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, oops.Code("CONFIG_INVALID").
				With("field", "jwt.ttl").
				Wrap(err)
		}
		cfg.JWT.TTL = d
	}

	// Environment wins over file and flags for secrets and endpoints.
	if v := os.Getenv(envDatabaseURL); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv(envRedisURL); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv(envJWTSecret); v != "" {
		cfg.JWT.Secret = v
	}

	return cfg, nil
}

// Validate checks the fields the serve command cannot run without.
func (c *Config) Validate() error {
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").
			With("field", "log.format").
			Errorf("log format must be 'json' or 'text', got %q", c.LogFormat)
	}
	if c.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").
			With("field", "database.url").
			Errorf("database URL is required (set %s)", envDatabaseURL)
	}
	if c.JWT.Secret == "" {
		return oops.Code("CONFIG_INVALID").
			With("field", "jwt.secret").
			Errorf("JWT signing secret is required (set %s)", envJWTSecret)
	}
	if c.JWT.TTL <= 0 {
		return oops.Code("CONFIG_INVALID").
			With("field", "jwt.ttl").
			Errorf("JWT TTL must be positive")
	}
	return nil
}

func stringOr(k *koanf.Koanf, key, fallback string) string {
	if v := k.String(key); v != "" {
		return v
	}
	return fallback
}
