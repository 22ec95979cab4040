/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

// Package config loads the engine's environment-variable configuration
// per SPEC_FULL.md §6/§10.3. There is no ConfigMap or secret backend in
// this domain — configuration is env-var only, loaded once at startup
// and failing fast as a domain.ConfigError.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/atlaspim/syncengine/internal/domain"
)

// Config is the fully-resolved, validated runtime configuration.
type Config struct {
	UpstreamBaseURL string
	DBDSN           string
	RedisURL        string

	ObjectStoreAccessKey string
	ObjectStoreSecret    string
	ObjectStoreBucket    string
	ObjectStoreEndpoint  string
	ObjectStorePublicURL string

	ConcurrencyFamilies  int
	ConcurrencyImages    int
	ConcurrencySuppliers int

	TimeoutSupplier time.Duration
	TimeoutFamily   time.Duration
	TimeoutImage    time.Duration

	LockTTL time.Duration
	StopTTL time.Duration

	LogLevel string

	// AdminAPIToken gates the control surface's mutating/listing
	// endpoints (§6's 401/403 status codes). Empty disables auth, which
	// is only acceptable behind a trusted network boundary.
	AdminAPIToken string
	// RateLimitPerMinute bounds control-surface requests per client,
	// mirroring the teacher's gateway rate limiter. 0 disables limiting.
	RateLimitPerMinute int

	// SinkFulltextEndpoint / SinkSemanticEndpoint point the downstream
	// Sinks at their HTTP targets (§9's DN5 generalization of the
	// teacher's vectorstore).
	SinkFulltextEndpoint string
	SinkSemanticEndpoint string
}

// Load reads and validates every variable named in §6. It returns a
// *domain.ConfigError on the first missing required variable or
// unparseable numeric value, matching the engine's exit-code-1 contract
// at startup.
func Load() (*Config, error) {
	cfg := &Config{
		ConcurrencyFamilies:  3,
		ConcurrencyImages:    10,
		ConcurrencySuppliers: 1,
		TimeoutSupplier:      1_800_000 * time.Millisecond,
		TimeoutFamily:        300_000 * time.Millisecond,
		TimeoutImage:         120_000 * time.Millisecond,
		LockTTL:              3_600_000 * time.Millisecond,
		StopTTL:              300_000 * time.Millisecond,
		LogLevel:             "info",
	}

	var err error
	if cfg.UpstreamBaseURL, err = requireString("UPSTREAM_BASE_URL"); err != nil {
		return nil, err
	}
	if cfg.DBDSN, err = requireString("DB_DSN"); err != nil {
		return nil, err
	}
	if cfg.RedisURL, err = requireString("REDIS_URL"); err != nil {
		return nil, err
	}
	if cfg.ObjectStoreAccessKey, err = requireString("OBJECT_STORE_ACCESS_KEY"); err != nil {
		return nil, err
	}
	if cfg.ObjectStoreSecret, err = requireString("OBJECT_STORE_SECRET"); err != nil {
		return nil, err
	}
	if cfg.ObjectStoreBucket, err = requireString("OBJECT_STORE_BUCKET"); err != nil {
		return nil, err
	}
	if cfg.ObjectStoreEndpoint, err = requireString("OBJECT_STORE_ENDPOINT"); err != nil {
		return nil, err
	}
	if cfg.ObjectStorePublicURL, err = requireString("OBJECT_STORE_PUBLIC_URL"); err != nil {
		return nil, err
	}

	if v := os.Getenv("CONCURRENCY_FAMILIES"); v != "" {
		if cfg.ConcurrencyFamilies, err = strconv.Atoi(v); err != nil {
			return nil, &domain.ConfigError{Var: "CONCURRENCY_FAMILIES", Reason: err.Error()}
		}
	}
	if v := os.Getenv("CONCURRENCY_IMAGES"); v != "" {
		if cfg.ConcurrencyImages, err = strconv.Atoi(v); err != nil {
			return nil, &domain.ConfigError{Var: "CONCURRENCY_IMAGES", Reason: err.Error()}
		}
	}
	// CONCURRENCY_SUPPLIERS is fixed at 1 per §6; not configurable.

	if d, err := durationMsVar("TIMEOUT_SUPPLIER_MS", cfg.TimeoutSupplier); err != nil {
		return nil, err
	} else {
		cfg.TimeoutSupplier = d
	}
	if d, err := durationMsVar("TIMEOUT_FAMILY_MS", cfg.TimeoutFamily); err != nil {
		return nil, err
	} else {
		cfg.TimeoutFamily = d
	}
	if d, err := durationMsVar("TIMEOUT_IMAGE_MS", cfg.TimeoutImage); err != nil {
		return nil, err
	} else {
		cfg.TimeoutImage = d
	}
	if d, err := durationMsVar("LOCK_TTL_MS", cfg.LockTTL); err != nil {
		return nil, err
	} else {
		cfg.LockTTL = d
	}
	if d, err := durationMsVar("STOP_TTL_MS", cfg.StopTTL); err != nil {
		return nil, err
	} else {
		cfg.StopTTL = d
	}

	cfg.AdminAPIToken = os.Getenv("ADMIN_API_TOKEN")
	cfg.SinkFulltextEndpoint = os.Getenv("SINK_FULLTEXT_ENDPOINT")
	cfg.SinkSemanticEndpoint = os.Getenv("SINK_SEMANTIC_ENDPOINT")

	cfg.RateLimitPerMinute = 60
	if v := os.Getenv("RATE_LIMIT_PER_MINUTE"); v != "" {
		if cfg.RateLimitPerMinute, err = strconv.Atoi(v); err != nil {
			return nil, &domain.ConfigError{Var: "RATE_LIMIT_PER_MINUTE", Reason: err.Error()}
		}
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		switch v {
		case "debug", "info", "warn", "error":
			cfg.LogLevel = v
		default:
			return nil, &domain.ConfigError{Var: "LOG_LEVEL", Reason: "must be one of debug/info/warn/error"}
		}
	}

	return cfg, nil
}

func requireString(name string) (string, error) {
	v := os.Getenv(name)
	if v == "" {
		return "", &domain.ConfigError{Var: name, Reason: "required but not set"}
	}
	return v, nil
}

func durationMsVar(name string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(name)
	if v == "" {
		return def, nil
	}
	ms, err := strconv.Atoi(v)
	if err != nil {
		return 0, &domain.ConfigError{Var: name, Reason: err.Error()}
	}
	return time.Duration(ms) * time.Millisecond, nil
}
