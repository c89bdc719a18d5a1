// SPDX-License-Identifier: MIT

// Package config loads process configuration from the environment and decides
// which storage backend the content repositories run against.
package config

import (
	"fmt"
	"path/filepath"
	"time"
)

// StoreBackend identifies one of the interchangeable Record Store backends.
type StoreBackend string

const (
	// BackendFile keeps one pretty-printed JSON document per collection on
	// local disk. Default for local development.
	BackendFile StoreBackend = "file"
	// BackendRedis keeps one serialized JSON document per collection under a
	// fixed key in a Redis-compatible service. Selected automatically when a
	// Redis URL is configured.
	BackendRedis StoreBackend = "redis"
	// BackendSQLite keeps one typed table per collection in a local SQLite
	// database.
	BackendSQLite StoreBackend = "sqlite"
)

// AppConfig holds the resolved runtime configuration.
type AppConfig struct {
	Listen        string
	DataDir       string
	Backend       StoreBackend
	RedisURL      string
	DBPath        string // SQLite database (registrations, and routes/events on the sqlite backend)
	AdminPassword string
	LogLevel      string

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// FromEnv builds the configuration from CLUBSITE_* environment variables.
//
// Backend selection follows the deployment contract: an explicit
// CLUBSITE_STORE wins; otherwise the presence of a Redis URL routes all
// collection access through the remote KV backend, and local flat-file JSON
// is the fallback.
func FromEnv() (AppConfig, error) {
	dataDir := ParseString("CLUBSITE_DATA_DIR", "data")

	cfg := AppConfig{
		Listen:          ParseString("CLUBSITE_LISTEN", ":8080"),
		DataDir:         dataDir,
		RedisURL:        redisURLFromEnv(),
		DBPath:          ParseString("CLUBSITE_DB_PATH", filepath.Join(dataDir, "registrations.db")),
		AdminPassword:   ParseString("CLUBSITE_ADMIN_PASSWORD", ""),
		LogLevel:        ParseString("LOG_LEVEL", "info"),
		ReadTimeout:     ParseDuration("CLUBSITE_READ_TIMEOUT", 10*time.Second),
		WriteTimeout:    ParseDuration("CLUBSITE_WRITE_TIMEOUT", 30*time.Second),
		ShutdownTimeout: ParseDuration("CLUBSITE_SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	switch backend := StoreBackend(ParseString("CLUBSITE_STORE", "")); backend {
	case BackendFile, BackendRedis, BackendSQLite:
		cfg.Backend = backend
	case "":
		if cfg.RedisURL != "" {
			cfg.Backend = BackendRedis
		} else {
			cfg.Backend = BackendFile
		}
	default:
		return AppConfig{}, fmt.Errorf("config: unknown CLUBSITE_STORE backend %q", backend)
	}

	if cfg.Backend == BackendRedis && cfg.RedisURL == "" {
		return AppConfig{}, fmt.Errorf("config: CLUBSITE_STORE=redis requires CLUBSITE_REDIS_URL")
	}

	return cfg, nil
}

// redisURLFromEnv checks the service-specific variable first, then the
// conventional names managed Redis providers inject.
func redisURLFromEnv() string {
	for _, key := range []string{"CLUBSITE_REDIS_URL", "UPSTASH_REDIS_URL", "REDIS_URL"} {
		if v := ParseString(key, ""); v != "" {
			return v
		}
	}
	return ""
}
