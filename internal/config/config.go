// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The Glide Sync Authors

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the
// glide-sync daemon. It aggregates all sub-configurations and is populated
// by merging values from environment variables, command-line flags, and an
// optional JSON file, with hard-coded defaults filling remaining gaps.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// API holds settings for the remote Glide API the engine syncs against.
	API API `envPrefix:"API_"`

	// Storage holds configuration for the on-device persistence backends:
	// the SQLite database and the recording spool directory.
	Storage Storage `envPrefix:"STORAGE_"`

	// HTTP holds the local control API listen settings.
	HTTP HTTP `envPrefix:"HTTP_"`

	// Sync holds sync pass scheduling, worker pool, and entity backoff
	// settings.
	Sync Sync `envPrefix:"SYNC_"`

	// Uploads holds audio upload attempt and backoff settings.
	Uploads Uploads `envPrefix:"UPLOADS_"`

	// Netmon holds remote reachability probe settings.
	Netmon Netmon `envPrefix:"NETMON_"`

	// Log holds daemon logging settings.
	Log Log `envPrefix:"LOG_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged under the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// API holds connection settings for the remote Glide API.
type API struct {
	// BaseURL is the root of the remote API, e.g. "https://api.glide.app".
	// Env: API_BASE_URL
	BaseURL string `env:"BASE_URL"`

	// Token is the bearer token attached to every authenticated request.
	// Obtaining and refreshing it is the host application's concern; the
	// engine only consumes it.
	// Env: API_TOKEN
	Token string `env:"TOKEN"`

	// RequestTimeout is the per-request deadline for remote calls
	// (e.g. "30s"). Exceeding it counts as a transient failure.
	// Env: API_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Storage groups the configuration for the on-device storage backends.
type Storage struct {
	// DB holds the local database settings.
	DB DB `envPrefix:"DB_"`

	// Spool holds the recording spool settings.
	Spool Spool `envPrefix:"SPOOL_"`
}

// DB holds settings for the local SQLite database.
type DB struct {
	// DSN is the SQLite file path (created on first start when missing).
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Spool holds settings for the directory where the recorder drops
// finished audio files.
type Spool struct {
	// Dir is the watched spool directory. Leave empty to disable the
	// spool watcher; uploads can still be enqueued via the control API.
	// Env: STORAGE_SPOOL_DIR
	Dir string `env:"DIR"`
}

// HTTP holds the listen settings for the local control API.
type HTTP struct {
	// Address is the TCP address the control API listens on, in
	// "host:port" format. Loopback by default; the control surface is
	// not meant to be exposed beyond the device.
	// Env: HTTP_ADDRESS
	Address string `env:"ADDRESS"`
}

// Sync holds sync pass scheduling and entity retry settings.
type Sync struct {
	// Interval is the periodic sync trigger while online (e.g. "5m").
	// Env: SYNC_INTERVAL
	Interval time.Duration `env:"INTERVAL"`

	// Workers bounds concurrent transfers within one pass. Clamped to
	// the 2..4 range suitable for a mobile radio.
	// Env: SYNC_WORKERS
	Workers int `env:"WORKERS"`

	// MaxAttempts caps consecutive failed sync attempts per entity.
	// Env: SYNC_MAX_ATTEMPTS
	MaxAttempts int `env:"MAX_ATTEMPTS"`

	// BackoffBase is the first retry delay; doubles each failed attempt.
	// Env: SYNC_BACKOFF_BASE
	BackoffBase time.Duration `env:"BACKOFF_BASE"`

	// BackoffCap bounds the grown retry delay.
	// Env: SYNC_BACKOFF_CAP
	BackoffCap time.Duration `env:"BACKOFF_CAP"`
}

// Uploads holds audio upload retry settings, independent from entity sync.
type Uploads struct {
	// MaxAttempts caps upload attempts per task; beyond it the task is
	// terminal failed until the user retries explicitly.
	// Env: UPLOADS_MAX_ATTEMPTS
	MaxAttempts int `env:"MAX_ATTEMPTS"`

	// BackoffBase is the first retry delay for a failed upload.
	// Env: UPLOADS_BACKOFF_BASE
	BackoffBase time.Duration `env:"BACKOFF_BASE"`

	// BackoffCap bounds the grown upload retry delay.
	// Env: UPLOADS_BACKOFF_CAP
	BackoffCap time.Duration `env:"BACKOFF_CAP"`

	// PurgeInterval is how often completed tasks have their local audio
	// files reclaimed.
	// Env: UPLOADS_PURGE_INTERVAL
	PurgeInterval time.Duration `env:"PURGE_INTERVAL"`
}

// Netmon holds settings for the network reachability monitor.
type Netmon struct {
	// ProbeInterval is how often the remote health endpoint is probed.
	// Env: NETMON_PROBE_INTERVAL
	ProbeInterval time.Duration `env:"PROBE_INTERVAL"`

	// ProbeTimeout bounds a single probe request.
	// Env: NETMON_PROBE_TIMEOUT
	ProbeTimeout time.Duration `env:"PROBE_TIMEOUT"`
}

// Log holds daemon logging settings.
type Log struct {
	// File is the rotated log file path. Empty logs to stdout.
	// Env: LOG_FILE
	File string `env:"FILE"`

	// Level is the minimum emitted level ("debug", "info", "warn", ...).
	// Env: LOG_LEVEL
	Level string `env:"LEVEL"`
}

// GetStructuredConfig loads, merges, and validates the daemon configuration
// from all available sources in the following priority order (earlier
// sources win for non-zero fields):
//  1. Environment variables (a .env file is loaded into the environment
//     first when present)
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//  4. Built-in defaults
//
// Returns a fully populated *StructuredConfig or an error if any source
// fails to load or the final config fails validation.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withDotenv().
		withEnv().
		withFlags().
		withJSON().
		withDefaults().
		build()
}
