// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The Glide Sync Authors

package config

import "time"

// defaultConfig returns the built-in defaults. Merged last, so it only
// fills fields no explicit source provided.
func defaultConfig() *StructuredConfig {
	return &StructuredConfig{
		API: API{
			RequestTimeout: 30 * time.Second,
		},
		Storage: Storage{
			DB: DB{DSN: "glide-sync.db"},
		},
		HTTP: HTTP{
			Address: "127.0.0.1:7385",
		},
		Sync: Sync{
			Interval:    5 * time.Minute,
			Workers:     3,
			MaxAttempts: 8,
			BackoffBase: 2 * time.Second,
			BackoffCap:  5 * time.Minute,
		},
		Uploads: Uploads{
			MaxAttempts:   5,
			BackoffBase:   5 * time.Second,
			BackoffCap:    10 * time.Minute,
			PurgeInterval: 10 * time.Minute,
		},
		Netmon: Netmon{
			ProbeInterval: 30 * time.Second,
			ProbeTimeout:  5 * time.Second,
		},
		Log: Log{
			Level: "info",
		},
	}
}

// validate checks that the final merged [StructuredConfig] satisfies the
// daemon's invariants before it is used at startup, and clamps the worker
// pool to the range suitable for a mobile radio.
func (cfg *StructuredConfig) validate() error {
	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.API.BaseURL == "" || cfg.API.RequestTimeout <= 0 {
		return ErrInvalidAPIConfigs
	}

	if cfg.HTTP.Address == "" {
		return ErrInvalidHTTPConfigs
	}

	if cfg.Sync.Interval <= 0 || cfg.Sync.MaxAttempts <= 0 ||
		cfg.Sync.BackoffBase <= 0 || cfg.Sync.BackoffCap < cfg.Sync.BackoffBase {
		return ErrInvalidSyncConfigs
	}

	if cfg.Uploads.MaxAttempts <= 0 || cfg.Uploads.BackoffBase <= 0 ||
		cfg.Uploads.BackoffCap < cfg.Uploads.BackoffBase {
		return ErrInvalidUploadConfigs
	}

	if cfg.Sync.Workers < 2 {
		cfg.Sync.Workers = 2
	}
	if cfg.Sync.Workers > 4 {
		cfg.Sync.Workers = 4
	}

	return nil
}
