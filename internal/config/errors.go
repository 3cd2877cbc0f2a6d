package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidAPIConfigs indicates invalid remote API settings
	// (for example, missing base URL or non-positive request timeout).
	ErrInvalidAPIConfigs = errors.New("invalid api configuration")
	// ErrInvalidStorageConfigs indicates invalid storage settings
	// (for example, an empty database path).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidHTTPConfigs indicates invalid control API settings
	// (for example, an empty listen address).
	ErrInvalidHTTPConfigs = errors.New("invalid http configuration")
	// ErrInvalidSyncConfigs indicates invalid sync scheduling settings
	// (for example, a zero interval or a cap below the base delay).
	ErrInvalidSyncConfigs = errors.New("invalid sync configuration")
	// ErrInvalidUploadConfigs indicates invalid upload retry settings.
	ErrInvalidUploadConfigs = errors.New("invalid uploads configuration")
)
