package config

import "errors"

// Common errors returned by the config package.
var (
	// ErrEmptyAddr is returned when the server listen address is empty.
	ErrEmptyAddr = errors.New("invalid server address: must not be empty")

	// ErrInvalidTimeout is returned when a server timeout is negative.
	ErrInvalidTimeout = errors.New("invalid server timeout: must be >= 0")

	// ErrInvalidBackend is returned when the storage backend is not recognized.
	ErrInvalidBackend = errors.New("invalid storage backend: must be memory, bolt, or sqlite")

	// ErrEmptyDBPath is returned when a file-backed store has no path.
	ErrEmptyDBPath = errors.New("invalid storage path: must not be empty for bolt or sqlite")

	// ErrInvalidRecentLimit is returned when recent_limit is <= 0.
	ErrInvalidRecentLimit = errors.New("invalid recent limit: must be > 0")

	// ErrInvalidTimezone is returned when the engine timezone cannot be loaded.
	ErrInvalidTimezone = errors.New("invalid timezone")

	// ErrInvalidDebounce is returned when the import debounce interval is <= 0.
	ErrInvalidDebounce = errors.New("invalid debounce interval: must be > 0")

	// ErrEmptyStatePath is returned when import is configured without a state file.
	ErrEmptyStatePath = errors.New("invalid import state path: must not be empty when import is enabled")

	// ErrInvalidNotifyBackend is returned when the notify backend is not recognized.
	ErrInvalidNotifyBackend = errors.New("invalid notify backend: must be none, log, or desktop")

	// ErrInvalidDisplayFormat is returned when the display format is not recognized.
	ErrInvalidDisplayFormat = errors.New("invalid display format: must be table, json, or simple")

	// ErrInvalidLogLevel is returned when log level is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level: must be debug, info, warn, or error")

	// ErrInvalidLogFormat is returned when log format is not recognized.
	ErrInvalidLogFormat = errors.New("invalid log format: must be text or json")

	// ErrConfigNotFound is returned when config file is not found.
	ErrConfigNotFound = errors.New("config file not found")

	// ErrInvalidYAML is returned when config file has invalid YAML syntax.
	ErrInvalidYAML = errors.New("invalid YAML syntax in config file")
)
