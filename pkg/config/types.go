// Package config provides configuration management for study-tracker.
//
// Configuration is loaded from multiple sources with the following precedence:
// 1. Command-line flags (highest priority, applied by the CLI)
// 2. Environment variables
// 3. Configuration file
// 4. Default values (lowest priority)
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Storage backend: %s\n", cfg.Storage.Backend)
package config

import (
	"fmt"
	"strings"
	"time"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
)

// Notification backends.
const (
	NotifyNone    = "none"
	NotifyLog     = "log"
	NotifyDesktop = "desktop"
)

// Config represents the complete application configuration.
//
// Invariants:
// - Server.Addr is not empty
// - Storage.Backend is memory, bolt or sqlite
// - Storage.DBPath is set for file-backed stores
// - Engine.RecentLimit must be > 0
// - Engine.Timezone must name a loadable location.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Engine  EngineConfig  `yaml:"engine"`
	Import  ImportConfig  `yaml:"import"`
	Notify  NotifyConfig  `yaml:"notify"`
	Display DisplayConfig `yaml:"display"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Listen address, e.g. ":8080"
	Addr string `yaml:"addr"`

	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// Grace period for in-flight requests on shutdown
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// StorageConfig contains record store settings.
type StorageConfig struct {
	// Backend selects the store (memory, bolt, sqlite)
	Backend string `yaml:"backend"`

	// Path to the database file for bolt and sqlite
	DBPath string `yaml:"db_path"`

	// Timeout for acquiring the bolt file lock
	Timeout time.Duration `yaml:"timeout"`
}

// EngineConfig contains statistics engine settings.
type EngineConfig struct {
	// IANA timezone used for calendar days and hours ("Local" for system)
	Timezone string `yaml:"timezone"`

	// Number of sessions returned by the recent sessions listing
	RecentLimit int `yaml:"recent_limit"`
}

// ImportConfig contains JSONL import settings.
type ImportConfig struct {
	// Directories scanned for *.jsonl import files
	Dirs []string `yaml:"dirs"`

	// Keep watching Dirs for appended lines while serving
	Watch bool `yaml:"watch"`

	// BoltDB file holding per-file read offsets
	StatePath string `yaml:"state_path"`

	// Coalescing window for file change events
	DebounceInterval time.Duration `yaml:"debounce_interval"`
}

// NotifyConfig contains goal-completion notification settings.
type NotifyConfig struct {
	// Backend is none, log or desktop
	Backend string `yaml:"backend"`

	// Application name shown by desktop notifications
	AppName string `yaml:"app_name"`
}

// DisplayConfig contains CLI output settings.
type DisplayConfig struct {
	// Default output format (table, json, simple)
	DefaultFormat string `yaml:"default_format"`

	// Enable styled output when stdout is a terminal
	ColorEnabled bool `yaml:"color_enabled"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Log level (debug, info, warn, error)
	Level string `yaml:"level"`

	// Log output destination (stdout, stderr, file path)
	Output string `yaml:"output"`

	// Log format (text, json)
	Format string `yaml:"format"`
}

// Validate checks if the configuration satisfies all invariants.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return ErrEmptyAddr
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.ShutdownTimeout < 0 {
		return ErrInvalidTimeout
	}

	switch c.Storage.Backend {
	case BackendMemory:
	case BackendBolt, BackendSQLite:
		if c.Storage.DBPath == "" {
			return ErrEmptyDBPath
		}
	default:
		return ErrInvalidBackend
	}

	if c.Engine.RecentLimit <= 0 {
		return ErrInvalidRecentLimit
	}
	if _, err := c.Location(); err != nil {
		return err
	}

	if c.Import.DebounceInterval <= 0 {
		return ErrInvalidDebounce
	}
	if (len(c.Import.Dirs) > 0 || c.Import.Watch) && c.Import.StatePath == "" {
		return ErrEmptyStatePath
	}

	switch c.Notify.Backend {
	case NotifyNone, NotifyLog, NotifyDesktop:
	default:
		return ErrInvalidNotifyBackend
	}

	switch c.Display.DefaultFormat {
	case "table", "json", "simple":
	default:
		return ErrInvalidDisplayFormat
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return ErrInvalidLogFormat
	}

	return nil
}

// Location resolves Engine.Timezone. Empty and "Local" mean the system zone.
func (c *Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Engine.Timezone)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTimezone, name)
	}
	return loc, nil
}

// Default returns a configuration with sensible default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Storage: StorageConfig{
			Backend: BackendBolt,
			DBPath:  defaultDBPath(),
			Timeout: time.Second,
		},
		Engine: EngineConfig{
			Timezone:    "Local",
			RecentLimit: 5,
		},
		Import: ImportConfig{
			StatePath:        defaultStatePath(),
			DebounceInterval: 200 * time.Millisecond,
		},
		Notify: NotifyConfig{
			Backend: NotifyLog,
			AppName: "Study Tracker",
		},
		Display: DisplayConfig{
			DefaultFormat: "table",
			ColorEnabled:  true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: "stderr",
			Format: "text",
		},
	}
}
