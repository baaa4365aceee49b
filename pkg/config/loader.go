package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables recognised by the loader.
const (
	EnvConfig     = "STUDY_TRACKER_CONFIG"
	EnvDB         = "STUDY_TRACKER_DB"
	EnvBackend    = "STUDY_TRACKER_BACKEND"
	EnvAddr       = "STUDY_TRACKER_ADDR"
	EnvLogLevel   = "STUDY_TRACKER_LOG_LEVEL"
	EnvImportDirs = "STUDY_TRACKER_IMPORT_DIRS"
	EnvTimezone   = "STUDY_TRACKER_TZ"
)

// Loader provides methods for loading configuration from various sources.
type Loader interface {
	// Load merges defaults, the config file and environment overrides,
	// then validates the result.
	Load() (*Config, error)

	// LoadFromFile reads a config file on top of the defaults without
	// applying environment overrides or validation.
	LoadFromFile(path string) (*Config, error)

	// Path returns the config file Load would read, or "" if none exists.
	Path() string
}

type loader struct {
	configPath string
}

// NewLoader creates a new configuration loader.
//
// If configPath is empty, $STUDY_TRACKER_CONFIG is used, then the first
// existing file of ./study-tracker.yaml and
// ~/.config/study-tracker/config.yaml.
func NewLoader(configPath string) Loader {
	return &loader{configPath: configPath}
}

// Load implements Loader.Load.
func (l *loader) Load() (*Config, error) {
	cfg := Default()

	if path := l.Path(); path != "" {
		fileCfg, err := l.LoadFromFile(path)
		if err != nil {
			// An explicitly requested file must load; a discovered one may not.
			if l.explicitPath() != "" {
				return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
			}
		} else {
			cfg = fileCfg
		}
	}

	applyEnvVars(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadFromFile implements Loader.LoadFromFile.
//
// Keys absent from the file keep their default values.
func (l *loader) LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) // nolint:gosec
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	return cfg, nil
}

// Path implements Loader.Path.
func (l *loader) Path() string {
	if p := l.explicitPath(); p != "" {
		return p
	}

	for _, path := range []string{"./study-tracker.yaml", DefaultConfigPath()} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

func (l *loader) explicitPath() string {
	if l.configPath != "" {
		return l.configPath
	}
	return os.Getenv(EnvConfig)
}

// applyEnvVars applies environment variable overrides in place.
func applyEnvVars(cfg *Config) {
	if v := os.Getenv(EnvDB); v != "" {
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv(EnvBackend); v != "" {
		cfg.Storage.Backend = strings.ToLower(v)
	}
	if v := os.Getenv(EnvAddr); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv(EnvTimezone); v != "" {
		cfg.Engine.Timezone = v
	}
	if v := os.Getenv(EnvImportDirs); v != "" {
		dirs := strings.Split(v, ",")
		for i := range dirs {
			dirs[i] = strings.TrimSpace(dirs[i])
		}
		cfg.Import.Dirs = dirs
	}
}

// Load is a convenience function equivalent to NewLoader("").Load().
func Load() (*Config, error) {
	return NewLoader("").Load()
}

// Save validates cfg and writes it as YAML, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
