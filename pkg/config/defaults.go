package config

import (
	"os"
	"path/filepath"
)

// appDir returns ~/.config/study-tracker, or "." without a home directory.
func appDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, ".config", "study-tracker")
}

// defaultDBPath returns ~/.config/study-tracker/study.db.
func defaultDBPath() string {
	return filepath.Join(appDir(), "study.db")
}

// defaultStatePath returns ~/.config/study-tracker/import-state.db.
func defaultStatePath() string {
	return filepath.Join(appDir(), "import-state.db")
}

// DefaultConfigPath returns ~/.config/study-tracker/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(appDir(), "config.yaml")
}
