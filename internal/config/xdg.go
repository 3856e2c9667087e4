// Package config loads the TOML configuration and resolves XDG paths.
package config

import (
	"os"
	"path/filepath"
)

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), "tasknotes", "config.toml")
}

// DefaultDataDir returns the default directory for persisted state,
// history and the mirror file.
func DefaultDataDir() string {
	return filepath.Join(XDGDataHome(), "tasknotes")
}

// DefaultStatePath returns the default path of the persisted state blob.
func DefaultStatePath(dataDir string) string {
	return filepath.Join(dataDir, "state.json")
}
