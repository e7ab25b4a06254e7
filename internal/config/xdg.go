// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"
)

const appName = "defectviz"

// xdgDir returns $env, or the home-relative fallback when it is unset.
func xdgDir(env string, fallback ...string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(append([]string{home}, fallback...)...)
}

// XDGConfigHome is $XDG_CONFIG_HOME, defaulting to ~/.config.
func XDGConfigHome() string { return xdgDir("XDG_CONFIG_HOME", ".config") }

// XDGDataHome is $XDG_DATA_HOME, defaulting to ~/.local/share.
func XDGDataHome() string { return xdgDir("XDG_DATA_HOME", ".local", "share") }

// DefaultConfigPath is the TOML config file.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appName, "config.toml")
}

// DefaultDBPath is the SQLite database holding imported datasets.
func DefaultDBPath() string {
	return filepath.Join(XDGDataHome(), appName, appName+".db")
}

// DefaultDownloadDir caches files fetched over HTTP.
func DefaultDownloadDir() string {
	return filepath.Join(XDGDataHome(), appName, "downloads")
}
