// Package config loads brewpkg's agent configuration and resource manifests.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

// Config holds the agent-side settings. Everything is optional; zero values
// mean "use the defaults" (brew found on PATH, info-level logging, the
// standard cache location).
type Config struct {
	// BrewPath overrides where the brew binary is looked up.
	BrewPath string
	// InstallOptions are appended to every install/upgrade invocation.
	InstallOptions []string
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
	// DBPath overrides the observed-state cache location.
	DBPath string
}

// Dir returns the brewpkg config directory, respecting XDG_CONFIG_HOME.
// Defaults to ~/.config/brewpkg if XDG_CONFIG_HOME is not set.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "brewpkg"), nil
}

// Load reads the config file at path. Pass "" to use {Dir()}/config.ini.
// A missing file yields the defaults without an error.
func Load(path string) (*Config, error) {
	cfg := &Config{LogLevel: "info"}

	if path == "" {
		dir, err := Dir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, "config.ini")
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if v := file.Section("brew").Key("path").String(); v != "" {
		cfg.BrewPath = v
	}
	if v := file.Section("install").Key("options").String(); v != "" {
		cfg.InstallOptions = strings.Fields(v)
	}
	if v := file.Section("log").Key("level").String(); v != "" {
		cfg.LogLevel = v
	}
	if v := file.Section("cache").Key("path").String(); v != "" {
		cfg.DBPath = v
	}

	return cfg, nil
}
