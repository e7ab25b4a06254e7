// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/defectviz/internal/model"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Dashboard DashboardConfig `toml:"dashboard"`
}

// DashboardConfig maps dashboard-related settings. Nil fields are unset.
type DashboardConfig struct {
	Data         *string `toml:"data"`
	Dataset      *string `toml:"dataset"`
	Days         []int   `toml:"days"`
	Colors       *string `toml:"colors"`
	ShowHeatmap  *bool   `toml:"show-heatmap"`
	ShowTable    *bool   `toml:"show-table"`
	ShowTimeline *bool   `toml:"show-timeline"`
	Duplicates   *string `toml:"duplicates"`
	FrameMs      *int    `toml:"frame-ms"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return FileConfig{}, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return cfg, nil
}

// ParseDuplicatePolicy maps "last" or "reject" to a policy.
func ParseDuplicatePolicy(value string) (model.DuplicatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "last":
		return model.DuplicateLastWins, nil
	case "reject":
		return model.DuplicateReject, nil
	default:
		return model.DuplicateLastWins, fmt.Errorf("unknown duplicate policy %q (use last or reject)", value)
	}
}
