// Package config loads the bridge configuration from TOML files and
// persists the pairing token between runs.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appName = "roon-mpris"

type Config struct {
	Extension ExtensionConfig `koanf:"extension"`
	Core      CoreConfig      `koanf:"core"`
	Seek      SeekConfig      `koanf:"seek"`
}

// ExtensionConfig is how the bridge introduces itself to the core.
// The core shows these values on its extensions page.
type ExtensionConfig struct {
	DisplayName string `koanf:"display_name"`
	Publisher   string `koanf:"publisher"`
	Email       string `koanf:"email"`
	Website     string `koanf:"website"`
}

// CoreConfig selects the core to bridge. An empty host means discover
// the core by broadcast.
type CoreConfig struct {
	Host                string `koanf:"host"`
	Port                int    `koanf:"port"`
	DiscoveryTimeoutSec int    `koanf:"discovery_timeout_sec"`
}

// SeekConfig tunes the progress-versus-seek classifier. Zero values
// keep the built-in defaults.
type SeekConfig struct {
	ExpectedAdvanceMs int `koanf:"expected_advance_ms"`
	MaxDeviationMs    int `koanf:"max_deviation_ms"`
}

// Load reads the configuration. With an explicit path only that file
// is read and it must exist. Otherwise the XDG config file and then
// ./config.toml are tried in order, last one wins, and both are
// optional.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	} else {
		for _, candidate := range defaultConfigPaths() {
			if _, err := os.Stat(candidate); err != nil {
				continue
			}
			if err := k.Load(file.Provider(candidate), toml.Parser()); err != nil {
				return nil, fmt.Errorf("load config %s: %w", candidate, err)
			}
		}
	}

	cfg := &Config{
		Extension: ExtensionConfig{
			DisplayName: "Roon MPRIS Bridge",
			Publisher:   "roon-mpris",
		},
		Core: CoreConfig{
			DiscoveryTimeoutSec: 5,
		},
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func defaultConfigPaths() []string {
	return []string{
		filepath.Join(xdg.ConfigHome, appName, "config.toml"),
		"config.toml",
	}
}
