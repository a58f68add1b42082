package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"siteforge/internal/core"
)

// Config is the optional TOML configuration shared by all commands.
type Config struct {
	Rules   core.RulesConfig `toml:"rules"`
	Catalog CatalogConfig    `toml:"catalog"`
}

// CatalogConfig selects the snapshot catalog backend. When DSN is set the
// catalog uses Postgres, otherwise a local SQLite file at Path.
type CatalogConfig struct {
	Path string `toml:"path"`
	DSN  string `toml:"dsn"`
}

// defaultConfig returns the configuration used when no file is given.
func defaultConfig() Config {
	return Config{
		Catalog: CatalogConfig{Path: "siteforge.db"},
	}
}

// loadConfig reads a TOML config file, tolerating an absent default file.
func loadConfig(path string, explicit bool) (Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !explicit {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("config %s: unknown key %s", path, undecoded[0])
	}
	return cfg, nil
}
