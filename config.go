// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package main

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml"
)

// serveConfig is the file form of the serve command's flags.
type serveConfig struct {
	Addr         string  `toml:"addr"`
	DB           string  `toml:"db"`
	CacheEntries int     `toml:"cache_entries"`
	MaxGB        float64 `toml:"max_gb"`
}

func defaultServeConfig() *serveConfig {
	return &serveConfig{
		Addr:         ":1993",
		CacheEntries: 16,
	}
}

// parseConfig reads a TOML file over the defaults.
func parseConfig(path string) (*serveConfig, error) {
	cfg := defaultServeConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if cfg.CacheEntries < 1 {
		return nil, fmt.Errorf("%s: cache_entries must be positive", path)
	}
	if cfg.MaxGB < 0 {
		return nil, fmt.Errorf("%s: max_gb must not be negative", path)
	}
	return cfg, nil
}

// limit is the configured size ceiling, or the environment's if unset.
func (c *serveConfig) limit() (int64, error) {
	if c.MaxGB == 0 {
		return memLimit, nil
	}
	return gigabytes(c.MaxGB)
}
