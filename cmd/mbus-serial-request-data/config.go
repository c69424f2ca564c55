package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// runConfig is everything the readout run needs. Flags override file
// values, file values override defaults.
type runConfig struct {
	Device  string
	Address int
	Baud    int
	Debug   bool
}

type fileConfig struct {
	Device  string `toml:"device"`
	Address int    `toml:"address"`
	Baud    int    `toml:"baud"`
	Debug   bool   `toml:"debug"`
}

func loadRunConfig(path string, cfg runConfig) (runConfig, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return runConfig{}, fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("device") {
		if d := strings.TrimSpace(raw.Device); d != "" {
			cfg.Device = d
		}
	}
	if meta.IsDefined("address") {
		cfg.Address = raw.Address
	}
	if meta.IsDefined("baud") {
		cfg.Baud = raw.Baud
	}
	if meta.IsDefined("debug") {
		cfg.Debug = raw.Debug
	}
	return cfg, nil
}
