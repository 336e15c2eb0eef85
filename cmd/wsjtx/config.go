package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// config is the CLI's persistent configuration. Flags override file values;
// file values override the built-in defaults.
type config struct {
	LibraryPath string `yaml:"library_path"`
	Mode        string `yaml:"mode"`
	FrequencyHz int    `yaml:"frequency_hz"`
	Threads     int    `yaml:"threads"`
}

func defaultConfig() *config {
	return &config{
		Mode:        "FT8",
		FrequencyHz: 1500,
		Threads:     1,
	}
}

func loadConfig(path string) (*config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// merge applies flag values over the file configuration. set holds the
// names of flags given on the command line; unset flags keep the file (or
// default) value even though the flag package reports their defaults.
func (c *config) merge(set map[string]bool, libPath, mode string, freq, threads int) {
	if set["lib"] {
		c.LibraryPath = libPath
	}
	if set["mode"] {
		c.Mode = mode
	}
	if set["freq"] {
		c.FrequencyHz = freq
	}
	if set["threads"] {
		c.Threads = threads
	}
}
