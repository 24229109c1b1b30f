package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the qops configuration file (~/.config/qops/config.yaml).
// Numeric fields are pointers so we can distinguish "not set" from zero values.
type Config struct {
	Workers  *int64 `yaml:"workers"`
	MinChunk *int64 `yaml:"min_chunk"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Report format for "qops run".
	Format string `yaml:"format"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "qops", "config.yaml")
}

// loadConfig reads the config file at path, or at the default location when
// path is empty. A missing default file yields a zero Config; an explicit
// path must exist.
func loadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = configPath()
		if path == "" {
			return Config{}, nil
		}
	}

	data, err := os.ReadFile(path) //nolint:gosec // config path chosen by the user
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// applyConfig applies config file defaults to global flags that were not set
// on the command line or through the environment.
func applyConfig(c *cli.Command, cfg Config, o *options) {
	if cfg.Workers != nil && !c.IsSet("workers") {
		o.workers = *cfg.Workers
	}
	if cfg.MinChunk != nil && !c.IsSet("min-chunk") {
		o.minChunk = *cfg.MinChunk
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		o.logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		o.logFormat = cfg.LogFormat
	}
}

// applyRunConfig applies config file defaults to run command flags.
func applyRunConfig(c *cli.Command, cfg Config, format *string) {
	if cfg.Format != "" && !c.IsSet("format") {
		*format = cfg.Format
	}
}
