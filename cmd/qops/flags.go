package main

import (
	"context"
	"fmt"

	"github.com/born-ml/qops/internal/logger"
	"github.com/born-ml/qops/internal/parallel"
	"github.com/urfave/cli/v3"
)

// options holds the values of the global flags after config defaults are applied.
type options struct {
	configPath string
	workers    int64
	minChunk   int64
	logLevel   string
	logFormat  string

	cfg Config
	log logger.Logger
}

func globalFlags(o *options) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to config file (default $XDG_CONFIG_HOME/qops/config.yaml)",
			Sources:     cli.EnvVars("QOPS_CONFIG"),
			Destination: &o.configPath,
		},
		&cli.Int64Flag{
			Name:        "workers",
			Aliases:     []string{"j"},
			Usage:       "kernel worker goroutines (0 = one per CPU, 1 = sequential)",
			Sources:     cli.EnvVars("QOPS_WORKERS"),
			Destination: &o.workers,
		},
		&cli.Int64Flag{
			Name:        "min-chunk",
			Usage:       "minimum elements per worker chunk",
			Value:       int64(parallel.DefaultConfig().MinChunkSize),
			Sources:     cli.EnvVars("QOPS_MIN_CHUNK"),
			Destination: &o.minChunk,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "warn",
			Sources:     cli.EnvVars("QOPS_LOG_LEVEL"),
			Destination: &o.logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (text, json)",
			Value:       "text",
			Sources:     cli.EnvVars("QOPS_LOG_FORMAT"),
			Destination: &o.logFormat,
		},
	}
}

// before loads the config file, fills unset flags from it and installs the
// logger in the context.
func (o *options) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var err error
	if o.cfg, err = loadConfig(o.configPath); err != nil {
		return ctx, err
	}
	applyConfig(cmd, o.cfg, o)

	if o.workers < 0 {
		return ctx, fmt.Errorf("--workers must be >= 0, got %d", o.workers)
	}
	if o.minChunk < 1 {
		return ctx, fmt.Errorf("--min-chunk must be >= 1, got %d", o.minChunk)
	}

	o.log, err = logger.ForFormat(o.logFormat, cmd.Root().ErrWriter, logger.ParseLevel(o.logLevel))
	if err != nil {
		return ctx, err
	}
	return logger.WithContext(ctx, o.log), nil
}

// parallel converts the worker flags into a kernel configuration.
func (o *options) parallel() parallel.Config {
	cfg := parallel.DefaultConfig()
	if o.workers > 0 {
		cfg.NumWorkers = int(o.workers)
	}
	cfg.MinChunkSize = int(o.minChunk)
	return cfg
}
