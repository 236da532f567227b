package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/starford/things/internal"
	pkgconfig "github.com/starford/things/pkg/config"
)

const defaultConfigPath = "config/config.yaml"

// loadConfig reads the config file named by --config. Only the default
// path may be missing, in which case the built-in defaults are used.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	path := cmd.String("config")
	cfg := internal.NewDefaultConfig()
	if path == defaultConfigPath {
		if _, err := pkgconfig.LoadOptional(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		return cfg, nil
	}
	if err := pkgconfig.Load(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// cliLogger logs to stderr so command output on stdout stays clean.
func cliLogger(cfg *internal.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.App.LogLevel}))
}

// setup loads the config and wires the site services for a one-shot command.
func setup(cmd *cli.Command) (*internal.Config, *internal.Services, *slog.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	logger := cliLogger(cfg)
	svc, err := internal.NewServices(cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, svc, logger, nil
}
