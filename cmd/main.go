package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lyrx/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat(defaultConfigPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(defaultConfigPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "error", err)
		}
	}

	if level, err := log.ParseLevel(config.Logging.Level); err == nil {
		shared.SetLogLevel(logger, level)
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: defaultConfigPath,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "lyrx",
		Usage:    "Collect an artist's lyrics from Genius and store them tokenized for training",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
