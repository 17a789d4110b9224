package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/lyrx/internal/repositories"
	"github.com/desertthunder/lyrx/internal/shared"
	"github.com/desertthunder/lyrx/internal/tokenizer"
	"github.com/urfave/cli/v3"
)

// SetupDatabase creates the config file if needed, then both stores, and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}

	r.logger.Info("initializing stores", "lyrics", config.Database.LyricsPath, "tokens", config.Database.TokensPath)

	stores, err := repositories.OpenStores(config.Database)
	if err != nil {
		return fmt.Errorf("failed to create stores: %w", err)
	}
	defer stores.Close()

	r.logger.Infof("setup complete for stores: %v, %v", config.Database.LyricsPath, config.Database.TokensPath)
	return nil
}

// TokenizeWorker serves one tokenization request on stdin/stdout.
//
// It is the child side of [tokenizer.ProcessRunner]; diagnostics go to the logger (stderr).
func (r *Runner) TokenizeWorker(ctx context.Context, cmd *cli.Command) error {
	config, _, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	tok, err := tokenizer.New(config.Tokenizer)
	if err != nil {
		return err
	}

	return tokenizer.ServeWorker(r.input, r.output, tok)
}
