package main

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lyrx/internal/catalog"
	"github.com/desertthunder/lyrx/internal/services"
	"github.com/desertthunder/lyrx/internal/shared"
	"github.com/desertthunder/lyrx/internal/tokenizer"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "config.toml"

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	input      io.Reader
	output     io.Writer
	executable func() (string, error)
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Input      io.Reader
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		input:      opts.Input,
		output:     opts.Output,
		executable: os.Executable,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, scrapeCommand, resolveCommand, tablesCommand, exportCommand, workerCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig returns the configuration named by the --config flag.
//
// A missing file falls back to the runner's config; a malformed one is an error.
func (r *Runner) loadConfig(cmd *cli.Command) (*shared.Config, string, error) {
	path := cmd.String("config")
	if path == "" {
		path = r.configPath
	}

	if path == "" {
		return r.config, path, nil
	}
	if _, err := os.Stat(path); err != nil {
		r.logger.Debug("config file not found, using defaults", "path", path)
		return r.config, path, nil
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		return nil, path, err
	}
	return config, path, nil
}

// provider builds the Genius client. A missing token is fatal here, before any work starts.
func (r *Runner) provider(config *shared.Config) (*services.GeniusService, error) {
	token, err := shared.LoadToken(config.Credentials.Genius.TokenFile)
	if err != nil {
		return nil, err
	}

	return services.NewGeniusService(services.GeniusOpts{
		BaseURL:    config.Credentials.Genius.BaseURL,
		Token:      token,
		Delay:      config.Scraper.RequestDelay.Duration,
		HTTPClient: r.httpClient,
	})
}

func (r *Runner) catalog(provider services.Provider, config *shared.Config) *catalog.Catalog {
	return catalog.New(provider, catalog.Options{
		PerPage:          config.Scraper.PerPage,
		ExcludedKeywords: config.Scraper.ExcludedKeywords,
	})
}

// tokenizerRunner builds the isolation runner for the configured mode.
//
// The tokenizer is constructed in-process either way so a missing vocabulary fails the run up front.
func (r *Runner) tokenizerRunner(config *shared.Config, configPath string) (tokenizer.Runner, error) {
	tok, err := tokenizer.New(config.Tokenizer)
	if err != nil {
		return nil, err
	}

	timeout := config.Tokenizer.Timeout.Duration
	if config.Tokenizer.Isolation == "goroutine" {
		return tokenizer.NewGoroutineRunner(tok, timeout), nil
	}

	binary, err := r.executable()
	if err != nil {
		return nil, fmt.Errorf("failed to locate executable: %w", err)
	}

	args := []string{tokenizer.WorkerCommand}
	if configPath != "" {
		args = append(args, "--config", configPath)
	}
	return tokenizer.NewProcessRunner(binary, args, timeout), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
