package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"

	"github.com/desertthunder/lyrx/internal/lyrics"
	"github.com/desertthunder/lyrx/internal/repositories"
	"github.com/desertthunder/lyrx/internal/shared"
	"github.com/desertthunder/lyrx/internal/tasks"
	"github.com/desertthunder/lyrx/internal/ui"
	"github.com/urfave/cli/v3"
)

// Scrape resolves an artist, then extracts, tokenizes and stores their songs.
func (r *Runner) Scrape(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("artist"))
	if query == "" {
		return fmt.Errorf("%w: artist", shared.ErrMissingArgument)
	}

	config, configPath, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	policy, err := tasks.ParseNetworkPolicy(config.Scraper.OnNetworkError)
	if err != nil {
		return err
	}

	provider, err := r.provider(config)
	if err != nil {
		return err
	}

	extractor, err := lyrics.NewExtractor(provider, config.Scraper.LyricsSelector)
	if err != nil {
		return err
	}

	runner, err := r.tokenizerRunner(config, configPath)
	if err != nil {
		return err
	}

	stores, err := repositories.OpenStores(config.Database)
	if err != nil {
		return err
	}
	defer stores.Close()

	includeFeatures := config.Scraper.IncludeFeatures
	if cmd.IsSet("features") {
		includeFeatures = cmd.Bool("features")
	}

	useSpinner := !cmd.Bool("no-spinner") && ui.IsTerminal(os.Stderr)

	logger := r.logger
	if config.Logging.File != "" {
		if logger, err = shared.NewFileLogger(config.Logging.File); err != nil {
			return err
		}
	}
	reporter := shared.WithLogger(logger, "query", query)

	var indicator tasks.Indicator
	var spinner *ui.Spinner
	if useSpinner {
		spinner = ui.NewSpinner(os.Stderr)
		indicator = spinner
	}

	pipeline := tasks.NewPipeline(tasks.PipelineOpts{
		Catalog:   r.catalog(provider, config),
		Source:    extractor,
		Runner:    runner,
		Stores:    stores,
		Reporter:  reporter,
		Indicator: indicator,
		Policy:    policy,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	// Create progress channel and goroutine to handle updates
	progressCh := make(chan tasks.ProgressUpdate, 50)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for update := range progressCh {
			if spinner != nil {
				spinner.SetStatus(update.Message)
				continue
			}
			switch update.Phase {
			case tasks.ResolveArtist, tasks.Finalize:
				r.writePlain("%s\n", update.Message)
			default:
				r.writePlain("   %s\n", update.Message)
			}
		}
	}()

	result, err := pipeline.Run(ctx, tasks.Request{
		Artist:          query,
		MaxSongs:        cmd.Int("max-songs"),
		IncludeFeatures: includeFeatures,
	}, progressCh)
	close(progressCh)
	<-drained

	if result != nil {
		r.writeSummary(result)
	}
	return err
}

func (r *Runner) writeSummary(result *tasks.RunResult) {
	p := ui.Styles()

	r.writePlain("\n")
	r.writePlainHeader("Scrape Complete")
	r.writePlain("Artist: %s (id %d)\n", result.Artist.Name, result.Artist.ID)
	r.writePlain("Table:  %s\n", result.Artist.Table)
	r.writePlain("Run:    %s\n", p.Help(result.RunID))
	r.writePlain("Stored: %s\n", p.OK(fmt.Sprintf("%d", result.Stored)))

	if total := result.SkippedTotal(); total > 0 {
		r.writePlain("Skipped: %s\n", p.Warn(fmt.Sprintf("%d", total)))
		reasons := make([]string, 0, len(result.Skipped))
		for reason := range result.Skipped {
			reasons = append(reasons, reason)
		}
		slices.Sort(reasons)
		for _, reason := range reasons {
			r.writePlain("  - %s: %d\n", reason, result.Skipped[reason])
		}
	}
}
