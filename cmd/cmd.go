// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/lyrx/internal/formatter"
	"github.com/desertthunder/lyrx/internal/tokenizer"
	"github.com/urfave/cli/v3"
)

// setupCommand prepares configuration and storage
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and stores",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Create config from template, create both stores and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   defaultConfigPath,
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// scrapeCommand runs the ingest pipeline for one artist
func scrapeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "scrape",
		Usage: "Collect, tokenize and store an artist's lyrics",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "artist",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   defaultConfigPath,
			},
			&cli.IntFlag{
				Name:    "max-songs",
				Aliases: []string{"n"},
				Usage:   "Stop after storing this many songs (0 for no limit)",
			},
			&cli.BoolFlag{
				Name:  "features",
				Usage: "Keep songs whose primary artist is someone else (defaults to scraper.include_features)",
			},
			&cli.BoolFlag{
				Name:  "no-spinner",
				Usage: "Disable the progress spinner and print each step",
			},
		},
		Action: r.Scrape,
	}
}

// resolveCommand shows what an artist query resolves to
func resolveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "resolve",
		Usage: "Show the Genius artist and table name an artist query resolves to",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "artist",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   defaultConfigPath,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Resolve,
	}
}

// tablesCommand lists per-artist tables
func tablesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tables",
		Usage: "List stored artist tables with song counts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   defaultConfigPath,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Tables,
	}
}

// exportCommand writes a stored table to a file or stdout
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export stored lyrics and token ids for an artist table",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "table",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   defaultConfigPath,
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: txt, json or csv",
				Value:   formatter.FormatText,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (defaults to stdout)",
			},
		},
		Action: r.Export,
	}
}

// workerCommand is the tokenizer subprocess entry point
func workerCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   tokenizer.WorkerCommand,
		Usage:  "Tokenize one request from stdin (used internally by scrape)",
		Hidden: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   defaultConfigPath,
			},
		},
		Action: r.TokenizeWorker,
	}
}
