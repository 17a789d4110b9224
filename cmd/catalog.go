package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/desertthunder/lyrx/internal/formatter"
	"github.com/desertthunder/lyrx/internal/repositories"
	"github.com/desertthunder/lyrx/internal/shared"
	"github.com/desertthunder/lyrx/internal/ui"
	"github.com/urfave/cli/v3"
)

type resolved struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Table string `json:"table"`
}

type tableRow struct {
	Table       string `json:"table"`
	ProviderID  int64  `json:"provider_id"`
	DisplayName string `json:"display_name"`
	Songs       int    `json:"songs"`
	Tokenized   int    `json:"tokenized"`
}

// Resolve prints the artist a query resolves to without touching the stores.
func (r *Runner) Resolve(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("artist"))
	if query == "" {
		return fmt.Errorf("%w: artist", shared.ErrMissingArgument)
	}

	config, _, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	provider, err := r.provider(config)
	if err != nil {
		return err
	}

	artist, err := r.catalog(provider, config).ResolveArtist(ctx, query)
	if err != nil {
		return err
	}
	r.logger.Debug("resolved artist", "query", query, "id", artist.ID)

	if cmd.Bool("json") {
		return r.writeJSON(resolved{ID: artist.ID, Name: artist.Name, Table: artist.Table}, true)
	}

	p := ui.Styles()
	r.writePlain("%s %s\n", p.OK(artist.Name), p.Help(fmt.Sprintf("(id %d)", artist.ID)))
	r.writePlain("Table: %s\n", artist.Table)
	return nil
}

// Tables lists every provisioned artist table with its row counts.
func (r *Runner) Tables(ctx context.Context, cmd *cli.Command) error {
	config, _, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	stores, err := repositories.OpenStores(config.Database)
	if err != nil {
		return err
	}
	defer stores.Close()

	tables, err := repositories.NewLyricsRepository(stores).Tables(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		rows := make([]tableRow, 0, len(tables))
		for _, t := range tables {
			rows = append(rows, tableRow{
				Table:       t.Table,
				ProviderID:  t.ProviderID,
				DisplayName: t.DisplayName,
				Songs:       t.Songs,
				Tokenized:   t.Tokenized,
			})
		}
		return r.writeJSON(rows, true)
	}

	if len(tables) == 0 {
		r.writePlainln("No artist tables yet. Run `lyrx scrape <artist>` first.")
		return nil
	}

	w := tabwriter.NewWriter(r.output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TABLE\tARTIST\tSONGS\tTOKENIZED")
	for _, t := range tables {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", t.Table, t.DisplayName, t.Songs, t.Tokenized)
	}
	return w.Flush()
}

// Export writes a stored table in the requested format to a file or stdout.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	table := strings.TrimSpace(cmd.StringArg("table"))
	if table == "" {
		return fmt.Errorf("%w: table", shared.ErrMissingArgument)
	}

	config, _, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	stores, err := repositories.OpenStores(config.Database)
	if err != nil {
		return err
	}
	defer stores.Close()

	repo := repositories.NewLyricsRepository(stores)
	records, err := repo.List(ctx, table)
	if err != nil {
		return err
	}
	tokens, err := repo.Tokens(ctx, table)
	if err != nil {
		return err
	}

	data, err := formatter.Export(formatter.Join(table, records, tokens), cmd.String("format"))
	if err != nil {
		return err
	}

	output := cmd.String("output")
	if err := formatter.WriteExport(data, output, r.output); err != nil {
		return err
	}

	if output != "" {
		r.logger.Info("exported table", "table", table, "songs", len(records), "path", output)
	}
	return nil
}
