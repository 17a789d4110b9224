package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"github.com/desertthunder/lyrx/internal/shared"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Stores holds the lyrics and tokens databases.
type Stores struct {
	Lyrics *sql.DB
	Tokens *sql.DB
}

// OpenStores opens both stores and applies migrations to the lyrics store.
func OpenStores(cfg shared.DatabaseConfig) (*Stores, error) {
	lyrics, err := shared.NewDatabase(cfg.LyricsPath)
	if err != nil {
		return nil, fmt.Errorf("lyrics store: %w", err)
	}

	tokens, err := shared.NewDatabase(cfg.TokensPath)
	if err != nil {
		lyrics.Close()
		return nil, fmt.Errorf("tokens store: %w", err)
	}

	shared.ConfigureDatabase(lyrics, cfg.MaxOpenConns, cfg.MaxIdleConns)
	shared.ConfigureDatabase(tokens, cfg.MaxOpenConns, cfg.MaxIdleConns)

	if err := shared.RunMigrations(lyrics); err != nil {
		lyrics.Close()
		tokens.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Stores{Lyrics: lyrics, Tokens: tokens}, nil
}

// Close closes both stores.
func (s *Stores) Close() error {
	return errors.Join(s.Lyrics.Close(), s.Tokens.Close())
}

// quoteIdent validates a table name and double-quotes it for use in SQL.
func quoteIdent(name string) (string, error) {
	if !identPattern.MatchString(name) {
		return "", fmt.Errorf("%w: table name %q", shared.ErrInvalidInput, name)
	}
	return `"` + name + `"`, nil
}
