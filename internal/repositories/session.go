package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
	"github.com/mattn/go-sqlite3"
)

const (
	createLyricsTable = `CREATE TABLE IF NOT EXISTS %s (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		song_title TEXT UNIQUE NOT NULL,
		lyrics TEXT NOT NULL
	)`

	createTokensTable = `CREATE TABLE IF NOT EXISTS %s (
		id INTEGER PRIMARY KEY,
		token_ids TEXT NOT NULL,
		attention_mask TEXT
	)`

	registerArtist = `
		INSERT OR IGNORE INTO artists (table_name, provider_id, display_name)
		VALUES (?, ?, ?)
	`
)

// Session is a pair of open transactions, one per store.
type Session struct {
	lyrics      *sql.Tx
	tokens      *sql.Tx
	provisioned map[string]bool
}

// WithSession begins a transaction on each store, runs fn, and finalizes both.
//
// Both transactions are committed when fn returns, whether or not it returned
// an error, so songs saved before a failure are kept. Lyrics commit first; if
// that fails the tokens transaction is rolled back. A panic in fn rolls both
// back and is re-raised.
func (s *Stores) WithSession(ctx context.Context, fn func(*Session) error) (err error) {
	// Cancelling ctx must not roll back songs that were already saved.
	txCtx := context.WithoutCancel(ctx)

	ltx, err := s.Lyrics.BeginTx(txCtx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin lyrics transaction: %w", err)
	}

	ttx, err := s.Tokens.BeginTx(txCtx, nil)
	if err != nil {
		ltx.Rollback()
		return fmt.Errorf("failed to begin tokens transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			ltx.Rollback()
			ttx.Rollback()
			panic(r)
		}
	}()

	fnErr := fn(&Session{lyrics: ltx, tokens: ttx, provisioned: make(map[string]bool)})

	if err := ltx.Commit(); err != nil {
		ttx.Rollback()
		return errors.Join(fnErr, fmt.Errorf("failed to commit lyrics: %w", err))
	}
	if err := ttx.Commit(); err != nil {
		return errors.Join(fnErr, fmt.Errorf("failed to commit tokens: %w", err))
	}
	return fnErr
}

// Provision creates the artist's tables in both stores if absent and records
// the artist in the registry. Repeat calls within a session are no-ops.
func (s *Session) Provision(ctx context.Context, artist models.Artist) error {
	if s.provisioned[artist.Table] {
		return nil
	}

	table, err := quoteIdent(artist.Table)
	if err != nil {
		return err
	}
	if shared.IsReservedIdentifier(artist.Table) {
		return fmt.Errorf("%w: table name %q is reserved", shared.ErrInvalidInput, artist.Table)
	}

	if _, err := s.lyrics.ExecContext(ctx, fmt.Sprintf(createLyricsTable, table)); err != nil {
		return fmt.Errorf("failed to create lyrics table: %w", err)
	}
	if _, err := s.tokens.ExecContext(ctx, fmt.Sprintf(createTokensTable, table)); err != nil {
		return fmt.Errorf("failed to create tokens table: %w", err)
	}
	if _, err := s.lyrics.ExecContext(ctx, registerArtist, artist.Table, artist.ID, artist.Name); err != nil {
		return fmt.Errorf("failed to register artist: %w", err)
	}

	s.provisioned[artist.Table] = true
	return nil
}

// Save writes one lyrics row and its tokens row under a shared id.
//
// Returns [shared.ErrDuplicateSong] when title is already stored; nothing is
// written in that case. A failure writing the tokens row also removes the
// lyrics row.
func (s *Session) Save(ctx context.Context, table, title, text string, enc models.Encoding) (int64, error) {
	quoted, err := quoteIdent(table)
	if err != nil {
		return 0, err
	}
	if shared.IsReservedIdentifier(table) {
		return 0, fmt.Errorf("%w: table name %q is reserved", shared.ErrInvalidInput, table)
	}

	if err := s.savepoint(ctx); err != nil {
		return 0, err
	}

	res, err := s.lyrics.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s (song_title, lyrics) VALUES (?, ?)", quoted), title, text)
	if err != nil {
		s.rollbackTo(ctx)
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %q", shared.ErrDuplicateSong, title)
		}
		return 0, fmt.Errorf("failed to insert lyrics: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		s.rollbackTo(ctx)
		return 0, fmt.Errorf("failed to read lyrics id: %w", err)
	}

	var mask any
	if enc.AttentionMask != nil {
		mask = models.JoinMask(enc.AttentionMask)
	}

	_, err = s.tokens.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s (id, token_ids, attention_mask) VALUES (?, ?, ?)", quoted),
		id, models.JoinIDs(enc.IDs), mask)
	if err != nil {
		s.rollbackTo(ctx)
		return 0, fmt.Errorf("failed to insert tokens: %w", err)
	}

	return id, s.release(ctx)
}

func (s *Session) savepoint(ctx context.Context) error {
	if _, err := s.lyrics.ExecContext(ctx, "SAVEPOINT song"); err != nil {
		return fmt.Errorf("failed to open lyrics savepoint: %w", err)
	}
	if _, err := s.tokens.ExecContext(ctx, "SAVEPOINT song"); err != nil {
		undo := context.WithoutCancel(ctx)
		s.lyrics.ExecContext(undo, "ROLLBACK TO SAVEPOINT song")
		s.lyrics.ExecContext(undo, "RELEASE SAVEPOINT song")
		return fmt.Errorf("failed to open tokens savepoint: %w", err)
	}
	return nil
}

func (s *Session) rollbackTo(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	for _, tx := range []*sql.Tx{s.lyrics, s.tokens} {
		tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT song")
		tx.ExecContext(ctx, "RELEASE SAVEPOINT song")
	}
}

func (s *Session) release(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)
	if _, err := s.lyrics.ExecContext(ctx, "RELEASE SAVEPOINT song"); err != nil {
		return fmt.Errorf("failed to release lyrics savepoint: %w", err)
	}
	if _, err := s.tokens.ExecContext(ctx, "RELEASE SAVEPOINT song"); err != nil {
		return fmt.Errorf("failed to release tokens savepoint: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}
