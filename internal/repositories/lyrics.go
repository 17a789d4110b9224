package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
)

// LyricsRepository reads stored lyrics and tokens for export and listings.
type LyricsRepository struct {
	stores *Stores
}

// NewLyricsRepository creates a LyricsRepository over both stores.
func NewLyricsRepository(stores *Stores) *LyricsRepository {
	return &LyricsRepository{stores: stores}
}

// Tables lists registered artist tables with their row counts, ordered by name.
func (r *LyricsRepository) Tables(ctx context.Context) ([]models.ArtistTable, error) {
	rows, err := r.stores.Lyrics.QueryContext(ctx, `
		SELECT table_name, provider_id, display_name, created_at
		FROM artists
		ORDER BY table_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query artists: %w", err)
	}
	defer rows.Close()

	var tables []models.ArtistTable
	for rows.Next() {
		var t models.ArtistTable
		if err := rows.Scan(&t.Table, &t.ProviderID, &t.DisplayName, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan artist: %w", err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating artists: %w", err)
	}

	for i := range tables {
		if tables[i].Songs, err = count(ctx, r.stores.Lyrics, tables[i].Table); err != nil {
			return nil, err
		}
		if tables[i].Tokenized, err = count(ctx, r.stores.Tokens, tables[i].Table); err != nil {
			return nil, err
		}
	}
	return tables, nil
}

// List returns every lyrics row of a registered table in id order.
func (r *LyricsRepository) List(ctx context.Context, table string) ([]models.LyricsRecord, error) {
	quoted, err := r.registered(ctx, table)
	if err != nil {
		return nil, err
	}

	rows, err := r.stores.Lyrics.QueryContext(ctx,
		fmt.Sprintf("SELECT id, song_title, lyrics FROM %s ORDER BY id", quoted))
	if err != nil {
		return nil, fmt.Errorf("failed to query lyrics: %w", err)
	}
	defer rows.Close()

	var records []models.LyricsRecord
	for rows.Next() {
		rec := models.LyricsRecord{Table: table}
		if err := rows.Scan(&rec.ID, &rec.SongTitle, &rec.Lyrics); err != nil {
			return nil, fmt.Errorf("failed to scan lyrics: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lyrics: %w", err)
	}
	return records, nil
}

// Tokens returns every tokens row of a registered table keyed by id.
func (r *LyricsRepository) Tokens(ctx context.Context, table string) (map[int64]models.TokenRecord, error) {
	quoted, err := r.registered(ctx, table)
	if err != nil {
		return nil, err
	}

	rows, err := r.stores.Tokens.QueryContext(ctx,
		fmt.Sprintf("SELECT id, token_ids, attention_mask FROM %s ORDER BY id", quoted))
	if err != nil {
		return nil, fmt.Errorf("failed to query tokens: %w", err)
	}
	defer rows.Close()

	records := make(map[int64]models.TokenRecord)
	for rows.Next() {
		var (
			rec  = models.TokenRecord{Table: table}
			ids  string
			mask sql.NullString
		)
		if err := rows.Scan(&rec.ID, &ids, &mask); err != nil {
			return nil, fmt.Errorf("failed to scan tokens: %w", err)
		}
		if rec.Encoding.IDs, err = models.SplitIDs(ids); err != nil {
			return nil, fmt.Errorf("malformed token ids for row %d: %w", rec.ID, err)
		}
		if mask.Valid {
			m, err := models.SplitIDs(mask.String)
			if err != nil {
				return nil, fmt.Errorf("malformed attention mask for row %d: %w", rec.ID, err)
			}
			rec.Encoding.AttentionMask = make([]uint8, len(m))
			for i, v := range m {
				rec.Encoding.AttentionMask[i] = uint8(v)
			}
		}
		records[rec.ID] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tokens: %w", err)
	}
	return records, nil
}

// registered quotes table after checking it is in the artist registry.
func (r *LyricsRepository) registered(ctx context.Context, table string) (string, error) {
	quoted, err := quoteIdent(table)
	if err != nil {
		return "", err
	}

	var name string
	err = r.stores.Lyrics.QueryRowContext(ctx, `SELECT table_name FROM artists WHERE table_name = ?`, table).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: unknown table %q", shared.ErrInvalidArgument, table)
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up table: %w", err)
	}
	return quoted, nil
}

func count(ctx context.Context, db *sql.DB, table string) (int, error) {
	quoted, err := quoteIdent(table)
	if err != nil {
		return 0, err
	}

	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoted).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}
