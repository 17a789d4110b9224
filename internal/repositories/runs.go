package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
)

// RunRepository records ingest runs in the lyrics store.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Start opens a run for query and returns its generated id.
func (r *RunRepository) Start(ctx context.Context, query string) (string, error) {
	id := shared.GenerateID()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO runs (id, query, status) VALUES (?, ?, ?)`, id, query, string(models.RunRunning))
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}
	return id, nil
}

// Finish closes a run with its outcome.
func (r *RunRepository) Finish(ctx context.Context, id, table string, stored, skipped int, status models.RunStatus) error {
	query := `
		UPDATE runs
		SET artist_table = ?, stored = ?, skipped = ?, status = ?, finished_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	var artistTable any
	if table != "" {
		artistTable = table
	}

	result, err := r.db.ExecContext(ctx, query, artistTable, stored, skipped, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found: %s", id)
	}
	return nil
}

// Get retrieves a run by id.
func (r *RunRepository) Get(ctx context.Context, id string) (*models.Run, error) {
	query := `
		SELECT id, query, artist_table, stored, skipped, status, started_at, finished_at
		FROM runs
		WHERE id = ?
	`

	var run models.Run
	var table sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID, &run.Query, &table, &run.Stored, &run.Skipped, &run.Status, &run.StartedAt, &run.FinishedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run.ArtistTable = table.String
	return &run, nil
}
