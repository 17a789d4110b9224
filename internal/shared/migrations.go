package shared

import (
	"database/sql"
	"embed"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
)

//go:embed sql/*.sql
var migrationFiles embed.FS

// Migration is one versioned schema change for the lyrics store catalog.
type Migration struct {
	Version int
	Up      string
	Down    string
}

// loadMigrations reads "NNNN_name_up.sql" / "NNNN_name_down.sql" pairs from the embedded filesystem, sorted by version.
func loadMigrations() ([]Migration, error) {
	entries, err := migrationFiles.ReadDir("sql")
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory: %w", err)
	}

	byVersion := make(map[int]*Migration)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		prefix, _, ok := strings.Cut(name, "_")
		if !ok {
			continue
		}
		version, err := strconv.Atoi(prefix)
		if err != nil {
			continue
		}

		content, err := migrationFiles.ReadFile(path.Join("sql", name))
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", name, err)
		}

		m, ok := byVersion[version]
		if !ok {
			m = &Migration{Version: version}
			byVersion[version] = m
		}

		switch {
		case strings.HasSuffix(name, "_up.sql"):
			m.Up = string(content)
		case strings.HasSuffix(name, "_down.sql"):
			m.Down = string(content)
		}
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.Up == "" || m.Down == "" {
			return nil, fmt.Errorf("incomplete migration for version %d", m.Version)
		}
		migrations = append(migrations, *m)
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// RunMigrations applies every pending migration, tracking applied versions in schema_migrations.
func RunMigrations(db *sql.DB) error {
	migrations, err := loadMigrations()
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, m := range migrations {
		var applied bool
		if err := db.QueryRow("SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = ?)", m.Version).Scan(&applied); err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if applied {
			continue
		}

		if err := execMigration(db, m.Up, "INSERT INTO schema_migrations (version) VALUES (?)", m.Version); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// RollbackMigration reverts the most recently applied migration.
func RollbackMigration(db *sql.DB) error {
	migrations, err := loadMigrations()
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	var current sql.NullInt64
	if err := db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("failed to check migrations: %w", err)
	}
	if !current.Valid {
		return fmt.Errorf("no migrations to rollback")
	}

	for _, m := range migrations {
		if int64(m.Version) == current.Int64 {
			if err := execMigration(db, m.Down, "DELETE FROM schema_migrations WHERE version = ?", m.Version); err != nil {
				return fmt.Errorf("failed to rollback migration %d: %w", m.Version, err)
			}
			return nil
		}
	}

	return fmt.Errorf("migration version %d not found", current.Int64)
}

// execMigration runs each statement of script and the bookkeeping statement in one transaction.
func execMigration(db *sql.DB, script, record string, version int) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range strings.Split(script, ";") {
		stmt = strings.TrimSpace(removeComments(stmt))
		if stmt == "" {
			continue
		}
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute statement: %w\nStatement: %s", err, stmt)
		}
	}

	if _, err := tx.Exec(record, version); err != nil {
		return err
	}
	return tx.Commit()
}

// removeComments strips "--" comments and blank lines from a statement.
func removeComments(stmt string) string {
	var kept []string
	for _, line := range strings.Split(stmt, "\n") {
		if idx := strings.Index(line, "--"); idx >= 0 {
			line = line[:idx]
		}
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
