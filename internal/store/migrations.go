package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

// The weather table keeps the literal column names of the source CSV so that
// files produced by earlier tooling load unchanged.
var migrations = []migration{
	{
		Version:     1,
		Description: "Initial schema",
		SQL: `
CREATE TABLE IF NOT EXISTS weather (
    "Year" INTEGER NOT NULL UNIQUE,
    "Avg Temp (°C)" REAL NOT NULL,
    "Max Temp" REAL NOT NULL,
    "Min Temp" REAL NOT NULL,
    "Total Rain (mm)" REAL NOT NULL,
    "Snow (cm)" REAL NOT NULL,
    "Sunshine Hours" REAL NOT NULL
);
`,
	},
	{
		Version:     2,
		Description: "Import audit runs",
		SQL: `
CREATE TABLE IF NOT EXISTS import_runs (
    id TEXT PRIMARY KEY,
    started_at DATETIME NOT NULL,
    finished_at DATETIME,
    source TEXT NOT NULL,
    payload_hash TEXT,
    rows_parsed INTEGER,
    rows_stored INTEGER,
    rows_flagged INTEGER,
    success BOOLEAN NOT NULL DEFAULT FALSE,
    error_message TEXT
);

CREATE INDEX IF NOT EXISTS idx_import_runs_started ON import_runs(started_at);
`,
	},
	{
		Version:     3,
		Description: "Compressed source payloads",
		SQL: `
CREATE TABLE IF NOT EXISTS source_payloads (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    import_run_id TEXT REFERENCES import_runs(id),
    fetched_at DATETIME NOT NULL,
    source TEXT NOT NULL,
    payload_compressed BLOB NOT NULL,
    payload_hash TEXT NOT NULL UNIQUE,
    size_bytes INTEGER NOT NULL
);
`,
	},
}

// Migrate brings the schema up to the latest version. Each migration runs in
// its own transaction together with its schema_migrations row.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			description TEXT,
			applied_at DATETIME
		)
	`); err != nil {
		return fmt.Errorf("ensure migrations table: %w", err)
	}

	current, err := s.MigrationVersion(ctx)
	if err != nil {
		return fmt.Errorf("read migration version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if err := s.apply(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) apply(ctx context.Context, m migration) error {
	log.Printf("store: migration %d (%s)", m.Version, m.Description)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migration %d: begin: %w", m.Version, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("migration %d: %w", m.Version, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)`,
		m.Version, m.Description, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("migration %d: record: %w", m.Version, err)
	}
	return tx.Commit()
}

// MigrationVersion returns the highest applied version, or 0 on a fresh database.
func (s *Store) MigrationVersion(ctx context.Context) (int, error) {
	var version sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations`).Scan(&version)
	if err != nil {
		return 0, err
	}
	return int(version.Int64), nil
}
