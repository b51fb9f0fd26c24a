package store

import "fmt"

// currentSchemaVersion is the latest schema version.
const currentSchemaVersion = 1

// Migrate runs forward migrations to bring the database schema up to date.
func (db *DB) Migrate() error {
	if _, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	version := 0
	row := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1")
	if err := row.Scan(&version); err != nil {
		// No rows means a fresh database.
		version = 0
	}

	if version < 1 {
		if err := db.migrateV1(); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return nil
}

// migrateV1 creates the runs table and its indexes.
func (db *DB) migrateV1() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id            TEXT NOT NULL UNIQUE,
			started_at        TEXT NOT NULL,
			project_path      TEXT NOT NULL,
			job_path          TEXT NOT NULL,
			src_count         INTEGER NOT NULL,
			tb_count          INTEGER NOT NULL,
			include_count     INTEGER NOT NULL,
			include_dir_count INTEGER NOT NULL,
			total_files       INTEGER NOT NULL,
			status            TEXT NOT NULL,
			error             TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_job_path ON runs(job_path)`,
		`DELETE FROM schema_version`,
		fmt.Sprintf(`INSERT INTO schema_version (version) VALUES (%d)`, currentSchemaVersion),
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
