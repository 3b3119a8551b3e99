package db

import (
	"database/sql"
	"fmt"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.DB) error
}

// migrations is the list of all migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "initial_schema",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_source_to_sessions",
		Up:      migrationV2,
	},
}

// RunMigrations executes all pending migrations
func RunMigrations() error {
	db, err := GetDB()
	if err != nil {
		return fmt.Errorf("failed to get database: %w", err)
	}

	// Create schema_version table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	// Get current schema version
	var currentVersion int
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	// Run pending migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		fmt.Printf("Running migration %d: %s\n", migration.Version, migration.Name)

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(db); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		_, err = tx.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}

		fmt.Printf("✓ Migration %d completed\n", migration.Version)
	}

	return nil
}

// migrationV1 creates the initial tags, traces, and sessions tables
func migrationV1(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS tags (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE COLLATE NOCASE,
			description TEXT NOT NULL,
			color TEXT NOT NULL DEFAULT '#808080',
			usage_count INTEGER NOT NULL DEFAULT 0,
			examples TEXT NOT NULL DEFAULT '[]',
			created_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create tags table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS traces (
			id TEXT PRIMARY KEY,
			user_input TEXT NOT NULL,
			agent_output TEXT NOT NULL,
			system_prompt TEXT NOT NULL DEFAULT '',
			steps TEXT NOT NULL DEFAULT '[]',
			metadata TEXT NOT NULL DEFAULT '{}',
			reviewed INTEGER NOT NULL DEFAULT 0,
			verdict TEXT NOT NULL DEFAULT '' CHECK(verdict IN ('', 'pass', 'fail', 'defer')),
			open_code TEXT NOT NULL DEFAULT '',
			tag_refs TEXT NOT NULL DEFAULT '[]',
			reviewer_id TEXT NOT NULL DEFAULT '',
			reviewed_at TEXT NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create traces table: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_traces_reviewed ON traces(reviewed);
		CREATE INDEX IF NOT EXISTS idx_traces_verdict ON traces(verdict);
	`)
	if err != nil {
		return fmt.Errorf("failed to create trace indexes: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			trace_ids TEXT NOT NULL DEFAULT '[]',
			tag_snapshot TEXT NOT NULL DEFAULT '[]',
			mode TEXT NOT NULL CHECK(mode IN ('open_coding', 'axial_coding', 'combined')) DEFAULT 'combined',
			total_traces INTEGER NOT NULL DEFAULT 0,
			reviewed_count INTEGER NOT NULL DEFAULT 0,
			passed_count INTEGER NOT NULL DEFAULT 0,
			failed_count INTEGER NOT NULL DEFAULT 0,
			deferred_count INTEGER NOT NULL DEFAULT 0,
			randomize_order INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}

	return nil
}

// migrationV2 adds the source column to sessions so braintrust-backed and
// demo sessions are distinguishable from uploads
func migrationV2(db *sql.DB) error {
	_, err := db.Exec(`
		ALTER TABLE sessions ADD COLUMN source TEXT NOT NULL DEFAULT 'upload'
		CHECK(source IN ('upload', 'braintrust', 'demo'))
	`)
	if err != nil {
		return fmt.Errorf("failed to add source column: %w", err)
	}

	return nil
}
