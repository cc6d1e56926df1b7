package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	// One row per task, keyed by the stable local identifier: the remote
	// identifier once known, otherwise a "local-" placeholder. Relationship
	// fields live on the record itself; the in-memory graph is derived.
	`CREATE TABLE IF NOT EXISTS tasks (
		id            TEXT PRIMARY KEY,
		remote_id     TEXT NOT NULL DEFAULT '',
		title         TEXT NOT NULL,
		description   TEXT NOT NULL DEFAULT '',
		priority      INTEGER,
		created_at    TEXT NOT NULL,
		soft_start    TEXT,
		hard_end      TEXT,
		status        TEXT NOT NULL DEFAULT 'not_started'
		              CHECK(status IN ('not_started','in_progress','completed','ignored')),
		parent_id     TEXT,
		child_ids     TEXT NOT NULL DEFAULT '[]',
		last_modified TEXT NOT NULL,
		sync_status   TEXT NOT NULL DEFAULT 'pending'
		              CHECK(sync_status IN ('synced','pending','conflict'))
	)`,

	`CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_sync_status ON tasks(sync_status)`,

	// Auxiliary metadata slots (currently only last_sync_time).
	`CREATE TABLE IF NOT EXISTS sync_meta (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,

	// Deletion intents for removed tasks that had a remote identity. The
	// facade records them on removal; the sync engine pushes each to the
	// remote and clears it on success.
	`CREATE TABLE IF NOT EXISTS pending_deletes (
		id TEXT PRIMARY KEY
	)`,
}
