package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations against a SQLite database.
func Migrate(db *sql.DB) error {
	return migrate(db)
}

// migrate re-runs every statement; each one is idempotent in both dialects.
func migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" (SQLite) and "already exists"
			// (Postgres) errors from ALTER TABLE since the migration system
			// re-runs all statements.
			msg := err.Error()
			if strings.Contains(msg, "duplicate column name") || strings.Contains(msg, "already exists") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS daily_plans (
		id                      TEXT PRIMARY KEY,
		user_id                 TEXT NOT NULL,
		plan_date               TEXT NOT NULL,
		status                  TEXT NOT NULL DEFAULT 'draft'
		                        CHECK(status IN ('draft','submitted','approved','rejected')),
		user_notes              TEXT NOT NULL DEFAULT '',
		admin_notes             TEXT NOT NULL DEFAULT '',
		submitted_at            TEXT,
		approved_at             TEXT,
		approved_by             TEXT,
		edited_after_submission INTEGER NOT NULL DEFAULT 0,
		created_at              TEXT NOT NULL,
		updated_at              TEXT NOT NULL
	)`,

	// One plan per user per calendar date.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_daily_plans_user_date ON daily_plans(user_id, plan_date)`,
	`CREATE INDEX IF NOT EXISTS idx_daily_plans_status ON daily_plans(status)`,

	`CREATE TABLE IF NOT EXISTS time_entries (
		id           TEXT PRIMARY KEY,
		user_id      TEXT NOT NULL,
		entry_date   TEXT NOT NULL,
		minutes      INTEGER NOT NULL CHECK(minutes > 0),
		description  TEXT NOT NULL DEFAULT '',
		mandate_id   TEXT,
		task_type_id TEXT,
		plan_id      TEXT REFERENCES daily_plans(id) ON DELETE SET NULL,
		created_at   TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_time_entries_user_date ON time_entries(user_id, entry_date)`,
	`CREATE INDEX IF NOT EXISTS idx_time_entries_plan ON time_entries(plan_id)`,

	`CREATE TABLE IF NOT EXISTS daily_plan_items (
		id                TEXT PRIMARY KEY,
		plan_id           TEXT NOT NULL REFERENCES daily_plans(id) ON DELETE CASCADE,
		title             TEXT NOT NULL,
		description       TEXT NOT NULL DEFAULT '',
		estimated_minutes INTEGER NOT NULL CHECK(estimated_minutes > 0),
		priority          TEXT NOT NULL DEFAULT 'media'
		                  CHECK(priority IN ('urgente','alta','media','baja')),
		mandate_id        TEXT,
		task_type_id      TEXT,
		assigned_by_admin INTEGER NOT NULL DEFAULT 0,
		completed         INTEGER NOT NULL DEFAULT 0,
		time_entry_id     TEXT REFERENCES time_entries(id) ON DELETE SET NULL,
		order_index       INTEGER NOT NULL,
		created_at        TEXT NOT NULL,
		updated_at        TEXT NOT NULL
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_plan_items_order ON daily_plan_items(plan_id, order_index)`,
}
