package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: Older databases predate the costprice column. SQLite has
	// no ADD COLUMN IF NOT EXISTS, so Migrate skips the duplicate-column error.
	`ALTER TABLE items ADD COLUMN costprice INTEGER NOT NULL DEFAULT 0`,
}

// Migrate runs the database schema migrations.
func Migrate(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
