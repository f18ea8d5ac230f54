package storage

import "fmt"

// migrate creates the notices schema if it doesn't exist.
func (db *DB) migrate() error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	db.logger.Info("database migrations applied")
	return nil
}

// Statements must run unchanged on SQLite and Postgres.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS notices (
		id         TEXT PRIMARY KEY,
		title      TEXT NOT NULL,
		content    TEXT NOT NULL,
		priority   TEXT NOT NULL DEFAULT 'low' CHECK (priority IN ('low', 'medium', 'high')),
		active     BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP NOT NULL,
		expires_at TIMESTAMP
	)`,

	`CREATE INDEX IF NOT EXISTS idx_notices_active ON notices(active, expires_at)`,
}
