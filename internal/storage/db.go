package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// DB wraps a SQL connection (SQLite or Postgres) holding the notices table.
type DB struct {
	*sqlx.DB
	driver string
	logger *slog.Logger
	now    func() time.Time
}

// Open connects with driver ("sqlite3" or "pgx"), verifies the connection
// and applies migrations. For sqlite3 a bare path is expanded into a DSN
// with WAL and a busy timeout.
func Open(driver, dsn string, logger *slog.Logger) (*DB, error) {
	switch driver {
	case "sqlite3":
		if !strings.HasPrefix(dsn, "file:") {
			dsn = fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", dsn)
		}
	case "pgx":
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	sqlDB, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if driver == "pgx" {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(2)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db := &DB{DB: sqlDB, driver: driver, logger: logger, now: time.Now}

	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	logger.Info("database opened", "driver", driver)
	return db, nil
}

// WithClock sets the clock used for created_at.
func (db *DB) WithClock(now func() time.Time) *DB {
	db.now = now
	return db
}

// Ping checks the connection with a short deadline.
func (db *DB) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}
