package internal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const (
	// DefaultDatabaseName is the name of the database file without extension
	DefaultDatabaseName = "chat-db"

	// CollectionName is the table holding chat messages
	CollectionName = "chat-messages"

	// SchemaVersion is recorded in PRAGMA user_version after the upgrade step
	SchemaVersion = 3
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS "chat-messages" (
	"key"  INTEGER PRIMARY KEY AUTOINCREMENT,
	"time" NOT NULL,
	record TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS "chat-messages.time" ON "chat-messages" ("time");`

// OpenDatabase opens (creating if needed) the SQLite database at path
func OpenDatabase(ctx context.Context, path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	return db, nil
}

// UserVersion reads the schema version recorded in the database
func UserVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// upgradeSchema creates the collection and its time index when the stored
// version is older than SchemaVersion. Creation is idempotent.
func upgradeSchema(ctx context.Context, db *sql.DB, from int) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin upgrade: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", SchemaVersion)); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit upgrade: %w", err)
	}

	LogDebug("Upgraded schema from version %d to %d", from, SchemaVersion)
	return nil
}

// collectionExists checks sqlite_master for the message table
func collectionExists(ctx context.Context, db *sql.DB) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", CollectionName).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query failed: %w", err)
	}
	return n > 0, nil
}
