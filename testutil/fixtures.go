package testutil

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func openFixture(t *testing.T, dbPath string) *sql.DB {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		t.Fatalf("Failed to create fixture directory: %v", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	return db
}

// CreateVersionedDB creates a database file that records version but has
// no message table. Version 0 yields a database that looks brand new,
// versions above 3 one written by a newer release.
func CreateVersionedDB(t *testing.T, dbPath string, version int) {
	t.Helper()
	db := openFixture(t, dbPath)
	defer func() { _ = db.Close() }()

	// An unrelated table makes sure the file is a real database
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (name TEXT PRIMARY KEY, value TEXT)`); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		t.Fatalf("Failed to set schema version: %v", err)
	}
}

// CreateLegacyDB creates a database at schema version 2 that already holds
// a message table with rows, as left behind by an older release
func CreateLegacyDB(t *testing.T, dbPath string, records ...Record) {
	t.Helper()
	db := openFixture(t, dbPath)
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(MessagesTableSQL); err != nil {
		t.Fatalf("Failed to create message table: %v", err)
	}
	if _, err := db.Exec("PRAGMA user_version = 2"); err != nil {
		t.Fatalf("Failed to set schema version: %v", err)
	}
	InsertRecords(t, db, records...)
}

// CreateSQLiteFixture creates a current database file holding records
func CreateSQLiteFixture(t *testing.T, dbPath string, records ...Record) {
	t.Helper()
	db := openFixture(t, dbPath)
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(MessagesTableSQL); err != nil {
		t.Fatalf("Failed to create message table: %v", err)
	}
	if _, err := db.Exec("PRAGMA user_version = 3"); err != nil {
		t.Fatalf("Failed to set schema version: %v", err)
	}
	InsertRecords(t, db, records...)
}

// CreateCorruptDB writes a file that is not a SQLite database
func CreateCorruptDB(t *testing.T, dbPath string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		t.Fatalf("Failed to create fixture directory: %v", err)
	}
	if err := os.WriteFile(dbPath, []byte("this is not a database file, just some text padding it out"), 0644); err != nil {
		t.Fatalf("Failed to write corrupt database: %v", err)
	}
}
