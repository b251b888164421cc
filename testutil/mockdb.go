package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

// MessagesTableSQL is the current layout of the message table
const MessagesTableSQL = `
CREATE TABLE IF NOT EXISTS "chat-messages" (
	"key"  INTEGER PRIMARY KEY AUTOINCREMENT,
	"time" NOT NULL,
	record TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS "chat-messages.time" ON "chat-messages" ("time");`

// CreateInMemoryDB creates an empty in-memory SQLite database for testing.
// The pool is limited to one connection so every query sees the same
// database.
func CreateInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// CreateTestDB creates an in-memory database with the message table at
// schema version 3 and a few sample rows
func CreateTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db := CreateInMemoryDB(t)

	if _, err := db.Exec(MessagesTableSQL); err != nil {
		t.Fatalf("Failed to create message table: %v", err)
	}
	if _, err := db.Exec("PRAGMA user_version = 3"); err != nil {
		t.Fatalf("Failed to set schema version: %v", err)
	}
	InsertRecords(t, db, SampleRecords()...)
	return db
}

// Record is a raw row of the message table
type Record struct {
	Time interface{}
	Body string
}

// SampleRecords returns rows covering numeric and text times
func SampleRecords() []Record {
	return []Record{
		{Time: int64(2000), Body: `{"time":2000,"role":"assistant","text":"Hi there"}`},
		{Time: int64(1000), Body: `{"time":1000,"role":"user","text":"Hello"}`},
		{Time: "2024-01-01T00:00:00Z", Body: `{"time":"2024-01-01T00:00:00Z","role":"user","text":"How are you?"}`},
	}
}

// InsertRecords writes raw rows, bypassing the store
func InsertRecords(t *testing.T, db *sql.DB, records ...Record) {
	t.Helper()
	for _, r := range records {
		if _, err := db.Exec(`INSERT INTO "chat-messages" ("time", record) VALUES (?, ?)`, r.Time, r.Body); err != nil {
			t.Fatalf("Failed to insert record: %v", err)
		}
	}
}
