package internal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// HandleState is the lifecycle state of the database handle
type HandleState int

const (
	StateClosed HandleState = iota
	StateOpening
	StateReady
	StateFailed
)

func (s HandleState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpening:
		return "opening"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("HandleState(%d)", int(s))
	}
}

// MessageStore persists chat messages in a local SQLite database, ordered
// by their time value.
//
// The database handle is shared and reference counted: the first caller to
// acquire it opens the database and the last one to release it closes it
// again. Every operation acquires the handle for exactly one unit of work.
type MessageStore struct {
	path string

	mu    sync.Mutex
	db    *sql.DB
	refs  int
	state HandleState
}

// StorageHandle is a scoped reference to an open database. It must be
// released exactly once; extra calls to Release are no-ops.
type StorageHandle struct {
	store *MessageStore
	db    *sql.DB
	once  sync.Once
}

// NewMessageStore creates a store for the database file at path. Nothing
// is opened until the first operation.
func NewMessageStore(path string) *MessageStore {
	return &MessageStore{path: path}
}

// Path returns the database file path
func (s *MessageStore) Path() string {
	return s.path
}

// State returns the current handle state
func (s *MessageStore) State() HandleState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Open acquires a ready handle, opening and upgrading the database if no
// other caller holds it.
func (s *MessageStore) Open(ctx context.Context) (*StorageHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.refs > 0 && s.db != nil {
		s.refs++
		return &StorageHandle{store: s, db: s.db}, nil
	}

	s.state = StateOpening
	db, err := s.openReady(ctx)
	if err != nil {
		s.state = StateFailed
		LogDebug("Failed to open %s: %v", s.path, err)
		return nil, err
	}

	s.db = db
	s.refs = 1
	s.state = StateReady
	return &StorageHandle{store: s, db: db}, nil
}

func (s *MessageStore) openReady(ctx context.Context) (*sql.DB, error) {
	db, err := OpenDatabase(ctx, s.path)
	if err != nil {
		return nil, &OpenError{Path: s.path, Err: err}
	}

	version, err := UserVersion(ctx, db)
	if err != nil {
		db.Close()
		return nil, &OpenError{Path: s.path, Err: err}
	}
	if version > SchemaVersion {
		db.Close()
		return nil, &OpenError{Path: s.path, Err: fmt.Errorf("%w: version %d", ErrUnsupportedVersion, version)}
	}
	if version < SchemaVersion {
		if err := upgradeSchema(ctx, db, version); err != nil {
			db.Close()
			return nil, &OpenError{Path: s.path, Err: err}
		}
		version = SchemaVersion
	}

	exists, err := collectionExists(ctx, db)
	if err != nil {
		db.Close()
		return nil, &OpenError{Path: s.path, Err: err}
	}
	if !exists {
		db.Close()
		return nil, &SchemaError{Path: s.path, Collection: CollectionName, Version: version}
	}

	return db, nil
}

// DB returns the underlying database for the lifetime of the handle
func (h *StorageHandle) DB() *sql.DB {
	return h.db
}

// Version returns the schema version of the open database
func (h *StorageHandle) Version(ctx context.Context) (int, error) {
	return UserVersion(ctx, h.db)
}

// Release gives the handle back. The database is closed when the last
// handle is released.
func (h *StorageHandle) Release() error {
	var err error
	h.once.Do(func() {
		err = h.store.release(h.db)
	})
	return err
}

func (s *MessageStore) release(db *sql.DB) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Close() already tore this handle down
	if s.db != db {
		return nil
	}

	s.refs--
	if s.refs > 0 {
		return nil
	}
	s.db = nil
	s.refs = 0
	s.state = StateClosed
	return db.Close()
}

// Close force-closes the shared handle regardless of outstanding references
func (s *MessageStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	db := s.db
	s.db = nil
	s.refs = 0
	s.state = StateClosed
	return db.Close()
}

// withHandle runs fn against an acquired handle and releases it on every path
func (s *MessageStore) withHandle(ctx context.Context, op string, fn func(ctx context.Context, db *sql.DB) error) (err error) {
	ctx, span := Tracer().Start(ctx, "store."+op)
	span.SetAttributes(attribute.String("db.path", s.path))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		RecordOperation(ctx, "store", op, err)
	}()

	h, err := s.Open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := h.Release(); rerr != nil {
			LogWarn("Failed to release database handle: %v", rerr)
		}
	}()

	return fn(ctx, h.db)
}

// Add stores msg and returns the key assigned to it. When msg carries a key
// that is already in use the call fails with DuplicateKeyError and nothing
// is written; otherwise a fresh key is always generated.
func (s *MessageStore) Add(ctx context.Context, msg ChatMessage) (Key, error) {
	sortValue, err := msg.Time.SortValue()
	if err != nil {
		return 0, fmt.Errorf("cannot add message: %w", err)
	}
	record, err := msg.record()
	if err != nil {
		return 0, &WriteError{Err: fmt.Errorf("encode record: %w", err)}
	}

	var key Key
	err = s.withHandle(ctx, "add", func(ctx context.Context, db *sql.DB) error {
		conn, err := db.Conn(ctx)
		if err != nil {
			return &WriteError{Err: err}
		}
		defer conn.Close()

		// IMMEDIATE takes the write lock up front so the lookup and the
		// insert see the same state.
		if _, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
			return &WriteError{Err: fmt.Errorf("begin: %w", err)}
		}
		committed := false
		defer func() {
			if !committed {
				if _, err := conn.ExecContext(context.Background(), "ROLLBACK"); err != nil {
					LogWarn("Rollback failed: %v", err)
				}
			}
		}()

		if msg.Key != 0 {
			exists, err := keyExists(ctx, conn, msg.Key)
			if err != nil {
				return &WriteError{Err: fmt.Errorf("lookup key %s: %w", msg.Key, err)}
			}
			if exists {
				LogDebug("Message with key %s already exists", msg.Key)
				return &DuplicateKeyError{Key: msg.Key}
			}
		}

		res, err := conn.ExecContext(ctx,
			`INSERT INTO "chat-messages" ("time", record) VALUES (?, ?)`, sortValue, string(record))
		if err != nil {
			return &WriteError{Err: fmt.Errorf("insert: %w", err)}
		}
		id, err := res.LastInsertId()
		if err != nil {
			return &WriteError{Err: err}
		}

		if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
			return &WriteError{Err: fmt.Errorf("commit: %w", err)}
		}
		committed = true
		key = Key(id)
		return nil
	})
	if err != nil {
		return 0, err
	}

	LogDebug("Added message %s", key)
	return key, nil
}

type rowQueryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func keyExists(ctx context.Context, q rowQueryer, key Key) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM "chat-messages" WHERE "key" = ?`, int64(key)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// List returns every stored message in ascending time order, ties broken
// by key. A traversal failure discards partial results.
func (s *MessageStore) List(ctx context.Context) ([]ChatMessage, error) {
	var messages []ChatMessage
	err := s.withHandle(ctx, "list", func(ctx context.Context, db *sql.DB) error {
		rows, err := db.QueryContext(ctx,
			`SELECT "key", record FROM "chat-messages" ORDER BY "time", "key"`)
		if err != nil {
			return &ReadError{Op: "list", Err: err}
		}
		defer rows.Close()

		result := make([]ChatMessage, 0)
		for rows.Next() {
			var key int64
			var record string
			if err := rows.Scan(&key, &record); err != nil {
				return &ReadError{Op: "list", Err: fmt.Errorf("scan failed: %w", err)}
			}
			msg, err := decodeRecord(Key(key), []byte(record))
			if err != nil {
				return &ReadError{Op: "list", Err: err}
			}
			result = append(result, msg)
		}
		if err := rows.Err(); err != nil {
			return &ReadError{Op: "list", Err: fmt.Errorf("rows iteration error: %w", err)}
		}

		messages = result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// Get returns the message stored under key, or ErrNotFound
func (s *MessageStore) Get(ctx context.Context, key Key) (ChatMessage, error) {
	var msg ChatMessage
	err := s.withHandle(ctx, "get", func(ctx context.Context, db *sql.DB) error {
		var record string
		err := db.QueryRowContext(ctx,
			`SELECT record FROM "chat-messages" WHERE "key" = ?`, int64(key)).Scan(&record)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		if err != nil {
			return &ReadError{Op: "get", Err: err}
		}
		msg, err = decodeRecord(key, []byte(record))
		if err != nil {
			return &ReadError{Op: "get", Err: err}
		}
		return nil
	})
	if err != nil {
		return ChatMessage{}, err
	}
	return msg, nil
}

// Count returns the number of stored messages
func (s *MessageStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.withHandle(ctx, "count", func(ctx context.Context, db *sql.DB) error {
		if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM "chat-messages"`).Scan(&n); err != nil {
			return &ReadError{Op: "count", Err: err}
		}
		return nil
	})
	return n, err
}

// Delete removes the message stored under key. Deleting a key that does
// not exist succeeds.
func (s *MessageStore) Delete(ctx context.Context, key Key) error {
	err := s.withHandle(ctx, "delete", func(ctx context.Context, db *sql.DB) error {
		res, err := db.ExecContext(ctx, `DELETE FROM "chat-messages" WHERE "key" = ?`, int64(key))
		if err != nil {
			return &DeleteError{Key: key, Err: err}
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			LogDebug("Delete of %s matched no message", key)
		}
		return nil
	})
	if err != nil {
		return err
	}
	LogDebug("Deleted message %s", key)
	return nil
}
