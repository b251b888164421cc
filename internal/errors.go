package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by Get when no record has the given key
	ErrNotFound = errors.New("message not found")

	// ErrMissingTime is returned by Add for a message without a time value
	ErrMissingTime = errors.New("message has no time")

	// ErrUnsupportedVersion means the database was written by a newer schema
	ErrUnsupportedVersion = errors.New("database schema is newer than supported")
)

// StorageError represents errors accessing plain files next to the database
type StorageError struct {
	Path string
	Op   string // "open", "read", "write"
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// OpenError represents a failure to provide storage at all
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open error %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// SchemaError means the collection is missing after an open that should
// have created it.
type SchemaError struct {
	Path       string
	Collection string
	Version    int
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error %s: collection %q missing at version %d", e.Path, e.Collection, e.Version)
}

// DuplicateKeyError is returned by Add when the caller supplied a key that
// already belongs to a stored record.
type DuplicateKeyError struct {
	Key Key
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key: %s already exists", e.Key)
}

// ReadError represents a failed lookup or traversal
type ReadError struct {
	Op  string // "list", "get"
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read error [%s]: %v", e.Op, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// WriteError represents a storage fault while adding a message
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write error: %v", e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// DeleteError represents a storage fault while deleting a message
type DeleteError struct {
	Key Key
	Err error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("delete error [%s]: %v", e.Key, e.Err)
}

func (e *DeleteError) Unwrap() error {
	return e.Err
}
