package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// SessionContext supplies the identity sent with every API request. It is
// consulted on each call, never cached by the client.
type SessionContext interface {
	UID() (string, error)
}

// StaticSession is a fixed identity
type StaticSession string

// UID implements SessionContext
func (s StaticSession) UID() (string, error) {
	return strings.TrimSpace(string(s)), nil
}

// FileSession keeps the identity in a small file, read on every call.
// A missing file gets a freshly generated identifier.
type FileSession struct {
	Path string
}

// NewFileSession creates a FileSession backed by path
func NewFileSession(path string) *FileSession {
	return &FileSession{Path: path}
}

// UID implements SessionContext
func (s *FileSession) UID() (string, error) {
	data, err := os.ReadFile(s.Path)
	if err == nil {
		if uid := strings.TrimSpace(string(data)); uid != "" {
			return uid, nil
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", &StorageError{Path: s.Path, Op: "read", Err: err}
	}

	uid := uuid.NewString()
	if err := s.Set(uid); err != nil {
		return "", err
	}
	LogDebug("Generated session id %s", uid)
	return uid, nil
}

// Set replaces the stored identity
func (s *FileSession) Set(uid string) error {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return fmt.Errorf("session id must not be empty")
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0700); err != nil {
		return &StorageError{Path: s.Path, Op: "open", Err: err}
	}
	if err := os.WriteFile(s.Path, []byte(uid+"\n"), 0600); err != nil {
		return &StorageError{Path: s.Path, Op: "write", Err: err}
	}
	return nil
}
