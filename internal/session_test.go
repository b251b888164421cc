package internal

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/mayike4315/gpt-web/testutil"
)

func TestStaticSession(t *testing.T) {
	uid, err := StaticSession("fixed").UID()
	if err != nil || uid != "fixed" {
		t.Errorf("UID() = %q, %v; want fixed", uid, err)
	}
}

func TestFileSession_GeneratesAndPersists(t *testing.T) {
	path := filepath.Join(testutil.CreateTempDir(t), "state", "uid")
	s := NewFileSession(path)

	first, err := s.UID()
	if err != nil {
		t.Fatalf("UID() error = %v", err)
	}
	if _, err := uuid.Parse(first); err != nil {
		t.Errorf("generated id %q is not a UUID: %v", first, err)
	}

	second, err := NewFileSession(path).UID()
	if err != nil {
		t.Fatalf("UID() error = %v", err)
	}
	if first != second {
		t.Errorf("id not persisted: %q then %q", first, second)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("uid file missing: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("uid file mode = %v, want 0600", perm)
	}
}

func TestFileSession_ReadsOnEveryCall(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	path := testutil.WriteFile(t, dir, "uid", []byte("  first-id \n"))
	s := NewFileSession(path)

	if uid, _ := s.UID(); uid != "first-id" {
		t.Errorf("UID() = %q, want first-id", uid)
	}

	if err := s.Set("second-id"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if uid, _ := s.UID(); uid != "second-id" {
		t.Errorf("UID() after Set = %q, want second-id", uid)
	}

	// Changes made by someone else are picked up too
	testutil.WriteFile(t, dir, "uid", []byte("third-id"))
	if uid, _ := s.UID(); uid != "third-id" {
		t.Errorf("UID() after external write = %q, want third-id", uid)
	}
}

func TestFileSession_EmptyFile(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	path := testutil.WriteFile(t, dir, "uid", []byte("\n"))

	uid, err := NewFileSession(path).UID()
	if err != nil {
		t.Fatalf("UID() error = %v", err)
	}
	if strings.TrimSpace(uid) == "" {
		t.Error("empty file should yield a generated id")
	}
}

func TestFileSession_Errors(t *testing.T) {
	if err := NewFileSession(filepath.Join(t.TempDir(), "uid")).Set("  "); err == nil {
		t.Error("Set() with blank id should fail")
	}

	// A directory where the file should be cannot be read
	dir := testutil.CreateTempDir(t)
	_, err := NewFileSession(dir).UID()
	var storageErr *StorageError
	if !errors.As(err, &storageErr) {
		t.Errorf("UID() on a directory error = %v, want StorageError", err)
	}
}
