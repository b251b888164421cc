package internal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mayike4315/gpt-web/testutil"
)

func TestRecordOperation_WithoutProvider(t *testing.T) {
	// The global no-op providers must accept both outcomes
	RecordOperation(context.Background(), "store", "add", nil)
	RecordOperation(context.Background(), "api", "chat", errors.New("boom"))
}

func TestInitTelemetry(t *testing.T) {
	dir := testutil.CreateTempDir(t)

	shutdown, err := InitTelemetry(context.Background(), dir, "test")
	if err != nil {
		t.Fatalf("InitTelemetry() error = %v", err)
	}

	store := NewMessageStore(filepath.Join(dir, "db", "chat-db.sqlite"))
	mustAdd(t, store, mustMessage(t, MillisTimestamp(1), map[string]any{"text": "traced"}))
	mustList(t, store)
	shutdown()

	data, err := os.ReadFile(filepath.Join(dir, "traces.log"))
	if err != nil {
		t.Fatalf("traces not written: %v", err)
	}
	for _, span := range []string{"store.add", "store.list"} {
		if !strings.Contains(string(data), span) {
			t.Errorf("trace file missing span %q", span)
		}
	}

	metrics, err := os.ReadFile(filepath.Join(dir, "metrics.log"))
	if err != nil {
		t.Fatalf("metrics not written: %v", err)
	}
	if !strings.Contains(string(metrics), "gptweb.operations") {
		t.Errorf("metrics file missing operations counter")
	}
}

func TestInitTelemetry_BadDir(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	blocker := testutil.WriteFile(t, dir, "file", []byte("x"))

	if _, err := InitTelemetry(context.Background(), filepath.Join(blocker, "telemetry"), "test"); err == nil {
		t.Error("InitTelemetry() below a regular file should fail")
	}
}
