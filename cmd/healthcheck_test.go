package cmd

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
)

func TestHealthcheckCommand(t *testing.T) {
	dir := t.TempDir()
	seedMessages(t, dir, "one", "two")

	out, err := executeCommand(t, inDataDir(dir, "healthcheck", "--verbose")...)
	if err != nil {
		t.Fatalf("healthcheck failed: %v\n%s", err, out)
	}
	for _, want := range []string{"schema version 3", "2 message(s) stored", "All checks passed", "Database:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestHealthcheckCommand_API(t *testing.T) {
	t.Run("reachable", func(t *testing.T) {
		srv, requests := newBackend(t, http.StatusOK, `{}`)
		out, err := executeCommand(t, inDataDir(t.TempDir(), "healthcheck", "--api", "--api-base-url", srv.URL, "--uid", "u")...)
		if err != nil {
			t.Fatalf("healthcheck failed: %v\n%s", err, out)
		}
		if !strings.Contains(out, "Backend reachable") {
			t.Errorf("output = %q", out)
		}
		got := requests()
		if len(got) != 1 {
			t.Fatalf("backend got %d requests, want 1", len(got))
		}
		if got[0].Method != http.MethodHead || got[0].Path != "/" {
			t.Errorf("request = %s %s, want HEAD / so the stream stays open", got[0].Method, got[0].Path)
		}
	})

	t.Run("not configured", func(t *testing.T) {
		out, err := executeCommand(t, inDataDir(t.TempDir(), "healthcheck", "--api")...)
		if err == nil {
			t.Fatal("healthcheck --api without base url should fail")
		}
		if !strings.Contains(out, "Backend not configured") {
			t.Errorf("output = %q", out)
		}
	})

	t.Run("failing backend", func(t *testing.T) {
		srv, _ := newBackend(t, http.StatusBadGateway, `bad`)
		if _, err := executeCommand(t, inDataDir(t.TempDir(), "healthcheck", "--api", "--api-base-url", srv.URL, "--uid", "u")...); err == nil {
			t.Error("healthcheck against a failing backend should fail")
		}
	})
}

func TestInspectCommand(t *testing.T) {
	dir := t.TempDir()
	seedMessages(t, dir, "hello")

	tests := []struct {
		name    string
		args    []string
		want    []string
		wantErr bool
	}{
		{
			name: "text report",
			args: []string{"inspect"},
			want: []string{"Schema version: 3", "Table: chat-messages", "index chat-messages.time", "Rows: 1", "hello"},
		},
		{
			name: "no samples",
			args: []string{"inspect", "--sample", "0"},
			want: []string{"Table: chat-messages"},
		},
		{
			name:    "invalid format",
			args:    []string{"inspect", "--format", "xml"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := executeCommand(t, inDataDir(dir, tt.args...)...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("inspect error = %v, wantErr %v", err, tt.wantErr)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestInspectCommand_JSON(t *testing.T) {
	dir := t.TempDir()
	seedMessages(t, dir, "hello")

	out, err := executeCommand(t, inDataDir(dir, "inspect", "--format", "json")...)
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}

	var report DatabaseReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("output is not a JSON report: %v\n%s", err, out)
	}
	if report.Version != 3 {
		t.Errorf("version = %d, want 3", report.Version)
	}

	var found bool
	for _, table := range report.Tables {
		if table.Name != "chat-messages" {
			continue
		}
		found = true
		if table.Rows != 1 {
			t.Errorf("rows = %d, want 1", table.Rows)
		}
		if len(table.Columns) != 3 {
			t.Errorf("columns = %+v, want key, time, record", table.Columns)
		}
		if len(table.Sample) != 1 || !strings.Contains(table.Sample[0]["record"], "hello") {
			t.Errorf("sample = %v", table.Sample)
		}
	}
	if !found {
		t.Errorf("chat-messages table missing from %+v", report.Tables)
	}
}
