package internal

import (
	"path/filepath"
	"testing"
	"time"
)

// clearConfigEnv blanks every variable LoadConfig reads
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"API_BASE_URL", "API_TIMEOUT", "DATA_DIR", "DB_NAME", "UID", "UID_FILE", "LOG_FILE", "TELEMETRY_DIR"} {
		t.Setenv(EnvPrefix+name, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv(EnvPrefix+"API_TIMEOUT", "5s")
	t.Setenv(EnvPrefix+"DB_NAME", "chat-db")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.APITimeout != DefaultAPITimeout {
		t.Errorf("APITimeout = %v, want %v", cfg.APITimeout, DefaultAPITimeout)
	}
	if cfg.DatabaseName != DefaultDatabaseName {
		t.Errorf("DatabaseName = %q, want %q", cfg.DatabaseName, DefaultDatabaseName)
	}
	if cfg.APIBaseURL != "" || cfg.UID != "" {
		t.Errorf("unexpected values: %+v", cfg)
	}
}

func TestLoadConfig_FromEnv(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv(EnvPrefix+"API_BASE_URL", "https://chat.example.com/api")
	t.Setenv(EnvPrefix+"API_TIMEOUT", "1500ms")
	t.Setenv(EnvPrefix+"DATA_DIR", "/srv/gpt-web")
	t.Setenv(EnvPrefix+"DB_NAME", "team")
	t.Setenv(EnvPrefix+"UID", "abc-123")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.APIBaseURL != "https://chat.example.com/api" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.APITimeout != 1500*time.Millisecond {
		t.Errorf("APITimeout = %v, want 1.5s", cfg.APITimeout)
	}

	paths, err := cfg.Paths()
	if err != nil {
		t.Fatalf("Paths() error = %v", err)
	}
	if want := filepath.Join("/srv/gpt-web", "team.sqlite"); paths.DatabasePath != want {
		t.Errorf("DatabasePath = %q, want %q", paths.DatabasePath, want)
	}

	session, err := cfg.Session()
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
	uid, err := session.UID()
	if err != nil || uid != "abc-123" {
		t.Errorf("Session().UID() = %q, %v; want abc-123", uid, err)
	}
}

func TestLoadConfig_InvalidTimeout(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv(EnvPrefix+"API_TIMEOUT", "soon")

	if _, err := LoadConfig(); err == nil {
		t.Error("LoadConfig() should reject an unparsable timeout")
	}
}

func TestConfig_SessionFile(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{DataDir: dir, UIDFile: filepath.Join(dir, "custom", "id")}

	paths, err := cfg.Paths()
	if err != nil {
		t.Fatalf("Paths() error = %v", err)
	}
	if paths.UIDPath != cfg.UIDFile {
		t.Errorf("UIDPath = %q, want %q", paths.UIDPath, cfg.UIDFile)
	}

	session, err := cfg.Session()
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
	fs, ok := session.(*FileSession)
	if !ok {
		t.Fatalf("Session() = %T, want *FileSession", session)
	}
	if fs.Path != cfg.UIDFile {
		t.Errorf("FileSession.Path = %q, want %q", fs.Path, cfg.UIDFile)
	}
}
