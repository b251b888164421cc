package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestSetLogLevel(t *testing.T) {
	originalLevel := logLevel
	defer SetLogLevel(originalLevel)

	SetLogLevel(LogLevelDebug)
	if logLevel != LogLevelDebug {
		t.Errorf("SetLogLevel() logLevel = %v, want LogLevelDebug", logLevel)
	}

	SetLogLevel(LogLevelError)
	if logLevel != LogLevelError {
		t.Errorf("SetLogLevel() logLevel = %v, want LogLevelError", logLevel)
	}
}

func TestSetVerbose(t *testing.T) {
	originalLevel := logLevel
	defer SetLogLevel(originalLevel)

	SetVerbose(true)
	if logLevel != LogLevelDebug {
		t.Errorf("SetVerbose(true) logLevel = %v, want LogLevelDebug", logLevel)
	}

	SetVerbose(false)
	if logLevel != LogLevelInfo {
		t.Errorf("SetVerbose(false) logLevel = %v, want LogLevelInfo", logLevel)
	}
}

func TestLogFunctions(t *testing.T) {
	// These functions don't return errors, so we just test they don't panic
	// In a real scenario, you might capture output to verify messages

	LogError("test error message")
	LogWarn("test warning message")
	LogInfo("test info message")
	LogDebug("test debug message")

	// If we get here without panic, the functions work
}

func TestLogLevels(t *testing.T) {
	// Test that log levels are properly defined
	if LogLevelError >= LogLevelWarn {
		t.Error("LogLevelError should be less than LogLevelWarn")
	}
	if LogLevelWarn >= LogLevelInfo {
		t.Error("LogLevelWarn should be less than LogLevelInfo")
	}
	if LogLevelInfo >= LogLevelDebug {
		t.Error("LogLevelInfo should be less than LogLevelDebug")
	}
}



func TestSetLogFile(t *testing.T) {
	originalLevel := logLevel
	defer SetLogLevel(originalLevel)
	defer SetLogFile("")

	path := filepath.Join(t.TempDir(), "logs", "gpt-web.log")
	SetLogFile(path)
	SetVerbose(false)

	LogInfo("stored %d messages", 3)
	LogDebug("hidden below info")
	SyncLogger()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "stored 3 messages") {
		t.Errorf("log file missing info line: %q", content)
	}
	if strings.Contains(content, "hidden below info") {
		t.Errorf("debug line written at info level: %q", content)
	}
	if !strings.Contains(content, `"level":"info"`) {
		t.Errorf("log file is not JSON: %q", content)
	}
}

func TestSetLogLevel_FiltersZapLevel(t *testing.T) {
	originalLevel := logLevel
	defer SetLogLevel(originalLevel)

	SetLogLevel(LogLevelWarn)
	if zapLevel.Enabled(zapcore.InfoLevel) {
		t.Error("info enabled at warn level")
	}
	if !zapLevel.Enabled(zapcore.WarnLevel) {
		t.Error("warn disabled at warn level")
	}
}
