package settings_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ncdsv/ncdsv/internal/settings"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	s, err := settings.Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load returned error for a missing file: %v", err)
	}
	if s.RetryTime != settings.DefaultRetryTime {
		t.Fatalf("want default retry time %v, got %v", settings.DefaultRetryTime, s.RetryTime)
	}
	if s.Logging.Level != settings.DefaultLogLevel {
		t.Fatalf("want default log level %q, got %q", settings.DefaultLogLevel, s.Logging.Level)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	s, err := settings.Load("")
	if err != nil {
		t.Fatalf("Load(\"\") returned error: %v", err)
	}
	if s.RetryTime != settings.DefaultRetryTime {
		t.Fatalf("want default retry time, got %v", s.RetryTime)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ncdsv.yaml")
	content := "retry_time: 10s\nlogging:\n  level: debug\n  channels:\n    exec: warning\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	s, err := settings.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if s.RetryTime != 10*time.Second {
		t.Fatalf("want retry time 10s, got %v", s.RetryTime)
	}
	if s.Logging.Level != "debug" {
		t.Fatalf("want log level debug, got %q", s.Logging.Level)
	}
	if s.Logging.Channels["exec"] != "warning" {
		t.Fatalf("want channel override exec=warning, got %q", s.Logging.Channels["exec"])
	}
}

func TestDefaultPathFallsBackToEmpty(t *testing.T) {
	old := settings.DefaultPaths
	settings.DefaultPaths = []string{filepath.Join(t.TempDir(), "nope.yaml")}
	defer func() { settings.DefaultPaths = old }()

	if got := settings.DefaultPath(); got != "" {
		t.Fatalf("want empty path when nothing exists, got %q", got)
	}
}
