package settings_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ncdsv/ncdsv/internal/settings"
)

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ncdsv.yaml")
	if err := os.WriteFile(path, []byte("retry_time: 1s\n"), 0o644); err != nil {
		t.Fatalf("failed to write initial fixture: %v", err)
	}

	changes := make(chan settings.Settings, 4)
	w, err := settings.Watch(path, func(s settings.Settings) { changes <- s })
	if err != nil {
		t.Fatalf("Watch returned error: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("retry_time: 2s\n"), 0o644); err != nil {
		t.Fatalf("failed to rewrite fixture: %v", err)
	}

	select {
	case s := <-changes:
		if s.RetryTime != 2*time.Second {
			t.Fatalf("want retry time 2s after reload, got %v", s.RetryTime)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a reload callback")
	}
}

func TestCloseIsIdempotentAndWaitsForGoroutine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ncdsv.yaml")
	if err := os.WriteFile(path, []byte("retry_time: 1s\n"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	w, err := settings.Watch(path, func(settings.Settings) {})
	if err != nil {
		t.Fatalf("Watch returned error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close returned error: %v", err)
	}
}
