package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetup_CreatesLogFileAndWrites(t *testing.T) {
	root := t.TempDir()

	cleanup, err := Setup(Config{Root: root})
	if err != nil {
		t.Fatalf("Setup error: %v", err)
	}
	defer func() { _ = cleanup() }()

	if err := IsReady(); err != nil {
		t.Fatalf("expected logger ready: %v", err)
	}

	wantPath := filepath.Join(root, ".mindprobe", "logs", "mindprobe.log")
	if Path() != wantPath {
		t.Fatalf("expected path %q, got %q", wantPath, Path())
	}

	L().Info("test.entry", "key", "value")

	b, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(b), "test.entry") {
		t.Errorf("expected log entry written, got:\n%s", b)
	}
}

func TestCleanup_ResetsToDiscard(t *testing.T) {
	root := t.TempDir()

	cleanup, err := Setup(Config{Root: root})
	if err != nil {
		t.Fatalf("Setup error: %v", err)
	}
	if err := cleanup(); err != nil {
		t.Fatalf("cleanup error: %v", err)
	}

	if err := IsReady(); err == nil {
		t.Error("expected logger not ready after cleanup")
	}
	// Logging after cleanup must not panic.
	L().Info("after.cleanup")
}
