package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupWritesToFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "state", "timesince.log")
	logger, cleanup := Setup(Options{Path: path, Level: slog.LevelInfo})
	logger.Info("tracker created", "id", "abc")
	logger.Debug("hidden")
	cleanup()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "msg=\"tracker created\"") || !strings.Contains(out, "id=abc") {
		t.Fatalf("unexpected log output: %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug record should be filtered: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("debug")
	if err != nil || lvl != slog.LevelDebug {
		t.Fatalf("ParseLevel(debug) = %v, %v", lvl, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
