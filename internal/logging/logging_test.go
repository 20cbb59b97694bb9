package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/erazemk/najdeno/internal/logging"
)

func TestLevelRouting(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger, cleanup, err := logging.New(logging.Options{Level: "info", Format: "text", Stdout: &stdout, Stderr: &stderr})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer cleanup()

	logger.Debug("hidden")
	logger.Info("to stdout")
	logger.Warn("also stdout")
	logger.Error("to stderr")

	if strings.Contains(stdout.String(), "hidden") {
		t.Error("debug record should be filtered at info level")
	}
	if !strings.Contains(stdout.String(), "to stdout") || !strings.Contains(stdout.String(), "also stdout") {
		t.Errorf("expected info and warn on stdout, got %q", stdout.String())
	}
	if strings.Contains(stdout.String(), "to stderr") {
		t.Error("error record leaked to stdout")
	}
	if !strings.Contains(stderr.String(), "to stderr") {
		t.Errorf("expected error on stderr, got %q", stderr.String())
	}
}

func TestAutoFormatIsJSONWhenNotTerminal(t *testing.T) {
	var stdout bytes.Buffer
	logger, cleanup, err := logging.New(logging.Options{Format: "auto", Stdout: &stdout, Stderr: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer cleanup()

	logger.With("run_id", "01J").Info("matching done", "created", 2)

	var rec map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &rec); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", stdout.String(), err)
	}
	if rec["run_id"] != "01J" || rec["msg"] != "matching done" {
		t.Errorf("unexpected record %v", rec)
	}
}

func TestLogFileMirrorsAllLevels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "najdeno.log")
	logger, cleanup, err := logging.New(logging.Options{
		Format: "text",
		File:   path,
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("first")
	logger.Error("second")
	cleanup()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "first") || !strings.Contains(string(data), "second") {
		t.Errorf("expected both records in log file, got %q", data)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := logging.ParseLevel(tt.in)
		if err != nil {
			t.Errorf("ParseLevel(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := logging.ParseLevel("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Error("expected error for unknown format")
	}
}
