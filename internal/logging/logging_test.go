package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"Error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_ErrorCarriesStacktrace(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "INFO")

	logger.Error("boom", "k", "v")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if rec["msg"] != "boom" {
		t.Errorf("expected msg=boom, got %v", rec["msg"])
	}
	if _, ok := rec["stacktrace"]; !ok {
		t.Error("expected stacktrace attribute on error record")
	}
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "WARN")

	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected info to be filtered at WARN, got %s", buf.String())
	}
	logger.Warn("shown")
	if buf.Len() == 0 {
		t.Error("expected warn record to be written")
	}
}

func TestSetupFile_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.log")
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	SetupFile("INFO", path)
	slog.Info("hello from the chat client")

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !bytes.Contains(b, []byte("hello from the chat client")) {
		t.Errorf("log file missing record: %s", b)
	}
}
