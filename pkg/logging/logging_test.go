package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		ok   bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"", slog.LevelInfo, true},
		{"warn", slog.LevelWarn, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"loud", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v, ok=%v", tt.in, got, err, tt.want, tt.ok)
		}
	}
}

func TestSetup_LevelGating(t *testing.T) {
	var buf bytes.Buffer
	log := Setup(slog.LevelWarn, "text", &buf)

	log.Debug("quiet")
	log.Info("also quiet")
	log.Warn("audible")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Errorf("sub-level messages leaked: %s", out)
	}
	if !strings.Contains(out, "audible") {
		t.Errorf("warn message missing: %s", out)
	}
}

func TestSetup_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	Setup(slog.LevelInfo, "json", &buf)

	Component("discover").Info("walking")

	out := buf.String()
	if !strings.Contains(out, `"component":"discover"`) {
		t.Errorf("missing component attribute: %s", out)
	}
	if !strings.Contains(out, `"level":"INFO"`) {
		t.Errorf("missing JSON level field: %s", out)
	}
}

func TestTeeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.log")
	var buf bytes.Buffer

	w, closer, err := TeeFile(&buf, path)
	if err != nil {
		t.Fatalf("TeeFile: %v", err)
	}
	log := Setup(slog.LevelInfo, "text", w)
	log.Info("tee check")
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(buf.String(), "tee check") {
		t.Errorf("primary writer missing message: %s", buf.String())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file: %v", err)
	}
	if !strings.Contains(string(data), "tee check") {
		t.Errorf("log file missing message: %s", data)
	}
}

func TestComponent_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	Setup(slog.LevelInfo, "text", &buf)

	Component("dispatch").Info("running")

	if !strings.Contains(buf.String(), "component=dispatch") {
		t.Errorf("missing component attribute: %s", buf.String())
	}
}
