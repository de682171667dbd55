package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{" warn ", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(WithLevel("warn"), WithSink(zapcore.AddSync(&buf)), WithFields(zap.String("tool", "n42plot")))

	log.Info("dropped")
	log.Warn("kept", zap.Int("channels", 1024))
	_ = log.Sync()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one entry, got %q", buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("entry is not JSON: %v", err)
	}
	if entry["msg"] != "kept" || entry["level"] != "warn" || entry["tool"] != "n42plot" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if entry["channels"] != float64(1024) {
		t.Fatalf("channels field: %v", entry["channels"])
	}
	if _, ok := entry["ts"].(string); !ok {
		t.Fatalf("expected ISO8601 timestamp, got %v", entry["ts"])
	}
}

func TestNewDevelopmentConsole(t *testing.T) {
	var buf bytes.Buffer
	log := New(WithDevelopment(true), WithLevel("debug"), WithSink(zapcore.AddSync(&buf)))
	log.Debug("parsed spectrum", zap.String("detector", "NaI"))
	_ = log.Sync()

	out := buf.String()
	if !strings.Contains(out, "parsed spectrum") || !strings.Contains(out, `"detector": "NaI"`) {
		t.Fatalf("unexpected console output: %q", out)
	}
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Fatalf("development output should not be JSON: %q", out)
	}
}
