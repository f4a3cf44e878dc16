package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelWarn,
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in, slog.LevelWarn)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("loud", slog.LevelInfo); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestConfigure(t *testing.T) {
	var buf bytes.Buffer
	logger := Configure(&buf, slog.LevelWarn)
	logger.Info("hidden")
	Logger().Warn("shown", "port", 22)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected a single JSON line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "shown" || entry["port"] != float64(22) {
		t.Fatalf("unexpected entry %v", entry)
	}
}
