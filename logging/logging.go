package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu     sync.RWMutex
	logger *slog.Logger
)

// Configure installs the shared JSON logger writing to w at the given level.
// It is safe to call multiple times; the last call wins.
func Configure(w io.Writer, level slog.Leveler) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})

	mu.Lock()
	defer mu.Unlock()
	logger = slog.New(handler)
	return logger
}

// Logger returns the configured slog logger, configuring an info-level stdout logger
// on first use if necessary.
func Logger() *slog.Logger {
	mu.RLock()
	l := logger
	mu.RUnlock()
	if l == nil {
		return Configure(os.Stdout, slog.LevelInfo)
	}
	return l
}

// ParseLevel accepts debug, info, warn and error (case-insensitive). An empty string
// yields fallback.
func ParseLevel(value string, fallback slog.Level) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return fallback, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return fallback, fmt.Errorf("unknown log level %q", value)
	}
}
