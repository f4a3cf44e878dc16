// Package config loads runtime settings for the scan API from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"portscout/logging"
)

// Config holds the settings of `portscout serve`.
type Config struct {
	ListenAddr   string
	RedisAddr    string
	APIKey       string
	RateLimit    int64
	RateWindow   time.Duration
	Consumers    int
	JobTTL       time.Duration
	LogLevel     slog.Level
	ServicesFile string
}

// Load reads .env files (missing files are ignored) into the process environment and
// builds a Config from it. Variables already set in the environment take precedence.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (Config, error) {
	cfg := Config{
		ListenAddr:   getenv("PORTSCOUT_LISTEN_ADDR", ":8080"),
		RedisAddr:    getenv("PORTSCOUT_REDIS_ADDR", "localhost:6379"),
		APIKey:       os.Getenv("PORTSCOUT_API_KEY"),
		ServicesFile: os.Getenv("PORTSCOUT_SERVICES_FILE"),
	}

	var err error
	if cfg.RateLimit, err = getInt64("PORTSCOUT_RATE_LIMIT", 60); err != nil {
		return Config{}, err
	}
	if cfg.RateWindow, err = getDuration("PORTSCOUT_RATE_WINDOW", time.Minute); err != nil {
		return Config{}, err
	}
	consumers, err := getInt64("PORTSCOUT_CONSUMERS", 2)
	if err != nil {
		return Config{}, err
	}
	if consumers < 1 {
		return Config{}, fmt.Errorf("PORTSCOUT_CONSUMERS must be at least 1, got %d", consumers)
	}
	cfg.Consumers = int(consumers)
	if cfg.JobTTL, err = getDuration("PORTSCOUT_JOB_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.LogLevel, err = logging.ParseLevel(os.Getenv("PORTSCOUT_LOG_LEVEL"), slog.LevelInfo); err != nil {
		return Config{}, fmt.Errorf("PORTSCOUT_LOG_LEVEL: %w", err)
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt64(key string, fallback int64) (int64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", key, raw)
	}
	return value, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, raw)
	}
	return value, nil
}
