package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level
	LogFile     string

	RedisURL string
	DataDir  string

	// Interpreter
	ScriptMaxSteps int
	ScriptCacheTTL time.Duration
	KeyPressGuard  time.Duration

	// Worker
	WorkerID   string
	WorkerPoll time.Duration
	WorldID    string
	Manifest   string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),
		LogFile:     getEnv("LOG_FILE", ""),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379"),
		DataDir:     getEnv("DATA_DIR", "./data"),
		WorkerID:    getEnv("WORKER_ID", ""),
		WorldID:     getEnv("WORLD_ID", ""),
		Manifest:    getEnv("WORLD_MANIFEST", "world.yaml"),
	}

	var err error
	if cfg.ScriptMaxSteps, err = strconv.Atoi(getEnv("SCRIPT_MAX_STEPS", "0")); err != nil || cfg.ScriptMaxSteps < 0 {
		return nil, fmt.Errorf("invalid SCRIPT_MAX_STEPS: %q", os.Getenv("SCRIPT_MAX_STEPS"))
	}
	if cfg.ScriptCacheTTL, err = parseDuration("SCRIPT_CACHE_TTL", "5m"); err != nil {
		return nil, err
	}
	if cfg.KeyPressGuard, err = parseDuration("KEY_PRESS_GUARD", "3s"); err != nil {
		return nil, err
	}
	if cfg.WorkerPoll, err = parseDuration("WORKER_POLL", "100ms"); err != nil {
		return nil, err
	}
	if cfg.WorkerPoll <= 0 {
		return nil, fmt.Errorf("WORKER_POLL must be positive")
	}

	return cfg, nil
}

func parseDuration(key, defaultValue string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
