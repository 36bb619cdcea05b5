package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENVIRONMENT", "LOG_LEVEL", "LOG_FILE", "REDIS_URL", "DATA_DIR",
		"SCRIPT_MAX_STEPS", "SCRIPT_CACHE_TTL", "KEY_PRESS_GUARD", "WORKER_ID", "WORKER_POLL",
		"WORLD_ID", "WORLD_MANIFEST"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, 0, cfg.ScriptMaxSteps)
	assert.Equal(t, 5*time.Minute, cfg.ScriptCacheTTL)
	assert.Equal(t, 3*time.Second, cfg.KeyPressGuard)
	assert.Equal(t, 100*time.Millisecond, cfg.WorkerPoll)
	assert.Equal(t, "world.yaml", cfg.Manifest)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("LOG_LEVEL", "WARNING")
	t.Setenv("SCRIPT_MAX_STEPS", "5000")
	t.Setenv("KEY_PRESS_GUARD", "1500ms")
	t.Setenv("WORKER_POLL", "1s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	assert.Equal(t, 5000, cfg.ScriptMaxSteps)
	assert.Equal(t, 1500*time.Millisecond, cfg.KeyPressGuard)
	assert.Equal(t, time.Second, cfg.WorkerPoll)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"SCRIPT_MAX_STEPS", "lots"},
		{"SCRIPT_MAX_STEPS", "-1"},
		{"SCRIPT_CACHE_TTL", "soon"},
		{"KEY_PRESS_GUARD", "3"},
		{"WORKER_POLL", "0s"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLogLevel(in), in)
	}
}
