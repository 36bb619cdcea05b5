package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/scriptevent/internal/config"
)

func TestNewHandler_Format(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"production", `"msg":"hello"`},
		{"development", `msg=hello`},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			var buf bytes.Buffer
			l := slog.New(newHandler(&config.Config{Environment: tt.env, LogLevel: slog.LevelInfo}, &buf))
			l.Info("hello")
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestNewHandler_Level(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(newHandler(&config.Config{LogLevel: slog.LevelWarn}, &buf))
	l.Info("quiet")
	assert.Empty(t, buf.String())
	l.Warn("loud")
	assert.Contains(t, buf.String(), "loud")
}

func TestSetup_LogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.log")
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	l := Setup(&config.Config{Environment: "production", LogLevel: slog.LevelInfo, LogFile: path})
	WithError(WithScript(l, "guard"), errors.New("boom")).Info("written")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"script":"guard"`)
	assert.Contains(t, string(data), `"error":"boom"`)
}
