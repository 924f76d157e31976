package logger

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: "info", want: slog.LevelInfo},
		{input: "warn", want: slog.LevelWarn},
		{input: "warning", want: slog.LevelWarn},
		{input: "error", want: slog.LevelError},
		{input: "", want: slog.LevelInfo},
		{input: "bogus", want: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.input))
		})
	}
}

func TestNew_JSONFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	log, err := New(&Config{
		Level:  "debug",
		Format: "json",
		Output: path,
	})
	require.NoError(t, err)

	log.Info("distribution run completed", slog.Int("total_rows", 7))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "distribution run completed", entry["msg"])
	assert.Equal(t, float64(7), entry["total_rows"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestNew_LevelFiltersOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	log, err := New(&Config{
		Level:  "error",
		Format: "json",
		Output: path,
	})
	require.NoError(t, err)

	log.Info("should be filtered")
	log.Debug("should be filtered")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestNew_ConsoleFormat(t *testing.T) {
	log, err := New(&Config{Level: "info", Format: "console", Output: "stdout"})
	require.NoError(t, err)
	assert.NotNil(t, log.Logger)
}

func TestNew_BadOutputPath(t *testing.T) {
	_, err := New(&Config{Output: filepath.Join(t.TempDir(), "missing", "app.log")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open log output file")
}

func TestNewDefault(t *testing.T) {
	log := NewDefault()
	require.NotNil(t, log)
	assert.NotNil(t, log.Logger)
}

func TestWith(t *testing.T) {
	base := NewDefault()

	child := base.With(slog.String("service", "api"))
	assert.NotNil(t, child)
	assert.NotSame(t, base, child)

	grouped := base.WithGroup("request")
	assert.NotNil(t, grouped)
}
