package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every BTO_ variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvDB, EnvLogLevel, EnvFormat, EnvMetrics} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvDB, "/tmp/x.db")
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvFormat, "json")
	t.Setenv(EnvMetrics, "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, Config{DBPath: "/tmp/x.db", LogLevel: "debug", Format: "json", Metrics: true}, cfg)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("BTO_DB=from-file.db\nBTO_FORMAT=json\n"), 0o600))
	t.Setenv(EnvFormat, "text")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file.db", cfg.DBPath)
	assert.Equal(t, "text", cfg.Format, "the environment wins over .env")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{EnvFormat, "yaml"},
		{EnvLogLevel, "chatty"},
		{EnvMetrics, "sometimes"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
}
