package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9000"
processing:
  min_delay: 100ms
  max_delay: 250ms
history:
  path: /tmp/history.db
`), 0o644))

	t.Setenv("PDFTOOLS_SERVER_PORT", "9100")
	t.Setenv("PDFTOOLS_SESSIONS_TTL", "5m")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Server.Port, "environment wins over file")
	assert.Equal(t, 100*time.Millisecond, cfg.Processing.MinDelay)
	assert.Equal(t, 250*time.Millisecond, cfg.Processing.MaxDelay)
	assert.Equal(t, 5*time.Minute, cfg.Sessions.TTL)
	assert.Equal(t, "/tmp/history.db", cfg.History.Path)
	assert.Equal(t, int64(100*1024*1024), cfg.Server.MaxUploadBytes)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
processing:
  min_delay: 5s
  max_delay: 1s
`), 0o644))

	_, err := Load(viper.New(), path)
	assert.ErrorContains(t, err, "exceeds processing.max_delay")
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o644))

	_, err := Load(viper.New(), path)
	assert.ErrorContains(t, err, "failed to read config")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.History.Path = ""
	cfg.Log.Level = "loud"
	cfg.Server.MaxUploadBytes = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history.path")
	assert.Contains(t, err.Error(), "loud")
	assert.Contains(t, err.Error(), "max_upload_bytes")

	cfg = Default()
	cfg.History.Enabled = false
	cfg.History.Path = ""
	assert.NoError(t, cfg.Validate())
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "pdftools.yaml")
	require.NoError(t, WriteDefault(path))
	assert.ErrorContains(t, WriteDefault(path), "already exists")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	level, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)

	_, err = ParseLevel("trace")
	assert.Error(t, err)
}

func TestSetupLogging(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	closer, err := SetupLogging(LogConfig{Level: "warn"}, false, &buf)
	require.NoError(t, err)
	slog.Info("hidden")
	slog.Warn("shown", "key", "value")
	require.NoError(t, closer.Close())
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "key=value")

	buf.Reset()
	_, err = SetupLogging(LogConfig{Level: "warn"}, true, &buf)
	require.NoError(t, err)
	slog.Debug("verbose")
	assert.Contains(t, buf.String(), "verbose")

	logFile := filepath.Join(t.TempDir(), "pdftools.log")
	closer, err = SetupLogging(LogConfig{File: logFile}, false, &buf)
	require.NoError(t, err)
	slog.Info("to file")
	require.NoError(t, closer.Close())
	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}
