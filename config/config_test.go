package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/sartorproj/paxcast/sarima"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "paxcast.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "dataset/AirPassengers.csv", cfg.Dataset.Path)
	assert.Equal(t, "Month", cfg.Dataset.DateColumn)
	assert.Equal(t, "#Passengers", cfg.Dataset.ValueColumn)
	assert.Equal(t, sarima.Order{P: 1, D: 1, Q: 1, SP: 1, SD: 1, SQ: 1, M: 12}, cfg.Model.Order)
	assert.Equal(t, 0.95, cfg.Model.Confidence)
	assert.True(t, cfg.Metrics.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: 127.0.0.1:9000
  shutdownTimeout: 2s
dataset:
  path: /data/passengers.csv
model:
  order:
    p: 0
    q: 1
  confidence: 0.8
log:
  level: debug
  development: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 2*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "/data/passengers.csv", cfg.Dataset.Path)
	// Keys missing from the file keep their defaults.
	assert.Equal(t, "Month", cfg.Dataset.DateColumn)
	assert.Equal(t, sarima.Order{P: 0, D: 1, Q: 1, SP: 1, SD: 1, SQ: 1, M: 12}, cfg.Model.Order)
	assert.Equal(t, 0.8, cfg.Model.Confidence)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Development)
}

func TestLoadExample(t *testing.T) {
	cfg, err := Load("paxcast.example.yaml")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "dataset:\n  path: from-file.csv\n")

	t.Setenv("PAXCAST_DATASET", "from-env.csv")
	t.Setenv("PAXCAST_ADDR", ":9999")
	t.Setenv("PAXCAST_CONFIDENCE", "0.9")
	t.Setenv("PAXCAST_METRICS_ENABLED", "false")
	t.Setenv("PAXCAST_SHUTDOWN_TIMEOUT", "not-a-duration")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env.csv", cfg.Dataset.Path)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, 0.9, cfg.Model.Confidence)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout, "invalid duration keeps the default")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv(EnvConfigPath, writeConfig(t, "log:\n  level: warn\n"))

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeConfig(t, "server: [not, a, map]\n"))
	assert.ErrorContains(t, err, "failed to parse config file")

	_, err = Load(writeConfig(t, "model:\n  confidence: 1.5\n"))
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		msg    string
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, "server.addr"},
		{"empty dataset", func(c *Config) { c.Dataset.Path = "" }, "dataset.path"},
		{"missing column", func(c *Config) { c.Dataset.ValueColumn = "" }, "dataset.dateColumn"},
		{"bad order", func(c *Config) { c.Model.Order.M = 0 }, "invalid model order"},
		{"confidence zero", func(c *Config) { c.Model.Confidence = 0 }, "model.confidence"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"metrics path", func(c *Config) { c.Metrics.Path = "" }, "metrics.path"},
		{"negative shutdown", func(c *Config) { c.Server.ShutdownTimeout = -time.Second }, "shutdownTimeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.msg)
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := LogConfig{Level: "debug", Development: true}.NewLogger()
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = LogConfig{Level: "error"}.NewLogger()
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))

	_, err = LogConfig{Level: "nope"}.NewLogger()
	assert.Error(t, err)
}
