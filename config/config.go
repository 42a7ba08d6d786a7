// Package config loads dashboard settings from an optional YAML file and
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v2"

	"github.com/sartorproj/paxcast/sarima"
)

// EnvConfigPath names the environment variable holding the YAML config path.
const EnvConfigPath = "PAXCAST_CONFIG"

// Config is the complete dashboard configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Dataset DatasetConfig `yaml:"dataset"`
	Model   ModelConfig   `yaml:"model"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// DatasetConfig locates the historical series.
type DatasetConfig struct {
	Path        string `yaml:"path"`
	DateColumn  string `yaml:"dateColumn"`
	ValueColumn string `yaml:"valueColumn"`
}

// ModelConfig holds the SARIMA order and interval level.
type ModelConfig struct {
	Order      sarima.Order `yaml:"order"`
	Confidence float64      `yaml:"confidence"`
}

// LogConfig selects the zap logger flavour.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Default returns the configuration of the stock passenger dashboard.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8501",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Dataset: DatasetConfig{
			Path:        "dataset/AirPassengers.csv",
			DateColumn:  "Month",
			ValueColumn: "#Passengers",
		},
		Model: ModelConfig{
			Order:      sarima.Order{P: 1, D: 1, Q: 1, SP: 1, SD: 1, SQ: 1, M: 12},
			Confidence: sarima.DefaultConfidence,
		},
		Log: LogConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Load reads the YAML file at path over the defaults (an empty path skips
// the file), applies environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadFromEnv is Load with the path taken from PAXCAST_CONFIG.
func LoadFromEnv() (*Config, error) {
	return Load(os.Getenv(EnvConfigPath))
}

func applyEnv(cfg *Config) {
	cfg.Server.Addr = getEnvOrDefault("PAXCAST_ADDR", cfg.Server.Addr)
	cfg.Server.ShutdownTimeout = getDurationOrDefault("PAXCAST_SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout)
	cfg.Dataset.Path = getEnvOrDefault("PAXCAST_DATASET", cfg.Dataset.Path)
	cfg.Model.Confidence = getFloatOrDefault("PAXCAST_CONFIDENCE", cfg.Model.Confidence)
	cfg.Log.Level = getEnvOrDefault("PAXCAST_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Development = getBoolOrDefault("PAXCAST_LOG_DEVELOPMENT", cfg.Log.Development)
	cfg.Metrics.Enabled = getBoolOrDefault("PAXCAST_METRICS_ENABLED", cfg.Metrics.Enabled)
}

// Validate checks the configuration for values the dashboard cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr must not be empty"))
	}
	if c.Server.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("server.shutdownTimeout must not be negative"))
	}
	if c.Dataset.Path == "" {
		errs = append(errs, errors.New("dataset.path must not be empty"))
	}
	if c.Dataset.DateColumn == "" || c.Dataset.ValueColumn == "" {
		errs = append(errs, errors.New("dataset.dateColumn and dataset.valueColumn are required"))
	}
	if err := c.Model.Order.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Model.Confidence <= 0 || c.Model.Confidence >= 1 {
		errs = append(errs, fmt.Errorf("model.confidence must be in (0, 1), got %v", c.Model.Confidence))
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Metrics.Enabled && c.Metrics.Path == "" {
		errs = append(errs, errors.New("metrics.path must not be empty when metrics are enabled"))
	}

	return errors.Join(errs...)
}

// NewLogger builds a zap logger from the log settings.
func (c LogConfig) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	if c.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if strValue := os.Getenv(key); strValue != "" {
		if value, err := strconv.ParseFloat(strValue, 64); err == nil {
			return value
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if strValue := os.Getenv(key); strValue != "" {
		if value, err := strconv.ParseBool(strValue); err == nil {
			return value
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if strValue := os.Getenv(key); strValue != "" {
		if value, err := time.ParseDuration(strValue); err == nil {
			return value
		}
	}
	return defaultValue
}
