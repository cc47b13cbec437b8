// Package config loads the sensorring YAML configuration.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	defaults "github.com/xtxerr/sensorring/config"
	"github.com/xtxerr/sensorring/internal/errors"
	"github.com/xtxerr/sensorring/internal/logging"
	"github.com/xtxerr/sensorring/internal/validation"
)

// Config represents the complete application configuration.
type Config struct {
	// Buffer configures the record store.
	Buffer BufferConfig `yaml:"buffer"`

	// Logging configures log level and format.
	Logging LoggingConfig `yaml:"logging"`

	// Pressure configures usage-level reporting.
	Pressure PressureConfig `yaml:"pressure"`

	// Stats configures running record statistics.
	Stats StatsConfig `yaml:"stats"`
}

// BufferConfig configures the record store.
type BufferConfig struct {
	// Capacity is the number of slots, 1-100.
	Capacity int `yaml:"capacity"`

	// Overwrite evicts the oldest record instead of rejecting a push
	// into a full store.
	Overwrite bool `yaml:"overwrite"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is text or json.
	Format string `yaml:"format"`
}

// PressureConfig configures usage-level reporting.
type PressureConfig struct {
	// Enabled enables level tracking.
	Enabled bool `yaml:"enabled"`

	// Thresholds defines usage ratios for level changes.
	Thresholds PressureThresholds `yaml:"thresholds"`

	// Hysteresis to prevent flapping (0.0-1.0).
	Hysteresis float64 `yaml:"hysteresis"`
}

// PressureThresholds defines store usage thresholds.
type PressureThresholds struct {
	// Warning threshold (0.0-1.0).
	Warning float64 `yaml:"warning"`

	// Critical threshold (0.0-1.0).
	Critical float64 `yaml:"critical"`

	// Emergency threshold (0.0-1.0).
	Emergency float64 `yaml:"emergency"`
}

// StatsConfig configures running record statistics.
type StatsConfig struct {
	// Percentiles enables DDSketch percentile tracking.
	Percentiles bool `yaml:"percentiles"`

	// Accuracy is the relative accuracy (0.01 = 1% error).
	Accuracy float64 `yaml:"accuracy"`
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Buffer: BufferConfig{
			Capacity:  defaults.DefaultCapacity,
			Overwrite: defaults.DefaultOverwrite,
		},
		Logging: LoggingConfig{
			Level:  defaults.DefaultLogLevel,
			Format: defaults.DefaultLogFormat,
		},
		Pressure: PressureConfig{
			Enabled: true,
			Thresholds: PressureThresholds{
				Warning:   defaults.DefaultWarningThreshold,
				Critical:  defaults.DefaultCriticalThreshold,
				Emergency: defaults.DefaultEmergencyThreshold,
			},
			Hysteresis: defaults.DefaultHysteresis,
		},
		Stats: StatsConfig{
			Percentiles: true,
			Accuracy:    defaults.DefaultPercentileAccuracy,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	v := errors.NewValidationErrors()

	if err := validation.ValidateCapacity(c.Buffer.Capacity); err != nil {
		v.Add(errors.Wrap(err, "buffer.capacity"))
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		v.AddField("logging.level", err.Error())
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		v.AddField("logging.format", fmt.Sprintf("%q is not text or json", c.Logging.Format))
	}

	if c.Pressure.Enabled {
		v.Add(c.Pressure.Validate())
	}

	if c.Stats.Percentiles && (c.Stats.Accuracy <= 0 || c.Stats.Accuracy >= 1) {
		v.AddField("stats.accuracy", "must be between 0 and 1 (exclusive)")
	}

	return v.Err()
}

// Validate checks the pressure configuration.
func (c *PressureConfig) Validate() error {
	v := errors.NewValidationErrors()
	t := c.Thresholds

	v.Add(validation.ValidateRatio("pressure.thresholds.warning", t.Warning))
	v.Add(validation.ValidateRatio("pressure.thresholds.critical", t.Critical))
	v.Add(validation.ValidateRatio("pressure.thresholds.emergency", t.Emergency))
	v.Add(validation.ValidateRatio("pressure.hysteresis", c.Hysteresis))

	if !(t.Warning < t.Critical && t.Critical <= t.Emergency) {
		v.AddField("pressure.thresholds", "must satisfy warning < critical <= emergency")
	}

	return v.Err()
}

// JSONLogs reports whether logs should be written as JSON.
func (c *Config) JSONLogs() bool {
	return strings.EqualFold(c.Logging.Format, "json")
}
