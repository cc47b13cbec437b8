// Package config provides configuration defaults and utilities
// for the sensorring application.
//
// This package defines all configurable constants with documented defaults.
// Users can override these values via config.yaml or command line flags.
package config

// =============================================================================
// Buffer Defaults
// =============================================================================

const (
	// MinCapacity is the smallest capacity a record store may have.
	// A zero-capacity store is never constructible.
	MinCapacity = 1

	// MaxCapacity is the hard ceiling on store capacity, independent of
	// any requested resize.
	MaxCapacity = 100

	// DefaultCapacity is the store capacity used when none is configured.
	// Override via config: buffer.capacity
	DefaultCapacity = 10

	// DefaultOverwrite selects the push behavior on a full store.
	// false rejects the new record, true evicts the oldest one.
	// Override via config: buffer.overwrite
	DefaultOverwrite = false
)

// =============================================================================
// Record Defaults
// =============================================================================

const (
	// FieldSeparator separates the fields of one input line.
	FieldSeparator = ","

	// MaxLineBytes is the longest input line that is classified. Longer
	// lines are counted as skipped and reading continues.
	MaxLineBytes = 64 * 1024
)

// =============================================================================
// Pressure Defaults
// =============================================================================

const (
	// DefaultWarningThreshold is the usage ratio at which the store is
	// reported as under warning pressure.
	// Override via config: pressure.thresholds.warning
	DefaultWarningThreshold = 0.50

	// DefaultCriticalThreshold is the usage ratio for critical pressure.
	// Override via config: pressure.thresholds.critical
	DefaultCriticalThreshold = 0.80

	// DefaultEmergencyThreshold is the usage ratio for emergency pressure.
	// At 1.0 this means the store is full.
	// Override via config: pressure.thresholds.emergency
	DefaultEmergencyThreshold = 1.0

	// DefaultHysteresis prevents level flapping around a threshold.
	// Override via config: pressure.hysteresis
	DefaultHysteresis = 0.10
)

// =============================================================================
// Statistics Defaults
// =============================================================================

const (
	// DefaultPercentileAccuracy is the relative accuracy of DDSketch
	// percentiles (0.01 = 1% error).
	// Override via config: stats.accuracy
	DefaultPercentileAccuracy = 0.01
)

// =============================================================================
// Logging Defaults
// =============================================================================

const (
	// DefaultLogLevel is the minimum level written by the logger.
	// Override via config: logging.level
	DefaultLogLevel = "info"

	// DefaultLogFormat is the log output format: text or json.
	// Override via config: logging.format
	DefaultLogFormat = "text"
)
