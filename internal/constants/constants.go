// Package constants provides centralized domain-specific constants
// for the entire sensorring application.
package constants

// =============================================================================
// Sensor Types - the 3-letter token that opens every input line
// =============================================================================

const (
	// SensorGPS identifies a location record.
	SensorGPS = "GPS"

	// SensorTelemetry identifies a battery telemetry record.
	SensorTelemetry = "TEL"

	// SensorSettings identifies a settings record.
	SensorSettings = "SET"
)

// =============================================================================
// Settings State Tokens
// =============================================================================

const (
	// StateOn and StateOff are the canonical boolean-like tokens.
	StateOn  = "on"
	StateOff = "off"

	// StateOnNumeric and StateOffNumeric are the numeric forms also accepted.
	StateOnNumeric  = "1"
	StateOffNumeric = "0"
)

// ParseState maps a boolean-like token to its value.
// The second return is false when the token is not recognized.
func ParseState(token string) (on bool, ok bool) {
	switch token {
	case StateOn, StateOnNumeric:
		return true, true
	case StateOff, StateOffNumeric:
		return false, true
	}
	return false, false
}

// =============================================================================
// Coordinate Bounds
// =============================================================================

const (
	MinLongitude = -180.0
	MaxLongitude = 180.0
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
)

// =============================================================================
// Battery Bounds
// =============================================================================

const (
	MinBatteryPercent = 0
	MaxBatteryPercent = 100
)

// =============================================================================
// Settings Bounds
// =============================================================================

// MinSettingsRate is the smallest message rate. There is no upper bound.
const MinSettingsRate = 1
