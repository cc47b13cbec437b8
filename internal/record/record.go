// Package record defines the typed sensor records held by the ring store.
//
// A Record is a closed sum type with one variant per sensor kind: GPS,
// Telemetry and Settings. Consumers switch on the concrete type:
//
//	switch r := rec.(type) {
//	case record.GPS:
//	case record.Telemetry:
//	case record.Settings:
//	}
//
// Variants are small value types. Copying a record into or out of a store
// hands over an independent value, so no record is shared between owners.
package record

import (
	"fmt"
	"strconv"

	"github.com/xtxerr/sensorring/config"
	"github.com/xtxerr/sensorring/internal/constants"
	"github.com/xtxerr/sensorring/internal/validation"
)

// Kind identifies the variant of a Record.
type Kind int

const (
	// KindGPS is a location record with longitude and latitude.
	KindGPS Kind = iota + 1
	// KindTelemetry is a battery status record.
	KindTelemetry
	// KindSettings is an on/off state with a message rate.
	KindSettings
)

// Kinds lists every variant in declaration order.
var Kinds = []Kind{KindGPS, KindTelemetry, KindSettings}

// String returns a human-readable representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindGPS:
		return "gps"
	case KindTelemetry:
		return "telemetry"
	case KindSettings:
		return "settings"
	default:
		return "unknown"
	}
}

// Token returns the 3-letter sensor-type token for the Kind.
func (k Kind) Token() string {
	switch k {
	case KindGPS:
		return constants.SensorGPS
	case KindTelemetry:
		return constants.SensorTelemetry
	case KindSettings:
		return constants.SensorSettings
	default:
		return ""
	}
}

// KindOf maps a sensor-type token to its Kind.
func KindOf(token string) (Kind, bool) {
	switch token {
	case constants.SensorGPS:
		return KindGPS, true
	case constants.SensorTelemetry:
		return KindTelemetry, true
	case constants.SensorSettings:
		return KindSettings, true
	}
	return 0, false
}

// Record is one parsed sensor message.
// The interface is sealed: only the variants in this package implement it.
type Record interface {
	Kind() Kind
	String() string
	sealed()
}

// =============================================================================
// GPS
// =============================================================================

// GPS is a location fix.
type GPS struct {
	Longitude float64
	Latitude  float64
}

// NewGPS validates the coordinate ranges and returns the record.
// Both ranges include their boundaries.
func NewGPS(longitude, latitude float64) (GPS, error) {
	if err := validation.ValidateFloatRange(longitude, constants.MinLongitude, constants.MaxLongitude); err != nil {
		return GPS{}, fmt.Errorf("longitude %w", err)
	}
	if err := validation.ValidateFloatRange(latitude, constants.MinLatitude, constants.MaxLatitude); err != nil {
		return GPS{}, fmt.Errorf("latitude %w", err)
	}
	return GPS{Longitude: longitude, Latitude: latitude}, nil
}

func (GPS) Kind() Kind { return KindGPS }
func (GPS) sealed()    {}

func (g GPS) String() string {
	return fmt.Sprintf("GPS(lon=%s, lat=%s)", signed(g.Longitude), signed(g.Latitude))
}

// =============================================================================
// Telemetry
// =============================================================================

// Telemetry reports the sensor battery level.
type Telemetry struct {
	BatteryPercent int
}

// NewTelemetry validates 0 <= percent <= 100 and returns the record.
func NewTelemetry(percent int) (Telemetry, error) {
	if err := validation.ValidateIntRange(percent, constants.MinBatteryPercent, constants.MaxBatteryPercent); err != nil {
		return Telemetry{}, fmt.Errorf("battery %w", err)
	}
	return Telemetry{BatteryPercent: percent}, nil
}

func (Telemetry) Kind() Kind { return KindTelemetry }
func (Telemetry) sealed()    {}

func (t Telemetry) String() string {
	return fmt.Sprintf("TEL(battery=%d%%)", t.BatteryPercent)
}

// =============================================================================
// Settings
// =============================================================================

// Settings carries the sensor on/off state and its message rate.
type Settings struct {
	On   bool
	Rate int
}

// NewSettings validates rate > 0 and returns the record.
func NewSettings(on bool, rate int) (Settings, error) {
	if err := validation.ValidateIntMin(rate, constants.MinSettingsRate); err != nil {
		return Settings{}, fmt.Errorf("rate %w", err)
	}
	return Settings{On: on, Rate: rate}, nil
}

func (Settings) Kind() Kind { return KindSettings }
func (Settings) sealed()    {}

func (s Settings) String() string {
	return fmt.Sprintf("SET(on=%t, rate=%d)", s.On, s.Rate)
}

// =============================================================================
// Line Rendering
// =============================================================================

// Format renders r in the canonical input line form, so that classifying
// the result yields r again.
func Format(r Record) string {
	sep := config.FieldSeparator
	switch v := r.(type) {
	case GPS:
		return constants.SensorGPS + sep + signed(v.Longitude) + sep + signed(v.Latitude)
	case Telemetry:
		return constants.SensorTelemetry + sep + strconv.Itoa(v.BatteryPercent)
	case Settings:
		state := constants.StateOff
		if v.On {
			state = constants.StateOn
		}
		return constants.SensorSettings + sep + state + sep + strconv.Itoa(v.Rate)
	default:
		return ""
	}
}

// signed formats f with the shortest exact decimal and an explicit sign.
func signed(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if s[0] != '-' {
		s = "+" + s
	}
	return s
}
