// Package classify turns raw fixed-format input lines into typed records.
//
// Accepted lines:
//
//	GPS,<signed-longitude>,<signed-latitude>
//	TEL,<battery-0-100>
//	SET,<on|off|1|0>,<positive-rate>
//
// Classify is a pure function. A rejected line yields an
// *errors.ClassificationError wrapping ErrUnknownSensorType or
// ErrMalformedPayload; reporting it is up to the caller.
package classify

import (
	"fmt"

	"github.com/xtxerr/sensorring/internal/constants"
	"github.com/xtxerr/sensorring/internal/errors"
	"github.com/xtxerr/sensorring/internal/record"
	"github.com/xtxerr/sensorring/internal/validation"
)

// parser validates the payload fields of one kind.
type parser struct {
	fields int
	parse  func(raw, token string, payload []string) (record.Record, error)
}

var parsers = map[record.Kind]parser{
	record.KindGPS:       {2, classifyGPS},
	record.KindTelemetry: {1, classifyTelemetry},
	record.KindSettings:  {2, classifySettings},
}

// Classify parses raw into a validated record.
func Classify(raw string) (record.Record, error) {
	fields := validation.SplitFields(raw)
	token := fields[0]

	kind, ok := record.KindOf(token)
	if !ok {
		return nil, errors.NewUnknownSensorType(raw, token)
	}
	p := parsers[kind]

	payload := fields[1:]
	if len(payload) != p.fields {
		return nil, errors.NewMalformedPayload(raw, token, "payload",
			fmt.Sprintf("expected %d fields, got %d", p.fields, len(payload)))
	}
	return p.parse(raw, token, payload)
}

func classifyGPS(raw, token string, payload []string) (record.Record, error) {
	lon, err := validation.ParseSignedDecimal(payload[0])
	if err != nil {
		return nil, errors.NewMalformedPayload(raw, token, "longitude", err.Error())
	}
	lat, err := validation.ParseSignedDecimal(payload[1])
	if err != nil {
		return nil, errors.NewMalformedPayload(raw, token, "latitude", err.Error())
	}

	rec, err := record.NewGPS(lon, lat)
	if err != nil {
		return nil, errors.NewMalformedPayload(raw, token, "coordinates", err.Error())
	}
	return rec, nil
}

func classifyTelemetry(raw, token string, payload []string) (record.Record, error) {
	percent, err := validation.ParseInteger(payload[0])
	if err != nil {
		return nil, errors.NewMalformedPayload(raw, token, "battery", err.Error())
	}

	rec, err := record.NewTelemetry(percent)
	if err != nil {
		return nil, errors.NewMalformedPayload(raw, token, "battery", err.Error())
	}
	return rec, nil
}

func classifySettings(raw, token string, payload []string) (record.Record, error) {
	on, ok := constants.ParseState(payload[0])
	if !ok {
		return nil, errors.NewMalformedPayload(raw, token, "state",
			fmt.Sprintf("value %q is not one of on, off, 1, 0", payload[0]))
	}

	rate, err := validation.ParseInteger(payload[1])
	if err != nil {
		return nil, errors.NewMalformedPayload(raw, token, "rate", err.Error())
	}

	rec, err := record.NewSettings(on, rate)
	if err != nil {
		return nil, errors.NewMalformedPayload(raw, token, "rate", err.Error())
	}
	return rec, nil
}
