// Package validation provides centralized input validation for sensorring.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/xtxerr/sensorring/config"
	"github.com/xtxerr/sensorring/internal/errors"
)

// =============================================================================
// Line Splitting
// =============================================================================

// SplitFields splits one input line into trimmed fields.
// A trailing carriage return and surrounding whitespace are ignored.
func SplitFields(line string) []string {
	line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
	parts := strings.Split(line, config.FieldSeparator)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// =============================================================================
// Numeric Field Validation
// =============================================================================

// signedDecimal requires an explicit sign and plain decimal digits.
// Exponents, hex floats, Inf and NaN are rejected.
var signedDecimal = regexp.MustCompile(`^[+-](?:[0-9]+(?:\.[0-9]*)?|\.[0-9]+)$`)

var integer = regexp.MustCompile(`^[+-]?[0-9]+$`)

// ParseSignedDecimal parses a decimal that must carry an explicit sign.
func ParseSignedDecimal(s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	if s[0] != '+' && s[0] != '-' {
		return 0, fmt.Errorf("value %q has no explicit sign", s)
	}
	if !signedDecimal.MatchString(s) {
		return 0, fmt.Errorf("value %q is not a decimal number", s)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("value %q: %w", s, err)
	}
	return v, nil
}

// ParseInteger parses a base-10 integer with an optional sign.
func ParseInteger(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	if !integer.MatchString(s) {
		return 0, fmt.Errorf("value %q is not an integer", s)
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("value %q: %w", s, err)
	}
	return v, nil
}

// =============================================================================
// Range Validation
// =============================================================================

// ValidateFloatRange checks min <= v <= max. Both bounds are inclusive.
func ValidateFloatRange(v, min, max float64) error {
	if v < min || v > max {
		return fmt.Errorf("%g outside [%g, %g]", v, min, max)
	}
	return nil
}

// ValidateIntRange checks min <= v <= max. Both bounds are inclusive.
func ValidateIntRange(v, min, max int) error {
	if v < min || v > max {
		return fmt.Errorf("%d outside [%d, %d]", v, min, max)
	}
	return nil
}

// ValidateIntMin checks v >= min.
func ValidateIntMin(v, min int) error {
	if v < min {
		return fmt.Errorf("%d below %d", v, min)
	}
	return nil
}

// =============================================================================
// Capacity Validation
// =============================================================================

// ValidateCapacity checks a store capacity against the hard bounds.
func ValidateCapacity(capacity int) error {
	if capacity < config.MinCapacity || capacity > config.MaxCapacity {
		return errors.NewInvalidCapacity(capacity, config.MinCapacity, config.MaxCapacity)
	}
	return nil
}

// =============================================================================
// Threshold Validation
// =============================================================================

// ValidateRatio checks that v is a usage ratio in [0, 1].
func ValidateRatio(field string, v float64) error {
	if v < 0 || v > 1 {
		return errors.NewInvalidValue(field, v, "must be between 0 and 1")
	}
	return nil
}
