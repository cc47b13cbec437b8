// Package errors provides the error definitions for the entire project.
//
// This file provides:
// - Numeric error codes used to tag shell output and exit statuses
// - Sentinel errors for all error conditions
// - Error category checking functions
// - ErrorToCode mapping
// - Error wrapping utilities

package errors

import (
	"errors"
	"fmt"
)

// ============================================================================
// Error codes
// ============================================================================

const (
	CodeUnknown           int32 = 1
	CodeUnknownSensorType int32 = 2
	CodeMalformedPayload  int32 = 3
	CodeOverflow          int32 = 4
	CodeUnderflow         int32 = 5
	CodeResizeRejected    int32 = 6
	CodeInvalidCapacity   int32 = 7
	CodeInvalidConfig     int32 = 8
	CodeInvalidCommand    int32 = 9
	CodeInternal          int32 = 10
)

// CodeName returns a human-readable name for an error code.
func CodeName(code int32) string {
	switch code {
	case CodeUnknown:
		return "Unknown"
	case CodeUnknownSensorType:
		return "UnknownSensorType"
	case CodeMalformedPayload:
		return "MalformedPayload"
	case CodeOverflow:
		return "Overflow"
	case CodeUnderflow:
		return "Underflow"
	case CodeResizeRejected:
		return "ResizeRejected"
	case CodeInvalidCapacity:
		return "InvalidCapacity"
	case CodeInvalidConfig:
		return "InvalidConfig"
	case CodeInvalidCommand:
		return "InvalidCommand"
	case CodeInternal:
		return "Internal"
	default:
		return fmt.Sprintf("Code(%d)", code)
	}
}

// ============================================================================
// Sentinel errors
// ============================================================================

var (
	// Classification errors
	ErrUnknownSensorType = errors.New("unknown sensor type")
	ErrMalformedPayload  = errors.New("malformed payload")

	// Store errors
	ErrOverflow        = errors.New("buffer overflow")
	ErrUnderflow       = errors.New("buffer underflow")
	ErrResizeRejected  = errors.New("resize rejected")
	ErrInvalidCapacity = errors.New("invalid capacity")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")

	// Shell errors
	ErrUnknownCommand = errors.New("unknown command")
	ErrInvalidArgs    = errors.New("invalid arguments")

	// Internal errors
	ErrInternal = errors.New("internal error")
)

// ============================================================================
// Helper functions for error checking
// ============================================================================

// Is is a convenience wrapper for errors.Is
var Is = errors.Is

// As is a convenience wrapper for errors.As
var As = errors.As

// New is a convenience wrapper for errors.New
var New = errors.New

// Join is a convenience wrapper for errors.Join
var Join = errors.Join

// IsClassification returns true if err rejected an input line.
func IsClassification(err error) bool {
	return errors.Is(err, ErrUnknownSensorType) ||
		errors.Is(err, ErrMalformedPayload)
}

// IsCapacity returns true if err is an overflow or underflow.
func IsCapacity(err error) bool {
	return errors.Is(err, ErrOverflow) ||
		errors.Is(err, ErrUnderflow)
}

// IsResize returns true if err came from a rejected capacity change.
func IsResize(err error) bool {
	return errors.Is(err, ErrResizeRejected) ||
		errors.Is(err, ErrInvalidCapacity)
}

// IsValidation returns true if err is a configuration or argument error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrInvalidArgs)
}

// ============================================================================
// Error to code mapping
// ============================================================================

// ErrorToCode maps a sentinel error to its numeric code.
func ErrorToCode(err error) int32 {
	if err == nil {
		return CodeUnknown
	}

	switch {
	case Is(err, ErrUnknownSensorType):
		return CodeUnknownSensorType
	case Is(err, ErrMalformedPayload):
		return CodeMalformedPayload
	case Is(err, ErrOverflow):
		return CodeOverflow
	case Is(err, ErrUnderflow):
		return CodeUnderflow
	case Is(err, ErrResizeRejected):
		return CodeResizeRejected
	case Is(err, ErrInvalidCapacity):
		return CodeInvalidCapacity
	case Is(err, ErrUnknownCommand), Is(err, ErrInvalidArgs):
		return CodeInvalidCommand
	case IsValidation(err):
		return CodeInvalidConfig
	default:
		return CodeInternal
	}
}

// ============================================================================
// Error wrapping utilities
// ============================================================================

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// ============================================================================
// Error constructors with context
// ============================================================================

// NewInvalidCapacity creates an invalid-capacity error for the given request.
func NewInvalidCapacity(capacity, min, max int) error {
	return fmt.Errorf("capacity %d outside [%d, %d]: %w", capacity, min, max, ErrInvalidCapacity)
}

// NewValidation creates a validation error with context.
func NewValidation(field, reason string) error {
	return fmt.Errorf("invalid %s: %s: %w", field, reason, ErrInvalidConfig)
}

// NewInvalidValue creates an invalid value error.
func NewInvalidValue(field string, value interface{}, reason string) error {
	return fmt.Errorf("invalid %s '%v': %s: %w", field, value, reason, ErrInvalidConfig)
}

// ============================================================================
// Classification errors
// ============================================================================

// ClassificationError describes why an input line was not turned into a record.
// Kind is ErrUnknownSensorType or ErrMalformedPayload.
type ClassificationError struct {
	Kind   error
	Line   string
	Token  string
	Field  string
	Reason string
}

// NewUnknownSensorType creates a classification error for an unrecognized token.
func NewUnknownSensorType(line, token string) *ClassificationError {
	return &ClassificationError{
		Kind:   ErrUnknownSensorType,
		Line:   line,
		Token:  token,
		Reason: fmt.Sprintf("token %q is not one of GPS, TEL, SET", token),
	}
}

// NewMalformedPayload creates a classification error for a bad field.
func NewMalformedPayload(line, token, field, reason string) *ClassificationError {
	return &ClassificationError{
		Kind:   ErrMalformedPayload,
		Line:   line,
		Token:  token,
		Field:  field,
		Reason: reason,
	}
}

// Error implements the error interface.
func (e *ClassificationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s %s: %s", e.Kind, e.Token, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// Unwrap returns the sentinel kind for errors.Is support.
func (e *ClassificationError) Unwrap() error {
	return e.Kind
}

// ============================================================================
// Validation Errors Collection
// ============================================================================

// ValidationErrors collects multiple validation errors.
type ValidationErrors struct {
	Errors []error
}

// NewValidationErrors creates a new ValidationErrors collector.
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{}
}

// Add adds an error to the collection.
func (v *ValidationErrors) Add(err error) {
	if err != nil {
		v.Errors = append(v.Errors, err)
	}
}

// AddField adds a field validation error.
func (v *ValidationErrors) AddField(field, reason string) {
	v.Errors = append(v.Errors, NewValidation(field, reason))
}

// HasErrors returns true if there are any errors.
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// Error implements the error interface.
func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return ""
	}
	if len(v.Errors) == 1 {
		return v.Errors[0].Error()
	}

	msg := fmt.Sprintf("validation failed with %d errors:", len(v.Errors))
	for _, err := range v.Errors {
		msg += "\n  - " + err.Error()
	}
	return msg
}

// Err returns nil if no errors, otherwise returns the ValidationErrors.
func (v *ValidationErrors) Err() error {
	if len(v.Errors) == 0 {
		return nil
	}
	return v
}

// Unwrap returns the collected errors for errors.Is/As support.
func (v *ValidationErrors) Unwrap() []error {
	return v.Errors
}
