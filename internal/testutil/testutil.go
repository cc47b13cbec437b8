// Package testutil provides test helpers shared by the sensorring packages.
//
// It covers three recurring needs: capturing log output so tests can assert
// on warnings, building input streams, and comparing record sequences by
// their wire form.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/xtxerr/sensorring/internal/logging"
	"github.com/xtxerr/sensorring/internal/record"
)

// =============================================================================
// Log Capture
// =============================================================================

// CaptureLogs routes the global logger into a buffer at debug level for the
// duration of the test. The previous logger is restored on cleanup.
//
// Component loggers are bound when a component is constructed, so call
// CaptureLogs before creating the component under test.
func CaptureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()

	prev := logging.Logger
	buf := &bytes.Buffer{}
	logging.InitWithHandler(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	t.Cleanup(func() {
		if prev != nil {
			logging.InitWithHandler(prev.Handler())
		} else {
			logging.Logger = nil
		}
	})
	return buf
}

// AssertLogged fails the test unless the captured output contains msg.
func AssertLogged(t *testing.T, buf *bytes.Buffer, msg string) {
	t.Helper()
	if !strings.Contains(buf.String(), msg) {
		t.Errorf("expected log output to contain %q, got:\n%s", msg, buf.String())
	}
}

// AssertNotLogged fails the test if the captured output contains msg.
func AssertNotLogged(t *testing.T, buf *bytes.Buffer, msg string) {
	t.Helper()
	if strings.Contains(buf.String(), msg) {
		t.Errorf("expected log output without %q, got:\n%s", msg, buf.String())
	}
}

// =============================================================================
// Input Fixtures
// =============================================================================

// TelemetryLines returns one TEL line per battery value in [from, to].
func TelemetryLines(from, to int) []string {
	lines := make([]string, 0, max(0, to-from+1))
	for v := from; v <= to; v++ {
		lines = append(lines, fmt.Sprintf("TEL,%d", v))
	}
	return lines
}

// Stream joins lines into newline-terminated input.
func Stream(lines ...string) *strings.Reader {
	if len(lines) == 0 {
		return strings.NewReader("")
	}
	return strings.NewReader(strings.Join(lines, "\n") + "\n")
}

// =============================================================================
// Record Assertions
// =============================================================================

// Formatted returns the line form of each record.
func Formatted(recs []record.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = record.Format(r)
	}
	return out
}

// AssertRecords fails the test unless recs, in order, format to want.
func AssertRecords(t *testing.T, recs []record.Record, want ...string) {
	t.Helper()

	got := Formatted(recs)
	if len(got) != len(want) {
		t.Fatalf("expected %d records %v, got %d %v", len(want), want, len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

// =============================================================================
// Timeout Helper
// =============================================================================

// WithTimeout runs fn with a context that expires after timeout and fails
// the test if fn returns an error or does not finish in time.
func WithTimeout(t *testing.T, timeout time.Duration, fn func(ctx context.Context) error) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- fn(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(timeout + time.Second):
		t.Fatalf("timeout after %v", timeout)
	}
}
