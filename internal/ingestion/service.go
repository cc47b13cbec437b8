// Package ingestion wires classification, the record store and its
// diagnostics into the operations callers use.
//
// The flow for each input line is: classify → store push → statistics →
// pressure check. Failures are logged as warnings and returned; none of them
// leaves the store unusable.
package ingestion

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	defaults "github.com/xtxerr/sensorring/config"
	"github.com/xtxerr/sensorring/internal/aggregate"
	"github.com/xtxerr/sensorring/internal/classify"
	"github.com/xtxerr/sensorring/internal/config"
	"github.com/xtxerr/sensorring/internal/errors"
	"github.com/xtxerr/sensorring/internal/logging"
	"github.com/xtxerr/sensorring/internal/pressure"
	"github.com/xtxerr/sensorring/internal/record"
	"github.com/xtxerr/sensorring/internal/ring"
)

// Service orchestrates the record pipeline around one store.
// It is not safe for concurrent use.
type Service struct {
	config *config.Config

	// Components
	store    *ring.Store
	pressure *pressure.Controller
	summary  *aggregate.Summary

	log *slog.Logger
}

// New creates a new ingestion service.
func New(cfg *config.Config) (*Service, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	store, err := ring.New(cfg.Buffer.Capacity, cfg.Buffer.Overwrite)
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}

	accuracy := 0.0
	if cfg.Stats.Percentiles {
		accuracy = cfg.Stats.Accuracy
	}

	s := &Service{
		config:   cfg,
		store:    store,
		pressure: pressure.New(cfg.Pressure, store),
		summary:  aggregate.NewSummary(accuracy),
		log:      logging.Component("ingestion"),
	}
	s.pressure.SetOnLevelChange(s.onLevelChange)

	return s, nil
}

func (s *Service) onLevelChange(old, new pressure.Level) {
	if new > old {
		s.log.Warn("store pressure rising", "from", old, "to", new,
			"len", s.store.Len(), "cap", s.store.Cap())
		return
	}
	s.log.Info("store pressure easing", "from", old, "to", new,
		"len", s.store.Len(), "cap", s.store.Cap())
}

// Ingest classifies raw and pushes the record with the store's configured
// overwrite mode. A rejected line is logged and skipped without touching
// the store.
func (s *Service) Ingest(raw string) error {
	rec, err := classify.Classify(raw)
	if err != nil {
		s.summary.AddSkipped()
		s.log.Warn("record skipped", "line", raw, "error", err)
		return err
	}

	evicting := s.store.IsFull() && s.store.Overwrite()

	if err := s.store.Push(rec); err != nil {
		s.log.Warn("record rejected", "record", rec, "error", err)
		return err
	}
	if evicting {
		s.log.Warn("overwrote oldest record", "record", rec, "cap", s.store.Cap())
	}

	s.summary.Add(rec)
	s.pressure.Check()
	s.log.Debug("record stored", "record", rec, "len", s.store.Len())

	return nil
}

// IngestResult counts the outcome of feeding a stream of lines.
type IngestResult struct {
	Lines    int // Non-blank, non-comment lines seen
	Stored   int
	Skipped  int // Rejected by classification
	Rejected int // Refused by a full store
}

// IngestAll feeds every line of r through Ingest.
// Blank lines and lines starting with '#' are ignored, lines longer than
// MaxLineBytes are skipped. Only read errors are returned; per-line
// failures are counted.
func (s *Service) IngestAll(r io.Reader) (IngestResult, error) {
	var result IngestResult

	err := ScanLines(r, func(line Line) error {
		s.ingestLine(line, &result)
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("read input: %w", err)
	}
	return result, nil
}

// Feed ingests lines received on lines until the channel is closed or ctx
// is done. It is the single consumer for producers that read input
// concurrently; the store is only touched from the calling goroutine.
func (s *Service) Feed(ctx context.Context, lines <-chan Line) (IngestResult, error) {
	var result IngestResult

	for {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return result, nil
			}
			s.ingestLine(line, &result)
		}
	}
}

// ignored reports whether line is blank or a comment.
func ignored(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed == "" || strings.HasPrefix(trimmed, "#")
}

func (s *Service) ingestLine(line Line, result *IngestResult) {
	switch {
	case line.Truncated:
		result.Lines++
		result.Skipped++
		s.summary.AddSkipped()
		s.log.Warn("line too long, skipped", "limit", defaults.MaxLineBytes,
			"prefix", line.Text[:min(len(line.Text), 32)])
		return
	case ignored(line.Text):
		return
	}

	result.Lines++
	err := s.Ingest(line.Text)
	switch {
	case err == nil:
		result.Stored++
	case errors.IsClassification(err):
		result.Skipped++
	default:
		result.Rejected++
	}
}

// Retrieve pops the oldest record. An empty store yields false and a
// logged warning.
func (s *Service) Retrieve() (record.Record, bool) {
	rec, err := s.store.Pop()
	if err != nil {
		s.log.Warn("retrieve from empty store", "error", err)
		return nil, false
	}
	s.pressure.Check()
	return rec, true
}

// RetrieveN pops up to n records in FIFO order.
func (s *Service) RetrieveN(n int) []record.Record {
	recs, err := s.store.PopN(n)
	if err != nil {
		s.log.Warn("retrieve from empty store", "error", err)
		return nil
	}
	s.pressure.Check()
	return recs
}

// Drain pops every stored record in FIFO order.
// Draining an empty store returns nil and does not raise the underflow flag.
func (s *Service) Drain() []record.Record {
	if s.store.IsEmpty() {
		return nil
	}
	recs, _ := s.store.PopN(s.store.Len())
	s.pressure.Check()
	return recs
}

// ChangeCapacity resizes the store and reports the outcome.
func (s *Service) ChangeCapacity(newCapacity int, overwrite bool) (ring.ResizeReport, error) {
	oldCapacity := s.store.Cap()

	report, err := s.store.Resize(newCapacity, overwrite)
	if err != nil {
		s.log.Warn("resize failed", "from", oldCapacity, "to", newCapacity,
			"overwrite", overwrite, "error", err)
		return report, err
	}

	if report.Discarded > 0 {
		s.log.Warn("resize discarded records", "from", oldCapacity, "to", newCapacity,
			"retained", report.Retained, "discarded", report.Discarded)
	} else {
		s.log.Info("store resized", "from", oldCapacity, "to", newCapacity,
			"retained", report.Retained)
	}

	s.pressure.Check()
	return report, nil
}

// Flags returns the store's sticky flags.
func (s *Service) Flags() ring.Flags {
	return s.store.Flags()
}

// ClearFlags resets the store's sticky flags.
func (s *Service) ClearFlags() {
	s.store.ClearFlags()
	s.log.Debug("flags cleared")
}

// Store exposes the underlying store for read-only inspection.
func (s *Service) Store() *ring.Store {
	return s.store
}

// Summary returns the running record statistics.
func (s *Service) Summary() aggregate.Report {
	return s.summary.Report()
}

// Status is a snapshot of the service state.
type Status struct {
	Len       int
	Cap       int
	Overwrite bool
	Flags     ring.Flags
	Level     pressure.Level
	Stats     ring.Stats

	// Pressure is zero when PressureEnabled is false.
	PressureEnabled bool
	Pressure        pressure.Stats
}

// Status returns a snapshot of the service state.
func (s *Service) Status() Status {
	return Status{
		Len:       s.store.Len(),
		Cap:       s.store.Cap(),
		Overwrite: s.store.Overwrite(),
		Flags:     s.store.Flags(),
		Level:     s.pressure.CurrentLevel(),
		Stats:     s.store.Stats(),

		PressureEnabled: s.pressure.IsEnabled(),
		Pressure:        s.pressure.Stats(),
	}
}
