package ingestion

import (
	"context"
	"io"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/xtxerr/sensorring/internal/config"
	"github.com/xtxerr/sensorring/internal/errors"
	"github.com/xtxerr/sensorring/internal/pressure"
	"github.com/xtxerr/sensorring/internal/record"
	"github.com/xtxerr/sensorring/internal/testutil"
)

func newService(t *testing.T, capacity int, overwrite bool) *Service {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Buffer.Capacity = capacity
	cfg.Buffer.Overwrite = overwrite

	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc
}

func ingestAll(t *testing.T, svc *Service, lines ...string) {
	t.Helper()
	for _, line := range lines {
		if err := svc.Ingest(line); err != nil {
			t.Fatalf("Ingest(%q): %v", line, err)
		}
	}
}

func TestNew_Defaults(t *testing.T) {
	testutil.CaptureLogs(t)

	svc, err := New(nil)
	if err != nil {
		t.Fatalf("New(nil): %v", err)
	}
	st := svc.Status()
	if st.Cap != 10 || st.Len != 0 || st.Overwrite {
		t.Errorf("unexpected default status: %+v", st)
	}
}

func TestNew_InvalidCapacity(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Buffer.Capacity = 0

	_, err := New(cfg)
	if !errors.Is(err, errors.ErrInvalidCapacity) {
		t.Errorf("expected ErrInvalidCapacity, got %v", err)
	}
}

func TestService_IngestAndRetrieve(t *testing.T) {
	testutil.CaptureLogs(t)
	svc := newService(t, 5, false)

	ingestAll(t, svc, "GPS,-73.994454,+40.750042", "TEL,85", "SET,on,10")

	want := []string{"GPS,-73.994454,+40.750042", "TEL,85", "SET,on,10"}
	for _, w := range want {
		rec, ok := svc.Retrieve()
		if !ok {
			t.Fatalf("expected record %s, store empty", w)
		}
		if got := record.Format(rec); got != w {
			t.Errorf("expected %s, got %s", w, got)
		}
	}

	if svc.Flags().Any() {
		t.Errorf("expected no flags, got %+v", svc.Flags())
	}
}

func TestService_SkipsUnclassifiable(t *testing.T) {
	logs := testutil.CaptureLogs(t)
	svc := newService(t, 5, false)

	err := svc.Ingest("XYZ,1,2")
	if !errors.Is(err, errors.ErrUnknownSensorType) {
		t.Errorf("expected ErrUnknownSensorType, got %v", err)
	}

	err = svc.Ingest("TEL,abc")
	if !errors.Is(err, errors.ErrMalformedPayload) {
		t.Errorf("expected ErrMalformedPayload, got %v", err)
	}

	if svc.Store().Len() != 0 {
		t.Errorf("skipped lines must not be stored, len=%d", svc.Store().Len())
	}
	if svc.Flags().Any() {
		t.Errorf("classification failures must not set flags, got %+v", svc.Flags())
	}
	if svc.Summary().Skipped != 2 {
		t.Errorf("expected 2 skipped, got %d", svc.Summary().Skipped)
	}
	testutil.AssertLogged(t, logs, "record skipped")
}

func TestService_OverflowRejects(t *testing.T) {
	logs := testutil.CaptureLogs(t)
	svc := newService(t, 2, false)

	ingestAll(t, svc, "TEL,1", "TEL,2")

	err := svc.Ingest("TEL,3")
	if !errors.Is(err, errors.ErrOverflow) {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
	if !svc.Flags().Overflow {
		t.Error("expected overflow flag")
	}
	testutil.AssertLogged(t, logs, "record rejected")
	testutil.AssertRecords(t, svc.Drain(), "TEL,1", "TEL,2")

	// Rejected records are not counted as accepted.
	if svc.Summary().Accepted != 2 {
		t.Errorf("expected 2 accepted, got %d", svc.Summary().Accepted)
	}
}

func TestService_OverflowOverwrites(t *testing.T) {
	logs := testutil.CaptureLogs(t)
	svc := newService(t, 2, true)

	ingestAll(t, svc, "TEL,1", "TEL,2", "TEL,3")

	if !svc.Flags().Overflow {
		t.Error("expected overflow flag")
	}
	testutil.AssertLogged(t, logs, "overwrote oldest record")
	testutil.AssertRecords(t, svc.Drain(), "TEL,2", "TEL,3")
}

func TestService_RetrieveEmpty(t *testing.T) {
	logs := testutil.CaptureLogs(t)
	svc := newService(t, 3, false)

	rec, ok := svc.Retrieve()
	if ok || rec != nil {
		t.Errorf("expected nothing from an empty store, got %v", rec)
	}
	if !svc.Flags().Underflow {
		t.Error("expected underflow flag")
	}
	testutil.AssertLogged(t, logs, "retrieve from empty store")

	// The flag survives a successful push and pop.
	ingestAll(t, svc, "TEL,5")
	if _, ok := svc.Retrieve(); !ok {
		t.Fatal("expected a record")
	}
	if !svc.Flags().Underflow {
		t.Error("underflow flag should be sticky")
	}

	svc.ClearFlags()
	if svc.Flags().Any() {
		t.Errorf("expected flags cleared, got %+v", svc.Flags())
	}
}

func TestService_RetrieveN(t *testing.T) {
	testutil.CaptureLogs(t)
	svc := newService(t, 5, false)

	ingestAll(t, svc, testutil.TelemetryLines(1, 4)...)

	testutil.AssertRecords(t, svc.RetrieveN(3), "TEL,1", "TEL,2", "TEL,3")
	testutil.AssertRecords(t, svc.RetrieveN(3), "TEL,4")

	if recs := svc.RetrieveN(1); recs != nil {
		t.Errorf("expected nil from an empty store, got %v", recs)
	}
	if !svc.Flags().Underflow {
		t.Error("expected underflow flag")
	}
}

func TestService_DrainEmpty(t *testing.T) {
	testutil.CaptureLogs(t)
	svc := newService(t, 3, false)

	if recs := svc.Drain(); recs != nil {
		t.Errorf("expected nil, got %v", recs)
	}
	if svc.Flags().Underflow {
		t.Error("draining an empty store must not set underflow")
	}
}

func TestService_ChangeCapacity(t *testing.T) {
	logs := testutil.CaptureLogs(t)
	svc := newService(t, 5, false)

	ingestAll(t, svc, testutil.TelemetryLines(1, 5)...)

	_, err := svc.ChangeCapacity(3, false)
	if !errors.Is(err, errors.ErrResizeRejected) {
		t.Fatalf("expected ErrResizeRejected, got %v", err)
	}
	if svc.Store().Cap() != 5 || svc.Store().Len() != 5 {
		t.Errorf("rejected resize changed the store: %s", svc.Store())
	}
	testutil.AssertLogged(t, logs, "resize failed")

	report, err := svc.ChangeCapacity(3, true)
	if err != nil {
		t.Fatalf("ChangeCapacity: %v", err)
	}
	if report.Retained != 3 || report.Discarded != 2 {
		t.Errorf("unexpected report %+v", report)
	}
	if !svc.Flags().DataLossResize {
		t.Error("expected data-loss flag")
	}
	testutil.AssertLogged(t, logs, "resize discarded records")
	testutil.AssertRecords(t, svc.Drain(), "TEL,3", "TEL,4", "TEL,5")

	if _, err := svc.ChangeCapacity(101, false); !errors.Is(err, errors.ErrInvalidCapacity) {
		t.Errorf("expected ErrInvalidCapacity, got %v", err)
	}
}

func TestService_ChangeCapacityGrow(t *testing.T) {
	logs := testutil.CaptureLogs(t)
	svc := newService(t, 2, false)

	ingestAll(t, svc, "TEL,1", "TEL,2")

	report, err := svc.ChangeCapacity(4, false)
	if err != nil {
		t.Fatalf("ChangeCapacity: %v", err)
	}
	if report.Retained != 2 || report.Discarded != 0 {
		t.Errorf("unexpected report %+v", report)
	}
	testutil.AssertLogged(t, logs, "store resized")

	ingestAll(t, svc, "TEL,3", "TEL,4")
	testutil.AssertRecords(t, svc.Drain(), "TEL,1", "TEL,2", "TEL,3", "TEL,4")
	if svc.Flags().Any() {
		t.Errorf("expected no flags, got %+v", svc.Flags())
	}
}

func TestService_IngestAll(t *testing.T) {
	testutil.CaptureLogs(t)
	svc := newService(t, 3, false)

	input := testutil.Stream(
		"# header comment",
		"GPS,+1.5,-2.25",
		"",
		"BAD,1",
		"TEL,40\r",
		"SET,off,3",
		"TEL,41",
	)

	result, err := svc.IngestAll(input)
	if err != nil {
		t.Fatalf("IngestAll: %v", err)
	}

	expected := IngestResult{Lines: 5, Stored: 3, Skipped: 1, Rejected: 1}
	if result != expected {
		t.Errorf("expected %+v, got %+v", expected, result)
	}
	testutil.AssertRecords(t, svc.Drain(), "GPS,+1.5,-2.25", "TEL,40", "SET,off,3")
}

func TestService_IngestAllLongLine(t *testing.T) {
	logs := testutil.CaptureLogs(t)
	svc := newService(t, 3, false)

	long := "TEL," + strings.Repeat("9", 70*1024)
	result, err := svc.IngestAll(strings.NewReader("TEL,1\n" + long + "\nTEL,2\n"))
	if err != nil {
		t.Fatalf("an oversized line should not stop ingestion: %v", err)
	}

	expected := IngestResult{Lines: 3, Stored: 2, Skipped: 1}
	if result != expected {
		t.Errorf("expected %+v, got %+v", expected, result)
	}
	if svc.Summary().Skipped != 1 {
		t.Errorf("expected 1 skipped in the summary, got %d", svc.Summary().Skipped)
	}
	testutil.AssertLogged(t, logs, "line too long")
	testutil.AssertRecords(t, svc.Drain(), "TEL,1", "TEL,2")
}

func TestService_IngestAllReadError(t *testing.T) {
	testutil.CaptureLogs(t)
	svc := newService(t, 3, false)

	r := io.MultiReader(strings.NewReader("TEL,1\n"), iotest.ErrReader(io.ErrUnexpectedEOF))
	result, err := svc.IngestAll(r)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected the read error, got %v", err)
	}
	if result.Stored != 1 {
		t.Errorf("expected the line before the error to be stored, got %+v", result)
	}
}

func TestService_Feed(t *testing.T) {
	testutil.CaptureLogs(t)
	svc := newService(t, 4, false)

	lines := make(chan Line)
	go func() {
		defer close(lines)
		for _, l := range []string{"TEL,1", "", "# note", "NOPE", "TEL,2"} {
			lines <- Line{Text: l}
		}
		lines <- Line{Text: "TEL,3", Truncated: true}
	}()

	testutil.WithTimeout(t, 5*time.Second, func(ctx context.Context) error {
		result, err := svc.Feed(ctx, lines)
		if err != nil {
			return err
		}
		expected := IngestResult{Lines: 4, Stored: 2, Skipped: 2}
		if result != expected {
			t.Errorf("expected %+v, got %+v", expected, result)
		}
		return nil
	})

	testutil.AssertRecords(t, svc.Drain(), "TEL,1", "TEL,2")
}

func TestService_FeedCancelled(t *testing.T) {
	testutil.CaptureLogs(t)
	svc := newService(t, 4, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Feed(ctx, make(chan Line))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestService_PressureLevels(t *testing.T) {
	logs := testutil.CaptureLogs(t)
	svc := newService(t, 4, false)

	ingestAll(t, svc, testutil.TelemetryLines(1, 4)...)
	if st := svc.Status(); st.Level != pressure.LevelEmergency {
		t.Errorf("expected emergency on a full store, got %s", st.Level)
	}
	testutil.AssertLogged(t, logs, "store pressure rising")

	svc.Drain()
	st := svc.Status()
	if st.Level != pressure.LevelNormal {
		t.Errorf("expected normal after drain, got %s", st.Level)
	}
	testutil.AssertLogged(t, logs, "store pressure easing")

	// normal -> warning at 2/4, -> emergency at 4/4, -> normal on drain.
	expected := pressure.Stats{LevelChanges: 3, WarningCount: 1, EmergencyCount: 1}
	if !st.PressureEnabled || st.Pressure != expected {
		t.Errorf("expected pressure %+v, got enabled=%t %+v", expected, st.PressureEnabled, st.Pressure)
	}
}

func TestService_StatusPressureDisabled(t *testing.T) {
	testutil.CaptureLogs(t)
	cfg := config.DefaultConfig()
	cfg.Buffer.Capacity = 2
	cfg.Pressure.Enabled = false

	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ingestAll(t, svc, "TEL,1", "TEL,2")

	st := svc.Status()
	if st.PressureEnabled || st.Pressure != (pressure.Stats{}) || st.Level != pressure.LevelNormal {
		t.Errorf("expected no pressure tracking, got %+v", st)
	}
}

func TestService_Status(t *testing.T) {
	testutil.CaptureLogs(t)
	svc := newService(t, 2, false)

	ingestAll(t, svc, "TEL,1", "TEL,2")
	_ = svc.Ingest("TEL,3")
	svc.Retrieve()

	st := svc.Status()
	if st.Len != 1 || st.Cap != 2 {
		t.Errorf("unexpected size %d/%d", st.Len, st.Cap)
	}
	if !st.Flags.Overflow {
		t.Error("expected overflow in status")
	}
	if st.Stats.Pushed != 2 || st.Stats.Rejected != 1 || st.Stats.Popped != 1 {
		t.Errorf("unexpected stats %+v", st.Stats)
	}
}
