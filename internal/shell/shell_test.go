package shell

import (
	"bytes"
	"strings"
	"testing"

	prompt "github.com/c-bata/go-prompt"

	"github.com/xtxerr/sensorring/internal/config"
	"github.com/xtxerr/sensorring/internal/ingestion"
	"github.com/xtxerr/sensorring/internal/testutil"
)

func newShell(t *testing.T, capacity int, overwrite bool) (*Shell, *ingestion.Service, *bytes.Buffer) {
	t.Helper()
	testutil.CaptureLogs(t)

	cfg := config.DefaultConfig()
	cfg.Buffer.Capacity = capacity
	cfg.Buffer.Overwrite = overwrite

	svc, err := ingestion.New(cfg)
	if err != nil {
		t.Fatalf("ingestion.New: %v", err)
	}
	out := &bytes.Buffer{}
	return New(svc, out), svc, out
}

func run(t *testing.T, sh *Shell, out *bytes.Buffer, lines ...string) string {
	t.Helper()
	out.Reset()
	for _, line := range lines {
		sh.Exec(line)
	}
	return out.String()
}

func assertContains(t *testing.T, output string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(output, w) {
			t.Errorf("expected output to contain %q, got:\n%s", w, output)
		}
	}
}

func TestShell_PushAndPop(t *testing.T) {
	sh, svc, out := newShell(t, 3, false)

	output := run(t, sh, out, "push GPS,-73.994454,+40.750042", "TEL,85", "SET,on,10")
	assertContains(t, output, "stored", "GPS(lon=-73.994454, lat=+40.750042)", "TEL(battery=85%)")

	if svc.Store().Len() != 3 {
		t.Fatalf("expected 3 stored, got %d", svc.Store().Len())
	}

	output = run(t, sh, out, "pop 2")
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", output)
	}
	if !strings.Contains(lines[0], "GPS(") || !strings.Contains(lines[1], "TEL(") {
		t.Errorf("expected FIFO order, got %q", output)
	}

	output = run(t, sh, out, "pop")
	assertContains(t, output, "SET(on=true, rate=10)")
}

func TestShell_Errors(t *testing.T) {
	sh, _, out := newShell(t, 1, false)

	tests := []struct {
		line string
		tag  string
	}{
		{"XYZ,1,2", "error[UnknownSensorType]"},
		{"TEL,101", "error[MalformedPayload]"},
		{"pop", "error[Underflow]"},
		{"frobnicate", "error[InvalidCommand]"},
		{"pop zero", "error[InvalidCommand]"},
		{"push", "error[InvalidCommand]"},
		{"resize", "error[InvalidCommand]"},
		{"resize 0", "error[InvalidCapacity]"},
		{"resize 2 please", "error[InvalidCommand]"},
	}

	for _, tt := range tests {
		output := run(t, sh, out, tt.line)
		if !strings.Contains(output, tt.tag) {
			t.Errorf("%q: expected %s, got %q", tt.line, tt.tag, output)
		}
	}

	output := run(t, sh, out, "TEL,1", "TEL,2")
	assertContains(t, output, "error[Overflow]")
}

func TestShell_ResizeAndFlags(t *testing.T) {
	sh, svc, out := newShell(t, 4, false)

	run(t, sh, out, "TEL,1", "TEL,2", "TEL,3", "TEL,4")

	output := run(t, sh, out, "resize 2")
	assertContains(t, output, "error[ResizeRejected]")
	if svc.Store().Cap() != 4 {
		t.Errorf("rejected resize changed capacity to %d", svc.Store().Cap())
	}

	output = run(t, sh, out, "resize 2 overwrite")
	assertContains(t, output, "resized to 2, retained 2, discarded 2")

	output = run(t, sh, out, "flags")
	assertContains(t, output, "overflow=false", "underflow=false", "data_loss_resize=true")

	output = run(t, sh, out, "clear", "flags")
	assertContains(t, output, "flags cleared", "data_loss_resize=false")

	output = run(t, sh, out, "drain")
	assertContains(t, output, "TEL(battery=3%)", "TEL(battery=4%)", "drained 2")
}

func TestShell_PeekAndList(t *testing.T) {
	sh, svc, out := newShell(t, 3, false)

	output := run(t, sh, out, "peek", "list")
	if strings.Count(output, "(empty)") != 2 {
		t.Errorf("expected two empty markers, got %q", output)
	}

	run(t, sh, out, "TEL,10", "TEL,20")
	output = run(t, sh, out, "peek")
	assertContains(t, output, "oldest TEL(battery=10%)", "newest TEL(battery=20%)")

	output = run(t, sh, out, "list")
	assertContains(t, output, "0 TEL(battery=10%)", "1 TEL(battery=20%)")

	if svc.Store().Len() != 2 {
		t.Errorf("peek and list must not remove records, len=%d", svc.Store().Len())
	}
	if svc.Flags().Underflow {
		t.Error("peek on an empty store must not set underflow")
	}
}

func TestShell_StatusAndStats(t *testing.T) {
	sh, _, out := newShell(t, 2, true)

	run(t, sh, out, "TEL,50", "SET,on,5", "TEL,70", "bogus,1")

	output := run(t, sh, out, "status")
	assertContains(t, output, "size 2/2", "overwrite true", "level emergency",
		"overflow=true", "pushed=3", "evicted=1",
		"pressure changes=2 warning=1 critical=0 emergency=1")

	output = run(t, sh, out, "stats")
	assertContains(t, output, "accepted=3 skipped=1", "TEL 2", "SET 1", "settings on 1", "battery n=2 min=50 max=70 avg=60.00")
}

func TestShell_StatusPressureOff(t *testing.T) {
	testutil.CaptureLogs(t)
	cfg := config.DefaultConfig()
	cfg.Pressure.Enabled = false

	svc, err := ingestion.New(cfg)
	if err != nil {
		t.Fatalf("ingestion.New: %v", err)
	}
	out := &bytes.Buffer{}
	sh := New(svc, out)

	output := run(t, sh, out, "status")
	assertContains(t, output, "level off")
	if strings.Contains(output, "pressure changes=") {
		t.Errorf("expected no pressure counters when disabled, got:\n%s", output)
	}
}

func TestShell_CommandPanic(t *testing.T) {
	logs := testutil.CaptureLogs(t)
	out := &bytes.Buffer{}
	sh := New(nil, out)

	if sh.Exec("status") {
		t.Fatal("a failing command should not end the session")
	}
	assertContains(t, out.String(), "error[Internal]", "status: panic")
	testutil.AssertLogged(t, logs, "panic in command")

	if sh.Exec("help") {
		t.Fatal("expected the session to continue after a panic")
	}
	assertContains(t, out.String(), "list commands")
}

func TestShell_Help(t *testing.T) {
	sh, _, out := newShell(t, 2, false)

	output := run(t, sh, out, "help")
	for _, c := range commands {
		assertContains(t, output, c.name)
	}
}

func TestShell_Exit(t *testing.T) {
	sh, _, _ := newShell(t, 2, false)

	if sh.Exec("") || sh.Exec("# comment") || sh.Exec("status") {
		t.Fatal("only exit and quit should end the session")
	}
	if !sh.Exec("QUIT") {
		t.Error("expected quit to end the session")
	}
	if !sh.Exited() {
		t.Error("expected Exited after quit")
	}
	if !sh.exitChecker("quit", true) || sh.exitChecker("quit", false) {
		t.Error("exit checker should fire on the submitted line only")
	}
}

func complete(sh *Shell, text string) []string {
	b := prompt.NewBuffer()
	b.InsertText(text, false, true)

	var out []string
	for _, s := range sh.Complete(*b.Document()) {
		out = append(out, s.Text)
	}
	return out
}

func TestShell_Complete(t *testing.T) {
	sh, _, _ := newShell(t, 2, false)

	tests := []struct {
		text string
		want []string
	}{
		{"pu", []string{"push"}},
		{"re", []string{"resize"}},
		{"t", []string{"TEL,"}},
		{"push ", []string{"GPS,", "TEL,", "SET,"}},
		{"push s", []string{"SET,"}},
		{"resize 5 ", []string{"overwrite"}},
		{"resize 5 o", []string{"overwrite"}},
		{"pop 1 ", nil},
	}

	for _, tt := range tests {
		got := complete(sh, tt.text)
		if strings.Join(got, " ") != strings.Join(tt.want, " ") {
			t.Errorf("%q: expected %v, got %v", tt.text, tt.want, got)
		}
	}
}
