// Package shell implements the interactive command language over an
// ingestion service.
//
// A line starting with a command word runs that command. Any other line
// containing a comma is treated as a record and pushed, so pasted sensor
// output works without a "push" prefix.
//
//	push GPS,-73.994454,+40.750042
//	TEL,85
//	pop 2
//	resize 5 overwrite
//	flags
package shell

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/xtxerr/sensorring/internal/aggregate"
	"github.com/xtxerr/sensorring/internal/errors"
	"github.com/xtxerr/sensorring/internal/ingestion"
	"github.com/xtxerr/sensorring/internal/logging"
	"github.com/xtxerr/sensorring/internal/pressure"
	"github.com/xtxerr/sensorring/internal/record"
	"github.com/xtxerr/sensorring/internal/ring"
)

// command is one shell verb.
type command struct {
	name    string
	args    string
	summary string
	run     func(s *Shell, args []string) error
}

var (
	commands     []command
	commandIndex map[string]*command
)

func init() {
	commands = []command{
		{"push", "<line>", "classify a record line and store it", (*Shell).cmdPush},
		{"pop", "[n]", "remove and print the n oldest records (default 1)", (*Shell).cmdPop},
		{"peek", "", "print the oldest and newest records without removing them", (*Shell).cmdPeek},
		{"list", "", "print every stored record, oldest first", (*Shell).cmdList},
		{"drain", "", "remove and print every stored record", (*Shell).cmdDrain},
		{"resize", "<n> [overwrite]", "change the capacity, discarding the oldest records only with overwrite", (*Shell).cmdResize},
		{"flags", "", "show the sticky diagnostic flags", (*Shell).cmdFlags},
		{"clear", "", "reset the sticky diagnostic flags", (*Shell).cmdClear},
		{"status", "", "show size, capacity, mode, pressure level and counters", (*Shell).cmdStatus},
		{"stats", "", "show running statistics of accepted records", (*Shell).cmdStats},
		{"help", "", "list commands", (*Shell).cmdHelp},
		{"exit", "", "leave the shell", nil},
	}

	commandIndex = make(map[string]*command, len(commands)+1)
	for i := range commands {
		commandIndex[commands[i].name] = &commands[i]
	}
	commandIndex["quit"] = commandIndex["exit"]
}

// Shell executes command lines against one ingestion service.
// It is not safe for concurrent use.
type Shell struct {
	svc   *ingestion.Service
	out   io.Writer
	style styles
	log   *slog.Logger

	exited bool
}

// New creates a shell writing its output to out.
func New(svc *ingestion.Service, out io.Writer) *Shell {
	return &Shell{
		svc:   svc,
		out:   out,
		style: newStyles(out),
		log:   logging.Component("shell"),
	}
}

// Exec runs one input line and reports whether the shell should exit.
// Command errors are printed, tagged with their error code, and never
// returned: the session continues after any failure.
func (s *Shell) Exec(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return s.exited
	}

	fields := strings.Fields(line)
	name := strings.ToLower(fields[0])

	cmd, ok := commandIndex[name]
	var err error
	switch {
	case ok && cmd.run == nil:
		s.exited = true
		return true
	case ok:
		s.log.Debug("command", "name", cmd.name, "args", fields[1:])
		err = s.runCommand(cmd, fields[1:])
	case strings.Contains(line, ","):
		err = s.push(line)
	default:
		err = fmt.Errorf("%q (try help): %w", fields[0], errors.ErrUnknownCommand)
	}

	if err != nil {
		s.printError(err)
	}
	return s.exited
}

// runCommand runs cmd, turning a panic into an ErrInternal error so the
// session survives it.
func (s *Shell) runCommand(cmd *command, args []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("panic in command", "name", cmd.name, "panic", r)
			err = fmt.Errorf("%s: panic: %v: %w", cmd.name, r, errors.ErrInternal)
		}
	}()
	return cmd.run(s, args)
}

// Exited reports whether an exit command has been run.
func (s *Shell) Exited() bool {
	return s.exited
}

func (s *Shell) printError(err error) {
	tag := fmt.Sprintf("error[%s]:", errors.CodeName(errors.ErrorToCode(err)))
	fmt.Fprintln(s.out, s.style.err.Render(tag), err.Error())
}

func (s *Shell) printRecord(rec record.Record) {
	fmt.Fprintln(s.out, s.style.record.Render(rec.String()))
}

// =============================================================================
// Commands
// =============================================================================

func (s *Shell) cmdPush(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("push needs a record line: %w", errors.ErrInvalidArgs)
	}
	return s.push(strings.Join(args, " "))
}

func (s *Shell) push(line string) error {
	if err := s.svc.Ingest(line); err != nil {
		return err
	}
	rec, _ := s.svc.Store().PeekNewest()
	fmt.Fprintln(s.out, s.style.label.Render("stored"), s.style.record.Render(rec.String()))
	return nil
}

func (s *Shell) cmdPop(args []string) error {
	n, err := optionalCount(args)
	if err != nil {
		return err
	}

	recs := s.svc.RetrieveN(n)
	if len(recs) == 0 {
		return fmt.Errorf("store is empty: %w", errors.ErrUnderflow)
	}
	for _, rec := range recs {
		s.printRecord(rec)
	}
	return nil
}

func (s *Shell) cmdPeek(args []string) error {
	oldest, ok := s.svc.Store().Peek()
	if !ok {
		fmt.Fprintln(s.out, s.style.flagOff.Render("(empty)"))
		return nil
	}
	newest, _ := s.svc.Store().PeekNewest()
	fmt.Fprintln(s.out, s.style.label.Render("oldest"), s.style.record.Render(oldest.String()))
	fmt.Fprintln(s.out, s.style.label.Render("newest"), s.style.record.Render(newest.String()))
	return nil
}

func (s *Shell) cmdList(args []string) error {
	if s.svc.Store().IsEmpty() {
		fmt.Fprintln(s.out, s.style.flagOff.Render("(empty)"))
		return nil
	}
	for i, rec := range s.svc.Store().All() {
		fmt.Fprintf(s.out, "%s %s\n", s.style.label.Render(fmt.Sprintf("%3d", i)), s.style.record.Render(rec.String()))
	}
	return nil
}

func (s *Shell) cmdDrain(args []string) error {
	recs := s.svc.Drain()
	for _, rec := range recs {
		s.printRecord(rec)
	}
	fmt.Fprintf(s.out, "%s %d\n", s.style.label.Render("drained"), len(recs))
	return nil
}

func (s *Shell) cmdResize(args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return fmt.Errorf("usage: resize <n> [overwrite]: %w", errors.ErrInvalidArgs)
	}
	capacity, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("capacity %q is not an integer: %w", args[0], errors.ErrInvalidArgs)
	}
	overwrite := false
	if len(args) == 2 {
		if strings.ToLower(args[1]) != "overwrite" {
			return fmt.Errorf("unexpected %q, want overwrite: %w", args[1], errors.ErrInvalidArgs)
		}
		overwrite = true
	}

	report, err := s.svc.ChangeCapacity(capacity, overwrite)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%s %d, retained %d, discarded %d\n",
		s.style.label.Render("resized to"), capacity, report.Retained, report.Discarded)
	return nil
}

func (s *Shell) cmdFlags(args []string) error {
	fmt.Fprintln(s.out, s.style.flags(s.svc.Flags()))
	return nil
}

func (s *Shell) cmdClear(args []string) error {
	s.svc.ClearFlags()
	fmt.Fprintln(s.out, s.style.label.Render("flags cleared"))
	return nil
}

func (s *Shell) cmdStatus(args []string) error {
	st := s.svc.Status()

	level := "off"
	if st.PressureEnabled {
		level = st.Level.String()
		if st.Level > pressure.LevelNormal {
			level = s.style.levelHot.Render(level)
		}
	}

	fmt.Fprintf(s.out, "%s %d/%d  %s %t  %s %s\n",
		s.style.label.Render("size"), st.Len, st.Cap,
		s.style.label.Render("overwrite"), st.Overwrite,
		s.style.label.Render("level"), level)
	fmt.Fprintln(s.out, s.style.flags(st.Flags))
	fmt.Fprintf(s.out, "%s pushed=%d popped=%d rejected=%d evicted=%d discarded=%d\n",
		s.style.label.Render("counters"),
		st.Stats.Pushed, st.Stats.Popped, st.Stats.Rejected, st.Stats.Evicted, st.Stats.Discarded)
	if st.PressureEnabled {
		p := st.Pressure
		fmt.Fprintf(s.out, "%s changes=%d warning=%d critical=%d emergency=%d\n",
			s.style.label.Render("pressure"),
			p.LevelChanges, p.WarningCount, p.CriticalCount, p.EmergencyCount)
	}
	return nil
}

func (s *Shell) cmdStats(args []string) error {
	r := s.svc.Summary()

	fmt.Fprintf(s.out, "%s accepted=%d skipped=%d\n", s.style.heading.Render("records"), r.Accepted, r.Skipped)

	kinds := make([]record.Kind, 0, len(r.ByKind))
	for k := range r.ByKind {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	for _, k := range kinds {
		fmt.Fprintf(s.out, "  %s %d\n", s.style.label.Render(k.Token()), r.ByKind[k])
	}
	if r.ByKind[record.KindSettings] > 0 {
		fmt.Fprintf(s.out, "  %s %d\n", s.style.label.Render("settings on"), r.SettingsOn)
	}

	s.printField("battery", r.Battery)
	s.printField("rate", r.Rate)
	s.printField("longitude", r.Longitude)
	s.printField("latitude", r.Latitude)
	return nil
}

func (s *Shell) printField(name string, f aggregate.FieldResult) {
	if f.Count == 0 {
		return
	}
	line := fmt.Sprintf("n=%d min=%g max=%g avg=%.2f", f.Count, f.Min, f.Max, f.Avg)
	if f.HasPercentiles() {
		line += fmt.Sprintf(" p50=%.2f p90=%.2f p99=%.2f", *f.P50, *f.P90, *f.P99)
	}
	fmt.Fprintf(s.out, "%s %s\n", s.style.heading.Render(name), line)
}

func (s *Shell) cmdHelp(args []string) error {
	for _, c := range commands {
		usage := c.name
		if c.args != "" {
			usage += " " + c.args
		}
		fmt.Fprintf(s.out, "  %-28s %s\n", usage, s.style.label.Render(c.summary))
	}
	fmt.Fprintf(s.out, "  %-28s %s\n", "GPS,<lon>,<lat> | TEL,<pct> | SET,<on|off>,<rate>",
		s.style.label.Render("same as push"))
	return nil
}

// =============================================================================
// Helpers
// =============================================================================

// WriteFlags prints one line describing f, styled for w.
func WriteFlags(w io.Writer, f ring.Flags) {
	fmt.Fprintln(w, newStyles(w).flags(f))
}

func (st styles) flags(f ring.Flags) string {
	parts := []string{
		st.flag("overflow", f.Overflow),
		st.flag("underflow", f.Underflow),
		st.flag("data_loss_resize", f.DataLossResize),
	}
	return st.label.Render("flags") + " " + strings.Join(parts, " ")
}

func (st styles) flag(name string, set bool) string {
	text := fmt.Sprintf("%s=%t", name, set)
	if set {
		return st.flagSet.Render(text)
	}
	return st.flagOff.Render(text)
}

// optionalCount parses an optional positive count argument, default 1.
func optionalCount(args []string) (int, error) {
	switch len(args) {
	case 0:
		return 1, nil
	case 1:
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return 0, fmt.Errorf("count %q must be a positive integer: %w", args[0], errors.ErrInvalidArgs)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("too many arguments: %w", errors.ErrInvalidArgs)
	}
}
