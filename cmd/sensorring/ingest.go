package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/xtxerr/sensorring/internal/errors"
	"github.com/xtxerr/sensorring/internal/ingestion"
	"github.com/xtxerr/sensorring/internal/logging"
	"github.com/xtxerr/sensorring/internal/record"
	"github.com/xtxerr/sensorring/internal/shell"
)

// lineBuffer bounds how far the reader may run ahead of the consumer.
const lineBuffer = 64

func runIngest(cmd *cobra.Command, opts *options, paths []string) error {
	svc, err := setup(cmd, opts)
	if err != nil {
		return err
	}

	result, err := ingest(cmd.Context(), svc, cmd.InOrStdin(), paths)
	if err != nil && !errors.Is(err, context.Canceled) {
		logging.Error("ingest failed", "lines", result.Lines, "error", err)
		return err
	}
	if errors.Is(err, context.Canceled) {
		logging.Warn("ingest interrupted, draining what was stored")
	} else {
		logging.Info("ingest finished", "lines", result.Lines, "stored", result.Stored,
			"skipped", result.Skipped, "rejected", result.Rejected)
	}

	return report(cmd.OutOrStdout(), cmd.ErrOrStderr(), svc, result)
}

// ingest reads paths (stdin when empty or "-") on one goroutine and feeds
// the lines to svc on the calling one. Only the consumer touches the store.
//
// When ctx is cancelled ingest returns without waiting for the reader,
// which may be blocked on an idle input that will never be closed.
func ingest(ctx context.Context, svc *ingestion.Service, stdin io.Reader, paths []string) (ingestion.IngestResult, error) {
	if len(paths) == 0 {
		paths = []string{"-"}
	}

	g, gctx := errgroup.WithContext(ctx)
	lines := make(chan ingestion.Line, lineBuffer)

	g.Go(func() error {
		defer close(lines)
		for _, path := range paths {
			if err := readLines(gctx, path, stdin, lines); err != nil {
				return err
			}
		}
		return nil
	})

	result, err := svc.Feed(gctx, lines)
	if ctx.Err() != nil {
		return result, ctx.Err()
	}
	// Feed stops early only when the reader failed.
	if werr := g.Wait(); werr != nil {
		return result, werr
	}
	return result, err
}

func readLines(ctx context.Context, path string, stdin io.Reader, out chan<- ingestion.Line) error {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrap(err, "open input")
		}
		defer f.Close()
		r = f
	}

	err := ingestion.ScanLines(r, func(line ingestion.Line) error {
		select {
		case out <- line:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		return errors.Wrapf(err, "read %s", path)
	}
}

// report drains the store to stdout and writes the end-of-run diagnostics
// to stderr. Sticky flags turn into a non-zero exit status.
func report(stdout, stderr io.Writer, svc *ingestion.Service, result ingestion.IngestResult) error {
	for _, rec := range svc.Drain() {
		fmt.Fprintln(stdout, record.Format(rec))
	}

	st := svc.Status()
	fmt.Fprintf(stderr, "lines=%d stored=%d skipped=%d rejected=%d evicted=%d discarded=%d\n",
		result.Lines, result.Stored, result.Skipped, result.Rejected, st.Stats.Evicted, st.Stats.Discarded)
	shell.WriteFlags(stderr, st.Flags)

	if st.Flags.Any() {
		return &exitError{code: exitFlagsSet, msg: "sticky flags set"}
	}
	return nil
}
