// sensorring classifies sensor record lines into a fixed-capacity FIFO store.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/xtxerr/sensorring/internal/config"
	"github.com/xtxerr/sensorring/internal/errors"
	"github.com/xtxerr/sensorring/internal/ingestion"
	"github.com/xtxerr/sensorring/internal/logging"
	"github.com/xtxerr/sensorring/internal/shell"
)

// Version is set at build time via ldflags
var Version = "dev"

// exitFlagsSet is the exit status of a run that ends with sticky flags set.
const exitFlagsSet = 2

type options struct {
	configPath string
	capacity   int
	overwrite  bool
	logLevel   string
	logJSON    bool
}

// exitError carries a process exit status through cobra.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		fmt.Fprintf(os.Stderr, "sensorring: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "sensorring",
		Short: "Fixed-capacity FIFO store for GPS, telemetry and settings records",
		Long: `sensorring classifies fixed-format sensor lines (GPS, TEL, SET) and keeps
them in a bounded FIFO store with sticky overflow, underflow and
data-loss-on-resize flags.

Without a subcommand it starts the interactive shell when stdin is a
terminal and ingests stdin otherwise.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if term.IsTerminal(int(os.Stdin.Fd())) {
				return runShell(cmd, opts)
			}
			return runIngest(cmd, opts, nil)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "sensorring.yaml", "config file path")
	flags.IntVar(&opts.capacity, "capacity", 0, "store capacity, 1-100 (overrides config)")
	flags.BoolVar(&opts.overwrite, "overwrite", false, "evict the oldest record when the store is full (overrides config)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	flags.BoolVar(&opts.logJSON, "log-json", false, "log as JSON (overrides config)")

	root.AddCommand(
		&cobra.Command{
			Use:   "shell",
			Short: "Start the interactive shell",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runShell(cmd, opts)
			},
		},
		&cobra.Command{
			Use:   "ingest [file...]",
			Short: "Ingest record lines from files or stdin, then drain the store",
			Long: `ingest feeds every line of the given files (or stdin, or "-") through the
store, prints the retained records oldest first on stdout and the
end-of-run diagnostics on stderr. It exits with status 2 when any
sticky flag is set.`,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runIngest(cmd, opts, args)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "sensorring %s\n", Version)
			},
		},
	)

	return root
}

// setup loads the configuration, applies flag overrides, initializes
// logging and creates the service.
func setup(cmd *cobra.Command, opts *options) (*ingestion.Service, error) {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	logging.InitWriter(cmd.ErrOrStderr(), level, cfg.JSONLogs())

	svc, err := ingestion.New(cfg)
	if err != nil {
		return nil, err
	}
	logging.Debug("configuration loaded", "capacity", cfg.Buffer.Capacity,
		"overwrite", cfg.Buffer.Overwrite, "pressure", cfg.Pressure.Enabled)
	return svc, nil
}

func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	flags := cmd.Flags()

	cfg, err := config.Load(opts.configPath)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist) && !flags.Changed("config"):
		cfg = config.DefaultConfig()
	default:
		return nil, err
	}

	if flags.Changed("capacity") {
		cfg.Buffer.Capacity = opts.capacity
	}
	if flags.Changed("overwrite") {
		cfg.Buffer.Overwrite = opts.overwrite
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}
	if flags.Changed("log-json") && opts.logJSON {
		cfg.Logging.Format = "json"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runShell(cmd *cobra.Command, opts *options) error {
	svc, err := setup(cmd, opts)
	if err != nil {
		return err
	}

	sh := shell.New(svc, cmd.OutOrStdout())
	sh.Run()

	shell.WriteFlags(cmd.ErrOrStderr(), svc.Flags())
	return nil
}
