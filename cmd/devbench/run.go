package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bebsworthy/devbench/internal/bench"
	"github.com/bebsworthy/devbench/internal/debug"
	"github.com/bebsworthy/devbench/internal/progress"
	"github.com/bebsworthy/devbench/internal/report"
	pkgconfig "github.com/bebsworthy/devbench/pkg/config"
)

type runOptions struct {
	flakes      []string
	shells      []string
	reloads     int
	timeout     time.Duration
	noCleanup   bool
	strict      bool
	format      string
	noColor     bool
	output      string
	metricsFile string
	quiet       bool
	verbose     bool
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Benchmark every shell of every flake",
		Long: `Benchmark every configured shell of every configured flake.

For each shell the cleanup command runs first and its outcome is ignored.
Then the bootstrap command is timed once, and timed again --reloads times
in a row as one cumulative "reload" sample. Durations are wall-clock seconds
rounded to the configured precision.

Failed invocations are counted and reported but do not stop the run unless
--strict is set.`,
		Example: `  # Benchmark with the discovered configuration
  devbench run

  # Only the static shells, three reloads each
  devbench run --shell '*-static-*' --reloads 3

  # Keep a history and export Prometheus gauges
  devbench run --output bench/history.json --metrics-file /var/lib/node_exporter/devbench.prom`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBenchmark(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVar(&opts.flakes, "flake", nil, "Flake to benchmark as owner/repo (repeatable, replaces configured flakes)")
	flags.StringArrayVar(&opts.shells, "shell", nil, "Only benchmark shells matching this glob (repeatable)")
	flags.IntVar(&opts.reloads, "reloads", 0, "Reload invocations per shell")
	flags.DurationVar(&opts.timeout, "timeout", 0, "Timeout for each invocation (0 means none)")
	flags.BoolVar(&opts.noCleanup, "no-cleanup", false, "Skip the cleanup command")
	flags.BoolVar(&opts.strict, "strict", false, "Stop at the first failed invocation")
	flags.StringVar(&opts.format, "format", string(report.FormatLiteral), "Output format (literal, json, table)")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored table output")
	flags.StringVar(&opts.output, "output", "", "Append the run to this JSON history file")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus gauges to this file")
	flags.BoolVar(&opts.quiet, "quiet", false, "Hide the progress line")
	flags.BoolVar(&opts.verbose, "verbose", false, "Pass the output of invoked commands through to stderr")

	return cmd
}

func runBenchmark(cmd *cobra.Command, opts *runOptions) error {
	format, err := report.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	cfg, source, err := loadConfig()
	if err != nil {
		return err
	}
	debug.Log("Using configuration from %s", source)

	if err := applyOverrides(cmd, cfg, opts); err != nil {
		return err
	}

	benchOpts := bench.Options{
		Strict: opts.strict,
		Clock:  clock,
	}
	if opts.verbose {
		benchOpts.Stdout = cmd.ErrOrStderr()
		benchOpts.Stderr = cmd.ErrOrStderr()
	}

	var indicator *progress.Indicator
	if !opts.quiet && !opts.verbose {
		indicator = progress.ForStderr()
	}
	if indicator != nil {
		benchOpts.Observer = indicator
	}

	runner, err := bench.NewRunner(cfg, newExecutor(), benchOpts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if indicator != nil {
		indicator.Start()
	}
	run, err := runner.BenchAll(ctx)
	if indicator != nil {
		indicator.Stop()
	}
	if err != nil {
		var invErr *bench.InvocationError
		switch {
		case errors.As(err, &invErr):
			return fmt.Errorf("strict mode: %w", err)
		case ctx.Err() != nil:
			return fmt.Errorf("benchmark interrupted: %w", err)
		default:
			return err
		}
	}

	if err := report.NewWriter(format, opts.noColor).WithPrecision(cfg.Precision).Write(cmd.OutOrStdout(), run); err != nil {
		return err
	}

	if opts.output != "" {
		if err := report.AppendHistory(opts.output, report.NewHistoryEntry(run, cfg)); err != nil {
			return err
		}
		debug.Log("Appended run to %s", opts.output)
	}

	if opts.metricsFile != "" {
		metrics := report.NewMetrics()
		metrics.Observe(run)
		if err := metrics.WriteTextfile(opts.metricsFile); err != nil {
			return err
		}
		debug.Log("Wrote metrics to %s", opts.metricsFile)
	}

	if failures := run.Failures(); failures > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %d invocations exited with an error\n", failures)
	}

	return nil
}

// applyOverrides applies command line flags on top of the loaded configuration
func applyOverrides(cmd *cobra.Command, cfg *pkgconfig.Config, opts *runOptions) error {
	flags := cmd.Flags()

	if len(opts.flakes) > 0 {
		cfg.Flakes = opts.flakes
	}

	if len(opts.shells) > 0 {
		shells, err := bench.FilterShells(cfg.Shells, opts.shells)
		if err != nil {
			return err
		}
		cfg.Shells = shells
	}

	if flags.Changed("reloads") {
		cfg.Reloads = opts.reloads
	}

	if flags.Changed("timeout") {
		if opts.timeout < 0 {
			return fmt.Errorf("invalid configuration: timeout must be non-negative")
		}
		cfg.Timeout = timeoutMillis(opts.timeout)
	}

	if opts.noCleanup {
		cfg.Cleanup = ""
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// timeoutMillis converts a non-negative flag value to whole milliseconds,
// rounding up so a sub-millisecond timeout still bounds each invocation.
func timeoutMillis(d time.Duration) int {
	return int((d + time.Millisecond - 1) / time.Millisecond)
}
