// Package bench times dev shell startup by invoking the bootstrap tool repeatedly.
//
// For every flake and every shell the runner clears the store cache, times one
// bootstrap invocation, then times a fixed number of reload invocations as a
// single cumulative sample. Measurement is strictly sequential.
package bench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/bebsworthy/devbench/internal/debug"
	"github.com/bebsworthy/devbench/internal/executor"
	"github.com/bebsworthy/devbench/pkg/config"
)

// Phase identifies which step of a shell benchmark is running
type Phase int

const (
	PhaseCleanup Phase = iota
	PhaseBootstrap
	PhaseReload
)

// String returns the phase name used in output and errors
func (p Phase) String() string {
	switch p {
	case PhaseCleanup:
		return "cleanup"
	case PhaseBootstrap:
		return "bootstrap"
	case PhaseReload:
		return "reload"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Observer is notified before each invocation
type Observer interface {
	Invocation(flake, shell string, phase Phase, iteration, total int)
}

// Options tune a Runner
type Options struct {
	// Strict aborts the run on the first failed bootstrap or reload invocation
	Strict bool
	// Stdout and Stderr receive the output of invoked commands when set
	Stdout io.Writer
	Stderr io.Writer
	// Observer receives progress notifications
	Observer Observer
	// Clock replaces time.Now for measurements
	Clock func() time.Time
}

// InvocationError reports a failed measured invocation in strict mode
type InvocationError struct {
	Flake     string
	Shell     string
	Phase     Phase
	Iteration int
	Command   []string
	Result    *executor.ExecResult
}

// Error implements the error interface
func (e *InvocationError) Error() string {
	reason := fmt.Sprintf("exit code %d", e.Result.ExitCode)
	if e.Result.Error != nil {
		reason = e.Result.Error.Error()
	}
	msg := fmt.Sprintf("%s of %s#%s failed (%s)", e.Phase, e.Flake, e.Shell, reason)
	if stderr := strings.TrimSpace(e.Result.Stderr); stderr != "" {
		msg += ": " + lastLine(stderr)
	}
	return msg
}

// Unwrap returns the executor error, if any
func (e *InvocationError) Unwrap() error {
	return e.Result.Error
}

// Runner measures every configured shell for every configured flake
type Runner struct {
	cfg      *config.Config
	executor executor.Executor
	opts     Options
	now      func() time.Time
}

// NewRunner creates a runner for a validated configuration
func NewRunner(cfg *config.Config, exec executor.Executor, opts Options) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if exec == nil {
		return nil, errors.New("executor is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	return &Runner{
		cfg:      cfg.Clone(),
		executor: exec,
		opts:     opts,
		now:      now,
	}, nil
}

// BenchAll benchmarks each configured flake in order
func (r *Runner) BenchAll(ctx context.Context) (*Run, error) {
	run := &Run{StartTime: r.now()}
	for _, flake := range r.cfg.Flakes {
		set, err := r.Bench(ctx, flake)
		if err != nil {
			return nil, err
		}
		run.Sets = append(run.Sets, set)
	}
	run.EndTime = r.now()
	return run, nil
}

// Bench benchmarks every configured shell against one flake
func (r *Runner) Bench(ctx context.Context, flake string) (*ResultSet, error) {
	debug.LogSection("Benchmark " + flake)

	set := &ResultSet{Flake: flake, Entries: make([]Entry, 0, len(r.cfg.Shells))}
	for _, shell := range r.cfg.Shells {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		r.cleanup(ctx, flake, shell)

		argv, err := r.cfg.BootstrapCommand(flake, shell)
		if err != nil {
			return nil, fmt.Errorf("bootstrap command for %s: %w", shell, err)
		}
		if len(argv) == 0 {
			return nil, fmt.Errorf("bootstrap command for %s is empty", shell)
		}

		bootstrap, bootFailures, err := r.measure(ctx, flake, shell, PhaseBootstrap, argv, 1)
		if err != nil {
			return nil, err
		}
		reload, reloadFailures, err := r.measure(ctx, flake, shell, PhaseReload, argv, r.cfg.Reloads)
		if err != nil {
			return nil, err
		}

		record := Record{
			Bootstrap: bootstrap,
			Reload:    reload,
			Failures:  bootFailures + reloadFailures,
		}
		debug.Log("Result %s#%s: bootstrap=%v reload=%v failures=%d",
			flake, shell, record.Bootstrap, record.Reload, record.Failures)
		set.Entries = append(set.Entries, Entry{Shell: shell, Record: record})
	}

	return set, nil
}

// cleanup runs the cache-clearing command; its outcome never affects the run
func (r *Runner) cleanup(ctx context.Context, flake, shell string) {
	argv, err := r.cfg.CleanupCommand()
	if err != nil {
		debug.LogError(err, "cleanup command")
		return
	}
	if len(argv) == 0 {
		return
	}

	r.notify(flake, shell, PhaseCleanup, 1, 1)
	result, err := r.executor.Execute(ctx, argv[0], argv[1:], r.execOptions())
	switch {
	case err != nil:
		debug.LogError(err, "cleanup")
	case result.Failed():
		debug.Log("Cleanup for %s exited with %d (ignored)", shell, result.ExitCode)
	}
}

// measure times n consecutive invocations of argv and returns the rounded cumulative seconds
func (r *Runner) measure(ctx context.Context, flake, shell string, phase Phase, argv []string, n int) (float64, int, error) {
	failures := 0
	start := r.now()

	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return 0, failures, err
		}

		r.notify(flake, shell, phase, i, n)
		result, err := r.executor.Execute(ctx, argv[0], argv[1:], r.execOptions())
		if err != nil {
			return 0, failures, fmt.Errorf("%s of %s: %w", phase, shell, err)
		}
		if err := ctx.Err(); err != nil {
			return 0, failures, err
		}

		if result.Failed() {
			failures++
			if r.opts.Strict {
				return 0, failures, &InvocationError{
					Flake:     flake,
					Shell:     shell,
					Phase:     phase,
					Iteration: i,
					Command:   argv,
					Result:    result,
				}
			}
		}
	}

	elapsed := r.now().Sub(start)
	debug.LogTiming(fmt.Sprintf("%s of %s (%d runs)", phase, shell, n), elapsed)
	return Round(elapsed.Seconds(), r.cfg.Precision), failures, nil
}

func (r *Runner) execOptions() executor.ExecOptions {
	return executor.ExecOptions{
		InheritEnv: true,
		Timeout:    time.Duration(r.cfg.Timeout) * time.Millisecond,
		Stdout:     r.opts.Stdout,
		Stderr:     r.opts.Stderr,
	}
}

func (r *Runner) notify(flake, shell string, phase Phase, iteration, total int) {
	if r.opts.Observer != nil {
		r.opts.Observer.Invocation(flake, shell, phase, iteration, total)
	}
}

// Round rounds seconds to the given number of decimal places
func Round(seconds float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(seconds*scale) / scale
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
