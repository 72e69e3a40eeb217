// Package executor runs external commands and reports how they finished.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bebsworthy/devbench/internal/debug"
)

// waitDelay bounds how long Wait blocks on inherited pipes after the process is killed
const waitDelay = 5 * time.Second

// Executor runs a single external command
type Executor interface {
	Execute(ctx context.Context, command string, args []string, options ExecOptions) (*ExecResult, error)
}

// ExecOptions defines options for command execution
type ExecOptions struct {
	// Working directory for the command
	WorkingDir string
	// Environment variables (in KEY=VALUE format)
	Environment []string
	// Timeout for command execution; zero falls back to the executor default
	Timeout time.Duration
	// Whether to inherit parent process environment
	InheritEnv bool
	// Optional writers that receive output as it is produced
	Stdout io.Writer
	Stderr io.Writer
}

// ExecResult contains the result of command execution
type ExecResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	TimedOut bool
	// Wall-clock time from start to exit
	Duration time.Duration
	// Error if the command failed to start or could not be waited on
	Error error
}

// Failed reports whether the command did not run to a zero exit status
func (r *ExecResult) Failed() bool {
	return r == nil || r.Error != nil || r.TimedOut || r.ExitCode != 0
}

// CommandExecutor executes external commands
type CommandExecutor struct {
	// Default timeout for commands; zero means commands may run forever
	defaultTimeout time.Duration
}

var _ Executor = (*CommandExecutor)(nil)

// NewCommandExecutor creates a new command executor.
// A non-positive defaultTimeout disables the timeout.
func NewCommandExecutor(defaultTimeout time.Duration) *CommandExecutor {
	if defaultTimeout < 0 {
		defaultTimeout = 0
	}
	return &CommandExecutor{
		defaultTimeout: defaultTimeout,
	}
}

// Execute runs a command with the given options.
// Only invalid input is returned as an error; start and exit failures are reported in the result.
func (e *CommandExecutor) Execute(ctx context.Context, command string, args []string, options ExecOptions) (*ExecResult, error) {
	if command == "" {
		return nil, fmt.Errorf("command cannot be empty")
	}

	timeout := options.Timeout
	if timeout <= 0 {
		timeout = e.defaultTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, command, args...)
	cmd.WaitDelay = waitDelay

	if options.WorkingDir != "" {
		absPath, err := resolveWorkingDir(options.WorkingDir)
		if err != nil {
			return nil, err
		}
		cmd.Dir = absPath
	}

	if env := e.prepareEnvironment(options); len(env) > 0 {
		cmd.Env = env
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = teeWriter(options.Stdout, &stdoutBuf)
	cmd.Stderr = teeWriter(options.Stderr, &stderrBuf)

	debug.LogCommand(command, args, cmd.Dir)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return &ExecResult{
			ExitCode: -1,
			Duration: time.Since(start),
			Error:    ClassifyError(err, command, args),
		}, nil
	}

	waitErr := cmd.Wait()
	result := &ExecResult{
		Stdout:   stdoutBuf.String(),
		Stderr:   stderrBuf.String(),
		Duration: time.Since(start),
		TimedOut: errors.Is(ctx.Err(), context.DeadlineExceeded),
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
			result.Error = waitErr
		}
	}
	if result.TimedOut {
		result.Error = ClassifyError(context.DeadlineExceeded, command, args)
		if result.ExitCode == 0 {
			result.ExitCode = -1
		}
	}

	debug.LogExit(command, result.ExitCode, result.TimedOut, result.Stderr)
	return result, nil
}

func resolveWorkingDir(dir string) (string, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return "", &ExecError{Type: ErrorTypeWorkingDirectory, Err: err, Details: err.Error()}
	}
	info, err := os.Stat(absPath)
	if err != nil {
		details := err.Error()
		if os.IsNotExist(err) {
			details = absPath + " does not exist"
		}
		return "", &ExecError{Type: ErrorTypeWorkingDirectory, Err: err, Details: details}
	}
	if !info.IsDir() {
		return "", &ExecError{Type: ErrorTypeWorkingDirectory, Details: absPath + " is not a directory"}
	}
	return absPath, nil
}

func teeWriter(stream io.Writer, buf *bytes.Buffer) io.Writer {
	if stream == nil {
		return buf
	}
	return io.MultiWriter(stream, buf)
}

// prepareEnvironment merges the parent environment (when inherited) with the extra variables.
// Later entries override earlier ones; the result is sorted for reproducible invocations.
func (e *CommandExecutor) prepareEnvironment(options ExecOptions) []string {
	var base []string
	if options.InheritEnv {
		base = os.Environ()
	}

	envMap := make(map[string]string, len(base)+len(options.Environment))
	for _, list := range [][]string{base, options.Environment} {
		for _, kv := range list {
			if key, value, ok := strings.Cut(kv, "="); ok && key != "" {
				envMap[key] = value
			}
		}
	}

	env := make([]string, 0, len(envMap))
	for k, v := range envMap {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)
	return env
}
