// Package debug writes the --debug trace of external commands and timings.
package debug

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// maxStderr bounds how much of a failing command's stderr is traced
const maxStderr = 200

// Logger is a switchable trace sink. Each line is prefixed with the time
// elapsed since the logger was enabled.
type Logger struct {
	mu      sync.Mutex
	enabled bool
	out     io.Writer
	since   time.Time
}

// New returns a disabled logger writing to out
func New(out io.Writer) *Logger {
	return &Logger{out: out}
}

var std = New(os.Stderr)

// Enable turns tracing on and resets the elapsed-time origin
func (l *Logger) Enable() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = true
	l.since = time.Now()
}

func (l *Logger) Disable() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = false
}

func (l *Logger) Enabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabled
}

func (l *Logger) SetOutput(out io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = out
}

// Printf writes one trace line. A trailing newline in format is not doubled.
func (l *Logger) Printf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enabled {
		return
	}

	line := strings.TrimSuffix(fmt.Sprintf(format, args...), "\n")
	_, _ = fmt.Fprintf(l.out, "[DEBUG %s] %s\n", formatDuration(time.Since(l.since)), line)
}

func (l *Logger) Section(title string) {
	l.Printf("=== %s ===", title)
}

// Command traces an external command before it starts
func (l *Logger) Command(name string, args []string, dir string) {
	if !l.Enabled() {
		return
	}
	l.Printf("Command: %s", name)
	if len(args) > 0 {
		l.Printf("Arguments: %v", args)
	}
	if dir != "" {
		l.Printf("Working Directory: %s", dir)
	}
}

// Exit traces how an external command finished. Stderr is only traced for
// non-zero exits, trimmed and cut to maxStderr bytes.
func (l *Logger) Exit(name string, exitCode int, timedOut bool, stderr string) {
	if !l.Enabled() {
		return
	}
	status := fmt.Sprintf("exit %d", exitCode)
	if timedOut {
		status += ", timed out"
	}
	l.Printf("Exit: %s (%s)", name, status)
	if exitCode != 0 && stderr != "" {
		l.Printf("Stderr: %q", truncate(strings.TrimSpace(stderr), maxStderr))
	}
}

func (l *Logger) Timing(operation string, d time.Duration) {
	l.Printf("Timing: %s took %s", operation, formatDuration(d))
}

func (l *Logger) Error(err error, during string) {
	l.Printf("Error in %s: %v", during, err)
}

// Enable turns on the process-wide trace (the --debug flag)
func Enable() { std.Enable() }

// Disable turns the process-wide trace off
func Disable() { std.Disable() }

// IsEnabled reports whether the process-wide trace is on
func IsEnabled() bool { return std.Enabled() }

// SetWriter redirects the process-wide trace, stderr by default
func SetWriter(w io.Writer) { std.SetOutput(w) }

// Log writes a formatted line to the process-wide trace
func Log(format string, args ...interface{}) { std.Printf(format, args...) }

// LogSection marks the start of a phase
func LogSection(title string) { std.Section(title) }

// LogCommand traces an external command before it starts
func LogCommand(command string, args []string, workingDir string) {
	std.Command(command, args, workingDir)
}

// LogExit traces how an external command finished
func LogExit(command string, exitCode int, timedOut bool, stderr string) {
	std.Exit(command, exitCode, timedOut, stderr)
}

// LogTiming traces how long an operation took
func LogTiming(operation string, duration time.Duration) { std.Timing(operation, duration) }

// LogError traces an error that is handled rather than returned
func LogError(err error, context string) { std.Error(err, context) }

// formatDuration uses the coarsest unit that keeps small values readable
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
