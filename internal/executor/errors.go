package executor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
)

// Sentinel errors matched by ExecError.Is
var (
	// ErrCommandNotFound indicates the command was not found in PATH
	ErrCommandNotFound = errors.New("command not found")

	// ErrPermissionDenied indicates the command cannot be executed due to permissions
	ErrPermissionDenied = errors.New("permission denied")

	// ErrTimeout indicates the command timed out
	ErrTimeout = errors.New("command timed out")

	// ErrInvalidWorkingDirectory indicates the working directory is invalid
	ErrInvalidWorkingDirectory = errors.New("invalid working directory")
)

// ErrorType represents the type of execution error
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeCommandNotFound
	ErrorTypePermissionDenied
	ErrorTypeTimeout
	ErrorTypeWorkingDirectory
	ErrorTypeExecution
)

// String returns a short name for the error type
func (t ErrorType) String() string {
	switch t {
	case ErrorTypeCommandNotFound:
		return "command-not-found"
	case ErrorTypePermissionDenied:
		return "permission-denied"
	case ErrorTypeTimeout:
		return "timeout"
	case ErrorTypeWorkingDirectory:
		return "working-directory"
	case ErrorTypeExecution:
		return "execution"
	default:
		return "unknown"
	}
}

// ExecError represents a classified execution error
type ExecError struct {
	Type    ErrorType
	Command string
	Args    []string
	Err     error
	Details string
}

// Error implements the error interface
func (e *ExecError) Error() string {
	cmd := e.Command
	if len(e.Args) > 0 {
		cmd = e.Command + " " + strings.Join(e.Args, " ")
	}

	switch e.Type {
	case ErrorTypeCommandNotFound:
		return fmt.Sprintf("command not found: %s", e.Command)
	case ErrorTypePermissionDenied:
		return fmt.Sprintf("permission denied: %s", cmd)
	case ErrorTypeTimeout:
		return fmt.Sprintf("command timed out: %s", cmd)
	case ErrorTypeWorkingDirectory:
		return fmt.Sprintf("working directory error: %s", e.Details)
	case ErrorTypeExecution:
		return fmt.Sprintf("execution error for %s: %v", cmd, e.Err)
	default:
		return fmt.Sprintf("unknown error for %s: %v", cmd, e.Err)
	}
}

// Unwrap returns the underlying error
func (e *ExecError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support for the sentinel errors
func (e *ExecError) Is(target error) bool {
	switch target {
	case ErrCommandNotFound:
		return e.Type == ErrorTypeCommandNotFound
	case ErrPermissionDenied:
		return e.Type == ErrorTypePermissionDenied
	case ErrTimeout:
		return e.Type == ErrorTypeTimeout
	case ErrInvalidWorkingDirectory:
		return e.Type == ErrorTypeWorkingDirectory
	}
	return false
}

// ClassifyError analyzes an error and returns a typed ExecError
func ClassifyError(err error, command string, args []string) *ExecError {
	if err == nil {
		return nil
	}

	var already *ExecError
	if errors.As(err, &already) {
		return already
	}

	return &ExecError{
		Type:    classify(err),
		Command: command,
		Args:    args,
		Err:     err,
	}
}

func classify(err error) ErrorType {
	var exitErr *exec.ExitError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorTypeTimeout
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return ErrorTypeCommandNotFound
	case errors.Is(err, fs.ErrPermission):
		return ErrorTypePermissionDenied
	case errors.As(err, &exitErr):
		return ErrorTypeExecution
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "permission denied"):
		return ErrorTypePermissionDenied
	case strings.Contains(msg, "not found"):
		return ErrorTypeCommandNotFound
	case strings.Contains(msg, "deadline exceeded"), strings.Contains(msg, "timeout"):
		return ErrorTypeTimeout
	case strings.Contains(msg, "chdir"), strings.Contains(msg, "working directory"):
		return ErrorTypeWorkingDirectory
	default:
		return ErrorTypeExecution
	}
}
