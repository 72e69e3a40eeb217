package executor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"testing"
)

func TestExecError_Error(t *testing.T) {
	tests := []struct {
		name     string
		execErr  *ExecError
		expected string
	}{
		{
			name:     "command not found",
			execErr:  &ExecError{Type: ErrorTypeCommandNotFound, Command: "nix", Args: []string{"develop"}},
			expected: "command not found: nix",
		},
		{
			name:     "permission denied with args",
			execErr:  &ExecError{Type: ErrorTypePermissionDenied, Command: "nix-collect-garbage", Args: []string{"-d"}},
			expected: "permission denied: nix-collect-garbage -d",
		},
		{
			name:     "timeout",
			execErr:  &ExecError{Type: ErrorTypeTimeout, Command: "sleep", Args: []string{"100"}},
			expected: "command timed out: sleep 100",
		},
		{
			name:     "working directory error",
			execErr:  &ExecError{Type: ErrorTypeWorkingDirectory, Details: "no such directory"},
			expected: "working directory error: no such directory",
		},
		{
			name:     "execution error",
			execErr:  &ExecError{Type: ErrorTypeExecution, Command: "false", Err: errors.New("exit status 1")},
			expected: "execution error for false: exit status 1",
		},
		{
			name:     "unknown error",
			execErr:  &ExecError{Type: ErrorTypeUnknown, Command: "x", Err: errors.New("boom")},
			expected: "unknown error for x: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.execErr.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestExecError_Is(t *testing.T) {
	tests := []struct {
		errType ErrorType
		target  error
	}{
		{ErrorTypeCommandNotFound, ErrCommandNotFound},
		{ErrorTypePermissionDenied, ErrPermissionDenied},
		{ErrorTypeTimeout, ErrTimeout},
		{ErrorTypeWorkingDirectory, ErrInvalidWorkingDirectory},
	}

	for _, tt := range tests {
		t.Run(tt.errType.String(), func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", &ExecError{Type: tt.errType})
			if !errors.Is(err, tt.target) {
				t.Errorf("expected %v to match %v", tt.errType, tt.target)
			}
			if errors.Is(&ExecError{Type: ErrorTypeExecution}, tt.target) {
				t.Errorf("execution error should not match %v", tt.target)
			}
		})
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorType
	}{
		{"deadline", context.DeadlineExceeded, ErrorTypeTimeout},
		{"lookpath", &exec.Error{Name: "nix", Err: exec.ErrNotFound}, ErrorTypeCommandNotFound},
		{"missing binary", &fs.PathError{Op: "fork/exec", Path: "/nope", Err: fs.ErrNotExist}, ErrorTypeCommandNotFound},
		{"permission", &fs.PathError{Op: "fork/exec", Path: "/bin/x", Err: fs.ErrPermission}, ErrorTypePermissionDenied},
		{"message permission", errors.New("Permission denied"), ErrorTypePermissionDenied},
		{"message timeout", errors.New("i/o timeout"), ErrorTypeTimeout},
		{"message chdir", errors.New("chdir /x: bad"), ErrorTypeWorkingDirectory},
		{"other", errors.New("something odd"), ErrorTypeExecution},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			execErr := ClassifyError(tt.err, "cmd", nil)
			if execErr.Type != tt.expected {
				t.Errorf("ClassifyError(%v) = %v, want %v", tt.err, execErr.Type, tt.expected)
			}
			if !errors.Is(execErr, tt.err) && execErr.Err != tt.err {
				t.Errorf("ClassifyError should wrap the original error")
			}
		})
	}

	if ClassifyError(nil, "cmd", nil) != nil {
		t.Error("ClassifyError(nil) should return nil")
	}

	original := &ExecError{Type: ErrorTypeTimeout}
	if got := ClassifyError(fmt.Errorf("wrap: %w", original), "cmd", nil); got != original {
		t.Error("ClassifyError should return an existing ExecError unchanged")
	}
}
