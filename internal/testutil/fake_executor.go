package testutil

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/bebsworthy/devbench/internal/executor"
)

// FakeClock is a manually advanced clock.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock creates a clock starting at a fixed instant.
func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Call records one invocation seen by a FakeExecutor.
type Call struct {
	Command string
	Args    []string
	Options executor.ExecOptions
}

// Line returns the call as a single space-joined string.
func (c Call) Line() string {
	if len(c.Args) == 0 {
		return c.Command
	}
	return c.Command + " " + strings.Join(c.Args, " ")
}

// FakeExecutor records calls and returns scripted results.
// Each call advances Clock by the duration Cost returns for it.
type FakeExecutor struct {
	mu    sync.Mutex
	calls []Call

	// Clock, when set, is advanced by Cost for every call
	Clock *FakeClock
	// Cost returns the simulated duration of a call; nil means zero
	Cost func(call Call) time.Duration
	// Result returns the scripted result of a call; nil means a clean exit
	Result func(call Call) *executor.ExecResult
	// Err, when set, is returned from every call
	Err error
	// OnCall runs after a call is recorded
	OnCall func(call Call)
}

var _ executor.Executor = (*FakeExecutor)(nil)

// NewFakeExecutor creates a fake executor driving the given clock.
func NewFakeExecutor(clock *FakeClock) *FakeExecutor {
	return &FakeExecutor{Clock: clock}
}

// Execute implements executor.Executor.
func (f *FakeExecutor) Execute(_ context.Context, command string, args []string, options executor.ExecOptions) (*executor.ExecResult, error) {
	call := Call{Command: command, Args: append([]string(nil), args...), Options: options}

	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()

	if f.OnCall != nil {
		f.OnCall(call)
	}
	if f.Err != nil {
		return nil, f.Err
	}

	var cost time.Duration
	if f.Cost != nil {
		cost = f.Cost(call)
	}
	if f.Clock != nil {
		f.Clock.Advance(cost)
	}

	result := &executor.ExecResult{}
	if f.Result != nil {
		if r := f.Result(call); r != nil {
			result = r
		}
	}
	result.Duration = cost
	return result, nil
}

// Calls returns a copy of the recorded calls.
func (f *FakeExecutor) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Lines returns the recorded calls as command lines.
func (f *FakeExecutor) Lines() []string {
	calls := f.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.Line()
	}
	return lines
}
