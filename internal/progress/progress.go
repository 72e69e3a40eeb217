// Package progress shows a one-line status while benchmarks run.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/bebsworthy/devbench/internal/bench"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Indicator redraws a spinner line with the current invocation and elapsed time.
// It implements bench.Observer.
type Indicator struct {
	mu          sync.Mutex
	writer      io.Writer
	width       func() int
	message     string
	startTime   time.Time
	running     bool
	stopChan    chan struct{}
	doneChan    chan struct{}
	spinnerIdx  int
	lastLineLen int
}

var _ bench.Observer = (*Indicator)(nil)

// New creates an indicator writing to w. width reports the terminal width; nil means unlimited.
func New(w io.Writer, width func() int) *Indicator {
	return &Indicator{writer: w, width: width}
}

// ForStderr returns an indicator on stderr, or nil when stderr is not a terminal
func ForStderr() *Indicator {
	fd := int(os.Stderr.Fd())
	if !term.IsTerminal(fd) {
		return nil
	}
	return New(os.Stderr, func() int {
		w, _, err := term.GetSize(fd)
		if err != nil {
			return 0
		}
		return w
	})
}

// Start begins redrawing the line
func (p *Indicator) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.startTime = time.Now()
	p.spinnerIdx = 0
	p.lastLineLen = 0
	p.stopChan = make(chan struct{})
	p.doneChan = make(chan struct{})
	p.mu.Unlock()

	go p.displayLoop()
}

// Stop stops redrawing and clears the line
func (p *Indicator) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	close(p.stopChan)
	<-p.doneChan

	p.mu.Lock()
	p.clearLineLocked()
	p.mu.Unlock()
}

// Invocation implements bench.Observer
func (p *Indicator) Invocation(flake, shell string, phase bench.Phase, iteration, total int) {
	msg := fmt.Sprintf("[%s] %s: %s", flake, shell, phase)
	if total > 1 {
		msg += fmt.Sprintf(" %d/%d", iteration, total)
	}

	p.mu.Lock()
	p.message = msg
	p.mu.Unlock()
}

func (p *Indicator) displayLoop() {
	defer close(p.doneChan)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopChan:
			return
		case <-ticker.C:
			p.render()
		}
	}
}

func (p *Indicator) render() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}

	spinner := spinnerFrames[p.spinnerIdx]
	p.spinnerIdx = (p.spinnerIdx + 1) % len(spinnerFrames)

	line := p.line(spinner, time.Since(p.startTime))
	if len(line) < p.lastLineLen {
		p.clearLineLocked()
	}
	p.lastLineLen = len(line)

	fmt.Fprint(p.writer, "\r"+line) //nolint:errcheck // Display error is non-critical
}

// line builds the status text, truncated to the terminal width (caller holds the lock)
func (p *Indicator) line(spinner string, elapsed time.Duration) string {
	line := fmt.Sprintf("%s %s (%s)", spinner, p.message, formatElapsed(elapsed))
	if p.width != nil {
		if w := p.width(); w > 1 {
			runes := []rune(line)
			if len(runes) >= w {
				line = string(runes[:w-1])
			}
		}
	}
	return line
}

func (p *Indicator) clearLineLocked() {
	if p.lastLineLen == 0 {
		return
	}
	fmt.Fprintf(p.writer, "\r%s\r", strings.Repeat(" ", p.lastLineLen)) //nolint:errcheck // Display error is non-critical
	p.lastLineLen = 0
}

func formatElapsed(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
