// Package report renders benchmark runs for people and tools.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/bebsworthy/devbench/internal/bench"
)

// Format selects how a run is rendered
type Format string

const (
	// FormatLiteral prints the ordered list of mappings on one line
	FormatLiteral Format = "literal"
	// FormatJSON prints the same structure as JSON
	FormatJSON Format = "json"
	// FormatTable prints an aligned, optionally coloured summary per flake
	FormatTable Format = "table"
)

// Formats lists every supported format
var Formats = []Format{FormatLiteral, FormatJSON, FormatTable}

// ParseFormat validates a format name
func ParseFormat(name string) (Format, error) {
	for _, f := range Formats {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (want one of %v)", name, Formats)
}

// Writer renders runs in one format
type Writer struct {
	format    Format
	noColor   bool
	precision int
}

// NewWriter creates a writer for the given format. noColor only affects FormatTable.
func NewWriter(format Format, noColor bool) *Writer {
	return &Writer{format: format, noColor: noColor, precision: 2}
}

// WithPrecision sets the decimal places FormatTable prints. The other formats
// print samples exactly as rounded by the runner.
func (rw *Writer) WithPrecision(places int) *Writer {
	rw.precision = places
	return rw
}

// Write renders the run to w
func (rw *Writer) Write(w io.Writer, run *bench.Run) error {
	switch rw.format {
	case FormatLiteral:
		_, err := fmt.Fprintln(w, Literal(run.Sets))
		return err
	case FormatJSON:
		data, err := json.Marshal(run.Sets)
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case FormatTable:
		return writeTable(w, run, rw.noColor, rw.precision)
	default:
		return fmt.Errorf("unknown format %q", rw.format)
	}
}

// Literal renders result sets as a list of mappings:
//
//	[{'ghc8107': {'bootstrap': 12.34, 'reload': 5.6}}, {...}]
func Literal(sets []*bench.ResultSet) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, set := range sets {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('{')
		for j, e := range set.Entries {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s: {'bootstrap': %s, 'reload': %s}",
				literalString(e.Shell), literalFloat(e.Record.Bootstrap), literalFloat(e.Record.Reload))
		}
		b.WriteByte('}')
	}
	b.WriteByte(']')
	return b.String()
}

// literalFloat prints the shortest round-trip form, always with a decimal point or exponent
func literalFloat(f float64) string {
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}

func literalString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\t", `\t`)
	return "'" + r.Replace(s) + "'"
}

func writeTable(w io.Writer, run *bench.Run, noColor bool, precision int) error {
	title := color.New(color.Bold)
	value := color.New(color.FgGreen)
	failed := color.New(color.FgRed)
	dim := color.New(color.FgHiBlack)
	if noColor {
		for _, c := range []*color.Color{title, value, failed, dim} {
			c.DisableColor()
		}
	}

	for i, set := range run.Sets {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := title.Fprintln(w, set.Flake); err != nil {
			return err
		}

		width := 0
		for _, e := range set.Entries {
			if len(e.Shell) > width {
				width = len(e.Shell)
			}
		}

		// Samples under 100000 s stay aligned at any precision
		sample := func(seconds float64) string {
			return value.Sprintf("%*.*f s", precision+6, precision, seconds)
		}

		for _, e := range set.Entries {
			line := fmt.Sprintf("  %-*s  %s %s  %s %s",
				width, e.Shell,
				dim.Sprint("bootstrap"), sample(e.Record.Bootstrap),
				dim.Sprint("reload"), sample(e.Record.Reload))
			if e.Record.Failures > 0 {
				line += "  " + failed.Sprintf("(%d failed)", e.Record.Failures)
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}

	_, err := dim.Fprintf(w, "\n%d flakes, %d failed invocations, %s total\n",
		len(run.Sets), run.Failures(), run.Duration().Round(time.Second))
	return err
}
