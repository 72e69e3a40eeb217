package bench

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Record holds the two timing samples taken for one shell
type Record struct {
	// Bootstrap is the elapsed seconds of a single cold invocation
	Bootstrap float64 `json:"bootstrap"`
	// Reload is the cumulative elapsed seconds of all reload invocations
	Reload float64 `json:"reload"`
	// Failures counts measured invocations that did not exit cleanly
	Failures int `json:"failures,omitempty"`
}

// Entry pairs a shell with its record
type Entry struct {
	Shell  string `json:"shell"`
	Record Record `json:"record"`
}

// ResultSet maps shells to records for one flake, in benchmark order
type ResultSet struct {
	Flake   string
	Entries []Entry
}

// Shells returns the shell names in order
func (s *ResultSet) Shells() []string {
	shells := make([]string, len(s.Entries))
	for i, e := range s.Entries {
		shells[i] = e.Shell
	}
	return shells
}

// Get returns the record for a shell
func (s *ResultSet) Get(shell string) (Record, bool) {
	for _, e := range s.Entries {
		if e.Shell == shell {
			return e.Record, true
		}
	}
	return Record{}, false
}

// Failures returns the total number of failed invocations in the set
func (s *ResultSet) Failures() int {
	total := 0
	for _, e := range s.Entries {
		total += e.Record.Failures
	}
	return total
}

// MarshalJSON encodes the set as an object keyed by shell, preserving order
func (s *ResultSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range s.Entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Shell)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(e.Record)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object keyed by shell, preserving key order
func (s *ResultSet) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("result set: expected object, got %v", tok)
	}

	s.Entries = s.Entries[:0]
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		shell, ok := tok.(string)
		if !ok {
			return fmt.Errorf("result set: expected shell name, got %v", tok)
		}
		var record Record
		if err := dec.Decode(&record); err != nil {
			return fmt.Errorf("result set: shell %q: %w", shell, err)
		}
		s.Entries = append(s.Entries, Entry{Shell: shell, Record: record})
	}

	_, err = dec.Token()
	return err
}

// Run is the outcome of benchmarking every configured flake
type Run struct {
	StartTime time.Time    `json:"start_time"`
	EndTime   time.Time    `json:"end_time"`
	Sets      []*ResultSet `json:"-"`
}

// Duration returns how long the run took
func (r *Run) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// Failures returns the total number of failed invocations across all sets
func (r *Run) Failures() int {
	total := 0
	for _, s := range r.Sets {
		total += s.Failures()
	}
	return total
}
