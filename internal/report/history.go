package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/bebsworthy/devbench/internal/bench"
	"github.com/bebsworthy/devbench/pkg/config"
)

// FlakeResults pairs a flake with its result set
type FlakeResults struct {
	Flake   string           `json:"flake"`
	Results *bench.ResultSet `json:"results"`
}

// HistoryEntry is one recorded run
type HistoryEntry struct {
	ID        string         `json:"id"`
	StartTime time.Time      `json:"start_time"`
	EndTime   time.Time      `json:"end_time"`
	Duration  time.Duration  `json:"duration"`
	Reloads   int            `json:"reloads"`
	Precision int            `json:"precision"`
	Bootstrap string         `json:"bootstrap"`
	Cleanup   string         `json:"cleanup,omitempty"`
	Flakes    []FlakeResults `json:"flakes"`
}

// NewHistoryEntry captures a finished run together with the settings that produced it
func NewHistoryEntry(run *bench.Run, cfg *config.Config) HistoryEntry {
	entry := HistoryEntry{
		ID:        run.StartTime.UTC().Format("20060102T150405Z"),
		StartTime: run.StartTime,
		EndTime:   run.EndTime,
		Duration:  run.Duration(),
		Reloads:   cfg.Reloads,
		Precision: cfg.Precision,
		Bootstrap: cfg.Bootstrap,
		Cleanup:   cfg.Cleanup,
		Flakes:    make([]FlakeResults, 0, len(run.Sets)),
	}
	for _, set := range run.Sets {
		entry.Flakes = append(entry.Flakes, FlakeResults{Flake: set.Flake, Results: set})
	}
	return entry
}

// LoadHistory reads recorded runs; a missing file yields no entries
func LoadHistory(filename string) ([]HistoryEntry, error) {
	data, err := os.ReadFile(filename) // #nosec G304 - filename provided by the user
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	var entries []HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse history %s: %w", filename, err)
	}
	for i := range entries {
		for _, fr := range entries[i].Flakes {
			if fr.Results != nil {
				fr.Results.Flake = fr.Flake
			}
		}
	}
	return entries, nil
}

// AppendHistory adds an entry to the history file, creating it when needed
func AppendHistory(filename string, entry HistoryEntry) error {
	entries, err := LoadHistory(filename)
	if err != nil {
		return err
	}
	entries = append(entries, entry)

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	tmp := filename + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := os.Rename(tmp, filename); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}
