// Package config provides the core configuration types and validation logic for devbench.
package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"mvdan.cc/sh/v3/shell"
)

// Template variables available in command strings
const (
	FlakeVar = "flake"
	ShellVar = "shell"
)

// MaxPrecision is the largest number of decimal places a sample may be rounded to
const MaxPrecision = 6

// Config represents the main configuration structure for devbench
type Config struct {
	Version   string   `json:"version" toml:"version"`
	Shells    []string `json:"shells" toml:"shells"`
	Flakes    []string `json:"flakes" toml:"flakes"`
	Reloads   int      `json:"reloads" toml:"reloads"`
	Precision int      `json:"precision" toml:"precision"`
	Timeout   int      `json:"timeout,omitempty" toml:"timeout,omitempty"` // milliseconds, 0 disables
	Cleanup   string   `json:"cleanup" toml:"cleanup"`
	Bootstrap string   `json:"bootstrap" toml:"bootstrap"`
}

// Validate performs validation on the Config
func (c *Config) Validate() error {
	if c.Version == "" {
		return fmt.Errorf("version is required")
	}

	if len(c.Shells) == 0 {
		return fmt.Errorf("at least one shell is required")
	}

	seen := make(map[string]int, len(c.Shells))
	for i, s := range c.Shells {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("shells[%d]: shell name is required", i)
		}
		if first, dup := seen[s]; dup {
			return fmt.Errorf("shells[%d]: duplicate shell %q (first at shells[%d])", i, s, first)
		}
		seen[s] = i
	}

	if len(c.Flakes) == 0 {
		return fmt.Errorf("at least one flake is required")
	}
	for i, f := range c.Flakes {
		if strings.TrimSpace(f) == "" {
			return fmt.Errorf("flakes[%d]: flake reference is required", i)
		}
	}

	if c.Reloads < 1 {
		return fmt.Errorf("reloads must be at least 1")
	}

	if c.Precision < 0 || c.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 0 and %d", MaxPrecision)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}

	if _, err := SplitCommand(c.Cleanup, nil); err != nil {
		return fmt.Errorf("cleanup: %w", err)
	}

	fields, err := c.BootstrapCommand(c.Flakes[0], c.Shells[0])
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	if len(fields) == 0 {
		return fmt.Errorf("bootstrap: command is required")
	}

	return nil
}

// BootstrapCommand expands the bootstrap template for one flake and shell.
// The first element is the program, the rest are its arguments.
func (c *Config) BootstrapCommand(flake, shellName string) ([]string, error) {
	return SplitCommand(c.Bootstrap, map[string]string{
		FlakeVar: flake,
		ShellVar: shellName,
	})
}

// CleanupCommand splits the cleanup command. An empty result means cleanup is disabled.
func (c *Config) CleanupCommand() ([]string, error) {
	return SplitCommand(c.Cleanup, nil)
}

// SplitCommand splits a command line into fields using POSIX shell quoting rules,
// expanding ${name} references from vars. Unknown variables expand to the empty string.
func SplitCommand(line string, vars map[string]string) ([]string, error) {
	if strings.TrimSpace(line) == "" {
		return nil, nil
	}

	fields, err := shell.Fields(line, func(name string) string {
		return vars[name]
	})
	if err != nil {
		return nil, fmt.Errorf("invalid command %q: %w", line, err)
	}
	return fields, nil
}

// Clone creates a deep copy of the Config
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}

	clone := *c
	if c.Shells != nil {
		clone.Shells = make([]string, len(c.Shells))
		copy(clone.Shells, c.Shells)
	}
	if c.Flakes != nil {
		clone.Flakes = make([]string, len(c.Flakes))
		copy(clone.Flakes, c.Flakes)
	}
	return &clone
}

// LoadConfig loads a configuration from JSON data
func LoadConfig(data []byte) (*Config, error) {
	return LoadConfigWithDefaults(data, nil)
}

// LoadConfigWithDefaults decodes JSON data over a copy of defaults, so keys
// missing from data keep their default values. A nil defaults starts from
// the zero Config.
func LoadConfigWithDefaults(data []byte, defaults *Config) (*Config, error) {
	config := baseConfig(defaults)
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	config.fillLists(defaults)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// LoadConfigTOML loads a configuration from TOML data
func LoadConfigTOML(data []byte) (*Config, error) {
	return LoadConfigTOMLWithDefaults(data, nil)
}

// LoadConfigTOMLWithDefaults is the TOML counterpart of LoadConfigWithDefaults
func LoadConfigTOMLWithDefaults(data []byte, defaults *Config) (*Config, error) {
	config := baseConfig(defaults)
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	config.fillLists(defaults)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// baseConfig returns the value a document is decoded onto. List fields start
// empty so a document never merges its lists with the defaults.
func baseConfig(defaults *Config) *Config {
	if defaults == nil {
		return &Config{}
	}
	base := defaults.Clone()
	base.Shells = nil
	base.Flakes = nil
	return base
}

// fillLists restores default lists for keys the document did not set
func (c *Config) fillLists(defaults *Config) {
	if defaults == nil {
		return
	}
	d := defaults.Clone()
	if c.Shells == nil {
		c.Shells = d.Shells
	}
	if c.Flakes == nil {
		c.Flakes = d.Flakes
	}
}

// SaveConfig serializes a configuration to JSON
func SaveConfig(config *Config) ([]byte, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}

	return data, nil
}

// SaveConfigTOML serializes a configuration to TOML
func SaveConfigTOML(config *Config) ([]byte, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}

	return data, nil
}
