package testutil

import (
	"encoding/json"
	"os"

	"github.com/bebsworthy/devbench/pkg/config"
)

// TestBootstrap is a bootstrap template whose fields are easy to assert on.
const TestBootstrap = `bootstrap "${flake}#${shell}"`

// TestCleanup is the cleanup command used by test configurations.
const TestCleanup = "gc"

// ConfigBuilder provides a fluent interface for building test configurations.
type ConfigBuilder struct {
	config *config.Config
}

// NewConfigBuilder creates a ConfigBuilder with two shells, one flake and three reloads.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		config: &config.Config{
			Version:   "1.0",
			Shells:    []string{"shell-a", "shell-b"},
			Flakes:    []string{"owner/flake"},
			Reloads:   3,
			Precision: 2,
			Cleanup:   TestCleanup,
			Bootstrap: TestBootstrap,
		},
	}
}

// WithShells replaces the shell list.
func (b *ConfigBuilder) WithShells(shells ...string) *ConfigBuilder {
	b.config.Shells = shells
	return b
}

// WithFlakes replaces the flake list.
func (b *ConfigBuilder) WithFlakes(flakes ...string) *ConfigBuilder {
	b.config.Flakes = flakes
	return b
}

// WithReloads sets the reload count.
func (b *ConfigBuilder) WithReloads(n int) *ConfigBuilder {
	b.config.Reloads = n
	return b
}

// WithPrecision sets the rounding precision.
func (b *ConfigBuilder) WithPrecision(places int) *ConfigBuilder {
	b.config.Precision = places
	return b
}

// WithTimeout sets the per-invocation timeout in milliseconds.
func (b *ConfigBuilder) WithTimeout(ms int) *ConfigBuilder {
	b.config.Timeout = ms
	return b
}

// WithCleanup sets the cleanup command line.
func (b *ConfigBuilder) WithCleanup(line string) *ConfigBuilder {
	b.config.Cleanup = line
	return b
}

// WithBootstrap sets the bootstrap command template.
func (b *ConfigBuilder) WithBootstrap(line string) *ConfigBuilder {
	b.config.Bootstrap = line
	return b
}

// Build returns the constructed configuration.
func (b *ConfigBuilder) Build() *config.Config {
	return b.config
}

// WriteToFile writes the configuration to a JSON file.
func (b *ConfigBuilder) WriteToFile(path string) error {
	data, err := json.MarshalIndent(b.config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
