// Package config finds, loads and checks devbench configuration files.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bebsworthy/devbench/internal/debug"
	"github.com/bebsworthy/devbench/pkg/config"
)

const (
	// ConfigEnvVar is the environment variable to specify a custom config path
	ConfigEnvVar = "DEVBENCH_CONFIG"

	// SourceDefaults is reported as the source when no file was found
	SourceDefaults = "<built-in defaults>"
)

// ConfigFileNames are searched in order in every search path
var ConfigFileNames = []string{".devbench.json", ".devbench.toml"}

// Loader handles locating and loading configuration files
type Loader struct {
	// SearchPaths contains the directories to search for configuration files
	SearchPaths []string

	source string
}

// NewLoader creates a loader searching the working directory, the project root and the home directory
func NewLoader() *Loader {
	return &Loader{
		SearchPaths: getDefaultSearchPaths(),
	}
}

// Source returns where the last loaded configuration came from
func (l *Loader) Source() string {
	return l.source
}

// Load finds a configuration file, falling back to the built-in defaults when none exists
func (l *Loader) Load() (*config.Config, error) {
	debug.LogSection("Configuration Loading")

	if envPath := os.Getenv(ConfigEnvVar); envPath != "" {
		debug.Log("Loading config from environment variable %s: %s", ConfigEnvVar, envPath)
		cfg, err := l.LoadFromPath(envPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", ConfigEnvVar, err)
		}
		return cfg, nil
	}

	debug.Log("Searching for config in: %v", l.SearchPaths)
	for _, searchPath := range l.SearchPaths {
		for _, name := range ConfigFileNames {
			configPath := filepath.Join(searchPath, name)
			if _, err := os.Stat(configPath); err != nil {
				continue
			}
			debug.Log("Found config at: %s", configPath)
			cfg, err := l.LoadFromPath(configPath)
			if err != nil {
				return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
			}
			return cfg, nil
		}
	}

	debug.Log("No config file found, using built-in defaults")
	l.source = SourceDefaults
	return DefaultConfig(), nil
}

// LoadFromPath loads and validates configuration from a specific file.
// Files ending in .toml are parsed as TOML, everything else as JSON.
func (l *Loader) LoadFromPath(path string) (*config.Config, error) {
	debug.Log("Loading config from file: %s", path)

	// #nosec G304 - path is chosen by the user
	file, err := os.Open(path)
	if err != nil {
		debug.LogError(err, "opening config file")
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() { _ = file.Close() }() //nolint:errcheck // Best effort cleanup

	data, err := io.ReadAll(file)
	if err != nil {
		debug.LogError(err, "reading config file")
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Keys the file leaves out keep their built-in values
	var cfg *config.Config
	if isTOML(path) {
		cfg, err = config.LoadConfigTOMLWithDefaults(data, DefaultConfig())
	} else {
		cfg, err = config.LoadConfigWithDefaults(data, DefaultConfig())
	}
	if err != nil {
		debug.LogError(err, "parsing config")
		return nil, err
	}

	debug.Log("Loaded config: version=%s, shells=%d, flakes=%d, reloads=%d",
		cfg.Version, len(cfg.Shells), len(cfg.Flakes), cfg.Reloads)
	l.source = path
	return cfg, nil
}

// Save writes a configuration to path, choosing the encoding from the extension
func Save(path string, cfg *config.Config) error {
	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		data, err = config.SaveConfigTOML(cfg)
	} else {
		data, err = config.SaveConfig(cfg)
		data = append(data, '\n')
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// getDefaultSearchPaths returns the default paths to search for configuration
func getDefaultSearchPaths() []string {
	var paths []string

	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, cwd)

		// Walk up to the project root
		dir := cwd
		for {
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			if isProjectRoot(parent) {
				paths = append(paths, parent)
				break
			}
			dir = parent
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home)
	}

	return paths
}

func isProjectRoot(dir string) bool {
	for _, marker := range []string{".git", "flake.nix"} {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}
