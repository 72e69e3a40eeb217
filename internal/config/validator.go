package config

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/bebsworthy/devbench/pkg/config"
)

// Validator adds environment checks on top of Config.Validate
type Validator struct {
	// CheckCommands indicates whether to validate command existence in PATH
	CheckCommands bool
}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{
		CheckCommands: true,
	}
}

// Validate checks the configuration, its schema version and, when enabled,
// that the bootstrap and cleanup programs can be found.
func (v *Validator) Validate(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := ValidateVersion(cfg.Version); err != nil {
		return err
	}

	if !v.CheckCommands {
		return nil
	}

	// The program does not depend on the template variables, so any pair will do
	argv, err := cfg.BootstrapCommand(cfg.Flakes[0], cfg.Shells[0])
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	if err := v.checkCommandExists(argv[0]); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	argv, err = cfg.CleanupCommand()
	if err != nil {
		return fmt.Errorf("cleanup: %w", err)
	}
	if len(argv) > 0 {
		if err := v.checkCommandExists(argv[0]); err != nil {
			return fmt.Errorf("cleanup: %w", err)
		}
	}

	return nil
}

// checkCommandExists verifies that a command exists in PATH
func (v *Validator) checkCommandExists(command string) error {
	// Special handling for commands with paths
	if strings.Contains(command, "/") || strings.Contains(command, "\\") {
		if _, err := os.Stat(command); err == nil {
			return nil
		}
		return fmt.Errorf("command %q not found at specified path", command)
	}

	path, err := exec.LookPath(command)
	if err != nil {
		return fmt.Errorf("command %q not found in PATH", command)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot stat command %q: %w", command, err)
	}

	if runtime.GOOS != "windows" && info.Mode()&0111 == 0 {
		return fmt.Errorf("command %q is not executable", command)
	}

	return nil
}

// SuggestFixes provides suggestions for common configuration errors
func (v *Validator) SuggestFixes(err error) []string {
	errStr := err.Error()
	var suggestions []string

	if strings.Contains(errStr, "not found in PATH") {
		suggestions = append(suggestions,
			"Make sure the command is installed and available in your PATH",
			"Try running 'which <command>' to verify",
		)
		if strings.Contains(errStr, `"nix`) {
			suggestions = append(suggestions, "Install Nix from https://nixos.org/download/ and enable flakes")
		}
	}

	if strings.Contains(errStr, "duplicate shell") {
		suggestions = append(suggestions, "Each shell may appear only once; results are keyed by shell name")
	}

	if strings.Contains(errStr, "invalid command") {
		suggestions = append(suggestions,
			"Check the quoting of the command template",
			"Use ${flake} and ${shell} to refer to the current flake and shell",
		)
	}

	if strings.Contains(errStr, "newer than supported") {
		suggestions = append(suggestions, "Upgrade devbench or set \"version\" to "+CurrentSchemaVersion)
	}

	return suggestions
}
