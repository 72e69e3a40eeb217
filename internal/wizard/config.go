// Package wizard provides the interactive configuration wizard for devbench
package wizard

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/bebsworthy/devbench/internal/config"
	"github.com/bebsworthy/devbench/internal/debug"
	pkgconfig "github.com/bebsworthy/devbench/pkg/config"
)

// AskFunc asks a single question. It matches survey.AskOne.
type AskFunc func(p survey.Prompt, response interface{}, opts ...survey.AskOpt) error

// ConfigWizard builds a configuration file from the user's answers
type ConfigWizard struct {
	ask      AskFunc
	out      io.Writer
	defaults *pkgconfig.Config
}

// NewConfigWizard creates a wizard that prompts on the terminal
func NewConfigWizard() *ConfigWizard {
	return &ConfigWizard{
		ask:      survey.AskOne,
		out:      os.Stdout,
		defaults: config.DefaultConfig(),
	}
}

// Run runs the wizard and writes the result to outputPath (default .devbench.json in the working directory)
func (w *ConfigWizard) Run(outputPath string, force bool) error {
	debug.LogSection("Configuration Wizard")

	path, err := w.determineOutputPath(outputPath)
	if err != nil {
		return err
	}
	outputPath = path

	if !force {
		overwrite, err := w.checkExistingConfig(outputPath)
		if err != nil {
			return err
		}
		if !overwrite {
			fmt.Fprintln(w.out, "Configuration wizard canceled.")
			return nil
		}
	}

	fmt.Fprintln(w.out, "Welcome to the devbench configuration wizard!")
	fmt.Fprintln(w.out, "Pick the dev shells and flakes to benchmark.")

	cfg, err := w.createConfiguration()
	if err != nil {
		return err
	}

	if err := w.validateAndSave(cfg, outputPath); err != nil {
		return err
	}

	fmt.Fprintf(w.out, "\nConfiguration saved to: %s\n", outputPath)
	fmt.Fprintln(w.out, "Run the benchmark with: devbench run")
	return nil
}

// createConfiguration asks for shells, flakes and the reload count, starting from the defaults
func (w *ConfigWizard) createConfiguration() (*pkgconfig.Config, error) {
	cfg := w.defaults.Clone()

	var shells []string
	shellPrompt := &survey.MultiSelect{
		Message: "Select the dev shells to benchmark:",
		Options: w.defaults.Shells,
		Default: w.defaults.Shells,
	}
	if err := w.ask(shellPrompt, &shells, survey.WithValidator(survey.MinItems(1))); err != nil {
		return nil, err
	}
	cfg.Shells = shells

	var extra string
	extraPrompt := &survey.Input{
		Message: "Additional shells (space separated, optional):",
	}
	if err := w.ask(extraPrompt, &extra); err != nil {
		return nil, err
	}
	cfg.Shells = appendUnique(cfg.Shells, strings.Fields(extra)...)

	flakes := strings.Join(w.defaults.Flakes, " ")
	flakePrompt := &survey.Input{
		Message: "Flakes to compare (owner/repo, space separated):",
		Default: flakes,
	}
	if err := w.ask(flakePrompt, &flakes, survey.WithValidator(survey.Required)); err != nil {
		return nil, err
	}
	cfg.Flakes = appendUnique(nil, strings.Fields(flakes)...)

	reloads := strconv.Itoa(w.defaults.Reloads)
	reloadPrompt := &survey.Input{
		Message: "Reload invocations per shell:",
		Default: reloads,
	}
	if err := w.ask(reloadPrompt, &reloads, survey.WithValidator(validatePositiveInt)); err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(reloads))
	if err != nil {
		return nil, fmt.Errorf("invalid reload count %q: %w", reloads, err)
	}
	cfg.Reloads = n

	cleanup := true
	cleanupPrompt := &survey.Confirm{
		Message: fmt.Sprintf("Run %q before each shell?", w.defaults.Cleanup),
		Default: true,
	}
	if err := w.ask(cleanupPrompt, &cleanup); err != nil {
		return nil, err
	}
	if !cleanup {
		cfg.Cleanup = ""
	}

	return cfg, nil
}

func (w *ConfigWizard) determineOutputPath(outputPath string) (string, error) {
	if outputPath != "" {
		return outputPath, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return filepath.Join(cwd, config.ConfigFileNames[0]), nil
}

// checkExistingConfig checks if config exists and prompts for overwrite
func (w *ConfigWizard) checkExistingConfig(outputPath string) (bool, error) {
	if _, err := os.Stat(outputPath); err != nil {
		return true, nil
	}

	overwrite := false
	prompt := &survey.Confirm{
		Message: fmt.Sprintf("Configuration already exists at %s. Overwrite?", outputPath),
		Default: false,
	}
	if err := w.ask(prompt, &overwrite); err != nil {
		return false, err
	}
	return overwrite, nil
}

func (w *ConfigWizard) validateAndSave(cfg *pkgconfig.Config, outputPath string) error {
	validator := config.NewValidator()
	if err := validator.Validate(cfg); err != nil {
		fmt.Fprintf(w.out, "\nConfiguration validation warning: %v\n", err)

		saveAnyway := false
		prompt := &survey.Confirm{
			Message: "Do you want to save anyway?",
			Default: false,
		}
		if err := w.ask(prompt, &saveAnyway); err != nil {
			return err
		}
		if !saveAnyway {
			return fmt.Errorf("configuration validation failed")
		}
	}

	return config.Save(outputPath, cfg)
}

func validatePositiveInt(ans interface{}) error {
	s, _ := ans.(string)
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return fmt.Errorf("enter a whole number of at least 1")
	}
	return nil
}

func appendUnique(list []string, items ...string) []string {
	seen := make(map[string]bool, len(list))
	for _, s := range list {
		seen[s] = true
	}
	for _, s := range items {
		if !seen[s] {
			seen[s] = true
			list = append(list, s)
		}
	}
	return list
}
