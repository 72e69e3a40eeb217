// Package main is the entry point for the devbench CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bebsworthy/devbench/internal/debug"
)

// Version is set at build time via ldflags
var Version = "dev"

// Global flags
var (
	debugFlag  bool
	configPath string
)

// newRootCmd creates and returns the root command
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devbench",
		Short: "Benchmark how fast Nix dev shells start",
		Long: `Devbench measures how long Nix flake dev shells take to enter.

For every flake and every shell it clears the Nix store with
nix-collect-garbage, times one cold "bootstrap" invocation of nix develop,
then times a batch of warm "reload" invocations. The results are printed as
one mapping per flake, so several flakes can be compared shell by shell.

GETTING STARTED:
  1. Run with the built-in shells and flakes:
     $ devbench run

  2. Or write a configuration for your own flakes:
     $ devbench config init

CONFIGURATION:
  Devbench reads .devbench.json or .devbench.toml from the working directory,
  the project root or your home directory. Set DEVBENCH_CONFIG or pass
  --config to use a specific file.`,
		Version: Version,
		Example: `  # Benchmark the default GHC shells
  devbench run

  # Compare two flakes on the minimal shells only
  devbench run --flake input-output-hk/devx --flake me/devx-fork --shell '*-minimal'

  # Human-readable output
  devbench run --format table`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debugFlag {
				debug.Enable()
			}
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug output")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newCompletionCmd())
	cmd.AddCommand(newManCmd())

	return cmd
}

func main() {
	// Parse --debug early so configuration loading is logged too
	for i := 1; i < len(os.Args); i++ {
		if os.Args[i] == "--debug" {
			debug.Enable()
			break
		}
	}

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
