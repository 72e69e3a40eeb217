package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bebsworthy/devbench/internal/bench"
)

func newListCmd() *cobra.Command {
	var shells []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the shells and flakes that would be benchmarked",
		Long: `Show the effective configuration: where it was loaded from, the flakes
and shells that "devbench run" would benchmark, and the commands it would run.`,
		Example: `  devbench list
  devbench list --shell 'ghc9*'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, source, err := loadConfig()
			if err != nil {
				return err
			}

			selected, err := bench.FilterShells(cfg.Shells, shells)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Configuration: %s\n", source)
			fmt.Fprintln(out, "\nFlakes:")
			for _, flake := range cfg.Flakes {
				fmt.Fprintf(out, "  %s\n", flake)
			}
			fmt.Fprintln(out, "\nShells:")
			for _, shell := range selected {
				fmt.Fprintf(out, "  %s\n", shell)
			}

			fmt.Fprintf(out, "\nBootstrap: %s\n", cfg.Bootstrap)
			if cfg.Cleanup != "" {
				fmt.Fprintf(out, "Cleanup:   %s\n", cfg.Cleanup)
			} else {
				fmt.Fprintln(out, "Cleanup:   (disabled)")
			}
			fmt.Fprintf(out, "Reloads:   %d\n", cfg.Reloads)
			if cfg.Timeout > 0 {
				fmt.Fprintf(out, "Timeout:   %s\n", time.Duration(cfg.Timeout)*time.Millisecond)
			}

			invocations := len(cfg.Flakes) * len(selected) * (1 + cfg.Reloads)
			fmt.Fprintf(out, "\n%d measured invocations\n", invocations)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&shells, "shell", nil, "Only list shells matching this glob (repeatable)")
	return cmd
}
