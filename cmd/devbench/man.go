package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

func newManCmd() *cobra.Command {
	var manDir string

	cmd := &cobra.Command{
		Use:   "man",
		Short: "Generate man pages for devbench",
		Long: `Generate man pages for devbench and all its subcommands.

One page is written per command, named after the command path
(devbench-run.1, devbench-config-validate.1, ...).`,
		Example: `  # Generate man pages in a specific directory
  devbench man --dir ./docs/man

  # View a generated page
  man ./docs/man/devbench-run.1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(manDir, 0750); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}

			header := &doc.GenManHeader{
				Title:   "DEVBENCH",
				Section: "1",
				Source:  fmt.Sprintf("devbench %s", Version),
				Manual:  "Devbench Manual",
			}
			if err := doc.GenManTree(cmd.Root(), header, manDir); err != nil {
				return fmt.Errorf("failed to generate man pages: %w", err)
			}

			files, err := filepath.Glob(filepath.Join(manDir, "*.1"))
			if err != nil {
				return fmt.Errorf("failed to list generated files: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Man pages generated in %s:\n", manDir)
			for _, file := range files {
				fmt.Fprintf(out, "  %s\n", filepath.Base(file))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&manDir, "dir", ".", "Directory to write man pages to")
	return cmd
}
