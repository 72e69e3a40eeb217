package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bebsworthy/devbench/internal/config"
	"github.com/bebsworthy/devbench/internal/wizard"
	pkgconfig "github.com/bebsworthy/devbench/pkg/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or check devbench configuration",
		Long: `Create or check devbench configuration files.

Configuration is read from .devbench.json or .devbench.toml. Without one,
devbench benchmarks the built-in GHC shells of input-output-hk/devx and
yvan-sraka/static-closure.`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigValidateCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var (
		outputPath string
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file interactively",
		Long: `Write a configuration file through an interactive wizard.

The wizard starts from the built-in defaults and asks which shells and flakes
to benchmark, how many reloads to time and whether to clean the Nix store.
A .toml output path writes TOML, anything else writes JSON.`,
		Example: `  # Write .devbench.json in the current directory
  devbench config init

  # Write TOML somewhere else, replacing any existing file
  devbench config init --output ~/.devbench.toml --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return wizard.NewConfigWizard().Run(outputPath, force)
		},
	}

	cmd.Flags().StringVar(&outputPath, "output", "", "Output path for configuration file")
	cmd.Flags().BoolVar(&force, "force", false, "Force overwrite existing configuration")
	return cmd
}

func newConfigValidateCmd() *cobra.Command {
	var skipCommands bool

	cmd := &cobra.Command{
		Use:   "validate [PATH]",
		Short: "Validate a configuration file",
		Long: `Validate a configuration file.

Without PATH the file given by --config, DEVBENCH_CONFIG or discovery is
checked. Besides the schema, validation checks that the bootstrap and cleanup
programs can be found in PATH unless --skip-commands is set.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidateConfig(cmd, args, skipCommands)
		},
	}

	cmd.Flags().BoolVar(&skipCommands, "skip-commands", false, "Do not look up the configured programs in PATH")
	return cmd
}

func runValidateConfig(cmd *cobra.Command, args []string, skipCommands bool) error {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	var (
		cfg    *pkgconfig.Config
		source string
		err    error
	)
	if len(args) == 1 {
		source = args[0]
		cfg, err = config.NewLoader().LoadFromPath(source)
		if err != nil {
			err = fmt.Errorf("failed to load config: %w", err)
		}
	} else {
		cfg, source, err = loadConfig()
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Validating %s...\n", source)

	validator := config.NewValidator()
	validator.CheckCommands = !skipCommands
	if err := validator.Validate(cfg); err != nil {
		fmt.Fprintf(errOut, "\n❌ Configuration validation failed:\n")
		fmt.Fprintf(errOut, "   %v\n", err)

		suggestions := validator.SuggestFixes(err)
		if len(suggestions) > 0 {
			fmt.Fprintf(errOut, "\n💡 Suggestions:\n")
			for _, suggestion := range suggestions {
				fmt.Fprintf(errOut, "   • %s\n", suggestion)
			}
		}

		return errors.New("configuration is invalid")
	}

	fmt.Fprintln(out, "\n✅ Configuration is valid!")
	fmt.Fprintf(out, "\n📋 Configuration Summary:\n")
	fmt.Fprintf(out, "   Version: %s\n", cfg.Version)
	fmt.Fprintf(out, "   Flakes: %d\n", len(cfg.Flakes))
	fmt.Fprintf(out, "   Shells: %d\n", len(cfg.Shells))
	fmt.Fprintf(out, "   Reloads: %d\n", cfg.Reloads)
	return nil
}
