// Package cli wires the futurescope command tree.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coral-mesh/futurescope/internal/cli/analyze"
	"github.com/coral-mesh/futurescope/internal/cli/helpers"
	"github.com/coral-mesh/futurescope/internal/cli/query"
	"github.com/coral-mesh/futurescope/internal/config"
	"github.com/coral-mesh/futurescope/internal/report"
	"github.com/coral-mesh/futurescope/pkg/version"
)

// NewRootCmd builds the root command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "futurescope",
		Short: "Recover async state machine layouts from DWARF debug info",
		Long: `futurescope reads the DWARF debug info of a compiled Rust binary and
reports, per compilation unit, the compiler-generated future and state
machine types it contains: their members, offsets and sizes, and which
other state machines each one transitively embeds.

Configuration is read from $FUTURESCOPE_CONFIG/config.yaml or
~/.futurescope/config.yaml; FUTURESCOPE_* environment variables and flags
override it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String(helpers.FlagConfig, "", "Config file (default: ~/.futurescope/config.yaml)")
	rootCmd.PersistentFlags().String(helpers.FlagLogLevel, "", "Log level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(analyze.NewAnalyzeCmd())
	rootCmd.AddCommand(query.NewQueryCmd())
	rootCmd.AddCommand(newSchemaCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of unit reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return report.WriteSchema(cmd.OutOrStdout())
		},
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration after defaults, the config file and FUTURESCOPE_*
environment variables are applied, then validate it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := helpers.LoadConfig(cmd)
			if err != nil {
				return err
			}
			data, err := config.Marshal(cfg)
			if err != nil {
				return err
			}
			if _, err := cmd.OutOrStdout().Write(data); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Print(version.Info())
		},
	}
}

// Execute runs the root command. Cancelling ctx stops analysis between units.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
