package helpers

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/coral-mesh/futurescope/internal/errors"
)

// Global flag names, registered as persistent flags on the root command.
const (
	FlagConfig   = "config"
	FlagLogLevel = "log-level"
)

// AddFormatFlag adds a standard --format/-o flag to a command.
func AddFormatFlag(cmd *cobra.Command, formatVar *string, defaultFormat string, supported []string) {
	description := fmt.Sprintf("Output format (%s)", strings.Join(supported, ", "))
	cmd.Flags().StringVarP(formatVar, "format", "o", defaultFormat, description)

	errors.Must(cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return supported, cobra.ShellCompDirectiveNoFileComp
	}), "register format completion")
}

// AddRunFlag adds a --run flag selecting a stored run. Empty means latest.
func AddRunFlag(cmd *cobra.Command, runVar *string) {
	cmd.Flags().StringVar(runVar, "run", "", "Run ID to query (default: latest run)")
}

// AddDatabaseFlag adds a --db flag overriding storage.database.
func AddDatabaseFlag(cmd *cobra.Command, dbVar *string) {
	cmd.Flags().StringVar(dbVar, "db", "", "DuckDB database path (overrides storage.database)")
}

// ValidateFormat checks if the format is in the supported list.
func ValidateFormat(format string, supported []string) error {
	for _, s := range supported {
		if format == s {
			return nil
		}
	}
	return fmt.Errorf("unsupported format %q, must be one of: %s", format, strings.Join(supported, ", "))
}

// FormatNames converts output formats to their flag values.
func FormatNames(formats []OutputFormat) []string {
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return names
}
