package query

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/coral-mesh/futurescope/internal/cli/helpers"
	"github.com/coral-mesh/futurescope/internal/report"
	"github.com/coral-mesh/futurescope/internal/safe"
)

// NewUnitCmd creates the 'query unit' command.
func NewUnitCmd() *cobra.Command {
	var (
		database string
		format   string
		runID    string
	)

	cmd := &cobra.Command{
		Use:   "unit <seq>",
		Short: "Rebuild the stored report of one unit",
		Long: `Rebuild the report document of one unit from the database. Types come
back in name order rather than the order they were discovered in.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid unit sequence number %q: %w", args[0], err)
			}
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}

			st, logger, err := helpers.OpenStore(cmd, database)
			if err != nil {
				return err
			}
			defer safe.Close(st, logger, "failed to close store")

			ctx := cmd.Context()
			run, err := helpers.ResolveRun(ctx, st, runID)
			if err != nil {
				return err
			}

			doc, err := st.Document(ctx, run, seq)
			if err != nil {
				return err
			}
			return report.Render(cmd.OutOrStdout(), f, doc)
		},
	}

	helpers.AddDatabaseFlag(cmd, &database)
	helpers.AddFormatFlag(cmd, &format, string(report.FormatText),
		[]string{string(report.FormatText), string(report.FormatJSON), string(report.FormatTree)})
	helpers.AddRunFlag(cmd, &runID)

	return cmd
}
