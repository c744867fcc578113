package query

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/coral-mesh/futurescope/internal/cli/helpers"
	"github.com/coral-mesh/futurescope/internal/safe"
	"github.com/coral-mesh/futurescope/internal/store"
)

type runView struct {
	RunID     string    `header:"RUN" json:"run_id"`
	StartedAt time.Time `header:"STARTED" json:"started_at"`
	Scanned   int       `header:"SCANNED" json:"units_scanned"`
	Analyzed  int       `header:"ANALYZED" json:"units_analyzed"`
	Binary    string    `header:"BINARY" json:"binary"`
}

// NewRunsCmd creates the 'query runs' command.
func NewRunsCmd() *cobra.Command {
	var (
		database  string
		format    string
		timeFlags helpers.TimeFlags
	)

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored analysis runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := helpers.ValidateFormat(format, helpers.FormatNames(helpers.ListFormats)); err != nil {
				return err
			}
			window, err := timeFlags.Parse(time.Now().UTC())
			if err != nil {
				return err
			}

			st, logger, err := helpers.OpenStore(cmd, database)
			if err != nil {
				return err
			}
			defer safe.Close(st, logger, "failed to close store")

			runs, err := st.Runs(cmd.Context())
			if err != nil {
				return err
			}

			views := filterRuns(runs, window)
			if len(views) == 0 && format == string(helpers.FormatTable) {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "No runs found.")
				return err
			}
			return write(cmd, format, views)
		},
	}

	helpers.AddDatabaseFlag(cmd, &database)
	helpers.AddFormatFlag(cmd, &format, string(helpers.FormatTable), helpers.FormatNames(helpers.ListFormats))
	timeFlags.AddFlags(cmd.Flags())

	return cmd
}

func filterRuns(runs []*store.RunRow, window *helpers.TimeRange) []runView {
	views := make([]runView, 0, len(runs))
	for _, r := range runs {
		if window != nil && !window.Contains(r.StartedAt) {
			continue
		}
		views = append(views, runView{
			RunID:     r.RunID,
			StartedAt: r.StartedAt.UTC(),
			Scanned:   r.UnitsScanned,
			Analyzed:  r.UnitsAnalyzed,
			Binary:    r.Binary,
		})
	}
	return views
}

func write(cmd *cobra.Command, format string, rows any) error {
	f, err := helpers.NewFormatter(helpers.OutputFormat(format))
	if err != nil {
		return err
	}
	return f.Format(rows, cmd.OutOrStdout())
}
