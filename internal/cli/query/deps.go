package query

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coral-mesh/futurescope/internal/cli/helpers"
	"github.com/coral-mesh/futurescope/internal/safe"
	"github.com/coral-mesh/futurescope/internal/store"
)

type depView struct {
	UnitSeq    int    `header:"SEQ" json:"unit_seq"`
	Type       string `header:"TYPE" json:"type"`
	Order      int    `header:"ORDER" json:"order"`
	Dependency string `header:"DEPENDENCY" json:"dependency"`
}

// NewDepsCmd creates the 'query deps' command.
func NewDepsCmd() *cobra.Command {
	var (
		database string
		format   string
		runID    string
		reverse  bool
	)

	cmd := &cobra.Command{
		Use:   "deps <type-name>",
		Short: "Show the state machines a type holds, or with --reverse the types holding it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := helpers.ValidateFormat(format, helpers.FormatNames(helpers.ListFormats)); err != nil {
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

			var rows []*store.DependencyRow
			if reverse {
				rows, err = st.Dependents(ctx, run, args[0])
			} else {
				rows, err = st.Dependencies(ctx, run, args[0])
			}
			if err != nil {
				return err
			}

			views := make([]depView, 0, len(rows))
			for _, r := range rows {
				views = append(views, depView{
					UnitSeq:    r.UnitSeq,
					Type:       r.TypeName,
					Order:      r.Position,
					Dependency: r.Dependency,
				})
			}
			if len(views) == 0 && format == string(helpers.FormatTable) {
				what := "dependencies"
				if reverse {
					what = "dependents"
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "No %s of %s in run %s.\n", what, args[0], run)
				return err
			}
			return write(cmd, format, views)
		},
	}

	helpers.AddDatabaseFlag(cmd, &database)
	helpers.AddFormatFlag(cmd, &format, string(helpers.FormatTable), helpers.FormatNames(helpers.ListFormats))
	helpers.AddRunFlag(cmd, &runID)
	cmd.Flags().BoolVar(&reverse, "reverse", false, "List types depending on the given state machine")

	return cmd
}
