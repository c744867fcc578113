package query

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coral-mesh/futurescope/internal/cli/helpers"
	"github.com/coral-mesh/futurescope/internal/safe"
	"github.com/coral-mesh/futurescope/internal/store"
)

type typeView struct {
	UnitSeq        int    `header:"SEQ" json:"unit_seq"`
	Unit           string `header:"UNIT" json:"unit"`
	Name           string `header:"NAME" json:"name"`
	IsStateMachine bool   `header:"STATE MACHINE" json:"is_state_machine"`
	Members        int    `header:"MEMBERS" json:"members"`
	Dependencies   int    `header:"DEPENDENCIES" json:"dependencies"`
}

// NewTypesCmd creates the 'query types' command.
func NewTypesCmd() *cobra.Command {
	var (
		database      string
		format        string
		runID         string
		name          string
		unitSeq       int
		stateMachines bool
		limit         int
	)

	cmd := &cobra.Command{
		Use:   "types",
		Short: "List future-like types of a run",
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

			filter := store.TypeFilter{
				RunID:             run,
				NameLike:          name,
				StateMachinesOnly: stateMachines,
				Limit:             limit,
			}
			if cmd.Flags().Changed("unit") {
				filter.UnitSeq = &unitSeq
			}

			rows, err := st.ListTypes(ctx, filter)
			if err != nil {
				return err
			}

			views := make([]typeView, 0, len(rows))
			for _, r := range rows {
				views = append(views, typeView{
					UnitSeq:        r.UnitSeq,
					Unit:           r.UnitName,
					Name:           r.Name,
					IsStateMachine: r.IsStateMachine,
					Members:        r.MemberCount,
					Dependencies:   r.DependencyCount,
				})
			}
			if len(views) == 0 && format == string(helpers.FormatTable) {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "No future types found in run %s.\n", run)
				return err
			}
			return write(cmd, format, views)
		},
	}

	helpers.AddDatabaseFlag(cmd, &database)
	helpers.AddFormatFlag(cmd, &format, string(helpers.FormatTable), helpers.FormatNames(helpers.ListFormats))
	helpers.AddRunFlag(cmd, &runID)
	cmd.Flags().StringVar(&name, "name", "", "Only types whose name contains this substring")
	cmd.Flags().IntVar(&unitSeq, "unit", 0, "Only types of the unit with this sequence number")
	cmd.Flags().BoolVar(&stateMachines, "state-machines", false, "Only state machine types")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of types (0 = no limit)")

	return cmd
}
