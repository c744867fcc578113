// Package query implements 'futurescope query', which reads analysis runs
// back from the DuckDB database.
package query

import (
	"github.com/spf13/cobra"
)

// NewQueryCmd creates the 'query' command.
func NewQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query stored analysis runs",
		Long: `Query future types and dependencies stored by 'futurescope analyze --db'.

Commands:
  runs   - Stored analysis runs
  types  - Future-like types of a run
  deps   - State machine dependencies of a type (or its dependents)
  unit   - Rebuild the report of one unit

Every command reads the latest run unless --run is given.

Examples:
  futurescope query runs --since 24h
  futurescope query types --state-machines --name Fetch
  futurescope query deps FetchFutureState
  futurescope query deps ReadFutureState --reverse
  futurescope query unit 3 --format tree
`,
	}

	cmd.AddCommand(NewRunsCmd())
	cmd.AddCommand(NewTypesCmd())
	cmd.AddCommand(NewDepsCmd())
	cmd.AddCommand(NewUnitCmd())

	return cmd
}
