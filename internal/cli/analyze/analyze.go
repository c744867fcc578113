// Package analyze implements the 'futurescope analyze' command.
package analyze

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/coral-mesh/futurescope/internal/analyzer"
	"github.com/coral-mesh/futurescope/internal/cli/helpers"
	"github.com/coral-mesh/futurescope/internal/config"
	"github.com/coral-mesh/futurescope/internal/dwarfload"
	"github.com/coral-mesh/futurescope/internal/errors"
	"github.com/coral-mesh/futurescope/internal/policy"
	"github.com/coral-mesh/futurescope/internal/report"
	"github.com/coral-mesh/futurescope/internal/store"
)

type options struct {
	outputDir        string
	prefix           string
	database         string
	workers          int
	dot              bool
	futureExpr       string
	stateMachineExpr string
	unit             string
	unitIndex        int
	format           string
}

// NewAnalyzeCmd creates the 'analyze' command.
func NewAnalyzeCmd() *cobra.Command {
	return newAnalyzeCmd(&options{})
}

func newAnalyzeCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <binary>",
		Short: "Extract async state machine layouts from a binary's DWARF",
		Long: `Analyze every compilation unit of an ELF, Mach-O or PE binary and write one
JSON report per unit describing the future-like types it contains, their
members, and the state machine types each one transitively holds.

Reports are named <prefix>_<seq>_<hash>.json under the output directory.
With a database configured, every unit is also stored for 'futurescope query'.

Examples:
  futurescope analyze ./target/debug/server
  futurescope analyze ./server --output-dir reports --dot
  futurescope analyze ./server --unit src/main.rs --format tree
  futurescope analyze ./server --unit-index 3 --format json
  futurescope analyze ./server --db futures.duckdb --workers 8
  futurescope analyze ./server --future-expr 'name.startsWith("{async_fn_env")'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := helpers.LoadConfig(cmd)
			if err != nil {
				return err
			}
			applyOverrides(cmd.Flags(), cfg, opts)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			format, err := report.ParseFormat(opts.format)
			if err != nil {
				return err
			}

			var index *int
			if cmd.Flags().Changed("unit-index") {
				index = &opts.unitIndex
			}

			return run(cmd.Context(), cmd.OutOrStdout(), helpers.NewLogger(cmd, cfg), cfg, args[0], index, format)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.outputDir, "output-dir", "", "Directory for unit reports (overrides output.dir)")
	flags.StringVar(&opts.prefix, "prefix", "", "Report file name prefix (overrides output.prefix)")
	helpers.AddDatabaseFlag(cmd, &opts.database)
	flags.IntVarP(&opts.workers, "workers", "w", 0, "Units analyzed concurrently (overrides analysis.workers)")
	flags.BoolVar(&opts.dot, "dot", false, "Also write a Graphviz .dot file per unit")
	flags.StringVar(&opts.futureExpr, "future-expr", "", "CEL expression selecting future-like structs")
	flags.StringVar(&opts.stateMachineExpr, "state-machine-expr", "", "CEL expression selecting state machine structs")
	flags.StringVar(&opts.unit, "unit", "", "Only analyze units whose name contains this substring")
	flags.IntVar(&opts.unitIndex, "unit-index", 0, "Only analyze the unit with this sequence number")
	helpers.AddFormatFlag(cmd, &opts.format, string(report.FormatText),
		[]string{string(report.FormatText), string(report.FormatJSON), string(report.FormatTree)})

	return cmd
}

// applyOverrides copies explicitly set flags over the loaded configuration.
func applyOverrides(flags *pflag.FlagSet, cfg *config.Config, opts *options) {
	if flags.Changed("output-dir") {
		cfg.Output.Dir = opts.outputDir
	}
	if flags.Changed("prefix") {
		cfg.Output.Prefix = opts.prefix
	}
	if flags.Changed("dot") {
		cfg.Output.DOT = opts.dot
	}
	if flags.Changed("db") {
		cfg.Storage.Database = opts.database
	}
	if flags.Changed("workers") {
		cfg.Analysis.Workers = opts.workers
	}
	if flags.Changed("unit") {
		cfg.Analysis.UnitFilter = opts.unit
	}
	if flags.Changed("future-expr") {
		cfg.Classifier.FutureExpr = opts.futureExpr
	}
	if flags.Changed("state-machine-expr") {
		cfg.Classifier.StateMachineExpr = opts.stateMachineExpr
	}
}

// unitFilter combines the configured name filter with an optional index.
func unitFilter(cfg *config.Config, index *int) dwarfload.UnitFilter {
	var filters []dwarfload.UnitFilter
	if cfg.Analysis.UnitFilter != "" {
		filters = append(filters, dwarfload.NameContains(cfg.Analysis.UnitFilter))
	}
	if index != nil {
		filters = append(filters, dwarfload.Index(*index))
	}
	if len(filters) == 0 {
		return nil
	}
	return dwarfload.All(filters...)
}

func run(ctx context.Context, out io.Writer, logger zerolog.Logger, cfg *config.Config, path string, index *int, format report.Format) (err error) {
	runID := uuid.NewString()
	started := time.Now().UTC()

	cls, err := policy.Classifier(policy.Config{
		FutureExpr:       cfg.Classifier.FutureExpr,
		StateMachineExpr: cfg.Classifier.StateMachineExpr,
	}, logger)
	if err != nil {
		return err
	}

	bin, err := dwarfload.Open(path, logger)
	if err != nil {
		return err
	}
	defer errors.DeferClose(logger, bin, "failed to close binary")

	units, err := bin.Units(unitFilter(cfg, index))
	if err != nil {
		if len(units) == 0 {
			return err
		}
		logger.Warn().Err(err).Int("units", len(units)).Msg("Debug info truncated, analyzing decoded units")
	}
	if len(units) == 0 && (index != nil || cfg.Analysis.UnitFilter != "") {
		return fmt.Errorf("no compilation unit matches the selection")
	}

	sink := &report.FileSink{
		Dir:    cfg.Output.Dir,
		Prefix: cfg.Output.Prefix,
		DOT:    cfg.Output.DOT,
		Logger: logger,
	}

	opts := analyzer.Options{
		Classifier: cls,
		Sink:       sink,
		Workers:    cfg.Analysis.Workers,
		RunID:      runID,
		Logger:     logger,
	}

	var st *store.Store
	if cfg.StorageEnabled() {
		st, err = store.Open(ctx, cfg.Storage.Database, logger)
		if err != nil {
			return err
		}
		defer errors.CloseInto(&err, st, "failed to close store")

		runRow := &store.RunRow{RunID: runID, Binary: bin.Path(), StartedAt: started}
		if err := st.SaveRun(ctx, runRow); err != nil {
			return err
		}
		opts.Recorder = st
	}

	logger.Info().
		Str("run_id", runID).
		Str("binary", bin.Path()).
		Str("format", string(bin.Format())).
		Int("units", len(units)).
		Msg("Starting analysis")

	summary, results := analyzer.New(opts).AnalyzeAll(ctx, units)

	if st != nil {
		runRow := &store.RunRow{
			RunID:         runID,
			Binary:        bin.Path(),
			StartedAt:     started,
			UnitsScanned:  summary.Scanned,
			UnitsAnalyzed: summary.Analyzed,
		}
		if err := st.SaveRun(ctx, runRow); err != nil {
			return err
		}
	}

	if err := renderSummary(out, runID, summary); err != nil {
		return err
	}

	if doc := singleDocument(results); doc != nil {
		if _, err := fmt.Fprintln(out); err != nil {
			return err
		}
		return report.Render(out, format, doc)
	}
	return nil
}

// singleDocument returns the document when exactly one unit was analyzed.
func singleDocument(results []analyzer.Result) *report.Document {
	var doc *report.Document
	n := 0
	for _, r := range results {
		if r.OK() {
			doc = r.Document
			n++
		}
	}
	if n != 1 {
		return nil
	}
	return doc
}
