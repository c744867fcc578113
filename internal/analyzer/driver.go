// Package analyzer drives the per-unit pipeline: collect future-like types,
// resolve their dependencies, build the report and hand it to the sink and
// the optional store. Failures are contained per unit.
package analyzer

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/coral-mesh/futurescope/internal/entry"
	"github.com/coral-mesh/futurescope/internal/future"
	"github.com/coral-mesh/futurescope/internal/report"
)

// Sink receives the report of each analyzed unit and returns where it went.
type Sink interface {
	Write(unit entry.Unit, doc *report.Document) (string, error)
}

// Recorder persists the report of each analyzed unit.
type Recorder interface {
	SaveUnit(ctx context.Context, runID string, unit entry.Unit, doc *report.Document) error
}

// Options configures a Driver. Sink and Recorder are optional.
type Options struct {
	Classifier future.Classifier
	Sink       Sink
	Recorder   Recorder
	// Workers above 1 analyzes that many units concurrently.
	Workers int
	RunID   string
	Logger  zerolog.Logger
}

// Driver analyzes compilation units. It holds no per-unit state, so one
// Driver may serve concurrent calls.
type Driver struct {
	opts   Options
	logger zerolog.Logger
}

// New creates a Driver.
func New(opts Options) *Driver {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	logger := opts.Logger.With().Str("component", "analyzer").Logger()
	if opts.RunID != "" {
		logger = logger.With().Str("run_id", opts.RunID).Logger()
	}
	return &Driver{opts: opts, logger: logger}
}

// Result is the outcome of one unit.
type Result struct {
	Unit     entry.Unit
	Document *report.Document
	Stats    future.Stats
	// Path is where the sink wrote the report, if anywhere.
	Path string
	// Err is nil on success, ErrNoRoot for a skipped unit, and a *UnitError
	// otherwise.
	Err error
}

// OK reports whether the unit was analyzed and emitted successfully.
func (r Result) OK() bool { return r.Err == nil }

// AnalyzeUnit runs the full pipeline on one unit. It never panics.
func (d *Driver) AnalyzeUnit(ctx context.Context, unit entry.Unit) Result {
	res := Result{Unit: unit}
	logger := d.logger.With().Str("unit", unit.Name).Int("unit_seq", unit.Seq).Logger()

	if unit.Root == nil {
		res.Err = ErrNoRoot
		logger.Debug().Msg("Skipping unit without root")
		return res
	}
	if err := ctx.Err(); err != nil {
		res.Err = d.fail(logger, unit, StageAnalyze, err)
		return res
	}

	coll, err := d.collect(unit)
	if err != nil {
		res.Err = d.fail(logger, unit, StageAnalyze, err)
		return res
	}
	res.Stats = coll.Stats()
	res.Document = report.Build(coll)

	logger.Debug().
		Int("visited", res.Stats.Visited).
		Int("indexed", res.Stats.Indexed).
		Int("fields", res.Stats.Fields).
		Msg("Unit collected")

	if d.opts.Sink != nil {
		path, err := d.opts.Sink.Write(unit, res.Document)
		if err != nil {
			res.Err = d.fail(logger, unit, StageReport, err)
			return res
		}
		res.Path = path
	}

	if d.opts.Recorder != nil {
		if err := d.opts.Recorder.SaveUnit(ctx, d.opts.RunID, unit, res.Document); err != nil {
			res.Err = d.fail(logger, unit, StageStore, err)
			return res
		}
	}

	logger.Info().
		Int("futures", res.Stats.Records).
		Int("state_machines", res.Stats.StateMachines).
		Int("dependencies", res.Stats.Dependencies).
		Str("path", res.Path).
		Msg("Unit analyzed")
	return res
}

// collect builds and resolves the unit's collection, turning a panic into an error.
func (d *Driver) collect(unit entry.Unit) (coll *future.Collection, err error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Trace().Str("stack", string(debug.Stack())).Msg("Recovered panic")
			coll, err = nil, &PanicError{Value: r}
		}
	}()

	coll = future.Collect(unit.Root, d.opts.Classifier)
	future.Resolve(coll)
	return coll, nil
}

func (d *Driver) fail(logger zerolog.Logger, unit entry.Unit, stage string, err error) error {
	uerr := &UnitError{Seq: unit.Seq, Name: unit.Name, Stage: stage, Err: err}
	logger.Warn().Err(err).Str("stage", stage).Msg("Unit analysis failed")
	return uerr
}

// AnalyzeAll analyzes every unit and returns the summary together with the
// per-unit results in input order. Results and counts do not depend on the
// number of workers.
func (d *Driver) AnalyzeAll(ctx context.Context, units []entry.Unit) (Summary, []Result) {
	results := make([]Result, len(units))

	if d.opts.Workers == 1 || len(units) < 2 {
		for i, u := range units {
			results[i] = d.AnalyzeUnit(ctx, u)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(d.opts.Workers)
		for i, u := range units {
			g.Go(func() error {
				results[i] = d.AnalyzeUnit(ctx, u)
				return nil
			})
		}
		// Workers never return errors; failures live in results.
		_ = g.Wait()
	}

	summary := Summarize(results)
	d.logger.Info().
		Int("scanned", summary.Scanned).
		Int("analyzed", summary.Analyzed).
		Int("failed", len(summary.Failures)).
		Int("workers", d.opts.Workers).
		Msg("Analysis complete")
	return summary, results
}

// Summary counts the units of one run.
type Summary struct {
	Scanned  int
	Analyzed int
	Failures []*UnitError
}

// Summarize counts results. Units skipped with ErrNoRoot are not scanned.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		if r.Err == ErrNoRoot {
			continue
		}
		s.Scanned++
		if r.Err == nil {
			s.Analyzed++
			continue
		}
		if uerr, ok := r.Err.(*UnitError); ok {
			s.Failures = append(s.Failures, uerr)
		}
	}
	return s
}

// String renders the two-line summary.
func (s Summary) String() string {
	return fmt.Sprintf("Total compilation units scanned: %d\nSuccessfully analyzed units: %d", s.Scanned, s.Analyzed)
}
