package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/coral-mesh/futurescope/internal/duckdb"
	"github.com/coral-mesh/futurescope/internal/report"
)

// ErrNoRuns is returned when the database holds no completed run.
var ErrNoRuns = errors.New("no runs stored")

// TypeFilter narrows ListTypes. Zero fields match everything.
type TypeFilter struct {
	RunID             string
	UnitSeq           *int
	NameLike          string
	StateMachinesOnly bool
	Limit             int
}

// Runs lists stored runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]*RunRow, error) {
	q, args := duckdb.NewQueryBuilder(RunsTable).
		Select(s.runs.Columns()...).
		OrderBy("-started_at", "run_id").
		MustBuild()
	return s.runs.Query(ctx, q, args...)
}

// LatestRun returns the id of the most recently started run.
func (s *Store) LatestRun(ctx context.Context) (string, error) {
	q, args := duckdb.NewQueryBuilder(RunsTable).
		Select("run_id").
		OrderBy("-started_at").
		Limit(1).
		MustBuild()

	var runID string
	err := s.db.QueryRowContext(ctx, q, args...).Scan(&runID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoRuns
	}
	if err != nil {
		return "", fmt.Errorf("failed to find latest run: %w", err)
	}
	return runID, nil
}

// ListTypes returns stored types ordered by run, unit and name.
func (s *Store) ListTypes(ctx context.Context, f TypeFilter) ([]*TypeRow, error) {
	b := duckdb.NewQueryBuilder(TypesTable).
		Select(s.types.Columns()...).
		Eq("run_id", f.RunID)
	if f.UnitSeq != nil {
		b.Eq("unit_seq", *f.UnitSeq)
	}
	if f.NameLike != "" {
		b.Where("name LIKE ?", "%"+f.NameLike+"%")
	}
	if f.StateMachinesOnly {
		b.Eq("is_state_machine", true)
	}
	b.OrderBy("run_id", "unit_seq", "name").Limit(f.Limit)

	q, args, err := b.Build()
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Str("query", duckdb.InterpolateQuery(q, args)).Msg("Listing types")

	rows, err := s.types.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list types: %w", err)
	}
	return rows, nil
}

// Dependencies returns the dependencies of typeName in discovery order, across
// every unit of the run that defines it.
func (s *Store) Dependencies(ctx context.Context, runID, typeName string) ([]*DependencyRow, error) {
	q, args := duckdb.NewQueryBuilder(DependenciesTable).
		Select(s.dependencies.Columns()...).
		Eq("run_id", runID).
		Where("type_name = ?", typeName).
		OrderBy("unit_seq", "ordinal").
		MustBuild()

	rows, err := s.dependencies.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query dependencies of %s: %w", typeName, err)
	}
	return rows, nil
}

// Dependents returns the types that depend on dependency.
func (s *Store) Dependents(ctx context.Context, runID, dependency string) ([]*DependencyRow, error) {
	q, args := duckdb.NewQueryBuilder(DependenciesTable).
		Select(s.dependencies.Columns()...).
		Eq("run_id", runID).
		Where("dependency = ?", dependency).
		OrderBy("unit_seq", "type_name").
		MustBuild()

	rows, err := s.dependencies.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query dependents of %s: %w", dependency, err)
	}
	return rows, nil
}

// Members returns the members of typeName in one unit, in declaration order.
func (s *Store) Members(ctx context.Context, runID string, unitSeq int, typeName string) ([]*MemberRow, error) {
	return s.members.List(ctx, map[string]any{
		"run_id":    runID,
		"unit_seq":  unitSeq,
		"type_name": typeName,
	})
}

// Document rebuilds the report of one stored unit.
func (s *Store) Document(ctx context.Context, runID string, unitSeq int) (*report.Document, error) {
	types, err := s.types.List(ctx, map[string]any{"run_id": runID, "unit_seq": unitSeq})
	if err != nil {
		return nil, fmt.Errorf("failed to load unit %d: %w", unitSeq, err)
	}
	members, err := s.members.List(ctx, map[string]any{"run_id": runID, "unit_seq": unitSeq})
	if err != nil {
		return nil, fmt.Errorf("failed to load unit %d: %w", unitSeq, err)
	}
	deps, err := s.dependencies.List(ctx, map[string]any{"run_id": runID, "unit_seq": unitSeq})
	if err != nil {
		return nil, fmt.Errorf("failed to load unit %d: %w", unitSeq, err)
	}

	// Rows come back in primary key order, so names sort alphabetically and
	// members and dependencies keep their positions.
	doc := &report.Document{Futures: make([]report.Future, 0, len(types))}
	index := make(map[string]int, len(types))
	for _, t := range types {
		index[t.Name] = len(doc.Futures)
		doc.Futures = append(doc.Futures, report.Future{
			Name:           t.Name,
			IsStateMachine: t.IsStateMachine,
			Members:        []report.Member{},
			Dependencies:   []string{},
		})
	}
	for _, m := range members {
		if i, ok := index[m.TypeName]; ok {
			doc.Futures[i].Members = append(doc.Futures[i].Members, report.Member{
				Name:           m.Name,
				TypeID:         m.TypeID,
				IsStateMachine: m.IsStateMachine,
				Offset:         m.Offset,
				Size:           m.Size,
			})
		}
	}
	for _, d := range deps {
		if i, ok := index[d.TypeName]; ok {
			doc.Futures[i].Dependencies = append(doc.Futures[i].Dependencies, d.Dependency)
		}
	}
	return doc, nil
}
