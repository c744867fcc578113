// Package store persists unit reports in DuckDB and reads them back.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/coral-mesh/futurescope/internal/duckdb"
	"github.com/coral-mesh/futurescope/internal/entry"
	"github.com/coral-mesh/futurescope/internal/errors"
	"github.com/coral-mesh/futurescope/internal/report"
	"github.com/coral-mesh/futurescope/internal/retry"
)

// Store is safe for concurrent use by unit workers.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger

	runs         *duckdb.Table[RunRow]
	types        *duckdb.Table[TypeRow]
	members      *duckdb.Table[MemberRow]
	dependencies *duckdb.Table[DependencyRow]
}

// Open opens or creates the database at path and ensures the schema exists.
func Open(ctx context.Context, path string, logger zerolog.Logger) (*Store, error) {
	s, err := open(path, logger)
	if err != nil {
		return nil, err
	}
	if err := s.migrate(ctx); err != nil {
		_ = s.db.Close()
		return nil, err
	}
	return s, nil
}

// OpenReadOnly opens an existing database for queries.
func OpenReadOnly(path string, logger zerolog.Logger) (*Store, error) {
	return open(path, logger, duckdb.ReadOnly())
}

func open(path string, logger zerolog.Logger, opts ...duckdb.Option) (*Store, error) {
	db, err := duckdb.OpenDB(path, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	return &Store{
		db:           db,
		logger:       logger.With().Str("component", "store").Logger(),
		runs:         duckdb.NewTable[RunRow](db, RunsTable),
		types:        duckdb.NewTable[TypeRow](db, TypesTable),
		members:      duckdb.NewTable[MemberRow](db, MembersTable),
		dependencies: duckdb.NewTable[DependencyRow](db, DependenciesTable),
	}, nil
}

func (s *Store) migrate(ctx context.Context) error {
	for _, create := range []func(context.Context) error{
		s.runs.CreateTable,
		s.types.CreateTable,
		s.members.CreateTable,
		s.dependencies.CreateTable,
	} {
		if err := create(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun inserts or updates the run row.
func (s *Store) SaveRun(ctx context.Context, run *RunRow) error {
	if err := s.runs.Upsert(ctx, run); err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.RunID, err)
	}
	return nil
}

// SaveUnit replaces everything stored for (runID, unit.Seq) with doc.
//
// Old rows are cleared in one transaction and the new rows written in a
// second, because DuckDB rejects re-inserting a deleted key inside the
// transaction that deleted it. A failure between the two leaves the unit
// empty until it is saved again.
func (s *Store) SaveUnit(ctx context.Context, runID string, unit entry.Unit, doc *report.Document) error {
	types, members, deps := rows(runID, unit, doc)

	err := retry.Do(ctx, retry.Conflicts(), func() error {
		if err := s.clearUnit(ctx, runID, unit.Seq); err != nil {
			return err
		}
		return s.insertUnit(ctx, types, members, deps)
	}, duckdb.IsTransactionConflict)
	if err != nil {
		return fmt.Errorf("failed to store unit %d: %w", unit.Seq, err)
	}

	s.logger.Debug().
		Str("run_id", runID).
		Int("unit_seq", unit.Seq).
		Int("types", len(types)).
		Int("members", len(members)).
		Int("dependencies", len(deps)).
		Msg("Unit stored")
	return nil
}

func (s *Store) clearUnit(ctx context.Context, runID string, seq int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer errors.DeferRollback(s.logger, tx)

	key := map[string]any{"run_id": runID, "unit_seq": seq}
	if _, err := duckdb.NewTable[DependencyRow](tx, DependenciesTable).Delete(ctx, key); err != nil {
		return fmt.Errorf("clear dependencies: %w", err)
	}
	if _, err := duckdb.NewTable[MemberRow](tx, MembersTable).Delete(ctx, key); err != nil {
		return fmt.Errorf("clear members: %w", err)
	}
	if _, err := duckdb.NewTable[TypeRow](tx, TypesTable).Delete(ctx, key); err != nil {
		return fmt.Errorf("clear types: %w", err)
	}
	return tx.Commit()
}

func (s *Store) insertUnit(ctx context.Context, types []*TypeRow, members []*MemberRow, deps []*DependencyRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer errors.DeferRollback(s.logger, tx)

	if err := duckdb.NewTable[TypeRow](tx, TypesTable).BatchUpsert(ctx, types); err != nil {
		return err
	}
	if err := duckdb.NewTable[MemberRow](tx, MembersTable).BatchUpsert(ctx, members); err != nil {
		return err
	}
	if err := duckdb.NewTable[DependencyRow](tx, DependenciesTable).BatchUpsert(ctx, deps); err != nil {
		return err
	}
	return tx.Commit()
}

func rows(runID string, unit entry.Unit, doc *report.Document) ([]*TypeRow, []*MemberRow, []*DependencyRow) {
	var (
		types   = make([]*TypeRow, 0, len(doc.Futures))
		members []*MemberRow
		deps    []*DependencyRow
	)
	for _, f := range doc.Futures {
		types = append(types, &TypeRow{
			RunID:           runID,
			UnitSeq:         unit.Seq,
			Name:            f.Name,
			UnitName:        unit.Name,
			IsStateMachine:  f.IsStateMachine,
			MemberCount:     len(f.Members),
			DependencyCount: len(f.Dependencies),
		})
		for i, m := range f.Members {
			members = append(members, &MemberRow{
				RunID:          runID,
				UnitSeq:        unit.Seq,
				TypeName:       f.Name,
				Position:       i,
				Name:           m.Name,
				TypeID:         m.TypeID,
				IsStateMachine: m.IsStateMachine,
				Offset:         m.Offset,
				Size:           m.Size,
			})
		}
		for i, d := range f.Dependencies {
			deps = append(deps, &DependencyRow{
				RunID:      runID,
				UnitSeq:    unit.Seq,
				TypeName:   f.Name,
				Position:   i,
				Dependency: d,
			})
		}
	}
	return types, members, deps
}
