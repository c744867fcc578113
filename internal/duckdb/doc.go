// Package duckdb wraps the DuckDB driver with a small ORM and a SELECT builder.
//
// # ORM
//
// Table maps a tagged struct to a table, derives its DDL and writes rows with
// upsert semantics:
//
//	type TypeRow struct {
//	    RunID string `duckdb:"run_id,pk"`
//	    Name  string `duckdb:"name,pk"`
//	    Size  uint64 `duckdb:"size"`
//	}
//
//	table := duckdb.NewTable[TypeRow](db, "types")
//	err := table.CreateTable(ctx)
//	err = table.BatchUpsert(ctx, rows)
//
// # Query Builder
//
//	query, args, err := duckdb.NewQueryBuilder("types").
//	    Select("run_id", "name").
//	    Eq("run_id", runID).
//	    OrderBy("-unit_seq").
//	    Limit(100).
//	    Build()
//
// The builder only generates SQL; empty string filters are skipped so unset
// CLI flags act as wildcards.
package duckdb
