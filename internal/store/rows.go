package store

import "time"

// Table names.
const (
	RunsTable         = "future_runs"
	TypesTable        = "future_types"
	MembersTable      = "future_members"
	DependenciesTable = "future_dependencies"
)

// RunRow is one analyze invocation.
type RunRow struct {
	RunID         string    `duckdb:"run_id,pk"`
	Binary        string    `duckdb:"binary_path,immutable"`
	StartedAt     time.Time `duckdb:"started_at,immutable"`
	UnitsScanned  int       `duckdb:"units_scanned"`
	UnitsAnalyzed int       `duckdb:"units_analyzed"`
}

// TypeRow is one future-like type of one unit.
type TypeRow struct {
	RunID           string `duckdb:"run_id,pk"`
	UnitSeq         int    `duckdb:"unit_seq,pk"`
	Name            string `duckdb:"name,pk"`
	UnitName        string `duckdb:"unit_name"`
	IsStateMachine  bool   `duckdb:"is_state_machine"`
	MemberCount     int    `duckdb:"member_count"`
	DependencyCount int    `duckdb:"dependency_count"`
}

// MemberRow is one member of a stored type, keyed by declaration position.
type MemberRow struct {
	RunID          string `duckdb:"run_id,pk"`
	UnitSeq        int    `duckdb:"unit_seq,pk"`
	TypeName       string `duckdb:"type_name,pk"`
	Position       int    `duckdb:"ordinal,pk"`
	Name           string `duckdb:"name"`
	TypeID         string `duckdb:"type_id"`
	IsStateMachine bool   `duckdb:"is_state_machine"`
	// offset and size are reserved words in DuckDB.
	Offset uint64 `duckdb:"member_offset"`
	Size   uint64 `duckdb:"member_size"`
}

// DependencyRow is one resolved dependency, keyed by discovery position.
type DependencyRow struct {
	RunID      string `duckdb:"run_id,pk"`
	UnitSeq    int    `duckdb:"unit_seq,pk"`
	TypeName   string `duckdb:"type_name,pk"`
	Position   int    `duckdb:"ordinal,pk"`
	Dependency string `duckdb:"dependency"`
}
