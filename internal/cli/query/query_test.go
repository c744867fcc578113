package query

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coral-mesh/futurescope/internal/entry"
	"github.com/coral-mesh/futurescope/internal/report"
	"github.com/coral-mesh/futurescope/internal/store"
	"github.com/coral-mesh/futurescope/internal/testutil"
)

func sampleDocument() *report.Document {
	return &report.Document{Futures: []report.Future{
		{
			Name:           "FetchFutureState",
			IsStateMachine: true,
			Members: []report.Member{
				{Name: "inner", TypeID: "0x00000200", Offset: 8, Size: 16},
			},
			Dependencies: []string{"ReadFutureState"},
		},
		{
			Name:         "GenFuture",
			Members:      []report.Member{{Name: "sm", TypeID: "0x00000300"}},
			Dependencies: []string{"ReadFutureState"},
		},
		{
			Name:           "ReadFutureState",
			IsStateMachine: true,
			Members:        []report.Member{},
			Dependencies:   []string{},
		},
	}}
}

// seedDatabase stores two runs; run-2 is the latest.
func seedDatabase(t *testing.T) string {
	t.Helper()
	ctx, cancel := testutil.NewTestContext()
	defer cancel()

	path := filepath.Join(t.TempDir(), "futures.duckdb")
	st, err := store.Open(ctx, path, testutil.NewTestLogger(t))
	require.NoError(t, err)
	defer st.Close()

	now := time.Now().UTC()
	for i, runID := range []string{"run-1", "run-2"} {
		require.NoError(t, st.SaveRun(ctx, &store.RunRow{
			RunID:         runID,
			Binary:        "/bin/server",
			StartedAt:     now.Add(time.Duration(i-1) * 48 * time.Hour),
			UnitsScanned:  1,
			UnitsAnalyzed: 1,
		}))
		unit := entry.Unit{Seq: 0, Name: "src/main.rs"}
		require.NoError(t, st.SaveUnit(ctx, runID, unit, sampleDocument()))
	}
	return path
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	t.Setenv("FUTURESCOPE_CONFIG", t.TempDir())

	var out bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	return out.String(), err
}

func TestTypesCmd(t *testing.T) {
	db := seedDatabase(t)

	out, err := execute(t, NewTypesCmd(), "--db", db, "--state-machines")

	require.NoError(t, err)
	assert.Contains(t, out, "STATE MACHINE")
	assert.Contains(t, out, "FetchFutureState")
	assert.Contains(t, out, "ReadFutureState")
	assert.NotContains(t, out, "GenFuture")
}

func TestTypesCmd_JSONAndName(t *testing.T) {
	db := seedDatabase(t)

	out, err := execute(t, NewTypesCmd(), "--db", db, "--run", "run-1", "--name", "Gen", "-o", "json")

	require.NoError(t, err)
	assert.JSONEq(t, `[{"unit_seq":0,"unit":"src/main.rs","name":"GenFuture","is_state_machine":false,"members":1,"dependencies":1}]`, out)
}

func TestTypesCmd_NoMatches(t *testing.T) {
	db := seedDatabase(t)

	out, err := execute(t, NewTypesCmd(), "--db", db, "--unit", "7")

	require.NoError(t, err)
	assert.Equal(t, "No future types found in run run-2.\n", out)
}

func TestDepsCmd(t *testing.T) {
	db := seedDatabase(t)

	out, err := execute(t, NewDepsCmd(), "--db", db, "-o", "csv", "FetchFutureState")

	require.NoError(t, err)
	assert.Equal(t, "SEQ,TYPE,ORDER,DEPENDENCY\n0,FetchFutureState,0,ReadFutureState\n", out)
}

func TestDepsCmd_Reverse(t *testing.T) {
	db := seedDatabase(t)

	out, err := execute(t, NewDepsCmd(), "--db", db, "--reverse", "-o", "csv", "ReadFutureState")

	require.NoError(t, err)
	assert.Equal(t, "SEQ,TYPE,ORDER,DEPENDENCY\n0,FetchFutureState,0,ReadFutureState\n0,GenFuture,0,ReadFutureState\n", out)
}

func TestRunsCmd_Since(t *testing.T) {
	db := seedDatabase(t)

	out, err := execute(t, NewRunsCmd(), "--db", db, "--since", "24h")

	require.NoError(t, err)
	assert.Contains(t, out, "run-2")
	assert.NotContains(t, out, "run-1")
}

func TestUnitCmd_Tree(t *testing.T) {
	db := seedDatabase(t)

	out, err := execute(t, NewUnitCmd(), "--db", db, "--format", "tree", "0")

	require.NoError(t, err)
	assert.Contains(t, out, "FetchFutureState [state machine]")
	assert.Contains(t, out, "└─ ReadFutureState")
}

func TestUnitCmd_InvalidSeq(t *testing.T) {
	_, err := execute(t, NewUnitCmd(), "--db", "unused.duckdb", "first")
	assert.ErrorContains(t, err, "invalid unit sequence number")
}

func TestQueryCmd_NoDatabase(t *testing.T) {
	_, err := execute(t, NewTypesCmd())
	assert.ErrorContains(t, err, "no database configured")
}

func TestQueryCmd_RejectsFormat(t *testing.T) {
	_, err := execute(t, NewRunsCmd(), "--db", "x.duckdb", "-o", "yaml")
	assert.ErrorContains(t, err, "unsupported format")
}
