package analyze

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coral-mesh/futurescope/internal/analyzer"
	"github.com/coral-mesh/futurescope/internal/config"
	"github.com/coral-mesh/futurescope/internal/dwarfload"
	"github.com/coral-mesh/futurescope/internal/report"
	"github.com/coral-mesh/futurescope/internal/store"
	"github.com/coral-mesh/futurescope/internal/testutil"
)

func TestApplyOverrides_OnlyChangedFlags(t *testing.T) {
	opts := &options{}
	cmd := newAnalyzeCmd(opts)
	require.NoError(t, cmd.ParseFlags([]string{"--prefix", "svc", "--workers", "4", "--dot", "--unit", "main.rs"}))

	cfg := config.Default()
	cfg.Output.Dir = "from-config"
	cfg.Storage.Database = "from-config.duckdb"

	applyOverrides(cmd.Flags(), cfg, opts)

	assert.Equal(t, "svc", cfg.Output.Prefix)
	assert.Equal(t, 4, cfg.Analysis.Workers)
	assert.True(t, cfg.Output.DOT)
	assert.Equal(t, "main.rs", cfg.Analysis.UnitFilter)
	assert.Equal(t, "from-config", cfg.Output.Dir, "unset flag keeps config value")
	assert.Equal(t, "from-config.duckdb", cfg.Storage.Database)
}

func TestApplyOverrides_ExplicitZeroValues(t *testing.T) {
	opts := &options{}
	cmd := newAnalyzeCmd(opts)
	require.NoError(t, cmd.ParseFlags([]string{"--dot=false", "--db", ""}))

	cfg := config.Default()
	cfg.Output.DOT = true
	cfg.Storage.Database = "futures.duckdb"

	applyOverrides(cmd.Flags(), cfg, opts)

	assert.False(t, cfg.Output.DOT)
	assert.False(t, cfg.StorageEnabled())
}

func TestUnitFilter(t *testing.T) {
	cfg := config.Default()
	assert.Nil(t, unitFilter(cfg, nil))

	cfg.Analysis.UnitFilter = "lib"
	keep := unitFilter(cfg, nil)
	assert.True(t, keep(9, "src/lib.rs"))
	assert.False(t, keep(0, "src/main.rs"))

	idx := 9
	keep = unitFilter(cfg, &idx)
	assert.True(t, keep(9, "src/lib.rs"))
	assert.False(t, keep(8, "src/lib.rs"))
}

func TestSingleDocument(t *testing.T) {
	doc := &report.Document{Futures: []report.Future{}}

	assert.Nil(t, singleDocument(nil))
	assert.Same(t, doc, singleDocument([]analyzer.Result{
		{Document: doc},
		{Err: analyzer.ErrNoRoot},
	}))
	assert.Nil(t, singleDocument([]analyzer.Result{{Document: doc}, {Document: doc}}))
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	s := analyzer.Summary{
		Scanned:  3,
		Analyzed: 2,
		Failures: []*analyzer.UnitError{{Seq: 1, Name: "src/bad.rs", Stage: analyzer.StageReport, Err: errors.New("disk full")}},
	}

	require.NoError(t, renderSummary(&buf, "run-1", s))

	out := buf.String()
	assert.Contains(t, out, "Rust Future analysis complete.")
	assert.Contains(t, out, "Total compilation units scanned: 3\nSuccessfully analyzed units: 2\n")
	assert.Contains(t, out, "unit 1 (src/bad.rs): report: disk full")
	assert.Contains(t, out, "run-1")
}

// selfBinary returns the running test binary, skipping when it has no DWARF.
func selfBinary(t *testing.T) string {
	t.Helper()
	path, err := os.Executable()
	require.NoError(t, err)

	bin, err := dwarfload.Open(path, testutil.NewTestLogger(t))
	if errors.Is(err, dwarfload.ErrNoDWARF) || errors.Is(err, dwarfload.ErrUnknownFormat) {
		t.Skipf("test binary has no usable debug info: %v", err)
	}
	require.NoError(t, err)
	units, err := bin.Units(dwarfload.Index(0))
	require.NoError(t, bin.Close())
	if err != nil || len(units) == 0 || units[0].Root == nil {
		t.Skip("test binary has no decodable units")
	}
	return path
}

func TestRun_SingleUnitWithStore(t *testing.T) {
	path := selfBinary(t)
	ctx, cancel := testutil.NewTestContext()
	defer cancel()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Output.Dir = filepath.Join(dir, "reports")
	cfg.Storage.Database = filepath.Join(dir, "futures.duckdb")
	idx := 0

	var out bytes.Buffer
	err := run(ctx, &out, testutil.NewTestLogger(t), cfg, path, &idx, report.FormatText)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Total compilation units scanned: 1\nSuccessfully analyzed units: 1")

	files, err := filepath.Glob(filepath.Join(cfg.Output.Dir, "rust_futures_0000_*.json"))
	require.NoError(t, err)
	assert.Len(t, files, 1)

	st, err := store.OpenReadOnly(cfg.Storage.Database, testutil.NewTestLogger(t))
	require.NoError(t, err)
	defer st.Close()

	runs, err := st.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 1, runs[0].UnitsScanned)
	assert.Equal(t, 1, runs[0].UnitsAnalyzed)
	assert.Equal(t, path, runs[0].Binary)
}

func TestRun_NoMatchingUnit(t *testing.T) {
	path := selfBinary(t)

	cfg := config.Default()
	cfg.Output.Dir = t.TempDir()
	cfg.Analysis.UnitFilter = "no-such-unit-name-anywhere"

	err := run(t.Context(), &bytes.Buffer{}, testutil.NewTestLogger(t), cfg, path, nil, report.FormatText)
	assert.ErrorContains(t, err, "no compilation unit matches")
}

func TestRun_MissingBinary(t *testing.T) {
	cfg := config.Default()
	cfg.Output.Dir = t.TempDir()

	err := run(t.Context(), &bytes.Buffer{}, testutil.NewTestLogger(t), cfg, filepath.Join(t.TempDir(), "nope"), nil, report.FormatText)
	assert.Error(t, err)
}

func TestAnalyzeCmd_RejectsInvalidConfig(t *testing.T) {
	t.Setenv("FUTURESCOPE_CONFIG", t.TempDir())
	cmd := NewAnalyzeCmd()
	cmd.SetArgs([]string{"--workers", "0", "bin"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()

	assert.ErrorContains(t, err, "analysis.workers")
}

func TestAnalyzeCmd_RejectsUnknownFormat(t *testing.T) {
	t.Setenv("FUTURESCOPE_CONFIG", t.TempDir())
	cmd := NewAnalyzeCmd()
	cmd.SetArgs([]string{"--format", "yaml", "bin"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()

	assert.Error(t, err)
}
