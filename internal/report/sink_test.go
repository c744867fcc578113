package report

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coral-mesh/futurescope/internal/entry"
	"github.com/coral-mesh/futurescope/internal/testutil"
)

func TestFilename(t *testing.T) {
	unit := entry.Unit{Seq: 7, Name: "src/main.rs"}

	name := Filename("rust_futures", unit)
	assert.Regexp(t, regexp.MustCompile(`^rust_futures_0007_[0-9a-f]{16}\.json$`), name)
	assert.Equal(t, name, Filename("rust_futures", unit))

	// Same name, different sequence.
	assert.NotEqual(t, name, Filename("rust_futures", entry.Unit{Seq: 8, Name: "src/main.rs"}))
	// Same sequence, different name.
	assert.NotEqual(t, name, Filename("rust_futures", entry.Unit{Seq: 7, Name: "src/lib.rs"}))
}

func TestFileSink_Write(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	sink := &FileSink{Dir: dir, Prefix: "rust_futures", Logger: testutil.NewTestLogger(t)}
	unit := entry.Unit{Seq: 1, Name: "src/main.rs"}

	path, err := sink.Write(unit, sampleDocument())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, Filename("rust_futures", unit)), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	doc, err := Decode(f)
	require.NoError(t, err)
	if diff := cmp.Diff(sampleDocument(), doc); diff != "" {
		t.Errorf("written report mismatch (-want +got):\n%s", diff)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temporary files left behind")
}

func TestFileSink_WriteDOT(t *testing.T) {
	dir := t.TempDir()
	sink := &FileSink{Dir: dir, Prefix: "p", DOT: true, Logger: testutil.NewTestLogger(t)}

	path, err := sink.Write(entry.Unit{Seq: 0, Name: "a.rs"}, sampleDocument())
	require.NoError(t, err)

	dot, err := os.ReadFile(strings.TrimSuffix(path, ".json") + ".dot")
	require.NoError(t, err)
	assert.Contains(t, string(dot), `"GenFuture" -> "ReadFutureState";`)
}

func TestFileSink_OverwritesSameUnit(t *testing.T) {
	dir := t.TempDir()
	sink := &FileSink{Dir: dir, Prefix: "p", Logger: testutil.NewTestLogger(t)}
	unit := entry.Unit{Seq: 0, Name: "a.rs"}

	_, err := sink.Write(unit, sampleDocument())
	require.NoError(t, err)
	path, err := sink.Write(unit, &Document{Futures: []Future{}})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "GenFuture")
}

func TestFileSink_Errors(t *testing.T) {
	logger := testutil.NewTestLogger(t)
	unit := entry.Unit{Seq: 0, Name: "a.rs"}

	t.Run("empty prefix", func(t *testing.T) {
		sink := &FileSink{Dir: t.TempDir(), Logger: logger}
		_, err := sink.Write(unit, sampleDocument())
		assert.ErrorIs(t, err, ErrEmptyPrefix)
	})

	t.Run("prefix with separator", func(t *testing.T) {
		sink := &FileSink{Dir: t.TempDir(), Prefix: "../escape", Logger: logger}
		_, err := sink.Write(unit, sampleDocument())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "path separator")
	})

	t.Run("dir is a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(file, nil, 0o600))

		sink := &FileSink{Dir: file, Prefix: "p", Logger: logger}
		_, err := sink.Write(unit, sampleDocument())
		require.Error(t, err)
	})
}
