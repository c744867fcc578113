package dwarfload

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coral-mesh/futurescope/internal/testutil"
)

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope"), testutil.NewTestLogger(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestOpen_UnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("definitely not an executable"), 0o600))

	_, err := Open(path, testutil.NewTestLogger(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestOpen_TestBinary(t *testing.T) {
	exe, err := os.Executable()
	require.NoError(t, err)

	bin, err := Open(exe, testutil.NewTestLogger(t))
	if errors.Is(err, ErrNoDWARF) {
		t.Skip("test binary was built without DWARF")
	}
	require.NoError(t, err)
	defer func() { _ = bin.Close() }()

	assert.Equal(t, exe, bin.Path())
	assert.Contains(t, []Format{FormatELF, FormatMachO, FormatPE}, bin.Format())

	units, err := bin.Units(NameContains("internal/dwarfload"))
	require.NoError(t, err)
	if len(units) == 0 {
		// go test links without debug info unless the binary is kept.
		t.Skip("test binary carries no compilation units")
	}
	for _, u := range units {
		assert.True(t, strings.Contains(u.Name, "internal/dwarfload"), u.Name)
		assert.NotNil(t, u.Root)
	}

	// Closing twice is harmless.
	require.NoError(t, bin.Close())
	require.NoError(t, bin.Close())
}
