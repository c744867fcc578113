package safe

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFile(t *testing.T) {
	t.Run("reads regular file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("version: \"1\"\n"), 0o644))

		got, err := ReadFile(path, nil)

		require.NoError(t, err)
		assert.Equal(t, "version: \"1\"\n", string(got))
	})

	t.Run("rejects symlink by default", func(t *testing.T) {
		dir := t.TempDir()
		src := filepath.Join(dir, "config.yaml")
		link := filepath.Join(dir, "link.yaml")
		require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))
		require.NoError(t, os.Symlink(src, link))

		_, err := ReadFile(link, nil)

		assert.ErrorContains(t, err, "symlink")
	})

	t.Run("allows symlink when enabled", func(t *testing.T) {
		dir := t.TempDir()
		src := filepath.Join(dir, "config.yaml")
		link := filepath.Join(dir, "link.yaml")
		require.NoError(t, os.WriteFile(src, []byte("linked"), 0o644))
		require.NoError(t, os.Symlink(src, link))

		got, err := ReadFile(link, &ReadOptions{AllowSymlinks: true})

		require.NoError(t, err)
		assert.Equal(t, "linked", string(got))
	})

	t.Run("rejects directory", func(t *testing.T) {
		_, err := ReadFile(t.TempDir(), nil)
		assert.ErrorContains(t, err, "not a regular file")
	})

	t.Run("rejects oversized file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "big.yaml")
		require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("a"), 128), 0o644))

		_, err := ReadFile(path, &ReadOptions{MaxSize: 64})

		assert.ErrorContains(t, err, "exceeds maximum allowed size of 64 bytes")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadFile(filepath.Join(t.TempDir(), "nope.yaml"), nil)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestClose(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	Close(closerFunc(func() error { return nil }), logger, "close ok")
	assert.Empty(t, buf.String())

	Close(closerFunc(func() error { return errors.New("busy") }), logger, "failed to close store")
	assert.Contains(t, buf.String(), "failed to close store")
	assert.Contains(t, buf.String(), "busy")
}
