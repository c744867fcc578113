package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/zeebo/xxh3"

	"github.com/coral-mesh/futurescope/internal/constants"
	"github.com/coral-mesh/futurescope/internal/entry"
)

// ErrEmptyPrefix is returned for a sink without a file name prefix.
var ErrEmptyPrefix = errors.New("report prefix must not be empty")

// Filename returns the report file name of a unit:
// <prefix>_<seq:04d>_<xxh3(unit name):016x>.json. The sequence number keeps
// names unique within a run; the hash keeps them stable across runs.
func Filename(prefix string, unit entry.Unit) string {
	return fmt.Sprintf("%s_%04d_%016x%s", prefix, unit.Seq, xxh3.HashString(unit.Name), constants.ReportExtension)
}

// FileSink writes one JSON report per unit into Dir, and a DOT graph next to
// it when DOT is set.
type FileSink struct {
	Dir    string
	Prefix string
	DOT    bool
	Logger zerolog.Logger
}

// Validate checks the prefix can be used as a file name component.
func (s *FileSink) Validate() error {
	if s.Prefix == "" {
		return ErrEmptyPrefix
	}
	if strings.ContainsAny(s.Prefix, `/\`) {
		return fmt.Errorf("report prefix %q must not contain a path separator", s.Prefix)
	}
	return nil
}

// Write stores doc and returns the report path. The file is written under a
// temporary name and renamed, so a failed write never leaves a partial report.
func (s *FileSink) Write(unit entry.Unit, doc *Document) (string, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	dir := s.Dir
	if dir == "" {
		dir = constants.DefaultOutputDir
	}
	if err := os.MkdirAll(dir, constants.DefaultDirMode); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, Filename(s.Prefix, unit))
	if err := writeAtomic(path, func(f *os.File) error { return Encode(f, doc) }); err != nil {
		return "", err
	}

	if s.DOT {
		dotPath := strings.TrimSuffix(path, constants.ReportExtension) + constants.DOTExtension
		if err := writeAtomic(dotPath, func(f *os.File) error { return WriteDOT(f, unit.Name, doc) }); err != nil {
			return path, err
		}
	}

	s.Logger.Debug().Str("path", path).Str("unit", unit.Name).Msg("Report written")
	return path, nil
}

func writeAtomic(path string, write func(f *os.File) error) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Chmod(constants.DefaultFileMode); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to move report into place: %w", err)
	}
	return nil
}
