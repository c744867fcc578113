package dwarfload

import (
	"debug/dwarf"
	"debug/elf"
	"debug/macho"
	"debug/pe"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/coral-mesh/futurescope/internal/entry"
)

var (
	// ErrNoDWARF is returned when the binary was recognized but carries no debug info.
	ErrNoDWARF = errors.New("binary has no DWARF debug info")
	// ErrUnknownFormat is returned when the file is not ELF, Mach-O or PE.
	ErrUnknownFormat = errors.New("unrecognized binary format")
)

// Format names the container a Binary was read from.
type Format string

const (
	FormatELF   Format = "elf"
	FormatMachO Format = "macho"
	FormatPE    Format = "pe"
)

// Binary is an opened executable or object file with its DWARF data.
type Binary struct {
	path   string
	format Format
	data   *dwarf.Data
	closer io.Closer
	logger zerolog.Logger
}

type opener struct {
	format Format
	open   func(path string) (io.Closer, *dwarf.Data, error)
}

// Formats are tried in order; a format error moves on to the next one.
var openers = []opener{
	{FormatELF, func(p string) (io.Closer, *dwarf.Data, error) {
		f, err := elf.Open(p)
		if err != nil {
			return nil, nil, err
		}
		d, err := f.DWARF()
		return f, d, err
	}},
	{FormatMachO, func(p string) (io.Closer, *dwarf.Data, error) {
		f, err := macho.Open(p)
		if err != nil {
			return nil, nil, err
		}
		d, err := f.DWARF()
		return f, d, err
	}},
	{FormatPE, func(p string) (io.Closer, *dwarf.Data, error) {
		f, err := pe.Open(p)
		if err != nil {
			return nil, nil, err
		}
		d, err := f.DWARF()
		return f, d, err
	}},
}

// Open detects the binary format of path and loads its DWARF data.
func Open(path string, logger zerolog.Logger) (*Binary, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open binary: %w", err)
	}
	logger = logger.With().Str("component", "dwarfload").Str("binary", path).Logger()

	for _, o := range openers {
		closer, data, err := o.open(path)
		if closer == nil {
			logger.Trace().Err(err).Str("format", string(o.format)).Msg("Format not recognized")
			continue
		}
		if err != nil {
			_ = closer.Close()
			return nil, fmt.Errorf("%s %s: %w: %v", o.format, path, ErrNoDWARF, err)
		}

		logger.Debug().Str("format", string(o.format)).Msg("Loaded DWARF data")
		return &Binary{
			path:   path,
			format: o.format,
			data:   data,
			closer: closer,
			logger: logger,
		}, nil
	}

	return nil, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
}

// Path returns the file the binary was opened from.
func (b *Binary) Path() string { return b.path }

// Format returns the detected container format.
func (b *Binary) Format() Format { return b.format }

// Units decodes every compilation unit accepted by keep into an entry tree.
// A nil keep accepts all units. Rejected units are skipped without decoding
// their children.
//
// On a decoding error the units read so far are returned with the error.
func (b *Binary) Units(keep UnitFilter) ([]entry.Unit, error) {
	units, err := ReadUnits(b.data.Reader(), keep)
	b.logger.Debug().Int("units", len(units)).Msg("Decoded compilation units")
	return units, err
}

// Close releases the underlying file.
func (b *Binary) Close() error {
	if b.closer == nil {
		return nil
	}
	err := b.closer.Close()
	b.closer = nil
	return err
}
