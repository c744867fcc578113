package dwarfload

import (
	"debug/dwarf"
	"fmt"
	"strings"

	"github.com/coral-mesh/futurescope/internal/entry"
)

// UnitFilter selects units by sequence number and name.
type UnitFilter func(seq int, name string) bool

// NameContains keeps units whose name contains substr. An empty substr keeps all.
func NameContains(substr string) UnitFilter {
	return func(_ int, name string) bool {
		return strings.Contains(name, substr)
	}
}

// Index keeps only the unit with the given sequence number.
func Index(seq int) UnitFilter {
	return func(s int, _ string) bool {
		return s == seq
	}
}

// All keeps units accepted by every non-nil filter.
func All(filters ...UnitFilter) UnitFilter {
	return func(seq int, name string) bool {
		for _, f := range filters {
			if f != nil && !f(seq, name) {
				return false
			}
		}
		return true
	}
}

// entryReader is the part of *dwarf.Reader the tree builder needs.
type entryReader interface {
	Next() (*dwarf.Entry, error)
	SkipChildren()
}

// ReadUnits rebuilds the first-child/next-sibling tree of every top-level
// entry in the stream. Sequence numbers count every unit, kept or not, so a
// unit keeps its number under any filter.
func ReadUnits(r entryReader, keep UnitFilter) ([]entry.Unit, error) {
	var (
		units []entry.Unit
		open  []*entry.Node
		seq   int
	)

	for {
		e, err := r.Next()
		if err != nil {
			return units, fmt.Errorf("failed to read entry after unit %d: %w", seq, err)
		}
		if e == nil {
			return units, nil
		}

		// A null entry closes the innermost open sibling chain.
		if e.Tag == 0 {
			if len(open) > 0 {
				open = open[:len(open)-1]
			}
			continue
		}

		n := entry.NewNode(e)
		if len(open) == 0 {
			name := unitName(e)
			cur := seq
			seq++
			if keep != nil && !keep(cur, name) {
				if e.Children {
					r.SkipChildren()
				}
				continue
			}
			units = append(units, entry.Unit{Seq: cur, Name: name, Root: n})
		} else {
			open[len(open)-1].AppendChild(n)
		}

		if e.Children {
			open = append(open, n)
		}
	}
}

func unitName(e *dwarf.Entry) string {
	if name, ok := e.Val(dwarf.AttrName).(string); ok && name != "" {
		return name
	}
	return fmt.Sprintf("unit@0x%x", uint64(e.Offset))
}
