// Package entry defines the debug-info tree consumed by the future analysis.
//
// A tree is a first-child/next-sibling encoding of the entries of one compilation
// unit. Entries expose their tag, their own identifier, and the handful of
// attributes the analysis reads (name, referenced type, member offset, byte size).
// Decoding the container format that produces these trees lives elsewhere
// (see package dwarfload); this package only describes the shape.
package entry

import (
	"debug/dwarf"
	"fmt"
)

// TypeID is an opaque, unit-scoped identifier of a type entry.
type TypeID uint64

// String formats the identifier as a fixed-width hexadecimal token.
func (id TypeID) String() string {
	return fmt.Sprintf("0x%08x", uint64(id))
}

// Entry is one node of a debug-info tree.
//
// Optional attributes report presence through their second return value.
// FirstChild and NextSibling return a nil interface when there is no such entry.
type Entry interface {
	Tag() dwarf.Tag
	ID() TypeID
	Name() (string, bool)
	TypeRef() (TypeID, bool)
	DataOffset() (uint64, bool)
	ByteSize() (uint64, bool)
	FirstChild() Entry
	NextSibling() Entry
}

// Unit is one independently analyzed compilation unit.
type Unit struct {
	// Seq is the position of the unit in its binary, starting at 0.
	Seq int
	// Name is the unit's DW_AT_name, or a synthesized unit@0x... label.
	Name string
	// Root is the unit entry itself. Nil when the unit carries no entries.
	Root Entry
}

// IsStruct reports whether e is a structure type entry.
func IsStruct(e Entry) bool {
	return e != nil && e.Tag() == dwarf.TagStructType
}

// IsMember reports whether e is a structure member entry.
func IsMember(e Entry) bool {
	return e != nil && e.Tag() == dwarf.TagMember
}
