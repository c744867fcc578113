package testutil

import (
	"debug/dwarf"

	"github.com/coral-mesh/futurescope/internal/entry"
)

// Raw builds a node with the given tag, offset and attribute fields.
func Raw(tag dwarf.Tag, off dwarf.Offset, fields ...dwarf.Field) *entry.Node {
	return entry.NewNode(&dwarf.Entry{
		Offset:   off,
		Tag:      tag,
		Children: false,
		Field:    fields,
	})
}

// NameField returns a DW_AT_name field.
func NameField(name string) dwarf.Field {
	return dwarf.Field{Attr: dwarf.AttrName, Val: name, Class: dwarf.ClassString}
}

// TypeField returns a DW_AT_type reference field.
func TypeField(ref dwarf.Offset) dwarf.Field {
	return dwarf.Field{Attr: dwarf.AttrType, Val: ref, Class: dwarf.ClassReference}
}

// OffsetField returns a constant DW_AT_data_member_location field.
func OffsetField(off int64) dwarf.Field {
	return dwarf.Field{Attr: dwarf.AttrDataMemberLoc, Val: off, Class: dwarf.ClassConstant}
}

// SizeField returns a DW_AT_byte_size field.
func SizeField(size int64) dwarf.Field {
	return dwarf.Field{Attr: dwarf.AttrByteSize, Val: size, Class: dwarf.ClassConstant}
}

// Struct builds a named structure type at off with the given children.
func Struct(off dwarf.Offset, name string, children ...*entry.Node) *entry.Node {
	n := Raw(dwarf.TagStructType, off, NameField(name))
	return With(n, children...)
}

// Member builds a named member referencing the type at ref.
func Member(off dwarf.Offset, name string, ref dwarf.Offset) *entry.Node {
	return Raw(dwarf.TagMember, off, NameField(name), TypeField(ref))
}

// MemberAt builds a member carrying offset and size attributes.
func MemberAt(off dwarf.Offset, name string, ref dwarf.Offset, offset, size int64) *entry.Node {
	return Raw(dwarf.TagMember, off, NameField(name), TypeField(ref), OffsetField(offset), SizeField(size))
}

// CompileUnit builds a unit root holding the given top-level entries.
func CompileUnit(name string, children ...*entry.Node) *entry.Node {
	return With(Raw(dwarf.TagCompileUnit, 0, NameField(name)), children...)
}

// Namespace builds a namespace entry, the usual container of Rust types.
func Namespace(off dwarf.Offset, name string, children ...*entry.Node) *entry.Node {
	return With(Raw(dwarf.TagNamespace, off, NameField(name)), children...)
}

// With appends children to n and returns n.
func With(n *entry.Node, children ...*entry.Node) *entry.Node {
	if len(children) > 0 {
		n.Raw().Children = true
	}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}
