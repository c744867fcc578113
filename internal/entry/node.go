package entry

import (
	"debug/dwarf"
	"fmt"
)

// Node is the concrete Entry backed by a decoded *dwarf.Entry.
type Node struct {
	raw     *dwarf.Entry
	child   *Node
	last    *Node
	sibling *Node
}

var _ Entry = (*Node)(nil)

// NewNode wraps a decoded entry. The node starts with no children or siblings.
func NewNode(e *dwarf.Entry) *Node {
	return &Node{raw: e}
}

// AppendChild links c as the last child of n.
func (n *Node) AppendChild(c *Node) {
	if n.child == nil {
		n.child = c
	} else {
		n.last.sibling = c
	}
	n.last = c
}

// Raw returns the wrapped entry.
func (n *Node) Raw() *dwarf.Entry { return n.raw }

func (n *Node) Tag() dwarf.Tag { return n.raw.Tag }

func (n *Node) ID() TypeID { return TypeID(n.raw.Offset) }

func (n *Node) Name() (string, bool) {
	name, ok := maybeAttr[string](n.raw, dwarf.AttrName)
	return name, ok
}

func (n *Node) TypeRef() (TypeID, bool) {
	off, ok := maybeAttr[dwarf.Offset](n.raw, dwarf.AttrType)
	if !ok {
		return 0, false
	}
	return TypeID(off), true
}

// DataOffset reads DW_AT_data_member_location in its constant form. Location
// expressions are reported as absent.
func (n *Node) DataOffset() (uint64, bool) {
	return maybeUnsigned(n.raw, dwarf.AttrDataMemberLoc)
}

func (n *Node) ByteSize() (uint64, bool) {
	return maybeUnsigned(n.raw, dwarf.AttrByteSize)
}

func (n *Node) FirstChild() Entry {
	if n.child == nil {
		return nil
	}
	return n.child
}

func (n *Node) NextSibling() Entry {
	if n.sibling == nil {
		return nil
	}
	return n.sibling
}

func (n *Node) String() string {
	name, _ := n.Name()
	return fmt.Sprintf("%s %q @%s", n.raw.Tag, name, n.ID())
}

// maybeAttr returns the attribute value when it is present with the expected type.
func maybeAttr[T any](e *dwarf.Entry, attr dwarf.Attr) (T, bool) {
	var zero T
	if e == nil {
		return zero, false
	}
	v, ok := e.Val(attr).(T)
	if !ok {
		return zero, false
	}
	return v, true
}

func maybeUnsigned(e *dwarf.Entry, attr dwarf.Attr) (uint64, bool) {
	if e == nil {
		return 0, false
	}
	switch v := e.Val(attr).(type) {
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case uint64:
		return v, true
	default:
		return 0, false
	}
}
