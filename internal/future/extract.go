package future

import (
	"github.com/coral-mesh/futurescope/internal/entry"
)

// Extract builds the record of a structure already classified as future-like.
//
// Only direct member children are read. A member without a name or without a
// type reference is dropped; missing offset and size default to 0.
func Extract(e entry.Entry, cls Classifier) *TypeRecord {
	name, _ := e.Name()
	rec := &TypeRecord{
		Name:           name,
		IsStateMachine: cls.StateMachine(e),
		Fields:         []Field{},
		Dependencies:   []string{},
	}

	for child := e.FirstChild(); child != nil; child = child.NextSibling() {
		if f, ok := extractField(child); ok {
			rec.Fields = append(rec.Fields, f)
		}
	}
	return rec
}

func extractField(e entry.Entry) (Field, bool) {
	if !entry.IsMember(e) {
		return Field{}, false
	}
	name, ok := e.Name()
	if !ok {
		return Field{}, false
	}
	ref, ok := e.TypeRef()
	if !ok {
		return Field{}, false
	}
	offset, _ := e.DataOffset()
	size, _ := e.ByteSize()
	return Field{
		Name:   name,
		TypeID: ref,
		Offset: offset,
		Size:   size,
	}, true
}
