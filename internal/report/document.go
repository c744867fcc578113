// Package report turns a resolved future.Collection into the report document,
// encodes it, and writes it to per-unit sinks.
package report

import (
	"github.com/coral-mesh/futurescope/internal/future"
)

// Document is the report of one compilation unit.
type Document struct {
	Futures []Future `json:"futures" jsonschema:"description=Future-like structure types in first-seen order"`
}

// Future is one future-like structure type.
type Future struct {
	Name           string   `json:"name"`
	IsStateMachine bool     `json:"is_state_machine"`
	Members        []Member `json:"members" jsonschema:"description=Members carrying both a name and a type reference in declaration order"`
	Dependencies   []string `json:"dependencies" jsonschema:"description=State machine types transitively reachable through members in discovery order"`
}

// Member is one structure member.
type Member struct {
	Name   string `json:"name"`
	TypeID string `json:"type_id" jsonschema:"pattern=^0x[0-9a-f]{8}[0-9a-f]*$"`
	// IsStateMachine is always false; resolution only fills Future.Dependencies.
	IsStateMachine bool   `json:"is_state_machine" jsonschema:"description=Reserved and always false"`
	Offset         uint64 `json:"offset"`
	Size           uint64 `json:"size"`
}

// Build converts c into a document. Records keep the collection's order.
func Build(c *future.Collection) *Document {
	doc := &Document{Futures: make([]Future, 0, c.Len())}
	for _, rec := range c.Records() {
		f := Future{
			Name:           rec.Name,
			IsStateMachine: rec.IsStateMachine,
			Members:        make([]Member, 0, len(rec.Fields)),
			Dependencies:   append(make([]string, 0, len(rec.Dependencies)), rec.Dependencies...),
		}
		for _, field := range rec.Fields {
			f.Members = append(f.Members, Member{
				Name:           field.Name,
				TypeID:         field.TypeID.String(),
				IsStateMachine: field.DependsOnStateMachine,
				Offset:         field.Offset,
				Size:           field.Size,
			})
		}
		doc.Futures = append(doc.Futures, f)
	}
	return doc
}

// Lookup returns the future named name.
func (d *Document) Lookup(name string) (*Future, bool) {
	for i := range d.Futures {
		if d.Futures[i].Name == name {
			return &d.Futures[i], true
		}
	}
	return nil, false
}

// StateMachines counts futures flagged as state machines.
func (d *Document) StateMachines() int {
	n := 0
	for _, f := range d.Futures {
		if f.IsStateMachine {
			n++
		}
	}
	return n
}
