package future

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/coral-mesh/futurescope/internal/entry"
)

// Field is one structure member that carries both a name and a type reference.
type Field struct {
	Name   string
	TypeID entry.TypeID
	// DependsOnStateMachine is set to false at extraction and never updated.
	// Dependency resolution fills TypeRecord.Dependencies instead.
	DependsOnStateMachine bool
	// Offset and Size are 0 when the member omits them.
	Offset uint64
	Size   uint64
}

// TypeRecord is one future-like structure type.
type TypeRecord struct {
	Name           string
	IsStateMachine bool
	// Fields are in declaration order.
	Fields []Field
	// Dependencies lists state machine type names reachable through Fields, in
	// first-discovered order. Empty until Resolve runs.
	Dependencies []string
}

// Collection holds every future-like record of one unit keyed by name, plus
// the identifier index used to follow field type references.
//
// Records keep the position of the first insertion of their name; a later
// record with the same name replaces the earlier one in place.
type Collection struct {
	records *orderedmap.OrderedMap[string, *TypeRecord]
	index   map[entry.TypeID]string
	visited int
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{
		records: orderedmap.New[string, *TypeRecord](),
		index:   make(map[entry.TypeID]string),
	}
}

// Put indexes id under rec.Name and inserts or replaces the record.
func (c *Collection) Put(id entry.TypeID, rec *TypeRecord) {
	c.index[id] = rec.Name
	c.records.Set(rec.Name, rec)
}

// Record returns the record stored under name.
func (c *Collection) Record(name string) (*TypeRecord, bool) {
	return c.records.Get(name)
}

// Lookup resolves a type identifier to the name of a collected record.
func (c *Collection) Lookup(id entry.TypeID) (string, bool) {
	name, ok := c.index[id]
	return name, ok
}

// Records returns the records in insertion order.
func (c *Collection) Records() []*TypeRecord {
	out := make([]*TypeRecord, 0, c.records.Len())
	for pair := c.records.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Len returns the number of records.
func (c *Collection) Len() int { return c.records.Len() }

// Stats summarizes a collection for logging.
type Stats struct {
	Visited       int
	Records       int
	StateMachines int
	Fields        int
	Indexed       int
	Dependencies  int
}

// Stats counts records, fields and dependencies.
func (c *Collection) Stats() Stats {
	s := Stats{
		Visited: c.visited,
		Records: c.records.Len(),
		Indexed: len(c.index),
	}
	for pair := c.records.Oldest(); pair != nil; pair = pair.Next() {
		rec := pair.Value
		if rec.IsStateMachine {
			s.StateMachines++
		}
		s.Fields += len(rec.Fields)
		s.Dependencies += len(rec.Dependencies)
	}
	return s
}
