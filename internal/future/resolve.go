package future

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Resolve sets the Dependencies of every record in c. It may be run again on
// an unchanged collection and yields the same result.
func Resolve(c *Collection) {
	for pair := c.records.Oldest(); pair != nil; pair = pair.Next() {
		pair.Value.Dependencies = c.DependenciesOf(pair.Value)
	}
}

// DependenciesOf returns the state machine types reachable from root through
// field type references, in first-discovered depth-first order.
//
// Every type name is expanded at most once per call and root itself is never
// reported, so self references and cycles terminate. Types that are not state
// machines are walked through but not reported. References that do not
// resolve to a collected record are skipped.
func (c *Collection) DependenciesOf(root *TypeRecord) []string {
	type frame struct {
		rec  *TypeRecord
		next int
	}

	seen := map[string]struct{}{root.Name: {}}
	deps := orderedmap.New[string, struct{}]()
	stack := []frame{{rec: root}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next >= len(top.rec.Fields) {
			stack = stack[:len(stack)-1]
			continue
		}
		field := top.rec.Fields[top.next]
		top.next++

		name, ok := c.Lookup(field.TypeID)
		if !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		child, ok := c.Record(name)
		if !ok {
			continue
		}
		if child.IsStateMachine {
			deps.Set(name, struct{}{})
		}
		stack = append(stack, frame{rec: child})
	}

	out := make([]string, 0, deps.Len())
	for pair := deps.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}
