package future

import (
	"github.com/coral-mesh/futurescope/internal/entry"
)

// Collect walks the tree rooted at root in pre-order (an entry, then its
// children, then its following siblings) and records every future-like
// structure. Entries that are not future-like are still descended into.
//
// The walk uses an explicit stack, so tree depth is not bounded by the call
// stack.
func Collect(root entry.Entry, cls Classifier) *Collection {
	c := NewCollection()
	if root == nil {
		return c
	}

	stack := []entry.Entry{root}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		c.visited++

		if cls.Future(e) {
			c.Put(e.ID(), Extract(e, cls))
		}

		// Sibling below child: the subtree is finished before the sibling chain continues.
		if next := e.NextSibling(); next != nil {
			stack = append(stack, next)
		}
		if child := e.FirstChild(); child != nil {
			stack = append(stack, child)
		}
	}
	return c
}
