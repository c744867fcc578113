package report

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// WriteDOT writes the dependency graph of doc as a Graphviz digraph. State
// machines are drawn as double octagons; each dependency is one edge.
func WriteDOT(w io.Writer, title string, doc *Document) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "digraph %s {\n", strconv.Quote(title))
	fmt.Fprintln(bw, "  rankdir=LR;")
	fmt.Fprintln(bw, "  node [shape=box];")
	for _, f := range doc.Futures {
		if f.IsStateMachine {
			fmt.Fprintf(bw, "  %s [shape=doubleoctagon];\n", strconv.Quote(f.Name))
		} else {
			fmt.Fprintf(bw, "  %s;\n", strconv.Quote(f.Name))
		}
	}
	for _, f := range doc.Futures {
		for _, dep := range f.Dependencies {
			fmt.Fprintf(bw, "  %s -> %s;\n", strconv.Quote(f.Name), strconv.Quote(dep))
		}
	}
	fmt.Fprintln(bw, "}")

	return bw.Flush()
}
