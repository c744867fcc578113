package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Format selects a terminal rendering of a document.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatTree Format = "tree"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatText, FormatJSON, FormatTree:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or tree)", s)
	}
}

// Render writes doc to w in the given format.
func Render(w io.Writer, format Format, doc *Document) error {
	switch format {
	case FormatJSON:
		return Encode(w, doc)
	case FormatTree:
		_, err := io.WriteString(w, RenderTree(doc))
		return err
	default:
		_, err := io.WriteString(w, RenderTable(doc))
		return err
	}
}

// RenderTable lists every future with its member and dependency counts.
// nolint: errcheck
func RenderTable(doc *Document) string {
	if len(doc.Futures) == 0 {
		return "No future types found.\n"
	}

	var buf strings.Builder
	w := tabwriter.NewWriter(&buf, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTATE MACHINE\tMEMBERS\tDEPENDENCIES")
	for _, f := range doc.Futures {
		sm := "no"
		if f.IsStateMachine {
			sm = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", f.Name, sm, len(f.Members), strings.Join(f.Dependencies, ", "))
	}
	w.Flush()
	return buf.String()
}

// RenderTree draws each future with its resolved dependencies beneath it.
// Dependencies are already transitive, so the tree is one level deep.
func RenderTree(doc *Document) string {
	if len(doc.Futures) == 0 {
		return "No future types found.\n"
	}

	var buf strings.Builder
	for _, f := range doc.Futures {
		buf.WriteString(label(&f))
		buf.WriteString("\n")
		for i, dep := range f.Dependencies {
			connector := "├─"
			if i == len(f.Dependencies)-1 {
				connector = "└─"
			}
			name := dep
			if child, ok := doc.Lookup(dep); ok {
				name = label(child)
			}
			fmt.Fprintf(&buf, "%s %s\n", connector, name)
		}
	}
	return buf.String()
}

func label(f *Future) string {
	if f.IsStateMachine {
		return f.Name + " [state machine]"
	}
	return f.Name
}
