package production

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/comalice/statetree"
)

// Visualizer renders a chart as Graphviz DOT source.
type Visualizer struct {
	// ShowEvents lists each state's event names under its label.
	ShowEvents bool
}

// DOT generates DOT source for the tree s belongs to. Clustered states with
// children become subgraphs, concurrent ones are drawn dashed on light blue,
// and current states are filled.
func (v *Visualizer) DOT(s *statetree.State) string {
	root := s.Root()
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %q {\n", root.Name())
	buf.WriteString("  compound=true;\n")
	buf.WriteString("  node [shape=box, fontsize=10, style=rounded];\n")
	v.render(&buf, root, "  ")
	buf.WriteString("}\n")
	return buf.String()
}

func (v *Visualizer) render(buf *bytes.Buffer, s *statetree.State, indent string) {
	id := nodeID(s)
	if len(s.Children()) == 0 {
		style := ""
		if s.Active() {
			style = ", style=\"rounded,filled\", fillcolor=lightgreen"
		}
		fmt.Fprintf(buf, "%s%q [label=%q%s];\n", indent, id, v.label(s), style)
		return
	}

	fmt.Fprintf(buf, "%ssubgraph %q {\n", indent, "cluster_"+id)
	inner := indent + "  "
	fmt.Fprintf(buf, "%slabel=%q;\n", inner, v.label(s))
	switch {
	case s.IsConcurrent() && s.Active():
		fmt.Fprintf(buf, "%sstyle=\"dashed,filled\"; fillcolor=orange;\n", inner)
	case s.IsConcurrent():
		fmt.Fprintf(buf, "%sstyle=\"dashed,filled\"; fillcolor=lightblue;\n", inner)
	case s.Active():
		fmt.Fprintf(buf, "%sstyle=filled; fillcolor=orange;\n", inner)
	}
	for _, c := range s.Children() {
		v.render(buf, c, inner)
	}
	if !s.IsConcurrent() {
		first := s.Children()[0]
		start := startID(s)
		fmt.Fprintf(buf, "%s%q [shape=point, label=\"\"];\n", inner, start)
		fmt.Fprintf(buf, "%s%q -> %q%s;\n", inner, start, entryNode(first), lhead(first))
	}
	fmt.Fprintf(buf, "%s}\n", indent)
}

func (v *Visualizer) label(s *statetree.State) string {
	name := s.Name()
	switch mode := s.HistoryMode(); {
	case len(s.Children()) == 0:
	case mode == statetree.ShallowHistory:
		name += " (H)"
	case mode == statetree.DeepHistory:
		name += " (H*)"
	}
	if v.ShowEvents {
		if events := s.Events(); len(events) > 0 {
			name += "\n" + strings.Join(events, ", ")
		}
	}
	return name
}

func nodeID(s *statetree.State) string {
	return s.Path()
}

// entryNode returns a node inside s that an edge can point at. Graphviz
// edges cannot target a subgraph directly.
func entryNode(s *statetree.State) string {
	for len(s.Children()) > 0 {
		if !s.IsConcurrent() {
			return startID(s)
		}
		s = s.Children()[0]
	}
	return nodeID(s)
}

// startID names the entry point of a clustered state. State names cannot be
// empty, so a path containing "//" never collides with a state.
func startID(s *statetree.State) string {
	return strings.TrimSuffix(nodeID(s), "/") + "//start"
}

func lhead(s *statetree.State) string {
	if len(s.Children()) == 0 {
		return ""
	}
	return fmt.Sprintf(" [lhead=%q]", "cluster_"+nodeID(s))
}
