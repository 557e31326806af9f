package export

import (
	"fmt"
	"strings"

	"github.com/ha1tch/automata-diagram/pkg/graph"
)

// GenerateDOT converts a diagram to Graphviz DOT. Node positions are pinned
// so neato reproduces the canvas layout; dot ignores them.
func GenerateDOT(g graph.Graph, title string) string {
	var sb strings.Builder

	sb.WriteString("digraph FSM {\n")
	sb.WriteString("    node [shape=box, style=rounded, fontname=\"Helvetica\", fontsize=11];\n")
	sb.WriteString("    edge [fontname=\"Helvetica\", fontsize=10, arrowhead=normal];\n")
	sb.WriteString("\n")

	if title != "" {
		sb.WriteString("    labelloc=\"t\";\n")
		sb.WriteString(fmt.Sprintf("    label=\"%s\";\n", escapeDOT(title)))
		sb.WriteString("\n")
	}

	for _, n := range g.Nodes() {
		// Graphviz y grows upward; points are 1/72 inch.
		sb.WriteString(fmt.Sprintf("    \"%s\" [label=\"%s\", pos=\"%.0f,%.0f!\"];\n",
			escapeDOT(n.ID), escapeDOT(n.Label()), n.Position.X, -n.Position.Y))
	}
	sb.WriteString("\n")

	// One line per edge: parallel transitions stay distinct.
	for _, e := range g.Edges() {
		if !g.HasNode(e.Source) || !g.HasNode(e.Target) {
			continue
		}
		sb.WriteString(fmt.Sprintf("    \"%s\" -> \"%s\" [id=\"%s\", label=\"%s\"];\n",
			escapeDOT(e.Source), escapeDOT(e.Target), escapeDOT(e.ID), escapeDOT(e.Label)))
	}

	sb.WriteString("}\n")
	return sb.String()
}

func escapeDOT(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
