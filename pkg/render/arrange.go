package render

import (
	"github.com/ha1tch/automata-diagram/pkg/graph"
	"github.com/ha1tch/automata-diagram/pkg/layout"
)

// ArrangeNodes lays out g on the renderer side and reports the result the way
// a renderer reports a drag: as position changes. Nodes already in place are
// left out.
func ArrangeNodes(g graph.Graph, alg layout.Algorithm, opts layout.Options) NodesChange {
	positions := layout.Arrange(g, alg, opts)

	var changes []Change
	for _, n := range g.Nodes() {
		pos, ok := positions[n.ID]
		if !ok || pos == n.Position {
			continue
		}
		changes = append(changes, Change{Type: ChangePosition, ID: n.ID, Position: &pos})
	}
	return NodesChange{Changes: changes}
}
