package editor

import (
	"github.com/ha1tch/automata-diagram/pkg/graph"
)

// Removal reports what a deletion took out of the graph.
type Removal struct {
	Nodes    []string // reported nodes that were present
	Edges    []string // reported edges that were present
	Cascaded []string // edges removed because an endpoint vanished
}

// AllEdges returns explicit and cascaded edge ids.
func (r Removal) AllEdges() []string {
	out := make([]string, 0, len(r.Edges)+len(r.Cascaded))
	out = append(out, r.Edges...)
	return append(out, r.Cascaded...)
}

// Empty reports whether nothing was removed.
func (r Removal) Empty() bool {
	return len(r.Nodes) == 0 && len(r.Edges) == 0 && len(r.Cascaded) == 0
}

// Cascade removes the reported edges, then the reported nodes, then every
// remaining edge whose source or target is gone. The result never holds a
// dangling edge, whatever the renderer did or did not report.
func Cascade(g graph.Graph, nodeIDs, edgeIDs []string) (graph.Graph, Removal) {
	var r Removal

	edges := graph.NewIDSet()
	for _, id := range edgeIDs {
		if g.HasEdge(id) && !edges.Has(id) {
			edges.Add(id)
			r.Edges = append(r.Edges, id)
		}
	}
	nodes := graph.NewIDSet()
	for _, id := range nodeIDs {
		if g.HasNode(id) && !nodes.Has(id) {
			nodes.Add(id)
			r.Nodes = append(r.Nodes, id)
		}
	}

	next := g.RemoveEdges(edges).RemoveNodes(nodes)

	r.Cascaded = next.DanglingEdges()
	next = next.RemoveEdges(graph.NewIDSet(r.Cascaded...))
	return next, r
}

// Delete handles the renderer's removal report for a user delete gesture.
// An open session on a removed node or edge is closed without committing.
func (e *Editor) Delete(nodeIDs, edgeIDs []string) Removal {
	gestures.WithLabelValues("delete").Inc()

	var r Removal
	e.store.Apply(func(g graph.Graph) graph.Graph {
		var next graph.Graph
		next, r = Cascade(g, nodeIDs, edgeIDs)
		return next
	})

	cascadedEdges.Add(float64(len(r.Cascaded)))
	e.dropSessionFor(r)
	if !r.Empty() {
		e.log.Debug("deleted", "nodes", r.Nodes, "edges", r.Edges, "cascaded", r.Cascaded)
	}
	return r
}

// DeleteSelection deletes every selected node and edge.
func (e *Editor) DeleteSelection() Removal {
	nodes, edges := e.store.Snapshot().Selection()
	return e.Delete(nodes, edges)
}
