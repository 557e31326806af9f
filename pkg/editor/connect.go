package editor

import (
	"github.com/ha1tch/automata-diagram/pkg/editing"
	"github.com/ha1tch/automata-diagram/pkg/graph"
)

// Connect turns a drag-to-connect gesture into a new edge and opens a label
// session on it with an empty draft. Self-loops and parallel edges are
// allowed. When either endpoint is missing nothing changes and the error
// wraps graph.ErrInvalidEndpoint.
func (e *Editor) Connect(source, target string) (graph.Edge, error) {
	gestures.WithLabelValues("connect").Inc()

	edge, err := e.store.AddEdge(source, target)
	if err != nil {
		rejections.WithLabelValues("invalid_endpoint").Inc()
		e.log.Debug("connection dropped", "source", source, "target", target, "error", err)
		return graph.Edge{}, err
	}

	if c, ok := e.session.BeginEdge(edge.ID, edge.Label); ok {
		e.apply(c)
	}
	e.log.Debug("edge created", "id", edge.ID, "source", source, "target", target)
	return edge, nil
}

// apply writes a commit to the store. A commit whose target has been
// deleted is a no-op.
func (e *Editor) apply(c editing.Commit) bool {
	var ok bool
	switch c.Kind {
	case editing.KindNode:
		ok = e.store.UpdateNodeLabel(c.ID, c.Text)
	case editing.KindEdge:
		ok = e.store.UpdateEdgeLabel(c.ID, c.Text)
	}
	if !ok {
		rejections.WithLabelValues("stale_target").Inc()
		e.log.Debug("commit target gone", "kind", c.Kind.String(), "id", c.ID)
	}
	return ok
}
