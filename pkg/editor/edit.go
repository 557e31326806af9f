package editor

import (
	"errors"
	"fmt"

	"github.com/ha1tch/automata-diagram/pkg/editing"
	"github.com/ha1tch/automata-diagram/pkg/graph"
)

// ErrUnknownTarget is returned when an edit gesture names a node or edge
// that is not in the graph.
var ErrUnknownTarget = errors.New("unknown edit target")

// BeginNodeEdit handles a double-activation on a node: a rename session opens
// seeded with the node's label, and any open session is abandoned.
func (e *Editor) BeginNodeEdit(id string) error {
	gestures.WithLabelValues("node_double_click").Inc()
	n, ok := e.store.Snapshot().Node(id)
	if !ok {
		return fmt.Errorf("node %q: %w", id, ErrUnknownTarget)
	}
	e.session.BeginNode(n.ID, n.Label())
	return nil
}

// BeginEdgeEdit handles a double-activation on an edge label: a label session
// opens seeded with the edge's label. An open edge session is committed
// first, as its input loses focus.
func (e *Editor) BeginEdgeEdit(id string) error {
	gestures.WithLabelValues("edge_double_click").Inc()
	edge, ok := e.store.Snapshot().Edge(id)
	if !ok {
		return fmt.Errorf("edge %q: %w", id, ErrUnknownTarget)
	}
	if c, ok := e.session.BeginEdge(edge.ID, edge.Label); ok {
		e.apply(c)
	}
	return nil
}

// SetNameDraft replaces the draft of an open rename. It returns
// editing.ErrNotEditing unless a node is being renamed.
func (e *Editor) SetNameDraft(text string) error {
	return e.session.SetNameDraft(text)
}

// SetLabelDraft replaces the draft of an open edge label. It returns
// editing.ErrNotEditing unless an edge label is being edited.
func (e *Editor) SetLabelDraft(text string) error {
	return e.session.SetLabelDraft(text)
}

// AcceptName handles the confirm key or save action on a rename.
func (e *Editor) AcceptName() error {
	c, err := e.session.Accept()
	if err != nil {
		if errors.Is(err, editing.ErrEmptyName) {
			rejections.WithLabelValues("empty_name").Inc()
		}
		return err
	}
	e.apply(c)
	return nil
}

// CancelName handles the escape key or cancel action on a rename.
func (e *Editor) CancelName() error {
	return e.session.Cancel()
}

// BlurLabel handles focus leaving the edge label input and commits the draft.
func (e *Editor) BlurLabel() error {
	c, err := e.session.Blur()
	if err != nil {
		return err
	}
	e.apply(c)
	return nil
}

// dropSessionFor ends the session when its target was removed.
func (e *Editor) dropSessionFor(r Removal) {
	kind, id := editing.Target(e.session.State())
	switch kind {
	case editing.KindNode:
		if graph.NewIDSet(r.Nodes...).Has(id) {
			e.session.Drop(kind, id)
		}
	case editing.KindEdge:
		if graph.NewIDSet(r.AllEdges()...).Has(id) {
			e.session.Drop(kind, id)
		}
	}
}
