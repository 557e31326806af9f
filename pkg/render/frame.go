// Package render is the seam to the external diagram renderer. It projects
// editor snapshots into the node and edge shapes the renderer draws, and turns
// the renderer's raw events into editor operations.
//
// Projection is pure: the same snapshot and options always give the same
// frame.
package render

import (
	"github.com/ha1tch/automata-diagram/pkg/editing"
	"github.com/ha1tch/automata-diagram/pkg/editor"
	"github.com/ha1tch/automata-diagram/pkg/graph"
)

// MarkerType names an edge terminal marker.
type MarkerType string

const MarkerArrowClosed MarkerType = "arrowclosed"

// Marker decorates an edge end.
type Marker struct {
	Type MarkerType `json:"type"`
}

// LabelMode says how an edge label is presented.
type LabelMode string

const (
	LabelStatic  LabelMode = "static"
	LabelEditing LabelMode = "input"
)

// Options holds the renderer geometry the projection assumes.
type Options struct {
	NodeWidth       float64
	NodeHeight      float64
	Curvature       float64
	InputWidth      float64
	InputHeight     float64
	LabelLift       float64 // static label sits this far above the midpoint
	ParallelSpacing float64
	Placeholder     string
	Marker          MarkerType
}

// DefaultOptions matches the renderer's default node box and edge styling.
func DefaultOptions() Options {
	return Options{
		NodeWidth:       150,
		NodeHeight:      40,
		Curvature:       0.25,
		InputWidth:      60,
		InputHeight:     30,
		LabelLift:       10,
		ParallelSpacing: 30,
		Placeholder:     "Etiqueta",
		Marker:          MarkerArrowClosed,
	}
}

// FrameNode is a node as the renderer receives it.
type FrameNode struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Position graph.Position `json:"position"`
	Data     graph.NodeData `json:"data"`
	Selected bool           `json:"selected,omitempty"`
}

// LabelView is the label presentation for one edge: static text, or the
// live input overlay when the edge is being edited.
type LabelView struct {
	Mode        LabelMode `json:"mode"`
	Text        string    `json:"text"`
	X           float64   `json:"x"`
	Y           float64   `json:"y"`
	Width       float64   `json:"width,omitempty"`
	Height      float64   `json:"height,omitempty"`
	Placeholder string    `json:"placeholder,omitempty"`
}

// FrameEdge is an edge as the renderer receives it.
type FrameEdge struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Source    string    `json:"source"`
	Target    string    `json:"target"`
	Label     string    `json:"label"`
	Selected  bool      `json:"selected,omitempty"`
	MarkerEnd Marker    `json:"markerEnd"`
	Path      []Point   `json:"path"`
	View      LabelView `json:"labelView"`
}

// NameDialog is the rename modal for the node being edited.
type NameDialog struct {
	NodeID    string `json:"nodeId"`
	Draft     string `json:"draft"`
	MaxLength int    `json:"maxLength"`
}

// Frame is everything the renderer needs for one draw.
type Frame struct {
	Nodes      []FrameNode `json:"nodes"`
	Edges      []FrameEdge `json:"edges"`
	NameDialog *NameDialog `json:"nameDialog,omitempty"`
}

// Project converts a snapshot into a frame.
func Project(snap editor.Snapshot, opts Options) Frame {
	g := snap.Graph
	state := snap.Editing
	if state == nil {
		state = editing.Idle{}
	}

	nodes := g.Nodes()
	boxes := make(map[string]Box, len(nodes))
	f := Frame{
		Nodes: make([]FrameNode, 0, len(nodes)),
		Edges: make([]FrameEdge, 0, g.EdgeCount()),
	}
	for _, n := range nodes {
		boxes[n.ID] = Box{X: n.Position.X, Y: n.Position.Y, W: opts.NodeWidth, H: opts.NodeHeight}
		f.Nodes = append(f.Nodes, FrameNode{
			ID:       n.ID,
			Type:     "default",
			Position: n.Position,
			Data:     n.Data,
			Selected: n.Selected,
		})
	}

	if st, ok := state.(editing.EditingNode); ok && g.HasNode(st.ID) {
		f.NameDialog = &NameDialog{NodeID: st.ID, Draft: st.Draft, MaxLength: editing.MaxNameLength}
	}

	edges := g.Edges()
	slots := parallelSlots(edges)
	for _, e := range edges {
		src, ok1 := boxes[e.Source]
		dst, ok2 := boxes[e.Target]
		if !ok1 || !ok2 {
			continue // dangling edges are never drawn
		}

		fe := FrameEdge{
			ID:        e.ID,
			Type:      "custom",
			Source:    e.Source,
			Target:    e.Target,
			Label:     e.Label,
			Selected:  e.Selected,
			MarkerEnd: Marker{Type: opts.Marker},
		}

		var anchor Point
		slot := slots[e.ID]
		if e.IsSelfLoop() {
			fe.Path = SelfLoop(src, slot.index)
			anchor = SelfLoopLabel(fe.Path, opts.InputWidth)
		} else {
			path := BezierPath(src.SourceHandle(), dst.TargetHandle(), opts.Curvature)
			fe.Path = ShiftPath(path, slot.sign*ParallelOffset(slot.index, slot.total, opts.ParallelSpacing))
			anchor = Midpoint(fe.Path)
		}

		fe.View = labelView(e, state, anchor, opts)
		f.Edges = append(f.Edges, fe)
	}
	return f
}

// labelView routes an edge's label through the edit state: the edge being
// edited gets the input overlay centred on anchor, every other edge gets its
// committed text.
func labelView(e graph.Edge, state editing.State, anchor Point, opts Options) LabelView {
	if st, ok := state.(editing.EditingEdge); ok && st.ID == e.ID {
		return LabelView{
			Mode:        LabelEditing,
			Text:        st.Draft,
			X:           anchor.X - opts.InputWidth/2,
			Y:           anchor.Y - opts.InputHeight/2,
			Width:       opts.InputWidth,
			Height:      opts.InputHeight,
			Placeholder: opts.Placeholder,
		}
	}
	return LabelView{
		Mode: LabelStatic,
		Text: e.Label,
		X:    anchor.X,
		Y:    anchor.Y - opts.LabelLift,
	}
}

type slot struct {
	index int
	total int
	sign  float64
}

// parallelSlots numbers edges sharing an unordered node pair so each one
// gets its own offset. Reverse-direction edges flip the sign because their
// chord points the other way. Self-loops are numbered per node.
func parallelSlots(edges []graph.Edge) map[string]slot {
	key := func(e graph.Edge) string {
		if e.Source < e.Target {
			return e.Source + "\x00" + e.Target
		}
		return e.Target + "\x00" + e.Source
	}

	totals := make(map[string]int)
	for _, e := range edges {
		totals[key(e)]++
	}

	seen := make(map[string]int)
	out := make(map[string]slot, len(edges))
	for _, e := range edges {
		k := key(e)
		sign := 1.0
		if e.Source > e.Target {
			sign = -1
		}
		out[e.ID] = slot{index: seen[k], total: totals[k], sign: sign}
		seen[k]++
	}
	return out
}
