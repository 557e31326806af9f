package render

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/automata-diagram/pkg/editing"
	"github.com/ha1tch/automata-diagram/pkg/editor"
	"github.com/ha1tch/automata-diagram/pkg/graph"
)

func newAdapter(t *testing.T) *Adapter {
	t.Helper()
	ms := int64(1700000000000)
	ed := editor.New(graph.Seed(), editor.WithClock(func() time.Time {
		ms++
		return time.UnixMilli(ms)
	}))
	return NewAdapter(ed, DefaultOptions())
}

func findEdge(t *testing.T, f Frame, id string) FrameEdge {
	t.Helper()
	for _, e := range f.Edges {
		if e.ID == id {
			return e
		}
	}
	t.Fatalf("edge %q not in frame", id)
	return FrameEdge{}
}

func TestProjectSeed(t *testing.T) {
	f := Project(editor.Snapshot{Graph: graph.Seed(), Editing: editing.Idle{}}, DefaultOptions())

	require.Len(t, f.Nodes, 2)
	assert.Equal(t, "default", f.Nodes[0].Type)
	assert.Equal(t, "q0 (Inicial)", f.Nodes[0].Data.Label)
	assert.Nil(t, f.NameDialog)

	require.Len(t, f.Edges, 1)
	e := f.Edges[0]
	assert.Equal(t, "custom", e.Type)
	assert.Equal(t, MarkerArrowClosed, e.MarkerEnd.Type)
	assert.Equal(t, LabelStatic, e.View.Mode)
	assert.Equal(t, "a", e.View.Text)

	// Bottom of q0 (175,140) to top of q1 (475,100); midpoint (325,120).
	assert.InDelta(t, 325, e.View.X, 1e-9)
	assert.InDelta(t, 110, e.View.Y, 1e-9)
}

func TestProjectIsPure(t *testing.T) {
	snap := editor.Snapshot{Graph: graph.Seed(), Editing: editing.EditingEdge{ID: "e1-2", Draft: "b"}}
	assert.Equal(t, Project(snap, DefaultOptions()), Project(snap, DefaultOptions()))
}

func TestProjectEditingEdge(t *testing.T) {
	snap := editor.Snapshot{Graph: graph.Seed(), Editing: editing.EditingEdge{ID: "e1-2", Draft: "b"}}
	e := Project(snap, DefaultOptions()).Edges[0]

	assert.Equal(t, LabelEditing, e.View.Mode)
	assert.Equal(t, "b", e.View.Text)
	assert.Equal(t, "a", e.Label)
	assert.InDelta(t, 295, e.View.X, 1e-9)
	assert.InDelta(t, 105, e.View.Y, 1e-9)
	assert.Equal(t, 60.0, e.View.Width)
	assert.Equal(t, 30.0, e.View.Height)
	assert.NotEmpty(t, e.View.Placeholder)
}

func TestProjectNameDialog(t *testing.T) {
	snap := editor.Snapshot{Graph: graph.Seed(), Editing: editing.EditingNode{ID: "2", Draft: "fin"}}
	f := Project(snap, DefaultOptions())

	require.NotNil(t, f.NameDialog)
	assert.Equal(t, "2", f.NameDialog.NodeID)
	assert.Equal(t, "fin", f.NameDialog.Draft)
	assert.Equal(t, editing.MaxNameLength, f.NameDialog.MaxLength)
	assert.Equal(t, LabelStatic, f.Edges[0].View.Mode)
}

func TestProjectSelfLoopAndParallel(t *testing.T) {
	a := newAdapter(t)
	loop, err := a.ed.Connect("1", "1")
	require.NoError(t, err)
	p1, err := a.ed.Connect("1", "2")
	require.NoError(t, err)
	back, err := a.ed.Connect("2", "1")
	require.NoError(t, err)

	f := a.Frame()
	require.Len(t, f.Edges, 4)

	l := findEdge(t, f, loop.ID)
	assert.Len(t, l.Path, 7)

	seed := findEdge(t, f, "e1-2")
	par := findEdge(t, f, p1.ID)
	assert.NotEqual(t, seed.Path[1], par.Path[1], "parallel edges should not overlap")
	assert.NotEqual(t, seed.View.X, par.View.X)

	rev := findEdge(t, f, back.ID)
	assert.Len(t, rev.Path, 4)
}

func TestProjectSkipsDanglingEdges(t *testing.T) {
	g := graph.Seed().RemoveNodes(graph.NewIDSet("2"))
	require.Equal(t, 1, g.EdgeCount())

	f := Project(editor.Snapshot{Graph: g}, DefaultOptions())
	assert.Empty(t, f.Edges)
	assert.Len(t, f.Nodes, 1)
}

func TestFrameJSON(t *testing.T) {
	f := Project(editor.Snapshot{Graph: graph.Seed(), Editing: editing.Idle{}}, DefaultOptions())
	data, err := json.Marshal(f)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	edges := raw["edges"].([]any)
	edge := edges[0].(map[string]any)
	assert.Equal(t, "arrowclosed", edge["markerEnd"].(map[string]any)["type"])
	assert.Equal(t, "static", edge["labelView"].(map[string]any)["mode"])
	assert.NotContains(t, raw, "nameDialog")
}
