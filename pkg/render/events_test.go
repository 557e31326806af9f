package render

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/automata-diagram/pkg/editing"
	"github.com/ha1tch/automata-diagram/pkg/editor"
	"github.com/ha1tch/automata-diagram/pkg/graph"
	"github.com/ha1tch/automata-diagram/pkg/layout"
)

func decode(t *testing.T, raw string) Event {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(raw), &env))
	ev, err := env.Event()
	require.NoError(t, err)
	return ev
}

func TestEnvelopeDecode(t *testing.T) {
	tests := []struct {
		raw  string
		want Event
	}{
		{`{"type":"connect","source":"1","target":"2"}`, Connect{Source: "1", Target: "2"}},
		{`{"type":"nodeDoubleClick","nodeId":"1"}`, NodeDoubleClick{NodeID: "1"}},
		{`{"type":"edgeDoubleClick","edgeId":"e1-2"}`, EdgeDoubleClick{EdgeID: "e1-2"}},
		{`{"type":"nodesDelete","nodes":["2"]}`, NodesDelete{Nodes: []string{"2"}}},
		{`{"type":"labelInput","text":"b"}`, LabelInput{Text: "b"}},
		{`{"type":"labelBlur"}`, LabelBlur{}},
		{`{"type":"nameKey","key":"Enter"}`, NameKey{Key: KeyEnter}},
		{`{"type":"nameSave"}`, NameSave{}},
		{`{"type":"nameCancel"}`, NameCancel{}},
		{`{"type":"addState"}`, AddState{}},
	}
	for _, tt := range tests {
		t.Run(tt.want.Type(), func(t *testing.T) {
			assert.Equal(t, tt.want, decode(t, tt.raw))
		})
	}
}

func TestEnvelopeDecodeChanges(t *testing.T) {
	ev := decode(t, `{"type":"nodesChange","changes":[{"type":"position","id":"1","position":{"x":5,"y":6}}]}`)
	nc, ok := ev.(NodesChange)
	require.True(t, ok)
	require.Len(t, nc.Changes, 1)
	assert.Equal(t, &graph.Position{X: 5, Y: 6}, nc.Changes[0].Position)
}

func TestEnvelopeUnknownType(t *testing.T) {
	_, err := Envelope{Type: "paste"}.Event()
	assert.Error(t, err)
}

func TestDispatchConnectAndLabel(t *testing.T) {
	a := newAdapter(t)

	require.NoError(t, a.Dispatch(Connect{Source: "2", Target: "1"}))
	f := a.Frame()
	require.Len(t, f.Edges, 2)
	created := f.Edges[1]
	assert.Equal(t, LabelEditing, created.View.Mode)
	assert.Equal(t, "", created.View.Text)

	require.NoError(t, a.Dispatch(LabelInput{Text: "b"}))
	assert.Equal(t, "b", findEdge(t, a.Frame(), created.ID).View.Text)

	require.NoError(t, a.Dispatch(LabelBlur{}))
	e := findEdge(t, a.Frame(), created.ID)
	assert.Equal(t, LabelStatic, e.View.Mode)
	assert.Equal(t, "b", e.Label)
}

func TestDispatchInvalidConnect(t *testing.T) {
	a := newAdapter(t)
	err := a.Dispatch(Connect{Source: "1", Target: "9"})
	assert.ErrorIs(t, err, graph.ErrInvalidEndpoint)
	assert.Len(t, a.Frame().Edges, 1)
}

func TestDispatchRename(t *testing.T) {
	a := newAdapter(t)

	require.NoError(t, a.Dispatch(NodeDoubleClick{NodeID: "1"}))
	require.NotNil(t, a.Frame().NameDialog)
	assert.Equal(t, "q0 (Inicial)", a.Frame().NameDialog.Draft)

	require.NoError(t, a.Dispatch(NameInput{Text: "   "}))
	assert.ErrorIs(t, a.Dispatch(NameKey{Key: KeyEnter}), editing.ErrEmptyName)
	assert.NotNil(t, a.Frame().NameDialog, "blank name keeps the dialog open")

	require.NoError(t, a.Dispatch(NameInput{Text: "start"}))
	require.NoError(t, a.Dispatch(NameSave{}))
	f := a.Frame()
	assert.Nil(t, f.NameDialog)
	assert.Equal(t, "start", f.Nodes[0].Data.Label)
}

func TestDispatchRenameEscape(t *testing.T) {
	a := newAdapter(t)
	require.NoError(t, a.Dispatch(NodeDoubleClick{NodeID: "2"}))
	require.NoError(t, a.Dispatch(NameInput{Text: "x"}))
	require.NoError(t, a.Dispatch(NameKey{Key: KeyEscape}))

	f := a.Frame()
	assert.Nil(t, f.NameDialog)
	assert.Equal(t, "q1 (Final)", f.Nodes[1].Data.Label)
}

func TestDispatchLabelInputDuringRename(t *testing.T) {
	a := newAdapter(t)
	require.NoError(t, a.Dispatch(NodeDoubleClick{NodeID: "1"}))

	assert.ErrorIs(t, a.Dispatch(LabelInput{Text: "from the overlay"}), editing.ErrNotEditing)
	require.NoError(t, a.Dispatch(NameSave{}))
	assert.Equal(t, "q0 (Inicial)", a.Frame().Nodes[0].Data.Label)
}

func TestDispatchNameInputDuringLabelEdit(t *testing.T) {
	a := newAdapter(t)
	require.NoError(t, a.Dispatch(EdgeDoubleClick{EdgeID: "e1-2"}))

	assert.ErrorIs(t, a.Dispatch(NameInput{Text: "from the dialog"}), editing.ErrNotEditing)
	require.NoError(t, a.Dispatch(LabelBlur{}))
	assert.Equal(t, "a", findEdge(t, a.Frame(), "e1-2").Label)
}

func TestDispatchNodesChange(t *testing.T) {
	a := newAdapter(t)
	pos := graph.Position{X: 10, Y: 20}
	require.NoError(t, a.Dispatch(NodesChange{Changes: []Change{
		{Type: ChangePosition, ID: "1", Position: &pos},
		{Type: ChangeSelect, ID: "2", Selected: true},
		{Type: ChangeDimensions, ID: "2"},
	}}))

	f := a.Frame()
	assert.Equal(t, pos, f.Nodes[0].Position)
	assert.True(t, f.Nodes[1].Selected)

	require.NoError(t, a.Dispatch(NodesChange{Changes: []Change{{Type: ChangeRemove, ID: "2"}}}))
	f = a.Frame()
	assert.Len(t, f.Nodes, 1)
	assert.Empty(t, f.Edges, "removing a node cascades its edges")
}

func TestDispatchEdgesChange(t *testing.T) {
	a := newAdapter(t)
	require.NoError(t, a.Dispatch(EdgesChange{Changes: []Change{{Type: ChangeSelect, ID: "e1-2", Selected: true}}}))
	assert.True(t, a.Frame().Edges[0].Selected)

	require.NoError(t, a.Dispatch(EdgesChange{Changes: []Change{{Type: ChangeRemove, ID: "e1-2"}}}))
	assert.Empty(t, a.Frame().Edges)
	assert.Len(t, a.Frame().Nodes, 2)
}

func TestDispatchDeleteDropsSession(t *testing.T) {
	a := newAdapter(t)
	require.NoError(t, a.Dispatch(EdgeDoubleClick{EdgeID: "e1-2"}))
	require.NoError(t, a.Dispatch(NodesDelete{Nodes: []string{"1"}}))

	assert.Equal(t, editing.Idle{}, a.ed.Editing())
	assert.Empty(t, a.Frame().Edges)
}

func TestDispatchAddState(t *testing.T) {
	a := newAdapter(t)
	require.NoError(t, a.Dispatch(AddState{}))
	f := a.Frame()
	require.Len(t, f.Nodes, 3)
	assert.Equal(t, "3", f.Nodes[2].ID)
	assert.Equal(t, "q2", f.Nodes[2].Data.Label)
}

func TestArrangeNodesReportsPositionChanges(t *testing.T) {
	a := newAdapter(t)
	g := a.ed.Graph()

	nc := ArrangeNodes(g, layout.Layered, layout.DefaultOptions())
	require.Len(t, nc.Changes, 1, "node 1 is already at the origin")
	assert.Equal(t, Change{Type: ChangePosition, ID: "2", Position: &graph.Position{X: 350, Y: 100}}, nc.Changes[0])

	require.NoError(t, a.Dispatch(nc))
	f := a.Frame()
	assert.Equal(t, graph.Position{X: 350, Y: 100}, f.Nodes[1].Position)
	assert.Equal(t, edgeIDs(g), edgeIDs(a.ed.Graph()), "topology untouched")

	assert.Empty(t, ArrangeNodes(a.ed.Graph(), layout.Layered, layout.DefaultOptions()).Changes)
}

func edgeIDs(g graph.Graph) []string {
	var ids []string
	for _, e := range g.Edges() {
		ids = append(ids, e.ID)
	}
	return ids
}

func TestEventsRunThroughLoop(t *testing.T) {
	a := newAdapter(t)
	l := editor.NewLoop(a.ed, 4)
	frames := make(chan Frame, 8)
	a.ed.OnChange(func(s editor.Snapshot) { frames <- Project(s, a.Options()) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)
	<-frames

	require.NoError(t, l.Post(ctx, AddState{}))
	select {
	case f := <-frames:
		assert.Len(t, f.Nodes, 3)
	case <-time.After(time.Second):
		t.Fatal("no frame after posting addState")
	}
}
