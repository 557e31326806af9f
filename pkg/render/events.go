package render

import (
	"fmt"

	"github.com/ha1tch/automata-diagram/pkg/editor"
	"github.com/ha1tch/automata-diagram/pkg/graph"
)

// Event types as the renderer names them.
const (
	TypeConnect         = "connect"
	TypeNodesChange     = "nodesChange"
	TypeEdgesChange     = "edgesChange"
	TypeNodeDoubleClick = "nodeDoubleClick"
	TypeEdgeDoubleClick = "edgeDoubleClick"
	TypeNodesDelete     = "nodesDelete"
	TypeLabelInput      = "labelInput"
	TypeLabelBlur       = "labelBlur"
	TypeNameInput       = "nameInput"
	TypeNameKey         = "nameKey"
	TypeNameSave        = "nameSave"
	TypeNameCancel      = "nameCancel"
	TypeAddState        = "addState"
)

// Change kinds carried by nodesChange and edgesChange.
const (
	ChangePosition   = "position"
	ChangeSelect     = "select"
	ChangeRemove     = "remove"
	ChangeDimensions = "dimensions"
)

// Keys the rename dialog reacts to.
const (
	KeyEnter  = "Enter"
	KeyEscape = "Escape"
)

// Event is a renderer event. Every event is also an editor.Command, so it
// can be executed directly or posted to an editor.Loop.
type Event interface {
	editor.Command
	editor.Typed
}

// Change is one structural update from the renderer.
type Change struct {
	Type     string          `json:"type"`
	ID       string          `json:"id"`
	Position *graph.Position `json:"position,omitempty"`
	Selected bool            `json:"selected,omitempty"`
}

// Connect is a completed drag from one node to another.
type Connect struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// NodesChange carries node position, selection and removal updates.
type NodesChange struct {
	Changes []Change `json:"changes"`
}

// EdgesChange carries edge selection and removal updates.
type EdgesChange struct {
	Changes []Change `json:"changes"`
}

// NodeDoubleClick is a double-activation on a node.
type NodeDoubleClick struct {
	NodeID string `json:"nodeId"`
}

// EdgeDoubleClick is a double-activation on an edge label.
type EdgeDoubleClick struct {
	EdgeID string `json:"edgeId"`
}

// NodesDelete lists what the user removed with the delete key.
type NodesDelete struct {
	Nodes []string `json:"nodes"`
	Edges []string `json:"edges,omitempty"`
}

// LabelInput is a keystroke in the edge label overlay.
type LabelInput struct {
	Text string `json:"text"`
}

// LabelBlur is focus leaving the edge label overlay.
type LabelBlur struct{}

// NameInput is a keystroke in the rename dialog.
type NameInput struct {
	Text string `json:"text"`
}

// NameKey is a key press in the rename dialog.
type NameKey struct {
	Key string `json:"key"`
}

// NameSave is the rename dialog's save button.
type NameSave struct{}

// NameCancel is the rename dialog's cancel button or close.
type NameCancel struct{}

// AddState is the host chrome's add-state trigger.
type AddState struct{}

func (Connect) Type() string         { return TypeConnect }
func (NodesChange) Type() string     { return TypeNodesChange }
func (EdgesChange) Type() string     { return TypeEdgesChange }
func (NodeDoubleClick) Type() string { return TypeNodeDoubleClick }
func (EdgeDoubleClick) Type() string { return TypeEdgeDoubleClick }
func (NodesDelete) Type() string     { return TypeNodesDelete }
func (LabelInput) Type() string      { return TypeLabelInput }
func (LabelBlur) Type() string       { return TypeLabelBlur }
func (NameInput) Type() string       { return TypeNameInput }
func (NameKey) Type() string         { return TypeNameKey }
func (NameSave) Type() string        { return TypeNameSave }
func (NameCancel) Type() string      { return TypeNameCancel }
func (AddState) Type() string        { return TypeAddState }

func (ev Connect) Apply(e *editor.Editor) error {
	_, err := e.Connect(ev.Source, ev.Target)
	return err
}

func (ev NodesChange) Apply(e *editor.Editor) error {
	var removed []string
	for _, c := range ev.Changes {
		switch c.Type {
		case ChangePosition:
			if c.Position != nil {
				e.MoveNode(c.ID, *c.Position)
			}
		case ChangeSelect:
			e.SelectNode(c.ID, c.Selected)
		case ChangeRemove:
			removed = append(removed, c.ID)
		}
	}
	if len(removed) > 0 {
		e.Delete(removed, nil)
	}
	return nil
}

func (ev EdgesChange) Apply(e *editor.Editor) error {
	var removed []string
	for _, c := range ev.Changes {
		switch c.Type {
		case ChangeSelect:
			e.SelectEdge(c.ID, c.Selected)
		case ChangeRemove:
			removed = append(removed, c.ID)
		}
	}
	if len(removed) > 0 {
		e.Delete(nil, removed)
	}
	return nil
}

func (ev NodeDoubleClick) Apply(e *editor.Editor) error {
	return e.BeginNodeEdit(ev.NodeID)
}

func (ev EdgeDoubleClick) Apply(e *editor.Editor) error {
	return e.BeginEdgeEdit(ev.EdgeID)
}

func (ev NodesDelete) Apply(e *editor.Editor) error {
	e.Delete(ev.Nodes, ev.Edges)
	return nil
}

func (ev LabelInput) Apply(e *editor.Editor) error {
	return e.SetLabelDraft(ev.Text)
}

func (LabelBlur) Apply(e *editor.Editor) error {
	return e.BlurLabel()
}

func (ev NameInput) Apply(e *editor.Editor) error {
	return e.SetNameDraft(ev.Text)
}

func (ev NameKey) Apply(e *editor.Editor) error {
	switch ev.Key {
	case KeyEnter:
		return e.AcceptName()
	case KeyEscape:
		return e.CancelName()
	}
	return nil
}

func (NameSave) Apply(e *editor.Editor) error {
	return e.AcceptName()
}

func (NameCancel) Apply(e *editor.Editor) error {
	return e.CancelName()
}

func (AddState) Apply(e *editor.Editor) error {
	return editor.AddNode{}.Apply(e)
}

// Envelope is the wire form of an event: a type tag plus the union of all
// event fields.
type Envelope struct {
	Type    string   `json:"type"`
	Source  string   `json:"source,omitempty"`
	Target  string   `json:"target,omitempty"`
	Changes []Change `json:"changes,omitempty"`
	NodeID  string   `json:"nodeId,omitempty"`
	EdgeID  string   `json:"edgeId,omitempty"`
	Nodes   []string `json:"nodes,omitempty"`
	Edges   []string `json:"edges,omitempty"`
	Text    string   `json:"text,omitempty"`
	Key     string   `json:"key,omitempty"`
}

// Event converts the envelope to its typed event.
func (env Envelope) Event() (Event, error) {
	switch env.Type {
	case TypeConnect:
		return Connect{Source: env.Source, Target: env.Target}, nil
	case TypeNodesChange:
		return NodesChange{Changes: env.Changes}, nil
	case TypeEdgesChange:
		return EdgesChange{Changes: env.Changes}, nil
	case TypeNodeDoubleClick:
		return NodeDoubleClick{NodeID: env.NodeID}, nil
	case TypeEdgeDoubleClick:
		return EdgeDoubleClick{EdgeID: env.EdgeID}, nil
	case TypeNodesDelete:
		return NodesDelete{Nodes: env.Nodes, Edges: env.Edges}, nil
	case TypeLabelInput:
		return LabelInput{Text: env.Text}, nil
	case TypeLabelBlur:
		return LabelBlur{}, nil
	case TypeNameInput:
		return NameInput{Text: env.Text}, nil
	case TypeNameKey:
		return NameKey{Key: env.Key}, nil
	case TypeNameSave:
		return NameSave{}, nil
	case TypeNameCancel:
		return NameCancel{}, nil
	case TypeAddState:
		return AddState{}, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", env.Type)
	}
}

// Adapter feeds renderer events to an editor on the caller's goroutine.
// Errors are the editor's local no-op outcomes and are only reported, never
// raised to the renderer.
type Adapter struct {
	ed   *editor.Editor
	opts Options
}

// NewAdapter creates an adapter for ed.
func NewAdapter(ed *editor.Editor, opts Options) *Adapter {
	return &Adapter{ed: ed, opts: opts}
}

// Dispatch executes ev against the editor.
func (a *Adapter) Dispatch(ev Event) error {
	return a.ed.Exec(ev)
}

// Frame projects the editor's current snapshot.
func (a *Adapter) Frame() Frame {
	return Project(a.ed.Snapshot(), a.opts)
}

// Options returns the projection options.
func (a *Adapter) Options() Options {
	return a.opts
}
