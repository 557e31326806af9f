// Package editor ties the diagram store and the edit session together and
// implements the gesture-level operations: adding states, connecting them,
// relabelling, and deleting with cascade.
//
// An Editor is single-threaded. Hosts that receive gestures from several
// goroutines run it behind a Loop, which applies commands one at a time in
// arrival order.
package editor

import (
	"log/slog"
	"time"

	"github.com/ha1tch/automata-diagram/pkg/editing"
	"github.com/ha1tch/automata-diagram/pkg/graph"
)

// Default placement for states added from the host trigger.
const (
	AddOriginX = 100
	AddOriginY = 200
	AddStepX   = 60
)

// Snapshot is a point-in-time view of the editor.
type Snapshot struct {
	Graph   graph.Graph
	Editing editing.State
}

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the logger. Nil keeps slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.log = l
		}
	}
}

// WithClock sets the time source used for edge ids.
func WithClock(now func() time.Time) Option {
	return func(e *Editor) {
		e.store.SetClock(now)
	}
}

// Editor owns the store and the edit session.
type Editor struct {
	store   *graph.Store
	session editing.Machine
	log     *slog.Logger

	observers []func(Snapshot)
}

// New creates an editor over g.
func New(g graph.Graph, opts ...Option) *Editor {
	e := &Editor{
		store: graph.NewStore(g),
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Snapshot returns the current graph and edit state.
func (e *Editor) Snapshot() Snapshot {
	return Snapshot{Graph: e.store.Snapshot(), Editing: e.session.State()}
}

// Graph returns the current graph.
func (e *Editor) Graph() graph.Graph {
	return e.store.Snapshot()
}

// Editing returns the current edit state.
func (e *Editor) Editing() editing.State {
	return e.session.State()
}

// OnChange registers fn to receive a snapshot after every executed command.
func (e *Editor) OnChange(fn func(Snapshot)) {
	e.observers = append(e.observers, fn)
}

// Exec applies cmd and notifies observers. Errors from the command are
// logged and returned; they never leave the editor in a partial state.
func (e *Editor) Exec(cmd Command) error {
	err := cmd.Apply(e)
	if err != nil {
		e.log.Debug("command rejected", "command", commandName(cmd), "error", err)
	}
	e.notify()
	return err
}

func (e *Editor) notify() {
	snap := e.Snapshot()
	graphNodes.Set(float64(snap.Graph.NodeCount()))
	graphEdges.Set(float64(snap.Graph.EdgeCount()))
	for _, fn := range e.observers {
		fn(snap)
	}
}

// AddState adds a state at the default position for the current node count.
func (e *Editor) AddState() graph.Node {
	count := e.store.Snapshot().NodeCount()
	return e.AddStateAt(graph.Position{
		X: float64(AddOriginX + AddStepX*count),
		Y: AddOriginY,
	})
}

// AddStateAt adds a state at pos.
func (e *Editor) AddStateAt(pos graph.Position) graph.Node {
	n := e.store.AddNode(pos)
	gestures.WithLabelValues("add_state").Inc()
	e.log.Debug("state added", "id", n.ID, "label", n.Label())
	return n
}

// MoveNode applies a renderer drag.
func (e *Editor) MoveNode(id string, pos graph.Position) bool {
	return e.store.MoveNode(id, pos)
}

// SelectNode applies a renderer selection change.
func (e *Editor) SelectNode(id string, selected bool) bool {
	return e.store.SelectNode(id, selected)
}

// SelectEdge applies a renderer selection change.
func (e *Editor) SelectEdge(id string, selected bool) bool {
	return e.store.SelectEdge(id, selected)
}

// ClearSelection deselects everything.
func (e *Editor) ClearSelection() {
	e.store.Apply(graph.Graph.ClearSelection)
}
