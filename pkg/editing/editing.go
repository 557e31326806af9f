// Package editing implements the single in-place text edit session used to
// rename a state or relabel a transition.
//
// The machine only holds the target id and the uncommitted draft. It never
// writes to the graph; accepting or blurring yields a Commit that the caller
// applies to the store.
package editing

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// MaxNameLength caps node name drafts, in runes.
const MaxNameLength = 32

var (
	// ErrEmptyName is returned when accepting a node name that is empty or
	// whitespace only. The session stays open.
	ErrEmptyName = errors.New("empty node name")

	// ErrNotEditing is returned when a trigger arrives that the current state
	// does not handle.
	ErrNotEditing = errors.New("no matching edit session")
)

// Kind names what a session edits.
type Kind int

const (
	KindNode Kind = iota + 1
	KindEdge
)

func (k Kind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindEdge:
		return "edge"
	default:
		return "none"
	}
}

// State is one of Idle, EditingNode or EditingEdge.
type State interface {
	isState()
}

// Idle means no session is open.
type Idle struct{}

// EditingNode is an open rename session for a node.
type EditingNode struct {
	ID    string
	Draft string
}

// EditingEdge is an open label session for an edge.
type EditingEdge struct {
	ID    string
	Draft string
}

func (Idle) isState()        {}
func (EditingNode) isState() {}
func (EditingEdge) isState() {}

// Target returns the kind and id a state edits. Idle returns zero values.
func Target(s State) (Kind, string) {
	switch st := s.(type) {
	case EditingNode:
		return KindNode, st.ID
	case EditingEdge:
		return KindEdge, st.ID
	default:
		return 0, ""
	}
}

// Draft returns the draft text of an open session.
func Draft(s State) (string, bool) {
	switch st := s.(type) {
	case EditingNode:
		return st.Draft, true
	case EditingEdge:
		return st.Draft, true
	default:
		return "", false
	}
}

// IsEditingNode reports whether s edits node id.
func IsEditingNode(s State, id string) bool {
	st, ok := s.(EditingNode)
	return ok && st.ID == id
}

// IsEditingEdge reports whether s edits edge id.
func IsEditingEdge(s State, id string) bool {
	st, ok := s.(EditingEdge)
	return ok && st.ID == id
}

// Commit is a label write produced by closing a session.
type Commit struct {
	Kind Kind
	ID   string
	Text string
}

// Machine holds the current edit state. The zero value is Idle.
type Machine struct {
	state State
}

// State returns the current state.
func (m *Machine) State() State {
	if m.state == nil {
		return Idle{}
	}
	return m.state
}

// Active reports whether a session is open.
func (m *Machine) Active() bool {
	_, idle := m.State().(Idle)
	return !idle
}

// BeginNode opens a rename session for node id seeded with its current
// label. Any open session is abandoned without committing. It returns the
// abandoned state, or Idle.
func (m *Machine) BeginNode(id, label string) State {
	prev := m.State()
	m.state = EditingNode{ID: id, Draft: clampName(label)}
	return prev
}

// BeginEdge opens a label session for edge id seeded with its current
// label. An open edge session loses focus first and is committed; an open
// node session is abandoned. Re-entering the edge already being edited
// keeps its draft.
func (m *Machine) BeginEdge(id, label string) (Commit, bool) {
	var (
		c  Commit
		ok bool
	)
	if prev, isEdge := m.State().(EditingEdge); isEdge {
		if prev.ID == id {
			return Commit{}, false
		}
		c, ok = Commit{Kind: KindEdge, ID: prev.ID, Text: prev.Draft}, true
	}
	m.state = EditingEdge{ID: id, Draft: label}
	return c, ok
}

// SetNameDraft replaces the draft of an open rename session. Any other state
// returns ErrNotEditing.
func (m *Machine) SetNameDraft(text string) error {
	st, ok := m.State().(EditingNode)
	if !ok {
		return ErrNotEditing
	}
	st.Draft = clampName(text)
	m.state = st
	return nil
}

// SetLabelDraft replaces the draft of an open edge label session. Any other
// state returns ErrNotEditing.
func (m *Machine) SetLabelDraft(text string) error {
	st, ok := m.State().(EditingEdge)
	if !ok {
		return ErrNotEditing
	}
	st.Draft = text
	m.state = st
	return nil
}

// Accept handles the confirm key or save action on a node rename. A draft
// that is blank after trimming is rejected with ErrEmptyName and the session
// stays open. The draft is committed as typed, not trimmed.
func (m *Machine) Accept() (Commit, error) {
	st, ok := m.State().(EditingNode)
	if !ok {
		return Commit{}, ErrNotEditing
	}
	if strings.TrimSpace(st.Draft) == "" {
		return Commit{}, ErrEmptyName
	}
	m.state = Idle{}
	return Commit{Kind: KindNode, ID: st.ID, Text: st.Draft}, nil
}

// Cancel handles the escape key or cancel action on a node rename. The draft
// is dropped and nothing is committed.
func (m *Machine) Cancel() error {
	if _, ok := m.State().(EditingNode); !ok {
		return ErrNotEditing
	}
	m.state = Idle{}
	return nil
}

// Blur handles focus leaving an edge label input. The draft is committed
// verbatim; an empty label is valid.
func (m *Machine) Blur() (Commit, error) {
	st, ok := m.State().(EditingEdge)
	if !ok {
		return Commit{}, ErrNotEditing
	}
	m.state = Idle{}
	return Commit{Kind: KindEdge, ID: st.ID, Text: st.Draft}, nil
}

// Drop closes the session without committing if it targets kind/id. It is
// used when the target is deleted mid-edit.
func (m *Machine) Drop(kind Kind, id string) bool {
	k, target := Target(m.State())
	if k == 0 || k != kind || target != id {
		return false
	}
	m.state = Idle{}
	return true
}

func clampName(s string) string {
	if utf8.RuneCountInString(s) <= MaxNameLength {
		return s
	}
	return string([]rune(s)[:MaxNameLength])
}
