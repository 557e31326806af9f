// Package graph provides the diagram model: states (nodes), labelled
// transitions (edges) and the store that owns them.
//
// A Graph is an immutable point-in-time snapshot. Every mutation returns a
// new Graph and never writes through slices handed out by an older one, so a
// caller holding a previous snapshot keeps a consistent view.
package graph

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidEndpoint is returned when an edge names a node that is not
	// present in the graph.
	ErrInvalidEndpoint = errors.New("invalid endpoint")

	// ErrDuplicateID is returned when building a graph from parts that reuse an id.
	ErrDuplicateID = errors.New("duplicate id")
)

// Position is a 2D canvas coordinate in renderer units.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeData carries the renderer-visible payload of a node.
type NodeData struct {
	Label string `json:"label"`
}

// Node is a state in the diagram.
type Node struct {
	ID       string   `json:"id"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`
	Selected bool     `json:"selected,omitempty"`
}

// Label returns the node's display name.
func (n Node) Label() string {
	return n.Data.Label
}

// Edge is a directed, labelled transition between two nodes.
type Edge struct {
	ID       string `json:"id"`
	Source   string `json:"source"`
	Target   string `json:"target"`
	Label    string `json:"label"`
	Selected bool   `json:"selected,omitempty"`
}

// IsSelfLoop reports whether the edge starts and ends on the same node.
func (e Edge) IsSelfLoop() bool {
	return e.Source == e.Target
}

// Graph is an immutable snapshot of the diagram.
type Graph struct {
	nodes []Node
	edges []Edge

	// nextSeq is the next numeric node id. It only grows, so ids are never
	// reissued after a deletion.
	nextSeq int

	// lastStamp is the last timestamp component used in an edge id.
	lastStamp int64
}

// New returns an empty graph whose first node will be "1".
func New() Graph {
	return Graph{nextSeq: 1}
}

// Seed returns the starting two-state diagram: q0 and q1 joined by "a".
func Seed() Graph {
	g, err := FromParts(
		[]Node{
			{ID: "1", Position: Position{X: 100, Y: 100}, Data: NodeData{Label: "q0 (Inicial)"}},
			{ID: "2", Position: Position{X: 400, Y: 100}, Data: NodeData{Label: "q1 (Final)"}},
		},
		[]Edge{
			{ID: "e1-2", Source: "1", Target: "2", Label: "a"},
		},
	)
	if err != nil {
		panic(err) // static data
	}
	return g
}

// FromParts builds a graph from existing nodes and edges. The node id
// sequence resumes after the largest numeric id present, and edge stamps
// resume after the largest stamp found in an edge id.
func FromParts(nodes []Node, edges []Edge) (Graph, error) {
	g := New()
	seen := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if n.ID == "" {
			return Graph{}, fmt.Errorf("node with empty id")
		}
		if seen[n.ID] {
			return Graph{}, fmt.Errorf("node %q: %w", n.ID, ErrDuplicateID)
		}
		seen[n.ID] = true
		if v, err := strconv.Atoi(n.ID); err == nil && v >= g.nextSeq {
			g.nextSeq = v + 1
		}
	}

	edgeSeen := make(map[string]bool, len(edges))
	for _, e := range edges {
		if edgeSeen[e.ID] {
			return Graph{}, fmt.Errorf("edge %q: %w", e.ID, ErrDuplicateID)
		}
		edgeSeen[e.ID] = true
		if !seen[e.Source] || !seen[e.Target] {
			return Graph{}, fmt.Errorf("edge %q (%s -> %s): %w", e.ID, e.Source, e.Target, ErrInvalidEndpoint)
		}
		if stamp, ok := edgeStamp(e.ID); ok && stamp > g.lastStamp {
			g.lastStamp = stamp
		}
	}

	g.nodes = append([]Node(nil), nodes...)
	g.edges = append([]Edge(nil), edges...)
	return g, nil
}

// Nodes returns a copy of the node list in insertion order.
func (g Graph) Nodes() []Node {
	return append([]Node(nil), g.nodes...)
}

// Edges returns a copy of the edge list in insertion order.
func (g Graph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

// NodeCount returns the number of nodes currently present.
func (g Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges currently present.
func (g Graph) EdgeCount() int {
	return len(g.edges)
}

// NextSequence returns the id the next added node will receive.
func (g Graph) NextSequence() int {
	return g.nextSeq
}

// Node looks up a node by id.
func (g Graph) Node(id string) (Node, bool) {
	if i := g.nodeIndex(id); i >= 0 {
		return g.nodes[i], true
	}
	return Node{}, false
}

// Edge looks up an edge by id.
func (g Graph) Edge(id string) (Edge, bool) {
	if i := g.edgeIndex(id); i >= 0 {
		return g.edges[i], true
	}
	return Edge{}, false
}

// HasNode reports whether id names a present node.
func (g Graph) HasNode(id string) bool {
	return g.nodeIndex(id) >= 0
}

// HasEdge reports whether id names a present edge.
func (g Graph) HasEdge(id string) bool {
	return g.edgeIndex(id) >= 0
}

// EdgesBetween returns the edges from source to target, in insertion order.
func (g Graph) EdgesBetween(source, target string) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.Source == source && e.Target == target {
			out = append(out, e)
		}
	}
	return out
}

// Selection returns the ids of the selected nodes and edges.
func (g Graph) Selection() (nodes, edges []string) {
	for _, n := range g.nodes {
		if n.Selected {
			nodes = append(nodes, n.ID)
		}
	}
	for _, e := range g.edges {
		if e.Selected {
			edges = append(edges, e.ID)
		}
	}
	return nodes, edges
}

// DanglingEdges returns the ids of edges whose source or target is missing.
func (g Graph) DanglingEdges() []string {
	var out []string
	for _, e := range g.edges {
		if !g.HasNode(e.Source) || !g.HasNode(e.Target) {
			out = append(out, e.ID)
		}
	}
	return out
}

// DefaultLabel returns the placeholder name a node added now would get.
// It is derived from the current node count, so it can repeat after a deletion.
func (g Graph) DefaultLabel() string {
	return fmt.Sprintf("q%d", len(g.nodes))
}

// AddNode places a new node at pos with a fresh id and the default label.
func (g Graph) AddNode(pos Position) (Graph, Node) {
	seq := g.nextSeq
	id := strconv.Itoa(seq)
	for g.HasNode(id) {
		seq++
		id = strconv.Itoa(seq)
	}

	n := Node{
		ID:       id,
		Position: pos,
		Data:     NodeData{Label: g.DefaultLabel()},
	}

	next := g
	next.nodes = appendNode(g.nodes, n)
	next.nextSeq = seq + 1
	return next, n
}

// AddEdge connects source to target with an empty label. The id has the
// form e<source>-<target>-<millis>; the millisecond stamp is bumped past the
// last one issued so two edges created in the same millisecond stay distinct.
func (g Graph) AddEdge(source, target string, now time.Time) (Graph, Edge, error) {
	if !g.HasNode(source) {
		return g, Edge{}, fmt.Errorf("source %q: %w", source, ErrInvalidEndpoint)
	}
	if !g.HasNode(target) {
		return g, Edge{}, fmt.Errorf("target %q: %w", target, ErrInvalidEndpoint)
	}

	stamp := now.UnixMilli()
	if stamp <= g.lastStamp {
		stamp = g.lastStamp + 1
	}
	id := EdgeID(source, target, stamp)
	for g.HasEdge(id) {
		stamp++
		id = EdgeID(source, target, stamp)
	}

	e := Edge{ID: id, Source: source, Target: target}

	next := g
	next.edges = appendEdge(g.edges, e)
	next.lastStamp = stamp
	return next, e, nil
}

// EdgeID formats an edge id from its endpoints and creation stamp.
func EdgeID(source, target string, stamp int64) string {
	return fmt.Sprintf("e%s-%s-%d", source, target, stamp)
}

// UpdateNodeLabel replaces a node's label. It reports false and returns g
// unchanged when the node no longer exists.
func (g Graph) UpdateNodeLabel(id, text string) (Graph, bool) {
	return g.mapNode(id, func(n *Node) { n.Data.Label = text })
}

// UpdateEdgeLabel replaces an edge's label. It reports false and returns g
// unchanged when the edge no longer exists.
func (g Graph) UpdateEdgeLabel(id, text string) (Graph, bool) {
	return g.mapEdge(id, func(e *Edge) { e.Label = text })
}

// MoveNode sets a node's position.
func (g Graph) MoveNode(id string, pos Position) (Graph, bool) {
	return g.mapNode(id, func(n *Node) { n.Position = pos })
}

// SelectNode sets a node's selected flag.
func (g Graph) SelectNode(id string, selected bool) (Graph, bool) {
	return g.mapNode(id, func(n *Node) { n.Selected = selected })
}

// SelectEdge sets an edge's selected flag.
func (g Graph) SelectEdge(id string, selected bool) (Graph, bool) {
	return g.mapEdge(id, func(e *Edge) { e.Selected = selected })
}

// ClearSelection deselects every node and edge.
func (g Graph) ClearSelection() Graph {
	next := g
	next.nodes = make([]Node, len(g.nodes))
	for i, n := range g.nodes {
		n.Selected = false
		next.nodes[i] = n
	}
	next.edges = make([]Edge, len(g.edges))
	for i, e := range g.edges {
		e.Selected = false
		next.edges[i] = e
	}
	return next
}

// RemoveNodes removes the named nodes. Edges are left untouched, even when
// they reference a removed node.
func (g Graph) RemoveNodes(ids IDSet) Graph {
	if len(ids) == 0 {
		return g
	}
	next := g
	next.nodes = make([]Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		if !ids.Has(n.ID) {
			next.nodes = append(next.nodes, n)
		}
	}
	return next
}

// RemoveEdges removes the named edges.
func (g Graph) RemoveEdges(ids IDSet) Graph {
	if len(ids) == 0 {
		return g
	}
	next := g
	next.edges = make([]Edge, 0, len(g.edges))
	for _, e := range g.edges {
		if !ids.Has(e.ID) {
			next.edges = append(next.edges, e)
		}
	}
	return next
}

func (g Graph) mapNode(id string, f func(*Node)) (Graph, bool) {
	i := g.nodeIndex(id)
	if i < 0 {
		return g, false
	}
	next := g
	next.nodes = append([]Node(nil), g.nodes...)
	f(&next.nodes[i])
	return next, true
}

func (g Graph) mapEdge(id string, f func(*Edge)) (Graph, bool) {
	i := g.edgeIndex(id)
	if i < 0 {
		return g, false
	}
	next := g
	next.edges = append([]Edge(nil), g.edges...)
	f(&next.edges[i])
	return next, true
}

func (g Graph) nodeIndex(id string) int {
	for i, n := range g.nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func (g Graph) edgeIndex(id string) int {
	for i, e := range g.edges {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// appendNode copies into a fresh backing array so the caller's slice is
// never shared with the result.
func appendNode(nodes []Node, n Node) []Node {
	out := make([]Node, len(nodes), len(nodes)+1)
	copy(out, nodes)
	return append(out, n)
}

func appendEdge(edges []Edge, e Edge) []Edge {
	out := make([]Edge, len(edges), len(edges)+1)
	copy(out, edges)
	return append(out, e)
}

// edgeStamp extracts the trailing millisecond stamp from a generated edge id.
func edgeStamp(id string) (int64, bool) {
	i := strings.LastIndexByte(id, '-')
	if i < 0 || strings.Count(id, "-") < 2 {
		return 0, false
	}
	v, err := strconv.ParseInt(id[i+1:], 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
