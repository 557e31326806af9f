package graph

import "time"

// IDSet is a set of node or edge ids.
type IDSet map[string]struct{}

// NewIDSet builds a set from ids.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add inserts ids into the set.
func (s IDSet) Add(ids ...string) {
	for _, id := range ids {
		s[id] = struct{}{}
	}
}

// Store owns the current graph snapshot. Each mutation computes the next
// snapshot from the previous one and swaps it in.
//
// A Store is not safe for concurrent use; callers serialize access.
type Store struct {
	current Graph
	now     func() time.Time
}

// NewStore creates a store holding g.
func NewStore(g Graph) *Store {
	return &Store{current: g, now: time.Now}
}

// SetClock replaces the time source used for edge ids.
func (s *Store) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	s.now = now
}

// Snapshot returns the current graph.
func (s *Store) Snapshot() Graph {
	return s.current
}

// Apply replaces the current graph with f(current).
func (s *Store) Apply(f func(Graph) Graph) Graph {
	s.current = f(s.current)
	return s.current
}

// AddNode adds a node at pos and returns it.
func (s *Store) AddNode(pos Position) Node {
	next, n := s.current.AddNode(pos)
	s.current = next
	return n
}

// AddEdge adds an edge between existing nodes. On ErrInvalidEndpoint the
// graph is left unchanged.
func (s *Store) AddEdge(source, target string) (Edge, error) {
	next, e, err := s.current.AddEdge(source, target, s.now())
	if err != nil {
		return Edge{}, err
	}
	s.current = next
	return e, nil
}

// UpdateNodeLabel sets a node's label, reporting whether the node existed.
func (s *Store) UpdateNodeLabel(id, text string) bool {
	next, ok := s.current.UpdateNodeLabel(id, text)
	s.current = next
	return ok
}

// UpdateEdgeLabel sets an edge's label, reporting whether the edge existed.
func (s *Store) UpdateEdgeLabel(id, text string) bool {
	next, ok := s.current.UpdateEdgeLabel(id, text)
	s.current = next
	return ok
}

// MoveNode sets a node's position, reporting whether the node existed.
func (s *Store) MoveNode(id string, pos Position) bool {
	next, ok := s.current.MoveNode(id, pos)
	s.current = next
	return ok
}

// SelectNode sets a node's selected flag.
func (s *Store) SelectNode(id string, selected bool) bool {
	next, ok := s.current.SelectNode(id, selected)
	s.current = next
	return ok
}

// SelectEdge sets an edge's selected flag.
func (s *Store) SelectEdge(id string, selected bool) bool {
	next, ok := s.current.SelectEdge(id, selected)
	s.current = next
	return ok
}
