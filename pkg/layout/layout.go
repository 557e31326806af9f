// Package layout computes automatic node positions for a diagram. It never
// changes topology or labels: the result is a position per node id that the
// editor applies as ordinary moves.
package layout

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ha1tch/automata-diagram/pkg/graph"
)

// ErrUnknownAlgorithm is returned by ParseAlgorithm.
var ErrUnknownAlgorithm = errors.New("unknown layout algorithm")

// Algorithm represents a layout strategy.
type Algorithm int

const (
	Smart Algorithm = iota
	Grid
	Circular
	Layered
	Force
)

var algorithmNames = []string{"smart", "grid", "circular", "layered", "force"}

func (a Algorithm) String() string {
	if int(a) < len(algorithmNames) {
		return algorithmNames[a]
	}
	return fmt.Sprintf("Algorithm(%d)", int(a))
}

// ParseAlgorithm maps a name to an Algorithm. The empty string is Smart.
func ParseAlgorithm(s string) (Algorithm, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Smart, nil
	}
	for i, name := range algorithmNames {
		if name == s {
			return Algorithm(i), nil
		}
	}
	return Smart, fmt.Errorf("%q: %w", s, ErrUnknownAlgorithm)
}

// Options sets the placement grid, in renderer units.
type Options struct {
	Origin    graph.Position
	ColumnGap float64
	RowGap    float64
}

// DefaultOptions leaves room for a default-sized node plus its edge labels.
func DefaultOptions() Options {
	return ForNodeSize(150, 40)
}

// ForNodeSize spaces columns and rows for nodes of the given size, keeping
// room between them for edge labels. Non-positive sizes fall back to the
// default node.
func ForNodeSize(width, height float64) Options {
	if width <= 0 {
		width = 150
	}
	if height <= 0 {
		height = 40
	}
	return Options{
		Origin:    graph.Position{X: 100, Y: 100},
		ColumnGap: width + 100,
		RowGap:    height + 60,
	}
}

// Arrange returns a position for every node of g.
func Arrange(g graph.Graph, alg Algorithm, opts Options) map[string]graph.Position {
	if g.NodeCount() == 0 {
		return map[string]graph.Position{}
	}
	if alg == Smart {
		alg = choose(g)
	}

	var positions map[string]graph.Position
	switch alg {
	case Circular:
		positions = layoutCircular(g, opts)
	case Layered:
		positions = layoutLayered(g, opts)
	case Force:
		positions = layoutForce(g, opts)
	default:
		positions = layoutGrid(g, opts)
	}
	return resolveCollisions(g, positions, opts)
}

// choose picks an algorithm from the diagram's shape.
func choose(g graph.Graph) Algorithm {
	n := g.NodeCount()
	switch {
	case n <= 4 || isLinearChain(g):
		return Layered
	case n <= 8 && !hasCycles(g):
		return Layered
	case n <= 15:
		return Circular
	case float64(g.EdgeCount())/float64(n*n) > 0.25:
		return Force
	}
	return Layered
}

func ids(g graph.Graph) []string {
	nodes := g.Nodes()
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

// adjacency ignores self-loops and dangling edges.
func adjacency(g graph.Graph) (forward, backward map[string][]string) {
	forward = make(map[string][]string)
	backward = make(map[string][]string)
	for _, e := range g.Edges() {
		if e.IsSelfLoop() || !g.HasNode(e.Source) || !g.HasNode(e.Target) {
			continue
		}
		forward[e.Source] = append(forward[e.Source], e.Target)
		backward[e.Target] = append(backward[e.Target], e.Source)
	}
	return forward, backward
}

func layoutGrid(g graph.Graph, opts Options) map[string]graph.Position {
	positions := make(map[string]graph.Position)
	cols := int(math.Ceil(math.Sqrt(float64(g.NodeCount()))))
	for i, id := range ids(g) {
		positions[id] = graph.Position{
			X: opts.Origin.X + float64(i%cols)*opts.ColumnGap,
			Y: opts.Origin.Y + float64(i/cols)*opts.RowGap,
		}
	}
	return positions
}

// layoutCircular places nodes on an ellipse, first node at the top, the rest
// in breadth-first order so neighbours sit close together.
func layoutCircular(g graph.Graph, opts Options) map[string]graph.Position {
	positions := make(map[string]graph.Position)
	ordered := orderByConnectivity(g)
	n := len(ordered)

	rx := math.Max(opts.ColumnGap, float64(n)*opts.ColumnGap/(2*math.Pi))
	ry := math.Max(opts.RowGap, float64(n)*opts.RowGap/(2*math.Pi))
	cx := opts.Origin.X + rx
	cy := opts.Origin.Y + ry

	for i, id := range ordered {
		angle := -math.Pi/2 + 2*math.Pi*float64(i)/float64(n)
		positions[id] = graph.Position{
			X: math.Round(cx + rx*math.Cos(angle)),
			Y: math.Round(cy + ry*math.Sin(angle)),
		}
	}
	return positions
}

// layoutLayered puts each node in a column by breadth-first distance from the
// first node and orders columns with the barycenter heuristic.
func layoutLayered(g graph.Graph, opts Options) map[string]graph.Position {
	forward, backward := adjacency(g)
	layers := reduceCrossings(assignLayers(g, forward), forward, backward)

	widest := 0
	for _, l := range layers {
		if len(l) > widest {
			widest = len(l)
		}
	}

	positions := make(map[string]graph.Position)
	for col, layer := range layers {
		// Centre each column against the widest one.
		startY := opts.Origin.Y + float64(widest-len(layer))*opts.RowGap/2
		for row, id := range layer {
			positions[id] = graph.Position{
				X: opts.Origin.X + float64(col)*opts.ColumnGap,
				Y: startY + float64(row)*opts.RowGap,
			}
		}
	}
	return positions
}

func assignLayers(g graph.Graph, forward map[string][]string) [][]string {
	order := ids(g)
	layerOf := make(map[string]int)
	maxLayer := 0

	queue := []string{order[0]}
	layerOf[order[0]] = 0
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range forward[current] {
			if _, seen := layerOf[next]; !seen {
				layerOf[next] = layerOf[current] + 1
				if layerOf[next] > maxLayer {
					maxLayer = layerOf[next]
				}
				queue = append(queue, next)
			}
		}
	}

	// Unreachable nodes get their own trailing columns.
	for _, id := range order {
		if _, ok := layerOf[id]; !ok {
			maxLayer++
			layerOf[id] = maxLayer
		}
	}

	layers := make([][]string, maxLayer+1)
	for _, id := range order {
		l := layerOf[id]
		layers[l] = append(layers[l], id)
	}
	return layers
}

// reduceCrossings does one forward pass ordering by predecessors and one
// backward pass ordering by successors.
func reduceCrossings(layers [][]string, forward, backward map[string][]string) [][]string {
	if len(layers) <= 1 {
		return layers
	}

	pos := make(map[string]float64)
	for _, layer := range layers {
		for i, id := range layer {
			pos[id] = float64(i)
		}
	}

	reorder := func(layer []string, neighbours map[string][]string) {
		bary := make(map[string]float64, len(layer))
		for _, id := range layer {
			sum, count := 0.0, 0
			for _, nb := range neighbours[id] {
				if p, ok := pos[nb]; ok {
					sum += p
					count++
				}
			}
			if count > 0 {
				bary[id] = sum / float64(count)
			} else {
				bary[id] = pos[id]
			}
		}
		sort.SliceStable(layer, func(i, j int) bool {
			return bary[layer[i]] < bary[layer[j]]
		})
		for i, id := range layer {
			pos[id] = float64(i)
		}
	}

	for l := 1; l < len(layers); l++ {
		reorder(layers[l], backward)
	}
	for l := len(layers) - 2; l >= 0; l-- {
		reorder(layers[l], forward)
	}
	return layers
}

// layoutForce starts from a circle and relaxes with pairwise repulsion and
// spring attraction along edges.
func layoutForce(g graph.Graph, opts Options) map[string]graph.Position {
	order := ids(g)
	n := len(order)
	forward, _ := adjacency(g)

	// Work in grid units so the constants do not depend on the gaps.
	x := make(map[string]float64, n)
	y := make(map[string]float64, n)
	radius := math.Max(2, float64(n)/2)
	for i, id := range order {
		angle := 2 * math.Pi * float64(i) / float64(n)
		x[id] = radius * math.Cos(angle)
		y[id] = radius * math.Sin(angle)
	}

	const (
		iterations = 80
		repulsion  = 1.0
		attraction = 0.05
		damping    = 0.85
	)
	for iter := 0; iter < iterations; iter++ {
		fx := make(map[string]float64, n)
		fy := make(map[string]float64, n)

		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				a, b := order[i], order[j]
				dx, dy := x[a]-x[b], y[a]-y[b]
				dist := math.Max(0.1, math.Hypot(dx, dy))
				f := repulsion / (dist * dist)
				fx[a] += f * dx / dist
				fy[a] += f * dy / dist
				fx[b] -= f * dx / dist
				fy[b] -= f * dy / dist
			}
		}
		for _, a := range order {
			for _, b := range forward[a] {
				dx, dy := x[b]-x[a], y[b]-y[a]
				dist := math.Hypot(dx, dy)
				if dist == 0 {
					continue
				}
				f := attraction * dist
				fx[a] += f * dx / dist
				fy[a] += f * dy / dist
				fx[b] -= f * dx / dist
				fy[b] -= f * dy / dist
			}
		}
		for _, id := range order {
			x[id] += fx[id] * damping
			y[id] += fy[id] * damping
		}
	}

	minX, minY := math.Inf(1), math.Inf(1)
	for _, id := range order {
		minX = math.Min(minX, x[id])
		minY = math.Min(minY, y[id])
	}
	positions := make(map[string]graph.Position, n)
	for _, id := range order {
		positions[id] = graph.Position{
			X: opts.Origin.X + math.Round(x[id]-minX)*opts.ColumnGap/2,
			Y: opts.Origin.Y + math.Round(y[id]-minY)*opts.RowGap,
		}
	}
	return positions
}

// resolveCollisions moves any node that lands on an occupied slot right by
// one column until it finds a free one.
func resolveCollisions(g graph.Graph, positions map[string]graph.Position, opts Options) map[string]graph.Position {
	type slot struct{ col, row int }
	slotOf := func(p graph.Position) slot {
		return slot{
			col: int(math.Round((p.X - opts.Origin.X) / (opts.ColumnGap / 2))),
			row: int(math.Round((p.Y - opts.Origin.Y) / opts.RowGap)),
		}
	}

	occupied := make(map[slot]bool)
	out := make(map[string]graph.Position, len(positions))
	for _, id := range ids(g) {
		p := positions[id]
		s := slotOf(p)
		for occupied[s] || occupied[slot{s.col - 1, s.row}] || occupied[slot{s.col + 1, s.row}] {
			p.X += opts.ColumnGap
			s = slotOf(p)
		}
		occupied[s] = true
		out[id] = p
	}
	return out
}

func orderByConnectivity(g graph.Graph) []string {
	order := ids(g)
	forward, _ := adjacency(g)

	result := make([]string, 0, len(order))
	visited := make(map[string]bool)
	for _, start := range order {
		if visited[start] {
			continue
		}
		queue := []string{start}
		visited[start] = true
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			result = append(result, current)
			for _, next := range forward[current] {
				if !visited[next] {
					visited[next] = true
					queue = append(queue, next)
				}
			}
		}
	}
	return result
}

func isLinearChain(g graph.Graph) bool {
	if g.NodeCount() <= 2 {
		return true
	}
	in := make(map[string]int)
	out := make(map[string]int)
	forward, _ := adjacency(g)
	for a, targets := range forward {
		for _, b := range targets {
			out[a]++
			in[b]++
		}
	}

	starts, ends, middles := 0, 0, 0
	for _, id := range ids(g) {
		switch {
		case in[id] == 0 && out[id] <= 1:
			starts++
		case out[id] == 0 && in[id] <= 1:
			ends++
		case in[id] <= 1 && out[id] <= 1:
			middles++
		}
	}
	return starts == 1 && ends >= 1 && middles == g.NodeCount()-starts-ends
}

func hasCycles(g graph.Graph) bool {
	forward, _ := adjacency(g)
	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int)

	var visit func(string) bool
	visit = func(id string) bool {
		color[id] = gray
		for _, next := range forward[id] {
			if color[next] == gray {
				return true
			}
			if color[next] == white && visit(next) {
				return true
			}
		}
		color[id] = black
		return false
	}
	for _, id := range ids(g) {
		if color[id] == white && visit(id) {
			return true
		}
	}
	return false
}
