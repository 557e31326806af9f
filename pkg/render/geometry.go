// Geometry for edge paths: curved connections between node handles,
// self-loops, and spreading of parallel edges.

package render

import "math"

// Point is a 2D coordinate in renderer units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Box is a node's bounding rectangle.
type Box struct {
	X, Y float64 // top-left
	W, H float64
}

// Center returns the box centre.
func (b Box) Center() Point {
	return Point{b.X + b.W/2, b.Y + b.H/2}
}

// SourceHandle is where outgoing edges leave the node (bottom centre).
func (b Box) SourceHandle() Point {
	return Point{b.X + b.W/2, b.Y + b.H}
}

// TargetHandle is where incoming edges arrive (top centre).
func (b Box) TargetHandle() Point {
	return Point{b.X + b.W/2, b.Y}
}

// Self-loop geometry, in renderer units.
const (
	loopReach   = 25.0 // node edge to apex of the first loop
	loopSpacing = 18.0 // extra reach per further loop on the same node
	loopPort    = 0.35 // port distance from centre, as a share of half height
	loopGap     = 6.0  // apex to label
)

// SelfLoop returns the loop for the idx-th self-loop of node: two cubic
// segments leaving the right side above centre, turning at an apex and
// returning below centre.
//
//	P0 C C apex C C P6
func SelfLoop(node Box, idx int) []Point {
	c := node.Center()
	edge := node.X + node.W
	half := node.H / 2
	reach := loopReach + float64(idx)*loopSpacing
	port := half * loopPort
	bulge := half / 2
	apexX := edge + reach
	shoulder := edge + reach*0.4

	return []Point{
		{edge, c.Y - port},
		{shoulder, c.Y - port - bulge},
		{apexX, c.Y - bulge},
		{apexX, c.Y},
		{apexX, c.Y + bulge},
		{shoulder, c.Y + port + bulge},
		{edge, c.Y + port},
	}
}

// SelfLoopLabel anchors a label of the given width just right of a
// self-loop's apex.
func SelfLoopLabel(loop []Point, labelWidth float64) Point {
	apex := loop[3]
	return Point{apex.X + loopGap + labelWidth/2, apex.Y}
}

// ControlOffset is the handle-to-control-point distance for a connection
// whose endpoints are distance apart along the handle axis. Backward
// connections bend out by a curvature-scaled amount instead.
func ControlOffset(distance, curvature float64) float64 {
	if distance >= 0 {
		return 0.5 * distance
	}
	return curvature * 25 * math.Sqrt(-distance)
}

// BezierPath returns the four cubic control points from a bottom source
// handle to a top target handle.
func BezierPath(source, target Point, curvature float64) []Point {
	return []Point{
		source,
		{source.X, source.Y + ControlOffset(target.Y-source.Y, curvature)},
		{target.X, target.Y - ControlOffset(target.Y-source.Y, curvature)},
		target,
	}
}

// ParallelOffset returns the perpendicular shift for the idx-th of total
// edges sharing the same pair of nodes. Offsets alternate around zero.
func ParallelOffset(idx, total int, spacing float64) float64 {
	if total <= 1 {
		return 0
	}
	offset := float64(idx) - float64(total-1)/2
	return offset * spacing
}

// ShiftPath moves the inner control points of a cubic path perpendicular to
// the chord by offset. Endpoints stay on their handles.
func ShiftPath(path []Point, offset float64) []Point {
	if offset == 0 || len(path) < 4 {
		return path
	}
	first, last := path[0], path[len(path)-1]
	dx := last.X - first.X
	dy := last.Y - first.Y
	dist := math.Sqrt(dx*dx + dy*dy)

	// Coincident handles: push sideways.
	perpX, perpY := 1.0, 0.0
	if dist >= 0.001 {
		perpX, perpY = -dy/dist, dx/dist
	}

	out := make([]Point, len(path))
	copy(out, path)
	for i := 1; i < len(out)-1; i++ {
		out[i] = Point{out[i].X + perpX*offset, out[i].Y + perpY*offset}
	}
	return out
}
