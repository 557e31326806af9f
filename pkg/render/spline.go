package render

// Edge paths are chains of cubic Bézier segments sharing endpoints:
// P0 C C P1 C C P2 ... A path of two or three points is a straight line from
// its first point to its last.

func lerp(a, b Point, u float64) Point {
	return Point{a.X + (b.X-a.X)*u, a.Y + (b.Y-a.Y)*u}
}

// segmentAt picks the cubic segment covering t in [0,1] and the parameter
// within it.
func segmentAt(path []Point, t float64) ([]Point, float64) {
	t = min(max(t, 0), 1)
	n := (len(path) - 1) / 3
	scaled := t * float64(n)
	i := min(int(scaled), n-1)
	return path[i*3 : i*3+4], scaled - float64(i)
}

// split runs de Casteljau's construction on one segment and returns the two
// points of the last step; the curve point lies between them.
func split(seg []Point, u float64) (Point, Point) {
	a, b, c := lerp(seg[0], seg[1], u), lerp(seg[1], seg[2], u), lerp(seg[2], seg[3], u)
	return lerp(a, b, u), lerp(b, c, u)
}

// PointAt returns the point at t in [0,1] along path.
func PointAt(path []Point, t float64) Point {
	switch {
	case len(path) == 0:
		return Point{}
	case len(path) == 1:
		return path[0]
	case len(path) < 4:
		return lerp(path[0], path[len(path)-1], min(max(t, 0), 1))
	}
	seg, u := segmentAt(path, t)
	d, e := split(seg, u)
	return lerp(d, e, u)
}

// TangentAt returns the direction of travel at t. Its length is not
// normalised.
func TangentAt(path []Point, t float64) Point {
	if len(path) < 2 {
		return Point{1, 0}
	}
	if len(path) < 4 {
		first, last := path[0], path[len(path)-1]
		return Point{last.X - first.X, last.Y - first.Y}
	}
	seg, u := segmentAt(path, t)
	d, e := split(seg, u)
	return Point{3 * (e.X - d.X), 3 * (e.Y - d.Y)}
}

// Midpoint is where an edge label sits: the path at t=0.5.
func Midpoint(path []Point) Point {
	return PointAt(path, 0.5)
}
