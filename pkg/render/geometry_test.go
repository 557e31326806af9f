package render

import (
	"math"
	"testing"
)

func TestSelfLoop(t *testing.T) {
	node := Box{X: 60, Y: 70, W: 80, H: 60} // centre (100,100)
	points := SelfLoop(node, 0)

	if len(points) != 7 {
		t.Fatalf("Expected 7 points, got %d", len(points))
	}
	if points[0].X != 140 || points[6].X != 140 {
		t.Errorf("Ports should sit on the right edge, got %.2f and %.2f", points[0].X, points[6].X)
	}
	if points[3] != (Point{165, 100}) {
		t.Errorf("Apex expected (165,100), got %v", points[3])
	}
	if points[0].Y >= 100 || points[6].Y <= 100 {
		t.Errorf("Loop should leave above centre and return below, got %.2f/%.2f", points[0].Y, points[6].Y)
	}
}

func TestSelfLoopIndexSpreads(t *testing.T) {
	node := Box{X: 0, Y: 0, W: 150, H: 40}
	first, second := SelfLoop(node, 0), SelfLoop(node, 1)

	if second[3].X-first[3].X != loopSpacing {
		t.Errorf("Second apex should sit %.0f further out: %.1f vs %.1f", loopSpacing, second[3].X, first[3].X)
	}
	if second[0] != first[0] {
		t.Errorf("Loops on one node share their ports")
	}
}

func TestSelfLoopLabel(t *testing.T) {
	points := SelfLoop(Box{X: 60, Y: 70, W: 80, H: 60}, 0)

	pos := SelfLoopLabel(points, 60)
	if pos != (Point{165 + loopGap + 30, 100}) {
		t.Errorf("Label anchor expected right of apex, got %v", pos)
	}
}

func TestBoxHandles(t *testing.T) {
	b := Box{X: 100, Y: 100, W: 150, H: 40}

	if got := b.SourceHandle(); got != (Point{175, 140}) {
		t.Errorf("SourceHandle = %v", got)
	}
	if got := b.TargetHandle(); got != (Point{175, 100}) {
		t.Errorf("TargetHandle = %v", got)
	}
}

func TestBezierPath(t *testing.T) {
	tests := []struct {
		name   string
		source Point
		target Point
		wantC1 Point
	}{
		{"downward", Point{0, 0}, Point{0, 100}, Point{0, 50}},
		{"upward", Point{0, 100}, Point{0, 0}, Point{0, 100 + 0.25*25*10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := BezierPath(tt.source, tt.target, 0.25)
			if len(path) != 4 {
				t.Fatalf("Expected 4 points, got %d", len(path))
			}
			if path[0] != tt.source || path[3] != tt.target {
				t.Errorf("Endpoints moved: %v", path)
			}
			if math.Abs(path[1].Y-tt.wantC1.Y) > 1e-9 {
				t.Errorf("C1.Y expected %.2f, got %.2f", tt.wantC1.Y, path[1].Y)
			}
		})
	}
}

func TestParallelOffset(t *testing.T) {
	if got := ParallelOffset(0, 1, 30); got != 0 {
		t.Errorf("Single edge should not be offset, got %.1f", got)
	}
	if a, b := ParallelOffset(0, 2, 30), ParallelOffset(1, 2, 30); a != -15 || b != 15 {
		t.Errorf("Pair offsets expected -15/15, got %.1f/%.1f", a, b)
	}
	if got := ParallelOffset(1, 3, 30); got != 0 {
		t.Errorf("Middle of three should be centred, got %.1f", got)
	}
}

func TestShiftPathKeepsEndpoints(t *testing.T) {
	path := []Point{{0, 0}, {0, 30}, {0, 70}, {0, 100}}
	shifted := ShiftPath(path, 10)

	if shifted[0] != path[0] || shifted[3] != path[3] {
		t.Error("Endpoints should not move")
	}
	if shifted[1].X == path[1].X {
		t.Error("Inner control point should move sideways")
	}
	if path[1].X != 0 {
		t.Error("Input path must not be modified")
	}
}
