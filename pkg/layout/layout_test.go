package layout

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/automata-diagram/pkg/graph"
)

func build(t *testing.T, n int, edges ...[2]int) graph.Graph {
	t.Helper()
	nodes := make([]graph.Node, n)
	for i := range nodes {
		nodes[i] = graph.Node{ID: fmt.Sprint(i + 1), Data: graph.NodeData{Label: fmt.Sprintf("q%d", i)}}
	}
	var es []graph.Edge
	for i, e := range edges {
		es = append(es, graph.Edge{
			ID:     fmt.Sprintf("e%d-%d-%d", e[0], e[1], i),
			Source: fmt.Sprint(e[0]),
			Target: fmt.Sprint(e[1]),
		})
	}
	g, err := graph.FromParts(nodes, es)
	require.NoError(t, err)
	return g
}

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		in   string
		want Algorithm
		err  bool
	}{
		{"", Smart, false},
		{"grid", Grid, false},
		{" Circular ", Circular, false},
		{"LAYERED", Layered, false},
		{"force", Force, false},
		{"spiral", Smart, true},
	}
	for _, tt := range tests {
		got, err := ParseAlgorithm(tt.in)
		if tt.err {
			assert.ErrorIs(t, err, ErrUnknownAlgorithm, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.want, mustParse(t, got.String()))
	}
}

func mustParse(t *testing.T, s string) Algorithm {
	t.Helper()
	a, err := ParseAlgorithm(s)
	require.NoError(t, err)
	return a
}

func TestForNodeSize(t *testing.T) {
	assert.Equal(t, Options{Origin: graph.Position{X: 100, Y: 100}, ColumnGap: 250, RowGap: 100}, DefaultOptions())

	wide := ForNodeSize(300, 80)
	assert.Equal(t, 400.0, wide.ColumnGap)
	assert.Equal(t, 140.0, wide.RowGap)
	assert.Equal(t, DefaultOptions(), ForNodeSize(0, -1))

	g := build(t, 2, [2]int{1, 2})
	pos := Arrange(g, Layered, wide)
	assert.Equal(t, 500.0, pos["2"].X, "columns clear a 300-wide node")
}

func TestEmptyGraph(t *testing.T) {
	for _, alg := range []Algorithm{Smart, Grid, Circular, Layered, Force} {
		assert.Empty(t, Arrange(graph.New(), alg, DefaultOptions()), alg.String())
	}
}

func TestLayeredChain(t *testing.T) {
	g := build(t, 3, [2]int{1, 2}, [2]int{2, 3})
	pos := Arrange(g, Layered, DefaultOptions())

	assert.Equal(t, graph.Position{X: 100, Y: 100}, pos["1"])
	assert.Equal(t, graph.Position{X: 350, Y: 100}, pos["2"])
	assert.Equal(t, graph.Position{X: 600, Y: 100}, pos["3"])
}

func TestLayeredBranchCentresColumns(t *testing.T) {
	g := build(t, 3, [2]int{1, 2}, [2]int{1, 3})
	pos := Arrange(g, Layered, DefaultOptions())

	assert.Equal(t, graph.Position{X: 100, Y: 150}, pos["1"])
	assert.Equal(t, graph.Position{X: 350, Y: 100}, pos["2"])
	assert.Equal(t, graph.Position{X: 350, Y: 200}, pos["3"])
}

func TestLayeredUnreachableGetsOwnColumn(t *testing.T) {
	g := build(t, 3, [2]int{1, 2})
	pos := Arrange(g, Layered, DefaultOptions())
	assert.Equal(t, 600.0, pos["3"].X)
}

func TestLayeredReducesCrossings(t *testing.T) {
	// 1 -> {2,3}, 2 -> 5, 3 -> 4: barycenters put 5 above 4.
	g := build(t, 5, [2]int{1, 2}, [2]int{1, 3}, [2]int{2, 5}, [2]int{3, 4})
	pos := Arrange(g, Layered, DefaultOptions())
	assert.Less(t, pos["5"].Y, pos["4"].Y)
}

func TestEveryAlgorithmPlacesEveryNodeApart(t *testing.T) {
	g := build(t, 9,
		[2]int{1, 2}, [2]int{2, 3}, [2]int{3, 1}, [2]int{3, 4}, [2]int{4, 5},
		[2]int{5, 6}, [2]int{6, 7}, [2]int{7, 8}, [2]int{8, 9}, [2]int{9, 9})

	for _, alg := range []Algorithm{Smart, Grid, Circular, Layered, Force} {
		t.Run(alg.String(), func(t *testing.T) {
			pos := Arrange(g, alg, DefaultOptions())
			require.Len(t, pos, 9)
			seen := make(map[graph.Position]string)
			for id, p := range pos {
				other, dup := seen[p]
				assert.False(t, dup, "%s and %s share %v", id, other, p)
				seen[p] = id
			}
		})
	}
}

func TestArrangeIsDeterministic(t *testing.T) {
	g := build(t, 6, [2]int{1, 2}, [2]int{2, 3}, [2]int{3, 4}, [2]int{4, 1}, [2]int{5, 6})
	for _, alg := range []Algorithm{Grid, Circular, Layered, Force} {
		assert.Equal(t, Arrange(g, alg, DefaultOptions()), Arrange(g, alg, DefaultOptions()), alg.String())
	}
}

func TestChoose(t *testing.T) {
	assert.Equal(t, Layered, choose(build(t, 3, [2]int{1, 2}, [2]int{2, 1})))

	ring := make([][2]int, 10)
	for i := range ring {
		ring[i] = [2]int{i + 1, (i+1)%10 + 1}
	}
	assert.Equal(t, Circular, choose(build(t, 10, ring...)))
}

func TestHasCyclesIgnoresSelfLoops(t *testing.T) {
	assert.False(t, hasCycles(build(t, 2, [2]int{1, 1}, [2]int{1, 2})))
	assert.True(t, hasCycles(build(t, 2, [2]int{1, 2}, [2]int{2, 1})))
}

// FuzzArrange builds a graph from arbitrary edge bytes and checks every
// algorithm places every node exactly once, on a distinct position.
// Run with: go test -fuzz=FuzzArrange ./pkg/layout/
func FuzzArrange(f *testing.F) {
	f.Add(uint8(2), []byte{1, 2})
	f.Add(uint8(5), []byte{1, 2, 2, 3, 3, 1, 4, 5})
	f.Add(uint8(1), []byte{1, 1})
	f.Add(uint8(0), []byte{})
	f.Add(uint8(20), []byte{1, 20, 20, 1, 5, 5, 7, 3})

	f.Fuzz(func(t *testing.T, n uint8, raw []byte) {
		count := int(n % 30)
		var edges [][2]int
		if count > 0 {
			for i := 0; i+1 < len(raw) && len(edges) < 100; i += 2 {
				edges = append(edges, [2]int{int(raw[i])%count + 1, int(raw[i+1])%count + 1})
			}
		}
		g := build(t, count, edges...)

		for _, alg := range []Algorithm{Smart, Grid, Circular, Layered, Force} {
			pos := Arrange(g, alg, DefaultOptions())
			if len(pos) != count {
				t.Fatalf("%s placed %d of %d nodes", alg, len(pos), count)
			}
			seen := make(map[graph.Position]bool)
			for _, p := range pos {
				if seen[p] {
					t.Fatalf("%s stacked two nodes at %v", alg, p)
				}
				seen[p] = true
			}
		}
	})
}
