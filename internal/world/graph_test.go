package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zyedidia/generic/mapset"
)

// lineGraph builds 0-1-2-...-(n-1) along the x axis.
func lineGraph(n int) *Graph {
	g := NewGraph()
	for i := 0; i < n; i++ {
		g.AddNode(float64(i*80), 80)
	}
	for i := 0; i+1 < n; i++ {
		g.AddEdge(i, i+1)
	}
	return g
}

func TestAddEdgeRejectsDuplicates(t *testing.T) {
	g := lineGraph(3)

	assert.False(t, g.AddEdge(0, 1), "same orientation")
	assert.False(t, g.AddEdge(1, 0), "reverse orientation")
	assert.False(t, g.AddEdge(2, 2), "self loop")
	assert.False(t, g.AddEdge(0, 7), "unknown node")
	assert.True(t, g.AddEdge(2, 0))
	assert.Len(t, g.Edges, 3)
}

func TestAdjacentEitherOrientation(t *testing.T) {
	g := lineGraph(3)

	tests := []struct {
		a, b int
		want bool
	}{
		{0, 1, true},
		{1, 0, true},
		{1, 2, true},
		{2, 1, true},
		{0, 2, false},
		{0, 0, false},
		{0, 9, false},
	}
	for _, tt := range tests {
		if got := g.Adjacent(tt.a, tt.b); got != tt.want {
			t.Errorf("Adjacent(%d, %d) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestNeighborsInNodeOrder(t *testing.T) {
	g := lineGraph(4)
	g.AddEdge(3, 1)

	ids := func(nodes []*Node) []int {
		out := make([]int, len(nodes))
		for i, n := range nodes {
			out[i] = n.ID
		}
		return out
	}

	assert.Equal(t, []int{0, 2, 3}, ids(g.Neighbors(1)))
	assert.Equal(t, []int{1}, ids(g.Neighbors(0)))
	assert.Equal(t, 3, g.Degree(1))
	assert.Nil(t, g.Neighbors(42))
}

func TestShortestPath(t *testing.T) {
	// 0-1-2-3 plus a detour 0-4-5-3
	g := lineGraph(4)
	g.AddNode(80, 160)
	g.AddNode(160, 160)
	g.AddEdge(0, 4)
	g.AddEdge(4, 5)
	g.AddEdge(5, 3)

	path := g.ShortestPath(0, 3, mapset.New[int]())
	require.NotNil(t, path)
	assert.Len(t, path, 4)
	assert.Equal(t, 0, path[0].ID)
	assert.Equal(t, 3, path[len(path)-1].ID)

	obstacles := mapset.New[int]()
	obstacles.Put(1)
	detour := g.ShortestPath(0, 3, obstacles)
	require.NotNil(t, detour)
	assert.Equal(t, []int{0, 4, 5, 3}, []int{detour[0].ID, detour[1].ID, detour[2].ID, detour[3].ID})

	obstacles.Put(5)
	assert.Nil(t, g.ShortestPath(0, 3, obstacles))

	assert.Len(t, g.ShortestPath(2, 2, mapset.New[int]()), 1)
	assert.Nil(t, g.ShortestPath(0, 99, mapset.New[int]()))
}

func TestIsConnected(t *testing.T) {
	g := lineGraph(3)
	assert.True(t, g.IsConnected())

	g.AddNode(500, 500)
	assert.False(t, g.IsConnected())

	ensureConnectivity(g)
	assert.True(t, g.IsConnected())
	assert.True(t, g.Adjacent(2, 3), "closest connected node is linked")
}

func TestEnsureConnectivityJoinsComponents(t *testing.T) {
	g := NewGraph()
	// Two pairs far apart plus a lone node.
	g.AddNode(0, 0)
	g.AddNode(80, 0)
	g.AddNode(800, 0)
	g.AddNode(880, 0)
	g.AddNode(400, 400)
	g.AddEdge(0, 1)
	g.AddEdge(2, 3)

	ensureConnectivity(g)

	assert.True(t, g.IsConnected())
	assert.Len(t, g.Edges, 4, "exactly one edge per joined component")
}

func TestRoleLookups(t *testing.T) {
	g := lineGraph(5)
	assert.Nil(t, g.Start())

	g.Nodes[4].IsStart = true
	g.Nodes[0].IsFinish = true
	g.Nodes[3].IsSeed = true
	g.Nodes[2].IsShop = true
	g.Nodes[1].IsBattle = true

	assert.Equal(t, 4, g.Start().ID)
	assert.Equal(t, 0, g.Finish().ID)
	assert.Equal(t, 3, g.Seed().ID)
	assert.Equal(t, 2, g.Shop().ID)
	assert.Len(t, g.BattleNodes(), 1)
	assert.True(t, g.Contains(g.Nodes[1]))
	assert.False(t, g.Contains(&Node{ID: 1}))
	assert.False(t, g.Contains(nil))
}

func TestIsValid(t *testing.T) {
	g := lineGraph(5)
	assert.True(t, IsValid(g), "no obstacles is always valid")

	g.Nodes[4].IsStart = true
	g.Nodes[0].IsFinish = true
	g.Nodes[2].IsShop = true
	assert.False(t, IsValid(g), "shop blocks the only path")

	g.AddNode(160, 160)
	g.AddEdge(3, 5)
	g.AddEdge(5, 1)
	assert.True(t, IsValid(g))
}
